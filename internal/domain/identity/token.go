// Package identity verifies tokens issued by the external identity
// provider. The application stores no credentials: it only checks the
// HS256 signature of an already-issued token and extracts the principal's
// id, display name and admin flag.
package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fruitmandi/internal/core/appctx"
)

// Config holds token verification configuration.
type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// DefaultConfig returns default verification configuration.
func DefaultConfig(secret string) Config {
	return Config{
		Secret: secret,
		Issuer: "fruitmandi-idp",
		TTL:    12 * time.Hour,
	}
}

// Claims represents token claims.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string `json:"uid"`
	DisplayName string `json:"name"`
	Admin       bool   `json:"adm,omitempty"`
}

// Verifier validates identity tokens.
type Verifier struct {
	config Config
}

// NewVerifier creates a new token verifier.
func NewVerifier(config Config) *Verifier {
	return &Verifier{config: config}
}

// VerifyToken validates a token and returns the user context.
func (v *Verifier) VerifyToken(tokenString string) (*appctx.UserContext, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.config.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return &appctx.UserContext{
		UserID:      claims.UserID,
		DisplayName: claims.DisplayName,
		Admin:       claims.Admin,
	}, nil
}

// IssueToken signs a token for a principal. Used by the seed tool and
// tests; in production tokens come from the identity provider.
func (v *Verifier) IssueToken(userID, displayName string, admin bool) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(v.config.TTL)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.config.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UserID:      userID,
		DisplayName: displayName,
		Admin:       admin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(v.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return tokenString, expiresAt, nil
}
