// Package appctx provides request-scoped values extraction.
package appctx

import (
	"context"
)

// UserContext contains the verified identity of the calling principal.
// It is supplied by the identity middleware; the core never authenticates
// credentials itself. Admin is the single privileged role flag used to
// authorize change-request review and direct edits.
type UserContext struct {
	UserID      string
	DisplayName string
	Admin       bool
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// IsAdmin reports whether the calling principal carries the privileged flag.
func IsAdmin(ctx context.Context) bool {
	if u := GetUser(ctx); u != nil {
		return u.Admin
	}
	return false
}
