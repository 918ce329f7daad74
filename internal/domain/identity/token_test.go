package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	verifier := NewVerifier(DefaultConfig("test-secret"))

	token, expiresAt, err := verifier.IssueToken("user-1", "Clerk One", false)
	require.NoError(t, err)
	assert.False(t, expiresAt.IsZero())

	user, err := verifier.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.UserID)
	assert.Equal(t, "Clerk One", user.DisplayName)
	assert.False(t, user.Admin)
}

func TestTokenCarriesAdminFlag(t *testing.T) {
	verifier := NewVerifier(DefaultConfig("test-secret"))

	token, _, err := verifier.IssueToken("admin-1", "Admin", true)
	require.NoError(t, err)

	user, err := verifier.VerifyToken(token)
	require.NoError(t, err)
	assert.True(t, user.Admin)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	issuer := NewVerifier(DefaultConfig("secret-a"))
	verifier := NewVerifier(DefaultConfig("secret-b"))

	token, _, err := issuer.IssueToken("user-1", "Clerk", false)
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyToken_Garbage(t *testing.T) {
	verifier := NewVerifier(DefaultConfig("test-secret"))

	_, err := verifier.VerifyToken("not.a.token")
	assert.Error(t, err)
}
