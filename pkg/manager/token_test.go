package manager

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticToken(t *testing.T) {
	tm := NewTokenManager("admin")
	tm.SetStaticToken("s3cret")

	principal, err := tm.Authenticate("s3cret")
	require.NoError(t, err)
	assert.Equal(t, "admin", string(principal))

	_, err = tm.Authenticate("wrong")
	assert.True(t, errors.Is(err, ErrInvalidToken))

	_, err = tm.Authenticate("")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestNoStaticTokenRejectsEmpty(t *testing.T) {
	tm := NewTokenManager("admin")

	_, err := tm.Authenticate("")
	assert.True(t, errors.Is(err, ErrInvalidToken))
	_, err = tm.Authenticate("anything")
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestGeneratedTokens(t *testing.T) {
	tm := NewTokenManager("admin")
	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return current }

	tok, err := tm.GenerateToken(time.Hour)
	require.NoError(t, err)
	assert.Len(t, tok.Token, 64)
	assert.Equal(t, current.Add(time.Hour), tok.ExpiresAt)

	principal, err := tm.Authenticate(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", string(principal))

	current = current.Add(2 * time.Hour)
	_, err = tm.Authenticate(tok.Token)
	assert.True(t, errors.Is(err, ErrTokenExpired))

	assert.Equal(t, 1, tm.CleanupExpiredTokens())
	assert.Empty(t, tm.ListTokens())
	_, err = tm.Authenticate(tok.Token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestRevokeToken(t *testing.T) {
	tm := NewTokenManager("admin")

	tok, err := tm.GenerateToken(time.Hour)
	require.NoError(t, err)
	other, err := tm.GenerateToken(time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, tok.Token, other.Token)

	listed := tm.ListTokens()
	require.Len(t, listed, 2)
	for _, ot := range listed {
		assert.Empty(t, ot.Token, "listings never carry the secret")
		assert.NotEmpty(t, ot.ID)
	}

	assert.False(t, tm.RevokeToken(tok.Token), "revocation is by id, not secret")
	assert.True(t, tm.RevokeToken(tok.ID))
	assert.False(t, tm.RevokeToken(tok.ID))

	_, err = tm.Authenticate(tok.Token)
	assert.Error(t, err)
	_, err = tm.Authenticate(other.Token)
	assert.NoError(t, err)
}

func TestGenerateTokenRejectsNonPositiveLifetime(t *testing.T) {
	tm := NewTokenManager("admin")

	_, err := tm.GenerateToken(0)
	assert.Error(t, err)
	assert.Empty(t, tm.ListTokens())
}

func TestCleanupKeepsLiveTokens(t *testing.T) {
	tm := NewTokenManager("admin")
	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return current }

	short, err := tm.GenerateToken(time.Minute)
	require.NoError(t, err)
	long, err := tm.GenerateToken(time.Hour)
	require.NoError(t, err)

	current = current.Add(10 * time.Minute)
	assert.Equal(t, 1, tm.CleanupExpiredTokens())

	listed := tm.ListTokens()
	require.Len(t, listed, 1)
	assert.Equal(t, long.ID, listed[0].ID)
	assert.NotEqual(t, short.ID, listed[0].ID)
}
