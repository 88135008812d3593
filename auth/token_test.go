package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"votechain/models"
)

func TestTokenRoundTrip(t *testing.T) {
	ts := NewTokenService([]byte("test-secret"), time.Hour)

	token, err := ts.Issue("user-123")
	require.NoError(t, err)

	userID, err := ts.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", userID)
}

func TestTokenRejectsTamperingAndWrongKey(t *testing.T) {
	ts := NewTokenService([]byte("test-secret"), time.Hour)

	token, err := ts.Issue("user-123")
	require.NoError(t, err)

	_, err = ts.Parse(token + "x")
	assert.ErrorIs(t, err, models.ErrTokenInvalid)

	other := NewTokenService([]byte("different-secret"), time.Hour)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, models.ErrTokenInvalid)

	_, err = ts.Parse("not a token")
	assert.ErrorIs(t, err, models.ErrTokenInvalid)
}

func TestTokenExpires(t *testing.T) {
	ts := NewTokenService([]byte("test-secret"), time.Nanosecond)

	token, err := ts.Issue("user-123")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, err = ts.Parse(token)
	assert.ErrorIs(t, err, models.ErrTokenInvalid)
}

func TestTokenDefaultTTL(t *testing.T) {
	ts := NewTokenService([]byte("test-secret"), 0)
	assert.Equal(t, DefaultTokenTTL, ts.ttl)
}
