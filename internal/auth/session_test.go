package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManager_Lifecycle(t *testing.T) {
	sm := NewSessionManager()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	sm.now = func() time.Time { return now }

	token, err := sm.GenerateSessionToken("user-1", time.Minute)
	require.NoError(t, err)

	userID, err := sm.VerifySessionToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = sm.VerifySessionToken("unknown")
	assert.ErrorIs(t, err, ErrInvalidSessionToken)

	now = now.Add(2 * time.Minute)
	_, err = sm.VerifySessionToken(token)
	assert.ErrorIs(t, err, ErrExpiredSessionToken)

	assert.Equal(t, 1, sm.CleanExpired())
	_, err = sm.VerifySessionToken(token)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestSessionManager_Delete(t *testing.T) {
	sm := NewSessionManager()
	token, err := sm.GenerateSessionToken("user-1", time.Minute)
	require.NoError(t, err)

	sm.DeleteSessionToken(token)
	_, err = sm.VerifySessionToken(token)
	assert.ErrorIs(t, err, ErrInvalidSessionToken)
}
