package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, err := m.GenerateTerminalToken("lane-1", "sam")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "lane-1", claims.TerminalID)
	assert.Equal(t, "sam", claims.Cashier)
	assert.Equal(t, "lane-1", claims.Subject)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	_, err := m.GenerateTerminalToken("", "sam")
	assert.Error(t, err)

	token, err := NewJWTManager("other-secret", time.Hour).GenerateTerminalToken("lane-1", "")
	require.NoError(t, err)
	_, err = m.ValidateToken(token)
	assert.Error(t, err, "wrong key")

	expired, err := NewJWTManager("test-secret", -time.Minute).GenerateTerminalToken("lane-1", "")
	require.NoError(t, err)
	_, err = m.ValidateToken(expired)
	assert.Error(t, err, "expired")

	_, err = m.ValidateToken("not.a.token")
	assert.Error(t, err)
}
