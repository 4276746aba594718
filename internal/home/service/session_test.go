package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionManager(t *testing.T) {
	m := NewSessionManager(0)

	token := m.Issue("u1")
	require.NotEmpty(t, token)

	userID, ok := m.Resolve(token)
	require.True(t, ok)
	assert.Equal(t, "u1", userID)

	assert.NotEqual(t, token, m.Issue("u1"))

	m.Revoke(token)
	_, ok = m.Resolve(token)
	assert.False(t, ok)

	_, ok = m.Resolve("unknown")
	assert.False(t, ok)
}

func TestSessionManager_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewSessionManager(time.Hour)
	m.now = func() time.Time { return now }

	token := m.Issue("u1")

	now = now.Add(59 * time.Minute)
	_, ok := m.Resolve(token)
	assert.True(t, ok)

	now = now.Add(time.Minute)
	_, ok = m.Resolve(token)
	assert.False(t, ok)
}
