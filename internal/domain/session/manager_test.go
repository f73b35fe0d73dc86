package session

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndResolve(t *testing.T) {
	m := NewManager(24*time.Hour, "", nil)

	s, err := m.Create("alice@example.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(s.ID, "sess_"))
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, "alice@example.com", s.Email)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), s.ExpiresAt, 5*time.Second)

	email, ok := m.Resolve(s.Token)
	assert.True(t, ok)
	assert.Equal(t, "alice@example.com", email)
}

func TestResolveUnknownToken(t *testing.T) {
	m := NewManager(24*time.Hour, "", nil)

	email, ok := m.Resolve("no-such-token")
	assert.False(t, ok)
	assert.Empty(t, email)
}

func TestTokensAreUnique(t *testing.T) {
	m := NewManager(time.Hour, "", nil)

	a, err := m.Create("a@example.com")
	require.NoError(t, err)
	b, err := m.Create("a@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, a.Token, b.Token)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestExpiredSessionRejected(t *testing.T) {
	m := NewManager(-time.Minute, "", nil)

	s, err := m.Create("alice@example.com")
	require.NoError(t, err)

	_, ok := m.Resolve(s.Token)
	assert.False(t, ok)

	// Expired entry is dropped on first lookup
	assert.Equal(t, 0, m.ActiveCount())
}

func TestRevoke(t *testing.T) {
	m := NewManager(time.Hour, "", nil)

	s, err := m.Create("alice@example.com")
	require.NoError(t, err)

	m.Revoke(s.Token)
	_, ok := m.Resolve(s.Token)
	assert.False(t, ok)

	// Revoking twice is a no-op
	m.Revoke(s.Token)
}

func TestActiveCount(t *testing.T) {
	m := NewManager(time.Hour, "", nil)
	assert.Equal(t, 0, m.ActiveCount())

	a, err := m.Create("a@example.com")
	require.NoError(t, err)
	_, err = m.Create("b@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, m.ActiveCount())

	m.Revoke(a.Token)
	assert.Equal(t, 1, m.ActiveCount())
}

func TestSnapshotReload(t *testing.T) {
	dir := t.TempDir()

	m := NewManager(time.Hour, dir, nil)
	live, err := m.Create("alice@example.com")
	require.NoError(t, err)

	// A second manager on the same state directory sees the session.
	reloaded := NewManager(time.Hour, dir, nil)
	email, ok := reloaded.Resolve(live.Token)
	assert.True(t, ok)
	assert.Equal(t, "alice@example.com", email)
}

func TestSnapshotDropsExpired(t *testing.T) {
	dir := t.TempDir()

	m := NewManager(-time.Minute, dir, nil)
	expired, err := m.Create("old@example.com")
	require.NoError(t, err)

	reloaded := NewManager(time.Hour, dir, nil)
	_, ok := reloaded.Resolve(expired.Token)
	assert.False(t, ok)
	assert.Equal(t, 0, reloaded.ActiveCount())
}
