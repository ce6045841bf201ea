package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askarin/fieldvault/internal/keychain"
)

func TestSession_StartsLocked(t *testing.T) {
	s := New("alice@example.com")

	assert.Equal(t, Locked, s.State())

	_, err := s.Key()
	require.ErrorIs(t, err, ErrLocked)
}

func TestSession_UnlockHoldsKey(t *testing.T) {
	s := New("alice@example.com")
	key := keychain.Key{1, 2, 3, 4}

	s.Unlock(key)

	assert.Equal(t, Unlocked, s.State())
	got, err := s.Key()
	require.NoError(t, err)
	assert.Equal(t, key, got)
}

func TestSession_LockZeroizesKey(t *testing.T) {
	s := New("alice@example.com")
	key := keychain.Key{0xAA, 0xBB, 0xCC}

	s.Unlock(key)
	s.Lock()

	assert.Equal(t, Locked, s.State())
	_, err := s.Key()
	require.ErrorIs(t, err, ErrLocked)

	// The original key material was wiped in place.
	for _, b := range key {
		assert.Zero(t, b)
	}
}

func TestSession_LockTwiceIsNoop(t *testing.T) {
	s := New("alice@example.com")
	s.Unlock(keychain.Key{1})

	s.Lock()
	s.Lock()

	assert.Equal(t, Locked, s.State())
}

func TestSession_IdleForZeroWhileLocked(t *testing.T) {
	s := New("alice@example.com")

	assert.Zero(t, s.IdleFor())
}

func TestSession_KeyUsageResetsIdle(t *testing.T) {
	s := New("alice@example.com")
	s.Unlock(keychain.Key{1})

	time.Sleep(10 * time.Millisecond)
	require.Greater(t, s.IdleFor(), time.Duration(0))

	_, err := s.Key()
	require.NoError(t, err)
	assert.Less(t, s.IdleFor(), 10*time.Millisecond)
}
