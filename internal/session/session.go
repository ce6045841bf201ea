// Package session holds the in-memory state of one unlocked vault.
//
// The session object is the only place the derived key lives. It is
// passed explicitly to every operation that needs decryption — there is
// no ambient global. The key exists if and only if the session is in the
// Unlocked state; Lock zeroizes it.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/askarin/fieldvault/internal/keychain"
)

// ErrLocked is returned when an operation requires the session key while
// the session is in the Locked state.
var ErrLocked = errors.New("session is locked")

// State is the two-state lock machine of a session. There is no
// observable intermediate state: unlocking is synchronous for callers.
type State int

const (
	// Locked means no key is held; every decrypting operation fails.
	Locked State = iota

	// Unlocked means the derived key is held in memory.
	Unlocked
)

// Session is the explicit session-scoped context object for one owner.
// A mutex guards the key because the auto-lock worker transitions the
// session from a background goroutine.
type Session struct {
	mu sync.RWMutex

	ownerID    string
	key        keychain.Key
	state      State
	lastActive time.Time
}

// New returns a session for the given owner in the Locked state.
func New(ownerID string) *Session {
	return &Session{
		ownerID: ownerID,
		state:   Locked,
	}
}

// OwnerID returns the owner this session belongs to.
func (s *Session) OwnerID() string {
	return s.ownerID
}

// State returns the current lock state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Unlock transitions the session to Unlocked, storing the derived key.
// Any previously held key is zeroized first.
func (s *Session) Unlock(key keychain.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		s.key.Zero()
	}

	s.key = key
	s.state = Unlocked
	s.lastActive = time.Now()
}

// Lock transitions the session to Locked and zeroizes the key. Locking a
// locked session is a no-op.
func (s *Session) Lock() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil {
		s.key.Zero()
		s.key = nil
	}
	s.state = Locked
}

// Key returns the held key and marks the session active. Returns
// ErrLocked when the session is locked.
func (s *Session) Key() (keychain.Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Unlocked {
		return nil, ErrLocked
	}

	s.lastActive = time.Now()
	return s.key, nil
}

// IdleFor reports how long ago the key was last used. Used by the
// auto-lock worker; always zero while locked.
func (s *Session) IdleFor() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state != Unlocked {
		return 0
	}
	return time.Since(s.lastActive)
}
