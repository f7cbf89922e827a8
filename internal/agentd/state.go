// Package agentd implements the unlock agent (spec §4.2, C7): a
// long-running process that holds the master passphrase in memory behind
// a Unix-socket JSON-RPC surface, so interactive signing does not
// re-prompt for every request.
package agentd

import (
	"sync"
	"time"

	"github.com/solana-keyring/keyring/internal/cryptoutil"
	"github.com/solana-keyring/keyring/internal/store"
)

// State is the agent's process-wide mutable state (spec §9: "only the
// agent's AgentState is process-wide mutable"). Read-heavy operations take
// the shared lock; Unlock/Lock/SignTransaction take the exclusive lock,
// with signing holding the shared lock across the actual sign call so a
// long hardware confirmation does not starve other readers.
type State struct {
	mu sync.RWMutex

	passphrase  *cryptoutil.Secret
	unlockedAt  time.Time
	startedAt   time.Time
	lockTimeout time.Duration

	store *store.Store
}

// NewState constructs agent state bound to an already-open store.
func NewState(st *store.Store, lockTimeout time.Duration) *State {
	return &State{
		store:       st,
		startedAt:   time.Now(),
		lockTimeout: lockTimeout,
	}
}

// IsUnlocked reports whether a passphrase is currently cached, without
// evaluating the idle timeout (callers that care about staleness should
// go through checkIdle, which runs on the timer task and in the Status and
// SignTransaction handlers).
func (s *State) IsUnlocked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.passphrase != nil
}

// unlock replaces the cached passphrase, zeroizing any previous one.
func (s *State) unlock(passphrase []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.passphrase != nil {
		s.passphrase.Close()
	}
	s.passphrase = cryptoutil.NewSecret(passphrase)
	s.unlockedAt = time.Now()
}

// lock clears the cached passphrase, zeroizing it.
func (s *State) lock() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
}

func (s *State) clearLocked() {
	if s.passphrase != nil {
		s.passphrase.Close()
		s.passphrase = nil
	}
	s.unlockedAt = time.Time{}
}

// checkIdle clears the passphrase if the lock timeout has elapsed since
// the last unlock. It is called by the timer task and at the top of the
// Status and SignTransaction handlers, so either request arriving just
// after expiry still observes the locked state.
func (s *State) checkIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.passphrase == nil || s.unlockedAt.IsZero() {
		return
	}
	if time.Since(s.unlockedAt) >= s.lockTimeout {
		s.clearLocked()
	}
}

// withPassphrase runs fn with the currently-unlocked passphrase under the
// shared lock, so a sign in progress holds off Lock, Unlock and checkIdle
// (and with it Status, which calls checkIdle first), but not ListSigners,
// which reads only the store. Returns errAgentLocked if the agent is locked.
func (s *State) withPassphrase(fn func(passphrase []byte) error) error {
	s.checkIdle()
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.passphrase == nil {
		return errAgentLocked
	}
	return fn(s.passphrase.Bytes())
}

func (s *State) uptime() time.Duration {
	return time.Since(s.startedAt)
}
