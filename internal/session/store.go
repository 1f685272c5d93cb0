package session

import (
	"context"
	"sync"
)

// Store holds the authoritative session state. Reads return a consistent
// snapshot; writes go through apply, which serializes whole-state
// transitions. Only the Manager mutates it.
type Store struct {
	mu    sync.Mutex
	state State
	ready chan struct{} // closed once Initialized flips true
}

// NewStore returns a store in the uninitialized starting state.
func NewStore() *Store {
	return &Store{ready: make(chan struct{})}
}

// apply runs one transition and returns the resulting snapshot.
func (s *Store) apply(ev event) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	wasInitialized := s.state.Initialized
	s.state = reduce(s.state, ev)
	if !wasInitialized && s.state.Initialized {
		close(s.ready)
	}
	return s.state
}

// Snapshot returns the current state. All fields come from the same
// underlying write; a stale token is never paired with a fresh user.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Token returns the current bearer token, or "" when unauthenticated.
// It is a synchronous read of the latest value and never waits for
// initialization, which makes it suitable as a transport token source.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// Authenticated reports whether the current state holds a usable identity.
func (s *Store) Authenticated() bool {
	return s.Snapshot().Authenticated()
}

// Ready suspends until the startup resolution has completed, or until ctx
// is done. Once it returns nil it returns nil forever: Initialized is
// monotonic.
func (s *Store) Ready(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
