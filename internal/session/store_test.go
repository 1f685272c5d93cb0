package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreSnapshotConsistency(t *testing.T) {
	s := NewStore()
	s.apply(evAuthSucceeded{token: "abc", user: user(1)})

	snap := s.Snapshot()
	assert.Equal(t, "abc", snap.Token)
	require.NotNil(t, snap.User)
	assert.EqualValues(t, 1, snap.User.ID)
	assert.True(t, snap.Authenticated())
}

func TestStoreTokenIsSynchronous(t *testing.T) {
	s := NewStore()
	// No initialization has happened; the read must not block.
	done := make(chan string, 1)
	go func() { done <- s.Token() }()
	select {
	case tok := <-done:
		assert.Empty(t, tok)
	case <-time.After(time.Second):
		t.Fatal("Token() blocked on an uninitialized store")
	}
}

func TestStoreReadyBlocksUntilInitialized(t *testing.T) {
	s := NewStore()

	released := make(chan error, 1)
	go func() {
		released <- s.Ready(context.Background())
	}()

	select {
	case <-released:
		t.Fatal("Ready returned before initialization")
	case <-time.After(20 * time.Millisecond):
	}

	s.apply(evInitDone{})
	select {
	case err := <-released:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Ready did not return after initialization")
	}

	// Once ready, always ready.
	require.NoError(t, s.Ready(context.Background()))
}

func TestStoreReadyHonorsContext(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := s.Ready(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStoreConcurrentReaders(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				snap := s.Snapshot()
				if snap.Authenticated() {
					// Both halves must be visible together.
					require.NotEmpty(t, snap.Token)
					require.NotNil(t, snap.User)
				}
				_ = s.Token()
			}
		}()
	}
	for j := 0; j < 100; j++ {
		s.apply(evAuthSucceeded{token: "abc", user: user(1)})
		s.apply(evLoggedOut{})
	}
	wg.Wait()
}
