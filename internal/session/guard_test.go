package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type guardResult struct {
	dec Decision
	err error
}

// startGuard runs a guard in the background and returns its result channel.
func startGuard(store *Store, guard func(context.Context, *Store) (Decision, error)) chan guardResult {
	out := make(chan guardResult, 1)
	go func() {
		dec, err := guard(context.Background(), store)
		out <- guardResult{dec, err}
	}()
	return out
}

func TestGuardWaitsForInitialization(t *testing.T) {
	store := NewStore()
	result := startGuard(store, RequireSession)

	// The guard must not produce a decision while initialization is pending,
	// even though the default state would read as unauthenticated.
	select {
	case r := <-result:
		t.Fatalf("guard resolved before initialization: %+v", r)
	case <-time.After(20 * time.Millisecond):
	}

	store.apply(evInitDone{token: "abc", user: user(1)})

	select {
	case r := <-result:
		require.NoError(t, r.err)
		assert.True(t, r.dec.Allowed, "valid persisted session must be allowed through")
	case <-time.After(time.Second):
		t.Fatal("guard did not resolve after initialization")
	}
}

func TestRequireSessionDeniesUnauthenticated(t *testing.T) {
	store := NewStore()
	store.apply(evInitDone{})

	dec, err := RequireSession(context.Background(), store)
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, RouteLogin, dec.Redirect)
}

func TestRequireGuestDeniesAuthenticated(t *testing.T) {
	store := NewStore()
	store.apply(evInitDone{token: "abc", user: user(1)})

	dec, err := RequireGuest(context.Background(), store)
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, RouteBoard, dec.Redirect)
}

func TestRequireGuestAllowsUnauthenticated(t *testing.T) {
	store := NewStore()
	store.apply(evInitDone{})

	dec, err := RequireGuest(context.Background(), store)
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
}

func TestGuardsOppositePolarity(t *testing.T) {
	authed := NewStore()
	authed.apply(evInitDone{token: "abc", user: user(1)})
	guest := NewStore()
	guest.apply(evInitDone{})

	for _, store := range []*Store{authed, guest} {
		s, err := RequireSession(context.Background(), store)
		require.NoError(t, err)
		g, err := RequireGuest(context.Background(), store)
		require.NoError(t, err)
		assert.NotEqual(t, s.Allowed, g.Allowed, "guards must disagree on every state")
	}
}

func TestGuardContextCancellation(t *testing.T) {
	store := NewStore()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := RequireSession(ctx, store)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGuardFor(t *testing.T) {
	store := NewStore()
	store.apply(evInitDone{token: "abc", user: user(1)})

	dec, err := GuardFor(RouteLogin)(context.Background(), store)
	require.NoError(t, err)
	assert.False(t, dec.Allowed, "login route uses the guest guard")

	dec, err = GuardFor(RouteBoard)(context.Background(), store)
	require.NoError(t, err)
	assert.True(t, dec.Allowed, "board route uses the session guard")
}
