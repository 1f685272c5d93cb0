package session

import "context"

// Route names the navigation targets the session machinery itself cares
// about. All other screens are the UI layer's concern.
type Route string

const (
	// RouteBoard is the authenticated landing screen.
	RouteBoard Route = "board"
	// RouteLogin is the guest screen.
	RouteLogin Route = "login"
)

// Decision is a guard's verdict on one navigation attempt.
type Decision struct {
	Allowed  bool
	Redirect Route // set when denied
}

// RequireSession gates protected screens. It suspends until the startup
// resolution completes, then reads the authentication flag exactly once.
// Checking before initialization would observe the default false and bounce
// a user with a valid persisted session; the wait is not optional.
func RequireSession(ctx context.Context, store *Store) (Decision, error) {
	if err := store.Ready(ctx); err != nil {
		return Decision{}, err
	}
	if !store.Authenticated() {
		return Decision{Allowed: false, Redirect: RouteLogin}, nil
	}
	return Decision{Allowed: true}, nil
}

// RequireGuest gates guest-only screens (login, register) against
// already-authenticated users. Same wait-then-read-once pattern as
// RequireSession, inverted.
func RequireGuest(ctx context.Context, store *Store) (Decision, error) {
	if err := store.Ready(ctx); err != nil {
		return Decision{}, err
	}
	if store.Authenticated() {
		return Decision{Allowed: false, Redirect: RouteBoard}, nil
	}
	return Decision{Allowed: true}, nil
}

// GuardFor returns the guard protecting the given route.
func GuardFor(r Route) func(context.Context, *Store) (Decision, error) {
	if r == RouteLogin {
		return RequireGuest
	}
	return RequireSession
}
