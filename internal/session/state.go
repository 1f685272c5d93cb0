// Package session is the client-side authentication core: a single
// authoritative session state, the orchestrator that drives it through
// init/login/register/logout, and the navigation guards that gate screen
// transitions on it. Everything else in the app holds read-only views.
package session

import "github.com/jfanara/taskdeck/pkg/domain"

// State is the full session snapshot. It is owned by the Store and only
// replaced whole; consumers must not mutate the User it points to.
type State struct {
	Token       string
	User        *domain.User
	Loading     bool
	Err         string
	Initialized bool
}

// Authenticated reports whether the session holds a usable identity.
// Token and user must both be present: a persisted user whose token was
// cleared, or a token without profile data, does not count.
func (s State) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// event is the closed set of transitions the reducer accepts. Keeping it a
// sealed sum makes illegal transitions unrepresentable outside this package.
type event interface {
	isEvent()
}

// evInitDone terminates the startup resolution. An empty token/nil user
// records a confirmed "no session"; it is not an error state.
type evInitDone struct {
	token string
	user  *domain.User
}

// evAuthStarted marks a login or register attempt in flight.
type evAuthStarted struct{}

// evAuthSucceeded installs a fresh identity.
type evAuthSucceeded struct {
	token string
	user  *domain.User
}

// evAuthFailed records a user-visible failure message; identity is untouched.
type evAuthFailed struct {
	message string
}

// evLoggedOut resets to the unauthenticated terminal state.
type evLoggedOut struct{}

func (evInitDone) isEvent()      {}
func (evAuthStarted) isEvent()   {}
func (evAuthSucceeded) isEvent() {}
func (evAuthFailed) isEvent()    {}
func (evLoggedOut) isEvent()     {}

// reduce computes the next state. It is total and pure; in particular
// Initialized is monotonic: no event ever clears it once set.
func reduce(s State, ev event) State {
	switch ev := ev.(type) {
	case evInitDone:
		s.Token = ev.token
		s.User = ev.user
		s.Initialized = true
	case evAuthStarted:
		s.Loading = true
		s.Err = ""
	case evAuthSucceeded:
		s.Token = ev.token
		s.User = ev.user
		s.Loading = false
		s.Err = ""
	case evAuthFailed:
		s.Loading = false
		s.Err = ev.message
	case evLoggedOut:
		s.Token = ""
		s.User = nil
		s.Loading = false
		s.Err = ""
	}
	return s
}
