package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jfanara/taskdeck/pkg/domain"
)

// DefaultInitTimeout is the hard ceiling on the startup resolution. A stuck
// profile call forces the unauthenticated terminal state instead of keeping
// the guards parked forever.
const DefaultInitTimeout = 5 * time.Second

// ErrAuthInFlight is returned when a login or register attempt is started
// while another is still running. Attempts are serialized, not queued.
var ErrAuthInFlight = errors.New("session: authentication attempt already in flight")

// ErrAttemptSuperseded is returned when an attempt completed after a logout
// intervened. Its result is discarded so it cannot re-authenticate the store.
var ErrAttemptSuperseded = errors.New("session: attempt superseded by logout")

// Gateway performs the network operations that produce or refresh session
// state. It has no knowledge of routing or persistence.
type Gateway interface {
	Login(ctx context.Context, email, password string) (domain.User, string, error)
	Register(ctx context.Context, name, email, password string) (domain.User, string, error)
	// Profile revalidates an explicit token, returning the current user record.
	Profile(ctx context.Context, token string) (domain.User, error)
}

// CredentialStore is the durable side of the session: the persisted token
// and user record that let a session survive restarts. The persisted user
// record is write-only from here; identity always comes back validated
// through the gateway's profile call.
type CredentialStore interface {
	SaveToken(token string) error
	LoadToken() string
	SaveUser(user domain.User) error
	Clear() error
}

// statusCoder matches errors that carry an HTTP status, without a
// dependency on the client package.
type statusCoder interface {
	HTTPStatus() int
}

// userMessenger matches errors that carry a display-ready message.
type userMessenger interface {
	UserMessage() string
}

// Manager drives the session state machine. It is the only writer of the
// Store; every other component holds a read-only view.
type Manager struct {
	store       *Store
	gw          Gateway
	creds       CredentialStore
	initOnce    sync.Once
	initTimeout time.Duration

	mu       sync.Mutex
	gen      uint64 // bumped on each attempt start and on logout
	inFlight bool
	navigate func(Route)
}

// NewManager wires the orchestrator to its store, gateway and credential
// storage.
func NewManager(store *Store, gw Gateway, creds CredentialStore) *Manager {
	return &Manager{
		store:       store,
		gw:          gw,
		creds:       creds,
		initTimeout: DefaultInitTimeout,
	}
}

// SetInitTimeout overrides the startup resolution ceiling.
func (m *Manager) SetInitTimeout(d time.Duration) {
	m.initTimeout = d
}

// SetNavigate registers the hook invoked when a state change demands a
// screen transition (board after login, login after logout). The hook runs
// on the calling goroutine and must not block.
func (m *Manager) SetNavigate(fn func(Route)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.navigate = fn
}

func (m *Manager) goTo(r Route) {
	m.mu.Lock()
	fn := m.navigate
	m.mu.Unlock()
	if fn != nil {
		fn(r)
	}
}

type initResult struct {
	token string
	user  *domain.User
}

// Init performs the one-time startup resolution: load the persisted token,
// revalidate it against the profile endpoint, and publish the outcome. It
// always terminates with Initialized=true within the configured ceiling.
// Failures are absorbed, never surfaced: a session that cannot be resolved
// is a confirmed "unauthenticated", not an error. Calls after the first are
// no-ops.
func (m *Manager) Init(ctx context.Context) {
	m.initOnce.Do(func() {
		ctx, cancel := context.WithTimeout(ctx, m.initTimeout)
		defer cancel()

		done := make(chan initResult, 1)
		go func() { done <- m.resolve(ctx) }()

		select {
		case r := <-done:
			m.store.apply(evInitDone{token: r.token, user: r.user})
		case <-ctx.Done():
			// Resolution is stuck; force the unauthenticated terminal
			// state. A late result is dropped on the buffered channel.
			slog.Warn("session init timed out, starting unauthenticated")
			m.store.apply(evInitDone{})
		}
	})
}

func (m *Manager) resolve(ctx context.Context) initResult {
	token := m.creds.LoadToken()
	if token == "" {
		return initResult{}
	}

	user, err := m.gw.Profile(ctx, token)
	if err != nil {
		if isUnauthorized(err) {
			// The token is dead; drop the persisted session so the next
			// start doesn't retry it.
			if cerr := m.creds.Clear(); cerr != nil {
				slog.Warn("clearing stale credentials failed", "err", cerr)
			}
		}
		slog.Debug("session revalidation failed", "err", err)
		return initResult{}
	}

	// Refresh the persisted record with the server's view.
	if err := m.creds.SaveUser(user); err != nil {
		slog.Warn("persisting user record failed", "err", err)
	}
	return initResult{token: token, user: &user}
}

// Login runs the login sequence: loading on, gateway call, then either an
// authenticated state plus navigation to the board, or a user-visible error.
// A second attempt while one is in flight is rejected with ErrAuthInFlight.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	return m.attempt(ctx, func(ctx context.Context) (domain.User, string, error) {
		return m.gw.Login(ctx, email, password)
	})
}

// Register runs the register sequence; terminal states match Login's.
func (m *Manager) Register(ctx context.Context, name, email, password string) error {
	return m.attempt(ctx, func(ctx context.Context) (domain.User, string, error) {
		return m.gw.Register(ctx, name, email, password)
	})
}

func (m *Manager) attempt(ctx context.Context, call func(context.Context) (domain.User, string, error)) error {
	m.mu.Lock()
	if m.inFlight {
		m.mu.Unlock()
		return ErrAuthInFlight
	}
	m.inFlight = true
	m.gen++
	gen := m.gen
	m.mu.Unlock()

	m.store.apply(evAuthStarted{})

	user, token, err := call(ctx)

	// The staleness check and the success commit are one critical section.
	// Logout bumps the generation under the same lock, so it either lands
	// before the check (result discarded) or waits for the commit and then
	// clears it; a stale result never repopulates cleared credentials.
	m.mu.Lock()
	m.inFlight = false
	if gen != m.gen {
		m.mu.Unlock()
		return ErrAttemptSuperseded
	}
	if err != nil {
		m.store.apply(evAuthFailed{message: failureMessage(err)})
		m.mu.Unlock()
		return err
	}

	if serr := m.creds.SaveToken(token); serr != nil {
		slog.Warn("persisting token failed", "err", serr)
	}
	if serr := m.creds.SaveUser(user); serr != nil {
		slog.Warn("persisting user record failed", "err", serr)
	}
	m.store.apply(evAuthSucceeded{token: token, user: &user})
	m.mu.Unlock()

	m.goTo(RouteBoard)
	return nil
}

// Logout unconditionally resets to the unauthenticated terminal state,
// clears the persisted credentials, and navigates to the login route.
// Initialized stays true. Any in-flight attempt is marked stale so its
// eventual result is discarded.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.gen++
	m.mu.Unlock()

	if err := m.creds.Clear(); err != nil {
		slog.Warn("clearing credentials failed", "err", err)
	}
	m.store.apply(evLoggedOut{})
	m.goTo(RouteLogin)
}

// isUnauthorized reports whether err is a definitive credential rejection,
// as opposed to a transient transport failure.
func isUnauthorized(err error) bool {
	var sc statusCoder
	return errors.As(err, &sc) && sc.HTTPStatus() == http.StatusUnauthorized
}

// failureMessage extracts the display message for a failed attempt.
func failureMessage(err error) string {
	var um userMessenger
	if errors.As(err, &um) && um.UserMessage() != "" {
		return um.UserMessage()
	}
	return err.Error()
}
