package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfanara/taskdeck/pkg/domain"
)

// fakeGateway scripts gateway outcomes for the orchestrator.
type fakeGateway struct {
	loginUser  domain.User
	loginToken string
	loginErr   error
	// release, when non-nil, blocks Login until closed.
	release chan struct{}

	profileUser domain.User
	profileErr  error
	// profileHang, when true, blocks Profile until the context is done.
	profileHang bool
}

func (g *fakeGateway) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	if g.release != nil {
		<-g.release
	}
	return g.loginUser, g.loginToken, g.loginErr
}

func (g *fakeGateway) Register(ctx context.Context, name, email, password string) (domain.User, string, error) {
	return g.Login(ctx, email, password)
}

func (g *fakeGateway) Profile(ctx context.Context, token string) (domain.User, error) {
	if g.profileHang {
		<-ctx.Done()
		return domain.User{}, ctx.Err()
	}
	return g.profileUser, g.profileErr
}

// memCreds is an in-memory CredentialStore.
type memCreds struct {
	mu    sync.Mutex
	token string
	user  *domain.User
}

func (c *memCreds) SaveToken(token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
	return nil
}

func (c *memCreds) LoadToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *memCreds) SaveUser(u domain.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = &u
	return nil
}

func (c *memCreds) LoadUser() (*domain.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user, c.user != nil
}

func (c *memCreds) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.user = nil
	return nil
}

// statusErr mimics the client package's HTTPError without importing it.
type statusErr struct {
	code int
	msg  string
}

func (e *statusErr) Error() string       { return e.msg }
func (e *statusErr) HTTPStatus() int     { return e.code }
func (e *statusErr) UserMessage() string { return e.msg }

func TestInitWithValidPersistedSession(t *testing.T) {
	store := NewStore()
	creds := &memCreds{token: "abc", user: user(1)}
	gw := &fakeGateway{profileUser: *user(1)}
	m := NewManager(store, gw, creds)

	m.Init(context.Background())

	snap := store.Snapshot()
	assert.True(t, snap.Initialized)
	assert.True(t, snap.Authenticated())
	assert.Equal(t, "abc", snap.Token)
}

func TestInitWithNoPersistedToken(t *testing.T) {
	store := NewStore()
	m := NewManager(store, &fakeGateway{}, &memCreds{})

	m.Init(context.Background())

	snap := store.Snapshot()
	assert.True(t, snap.Initialized)
	assert.False(t, snap.Authenticated())
	assert.Empty(t, snap.Err, "init failures are not user-visible")
}

func TestInitRejectedTokenClearsCredentials(t *testing.T) {
	store := NewStore()
	creds := &memCreds{token: "expired", user: user(1)}
	gw := &fakeGateway{profileErr: &statusErr{code: http.StatusUnauthorized, msg: "token expired"}}
	m := NewManager(store, gw, creds)

	m.Init(context.Background())

	snap := store.Snapshot()
	assert.True(t, snap.Initialized)
	assert.False(t, snap.Authenticated())
	assert.Empty(t, creds.LoadToken(), "rejected token must be dropped from storage")
}

func TestInitTransientFailureKeepsCredentials(t *testing.T) {
	store := NewStore()
	creds := &memCreds{token: "abc"}
	gw := &fakeGateway{profileErr: errors.New("connection refused")}
	m := NewManager(store, gw, creds)

	m.Init(context.Background())

	snap := store.Snapshot()
	assert.True(t, snap.Initialized)
	assert.False(t, snap.Authenticated(), "transient failure degrades to unauthenticated")
	assert.Equal(t, "abc", creds.LoadToken(), "transient failure must not destroy the persisted session")
}

func TestInitTimeoutForcesUnauthenticated(t *testing.T) {
	store := NewStore()
	creds := &memCreds{token: "abc"}
	m := NewManager(store, &fakeGateway{profileHang: true}, creds)
	m.SetInitTimeout(30 * time.Millisecond)

	start := time.Now()
	m.Init(context.Background())
	elapsed := time.Since(start)

	snap := store.Snapshot()
	assert.True(t, snap.Initialized, "timeout still terminates initialized")
	assert.False(t, snap.Authenticated())
	assert.Less(t, elapsed, time.Second, "init must respect its ceiling")
}

func TestInitRunsOnce(t *testing.T) {
	store := NewStore()
	creds := &memCreds{token: "abc"}
	gw := &fakeGateway{profileUser: *user(1)}
	m := NewManager(store, gw, creds)

	m.Init(context.Background())
	// A second call must not re-resolve or disturb the state.
	gw.profileErr = errors.New("should not be called again")
	m.Init(context.Background())

	assert.True(t, store.Snapshot().Authenticated())
}

func TestLoginSuccessNavigatesToBoard(t *testing.T) {
	store := NewStore()
	creds := &memCreds{}
	gw := &fakeGateway{loginUser: *user(2), loginToken: "fresh"}
	m := NewManager(store, gw, creds)

	var routes []Route
	m.SetNavigate(func(r Route) { routes = append(routes, r) })
	m.Init(context.Background())

	require.NoError(t, m.Login(context.Background(), "a@example.com", "pw"))

	snap := store.Snapshot()
	assert.True(t, snap.Authenticated())
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Err)
	assert.Equal(t, "fresh", creds.LoadToken(), "token must be persisted on success")
	assert.Equal(t, []Route{RouteBoard}, routes)
}

func TestLoginWrongPassword(t *testing.T) {
	store := NewStore()
	gw := &fakeGateway{loginErr: &statusErr{code: http.StatusUnauthorized, msg: "invalid credentials"}}
	m := NewManager(store, gw, &memCreds{})
	m.Init(context.Background())

	err := m.Login(context.Background(), "a@example.com", "nope")
	require.Error(t, err)

	snap := store.Snapshot()
	assert.False(t, snap.Loading, "loading must return to false")
	assert.Equal(t, "invalid credentials", snap.Err)
	assert.False(t, snap.Authenticated())
}

func TestLoginErrorMessageFallsBackToErrorString(t *testing.T) {
	store := NewStore()
	gw := &fakeGateway{loginErr: errors.New("dial tcp: connection refused")}
	m := NewManager(store, gw, &memCreds{})
	m.Init(context.Background())

	require.Error(t, m.Login(context.Background(), "a@example.com", "pw"))
	assert.Equal(t, "dial tcp: connection refused", store.Snapshot().Err)
}

func TestOverlappingLoginRejected(t *testing.T) {
	store := NewStore()
	gw := &fakeGateway{loginUser: *user(1), loginToken: "tok", release: make(chan struct{})}
	m := NewManager(store, gw, &memCreds{})
	m.Init(context.Background())

	first := make(chan error, 1)
	go func() { first <- m.Login(context.Background(), "a@example.com", "pw") }()

	// Wait for the first attempt to flip loading on.
	require.Eventually(t, func() bool { return store.Snapshot().Loading }, time.Second, time.Millisecond)

	err := m.Login(context.Background(), "a@example.com", "pw")
	assert.ErrorIs(t, err, ErrAuthInFlight)

	close(gw.release)
	require.NoError(t, <-first)
	assert.True(t, store.Snapshot().Authenticated())
}

func TestLateLoginAfterLogoutIsDiscarded(t *testing.T) {
	store := NewStore()
	creds := &memCreds{}
	gw := &fakeGateway{loginUser: *user(1), loginToken: "tok", release: make(chan struct{})}
	m := NewManager(store, gw, creds)
	m.Init(context.Background())

	result := make(chan error, 1)
	go func() { result <- m.Login(context.Background(), "a@example.com", "pw") }()
	require.Eventually(t, func() bool { return store.Snapshot().Loading }, time.Second, time.Millisecond)

	m.Logout()
	close(gw.release)

	err := <-result
	assert.ErrorIs(t, err, ErrAttemptSuperseded)

	snap := store.Snapshot()
	assert.False(t, snap.Authenticated(), "stale success must not re-authenticate")
	assert.Empty(t, creds.LoadToken())
}

// blockingCreds parks SaveToken so a logout can be issued while a login
// success is being committed.
type blockingCreds struct {
	memCreds
	entered chan struct{} // closed when SaveToken is reached
	release chan struct{} // SaveToken waits on this
}

func (c *blockingCreds) SaveToken(token string) error {
	close(c.entered)
	<-c.release
	return c.memCreds.SaveToken(token)
}

func TestLogoutDuringLoginCommit(t *testing.T) {
	store := NewStore()
	creds := &blockingCreds{entered: make(chan struct{}), release: make(chan struct{})}
	gw := &fakeGateway{loginUser: *user(1), loginToken: "tok"}
	m := NewManager(store, gw, creds)
	m.Init(context.Background())

	result := make(chan error, 1)
	go func() { result <- m.Login(context.Background(), "a@example.com", "pw") }()
	<-creds.entered

	// The commit holds the manager lock, so this logout must serialize
	// after it and end on the unauthenticated terminal state. It must
	// never be overwritten by the login it raced with.
	logoutDone := make(chan struct{})
	go func() { m.Logout(); close(logoutDone) }()

	close(creds.release)
	require.NoError(t, <-result)
	<-logoutDone

	snap := store.Snapshot()
	assert.False(t, snap.Authenticated(), "logout issued during the commit must win")
	assert.Empty(t, snap.Token)
	assert.Empty(t, creds.LoadToken(), "credentials cleared by logout must stay cleared")
	_, ok := creds.LoadUser()
	assert.False(t, ok)
}

func TestLogoutTerminalState(t *testing.T) {
	store := NewStore()
	creds := &memCreds{}
	gw := &fakeGateway{loginUser: *user(1), loginToken: "tok"}
	m := NewManager(store, gw, creds)

	var routes []Route
	m.SetNavigate(func(r Route) { routes = append(routes, r) })

	m.Init(context.Background())
	require.NoError(t, m.Login(context.Background(), "a@example.com", "pw"))
	m.Logout()

	want := State{Token: "", User: nil, Loading: false, Err: "", Initialized: true}
	assert.Equal(t, want, store.Snapshot())
	assert.Empty(t, creds.LoadToken())
	_, ok := creds.LoadUser()
	assert.False(t, ok)
	assert.Equal(t, []Route{RouteBoard, RouteLogin}, routes)
}

func TestRegisterSymmetricToLogin(t *testing.T) {
	store := NewStore()
	gw := &fakeGateway{loginUser: *user(5), loginToken: "reg-tok"}
	m := NewManager(store, gw, &memCreds{})
	m.Init(context.Background())

	require.NoError(t, m.Register(context.Background(), "Bo", "bo@example.com", "pw"))
	snap := store.Snapshot()
	assert.True(t, snap.Authenticated())
	assert.Equal(t, "reg-tok", snap.Token)
}
