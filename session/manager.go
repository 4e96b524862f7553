package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/finora-app/finora-client/auth"
	"github.com/finora-app/finora-client/rbac"
)

// State names the session lifecycle phases.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
	StateError           State = "error"
)

// Authenticator is the slice of the auth service the manager depends on.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*auth.Login, error)
	Logout(ctx context.Context, token string) error
	ClearCookies()
}

// RoleSource supplies the role bundles a user type implies. RefreshUser
// merges its answer into the current session.
type RoleSource interface {
	RolesForUserType(ctx context.Context, t rbac.UserType) ([]rbac.Role, error)
}

// StaticRoleSource serves the built-in role catalog.
type StaticRoleSource struct{}

// RolesForUserType returns the default bundles for t.
func (StaticRoleSource) RolesForUserType(_ context.Context, t rbac.UserType) ([]rbac.Role, error) {
	return rbac.RolesForUserType(t), nil
}

// Snapshot is the immutable view of the session handed to subscribers and
// guards.
type Snapshot struct {
	State     State
	User      *auth.User
	IsLoading bool
	Err       error
}

// IsAuthenticated reports whether a principal is signed in. It is derived
// from user presence and never stored separately.
func (s Snapshot) IsAuthenticated() bool {
	return s.User != nil
}

// Config wires the manager's collaborators.
type Config struct {
	Auth      Authenticator
	Store     Store // durable snapshot storage
	Transient Store // session-scoped scratch storage; in-memory when nil
	Roles     RoleSource
	Logger    *slog.Logger
	LoginPath string // redirect target after teardown; "/" when empty
}

// Manager owns the current session. All state transitions run through it;
// consumers observe them via Subscribe or the read accessors.
type Manager struct {
	mu        sync.RWMutex
	state     State
	user      *auth.User
	token     string
	isLoading bool
	err       error

	authsvc   Authenticator
	roles     RoleSource
	store     Store
	transient Store
	logger    *slog.Logger
	loginPath string

	refresh singleflight.Group

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// NewManager constructs a Manager and restores any persisted session. A
// stored snapshot that fails to parse is discarded and the manager starts
// unauthenticated; a valid snapshot hydrates straight into Authenticated
// without contacting the server.
func NewManager(ctx context.Context, cfg Config) (*Manager, error) {
	if cfg.Auth == nil {
		return nil, errors.New("session: authenticator is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("session: durable store is required")
	}
	transient := cfg.Transient
	if transient == nil {
		transient = NewMemStore()
	}
	roles := cfg.Roles
	if roles == nil {
		roles = StaticRoleSource{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = "/"
	}

	m := &Manager{
		state:     StateUnauthenticated,
		authsvc:   cfg.Auth,
		roles:     roles,
		store:     cfg.Store,
		transient: transient,
		logger:    logger,
		loginPath: loginPath,
		subs:      make(map[int]func(Snapshot)),
	}
	m.restore(ctx)
	return m, nil
}

func (m *Manager) restore(ctx context.Context) {
	raw, ok, err := m.store.Get(ctx, KeyUser)
	if err != nil {
		m.logger.Warn("session restore", slog.Any("error", err))
		return
	}
	if !ok {
		return
	}

	var user auth.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		m.logger.Warn("discarding corrupt session snapshot", slog.Any("error", err))
		if err := m.store.Delete(ctx, KeyUser); err != nil {
			m.logger.Warn("delete corrupt snapshot", slog.Any("error", err))
		}
		return
	}

	token, _, err := m.store.Get(ctx, KeyToken)
	if err != nil {
		m.logger.Warn("session restore token", slog.Any("error", err))
		return
	}
	if tokenExpired(token) {
		m.logger.Info("stored token expired, discarding session", slog.String("username", user.Username))
		for _, key := range []string{KeyUser, KeyToken} {
			if err := m.store.Delete(ctx, key); err != nil {
				m.logger.Warn("delete expired session key", slog.String("key", key), slog.Any("error", err))
			}
		}
		return
	}

	m.user = &user
	m.token = token
	m.state = StateAuthenticated
}

// tokenExpired inspects the token's exp claim without verifying the
// signature; the server remains authoritative for every actual request.
// Opaque (non-JWT) tokens are treated as live.
func tokenExpired(token string) bool {
	if token == "" {
		return false
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

// Snapshot returns the current session view.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{State: m.state, User: m.user, IsLoading: m.isLoading, Err: m.err}
}

// IsAuthenticated reports whether a session exists.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil
}

// CurrentUser returns the signed-in user, or nil.
func (m *Manager) CurrentUser() *auth.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// Token returns the current bearer token, empty when signed out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// LoginPath returns the navigation target for unauthenticated principals.
func (m *Manager) LoginPath() string {
	return m.loginPath
}

// Login authenticates the credentials and commits the session. An inactive
// account never commits: the error names the account and its classification
// and the state returns to Unauthenticated. The loading flag clears on every
// exit path.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	m.mu.Lock()
	m.state = StateAuthenticating
	m.isLoading = true
	m.err = nil
	m.mu.Unlock()
	m.notify()

	login, err := m.authsvc.Login(ctx, username, password)
	if err != nil {
		m.fail(StateError, err)
		return err
	}

	if !login.User.IsActive {
		inactive := &auth.InactiveAccountError{
			Username:  login.User.Username,
			UserType:  login.User.UserType,
			AdminType: login.User.AdminType,
		}
		m.fail(StateUnauthenticated, inactive)
		return inactive
	}

	m.persist(ctx, &login.User, login.Token)

	m.mu.Lock()
	m.user = &login.User
	m.token = login.Token
	m.state = StateAuthenticated
	m.isLoading = false
	m.err = nil
	m.mu.Unlock()
	m.notify()

	m.logger.Info("session established",
		slog.String("username", login.User.Username),
		slog.String("user_type", string(login.User.UserType)))
	return nil
}

func (m *Manager) fail(state State, err error) {
	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.state = state
	m.isLoading = false
	m.err = err
	m.mu.Unlock()
	m.notify()
	m.logger.Warn("login failed", slog.Any("error", err))
}

func (m *Manager) persist(ctx context.Context, user *auth.User, token string) {
	snapshot, err := json.Marshal(user)
	if err != nil {
		m.logger.Warn("marshal session snapshot", slog.Any("error", err))
		return
	}
	if err := m.store.Set(ctx, KeyUser, string(snapshot)); err != nil {
		m.logger.Warn("persist session snapshot", slog.Any("error", err))
	}
	if err := m.store.Set(ctx, KeyToken, token); err != nil {
		m.logger.Warn("persist token", slog.Any("error", err))
	}
}

// Logout attempts the remote logout with the current token, then performs the
// full local teardown regardless of the remote outcome. The teardown removes
// every persisted auth key, wipes the transient store and expires application
// cookies. Logout never surfaces an error.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.RLock()
	token := m.token
	m.mu.RUnlock()

	if token != "" {
		if err := m.authsvc.Logout(ctx, token); err != nil {
			m.logger.Warn("remote logout, proceeding with local teardown", slog.Any("error", err))
		}
	}

	m.teardown(ctx)
}

func (m *Manager) teardown(ctx context.Context) {
	for _, key := range TeardownKeys() {
		if err := m.store.Delete(ctx, key); err != nil {
			m.logger.Warn("teardown delete", slog.String("key", key), slog.Any("error", err))
		}
	}
	if err := m.transient.Clear(ctx); err != nil {
		m.logger.Warn("teardown transient clear", slog.Any("error", err))
	}
	m.authsvc.ClearCookies()

	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.state = StateUnauthenticated
	m.isLoading = false
	m.err = nil
	m.mu.Unlock()
	m.notify()

	m.logger.Info("session cleared")
}

// HasPermission reports whether any role in the session grants the action on
// the resource, honouring the manage wildcard. Without a session the answer
// is always false.
func (m *Manager) HasPermission(resource rbac.Resource, action rbac.Action) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return false
	}
	for _, role := range m.user.Roles {
		if role.Allows(resource, action) {
			return true
		}
	}
	return false
}

// HasUserPermission answers permission checks for the current principal only;
// evaluating third parties would need a privileged server call. Any other
// userID is denied.
func (m *Manager) HasUserPermission(userID string, resource rbac.Resource, action rbac.Action) bool {
	m.mu.RLock()
	current := m.user
	m.mu.RUnlock()
	if current == nil || current.ID != userID {
		return false
	}
	return m.HasPermission(resource, action)
}

// RefreshUser re-derives the role set for the session's user type and merges
// any roles not already held, keeping existing roles on id conflicts.
// Concurrent calls collapse into one lookup. Failures are logged and the
// session is left untouched; a refresh failure never invalidates a session.
func (m *Manager) RefreshUser(ctx context.Context) error {
	m.mu.RLock()
	current := m.user
	m.mu.RUnlock()
	if current == nil {
		return nil
	}

	_, err, _ := m.refresh.Do(current.ID, func() (any, error) {
		derived, err := m.roles.RolesForUserType(ctx, current.UserType)
		if err != nil {
			return nil, err
		}

		m.mu.Lock()
		if m.user == nil {
			m.mu.Unlock()
			return nil, nil
		}
		held := make(map[string]struct{}, len(m.user.Roles))
		for _, role := range m.user.Roles {
			held[role.ID] = struct{}{}
		}
		merged := m.user.Roles
		for _, role := range derived {
			if _, ok := held[role.ID]; !ok {
				merged = append(merged, role)
			}
		}
		refreshed := *m.user
		refreshed.Roles = merged
		m.user = &refreshed
		token := m.token
		m.mu.Unlock()

		m.persist(ctx, &refreshed, token)
		m.notify()
		return nil, nil
	})
	if err != nil {
		m.logger.Warn("refresh user roles", slog.Any("error", err))
		return err
	}
	return nil
}

// Subscribe registers fn for session snapshots; it fires on every state
// transition. The returned function cancels the subscription.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.subMu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func (m *Manager) notify() {
	snap := m.Snapshot()
	m.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}
