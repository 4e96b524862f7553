package session_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finora-app/finora-client/auth"
	"github.com/finora-app/finora-client/rbac"
	"github.com/finora-app/finora-client/session"
)

type stubAuth struct {
	login       *auth.Login
	loginErr    error
	logoutErr   error
	logoutCalls int
	lastToken   string
	cleared     int
}

func (s *stubAuth) Login(ctx context.Context, username, password string) (*auth.Login, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.login, nil
}

func (s *stubAuth) Logout(ctx context.Context, token string) error {
	s.logoutCalls++
	s.lastToken = token
	return s.logoutErr
}

func (s *stubAuth) ClearCookies() { s.cleared++ }

type stubRoles struct {
	roles []rbac.Role
	err   error
	calls int
}

func (s *stubRoles) RolesForUserType(ctx context.Context, t rbac.UserType) ([]rbac.Role, error) {
	s.calls++
	return s.roles, s.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func userOfType(t rbac.UserType, id, username string) auth.User {
	return auth.User{
		ID:       id,
		Username: username,
		Name:     username,
		UserType: t,
		Roles:    rbac.RolesForUserType(t),
		IsActive: true,
	}
}

func newManager(t *testing.T, svc *stubAuth, store session.Store) *session.Manager {
	t.Helper()
	if store == nil {
		store = session.NewMemStore()
	}
	m, err := session.NewManager(context.Background(), session.Config{
		Auth:   svc,
		Store:  store,
		Logger: quietLogger(),
	})
	require.NoError(t, err)
	return m
}

func TestLoginCommitsAndPersists(t *testing.T) {
	store := session.NewMemStore()
	admin := userOfType(rbac.UserTypeAdmin, "1", "admin")
	svc := &stubAuth{login: &auth.Login{User: admin, Token: "tok-1"}}
	m := newManager(t, svc, store)

	require.NoError(t, m.Login(context.Background(), "admin", "password1"))

	assert.True(t, m.IsAuthenticated())
	assert.Equal(t, session.StateAuthenticated, m.Snapshot().State)
	assert.False(t, m.Snapshot().IsLoading)
	assert.True(t, m.HasPermission(rbac.ResourceUsers, rbac.ActionDelete))

	_, ok, _ := store.Get(context.Background(), session.KeyUser)
	assert.True(t, ok, "user snapshot persisted")
	tok, ok, _ := store.Get(context.Background(), session.KeyToken)
	require.True(t, ok)
	assert.Equal(t, "tok-1", tok)
}

func TestInactiveAccountNeverAuthenticates(t *testing.T) {
	store := session.NewMemStore()
	user := userOfType(rbac.UserTypeEmployee, "4", "jane_employee")
	user.IsActive = false
	svc := &stubAuth{login: &auth.Login{User: user, Token: "tok-4"}}
	m := newManager(t, svc, store)

	err := m.Login(context.Background(), "jane_employee", "password4")
	require.Error(t, err)

	var inactive *auth.InactiveAccountError
	require.ErrorAs(t, err, &inactive)
	assert.Contains(t, err.Error(), "inactive")
	assert.Contains(t, err.Error(), "jane_employee")

	snap := m.Snapshot()
	assert.False(t, snap.IsAuthenticated())
	assert.Equal(t, session.StateUnauthenticated, snap.State)
	assert.False(t, snap.IsLoading)
	require.Error(t, snap.Err)

	_, ok, _ := store.Get(context.Background(), session.KeyUser)
	assert.False(t, ok, "inactive login must not persist a session")
	_, ok, _ = store.Get(context.Background(), session.KeyToken)
	assert.False(t, ok)
}

func TestLoginFailureLeavesUnauthenticated(t *testing.T) {
	svc := &stubAuth{loginErr: auth.ErrInvalidCredentials}
	m := newManager(t, svc, nil)

	err := m.Login(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	snap := m.Snapshot()
	assert.False(t, snap.IsAuthenticated())
	assert.Equal(t, session.StateError, snap.State)
	assert.False(t, snap.IsLoading, "loading flag clears on the error path")
	assert.ErrorIs(t, snap.Err, auth.ErrInvalidCredentials)
}

func TestLogoutClearsEverythingEvenOffline(t *testing.T) {
	store := session.NewMemStore()
	transient := session.NewMemStore()
	ctx := context.Background()

	admin := userOfType(rbac.UserTypeAdmin, "1", "admin")
	svc := &stubAuth{
		login:     &auth.Login{User: admin, Token: "tok-1"},
		logoutErr: errors.New("network is down"),
	}
	m, err := session.NewManager(ctx, session.Config{
		Auth:      svc,
		Store:     store,
		Transient: transient,
		Logger:    quietLogger(),
	})
	require.NoError(t, err)
	require.NoError(t, m.Login(ctx, "admin", "password1"))

	// Auxiliary keys written by the embedding application must go too.
	require.NoError(t, store.Set(ctx, session.KeyAuthState, "authenticated"))
	require.NoError(t, store.Set(ctx, session.KeyPermissions, "[]"))
	require.NoError(t, store.Set(ctx, session.KeyUserRole, "admin"))
	require.NoError(t, store.Set(ctx, session.KeySessionData, "{}"))
	require.NoError(t, transient.Set(ctx, "draft", "expense form"))

	m.Logout(ctx)

	assert.Equal(t, 1, svc.logoutCalls)
	assert.Equal(t, "tok-1", svc.lastToken)
	for _, key := range session.TeardownKeys() {
		_, ok, _ := store.Get(ctx, key)
		assert.False(t, ok, "key %q must be cleared", key)
	}
	assert.Equal(t, 0, transient.Len(), "transient storage wiped")
	assert.Equal(t, 1, svc.cleared, "cookies expired")
	assert.False(t, m.IsAuthenticated())
	assert.Nil(t, m.CurrentUser())
	assert.Equal(t, session.StateUnauthenticated, m.Snapshot().State)
}

func TestLogoutWithoutSessionStillTearsDown(t *testing.T) {
	store := session.NewMemStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, session.KeyAuthState, "stale"))

	svc := &stubAuth{}
	m := newManager(t, svc, store)
	m.Logout(ctx)

	assert.Equal(t, 0, svc.logoutCalls, "no token, no remote call")
	_, ok, _ := store.Get(ctx, session.KeyAuthState)
	assert.False(t, ok)
	assert.Equal(t, 1, svc.cleared)
}

func TestHasPermissionWithoutSession(t *testing.T) {
	m := newManager(t, &stubAuth{}, nil)

	assert.False(t, m.HasPermission(rbac.ResourceUsers, rbac.ActionRead))
	assert.False(t, m.HasPermission(rbac.Resource(""), rbac.Action("")))
}

func TestManageWildcardGrantsEveryAction(t *testing.T) {
	user := auth.User{
		ID: "9", Username: "approver", UserType: rbac.UserTypeAccountant, IsActive: true,
		Roles: []rbac.Role{{
			ID: "r1", Name: "approver",
			Permissions: []rbac.Permission{{Resource: rbac.ResourceTransactions, Action: rbac.ActionManage}},
		}},
	}
	svc := &stubAuth{login: &auth.Login{User: user, Token: "tok"}}
	m := newManager(t, svc, nil)
	require.NoError(t, m.Login(context.Background(), "approver", "pw"))

	for _, action := range []rbac.Action{rbac.ActionCreate, rbac.ActionRead, rbac.ActionUpdate, rbac.ActionDelete, rbac.ActionManage} {
		assert.True(t, m.HasPermission(rbac.ResourceTransactions, action), "manage must satisfy %s", action)
	}
	assert.False(t, m.HasPermission(rbac.ResourceReports, rbac.ActionRead))
}

func TestHasUserPermissionRestrictedToCurrentUser(t *testing.T) {
	admin := userOfType(rbac.UserTypeAdmin, "1", "admin")
	svc := &stubAuth{login: &auth.Login{User: admin, Token: "tok"}}
	m := newManager(t, svc, nil)
	require.NoError(t, m.Login(context.Background(), "admin", "password1"))

	assert.True(t, m.HasUserPermission("1", rbac.ResourceUsers, rbac.ActionDelete))
	assert.False(t, m.HasUserPermission("2", rbac.ResourceUsers, rbac.ActionDelete))
	assert.False(t, m.HasUserPermission("", rbac.ResourceUsers, rbac.ActionDelete))
}

func TestRestoreFromStore(t *testing.T) {
	store := session.NewMemStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, session.KeyUser,
		`{"id":"3","username":"accountant","name":"John Accountant","userType":"ACCOUNTANT","isActive":true,`+
			`"roles":[{"id":"3","name":"accountant","permissions":[{"resource":"reports","action":"read"}]}]}`))
	require.NoError(t, store.Set(ctx, session.KeyToken, "opaque-token"))

	m := newManager(t, &stubAuth{}, store)

	assert.True(t, m.IsAuthenticated(), "valid snapshot hydrates without a server round trip")
	assert.Equal(t, "opaque-token", m.Token())
	assert.True(t, m.HasPermission(rbac.ResourceReports, rbac.ActionRead))
}

func TestCorruptSnapshotDiscarded(t *testing.T) {
	store := session.NewMemStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, session.KeyUser, "{not json"))

	m := newManager(t, &stubAuth{}, store)

	assert.False(t, m.IsAuthenticated())
	_, ok, _ := store.Get(ctx, session.KeyUser)
	assert.False(t, ok, "corrupt snapshot removed from storage")
}

func TestExpiredTokenDiscardsSnapshot(t *testing.T) {
	store := session.NewMemStore()
	ctx := context.Background()

	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "3",
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, session.KeyUser, `{"id":"3","username":"accountant","userType":"ACCOUNTANT","isActive":true,"roles":[]}`))
	require.NoError(t, store.Set(ctx, session.KeyToken, expired))

	m := newManager(t, &stubAuth{}, store)

	assert.False(t, m.IsAuthenticated())
	_, ok, _ := store.Get(ctx, session.KeyUser)
	assert.False(t, ok)
	_, ok, _ = store.Get(ctx, session.KeyToken)
	assert.False(t, ok)
}

func TestRefreshUserMergesRoles(t *testing.T) {
	existing := rbac.Role{ID: "2", Name: "finance_manager_custom", Permissions: []rbac.Permission{
		{Resource: rbac.ResourceReports, Action: rbac.ActionManage},
	}}
	user := auth.User{ID: "2", Username: "manager", UserType: rbac.UserTypeFinanceManager, IsActive: true, Roles: []rbac.Role{existing}}
	svc := &stubAuth{login: &auth.Login{User: user, Token: "tok"}}
	roles := &stubRoles{roles: []rbac.Role{
		{ID: "2", Name: "finance_manager"}, // same id: existing wins
		{ID: "7", Name: "auditor", Permissions: []rbac.Permission{{Resource: rbac.ResourceTransactions, Action: rbac.ActionRead}}},
	}}

	m, err := session.NewManager(context.Background(), session.Config{
		Auth:   svc,
		Store:  session.NewMemStore(),
		Roles:  roles,
		Logger: quietLogger(),
	})
	require.NoError(t, err)
	require.NoError(t, m.Login(context.Background(), "manager", "pw"))

	require.NoError(t, m.RefreshUser(context.Background()))

	got := m.CurrentUser()
	require.NotNil(t, got)
	require.Len(t, got.Roles, 2)
	assert.Equal(t, "finance_manager_custom", got.Roles[0].Name, "existing role kept on id conflict")
	assert.Equal(t, "auditor", got.Roles[1].Name)
	assert.True(t, m.HasPermission(rbac.ResourceTransactions, rbac.ActionRead))
}

func TestRefreshUserFailureKeepsSession(t *testing.T) {
	admin := userOfType(rbac.UserTypeAdmin, "1", "admin")
	svc := &stubAuth{login: &auth.Login{User: admin, Token: "tok"}}
	roles := &stubRoles{err: errors.New("role service unavailable")}

	m, err := session.NewManager(context.Background(), session.Config{
		Auth:   svc,
		Store:  session.NewMemStore(),
		Roles:  roles,
		Logger: quietLogger(),
	})
	require.NoError(t, err)
	require.NoError(t, m.Login(context.Background(), "admin", "password1"))

	err = m.RefreshUser(context.Background())
	assert.Error(t, err)
	assert.True(t, m.IsAuthenticated(), "refresh failure never invalidates the session")
	assert.True(t, m.HasPermission(rbac.ResourceUsers, rbac.ActionDelete))
}

func TestRefreshUserWithoutSessionIsNoop(t *testing.T) {
	roles := &stubRoles{}
	m, err := session.NewManager(context.Background(), session.Config{
		Auth:   &stubAuth{},
		Store:  session.NewMemStore(),
		Roles:  roles,
		Logger: quietLogger(),
	})
	require.NoError(t, err)

	require.NoError(t, m.RefreshUser(context.Background()))
	assert.Equal(t, 0, roles.calls)
}

func TestSubscribeObservesTransitions(t *testing.T) {
	admin := userOfType(rbac.UserTypeAdmin, "1", "admin")
	svc := &stubAuth{login: &auth.Login{User: admin, Token: "tok"}}
	m := newManager(t, svc, nil)

	var states []session.State
	unsubscribe := m.Subscribe(func(s session.Snapshot) {
		states = append(states, s.State)
	})

	require.NoError(t, m.Login(context.Background(), "admin", "password1"))
	m.Logout(context.Background())

	require.GreaterOrEqual(t, len(states), 3)
	assert.Equal(t, session.StateAuthenticating, states[0])
	assert.Contains(t, states, session.StateAuthenticated)
	assert.Equal(t, session.StateUnauthenticated, states[len(states)-1])

	unsubscribe()
	seen := len(states)
	require.NoError(t, m.Login(context.Background(), "admin", "password1"))
	assert.Equal(t, seen, len(states), "unsubscribed observer receives nothing")
}
