// Package session owns the client-side session lifecycle: the login state
// machine, the persisted snapshot, permission evaluation against the current
// principal and the guaranteed teardown on logout.
package session

import "context"

// Keys written to the durable store by login. Logout clears TeardownKeys,
// a superset; auxiliary keys may have been written by older client versions
// or by the embedding application.
const (
	KeyUser        = "user"
	KeyToken       = "token"
	KeyAuthState   = "authState"
	KeyPermissions = "permissions"
	KeyUserRole    = "userRole"
	KeySessionData = "sessionData"
)

// TeardownKeys lists every persisted key logout must remove.
func TeardownKeys() []string {
	return []string{KeyUser, KeyToken, KeyAuthState, KeyPermissions, KeyUserRole, KeySessionData}
}

// Store is string-keyed, string-valued storage. The durable store holds the
// serialized session snapshot across restarts; a second, transient store
// carries session-scoped scratch data and is wiped wholesale on logout.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
