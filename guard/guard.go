// Package guard turns session state plus a requirement into a render
// decision. Guards never render anything themselves; the UI layer maps each
// Decision onto its own widgets and navigation.
package guard

import (
	"github.com/finora-app/finora-client/access"
	"github.com/finora-app/finora-client/authz"
	"github.com/finora-app/finora-client/rbac"
	"github.com/finora-app/finora-client/session"
)

// Outcome is the verdict for a protected view.
type Outcome int

const (
	// Render means the children may be shown.
	Render Outcome = iota
	// RenderFallback means the caller's declared fallback should be shown.
	RenderFallback
	// Redirect means navigation to Decision.RedirectTo.
	Redirect
	// Loading means the session is still resolving; show a loading
	// indicator and re-evaluate on the next snapshot.
	Loading
)

// Decision tells the UI what to do.
type Decision struct {
	Outcome    Outcome
	RedirectTo string
}

// DefaultUnauthorizedPath is where denied principals are sent when the caller
// supplies no fallback and no explicit target.
const DefaultUnauthorizedPath = "/unauthorized"

// Options configure the behaviour shared by all guard variants.
type Options struct {
	// HasFallback marks that the caller renders its own denial view instead
	// of being redirected.
	HasFallback bool
	// RedirectTo overrides the unauthorized path.
	RedirectTo string
}

// Guard evaluates requirements against the current session.
type Guard struct {
	sessions *session.Manager
	authz    *authz.Facade
}

// New constructs a Guard over the session manager.
func New(sessions *session.Manager) *Guard {
	return &Guard{sessions: sessions, authz: authz.New(sessions)}
}

// RequirePermission admits principals holding the permission for the
// resource/action pair.
func (g *Guard) RequirePermission(resource rbac.Resource, action rbac.Action, opts Options) Decision {
	return g.decide(opts, func() bool {
		return g.sessions.HasPermission(resource, action)
	})
}

// RequireAnyRole admits principals holding at least one of the named roles.
func (g *Guard) RequireAnyRole(names []string, opts Options) Decision {
	return g.decide(opts, func() bool {
		for _, name := range names {
			if g.authz.HasRole(name) {
				return true
			}
		}
		return false
	})
}

// RequireAnyUserType admits principals of at least one of the given types.
func (g *Guard) RequireAnyUserType(types []rbac.UserType, opts Options) Decision {
	return g.decide(opts, func() bool {
		for _, t := range types {
			if g.authz.HasUserType(t) {
				return true
			}
		}
		return false
	})
}

// RequireComponent admits principals whose user type may render the component
// according to the access table.
func (g *Guard) RequireComponent(table *access.Table, id access.ComponentID, opts Options) Decision {
	return g.decide(opts, func() bool {
		user := g.sessions.CurrentUser()
		if user == nil {
			return false
		}
		return table.CanAccessComponent(user.UserType, id)
	})
}

// decide implements the flow every variant shares: loading wins, then the
// unauthenticated redirect, then the predicate with fallback-or-redirect on
// denial.
func (g *Guard) decide(opts Options, allowed func() bool) Decision {
	snap := g.sessions.Snapshot()
	if snap.IsLoading {
		return Decision{Outcome: Loading}
	}
	if !snap.IsAuthenticated() {
		return Decision{Outcome: Redirect, RedirectTo: g.sessions.LoginPath()}
	}
	if allowed() {
		return Decision{Outcome: Render}
	}
	if opts.HasFallback {
		return Decision{Outcome: RenderFallback}
	}
	target := opts.RedirectTo
	if target == "" {
		target = DefaultUnauthorizedPath
	}
	return Decision{Outcome: Redirect, RedirectTo: target}
}
