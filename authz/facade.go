// Package authz offers read-only convenience queries over the session
// manager. It makes no decisions of its own; it only phrases common questions
// about the current principal.
package authz

import (
	"github.com/finora-app/finora-client/rbac"
	"github.com/finora-app/finora-client/session"
)

// Facade answers identity questions about the current session.
type Facade struct {
	sessions *session.Manager
}

// New constructs a Facade over the given session manager.
func New(sessions *session.Manager) *Facade {
	return &Facade{sessions: sessions}
}

// IsAdmin reports whether the principal is administrative: either it holds
// the admin role or its user type is one of the administrative types.
func (f *Facade) IsAdmin() bool {
	user := f.sessions.CurrentUser()
	if user == nil {
		return false
	}
	if user.HasRole(rbac.RoleNameAdmin) {
		return true
	}
	return user.UserType == rbac.UserTypeAdmin || user.UserType == rbac.UserTypeFinanceManager
}

// HasRole reports whether the principal holds the named role.
func (f *Facade) HasRole(name string) bool {
	return f.sessions.CurrentUser().HasRole(name)
}

// HasUserType reports whether the principal has the given user type.
func (f *Facade) HasUserType(t rbac.UserType) bool {
	user := f.sessions.CurrentUser()
	return user != nil && user.UserType == t
}

// IsFinanceManager reports whether the principal is a finance manager.
func (f *Facade) IsFinanceManager() bool {
	return f.HasUserType(rbac.UserTypeFinanceManager)
}

// IsAccountant reports whether the principal is an accountant.
func (f *Facade) IsAccountant() bool {
	return f.HasUserType(rbac.UserTypeAccountant)
}

// IsEmployee reports whether the principal is an employee.
func (f *Facade) IsEmployee() bool {
	return f.HasUserType(rbac.UserTypeEmployee)
}

// HasPermission delegates to the session manager's permission evaluation.
func (f *Facade) HasPermission(resource rbac.Resource, action rbac.Action) bool {
	return f.sessions.HasPermission(resource, action)
}
