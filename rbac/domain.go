// Package rbac defines the permission vocabulary the Finora client mirrors
// from the platform: resources, actions, permissions, roles and the coarse
// user-type classification. The package is pure data; evaluation lives with
// the session manager and the component access table.
package rbac

// Resource identifies a domain noun permissions are granted on. The set is
// closed; every lookup table in this module references these constants so the
// vocabulary is declared exactly once.
type Resource string

const (
	ResourceUsers            Resource = "users"
	ResourceRoles            Resource = "roles"
	ResourceRevenues         Resource = "revenues"
	ResourceExpenses         Resource = "expenses"
	ResourceTransactions     Resource = "transactions"
	ResourceReports          Resource = "reports"
	ResourceDashboard        Resource = "dashboard"
	ResourceProfile          Resource = "profile"
	ResourceSettings         Resource = "settings"
	ResourceDepartments      Resource = "departments"
	ResourceProjects         Resource = "projects"
	ResourceCorporateClients Resource = "corporate_clients"
	ResourceFinancialPlans   Resource = "financial_plans"
)

// String returns the string representation of a Resource.
func (r Resource) String() string { return string(r) }

// Valid reports whether r belongs to the platform vocabulary.
func (r Resource) Valid() bool {
	switch r {
	case ResourceUsers, ResourceRoles, ResourceRevenues, ResourceExpenses,
		ResourceTransactions, ResourceReports, ResourceDashboard,
		ResourceProfile, ResourceSettings, ResourceDepartments,
		ResourceProjects, ResourceCorporateClients, ResourceFinancialPlans:
		return true
	}
	return false
}

// Action is the verb half of a permission.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	// ActionManage is a wildcard grant covering every other action on the
	// same resource.
	ActionManage Action = "manage"
)

// String returns the string representation of an Action.
func (a Action) String() string { return string(a) }

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionManage:
		return true
	}
	return false
}

// Satisfies reports whether a grant for the receiver covers the requested
// action.
func (a Action) Satisfies(requested Action) bool {
	return a == requested || a == ActionManage
}

// Permission is the atomic grantable unit: one action on one resource.
type Permission struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Resource    Resource `json:"resource"`
	Action      Action   `json:"action"`
}

// Role bundles permissions under a name. The order of the set carries no
// meaning.
type Role struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions"`
}

// Allows reports whether the role holds a permission covering the given
// resource and action, honouring the manage wildcard.
func (r Role) Allows(resource Resource, action Action) bool {
	for _, p := range r.Permissions {
		if p.Resource == resource && p.Action.Satisfies(action) {
			return true
		}
	}
	return false
}

// UserType classifies a principal independently of its role set. It feeds the
// component access table and serves as a secondary, static authorization
// signal.
type UserType string

const (
	UserTypeAdmin          UserType = "ADMIN"
	UserTypeFinanceManager UserType = "FINANCE_MANAGER"
	UserTypeAccountant     UserType = "ACCOUNTANT"
	UserTypeEmployee       UserType = "EMPLOYEE"
)

// Valid reports whether t is a known user type.
func (t UserType) Valid() bool {
	switch t {
	case UserTypeAdmin, UserTypeFinanceManager, UserTypeAccountant, UserTypeEmployee:
		return true
	}
	return false
}

// AdminType refines UserType for administrative principals.
type AdminType string

const (
	AdminTypeSystem  AdminType = "SYSTEM_ADMIN"
	AdminTypeFinance AdminType = "FINANCE_ADMIN"
)

// AdminTypeFor returns the administrative refinement a user type implies.
// Each user type maps to at most one admin type.
func AdminTypeFor(t UserType) (AdminType, bool) {
	switch t {
	case UserTypeAdmin:
		return AdminTypeSystem, true
	case UserTypeFinanceManager:
		return AdminTypeFinance, true
	default:
		return "", false
	}
}
