package rbac

import "strconv"

// Role names shipped with the platform.
const (
	RoleNameAdmin          = "admin"
	RoleNameFinanceManager = "finance_manager"
	RoleNameAccountant     = "accountant"
	RoleNameEmployee       = "employee"
)

type catalogBuilder struct {
	perms []Permission
}

func (b *catalogBuilder) add(resource Resource, action Action, name, description string) {
	b.perms = append(b.perms, Permission{
		ID:          strconv.Itoa(len(b.perms) + 1),
		Name:        name,
		Description: description,
		Resource:    resource,
		Action:      action,
	})
}

func (b *catalogBuilder) crud(resource Resource, noun string) {
	b.add(resource, ActionCreate, "Create "+noun, "Can create "+noun)
	b.add(resource, ActionRead, "Read "+noun, "Can view "+noun)
	b.add(resource, ActionUpdate, "Update "+noun, "Can update "+noun)
	b.add(resource, ActionDelete, "Delete "+noun, "Can delete "+noun)
}

// DefaultPermissions returns the full permission catalog. Every role's
// permission set is a subset of this catalog.
func DefaultPermissions() []Permission {
	b := &catalogBuilder{}
	b.crud(ResourceUsers, "users")
	b.crud(ResourceRoles, "roles")
	b.crud(ResourceRevenues, "revenue entries")
	b.crud(ResourceExpenses, "expense entries")
	b.add(ResourceTransactions, ActionRead, "Read transactions", "Can view transactions")
	b.add(ResourceTransactions, ActionUpdate, "Update transactions", "Can update transactions")
	b.add(ResourceTransactions, ActionManage, "Approve transactions", "Can approve transactions")
	b.crud(ResourceReports, "reports")
	b.add(ResourceDashboard, ActionRead, "Access dashboard", "Can access dashboard")
	b.add(ResourceSettings, ActionRead, "Read settings", "Can view settings")
	b.add(ResourceSettings, ActionUpdate, "Update settings", "Can update settings")
	b.add(ResourceProfile, ActionRead, "Read profile", "Can view own profile")
	b.add(ResourceProfile, ActionUpdate, "Update profile", "Can update own profile")
	b.crud(ResourceDepartments, "departments")
	b.crud(ResourceProjects, "projects")
	b.crud(ResourceCorporateClients, "corporate clients")
	b.crud(ResourceFinancialPlans, "financial plans")
	return b.perms
}

func filterByResource(perms []Permission, resources ...Resource) []Permission {
	keep := make(map[Resource]struct{}, len(resources))
	for _, r := range resources {
		keep[r] = struct{}{}
	}
	out := make([]Permission, 0, len(perms))
	for _, p := range perms {
		if _, ok := keep[p.Resource]; ok {
			out = append(out, p)
		}
	}
	return out
}

// DefaultRoles returns the pre-defined role bundles. The admin role carries
// the full catalog by construction; narrower roles are resource-filtered
// subsets of the same catalog.
func DefaultRoles() []Role {
	catalog := DefaultPermissions()
	return []Role{
		{
			ID:          "1",
			Name:        RoleNameAdmin,
			Description: "System administrator with full access",
			Permissions: catalog,
		},
		{
			ID:          "2",
			Name:        RoleNameFinanceManager,
			Description: "Finance manager with broad permissions over subordinates",
			Permissions: filterByResource(catalog,
				ResourceDashboard, ResourceProfile, ResourceSettings,
				ResourceUsers, ResourceRoles, ResourceRevenues, ResourceExpenses,
				ResourceTransactions, ResourceReports, ResourceDepartments,
				ResourceProjects, ResourceCorporateClients, ResourceFinancialPlans),
		},
		{
			ID:          "3",
			Name:        RoleNameAccountant,
			Description: "Accountant with permissions for financial records and reports",
			Permissions: filterByResource(catalog,
				ResourceDashboard, ResourceProfile,
				ResourceRevenues, ResourceExpenses, ResourceTransactions, ResourceReports),
		},
		{
			ID:          "4",
			Name:        RoleNameEmployee,
			Description: "Employee with basic permissions for personal entries",
			Permissions: filterByResource(catalog,
				ResourceDashboard, ResourceProfile,
				ResourceRevenues, ResourceExpenses),
		},
	}
}

// RolesForUserType returns the default role bundles a user type implies.
// Unknown user types resolve to no roles.
func RolesForUserType(t UserType) []Role {
	var name string
	switch t {
	case UserTypeAdmin:
		name = RoleNameAdmin
	case UserTypeFinanceManager:
		name = RoleNameFinanceManager
	case UserTypeAccountant:
		name = RoleNameAccountant
	case UserTypeEmployee:
		name = RoleNameEmployee
	default:
		return nil
	}
	for _, role := range DefaultRoles() {
		if role.Name == name {
			return []Role{role}
		}
	}
	return nil
}
