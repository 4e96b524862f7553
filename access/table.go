package access

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/finora-app/finora-client/rbac"
)

type grantKey struct {
	resource rbac.Resource
	action   rbac.Action
}

// Table answers component render questions for user types and permission
// pairs. The tables are fixed for the lifetime of a Table instance; decisions
// for user types are memoized write-once, which is safe because identical
// keys always recompute to the same value. Rebuilding the Table discards the
// cache with it.
type Table struct {
	registry map[ComponentID]Component
	byGrant  map[grantKey][]ComponentID
	allowed  map[rbac.UserType]map[ComponentID]struct{}

	memo    sync.Map // "userType:componentID" -> bool
	lookups atomic.Int64
}

// New builds the Table from the default component registry and allow lists.
func New() (*Table, error) {
	return NewTable(DefaultComponents(), DefaultAllowLists())
}

// NewTable builds a Table from an explicit registry and per-user-type allow
// lists. Construction fails fast on duplicate component ids and on allow-list
// entries that reference unregistered components.
func NewTable(components []Component, allowLists map[rbac.UserType][]ComponentID) (*Table, error) {
	registry, err := buildRegistry(components)
	if err != nil {
		return nil, err
	}

	byGrant := make(map[grantKey][]ComponentID)
	for _, c := range components {
		if c.Resource == "" {
			continue
		}
		key := grantKey{resource: c.Resource, action: c.Action}
		byGrant[key] = append(byGrant[key], c.ID)
	}

	allowed := make(map[rbac.UserType]map[ComponentID]struct{}, len(allowLists))
	for userType, ids := range allowLists {
		set := make(map[ComponentID]struct{}, len(ids))
		for _, id := range ids {
			if _, ok := registry[id]; !ok {
				return nil, fmt.Errorf("access: allow list for %s references unregistered component %q", userType, id)
			}
			set[id] = struct{}{}
		}
		allowed[userType] = set
	}

	return &Table{registry: registry, byGrant: byGrant, allowed: allowed}, nil
}

// CanAccessComponent reports whether the user type may render the component.
// Admin bypasses the table entirely; unknown user types and unlisted
// components are denied.
func (t *Table) CanAccessComponent(userType rbac.UserType, id ComponentID) bool {
	key := string(userType) + ":" + string(id)
	if cached, ok := t.memo.Load(key); ok {
		return cached.(bool)
	}

	t.lookups.Add(1)
	granted := t.computeAccess(userType, id)
	t.memo.LoadOrStore(key, granted)
	return granted
}

func (t *Table) computeAccess(userType rbac.UserType, id ComponentID) bool {
	if userType == rbac.UserTypeAdmin {
		return true
	}
	set, ok := t.allowed[userType]
	if !ok {
		return false
	}
	_, ok = set[id]
	return ok
}

// CanAccessComponentByPermission reports whether the component is among those
// derived for the resource/action pair. Unknown pairs resolve to false.
func (t *Table) CanAccessComponentByPermission(resource rbac.Resource, action rbac.Action, id ComponentID) bool {
	for _, candidate := range t.byGrant[grantKey{resource: resource, action: action}] {
		if candidate == id {
			return true
		}
	}
	return false
}

// ComponentsFor returns the component ids derived for a resource/action pair.
func (t *Table) ComponentsFor(resource rbac.Resource, action rbac.Action) []ComponentID {
	ids := t.byGrant[grantKey{resource: resource, action: action}]
	out := make([]ComponentID, len(ids))
	copy(out, ids)
	return out
}

// DefaultAllowLists maps each user type to the components it may render.
// Admin is listed for completeness; evaluation bypasses the table for it.
func DefaultAllowLists() map[rbac.UserType][]ComponentID {
	common := []ComponentID{
		ComponentLogin,
		ComponentHeader,
		ComponentSidebarDashboard,
		ComponentSidebarProfile,
		ComponentProfileView,
		ComponentProfileEdit,
	}

	financeCRUD := []ComponentID{
		ComponentRevenueList, ComponentRevenueCreate, ComponentRevenueEdit, ComponentRevenueDelete,
		ComponentExpenseList, ComponentExpenseCreate, ComponentExpenseEdit, ComponentExpenseDelete,
		ComponentTransactionList, ComponentTransactionApprove, ComponentTransactionReject,
		ComponentReportList, ComponentReportCreate, ComponentReportEdit, ComponentReportDelete,
	}

	managerOnly := []ComponentID{
		ComponentUserList, ComponentUserCreate, ComponentUserEdit, ComponentUserDelete,
		ComponentDepartmentList, ComponentDepartmentCreate, ComponentDepartmentEdit, ComponentDepartmentDelete,
		ComponentProjectList, ComponentProjectCreate, ComponentProjectEdit, ComponentProjectDelete,
		ComponentSettingsView, ComponentSettingsEdit,
		ComponentSidebarSettings, ComponentSidebarUsers,
		ComponentSidebarRevenue, ComponentSidebarExpense, ComponentSidebarTransaction,
		ComponentSidebarReport, ComponentSidebarDepartment, ComponentSidebarProject,
	}

	adminOnly := []ComponentID{
		ComponentAdminDashboard,
		ComponentAdminList, ComponentAdminCreate, ComponentAdminEdit, ComponentAdminDelete,
		ComponentPermissionView, ComponentPermissionEdit,
		ComponentCorporateClientList, ComponentCorporateClientCreate,
		ComponentCorporateClientEdit, ComponentCorporateClientDelete,
		ComponentFinancialPlanList, ComponentFinancialPlanCreate,
		ComponentFinancialPlanEdit, ComponentFinancialPlanDelete,
		ComponentSidebarRoles, ComponentSidebarPermissions, ComponentSidebarAdmins,
		ComponentSidebarCorporateClient, ComponentSidebarFinancialPlan,
	}

	return map[rbac.UserType][]ComponentID{
		rbac.UserTypeAdmin: concat(common, financeCRUD, managerOnly, adminOnly),
		rbac.UserTypeFinanceManager: concat(common, financeCRUD, managerOnly,
			[]ComponentID{ComponentFinanceManagerDashboard}),
		rbac.UserTypeAccountant: concat(common,
			[]ComponentID{
				ComponentAccountantDashboard,
				ComponentRevenueList, ComponentRevenueCreate, ComponentRevenueEdit,
				ComponentExpenseList, ComponentExpenseCreate, ComponentExpenseEdit,
				ComponentTransactionList,
				ComponentReportList, ComponentReportCreate,
				ComponentSidebarRevenue, ComponentSidebarExpense,
				ComponentSidebarTransaction, ComponentSidebarReport,
			}),
		rbac.UserTypeEmployee: concat(common,
			[]ComponentID{
				ComponentEmployeeDashboard,
				ComponentRevenueCreate, ComponentRevenueEdit,
				ComponentExpenseCreate, ComponentExpenseEdit,
				ComponentSidebarRevenue, ComponentSidebarExpense,
			}),
	}
}

func concat(lists ...[]ComponentID) []ComponentID {
	var out []ComponentID
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
