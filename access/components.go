// Package access decides which UI components a principal may render. It keeps
// a single component registry: each component is declared exactly once and,
// when it fronts a resource operation, carries the permission pair it
// corresponds to. The per-user-type allow lists and the permission lookup
// both reference that registry, so the two decision paths cannot drift.
package access

import (
	"fmt"

	"github.com/finora-app/finora-client/rbac"
)

// ComponentID identifies a renderable UI unit. Values are unique per concept;
// the registry constructor rejects duplicates.
type ComponentID string

const (
	ComponentLogin     ComponentID = "com.login"
	ComponentHeader    ComponentID = "com.header"
	ComponentDashboard ComponentID = "com.dashboard"

	ComponentUserList   ComponentID = "users.list"
	ComponentUserCreate ComponentID = "users.create"
	ComponentUserEdit   ComponentID = "users.edit"
	ComponentUserDelete ComponentID = "users.delete"

	ComponentRevenueList   ComponentID = "revenue.list"
	ComponentRevenueCreate ComponentID = "revenue.create"
	ComponentRevenueEdit   ComponentID = "revenue.edit"
	ComponentRevenueDelete ComponentID = "revenue.delete"

	ComponentExpenseList   ComponentID = "expense.list"
	ComponentExpenseCreate ComponentID = "expense.create"
	ComponentExpenseEdit   ComponentID = "expense.edit"
	ComponentExpenseDelete ComponentID = "expense.delete"

	ComponentTransactionList    ComponentID = "transaction.list"
	ComponentTransactionApprove ComponentID = "transaction.approve"
	ComponentTransactionReject  ComponentID = "transaction.reject"

	ComponentReportList   ComponentID = "report.list"
	ComponentReportCreate ComponentID = "report.create"
	ComponentReportEdit   ComponentID = "report.edit"
	ComponentReportDelete ComponentID = "report.delete"

	ComponentDepartmentList   ComponentID = "department.list"
	ComponentDepartmentCreate ComponentID = "department.create"
	ComponentDepartmentEdit   ComponentID = "department.edit"
	ComponentDepartmentDelete ComponentID = "department.delete"

	ComponentProjectList   ComponentID = "project.list"
	ComponentProjectCreate ComponentID = "project.create"
	ComponentProjectEdit   ComponentID = "project.edit"
	ComponentProjectDelete ComponentID = "project.delete"

	ComponentCorporateClientList   ComponentID = "corporate_client.list"
	ComponentCorporateClientCreate ComponentID = "corporate_client.create"
	ComponentCorporateClientEdit   ComponentID = "corporate_client.edit"
	ComponentCorporateClientDelete ComponentID = "corporate_client.delete"

	ComponentFinancialPlanList   ComponentID = "financial_plan.list"
	ComponentFinancialPlanCreate ComponentID = "financial_plan.create"
	ComponentFinancialPlanEdit   ComponentID = "financial_plan.edit"
	ComponentFinancialPlanDelete ComponentID = "financial_plan.delete"

	ComponentProfileView ComponentID = "profile.view"
	ComponentProfileEdit ComponentID = "profile.edit"

	ComponentSettingsView ComponentID = "settings.view"
	ComponentSettingsEdit ComponentID = "settings.edit"

	ComponentAdminList   ComponentID = "admin.list"
	ComponentAdminCreate ComponentID = "admin.create"
	ComponentAdminEdit   ComponentID = "admin.edit"
	ComponentAdminDelete ComponentID = "admin.delete"

	ComponentPermissionView ComponentID = "permission.view"
	ComponentPermissionEdit ComponentID = "permission.edit"

	ComponentAdminDashboard          ComponentID = "admin.dashboard"
	ComponentFinanceManagerDashboard ComponentID = "finance_manager.dashboard"
	ComponentAccountantDashboard     ComponentID = "accountant.dashboard"
	ComponentEmployeeDashboard       ComponentID = "employee.dashboard"

	ComponentSidebarDashboard       ComponentID = "sidebar.dashboard"
	ComponentSidebarProfile         ComponentID = "sidebar.profile"
	ComponentSidebarSettings        ComponentID = "sidebar.settings"
	ComponentSidebarUsers           ComponentID = "sidebar.users"
	ComponentSidebarRoles           ComponentID = "sidebar.roles"
	ComponentSidebarPermissions     ComponentID = "sidebar.permissions"
	ComponentSidebarRevenue         ComponentID = "sidebar.revenue"
	ComponentSidebarExpense         ComponentID = "sidebar.expense"
	ComponentSidebarTransaction     ComponentID = "sidebar.transaction"
	ComponentSidebarReport          ComponentID = "sidebar.report"
	ComponentSidebarDepartment      ComponentID = "sidebar.department"
	ComponentSidebarProject         ComponentID = "sidebar.project"
	ComponentSidebarCorporateClient ComponentID = "sidebar.corporate_client"
	ComponentSidebarFinancialPlan   ComponentID = "sidebar.financial_plan"
	ComponentSidebarAdmins          ComponentID = "sidebar.admins"
)

// Component describes a registered UI unit. Resource and Action are set when
// the component fronts a resource operation; the permission-based lookup is
// derived from these declarations.
type Component struct {
	ID       ComponentID
	Resource rbac.Resource
	Action   rbac.Action
}

func bound(id ComponentID, resource rbac.Resource, action rbac.Action) Component {
	return Component{ID: id, Resource: resource, Action: action}
}

func unbound(id ComponentID) Component {
	return Component{ID: id}
}

// DefaultComponents returns the full component registry.
func DefaultComponents() []Component {
	return []Component{
		unbound(ComponentLogin),
		unbound(ComponentHeader),
		unbound(ComponentDashboard),

		bound(ComponentUserList, rbac.ResourceUsers, rbac.ActionRead),
		bound(ComponentUserCreate, rbac.ResourceUsers, rbac.ActionCreate),
		bound(ComponentUserEdit, rbac.ResourceUsers, rbac.ActionUpdate),
		bound(ComponentUserDelete, rbac.ResourceUsers, rbac.ActionDelete),

		bound(ComponentRevenueList, rbac.ResourceRevenues, rbac.ActionRead),
		bound(ComponentRevenueCreate, rbac.ResourceRevenues, rbac.ActionCreate),
		bound(ComponentRevenueEdit, rbac.ResourceRevenues, rbac.ActionUpdate),
		bound(ComponentRevenueDelete, rbac.ResourceRevenues, rbac.ActionDelete),

		bound(ComponentExpenseList, rbac.ResourceExpenses, rbac.ActionRead),
		bound(ComponentExpenseCreate, rbac.ResourceExpenses, rbac.ActionCreate),
		bound(ComponentExpenseEdit, rbac.ResourceExpenses, rbac.ActionUpdate),
		bound(ComponentExpenseDelete, rbac.ResourceExpenses, rbac.ActionDelete),

		bound(ComponentTransactionList, rbac.ResourceTransactions, rbac.ActionRead),
		bound(ComponentTransactionApprove, rbac.ResourceTransactions, rbac.ActionManage),
		bound(ComponentTransactionReject, rbac.ResourceTransactions, rbac.ActionManage),

		bound(ComponentReportList, rbac.ResourceReports, rbac.ActionRead),
		bound(ComponentReportCreate, rbac.ResourceReports, rbac.ActionCreate),
		bound(ComponentReportEdit, rbac.ResourceReports, rbac.ActionUpdate),
		bound(ComponentReportDelete, rbac.ResourceReports, rbac.ActionDelete),

		bound(ComponentDepartmentList, rbac.ResourceDepartments, rbac.ActionRead),
		bound(ComponentDepartmentCreate, rbac.ResourceDepartments, rbac.ActionCreate),
		bound(ComponentDepartmentEdit, rbac.ResourceDepartments, rbac.ActionUpdate),
		bound(ComponentDepartmentDelete, rbac.ResourceDepartments, rbac.ActionDelete),

		bound(ComponentProjectList, rbac.ResourceProjects, rbac.ActionRead),
		bound(ComponentProjectCreate, rbac.ResourceProjects, rbac.ActionCreate),
		bound(ComponentProjectEdit, rbac.ResourceProjects, rbac.ActionUpdate),
		bound(ComponentProjectDelete, rbac.ResourceProjects, rbac.ActionDelete),

		bound(ComponentCorporateClientList, rbac.ResourceCorporateClients, rbac.ActionRead),
		bound(ComponentCorporateClientCreate, rbac.ResourceCorporateClients, rbac.ActionCreate),
		bound(ComponentCorporateClientEdit, rbac.ResourceCorporateClients, rbac.ActionUpdate),
		bound(ComponentCorporateClientDelete, rbac.ResourceCorporateClients, rbac.ActionDelete),

		bound(ComponentFinancialPlanList, rbac.ResourceFinancialPlans, rbac.ActionRead),
		bound(ComponentFinancialPlanCreate, rbac.ResourceFinancialPlans, rbac.ActionCreate),
		bound(ComponentFinancialPlanEdit, rbac.ResourceFinancialPlans, rbac.ActionUpdate),
		bound(ComponentFinancialPlanDelete, rbac.ResourceFinancialPlans, rbac.ActionDelete),

		bound(ComponentProfileView, rbac.ResourceProfile, rbac.ActionRead),
		bound(ComponentProfileEdit, rbac.ResourceProfile, rbac.ActionUpdate),

		bound(ComponentSettingsView, rbac.ResourceSettings, rbac.ActionRead),
		bound(ComponentSettingsEdit, rbac.ResourceSettings, rbac.ActionUpdate),

		unbound(ComponentAdminList),
		unbound(ComponentAdminCreate),
		unbound(ComponentAdminEdit),
		unbound(ComponentAdminDelete),

		unbound(ComponentPermissionView),
		unbound(ComponentPermissionEdit),

		unbound(ComponentAdminDashboard),
		unbound(ComponentFinanceManagerDashboard),
		unbound(ComponentAccountantDashboard),
		unbound(ComponentEmployeeDashboard),

		unbound(ComponentSidebarDashboard),
		unbound(ComponentSidebarProfile),
		unbound(ComponentSidebarSettings),
		unbound(ComponentSidebarUsers),
		unbound(ComponentSidebarRoles),
		unbound(ComponentSidebarPermissions),
		unbound(ComponentSidebarRevenue),
		unbound(ComponentSidebarExpense),
		unbound(ComponentSidebarTransaction),
		unbound(ComponentSidebarReport),
		unbound(ComponentSidebarDepartment),
		unbound(ComponentSidebarProject),
		unbound(ComponentSidebarCorporateClient),
		unbound(ComponentSidebarFinancialPlan),
		unbound(ComponentSidebarAdmins),
	}
}

func buildRegistry(components []Component) (map[ComponentID]Component, error) {
	registry := make(map[ComponentID]Component, len(components))
	for _, c := range components {
		if c.ID == "" {
			return nil, fmt.Errorf("access: component with empty id")
		}
		if _, dup := registry[c.ID]; dup {
			return nil, fmt.Errorf("access: duplicate component id %q", c.ID)
		}
		if (c.Resource != "") != (c.Action != "") {
			return nil, fmt.Errorf("access: component %q must declare resource and action together", c.ID)
		}
		if c.Resource != "" && !c.Resource.Valid() {
			return nil, fmt.Errorf("access: component %q references unknown resource %q", c.ID, c.Resource)
		}
		if c.Action != "" && !c.Action.Valid() {
			return nil, fmt.Errorf("access: component %q references unknown action %q", c.ID, c.Action)
		}
		registry[c.ID] = c
	}
	return registry, nil
}
