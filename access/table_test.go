package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finora-app/finora-client/rbac"
)

func newDefaultTable(t *testing.T) *Table {
	t.Helper()
	table, err := New()
	require.NoError(t, err)
	return table
}

func TestAdminBypassesTable(t *testing.T) {
	table := newDefaultTable(t)

	assert.True(t, table.CanAccessComponent(rbac.UserTypeAdmin, ComponentUserDelete))
	// Bypass holds even for a component absent from every allow list.
	assert.True(t, table.CanAccessComponent(rbac.UserTypeAdmin, ComponentID("nonexistent.widget")))
}

func TestUnknownUserTypeFailsClosed(t *testing.T) {
	table := newDefaultTable(t)

	assert.False(t, table.CanAccessComponent(rbac.UserType("CONTRACTOR"), ComponentLogin))
	assert.False(t, table.CanAccessComponent(rbac.UserType(""), ComponentHeader))
}

func TestAllowListMembership(t *testing.T) {
	table := newDefaultTable(t)

	assert.True(t, table.CanAccessComponent(rbac.UserTypeEmployee, ComponentExpenseCreate))
	assert.False(t, table.CanAccessComponent(rbac.UserTypeEmployee, ComponentUserDelete))
	assert.False(t, table.CanAccessComponent(rbac.UserTypeEmployee, ComponentID("nonexistent.widget")))

	assert.True(t, table.CanAccessComponent(rbac.UserTypeAccountant, ComponentTransactionList))
	assert.False(t, table.CanAccessComponent(rbac.UserTypeAccountant, ComponentTransactionApprove))

	assert.True(t, table.CanAccessComponent(rbac.UserTypeFinanceManager, ComponentFinanceManagerDashboard))
	assert.False(t, table.CanAccessComponent(rbac.UserTypeFinanceManager, ComponentAdminDashboard))
}

func TestMemoizationComputesOnce(t *testing.T) {
	table := newDefaultTable(t)

	first := table.CanAccessComponent(rbac.UserTypeEmployee, ComponentExpenseCreate)
	after := table.lookups.Load()
	second := table.CanAccessComponent(rbac.UserTypeEmployee, ComponentExpenseCreate)

	assert.Equal(t, first, second)
	assert.Equal(t, after, table.lookups.Load(), "second identical call must hit the cache")
}

func TestDuplicateComponentRejected(t *testing.T) {
	_, err := NewTable([]Component{
		{ID: ComponentLogin},
		{ID: ComponentLogin},
	}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestAllowListMustReferenceRegistry(t *testing.T) {
	_, err := NewTable(
		[]Component{{ID: ComponentLogin}},
		map[rbac.UserType][]ComponentID{
			rbac.UserTypeEmployee: {ComponentID("ghost.widget")},
		},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unregistered")
}

func TestHalfBoundComponentRejected(t *testing.T) {
	_, err := NewTable([]Component{
		{ID: ComponentID("broken.widget"), Resource: rbac.ResourceUsers},
	}, nil)
	require.Error(t, err)
}

func TestPermissionDerivedLookup(t *testing.T) {
	table := newDefaultTable(t)

	assert.True(t, table.CanAccessComponentByPermission(rbac.ResourceUsers, rbac.ActionRead, ComponentUserList))
	assert.False(t, table.CanAccessComponentByPermission(rbac.ResourceUsers, rbac.ActionRead, ComponentUserDelete))

	// Both approval components derive from the same manage grant.
	assert.True(t, table.CanAccessComponentByPermission(rbac.ResourceTransactions, rbac.ActionManage, ComponentTransactionApprove))
	assert.True(t, table.CanAccessComponentByPermission(rbac.ResourceTransactions, rbac.ActionManage, ComponentTransactionReject))

	// Unknown pair resolves to an empty set.
	assert.False(t, table.CanAccessComponentByPermission(rbac.ResourceDashboard, rbac.ActionDelete, ComponentDashboard))

	ids := table.ComponentsFor(rbac.ResourceReports, rbac.ActionCreate)
	require.Len(t, ids, 1)
	assert.Equal(t, ComponentReportCreate, ids[0])
}

func TestConcurrentReads(t *testing.T) {
	table := newDefaultTable(t)

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 200; j++ {
				table.CanAccessComponent(rbac.UserTypeAccountant, ComponentReportList)
				table.CanAccessComponent(rbac.UserTypeEmployee, ComponentUserDelete)
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	assert.True(t, table.CanAccessComponent(rbac.UserTypeAccountant, ComponentReportList))
	assert.False(t, table.CanAccessComponent(rbac.UserTypeEmployee, ComponentUserDelete))
}
