package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routesOf(entries []NavigationEntry) []string {
	routes := make([]string, len(entries))
	for i, e := range entries {
		routes[i] = e.Route
	}
	return routes
}

func TestFilterNavigationByRole(t *testing.T) {
	user := routesOf(FilterNavigation(RoleUser))
	assert.Contains(t, user, "/dashboard")
	assert.Contains(t, user, "/notifications")
	assert.NotContains(t, user, "/video-feed")
	assert.NotContains(t, user, "/admin")

	operator := routesOf(FilterNavigation(RoleOperator))
	assert.Contains(t, operator, "/video-feed")
	assert.Contains(t, operator, "/incidents")
	assert.NotContains(t, operator, "/history")

	supervisor := routesOf(FilterNavigation(RoleSupervisor))
	assert.Contains(t, supervisor, "/history")
	assert.NotContains(t, supervisor, "/response-rules")

	manager := routesOf(FilterNavigation(RoleManager))
	assert.Contains(t, manager, "/response-rules")
	assert.Contains(t, manager, "/user-activity")
	assert.NotContains(t, manager, "/admin")

	admin := routesOf(FilterNavigation(RoleAdmin))
	assert.Contains(t, admin, "/admin")
	assert.Len(t, admin, len(NavigationEntries), "admin sees everything")
}

func TestFilterNavigationEmptyRole(t *testing.T) {
	assert.Nil(t, FilterNavigation(""))
}

func TestNavigationOrderIsStable(t *testing.T) {
	first := routesOf(FilterNavigation(RoleAdmin))
	second := routesOf(FilterNavigation(RoleAdmin))
	require.Equal(t, first, second)
	assert.Equal(t, "/dashboard", first[0])
}

func TestRoleIn(t *testing.T) {
	assert.True(t, RoleManager.In(RoleManager, RoleAdmin))
	assert.False(t, RoleOperator.In(RoleManager, RoleAdmin))
	assert.False(t, RoleUser.In())
}
