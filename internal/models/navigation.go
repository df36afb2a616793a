package models

// NavigationEntry is one destination in the dashboard navigation.
type NavigationEntry struct {
	Route string     `json:"route"`
	Label string     `json:"label"`
	Roles []UserRole `json:"-"`
}

// LandingRoute is the public entry point; it is never guarded.
const LandingRoute = "/landing"

// NavigationEntries is the static destination table. Filtering by role
// happens on every evaluation so a re-login as a different user can never
// observe a stale menu.
var NavigationEntries = []NavigationEntry{
	{Route: "/dashboard", Label: "Dashboard", Roles: AllRoles},
	{Route: "/video-feed", Label: "Video Feed", Roles: []UserRole{RoleOperator, RoleSupervisor, RoleManager, RoleAdmin}},
	{Route: "/notifications", Label: "Notifications", Roles: AllRoles},
	{Route: "/incidents", Label: "Incidents", Roles: []UserRole{RoleOperator, RoleSupervisor, RoleManager, RoleAdmin}},
	{Route: "/history", Label: "History", Roles: []UserRole{RoleSupervisor, RoleManager, RoleAdmin}},
	{Route: "/response-rules", Label: "Response Rules", Roles: []UserRole{RoleManager, RoleAdmin}},
	{Route: "/user-activity", Label: "User Activity", Roles: []UserRole{RoleManager, RoleAdmin}},
	{Route: "/admin", Label: "Admin", Roles: []UserRole{RoleAdmin}},
	{Route: "/settings", Label: "Settings", Roles: AllRoles},
	{Route: "/profile", Label: "Profile", Roles: AllRoles},
}

// FilterNavigation returns the destinations visible to the given role.
// An empty role (unauthenticated) sees nothing.
func FilterNavigation(role UserRole) []NavigationEntry {
	if role == "" {
		return nil
	}
	visible := make([]NavigationEntry, 0, len(NavigationEntries))
	for _, entry := range NavigationEntries {
		if role.In(entry.Roles...) {
			visible = append(visible, entry)
		}
	}
	return visible
}
