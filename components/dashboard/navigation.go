package dashboard

// NavItem is a dashboard page entry.
type NavItem struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Route    string   `json:"route"`
	Icon     string   `json:"icon,omitempty"`
	Feeds    []string `json:"feeds"`
	Roles    []string `json:"roles,omitempty"`
	Position int      `json:"position"`
}

var defaultNavigation = []NavItem{
	{ID: "itops", Label: "IT Operations", Route: "/itops", Icon: "server", Feeds: []string{"itops.overview", "itops.services", "itops.metrics", "itops.alerts"}, Position: 10},
	{ID: "finops", Label: "FinOps", Route: "/finops", Icon: "dollar-sign", Feeds: []string{"finops.costs", "finops.optimizations"}, Position: 20},
	{ID: "esg", Label: "ESG", Route: "/esg", Icon: "leaf", Feeds: []string{"esg.metrics"}, Position: 30},
	{ID: "projects", Label: "Projects", Route: "/projects", Icon: "kanban", Feeds: []string{"projects.list", "projects.tasks"}, Position: 40},
	{ID: "identity", Label: "Identity", Route: "/identity", Icon: "users", Feeds: []string{"identity.users"}, Roles: []string{RoleAdmin}, Position: 50},
	{ID: "audit", Label: "Audit", Route: "/audit", Icon: "shield", Feeds: []string{"audit.logs"}, Roles: []string{RoleAdmin}, Position: 60},
}

// DefaultNavigation returns a copy of the built-in navigation entries.
func DefaultNavigation() []NavItem {
	out := make([]NavItem, len(defaultNavigation))
	copy(out, defaultNavigation)
	return out
}

// NavigationFor filters items down to the ones the viewer may open. With
// requireRoles false every item is returned.
func NavigationFor(items []NavItem, viewer ViewerContext, requireRoles bool) []NavItem {
	out := make([]NavItem, 0, len(items))
	for _, item := range items {
		if requireRoles && len(item.Roles) > 0 && !viewer.HasRole(RoleAdmin) && !anyRole(viewer, item.Roles) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func anyRole(viewer ViewerContext, roles []string) bool {
	for _, r := range roles {
		if viewer.HasRole(r) {
			return true
		}
	}
	return false
}
