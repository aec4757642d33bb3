package dashboard

import "time"

// Feed codes.
const (
	FeedOverview      = "itops.overview"
	FeedServices      = "itops.services"
	FeedMetrics       = "itops.metrics"
	FeedAlerts        = "itops.alerts"
	FeedCosts         = "finops.costs"
	FeedOptimizations = "finops.optimizations"
	FeedESG           = "esg.metrics"
	FeedUsers         = "identity.users"
	FeedAuditLogs     = "audit.logs"
	FeedProjects      = "projects.list"
	FeedTasks         = "projects.tasks"
)

var defaultFeedDefinitions = []FeedDefinition{
	{Code: FeedOverview, Name: "Infrastructure Overview", Description: "Service counts, active alerts and health score", Category: "itops", Path: "/overview", RefreshInterval: 30 * time.Second},
	{Code: FeedServices, Name: "Services", Description: "Service catalog with live resource usage", Category: "itops", Path: "/services", RefreshInterval: 30 * time.Second, Params: []string{"status"}},
	{Code: FeedMetrics, Name: "Infrastructure Metrics", Description: "Hourly CPU and memory series", Category: "itops", Path: "/metrics", RefreshInterval: time.Minute, Chart: "line", Params: []string{"hours"}},
	{Code: FeedAlerts, Name: "Alerts", Description: "Operational alerts by severity", Category: "itops", Path: "/alerts", RefreshInterval: 30 * time.Second, Params: []string{"status", "severity"}},
	{Code: FeedCosts, Name: "Cloud Costs", Description: "Spend by provider with budget and forecast", Category: "finops", Path: "/costs", RefreshInterval: 5 * time.Minute, Chart: "bar"},
	{Code: FeedOptimizations, Name: "Cost Optimizations", Description: "Savings recommendations", Category: "finops", Path: "/optimizations", RefreshInterval: 5 * time.Minute},
	{Code: FeedESG, Name: "ESG Metrics", Description: "Emissions, energy, water and waste", Category: "esg", Path: "/esg", RefreshInterval: 5 * time.Minute, Chart: "line"},
	{Code: FeedUsers, Name: "Identity", Description: "User directory with MFA and risk", Category: "identity", Path: "/users", RefreshInterval: 2 * time.Minute, Roles: []string{RoleAdmin}},
	{Code: FeedAuditLogs, Name: "Audit Logs", Description: "Recent actions and directory events", Category: "audit", Path: "/audit-logs", RefreshInterval: time.Minute, Roles: []string{RoleAdmin}, Params: []string{"limit"}},
	{Code: FeedProjects, Name: "Projects", Description: "Project progress and budget", Category: "projects", Path: "/projects", RefreshInterval: 2 * time.Minute},
	{Code: FeedTasks, Name: "Tasks", Description: "Project tasks", Category: "projects", Path: "/tasks", RefreshInterval: time.Minute, Params: []string{"project_id", "status"}},
}

// DefaultFeedDefinitions returns the built-in feed definitions.
func DefaultFeedDefinitions() []FeedDefinition {
	out := make([]FeedDefinition, len(defaultFeedDefinitions))
	for i, def := range defaultFeedDefinitions {
		def.Roles = append([]string(nil), def.Roles...)
		def.Params = append([]string(nil), def.Params...)
		out[i] = def
	}
	return out
}

var defaultGenerators = map[string]Generator{
	FeedOverview:      GeneratorFunc(overviewFeed),
	FeedServices:      GeneratorFunc(servicesFeed),
	FeedMetrics:       GeneratorFunc(metricsFeed),
	FeedAlerts:        GeneratorFunc(alertsFeed),
	FeedCosts:         GeneratorFunc(costsFeed),
	FeedOptimizations: GeneratorFunc(optimizationsFeed),
	FeedESG:           GeneratorFunc(esgFeed),
	FeedUsers:         GeneratorFunc(usersFeed),
	FeedAuditLogs:     GeneratorFunc(auditLogsFeed),
	FeedProjects:      GeneratorFunc(projectsFeed),
	FeedTasks:         GeneratorFunc(tasksFeed),
}

// DefaultGenerator returns the built-in generator for a feed code.
func DefaultGenerator(code string) (Generator, bool) {
	gen, ok := defaultGenerators[code]
	return gen, ok
}

var defaultActionDefinitions = []ActionDefinition{
	{
		Code:           ActionRestartService,
		Name:           "Restart service",
		TargetKind:     TargetService,
		SuccessMessage: "Service restart initiated",
	},
	{
		Code:       ActionScaleService,
		Name:       "Scale service",
		TargetKind: TargetService,
		Schema: map[string]any{
			"type":     "object",
			"required": []string{"replicas"},
			"properties": map[string]any{
				"replicas": map[string]any{"type": "integer", "minimum": 1, "maximum": 20},
			},
		},
		SuccessMessage: "Service scaled",
	},
	{
		Code:           ActionApplyOptimization,
		Name:           "Apply optimization",
		TargetKind:     TargetOptimization,
		SuccessMessage: "Optimization applied successfully",
	},
	{
		Code:           ActionAcknowledgeAlert,
		Name:           "Acknowledge alert",
		TargetKind:     TargetAlert,
		SuccessMessage: "Alert acknowledged",
	},
	{
		Code:           ActionResolveAlert,
		Name:           "Resolve alert",
		TargetKind:     TargetAlert,
		SuccessMessage: "Alert resolved",
	},
	{
		Code:       ActionCreateTask,
		Name:       "Create task",
		TargetKind: TargetTask,
		Schema: map[string]any{
			"type":     "object",
			"required": []string{"title"},
			"properties": map[string]any{
				"title":      map[string]any{"type": "string", "minLength": 1, "maxLength": 200},
				"project_id": map[string]any{"type": "string"},
				"assignee":   map[string]any{"type": "string"},
				"priority":   map[string]any{"type": "string", "enum": []string{"low", "medium", "high"}},
			},
		},
		SuccessMessage: "Task created",
	},
	{
		Code:       ActionUpdateTask,
		Name:       "Update task status",
		TargetKind: TargetTask,
		Schema: map[string]any{
			"type":     "object",
			"required": []string{"status"},
			"properties": map[string]any{
				"status": map[string]any{"type": "string", "enum": []string{TaskTodo, TaskInProgress, TaskDone}},
			},
		},
		SuccessMessage: "Task updated",
	},
}

// DefaultActionDefinitions returns the built-in simulated actions.
func DefaultActionDefinitions() []ActionDefinition {
	out := make([]ActionDefinition, len(defaultActionDefinitions))
	copy(out, defaultActionDefinitions)
	return out
}

// ActionDefinitionFor looks up a built-in action by code.
func ActionDefinitionFor(code string) (ActionDefinition, bool) {
	for _, def := range defaultActionDefinitions {
		if def.Code == code {
			return def, true
		}
	}
	return ActionDefinition{}, false
}
