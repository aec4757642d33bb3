package dashboard

// Target kinds accepted by action definitions.
const (
	TargetService      = "service"
	TargetAlert        = "alert"
	TargetOptimization = "optimization"
	TargetProject      = "project"
	TargetTask         = "task"
)

type serviceSeed struct {
	ID       string
	Name     string
	Kind     string
	Region   string
	Replicas int
}

var serviceCatalog = []serviceSeed{
	{ID: "svc-api-gateway", Name: "API Gateway", Kind: "gateway", Region: "us-east-1", Replicas: 3},
	{ID: "svc-auth", Name: "Auth Service", Kind: "backend", Region: "us-east-1", Replicas: 2},
	{ID: "svc-payments", Name: "Payments", Kind: "backend", Region: "eu-west-1", Replicas: 3},
	{ID: "svc-postgres", Name: "Primary Database", Kind: "database", Region: "us-east-1", Replicas: 1},
	{ID: "svc-redis", Name: "Cache Cluster", Kind: "cache", Region: "us-east-1", Replicas: 3},
	{ID: "svc-search", Name: "Search Engine", Kind: "backend", Region: "us-west-2", Replicas: 2},
	{ID: "svc-worker", Name: "Job Workers", Kind: "worker", Region: "eu-west-1", Replicas: 4},
	{ID: "svc-cdn", Name: "Edge CDN", Kind: "network", Region: "global", Replicas: 1},
}

type alertSeed struct {
	ID       string
	Title    string
	Severity string
	Service  string
	AgeHours int
}

var alertCatalog = []alertSeed{
	{ID: "alert-001", Title: "High CPU utilization", Severity: "critical", Service: "svc-payments", AgeHours: 1},
	{ID: "alert-002", Title: "Memory pressure on cache nodes", Severity: "warning", Service: "svc-redis", AgeHours: 3},
	{ID: "alert-003", Title: "Slow queries detected", Severity: "warning", Service: "svc-postgres", AgeHours: 5},
	{ID: "alert-004", Title: "Certificate expires in 14 days", Severity: "info", Service: "svc-cdn", AgeHours: 12},
	{ID: "alert-005", Title: "Elevated 5xx rate", Severity: "critical", Service: "svc-api-gateway", AgeHours: 2},
	{ID: "alert-006", Title: "Queue backlog growing", Severity: "warning", Service: "svc-worker", AgeHours: 7},
}

type optimizationSeed struct {
	ID       string
	Title    string
	Resource string
	Category string
	Effort   string
	Base     float64
}

var optimizationCatalog = []optimizationSeed{
	{ID: "opt-001", Title: "Rightsize over-provisioned instances", Resource: "svc-worker", Category: "compute", Effort: "low", Base: 850},
	{ID: "opt-002", Title: "Purchase reserved capacity", Resource: "svc-postgres", Category: "commitment", Effort: "medium", Base: 1400},
	{ID: "opt-003", Title: "Delete unattached volumes", Resource: "storage", Category: "storage", Effort: "low", Base: 320},
	{ID: "opt-004", Title: "Move cold logs to archive tier", Resource: "logging", Category: "storage", Effort: "low", Base: 460},
	{ID: "opt-005", Title: "Schedule non-prod shutdown", Resource: "staging", Category: "compute", Effort: "medium", Base: 980},
	{ID: "opt-006", Title: "Consolidate NAT gateways", Resource: "network", Category: "network", Effort: "high", Base: 240},
}

var costProviders = []struct {
	Service  string
	Provider string
	Category string
	Base     float64
}{
	{Service: "Compute", Provider: "AWS", Category: "compute", Base: 7800},
	{Service: "Managed Databases", Provider: "AWS", Category: "database", Base: 4200},
	{Service: "Object Storage", Provider: "AWS", Category: "storage", Base: 1300},
	{Service: "Kubernetes", Provider: "GCP", Category: "compute", Base: 3600},
	{Service: "BigQuery", Provider: "GCP", Category: "analytics", Base: 1900},
	{Service: "Virtual Machines", Provider: "Azure", Category: "compute", Base: 2500},
	{Service: "CDN & Egress", Provider: "Cloudflare", Category: "network", Base: 650},
}

type userSeed struct {
	ID         string
	Name       string
	Email      string
	Role       string
	Department string
}

var userCatalog = []userSeed{
	{ID: "usr-001", Name: "Avery Chen", Email: "avery.chen@organizeit.com", Role: "admin", Department: "IT Operations"},
	{ID: "usr-002", Name: "Jordan Blake", Email: "jordan.blake@organizeit.com", Role: "engineer", Department: "Platform"},
	{ID: "usr-003", Name: "Priya Nair", Email: "priya.nair@organizeit.com", Role: "analyst", Department: "Finance"},
	{ID: "usr-004", Name: "Mateo Ruiz", Email: "mateo.ruiz@organizeit.com", Role: "engineer", Department: "Security"},
	{ID: "usr-005", Name: "Lena Fischer", Email: "lena.fischer@organizeit.com", Role: "manager", Department: "Sustainability"},
	{ID: "usr-006", Name: "Samuel Osei", Email: "samuel.osei@organizeit.com", Role: "viewer", Department: "Procurement"},
	{ID: "usr-007", Name: "Hana Sato", Email: "hana.sato@organizeit.com", Role: "engineer", Department: "Data"},
}

type projectSeed struct {
	ID      string
	Name    string
	Owner   string
	Budget  float64
	DueDays int
}

var projectCatalog = []projectSeed{
	{ID: "prj-001", Name: "Cloud Migration Wave 2", Owner: "Avery Chen", Budget: 250000, DueDays: 60},
	{ID: "prj-002", Name: "Zero Trust Rollout", Owner: "Mateo Ruiz", Budget: 180000, DueDays: 90},
	{ID: "prj-003", Name: "Carbon Reporting Pipeline", Owner: "Lena Fischer", Budget: 75000, DueDays: 45},
	{ID: "prj-004", Name: "FinOps Tagging Policy", Owner: "Priya Nair", Budget: 40000, DueDays: 30},
}

type taskSeed struct {
	ID        string
	ProjectID string
	Title     string
	Assignee  string
	Priority  string
	DueDays   int
}

var taskCatalog = []taskSeed{
	{ID: "task-001", ProjectID: "prj-001", Title: "Inventory legacy workloads", Assignee: "Jordan Blake", Priority: "high", DueDays: 7},
	{ID: "task-002", ProjectID: "prj-001", Title: "Plan database cutover", Assignee: "Hana Sato", Priority: "high", DueDays: 14},
	{ID: "task-003", ProjectID: "prj-002", Title: "Enforce MFA for contractors", Assignee: "Mateo Ruiz", Priority: "medium", DueDays: 10},
	{ID: "task-004", ProjectID: "prj-003", Title: "Collect energy meter exports", Assignee: "Lena Fischer", Priority: "low", DueDays: 21},
	{ID: "task-005", ProjectID: "prj-004", Title: "Draft mandatory tag list", Assignee: "Priya Nair", Priority: "medium", DueDays: 5},
}

// KnownTarget reports whether id exists in the static catalog for kind.
func KnownTarget(kind, id string) bool {
	switch kind {
	case TargetService:
		for _, s := range serviceCatalog {
			if s.ID == id {
				return true
			}
		}
	case TargetAlert:
		for _, a := range alertCatalog {
			if a.ID == id {
				return true
			}
		}
	case TargetOptimization:
		for _, o := range optimizationCatalog {
			if o.ID == id {
				return true
			}
		}
	case TargetProject:
		for _, p := range projectCatalog {
			if p.ID == id {
				return true
			}
		}
	case TargetTask:
		for _, t := range taskCatalog {
			if t.ID == id {
				return true
			}
		}
	}
	return false
}

func serviceName(id string) string {
	for _, s := range serviceCatalog {
		if s.ID == id {
			return s.Name
		}
	}
	return id
}
