package dashboard

import "time"

// ServiceStatus is a monitored IT service as returned by the services feed.
type ServiceStatus struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Kind           string     `json:"type"`
	Region         string     `json:"region"`
	Status         string     `json:"status"`
	CPU            float64    `json:"cpu"`
	Memory         float64    `json:"memory"`
	Disk           float64    `json:"disk"`
	Uptime         float64    `json:"uptime"`
	ResponseTimeMS float64    `json:"response_time_ms"`
	RequestsPerMin float64    `json:"requests_per_min"`
	Replicas       int        `json:"replicas"`
	LastRestart    *time.Time `json:"last_restart,omitempty"`
}

// MetricPoint is one sample of the infrastructure metrics series.
type MetricPoint struct {
	Timestamp  time.Time `json:"timestamp"`
	CPU        float64   `json:"cpu"`
	Memory     float64   `json:"memory"`
	Disk       float64   `json:"disk"`
	NetworkIn  float64   `json:"network_in"`
	NetworkOut float64   `json:"network_out"`
}

// Alert is an operational alert.
type Alert struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Severity  string    `json:"severity"`
	Service   string    `json:"service"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// CostItem is a FinOps cost line item.
type CostItem struct {
	Service   string  `json:"service"`
	Provider  string  `json:"provider"`
	Category  string  `json:"category"`
	Cost      float64 `json:"cost"`
	ChangePct float64 `json:"change_pct"`
}

// Optimization is a FinOps savings recommendation.
type Optimization struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Resource       string     `json:"resource"`
	Category       string     `json:"category"`
	MonthlySavings float64    `json:"monthly_savings"`
	Effort         string     `json:"effort"`
	Status         string     `json:"status"`
	AppliedAt      *time.Time `json:"applied_at,omitempty"`
}

// User is an identity directory entry.
type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Department string    `json:"department"`
	MFAEnabled bool      `json:"mfa_enabled"`
	Status     string    `json:"status"`
	LastLogin  time.Time `json:"last_login"`
	RiskScore  float64   `json:"risk_score"`
}

// AuditLog is a single audit trail entry.
type AuditLog struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip"`
	Result    string    `json:"result"`
	Severity  string    `json:"severity"`
}

// Project is a tracked IT project.
type Project struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Owner    string    `json:"owner"`
	Status   string    `json:"status"`
	Progress float64   `json:"progress"`
	Budget   float64   `json:"budget"`
	Spent    float64   `json:"spent"`
	DueDate  time.Time `json:"due_date"`
}

// Task is a project task.
type Task struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Title     string    `json:"title"`
	Assignee  string    `json:"assignee"`
	Priority  string    `json:"priority"`
	Status    string    `json:"status"`
	DueDate   time.Time `json:"due_date"`
}
