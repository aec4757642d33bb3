package dashboard

import (
	"context"
	"time"
)

// ActionStore is the in-memory action map behind the simulated action endpoints.
// Implementations must be safe for concurrent use.
type ActionStore interface {
	Record(ctx context.Context, record ActionRecord) (ActionRecord, error)
	Latest(ctx context.Context, action, target string) (ActionRecord, bool)
	Recent(ctx context.Context, limit int) ([]ActionRecord, error)
	ByAction(ctx context.Context, action string) ([]ActionRecord, error)
}

// ActionLookup is the read-only view of the action map handed to generators.
type ActionLookup interface {
	Latest(ctx context.Context, action, target string) (ActionRecord, bool)
	Recent(ctx context.Context, limit int) ([]ActionRecord, error)
	ByAction(ctx context.Context, action string) ([]ActionRecord, error)
}

// SessionStore keeps issued login sessions.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	Get(ctx context.Context, token string) (Session, error)
	Delete(ctx context.Context, token string) error
}

// Authorizer decides whether a viewer may read a feed.
type Authorizer interface {
	CanViewFeed(ctx context.Context, viewer ViewerContext, def FeedDefinition) bool
}

// FeedRegistry stores feed definitions and their generators.
type FeedRegistry interface {
	RegisterDefinition(def FeedDefinition) error
	RegisterGenerator(code string, generator Generator) error
	Definition(code string) (FeedDefinition, bool)
	DefinitionByPath(path string) (FeedDefinition, bool)
	Generator(code string) (Generator, bool)
	Definitions() []FeedDefinition
}

// RefreshHook notifies transports (REST/WebSocket) that a feed changed.
type RefreshHook interface {
	FeedUpdated(ctx context.Context, event FeedEvent) error
}

// FeedDefinition describes a mock endpoint and how often pages poll it.
type FeedDefinition struct {
	Code            string        `json:"code" yaml:"code"`
	Name            string        `json:"name" yaml:"name"`
	Description     string        `json:"description,omitempty" yaml:"description,omitempty"`
	Category        string        `json:"category,omitempty" yaml:"category,omitempty"`
	Path            string        `json:"path" yaml:"path"`
	RefreshInterval time.Duration `json:"refresh_interval" yaml:"refresh_interval,omitempty"`
	Roles           []string      `json:"roles,omitempty" yaml:"roles,omitempty"`
	Chart           string        `json:"chart,omitempty" yaml:"chart,omitempty"`
	// Params lists the query parameters the generator reads.
	Params []string `json:"params,omitempty" yaml:"params,omitempty"`
}

// ActionDefinition describes a simulated mutating endpoint.
type ActionDefinition struct {
	Code           string
	Name           string
	TargetKind     string
	Schema         map[string]any
	SuccessMessage string
}

// ActionRequest asks the service to simulate an action against a target.
type ActionRequest struct {
	Action  string         `json:"action"`
	Target  string         `json:"target"`
	Payload map[string]any `json:"payload,omitempty"`
}

// ActionRecord is a single entry of the action map.
type ActionRecord struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	Target    string         `json:"target"`
	Actor     string         `json:"actor,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Status    string         `json:"status"`
	Message   string         `json:"message"`
	CreatedAt time.Time      `json:"created_at"`
}

// ActionResult is returned to callers of an action endpoint.
type ActionResult struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Record  ActionRecord `json:"record"`
}

// ViewerContext captures the caller identity resolved from the bearer token.
type ViewerContext struct {
	UserID string
	Email  string
	Roles  []string
	Token  string
}

// HasRole reports whether the viewer carries the role.
func (v ViewerContext) HasRole(role string) bool {
	for _, r := range v.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Anonymous reports whether no user is attached to the viewer.
func (v ViewerContext) Anonymous() bool {
	return v.UserID == ""
}

// FeedEvent describes changes that transports might care about.
type FeedEvent struct {
	FeedCode string    `json:"feed_code"`
	Action   string    `json:"action,omitempty"`
	Target   string    `json:"target,omitempty"`
	Reason   string    `json:"reason"`
	At       time.Time `json:"at"`
}
