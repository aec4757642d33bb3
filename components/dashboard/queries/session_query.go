package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
)

// SessionInput carries a bearer token.
type SessionInput struct {
	Token string
}

type sessionService interface {
	ResolveSession(ctx context.Context, token string) (dashboard.Session, error)
}

// SessionQuery resolves bearer tokens into live sessions.
type SessionQuery struct {
	service sessionService
}

// NewSessionQuery builds the query.
func NewSessionQuery(service sessionService) *SessionQuery {
	return &SessionQuery{service: service}
}

var _ gocommand.Querier[SessionInput, dashboard.Session] = (*SessionQuery)(nil)

// Query returns the session for the token.
func (q *SessionQuery) Query(ctx context.Context, input SessionInput) (dashboard.Session, error) {
	return q.service.ResolveSession(ctx, input.Token)
}
