package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
)

// ChatInput is a chat message from a viewer.
type ChatInput struct {
	Viewer  dashboard.ViewerContext
	Message string `json:"message"`
}

type chatService interface {
	Chat(ctx context.Context, viewer dashboard.ViewerContext, message string) (dashboard.ChatReply, error)
}

// ChatQuery answers chat messages. It is read-only: replies come from a
// static table.
type ChatQuery struct {
	service chatService
}

// NewChatQuery builds the query.
func NewChatQuery(service chatService) *ChatQuery {
	return &ChatQuery{service: service}
}

var _ gocommand.Querier[ChatInput, dashboard.ChatReply] = (*ChatQuery)(nil)

// Query returns the reply for the message.
func (q *ChatQuery) Query(ctx context.Context, input ChatInput) (dashboard.ChatReply, error) {
	return q.service.Chat(ctx, input.Viewer, input.Message)
}

type navigationService interface {
	Navigation(viewer dashboard.ViewerContext) []dashboard.NavItem
}

// NavigationQuery lists the pages a viewer may open.
type NavigationQuery struct {
	service navigationService
}

// NewNavigationQuery builds the query.
func NewNavigationQuery(service navigationService) *NavigationQuery {
	return &NavigationQuery{service: service}
}

var _ gocommand.Querier[dashboard.ViewerContext, []dashboard.NavItem] = (*NavigationQuery)(nil)

// Query returns the navigation entries.
func (q *NavigationQuery) Query(_ context.Context, viewer dashboard.ViewerContext) ([]dashboard.NavItem, error) {
	return q.service.Navigation(viewer), nil
}
