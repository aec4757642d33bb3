package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
	"github.com/organizeit/go-organizeit/components/dashboard/commands"
	"github.com/organizeit/go-organizeit/components/dashboard/queries"
)

// Executor is the contract transports call into. CommandExecutor implements
// it over go-command commands and queries.
type Executor interface {
	RunAction(ctx context.Context, input commands.RunActionInput) error
	Login(ctx context.Context, input commands.LoginInput) error
	Logout(ctx context.Context, input commands.LogoutInput) error
	Refresh(ctx context.Context, input commands.RefreshFeedInput) error
	Feed(ctx context.Context, input queries.FeedInput) (dashboard.FeedData, error)
	Feeds(ctx context.Context, viewer dashboard.ViewerContext) ([]dashboard.FeedDefinition, error)
	Session(ctx context.Context, input queries.SessionInput) (dashboard.Session, error)
	Chat(ctx context.Context, input queries.ChatInput) (dashboard.ChatReply, error)
	Navigation(ctx context.Context, viewer dashboard.ViewerContext) ([]dashboard.NavItem, error)
}

// CommandExecutor routes Executor calls to commands and queries.
type CommandExecutor struct {
	ActionCommander  gocommand.Commander[commands.RunActionInput]
	LoginCommander   gocommand.Commander[commands.LoginInput]
	LogoutCommander  gocommand.Commander[commands.LogoutInput]
	RefreshCommander gocommand.Commander[commands.RefreshFeedInput]

	FeedQuerier       gocommand.Querier[queries.FeedInput, dashboard.FeedData]
	FeedListQuerier   gocommand.Querier[dashboard.ViewerContext, []dashboard.FeedDefinition]
	SessionQuerier    gocommand.Querier[queries.SessionInput, dashboard.Session]
	ChatQuerier       gocommand.Querier[queries.ChatInput, dashboard.ChatReply]
	NavigationQuerier gocommand.Querier[dashboard.ViewerContext, []dashboard.NavItem]
}

// NewCommandExecutor wires every command and query against the service.
func NewCommandExecutor(service *dashboard.Service, telemetry commands.Telemetry) *CommandExecutor {
	return &CommandExecutor{
		ActionCommander:   commands.NewRunActionCommand(service, telemetry),
		LoginCommander:    commands.NewLoginCommand(service, telemetry),
		LogoutCommander:   commands.NewLogoutCommand(service, telemetry),
		RefreshCommander:  commands.NewRefreshFeedCommand(service, telemetry),
		FeedQuerier:       queries.NewFeedQuery(service),
		FeedListQuerier:   queries.NewFeedListQuery(service),
		SessionQuerier:    queries.NewSessionQuery(service),
		ChatQuerier:       queries.NewChatQuery(service),
		NavigationQuerier: queries.NewNavigationQuery(service),
	}
}

var _ Executor = (*CommandExecutor)(nil)

var errNotConfigured = errors.New("httpapi: executor operation not configured")

func (e *CommandExecutor) RunAction(ctx context.Context, input commands.RunActionInput) error {
	if e.ActionCommander == nil {
		return errNotConfigured
	}
	return e.ActionCommander.Execute(ctx, input)
}

func (e *CommandExecutor) Login(ctx context.Context, input commands.LoginInput) error {
	if e.LoginCommander == nil {
		return errNotConfigured
	}
	return e.LoginCommander.Execute(ctx, input)
}

func (e *CommandExecutor) Logout(ctx context.Context, input commands.LogoutInput) error {
	if e.LogoutCommander == nil {
		return errNotConfigured
	}
	return e.LogoutCommander.Execute(ctx, input)
}

func (e *CommandExecutor) Refresh(ctx context.Context, input commands.RefreshFeedInput) error {
	if e.RefreshCommander == nil {
		return errNotConfigured
	}
	return e.RefreshCommander.Execute(ctx, input)
}

func (e *CommandExecutor) Feed(ctx context.Context, input queries.FeedInput) (dashboard.FeedData, error) {
	if e.FeedQuerier == nil {
		return nil, errNotConfigured
	}
	return e.FeedQuerier.Query(ctx, input)
}

func (e *CommandExecutor) Feeds(ctx context.Context, viewer dashboard.ViewerContext) ([]dashboard.FeedDefinition, error) {
	if e.FeedListQuerier == nil {
		return nil, errNotConfigured
	}
	return e.FeedListQuerier.Query(ctx, viewer)
}

func (e *CommandExecutor) Session(ctx context.Context, input queries.SessionInput) (dashboard.Session, error) {
	if e.SessionQuerier == nil {
		return dashboard.Session{}, errNotConfigured
	}
	return e.SessionQuerier.Query(ctx, input)
}

func (e *CommandExecutor) Chat(ctx context.Context, input queries.ChatInput) (dashboard.ChatReply, error) {
	if e.ChatQuerier == nil {
		return dashboard.ChatReply{}, errNotConfigured
	}
	return e.ChatQuerier.Query(ctx, input)
}

func (e *CommandExecutor) Navigation(ctx context.Context, viewer dashboard.ViewerContext) ([]dashboard.NavItem, error) {
	if e.NavigationQuerier == nil {
		return nil, errNotConfigured
	}
	return e.NavigationQuerier.Query(ctx, viewer)
}
