package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
)

// RefreshFeedInput emits refresh notifications for a feed.
type RefreshFeedInput struct {
	Event dashboard.FeedEvent
}

type refreshNotifier interface {
	NotifyFeedUpdated(ctx context.Context, event dashboard.FeedEvent) error
}

// RefreshFeedCommand triggers refresh hooks so connected pages refetch.
type RefreshFeedCommand struct {
	service   refreshNotifier
	telemetry Telemetry
}

// NewRefreshFeedCommand creates the command.
func NewRefreshFeedCommand(service refreshNotifier, telemetry Telemetry) *RefreshFeedCommand {
	return &RefreshFeedCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshFeedInput] = (*RefreshFeedCommand)(nil)

// Execute notifies the service's refresh hooks.
func (c *RefreshFeedCommand) Execute(ctx context.Context, msg RefreshFeedInput) error {
	if c.service == nil {
		return errors.New("refresh command requires service")
	}
	if msg.Event.FeedCode == "" {
		return errors.New("refresh command requires feed code")
	}
	if msg.Event.Reason == "" {
		msg.Event.Reason = "manual"
	}
	if err := c.service.NotifyFeedUpdated(ctx, msg.Event); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "organizeit.command.refresh", map[string]any{
		"feed":   msg.Event.FeedCode,
		"reason": msg.Event.Reason,
	})
	return nil
}
