package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
)

// RunActionInput asks for a simulated action on behalf of Viewer. When Result
// is non-nil it receives the action outcome.
type RunActionInput struct {
	Viewer  dashboard.ViewerContext
	Request dashboard.ActionRequest
	Result  *dashboard.ActionResult `json:"-"`
}

type actionService interface {
	RunAction(ctx context.Context, viewer dashboard.ViewerContext, req dashboard.ActionRequest) (dashboard.ActionResult, error)
}

// RunActionCommand wraps Service.RunAction so transports can trigger actions
// without linking directly against the service.
type RunActionCommand struct {
	service   actionService
	telemetry Telemetry
}

// NewRunActionCommand creates a command instance.
func NewRunActionCommand(service actionService, telemetry Telemetry) *RunActionCommand {
	return &RunActionCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RunActionInput] = (*RunActionCommand)(nil)

// Execute delegates to the service and copies the result out.
func (c *RunActionCommand) Execute(ctx context.Context, msg RunActionInput) error {
	if c.service == nil {
		return errors.New("run action command requires service")
	}
	result, err := c.service.RunAction(ctx, msg.Viewer, msg.Request)
	if msg.Result != nil {
		*msg.Result = result
	}
	if err != nil {
		return err
	}
	c.telemetry.Record(ctx, "organizeit.command.action", map[string]any{
		"action": msg.Request.Action,
		"target": result.Record.Target,
	})
	return nil
}
