package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
)

// SeedInput controls bootstrap behavior.
type SeedInput struct {
	Manifests   []string
	SeedActions bool
	// Actions overrides the default demo actions when non-nil.
	Actions []dashboard.ActionRequest
}

// SeedCommand loads feed manifests and optionally seeds demo actions.
type SeedCommand struct {
	registry  *dashboard.Registry
	service   *dashboard.Service
	telemetry Telemetry
}

// NewSeedCommand wires dependencies.
func NewSeedCommand(registry *dashboard.Registry, service *dashboard.Service, telemetry Telemetry) *SeedCommand {
	return &SeedCommand{
		registry:  registry,
		service:   service,
		telemetry: normalizeTelemetry(telemetry),
	}
}

var _ gocommand.Commander[SeedInput] = (*SeedCommand)(nil)

// Execute runs the bootstrap pipeline.
func (c *SeedCommand) Execute(ctx context.Context, msg SeedInput) error {
	if c.registry == nil {
		return errors.New("seed command requires registry")
	}
	if err := dashboard.LoadManifests(c.registry, msg.Manifests...); err != nil {
		return err
	}
	if msg.SeedActions {
		if c.service == nil {
			return errors.New("seed command requires service to seed actions")
		}
		if err := dashboard.SeedActions(ctx, c.service, msg.Actions); err != nil {
			return err
		}
	}
	c.telemetry.Record(ctx, "organizeit.seed", map[string]any{
		"manifests":    len(msg.Manifests),
		"seed_actions": msg.SeedActions,
	})
	return nil
}
