package dashboard

import (
	"context"
	"errors"
	"fmt"
)

// SeedViewer is the actor recorded for seeded actions.
var SeedViewer = ViewerContext{UserID: "system", Email: "system@organizeit.com", Roles: []string{RoleAdmin}}

var defaultSeedActions = []ActionRequest{
	{Action: ActionAcknowledgeAlert, Target: "alert-004"},
	{Action: ActionApplyOptimization, Target: "opt-003"},
	{Action: ActionUpdateTask, Target: "task-005", Payload: map[string]any{"status": TaskInProgress}},
}

// DefaultSeedActions returns the demo actions applied by SeedActions when
// none are given.
func DefaultSeedActions() []ActionRequest {
	out := make([]ActionRequest, len(defaultSeedActions))
	for i, req := range defaultSeedActions {
		req.Payload = cloneMap(req.Payload)
		out[i] = req
	}
	return out
}

// SeedActions runs the requests as SeedViewer so a fresh process shows some
// history. Every request is attempted; failures are joined.
func SeedActions(ctx context.Context, service *Service, requests []ActionRequest) error {
	if service == nil {
		return errors.New("dashboard: service is required to seed actions")
	}
	if requests == nil {
		requests = DefaultSeedActions()
	}
	var seedErr error
	for _, req := range requests {
		if _, err := service.RunAction(ctx, SeedViewer, req); err != nil {
			seedErr = errors.Join(seedErr, fmt.Errorf("seed %s %s: %w", req.Action, req.Target, err))
		}
	}
	return seedErr
}

// LoadManifests applies each manifest file to the registry in order.
func LoadManifests(reg *Registry, paths ...string) error {
	if reg == nil {
		return errors.New("dashboard: registry is required to load manifests")
	}
	var loadErr error
	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := reg.LoadManifestFile(path); err != nil {
			loadErr = errors.Join(loadErr, err)
		}
	}
	return loadErr
}
