package commands

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
)

func TestRunActionCommandCopiesResult(t *testing.T) {
	service := &stubService{}
	cmd := NewRunActionCommand(service, nil)
	var result dashboard.ActionResult
	err := cmd.Execute(context.Background(), RunActionInput{
		Request: dashboard.ActionRequest{Action: dashboard.ActionRestartService, Target: "svc-auth"},
		Result:  &result,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, service.actionCalls)
	assert.True(t, result.Success)
	assert.Equal(t, "svc-auth", result.Record.Target)
}

func TestRunActionCommandPropagatesErrors(t *testing.T) {
	service := &stubService{actionErr: dashboard.ErrNotFound}
	telemetry := &stubTelemetry{}
	cmd := NewRunActionCommand(service, telemetry)
	err := cmd.Execute(context.Background(), RunActionInput{
		Request: dashboard.ActionRequest{Action: "nope"},
	})
	assert.ErrorIs(t, err, dashboard.ErrNotFound)
	assert.Zero(t, telemetry.calls)
}

func TestRunActionCommandRequiresService(t *testing.T) {
	cmd := NewRunActionCommand(nil, nil)
	assert.Error(t, cmd.Execute(context.Background(), RunActionInput{}))
}

func TestLoginAndLogoutCommands(t *testing.T) {
	service := dashboard.NewService(dashboard.Options{})
	telemetry := &stubTelemetry{}

	var session dashboard.Session
	login := NewLoginCommand(service, telemetry)
	require.NoError(t, login.Execute(context.Background(), LoginInput{
		Email:    "admin@organizeit.com",
		Password: "admin123",
		Result:   &session,
	}))
	assert.Equal(t, dashboard.RoleAdmin, session.User.Role)
	assert.NotEmpty(t, session.Token)

	err := login.Execute(context.Background(), LoginInput{Email: "admin@organizeit.com", Password: "wrong"})
	assert.ErrorIs(t, err, dashboard.ErrInvalidCredentials)

	logout := NewLogoutCommand(service, telemetry)
	require.NoError(t, logout.Execute(context.Background(), LogoutInput{Token: session.Token}))
	_, err = service.ResolveSession(context.Background(), session.Token)
	assert.ErrorIs(t, err, dashboard.ErrUnauthorized)
	assert.Equal(t, 2, telemetry.calls)
}

func TestRefreshFeedCommand(t *testing.T) {
	service := &stubService{}
	cmd := NewRefreshFeedCommand(service, nil)
	event := dashboard.FeedEvent{FeedCode: dashboard.FeedAlerts}
	require.NoError(t, cmd.Execute(context.Background(), RefreshFeedInput{Event: event}))
	assert.Equal(t, 1, service.refreshCalls)
	assert.Equal(t, "manual", service.lastEvent.Reason)

	assert.Error(t, cmd.Execute(context.Background(), RefreshFeedInput{}))
}

func TestSeedCommand(t *testing.T) {
	reg := dashboard.NewRegistry()
	actions := dashboard.NewMemoryActionStore()
	service := dashboard.NewService(dashboard.Options{Registry: reg, Actions: actions})
	telemetry := &stubTelemetry{}

	dir := t.TempDir()
	path := filepath.Join(dir, "feeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
version: 1
feeds:
  - definition:
      code: itops.alerts
      name: Incident Alerts
      refresh_interval: 45s
`), 0o600))

	cmd := NewSeedCommand(reg, service, telemetry)
	require.NoError(t, cmd.Execute(context.Background(), SeedInput{
		Manifests:   []string{path},
		SeedActions: true,
	}))

	def, ok := reg.Definition(dashboard.FeedAlerts)
	require.True(t, ok)
	assert.Equal(t, "Incident Alerts", def.Name)
	assert.Equal(t, len(dashboard.DefaultSeedActions()), actions.Len())
	assert.Equal(t, 1, telemetry.calls)
}

func TestSeedCommandRequiresRegistry(t *testing.T) {
	cmd := NewSeedCommand(nil, nil, nil)
	assert.Error(t, cmd.Execute(context.Background(), SeedInput{}))
}

type stubService struct {
	actionCalls  int
	actionErr    error
	refreshCalls int
	lastEvent    dashboard.FeedEvent
}

func (s *stubService) RunAction(_ context.Context, viewer dashboard.ViewerContext, req dashboard.ActionRequest) (dashboard.ActionResult, error) {
	s.actionCalls++
	if s.actionErr != nil {
		return dashboard.ActionResult{}, s.actionErr
	}
	return dashboard.ActionResult{
		Success: true,
		Message: "ok",
		Record:  dashboard.ActionRecord{Action: req.Action, Target: req.Target, Actor: viewer.Email},
	}, nil
}

func (s *stubService) NotifyFeedUpdated(_ context.Context, event dashboard.FeedEvent) error {
	s.refreshCalls++
	s.lastEvent = event
	if event.FeedCode == "broken" {
		return errors.New("boom")
	}
	return nil
}

type stubTelemetry struct {
	calls int
}

func (s *stubTelemetry) Record(context.Context, string, map[string]any) {
	s.calls++
}
