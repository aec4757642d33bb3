package dashboard

import "context"

// Telemetry records service events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

// TelemetryFunc adapts a function into a Telemetry sink.
type TelemetryFunc func(ctx context.Context, event string, payload map[string]any)

// Record calls f(ctx, event, payload).
func (f TelemetryFunc) Record(ctx context.Context, event string, payload map[string]any) {
	f(ctx, event, payload)
}

// Telemetry event names.
const (
	EventFeedFetch    = "organizeit.feed.fetch"
	EventFeedError    = "organizeit.feed.error"
	EventActionRun    = "organizeit.action.run"
	EventAuthLogin    = "organizeit.auth.login"
	EventAuthFailed   = "organizeit.auth.failed"
	EventAuthLogout   = "organizeit.auth.logout"
	EventFeedRefresh  = "organizeit.feed.refresh"
	EventRefreshError = "organizeit.refresh.error"
)

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}
