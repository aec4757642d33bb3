package observability

import (
	"context"
	"sort"

	"go.uber.org/zap"

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
)

// ZapTelemetry writes telemetry events as debug log entries. Failures and
// rejected logins are logged at warn.
type ZapTelemetry struct {
	Logger *zap.Logger
}

var _ dashboard.Telemetry = (*ZapTelemetry)(nil)

// Record implements dashboard.Telemetry.
func (t *ZapTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	if t == nil || t.Logger == nil {
		return
	}
	fields := payloadFields(payload)
	switch event {
	case dashboard.EventFeedError, dashboard.EventAuthFailed, dashboard.EventRefreshError:
		t.Logger.Warn(event, fields...)
	default:
		t.Logger.Debug(event, fields...)
	}
}

func payloadFields(payload map[string]any) []zap.Field {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fields := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, zap.Any(k, payload[k]))
	}
	return fields
}

// MultiTelemetry fans each event out to every sink.
type MultiTelemetry []dashboard.Telemetry

// Record implements dashboard.Telemetry.
func (m MultiTelemetry) Record(ctx context.Context, event string, payload map[string]any) {
	for _, t := range m {
		if t != nil {
			t.Record(ctx, event, payload)
		}
	}
}

// LogNotifications publishes feed events to a zap logger. It stands in for
// the chat-ops webhook a deployment would wire.
type LogNotifications struct {
	Logger *zap.Logger
}

var _ dashboard.NotificationsClient = (*LogNotifications)(nil)

// PublishFeedEvent implements dashboard.NotificationsClient.
func (n *LogNotifications) PublishFeedEvent(_ context.Context, event dashboard.FeedEvent) error {
	if n == nil || n.Logger == nil {
		return nil
	}
	n.Logger.Info("feed updated",
		zap.String("feed", event.FeedCode),
		zap.String("action", event.Action),
		zap.String("target", event.Target),
		zap.String("reason", event.Reason),
		zap.Time("at", event.At),
	)
	return nil
}
