package commands

import (
	"context"

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
)

// Telemetry is the sink commands report to.
type Telemetry = dashboard.Telemetry

var discardTelemetry Telemetry = dashboard.TelemetryFunc(func(context.Context, string, map[string]any) {})

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return discardTelemetry
	}
	return t
}
