package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
)

const namespace = "organizeit"

// Metrics turns telemetry events into Prometheus counters.
type Metrics struct {
	registry    *prometheus.Registry
	events      *prometheus.CounterVec
	feedFetches *prometheus.CounterVec
	feedErrors  *prometheus.CounterVec
	actions     *prometheus.CounterVec
	logins      *prometheus.CounterVec
}

var _ dashboard.Telemetry = (*Metrics)(nil)

// NewMetrics registers the OrganizeIT collectors on a fresh registry, along
// with the Go runtime and process collectors.
func NewMetrics() (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telemetry_events_total",
			Help:      "Telemetry events recorded by the dashboard service.",
		}, []string{"event"}),
		feedFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_fetches_total",
			Help:      "Successful mock feed generations.",
		}, []string{"feed"}),
		feedErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_errors_total",
			Help:      "Failed mock feed generations.",
		}, []string{"feed"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Simulated actions recorded in the action map.",
		}, []string{"action"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
	}
	for _, c := range []prometheus.Collector{
		m.events, m.feedFetches, m.feedErrors, m.actions, m.logins,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("observability: register collector: %w", err)
		}
	}
	return m, nil
}

// BroadcastStats is the view of a refresh broadcast exported as gauges.
type BroadcastStats interface {
	Subscribers() int
	Dropped() uint64
}

// ObserveBroadcast exports the subscriber count and dropped deliveries.
func (m *Metrics) ObserveBroadcast(stats BroadcastStats) error {
	gauges := []prometheus.Collector{
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refresh_subscribers",
			Help:      "Open SSE and WebSocket refresh subscriptions.",
		}, func() float64 { return float64(stats.Subscribers()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_dropped_total",
			Help:      "Refresh events skipped because a subscriber was behind.",
		}, func() float64 { return float64(stats.Dropped()) }),
	}
	for _, g := range gauges {
		if err := m.registry.Register(g); err != nil {
			return fmt.Errorf("observability: register broadcast collector: %w", err)
		}
	}
	return nil
}

// Record implements dashboard.Telemetry.
func (m *Metrics) Record(_ context.Context, event string, payload map[string]any) {
	m.events.WithLabelValues(event).Inc()
	switch event {
	case dashboard.EventFeedFetch:
		m.feedFetches.WithLabelValues(label(payload, "feed")).Inc()
	case dashboard.EventFeedError:
		m.feedErrors.WithLabelValues(label(payload, "feed")).Inc()
	case dashboard.EventActionRun:
		m.actions.WithLabelValues(label(payload, "action")).Inc()
	case dashboard.EventAuthLogin:
		m.logins.WithLabelValues("success").Inc()
	case dashboard.EventAuthFailed:
		m.logins.WithLabelValues("failure").Inc()
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func label(payload map[string]any, key string) string {
	if v, ok := payload[key].(string); ok && v != "" {
		return v
	}
	return "unknown"
}
