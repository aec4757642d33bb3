package dashboard

import (
	"context"
	"sync"
	"time"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: fixedNow}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(opts Options) (*Service, *testClock) {
	clock := newTestClock()
	if opts.Clock == nil {
		opts.Clock = clock.Now
	}
	if opts.Jitter == nil {
		opts.Jitter = NewJitter(42)
	}
	return NewService(opts), clock
}

type recordingHook struct {
	mu     sync.Mutex
	events []FeedEvent
	err    error
}

func (h *recordingHook) FeedUpdated(_ context.Context, event FeedEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	return h.err
}

func (h *recordingHook) feeds() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.events))
	for i, e := range h.events {
		out[i] = e.FeedCode
	}
	return out
}

type telemetryEvent struct {
	name    string
	payload map[string]any
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []telemetryEvent
}

func (r *recordingTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, telemetryEvent{name: event, payload: payload})
}

func (r *recordingTelemetry) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.name
	}
	return out
}

func feedContext(seed uint64, params map[string]string, actions ActionLookup) FeedContext {
	return FeedContext{
		Params:  params,
		Actions: actions,
		Jitter:  NewJitter(seed),
		Now:     fixedNow,
	}
}
