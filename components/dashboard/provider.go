package dashboard

import (
	"context"
	"time"
)

// Generator produces the randomized payload for a feed.
type Generator interface {
	Generate(ctx context.Context, feed FeedContext) (FeedData, error)
}

// GeneratorFunc adapts a function into a Generator.
type GeneratorFunc func(ctx context.Context, feed FeedContext) (FeedData, error)

// Generate calls f(ctx, feed).
func (f GeneratorFunc) Generate(ctx context.Context, feed FeedContext) (FeedData, error) {
	return f(ctx, feed)
}

// FeedContext contains everything a generator may consult.
type FeedContext struct {
	Definition FeedDefinition
	Viewer     ViewerContext
	Params     map[string]string
	Actions    ActionLookup
	Jitter     *Jitter
	Now        time.Time
}

// Param returns the named query parameter or the fallback.
func (f FeedContext) Param(name, fallback string) string {
	if v, ok := f.Params[name]; ok && v != "" {
		return v
	}
	return fallback
}

// FeedData is the JSON payload returned for a feed.
type FeedData map[string]any

// TimeSeries is the chartable portion of a feed payload.
type TimeSeries struct {
	Labels []string      `json:"labels"`
	Series []NamedSeries `json:"series"`
}

// NamedSeries is one legend entry of a TimeSeries.
type NamedSeries struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}
