package apiclient

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
)

// RefreshPolicy bounds polling intervals.
type RefreshPolicy struct {
	Min     time.Duration
	Max     time.Duration
	Default time.Duration
}

// DefaultRefreshPolicy keeps pages between 30 seconds and 5 minutes.
func DefaultRefreshPolicy() RefreshPolicy {
	return RefreshPolicy{Min: 30 * time.Second, Max: 5 * time.Minute, Default: 30 * time.Second}
}

// Clamp returns d inside [Min, Max]; zero or negative uses Default.
func (p RefreshPolicy) Clamp(d time.Duration) time.Duration {
	if d <= 0 {
		d = p.Default
	}
	if p.Min > 0 && d < p.Min {
		d = p.Min
	}
	if p.Max > 0 && d > p.Max {
		d = p.Max
	}
	return d
}

// FetchFunc performs one refresh.
type FetchFunc func(ctx context.Context) error

// Poller refetches on a fixed interval until its context ends.
type Poller struct {
	Name     string
	Interval time.Duration
	Fetch    FetchFunc
	// Policy clamps Interval; the zero value uses DefaultRefreshPolicy.
	Policy RefreshPolicy
	// OnError observes failed fetches. Polling continues after a failure.
	OnError func(name string, err error)
}

// Period returns the effective polling interval.
func (p *Poller) Period() time.Duration {
	policy := p.Policy
	if policy == (RefreshPolicy{}) {
		policy = DefaultRefreshPolicy()
	}
	return policy.Clamp(p.Interval)
}

// Run fetches immediately, then on every tick. It returns nil once ctx is
// cancelled.
func (p *Poller) Run(ctx context.Context) error {
	if p.Fetch == nil {
		return errors.New("apiclient: poller requires a fetch func")
	}
	p.fetch(ctx)
	ticker := time.NewTicker(p.Period())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.fetch(ctx)
		}
	}
}

func (p *Poller) fetch(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := p.Fetch(ctx); err != nil && p.OnError != nil && ctx.Err() == nil {
		p.OnError(p.Name, err)
	}
}

// PollGroup runs pollers side by side.
type PollGroup struct {
	pollers []*Poller
}

// Add appends pollers to the group.
func (g *PollGroup) Add(pollers ...*Poller) {
	g.pollers = append(g.pollers, pollers...)
}

// Len reports the number of pollers.
func (g *PollGroup) Len() int {
	return len(g.pollers)
}

// Run starts every poller and blocks until all stop.
func (g *PollGroup) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, p := range g.pollers {
		eg.Go(func() error {
			return p.Run(ctx)
		})
	}
	return eg.Wait()
}
