package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// OverviewSource is the subset of Service used to build the HTML overview.
type OverviewSource interface {
	FetchFeed(ctx context.Context, viewer ViewerContext, code string, params map[string]string) (FeedData, error)
	Chart(ctx context.Context, viewer ViewerContext, code string, params map[string]string) (string, error)
	Navigation(viewer ViewerContext) []NavItem
}

// ControllerOptions wires the controller.
type ControllerOptions struct {
	Service  OverviewSource
	Renderer Renderer
	Template string
	// Charts lists the chart feeds embedded in the page, in order.
	Charts []string
}

// Controller renders the server-side overview page.
type Controller struct {
	opts ControllerOptions
}

// NewController builds a controller with defaults for template and charts.
func NewController(opts ControllerOptions) *Controller {
	if opts.Template == "" {
		opts.Template = OverviewTemplate
	}
	if opts.Charts == nil {
		opts.Charts = []string{FeedMetrics, FeedCosts, FeedESG}
	}
	return &Controller{opts: opts}
}

type chartBlock struct {
	Code string
	HTML string
}

// RenderTemplate resolves the overview data for the viewer and renders it to
// out. Feeds the viewer may not read are left out of the page.
func (c *Controller) RenderTemplate(ctx context.Context, viewer ViewerContext, out io.Writer) error {
	if c.opts.Service == nil || c.opts.Renderer == nil {
		return errors.New("dashboard: controller requires a service and renderer")
	}
	overview, err := c.optionalFeed(ctx, viewer, FeedOverview)
	if err != nil {
		return err
	}
	alerts, err := c.optionalFeed(ctx, viewer, FeedAlerts)
	if err != nil {
		return err
	}
	var blocks []chartBlock
	for _, code := range c.opts.Charts {
		html, err := c.opts.Service.Chart(ctx, viewer, code, nil)
		if err != nil {
			if hidden(err) {
				continue
			}
			return fmt.Errorf("dashboard: render chart %s: %w", code, err)
		}
		blocks = append(blocks, chartBlock{Code: code, HTML: html})
	}
	payload := map[string]any{
		"viewer":     viewer,
		"navigation": c.opts.Service.Navigation(viewer),
		"overview":   overview,
		"alerts":     alerts,
		"charts":     blocks,
	}
	if _, err := c.opts.Renderer.Render(c.opts.Template, payload, out); err != nil {
		return fmt.Errorf("dashboard: render %s: %w", c.opts.Template, err)
	}
	return nil
}

func (c *Controller) optionalFeed(ctx context.Context, viewer ViewerContext, code string) (FeedData, error) {
	data, err := c.opts.Service.FetchFeed(ctx, viewer, code, nil)
	if err != nil {
		if hidden(err) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

func hidden(err error) bool {
	return errors.Is(err, ErrForbidden) || errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotFound)
}
