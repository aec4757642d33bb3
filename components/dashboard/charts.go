package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
)

const defaultChartHeight = "360px"

// ChartRenderer turns a feed's series into server-side ECharts HTML.
type ChartRenderer struct {
	cache      RenderCache
	theme      string
	assetsHost string
}

// ChartOption customizes a ChartRenderer.
type ChartOption func(*ChartRenderer)

// WithChartCache injects a render cache.
func WithChartCache(cache RenderCache) ChartOption {
	return func(r *ChartRenderer) {
		r.cache = cache
	}
}

// WithChartTheme sets the chart theme (defaults to Westeros).
func WithChartTheme(theme string) ChartOption {
	return func(r *ChartRenderer) {
		if theme != "" {
			r.theme = theme
		}
	}
}

// WithChartAssetsHost rewrites the assets host so ECharts JS loads from a CDN.
func WithChartAssetsHost(host string) ChartOption {
	return func(r *ChartRenderer) {
		r.assetsHost = host
	}
}

// NewChartRenderer builds a renderer with a five minute cache.
func NewChartRenderer(options ...ChartOption) *ChartRenderer {
	r := &ChartRenderer{
		cache: NewChartCache(5 * time.Minute),
		theme: types.ThemeWesteros,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Render draws the "series" entry of data using the definition's chart type.
func (r *ChartRenderer) Render(def FeedDefinition, data FeedData) (string, error) {
	if def.Chart == "" {
		return "", fmt.Errorf("%w: feed %s has no chart", ErrNotFound, def.Code)
	}
	series, ok := data["series"].(TimeSeries)
	if !ok || len(series.Series) == 0 {
		return "", fmt.Errorf("dashboard: feed %s returned no chart series", def.Code)
	}
	render := func() (string, error) {
		switch def.Chart {
		case "line":
			return r.renderLine(def, series)
		case "bar":
			return r.renderBar(def, series)
		default:
			return "", fmt.Errorf("dashboard: unsupported chart type %q", def.Chart)
		}
	}
	if r.cache == nil {
		return render()
	}
	key := fmt.Sprintf("%s:%s:%s", def.Code, def.Chart, seriesHash(series))
	return r.cache.GetOrRender(key, render)
}

func (r *ChartRenderer) renderLine(def FeedDefinition, series TimeSeries) (string, error) {
	line := charts.NewLine()
	line.SetGlobalOptions(r.globalOptions(def)...)
	line.SetXAxis(series.Labels)
	for _, s := range series.Series {
		data := make([]opts.LineData, len(s.Values))
		for i, v := range s.Values {
			data[i] = opts.LineData{Value: v}
		}
		line.AddSeries(s.Name, data)
	}
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
	return renderChart(line)
}

func (r *ChartRenderer) renderBar(def FeedDefinition, series TimeSeries) (string, error) {
	bar := charts.NewBar()
	bar.SetGlobalOptions(r.globalOptions(def)...)
	bar.SetXAxis(series.Labels)
	for _, s := range series.Series {
		data := make([]opts.BarData, len(s.Values))
		for i, v := range s.Values {
			data[i] = opts.BarData{Value: v}
		}
		bar.AddSeries(s.Name, data)
	}
	return renderChart(bar)
}

func renderChart(renderable interface{ Render(io.Writer) error }) (string, error) {
	var buf bytes.Buffer
	if err := renderable.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *ChartRenderer) globalOptions(def FeedDefinition) []charts.GlobalOpts {
	initOpts := opts.Initialization{
		Theme:  r.theme,
		Width:  "100%",
		Height: defaultChartHeight,
	}
	if r.assetsHost != "" {
		initOpts.AssetsHost = r.assetsHost
	}
	return []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: def.Name, Subtitle: def.Description}),
		charts.WithInitializationOpts(initOpts),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	}
}

// Chart fetches the feed and renders its chart HTML.
func (s *Service) Chart(ctx context.Context, viewer ViewerContext, code string, params map[string]string) (string, error) {
	def, ok := s.opts.Registry.Definition(code)
	if !ok {
		return "", fmt.Errorf("%w: feed %s", ErrNotFound, code)
	}
	if def.Chart == "" {
		return "", fmt.Errorf("%w: feed %s has no chart", ErrNotFound, code)
	}
	data, err := s.fetch(ctx, viewer, def, params)
	if err != nil {
		return "", err
	}
	return s.charts.Render(def, data)
}
