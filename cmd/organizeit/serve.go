package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"
	"go.uber.org/zap"

	"github.com/organizeit/go-organizeit/components/dashboard"
	"github.com/organizeit/go-organizeit/components/dashboard/gorouter"
	"github.com/organizeit/go-organizeit/components/dashboard/httpapi"
	"github.com/organizeit/go-organizeit/pkg/activity"
	"github.com/organizeit/go-organizeit/pkg/activity/usersink"
	"github.com/organizeit/go-organizeit/pkg/observability"
	"github.com/organizeit/go-organizeit/pkg/sessions"
)

const shutdownTimeout = 5 * time.Second

type serveCmd struct {
	Addr        string `help:"Listen address (overrides server.addr)."`
	RequireAuth bool   `help:"Reject anonymous feed and action calls."`
	NoSeed      bool   `help:"Start with an empty action map."`
}

// backend is the composed server before it starts listening.
type backend struct {
	service    *dashboard.Service
	executor   *httpapi.CommandExecutor
	controller *dashboard.Controller
	broadcast  *dashboard.BroadcastHook
	metrics    *observability.Metrics
	closers    []func() error
}

func (b *backend) Close() error {
	var errs error
	for _, closer := range b.closers {
		errs = errors.Join(errs, closer())
	}
	return errs
}

func (cmd *serveCmd) Run(a *app) error {
	if cmd.Addr != "" {
		a.cfg.Server.Addr = cmd.Addr
	}
	if cmd.RequireAuth {
		a.cfg.Server.RequireAuth = true
	}
	if cmd.NoSeed {
		a.cfg.Server.Seed = false
	}
	b, err := buildBackend(a)
	if err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			a.logger.Warn("close backend", zap.Error(err))
		}
	}()

	server := router.NewFiberAdapter()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:        server.Router(),
		API:           b.executor,
		Controller:    b.controller,
		Charts:        b.service,
		Broadcast:     b.broadcast,
		Feeds:         b.service.Registry().Definitions(),
		BasePath:      a.cfg.Server.BasePath,
		AliasPrefixes: a.cfg.Server.AliasPrefixes,
	}); err != nil {
		return fmt.Errorf("organizeit: register routes: %w", err)
	}

	if a.cfg.Server.MetricsAddr != "" {
		metricsServer := &http.Server{
			Addr:              a.cfg.Server.MetricsAddr,
			Handler:           metricsMux(b.metrics),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics listener", zap.Error(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = metricsServer.Shutdown(ctx)
		}()
	}

	go func() {
		<-a.ctx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			a.logger.Warn("shutdown", zap.Error(err))
		}
	}()

	a.logger.Info("organizeit backend listening",
		zap.String("addr", a.cfg.Server.Addr),
		zap.String("base_path", a.cfg.Server.BasePath),
		zap.Strings("aliases", a.cfg.Server.AliasPrefixes),
		zap.String("metrics", a.cfg.Server.MetricsAddr),
	)
	if err := server.Serve(a.cfg.Server.Addr); err != nil && a.ctx.Err() == nil {
		return fmt.Errorf("organizeit: serve: %w", err)
	}
	return nil
}

// buildBackend wires the service with its stores, hooks and sinks.
func buildBackend(a *app) (*backend, error) {
	cfg := a.cfg.Server
	b := &backend{broadcast: dashboard.NewBroadcastHook()}

	registry := dashboard.NewRegistry()
	if err := dashboard.LoadManifests(registry, cfg.Manifests...); err != nil {
		return nil, err
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return nil, err
	}
	b.metrics = metrics
	if err := metrics.ObserveBroadcast(b.broadcast); err != nil {
		return nil, err
	}
	telemetry := observability.MultiTelemetry{&observability.ZapTelemetry{Logger: a.logger}, metrics}

	var store dashboard.SessionStore
	if cfg.SessionDB != "" {
		sqlite, err := sessions.Open(cfg.SessionDB)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, sqlite.Close)
		if n, err := sqlite.PurgeExpired(a.ctx, time.Now()); err != nil {
			a.logger.Warn("purge expired sessions", zap.Error(err))
		} else if n > 0 {
			a.logger.Info("purged expired sessions", zap.Int64("count", n))
		}
		store = sqlite
	}

	charts := a.cfg.Charts
	b.service = dashboard.NewService(dashboard.Options{
		Registry: registry,
		Sessions: store,
		RefreshHook: dashboard.MultiRefreshHook{
			b.broadcast,
			&dashboard.NotificationsHook{
				Client: &observability.LogNotifications{Logger: a.logger},
				Feeds:  []string{dashboard.FeedAlerts, dashboard.FeedServices},
			},
		},
		ActivityHooks:  activity.Hooks{usersink.Hook{Sink: &observability.ActivityLog{Logger: a.logger}}},
		ActivityConfig: a.cfg.Activity,
		Telemetry:      telemetry,
		Jitter:         dashboard.NewJitter(cfg.JitterSeed),
		Charts: dashboard.NewChartRenderer(
			dashboard.WithChartTheme(charts.Theme),
			dashboard.WithChartAssetsHost(charts.AssetsHost),
			dashboard.WithChartCache(dashboard.NewChartCache(charts.CacheTTL)),
		),
		RequireAuth: cfg.RequireAuth,
	})
	b.executor = httpapi.NewCommandExecutor(b.service, telemetry)

	renderer, err := dashboard.NewTemplateRenderer()
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("organizeit: templates: %w", err)
	}
	b.controller = dashboard.NewController(dashboard.ControllerOptions{Service: b.service, Renderer: renderer})

	if cfg.Seed {
		if err := dashboard.SeedActions(a.ctx, b.service, nil); err != nil {
			a.logger.Warn("seed actions", zap.Error(err))
		}
	}
	return b, nil
}

func metricsMux(metrics *observability.Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics.Handler())
	return mux
}
