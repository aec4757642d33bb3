package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/organizeit/go-organizeit/components/dashboard"
	"github.com/organizeit/go-organizeit/pkg/apiclient"
	"github.com/organizeit/go-organizeit/pkg/config"
	"github.com/organizeit/go-organizeit/pkg/observability"
)

type cli struct {
	Config  string `help:"Path to an organizeit.yaml config file." type:"path" env:"ORGANIZEIT_CONFIG"`
	API     string `name:"api" help:"Backend base URL (overrides client.base_url)."`
	Verbose bool   `short:"v" help:"Enable debug logging."`

	Serve    serveCmd    `cmd:"" help:"Run the mock backend (feeds, actions, auth, chat, charts)."`
	Get      getCmd      `cmd:"" help:"Fetch a feed by code or path."`
	Action   actionCmd   `cmd:"" help:"Trigger a simulated action."`
	Login    loginCmd    `cmd:"" help:"Sign in with a demo account and persist the session."`
	Logout   logoutCmd   `cmd:"" help:"Sign out and forget the persisted session."`
	Whoami   whoamiCmd   `cmd:"" help:"Show the persisted session."`
	Watch    watchCmd    `cmd:"" help:"Poll feeds until interrupted."`
	Chat     chatCmd     `cmd:"" help:"Ask the OrganizeIT assistant."`
	Manifest manifestCmd `cmd:"" help:"Validate or scaffold feed manifests."`
}

// app carries what every command needs.
type app struct {
	ctx    context.Context
	cfg    *config.Config
	logger *zap.Logger
	out    io.Writer
}

func main() {
	var c cli
	kctx := kong.Parse(&c,
		kong.Name("organizeit"),
		kong.Description("OrganizeIT mock backend and command-line client."),
		kong.UsageOnError(),
	)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a, err := newApp(ctx, &c, os.Stdout)
	if err != nil {
		stop()
		kctx.FatalIfErrorf(err)
	}
	err = kctx.Run(a)
	_ = a.logger.Sync()
	stop()
	kctx.FatalIfErrorf(err)
}

func newApp(ctx context.Context, c *cli, out io.Writer) (*app, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	if c.API != "" {
		cfg.Client.BaseURL = c.API
	}
	if c.Verbose {
		cfg.Log.Level = "debug"
	}
	logger, err := observability.NewLogger(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, err
	}
	return &app{ctx: ctx, cfg: cfg, logger: logger, out: out}, nil
}

func (a *app) sessionFile() (apiclient.SessionFile, error) {
	path := a.cfg.Client.SessionFile
	if path == "" {
		var err error
		if path, err = apiclient.DefaultSessionPath(); err != nil {
			return apiclient.SessionFile{}, err
		}
	}
	return apiclient.SessionFile{Path: path}, nil
}

// client builds an API client carrying the persisted session token, if any.
func (a *app) client() (*apiclient.Client, error) {
	client, err := apiclient.NewClient(apiclient.Config{
		BaseURL:           a.cfg.Client.BaseURL,
		APIKey:            a.cfg.Client.APIKey,
		Notifier:          apiclient.NewLogNotifier(a.logger),
		RequestsPerSecond: a.cfg.Client.RequestsPerSecond,
		Logger:            a.logger,
		HTTPClient:        httpClient(a.cfg.Client.Timeout),
	})
	if err != nil {
		return nil, err
	}
	file, err := a.sessionFile()
	if err != nil {
		return nil, err
	}
	if session, err := file.Load(); err == nil {
		client.SetToken(session.Token)
	}
	return client, nil
}

// registry is the built-in registry overlaid with the configured manifests.
func (a *app) registry() (*dashboard.Registry, error) {
	registry := dashboard.NewRegistry()
	if err := dashboard.LoadManifests(registry, a.cfg.Server.Manifests...); err != nil {
		return nil, err
	}
	return registry, nil
}

// localService is the in-process generator used when the backend is down.
func (a *app) localService() *dashboard.Service {
	registry, err := a.registry()
	if err != nil {
		a.logger.Warn("manifests not loaded for local fallback", zap.Error(err))
		registry = dashboard.NewRegistry()
	}
	return dashboard.NewService(dashboard.Options{Registry: registry})
}

// feeds returns the remote client, wrapped with local fallback when enabled.
func (a *app) feeds(client *apiclient.Client) apiclient.FeedFetcher {
	if !a.cfg.Client.Fallback {
		return client
	}
	return &apiclient.FallbackSource{
		Remote: client,
		Local:  apiclient.LocalFeeds(a.localService()),
		Logger: a.logger,
	}
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("organizeit: encode output: %w", err)
	}
	return nil
}
