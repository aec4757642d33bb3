package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/organizeit/go-organizeit/components/dashboard"
	"github.com/organizeit/go-organizeit/pkg/apiclient"
)

func httpClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		return nil
	}
	return &http.Client{Timeout: timeout}
}

type getCmd struct {
	Feed  string            `arg:"" help:"Feed code (itops.alerts) or path (/alerts)."`
	Param map[string]string `short:"p" help:"Query parameter, e.g. -p hours=6."`
}

func (cmd *getCmd) Run(a *app) error {
	registry, err := a.registry()
	if err != nil {
		return err
	}
	code, err := resolveFeedCode(registry, cmd.Feed)
	if err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}
	data, err := a.feeds(client).Feed(a.ctx, code, cmd.Param)
	if err != nil {
		return err
	}
	return a.printJSON(data)
}

// resolveFeedCode accepts a feed code or a registered feed path.
func resolveFeedCode(registry *dashboard.Registry, feed string) (string, error) {
	feed = strings.TrimSpace(feed)
	if !strings.HasPrefix(feed, "/") {
		return feed, nil
	}
	def, ok := registry.DefinitionByPath(feed)
	if !ok {
		return "", fmt.Errorf("organizeit: no feed served at %s", feed)
	}
	return def.Code, nil
}

type actionCmd struct {
	Action  string            `arg:"" help:"Action code, e.g. service.restart or alert.acknowledge."`
	Target  string            `arg:"" optional:"" help:"Target id (service, alert, optimization or task)."`
	Payload map[string]string `help:"Payload field, e.g. --payload replicas=4."`
}

func (cmd *actionCmd) Run(a *app) error {
	client, err := a.client()
	if err != nil {
		return err
	}
	result, err := client.RunAction(a.ctx, dashboard.ActionRequest{
		Action:  cmd.Action,
		Target:  cmd.Target,
		Payload: coercePayload(cmd.Action, cmd.Payload),
	})
	if err != nil {
		return err
	}
	return a.printJSON(result)
}

// coercePayload types flag values by the built-in action's schema. Unknown
// actions send strings and let the backend reject them.
func coercePayload(action string, raw map[string]string) map[string]any {
	def, ok := dashboard.ActionDefinitionFor(action)
	if !ok {
		def = dashboard.ActionDefinition{Code: action}
	}
	return def.CoercePayload(raw)
}

type loginCmd struct {
	Email    string `required:"" help:"Account email (demo@organizeit.com or admin@organizeit.com)."`
	Password string `required:"" env:"ORGANIZEIT_PASSWORD" help:"Account password."`
}

func (cmd *loginCmd) Run(a *app) error {
	client, err := a.client()
	if err != nil {
		return err
	}
	session, err := client.Login(a.ctx, cmd.Email, cmd.Password)
	if err != nil {
		return err
	}
	file, err := a.sessionFile()
	if err != nil {
		return err
	}
	if err := file.Save(session); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s (%s), home %s\n", session.User.Email, session.User.Role, session.User.Home)
	return nil
}

type logoutCmd struct{}

func (cmd *logoutCmd) Run(a *app) error {
	file, err := a.sessionFile()
	if err != nil {
		return err
	}
	client, err := a.client()
	if err != nil {
		return err
	}
	if client.Token() != "" {
		if err := client.Logout(a.ctx); err != nil {
			a.logger.Warn("remote logout failed", zap.Error(err))
		}
	}
	if err := file.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

type whoamiCmd struct {
	Remote bool `help:"Also confirm the session with the backend."`
}

func (cmd *whoamiCmd) Run(a *app) error {
	file, err := a.sessionFile()
	if err != nil {
		return err
	}
	session, err := file.Load()
	if err != nil {
		if errors.Is(err, dashboard.ErrUnauthorized) || errors.Is(err, dashboard.ErrSessionExpired) {
			fmt.Fprintln(a.out, "Not signed in")
			return nil
		}
		return err
	}
	if cmd.Remote {
		client, err := a.client()
		if err != nil {
			return err
		}
		if session, err = client.Session(a.ctx); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.out, "%s (%s) until %s\n", session.User.Email, session.User.Role, session.ExpiresAt.Format(time.RFC3339))
	return nil
}

type chatCmd struct {
	Message []string `arg:"" help:"Message for the assistant."`
}

func (cmd *chatCmd) Run(a *app) error {
	message := strings.Join(cmd.Message, " ")
	client, err := a.client()
	if err != nil {
		return err
	}
	reply, err := client.Chat(a.ctx, message)
	if err != nil {
		if !a.cfg.Client.Fallback {
			return err
		}
		a.logger.Warn("backend unavailable, answering locally", zap.Error(err))
		if reply, err = a.localService().Chat(a.ctx, dashboard.ViewerContext{}, message); err != nil {
			return err
		}
	}
	fmt.Fprintln(a.out, reply.Reply)
	if len(reply.Suggestions) > 0 {
		fmt.Fprintf(a.out, "Try: %s\n", strings.Join(reply.Suggestions, " | "))
	}
	return nil
}

type watchCmd struct {
	Feeds    []string      `arg:"" optional:"" help:"Feed codes to poll. Defaults to every built-in feed."`
	Interval time.Duration `help:"Polling interval (clamped to 30s..5m). Defaults to each feed's refresh interval."`
}

func (cmd *watchCmd) Run(a *app) error {
	client, err := a.client()
	if err != nil {
		return err
	}
	group, err := cmd.pollGroup(a, a.feeds(client))
	if err != nil {
		return err
	}
	a.logger.Info("watching feeds", zap.Int("feeds", group.Len()))
	return group.Run(a.ctx)
}

func (cmd *watchCmd) pollGroup(a *app, source apiclient.FeedFetcher) (*apiclient.PollGroup, error) {
	registry, err := a.registry()
	if err != nil {
		return nil, err
	}
	codes := cmd.Feeds
	if len(codes) == 0 {
		for _, def := range registry.Definitions() {
			if _, ok := registry.Generator(def.Code); !ok {
				a.logger.Warn("skipping feed without generator", zap.String("feed", def.Code))
				continue
			}
			codes = append(codes, def.Code)
		}
	}
	out := &lockedWriter{w: a.out}
	group := &apiclient.PollGroup{}
	for _, code := range codes {
		def, ok := registry.Definition(code)
		if !ok {
			return nil, fmt.Errorf("organizeit: unknown feed %s", code)
		}
		if _, ok := registry.Generator(code); !ok {
			return nil, fmt.Errorf("organizeit: feed %s has no generator", code)
		}
		interval := cmd.Interval
		if interval == 0 {
			interval = def.RefreshInterval
		}
		group.Add(&apiclient.Poller{
			Name:     code,
			Interval: interval,
			Fetch: func(ctx context.Context) error {
				data, err := source.Feed(ctx, code, nil)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s %s %s\n", time.Now().Format(time.TimeOnly), code, summarize(data))
				return nil
			},
			OnError: func(name string, err error) {
				a.logger.Error("poll failed", zap.String("feed", name), zap.Error(err))
			},
		})
	}
	return group, nil
}

// summarize renders the top-level scalar fields of a feed on one line.
func summarize(data dashboard.FeedData) string {
	keys := make([]string, 0, len(data))
	for k, v := range data {
		switch v.(type) {
		case string, float64, int, bool:
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, data[k]))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("(%d fields)", len(data))
	}
	return strings.Join(parts, " ")
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
