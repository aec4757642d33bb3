package gorouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	router "github.com/goliatone/go-router"

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
	"github.com/organizeit/go-organizeit/components/dashboard/commands"
	"github.com/organizeit/go-organizeit/components/dashboard/httpapi"
	"github.com/organizeit/go-organizeit/components/dashboard/queries"
)

// DefaultAliasPrefix is the hosted-function prefix that mirrors the API base.
const DefaultAliasPrefix = "/functions/v1/make-server"

// ViewerResolver converts a router.Context into a dashboard.ViewerContext.
// Returning an error aborts the request with the mapped status.
type ViewerResolver func(router.Context) (dashboard.ViewerContext, error)

// ChartSource renders chart HTML for a feed.
type ChartSource interface {
	Chart(ctx context.Context, viewer dashboard.ViewerContext, code string, params map[string]string) (string, error)
}

// Config wires go-router with the OrganizeIT API, overview page and hooks.
type Config[T any] struct {
	Router     router.Router[T]
	API        httpapi.Executor
	Controller *dashboard.Controller
	Charts     ChartSource
	Broadcast  *dashboard.BroadcastHook
	// Feeds are mounted at their paths. Defaults to the built-in feeds.
	Feeds          []dashboard.FeedDefinition
	ViewerResolver ViewerResolver
	// BasePath defaults to /api.
	BasePath string
	// AliasPrefixes mount the same API again. Nil means DefaultAliasPrefix;
	// an empty non-nil slice disables aliases.
	AliasPrefixes []string
	Routes        RouteConfig
}

// RouteConfig customizes the relative paths used for API endpoints.
type RouteConfig struct {
	HTML       string
	Feeds      string
	FeedByCode string
	Action     string
	Login      string
	Session    string
	Logout     string
	Chat       string
	Navigation string
	Refresh    string
	Chart      string
	WebSocket  string
}

// Register mounts the API (feeds, actions, auth, chat, navigation, charts),
// the HTML overview and the WebSocket refresh stream on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.API == nil {
		return errors.New("gorouter: api executor is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	base := cfg.BasePath
	if base == "" {
		base = "/api"
	}
	prefixes := cfg.AliasPrefixes
	if prefixes == nil {
		prefixes = []string{DefaultAliasPrefix}
	}
	feeds := cfg.Feeds
	if feeds == nil {
		feeds = dashboard.DefaultFeedDefinitions()
	}
	resolver := cfg.ViewerResolver
	if resolver == nil {
		resolver = BearerViewerResolver(cfg.API)
	}

	for _, prefix := range append([]string{base}, prefixes...) {
		group := cfg.Router.Group(prefix)
		registerAPI(group, cfg.API, resolver, routes, feeds)
		if cfg.Charts != nil {
			registerCharts(group, cfg.Charts, resolver, routes.Chart, feeds)
		}
		if cfg.Broadcast != nil {
			registerWebSocket(group, cfg.Broadcast, routes.WebSocket)
		}
	}

	if cfg.Controller != nil {
		cfg.Router.Get(routes.HTML, router.WrapHandler(func(ctx router.Context) error {
			viewer, err := resolver(ctx)
			if err != nil {
				return respondError(ctx, err)
			}
			var buf bytes.Buffer
			if err := cfg.Controller.RenderTemplate(ctx.Context(), viewer, &buf); err != nil {
				return respondError(ctx, err)
			}
			ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
			return ctx.Send(buf.Bytes())
		}))
	}
	return nil
}

func registerAPI[T any](r router.Router[T], api httpapi.Executor, resolver ViewerResolver, routes RouteConfig, feeds []dashboard.FeedDefinition) {
	r.Get(routes.Feeds, router.WrapHandler(func(ctx router.Context) error {
		viewer, err := resolver(ctx)
		if err != nil {
			return respondError(ctx, err)
		}
		defs, err := api.Feeds(ctx.Context(), viewer)
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"items": defs, "total": len(defs)})
	}))

	r.Get(routes.FeedByCode, router.WrapHandler(func(ctx router.Context) error {
		code := ctx.Param("code")
		return serveFeed(ctx, api, resolver, queries.FeedInput{Code: code, Params: paramsFor(ctx, feeds, code)})
	}))

	for _, def := range feeds {
		def := def
		if def.Path == "" {
			continue
		}
		r.Get(def.Path, router.WrapHandler(func(ctx router.Context) error {
			return serveFeed(ctx, api, resolver, queries.FeedInput{Code: def.Code, Params: queryParams(ctx, def.Params)})
		}))
	}

	for _, route := range httpapi.DefaultActionRoutes() {
		route := route
		handler := router.WrapHandler(func(ctx router.Context) error {
			req, err := httpapi.ActionRequestFor(route, ctx.Param("id"), ctx.Body())
			if err != nil {
				return respondError(ctx, err)
			}
			return runAction(ctx, api, resolver, req)
		})
		if route.Method == http.MethodDelete {
			r.Delete(route.Path, handler)
			continue
		}
		r.Post(route.Path, handler)
	}

	r.Post(routes.Action, router.WrapHandler(func(ctx router.Context) error {
		req, err := httpapi.GenericActionRequest(ctx.Param("action"), ctx.Body())
		if err != nil {
			return respondError(ctx, err)
		}
		return runAction(ctx, api, resolver, req)
	}))

	r.Post(routes.Login, router.WrapHandler(func(ctx router.Context) error {
		var input commands.LoginInput
		if err := decodeBody(ctx, &input); err != nil {
			return respondError(ctx, err)
		}
		var session dashboard.Session
		input.Result = &session
		if err := api.Login(ctx.Context(), input); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, session)
	}))

	r.Get(routes.Session, router.WrapHandler(func(ctx router.Context) error {
		session, err := api.Session(ctx.Context(), queries.SessionInput{Token: bearer(ctx)})
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, session)
	}))

	r.Post(routes.Logout, router.WrapHandler(func(ctx router.Context) error {
		if err := api.Logout(ctx.Context(), commands.LogoutInput{Token: bearer(ctx)}); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]string{"status": "logged_out"})
	}))

	r.Post(routes.Chat, router.WrapHandler(func(ctx router.Context) error {
		viewer, err := resolver(ctx)
		if err != nil {
			return respondError(ctx, err)
		}
		var input queries.ChatInput
		if err := decodeBody(ctx, &input); err != nil {
			return respondError(ctx, err)
		}
		input.Viewer = viewer
		reply, err := api.Chat(ctx.Context(), input)
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, reply)
	}))

	r.Get(routes.Navigation, router.WrapHandler(func(ctx router.Context) error {
		viewer, err := resolver(ctx)
		if err != nil {
			return respondError(ctx, err)
		}
		items, err := api.Navigation(ctx.Context(), viewer)
		if err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusOK, map[string]any{"items": items})
	}))

	r.Post(routes.Refresh, router.WrapHandler(func(ctx router.Context) error {
		var event dashboard.FeedEvent
		if err := decodeBody(ctx, &event); err != nil {
			return respondError(ctx, err)
		}
		if event.FeedCode == "" {
			return respondError(ctx, errors.Join(dashboard.ErrValidation, errors.New("feed_code is required")))
		}
		if err := api.Refresh(ctx.Context(), commands.RefreshFeedInput{Event: event}); err != nil {
			return respondError(ctx, err)
		}
		return ctx.JSON(http.StatusAccepted, map[string]string{"status": "queued"})
	}))
}

func registerCharts[T any](r router.Router[T], charts ChartSource, resolver ViewerResolver, path string, feeds []dashboard.FeedDefinition) {
	r.Get(path, router.WrapHandler(func(ctx router.Context) error {
		viewer, err := resolver(ctx)
		if err != nil {
			return respondError(ctx, err)
		}
		code := ctx.Param("code")
		html, err := charts.Chart(ctx.Context(), viewer, code, paramsFor(ctx, feeds, code))
		if err != nil {
			return respondError(ctx, err)
		}
		ctx.SetHeader("Content-Type", "text/html; charset=utf-8")
		return ctx.Send([]byte(html))
	}))
}

func registerWebSocket[T any](r router.Router[T], hook *dashboard.BroadcastHook, path string) {
	r.WebSocket(path, router.DefaultWebSocketConfig(), streamRefreshEvents(hook))
}

// streamRefreshEvents pushes feed events to the socket, limited to the feeds
// named in ?feed= when present.
func streamRefreshEvents(hook *dashboard.BroadcastHook) func(router.WebSocketContext) error {
	return func(ws router.WebSocketContext) error {
		events, cancel := hook.Subscribe(dashboard.ParseFeedFilter(ws.Query(dashboard.FeedFilterParam))...)
		defer cancel()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := ws.WriteJSON(event); err != nil {
					return err
				}
			case <-ws.Context().Done():
				return ws.Close()
			}
		}
	}
}

func serveFeed(ctx router.Context, api httpapi.Executor, resolver ViewerResolver, input queries.FeedInput) error {
	viewer, err := resolver(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	input.Viewer = viewer
	data, err := api.Feed(ctx.Context(), input)
	if err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, data)
}

func runAction(ctx router.Context, api httpapi.Executor, resolver ViewerResolver, req dashboard.ActionRequest) error {
	viewer, err := resolver(ctx)
	if err != nil {
		return respondError(ctx, err)
	}
	var result dashboard.ActionResult
	if err := api.RunAction(ctx.Context(), commands.RunActionInput{
		Viewer:  viewer,
		Request: req,
		Result:  &result,
	}); err != nil {
		return respondError(ctx, err)
	}
	return ctx.JSON(http.StatusOK, result)
}

// BearerViewerResolver resolves the Authorization bearer token through the
// session query. Requests without a token get the anonymous viewer.
func BearerViewerResolver(api httpapi.Executor) ViewerResolver {
	return func(ctx router.Context) (dashboard.ViewerContext, error) {
		if viewer, ok := ctx.Locals("viewer").(dashboard.ViewerContext); ok {
			return viewer, nil
		}
		token := bearer(ctx)
		if token == "" {
			return dashboard.ViewerContext{}, nil
		}
		session, err := api.Session(ctx.Context(), queries.SessionInput{Token: token})
		if err != nil {
			return dashboard.ViewerContext{}, err
		}
		viewer := session.Viewer()
		ctx.Locals("viewer", viewer)
		return viewer, nil
	}
}

func bearer(ctx router.Context) string {
	return httpapi.BearerToken(ctx.Header("Authorization"))
}

func paramsFor(ctx router.Context, feeds []dashboard.FeedDefinition, code string) map[string]string {
	for _, def := range feeds {
		if def.Code == code {
			return queryParams(ctx, def.Params)
		}
	}
	return nil
}

func queryParams(ctx router.Context, names []string) map[string]string {
	if len(names) == 0 {
		return nil
	}
	out := make(map[string]string, len(names))
	for _, name := range names {
		if v := strings.TrimSpace(ctx.Query(name)); v != "" {
			out[name] = v
		}
	}
	return out
}

func decodeBody(ctx router.Context, target any) error {
	body := ctx.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.Join(dashboard.ErrValidation, err)
	}
	return nil
}

func respondError(ctx router.Context, err error) error {
	return ctx.JSON(httpapi.StatusFor(err), httpapi.NewErrorBody(err))
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.HTML == "" {
		routes.HTML = "/dashboard"
	}
	if routes.Feeds == "" {
		routes.Feeds = "/feeds"
	}
	if routes.FeedByCode == "" {
		routes.FeedByCode = "/feeds/:code"
	}
	if routes.Action == "" {
		routes.Action = "/actions/:action"
	}
	if routes.Login == "" {
		routes.Login = "/auth/login"
	}
	if routes.Session == "" {
		routes.Session = "/auth/session"
	}
	if routes.Logout == "" {
		routes.Logout = "/auth/logout"
	}
	if routes.Chat == "" {
		routes.Chat = "/chat"
	}
	if routes.Navigation == "" {
		routes.Navigation = "/navigation"
	}
	if routes.Refresh == "" {
		routes.Refresh = "/refresh"
	}
	if routes.Chart == "" {
		routes.Chart = "/charts/:code"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = "/ws"
	}
	return routes
}
