package gorouter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	router "github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
	"github.com/organizeit/go-organizeit/components/dashboard/httpapi"
)

func TestRegisterValidatesConfig(t *testing.T) {
	err := Register(Config[struct{}]{})
	require.Error(t, err)

	err = Register(Config[struct{}]{Router: newMockRouter()})
	require.Error(t, err)
}

func TestRegisterMountsBaseAndAlias(t *testing.T) {
	mock := newMockRouter()
	service := newService()
	require.NoError(t, Register(Config[struct{}]{
		Router:    mock,
		API:       httpapi.NewCommandExecutor(service, nil),
		Charts:    service,
		Broadcast: dashboard.NewBroadcastHook(),
	}))

	for _, prefix := range []string{"/api", DefaultAliasPrefix} {
		for _, key := range []string{
			"GET:" + prefix + "/feeds",
			"GET:" + prefix + "/feeds/:code",
			"GET:" + prefix + "/services",
			"GET:" + prefix + "/audit-logs",
			"POST:" + prefix + "/services/:id/restart",
			"POST:" + prefix + "/tasks",
			"POST:" + prefix + "/actions/:action",
			"POST:" + prefix + "/auth/login",
			"GET:" + prefix + "/auth/session",
			"POST:" + prefix + "/chat",
			"GET:" + prefix + "/charts/:code",
		} {
			assert.Contains(t, mock.routes, key)
		}
		assert.Contains(t, mock.ws, prefix+"/ws")
	}
	assert.NotContains(t, mock.routes, "GET:/dashboard", "html route needs a controller")
}

func TestAliasPrefixesCanBeDisabled(t *testing.T) {
	mock := newMockRouter()
	require.NoError(t, Register(Config[struct{}]{
		Router:        mock,
		API:           httpapi.NewCommandExecutor(newService(), nil),
		AliasPrefixes: []string{},
	}))
	assert.Contains(t, mock.routes, "GET:/api/services")
	assert.NotContains(t, mock.routes, "GET:"+DefaultAliasPrefix+"/services")
}

func TestFeedRouteReadsDeclaredParams(t *testing.T) {
	mock := newMockRouter()
	require.NoError(t, Register(Config[struct{}]{
		Router: mock,
		API:    httpapi.NewCommandExecutor(newService(), nil),
	}))

	ctx := newMockContext()
	ctx.query["hours"] = "6"
	require.NoError(t, mock.routes["GET:/api/metrics"](ctx))
	assert.Equal(t, http.StatusOK, ctx.status)
	var body map[string]any
	require.NoError(t, json.Unmarshal(ctx.body, &body))
	assert.EqualValues(t, 6, body["hours"])

	ctx = newMockContext()
	ctx.query["hours"] = "abc"
	require.NoError(t, mock.routes["GET:/api/metrics"](ctx))
	assert.Equal(t, http.StatusBadRequest, ctx.status)
}

func TestActionRouteRecordsAction(t *testing.T) {
	mock := newMockRouter()
	service := newService()
	require.NoError(t, Register(Config[struct{}]{
		Router: mock,
		API:    httpapi.NewCommandExecutor(service, nil),
	}))

	ctx := newMockContext()
	ctx.params["id"] = "opt-002"
	require.NoError(t, mock.routes["POST:/api/optimizations/:id/apply"](ctx))
	require.Equal(t, http.StatusOK, ctx.status)

	rec, ok := service.Actions().Latest(context.Background(), dashboard.ActionApplyOptimization, "opt-002")
	require.True(t, ok)
	assert.Equal(t, dashboard.ActionStatusCompleted, rec.Status)

	ctx = newMockContext()
	ctx.params["id"] = "opt-999"
	require.NoError(t, mock.routes["POST:/api/optimizations/:id/apply"](ctx))
	assert.Equal(t, http.StatusNotFound, ctx.status)
}

func TestBearerViewerResolver(t *testing.T) {
	mock := newMockRouter()
	service := newService(dashboard.Options{RequireAuth: true})
	api := httpapi.NewCommandExecutor(service, nil)
	require.NoError(t, Register(Config[struct{}]{Router: mock, API: api}))

	login := newMockContext()
	login.requestBody = []byte(`{"email":"admin@organizeit.com","password":"admin123"}`)
	require.NoError(t, mock.routes["POST:/api/auth/login"](login))
	require.Equal(t, http.StatusOK, login.status)
	var session dashboard.Session
	require.NoError(t, json.Unmarshal(login.body, &session))

	ctx := newMockContext()
	require.NoError(t, mock.routes["GET:/api/users"](ctx))
	assert.Equal(t, http.StatusUnauthorized, ctx.status)

	ctx = newMockContext()
	ctx.headers["Authorization"] = "Bearer " + session.Token
	require.NoError(t, mock.routes["GET:/api/users"](ctx))
	assert.Equal(t, http.StatusOK, ctx.status)

	viewer, err := BearerViewerResolver(api)(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-admin", viewer.UserID)
}

func TestRegisterHTMLRoute(t *testing.T) {
	mock := newMockRouter()
	renderer := &stubRenderer{}
	service := newService()
	controller := dashboard.NewController(dashboard.ControllerOptions{
		Service:  service,
		Renderer: renderer,
	})
	require.NoError(t, Register(Config[struct{}]{
		Router:     mock,
		API:        httpapi.NewCommandExecutor(service, nil),
		Controller: controller,
	}))

	h, ok := mock.routes["GET:/dashboard"]
	require.True(t, ok)
	ctx := newMockContext()
	require.NoError(t, h(ctx))
	assert.NotEmpty(t, ctx.body)
	assert.Equal(t, 1, renderer.calls)
	assert.Equal(t, "text/html; charset=utf-8", ctx.respHeaders["Content-Type"])
}

type recordingCharts struct {
	code   string
	params map[string]string
}

func (c *recordingCharts) Chart(_ context.Context, _ dashboard.ViewerContext, code string, params map[string]string) (string, error) {
	c.code, c.params = code, params
	return "<div>chart</div>", nil
}

func TestChartRouteForwardsDeclaredParams(t *testing.T) {
	mock := newMockRouter()
	charts := &recordingCharts{}
	require.NoError(t, Register(Config[struct{}]{
		Router: mock,
		API:    httpapi.NewCommandExecutor(newService(), nil),
		Charts: charts,
	}))

	ctx := newMockContext()
	ctx.params["code"] = dashboard.FeedMetrics
	ctx.query["hours"] = "12"
	ctx.query["ignored"] = "x"
	require.NoError(t, mock.routes["GET:/api/charts/:code"](ctx))

	assert.Equal(t, dashboard.FeedMetrics, charts.code)
	assert.Equal(t, map[string]string{"hours": "12"}, charts.params)
	assert.Equal(t, "<div>chart</div>", string(ctx.body))
}

func TestWebSocketRouteHonorsFeedFilter(t *testing.T) {
	mock := newMockRouter()
	hook := dashboard.NewBroadcastHook()
	require.NoError(t, Register(Config[struct{}]{
		Router:    mock,
		API:       httpapi.NewCommandExecutor(newService(), nil),
		Broadcast: hook,
	}))
	handler, ok := mock.ws["/api/ws"]
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ws := &mockWebSocket{
		ctx:   ctx,
		query: map[string]string{dashboard.FeedFilterParam: dashboard.FeedAlerts},
		sent:  make(chan dashboard.FeedEvent, 4),
	}
	done := make(chan error, 1)
	go func() { done <- handler(ws) }()

	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, hook.FeedUpdated(ctx, dashboard.FeedEvent{FeedCode: dashboard.FeedCosts}))
	require.NoError(t, hook.FeedUpdated(ctx, dashboard.FeedEvent{FeedCode: dashboard.FeedAlerts}))

	select {
	case evt := <-ws.sent:
		assert.Equal(t, dashboard.FeedAlerts, evt.FeedCode)
	case <-time.After(time.Second):
		t.Fatal("alerts event not delivered")
	}
	cancel()
	require.NoError(t, <-done)
	assert.Empty(t, ws.sent)
	assert.True(t, ws.closed)
}

func newService(opts ...dashboard.Options) *dashboard.Service {
	var o dashboard.Options
	if len(opts) > 0 {
		o = opts[0]
	}
	o.Jitter = dashboard.NewJitter(3)
	return dashboard.NewService(o)
}

// --- Test helpers ---

// mockRouter embeds the interface so unused methods are satisfied; calling one
// of them panics.
type mockRouter struct {
	router.Router[struct{}]
	prefix string
	routes map[string]router.HandlerFunc
	ws     map[string]func(router.WebSocketContext) error
}

func newMockRouter() *mockRouter {
	return &mockRouter{
		routes: map[string]router.HandlerFunc{},
		ws:     map[string]func(router.WebSocketContext) error{},
	}
}

func (m *mockRouter) Group(prefix string) router.Router[struct{}] {
	return &mockRouter{
		prefix: m.prefix + prefix,
		routes: m.routes,
		ws:     m.ws,
	}
}

func (m *mockRouter) record(method, path string, handler router.HandlerFunc) {
	full := m.prefix + path
	m.routes[method+":"+full] = handler
}

func (m *mockRouter) Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.GET), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.POST), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) Delete(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo {
	m.record(string(router.DELETE), path, handler)
	return mockRouteInfo{}
}

func (m *mockRouter) WebSocket(path string, cfg router.WebSocketConfig, handler func(router.WebSocketContext) error) router.RouteInfo {
	full := m.prefix + path
	m.ws[full] = handler
	return mockRouteInfo{}
}

type mockRouteInfo struct {
	router.RouteInfo
}

func (mockRouteInfo) SetName(string) router.RouteInfo { return mockRouteInfo{} }

// routerContext names the embedded router.Context so it does not clash with
// the Context() method below.
type routerContext = router.Context

type mockContext struct {
	routerContext
	ctx         context.Context
	headers     map[string]string
	respHeaders map[string]string
	query       map[string]string
	requestBody []byte
	body        []byte
	locals      map[any]any
	params      map[string]string
	status      int
}

func newMockContext() *mockContext {
	return &mockContext{
		ctx:         context.Background(),
		headers:     map[string]string{},
		respHeaders: map[string]string{},
		query:       map[string]string{},
		locals:      map[any]any{},
		params:      map[string]string{},
	}
}

func (m *mockContext) Context() context.Context {
	return m.ctx
}

func (m *mockContext) SetHeader(k, v string) router.Context {
	m.respHeaders[k] = v
	return m
}

func (m *mockContext) Header(k string) string {
	return m.headers[k]
}

func (m *mockContext) Query(name string, defaultValue ...string) string {
	if v, ok := m.query[name]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *mockContext) Send(b []byte) error {
	m.body = append([]byte{}, b...)
	return nil
}

func (m *mockContext) JSON(code int, v any) error {
	m.status = code
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.body = data
	return nil
}

func (m *mockContext) Body() []byte { return m.requestBody }

func (m *mockContext) Param(name string, defaultValue ...string) string {
	if v, ok := m.params[name]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *mockContext) Locals(key any, value ...any) any {
	if len(value) == 0 {
		return m.locals[key]
	}
	m.locals[key] = value[0]
	return value[0]
}

type stubRenderer struct {
	calls int
}

func (s *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	s.calls++
	if len(out) > 0 && out[0] != nil {
		out[0].Write([]byte("ok"))
	}
	return "ok", nil
}

// mockWebSocket implements only what the refresh stream calls.
type mockWebSocket struct {
	router.WebSocketContext
	ctx    context.Context
	query  map[string]string
	sent   chan dashboard.FeedEvent
	closed bool
}

func (m *mockWebSocket) Context() context.Context { return m.ctx }

func (m *mockWebSocket) Query(name string, defaultValue ...string) string {
	if v, ok := m.query[name]; ok {
		return v
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

func (m *mockWebSocket) WriteJSON(v any) error {
	m.sent <- v.(dashboard.FeedEvent)
	return nil
}

func (m *mockWebSocket) Close() error {
	m.closed = true
	return nil
}
