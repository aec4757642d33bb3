package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
	"github.com/organizeit/go-organizeit/components/dashboard/commands"
	"github.com/organizeit/go-organizeit/components/dashboard/queries"
)

type stubCommander[T any] struct {
	last  T
	calls int
	err   error
}

func (s *stubCommander[T]) Execute(ctx context.Context, msg T) error {
	s.last = msg
	s.calls++
	return s.err
}

func newTestServer(t *testing.T, opts dashboard.Options) *httptest.Server {
	t.Helper()
	if opts.Jitter == nil {
		opts.Jitter = dashboard.NewJitter(7)
	}
	service := dashboard.NewService(opts)
	handlers := &Handlers{API: NewCommandExecutor(service, nil)}
	server := httptest.NewServer(http.StripPrefix("/api", handlers.Mux()))
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestLoginSessionLogoutRoundTrip(t *testing.T) {
	server := newTestServer(t, dashboard.Options{})

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/auth/login", "", map[string]string{
		"email": "admin@organizeit.com", "password": "admin123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	user := body["user"].(map[string]any)
	assert.Equal(t, "admin", user["role"])
	assert.Equal(t, "/admin", user["home"])

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/auth/session", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, token, body["token"])

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/auth/session", token, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	server := newTestServer(t, dashboard.Options{})
	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/auth/login", "", map[string]string{
		"email": "demo@organizeit.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body["error"], "invalid credentials")
}

func TestFeedRoutesServeDefinitionPaths(t *testing.T) {
	server := newTestServer(t, dashboard.Options{})

	resp, body := doJSON(t, http.MethodGet, server.URL+"/api/services", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["items"], 8)

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/feeds/itops.overview", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "health_score")

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/feeds", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, len(dashboard.DefaultFeedDefinitions()), body["total"])

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/metrics?hours=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/metrics?hours=500", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAcknowledgeAlertChangesFeed(t *testing.T) {
	server := newTestServer(t, dashboard.Options{})

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/alerts/alert-001/acknowledge", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Alert acknowledged", body["message"])

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/alerts", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	found := false
	for _, raw := range body["items"].([]any) {
		alert := raw.(map[string]any)
		if alert["id"] == "alert-001" {
			found = true
			assert.Equal(t, "acknowledged", alert["status"])
		}
	}
	assert.True(t, found)
}

func TestActionErrorsMapToStatus(t *testing.T) {
	server := newTestServer(t, dashboard.Options{})

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/services/svc-missing/restart", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/services/svc-auth/scale", "", map[string]any{"replicas": 99})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	fields, _ := body["fields"].([]any)
	require.Len(t, fields, 1)
	assert.Equal(t, "replicas", fields[0].(map[string]any)["field"])

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/actions/service.explode", "", map[string]any{"target": "svc-auth"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = doJSON(t, http.MethodPost, server.URL+"/api/actions/service.scale", "", map[string]any{
		"target": "svc-auth", "payload": map[string]any{"replicas": 4},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	record := body["record"].(map[string]any)
	assert.Equal(t, "svc-auth", record["target"])
}

func TestRequireAuthRejectsAnonymousAndForbidsUsers(t *testing.T) {
	server := newTestServer(t, dashboard.Options{RequireAuth: true})

	resp, _ := doJSON(t, http.MethodGet, server.URL+"/api/services", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, body := doJSON(t, http.MethodPost, server.URL+"/api/auth/login", "", map[string]string{
		"email": "demo@organizeit.com", "password": "demo123",
	})
	token := body["token"].(string)

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/services", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/users", token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, server.URL+"/api/services", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestChatAndNavigation(t *testing.T) {
	server := newTestServer(t, dashboard.Options{})

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/chat", "", map[string]string{"message": "Any critical ALERTS?"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alerts", body["topic"])

	resp, _ = doJSON(t, http.MethodPost, server.URL+"/api/chat", "", map[string]string{"message": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, server.URL+"/api/navigation", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["items"])
}

func TestHandleRefreshUsesCommander(t *testing.T) {
	refresh := &stubCommander[commands.RefreshFeedInput]{}
	handlers := &Handlers{API: &CommandExecutor{RefreshCommander: refresh}}
	buf, _ := json.Marshal(dashboard.FeedEvent{FeedCode: dashboard.FeedAlerts})
	req := httptest.NewRequest(http.MethodPost, "/refresh", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	handlers.HandleRefresh(rec, req)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, refresh.calls)
	assert.Equal(t, dashboard.FeedAlerts, refresh.last.Event.FeedCode)

	req = httptest.NewRequest(http.MethodPost, "/refresh", bytes.NewReader([]byte(`{}`)))
	rec = httptest.NewRecorder()
	handlers.HandleRefresh(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommandExecutorReportsMissingCommanders(t *testing.T) {
	exec := &CommandExecutor{}
	err := exec.RunAction(context.Background(), commands.RunActionInput{})
	assert.ErrorIs(t, err, errNotConfigured)
	_, err = exec.Feed(context.Background(), queries.FeedInput{Code: dashboard.FeedAlerts})
	assert.ErrorIs(t, err, errNotConfigured)
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		dashboard.ErrValidation:                          http.StatusBadRequest,
		dashboard.ErrInvalidCredentials:                  http.StatusUnauthorized,
		dashboard.ErrUnauthorized:                        http.StatusUnauthorized,
		dashboard.ErrSessionExpired:                      http.StatusUnauthorized,
		dashboard.ErrForbidden:                           http.StatusForbidden,
		dashboard.ErrNotFound:                            http.StatusNotFound,
		errors.New("boom"):                               http.StatusInternalServerError,
		fmt.Errorf("wrapped: %w", dashboard.ErrNotFound): http.StatusNotFound,
	}
	assert.Equal(t, http.StatusOK, StatusFor(nil))
	for err, want := range cases {
		assert.Equal(t, want, StatusFor(err), "error %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "abc", BearerToken("bearer  abc "))
	assert.Equal(t, "", BearerToken("Basic abc"))
	assert.Equal(t, "", BearerToken(""))
}

func TestMuxPattern(t *testing.T) {
	assert.Equal(t, "/services/{id}/restart", muxPattern("/services/:id/restart"))
	assert.Equal(t, "/tasks", muxPattern("/tasks"))
}

func TestServeSSEStreamsRefreshEvents(t *testing.T) {
	hook := dashboard.NewBroadcastHook()
	handlers := &Handlers{API: &CommandExecutor{}, Broadcast: hook}
	server := httptest.NewServer(handlers.Mux())
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return hook.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, hook.FeedUpdated(ctx, dashboard.FeedEvent{FeedCode: dashboard.FeedAlerts, Reason: "action"}))

	reader := bufio.NewReader(resp.Body)
	var frame []string
	for {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSuffix(line, "\n")
		if line == "" {
			break
		}
		frame = append(frame, line)
	}
	require.Len(t, frame, 3)
	assert.True(t, strings.HasPrefix(frame[0], "id: "))
	assert.Equal(t, "event: itops.alerts", frame[1])
	assert.True(t, strings.HasPrefix(frame[2], "data: "))
	assert.Contains(t, frame[2], `"feed_code":"itops.alerts"`)
}
