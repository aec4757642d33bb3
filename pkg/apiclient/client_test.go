package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
	"github.com/organizeit/go-organizeit/components/dashboard/httpapi"
)

func newBackend(t *testing.T) string {
	t.Helper()
	service := dashboard.NewService(dashboard.Options{Jitter: dashboard.NewJitter(11)})
	handlers := &httpapi.Handlers{API: httpapi.NewCommandExecutor(service, nil)}
	server := httptest.NewServer(http.StripPrefix("/api", handlers.Mux()))
	t.Cleanup(server.Close)
	t.Cleanup(server.CloseClientConnections)
	return server.URL + "/api"
}

func newTestClient(t *testing.T, baseURL string, notifier Notifier) *Client {
	t.Helper()
	client, err := NewClient(Config{BaseURL: baseURL, Notifier: notifier})
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "  "})
	assert.Error(t, err)
}

func TestClientSendsHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL + "/", APIKey: "anon-key"})
	require.NoError(t, err)
	require.NoError(t, client.Do(context.Background(), Request{Path: "feeds"}, nil))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "Bearer anon-key", got.Get("Authorization"))

	client.SetToken(" session-token ")
	require.NoError(t, client.Do(context.Background(), Request{Path: "/feeds"}, nil))
	assert.Equal(t, "Bearer session-token", got.Get("Authorization"))
}

func TestClientErrorMessages(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"error field", http.StatusNotFound, `{"error":"feed missing"}`, "feed missing"},
		{"message field", http.StatusBadRequest, `{"message":"bad input"}`, "bad input"},
		{"raw text", http.StatusBadGateway, "upstream down", "upstream down"},
		{"status text", http.StatusServiceUnavailable, "", "Service Unavailable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(server.Close)
			notifier := &RecordingNotifier{}
			client := newTestClient(t, server.URL, notifier)

			err := client.Do(context.Background(), Request{Method: http.MethodPost, Path: "/x", SuccessMessage: "done"}, nil)
			require.Error(t, err)
			assert.Equal(t, tc.status, StatusCode(err))
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.want, apiErr.Message)
			assert.Equal(t, []Toast{{Kind: ToastError, Message: tc.want}}, notifier.Toasts())
		})
	}
}

func TestClientNetworkFailureNotifies(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	notifier := &RecordingNotifier{}
	client := newTestClient(t, url, notifier)
	err := client.Do(context.Background(), Request{Path: "/feeds"}, nil)
	require.Error(t, err)
	assert.Equal(t, 0, StatusCode(err))
	require.Len(t, notifier.Toasts(), 1)
	assert.Equal(t, ToastError, notifier.Toasts()[0].Kind)
}

func TestClientSuccessToastsOnlyForMutations(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"message": "Alert acknowledged"})
	}))
	t.Cleanup(server.Close)
	notifier := &RecordingNotifier{}
	client := newTestClient(t, server.URL, notifier)

	require.NoError(t, client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/alerts"}, nil))
	assert.Empty(t, notifier.Toasts())

	require.NoError(t, client.Do(context.Background(), Request{Method: http.MethodPost, Path: "/alerts/alert-001/acknowledge"}, nil))
	require.NoError(t, client.Do(context.Background(), Request{Method: http.MethodDelete, Path: "/tasks/1", SuccessMessage: "Task removed"}, nil))
	assert.Equal(t, []Toast{
		{Kind: ToastSuccess, Message: "Alert acknowledged"},
		{Kind: ToastSuccess, Message: "Task removed"},
	}, notifier.Toasts())
}

func TestClientRateLimitHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	t.Cleanup(server.Close)
	client, err := NewClient(Config{BaseURL: server.URL, RequestsPerSecond: 0.01})
	require.NoError(t, err)

	require.NoError(t, client.Do(context.Background(), Request{Path: "/a"}, nil))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorContains(t, client.Do(ctx, Request{Path: "/b"}, nil), "rate limit")
}

func TestClientAgainstBackend(t *testing.T) {
	ctx := context.Background()
	notifier := &RecordingNotifier{}
	client := newTestClient(t, newBackend(t), notifier)

	services, err := client.Feed(ctx, dashboard.FeedServices, nil)
	require.NoError(t, err)
	assert.Len(t, services["items"], 8)

	metrics, err := client.Feed(ctx, dashboard.FeedMetrics, map[string]string{"hours": "6"})
	require.NoError(t, err)
	series := metrics["series"].(map[string]any)
	assert.Len(t, series["labels"], 6)

	defs, err := client.Feeds(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, defs)

	_, err = client.Login(ctx, "demo@organizeit.com", "wrong")
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))

	session, err := client.Login(ctx, "admin@organizeit.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, session.Token, client.Token())
	assert.Equal(t, "/admin", session.User.Home)

	current, err := client.Session(ctx)
	require.NoError(t, err)
	assert.Equal(t, "user-admin", current.User.ID)

	result, err := client.RunAction(ctx, dashboard.ActionRequest{Action: dashboard.ActionAcknowledgeAlert, Target: "alert-001"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "admin@organizeit.com", result.Record.Actor)

	reply, err := client.Chat(ctx, "how are costs trending?")
	require.NoError(t, err)
	assert.NotEmpty(t, reply.Reply)

	nav, err := client.Navigation(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, nav)

	require.NoError(t, client.Logout(ctx))
	assert.Empty(t, client.Token())

	kinds := map[string]int{}
	for _, toast := range notifier.Toasts() {
		kinds[toast.Kind]++
	}
	assert.Equal(t, 1, kinds[ToastError])
	assert.Equal(t, 3, kinds[ToastSuccess])
}

func TestEncodeQuery(t *testing.T) {
	assert.Equal(t, "", encodeQuery(nil))
	assert.Equal(t, "?hours=6&status=open", encodeQuery(map[string]string{"status": "open", "hours": "6", " ": "x"}))
}
