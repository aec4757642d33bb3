package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
	"github.com/organizeit/go-organizeit/components/dashboard/commands"
	"github.com/organizeit/go-organizeit/components/dashboard/queries"
)

const maxBodyBytes = 1 << 20

// Handlers exposes the mock API over net/http, backed by an Executor.
type Handlers struct {
	API       Executor
	Broadcast *dashboard.BroadcastHook
}

// Mux returns a ServeMux with every endpoint mounted at the root. Use
// http.StripPrefix to serve it under /api.
func (h *Handlers) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /feeds", h.HandleFeeds)
	mux.HandleFunc("GET /feeds/{code}", h.HandleFeedByCode)
	for _, route := range DefaultActionRoutes() {
		mux.HandleFunc(route.Method+" "+muxPattern(route.Path), h.actionHandler(route))
	}
	mux.HandleFunc("POST /actions/{action}", h.HandleGenericAction)
	mux.HandleFunc("POST /auth/login", h.HandleLogin)
	mux.HandleFunc("GET /auth/session", h.HandleSession)
	mux.HandleFunc("POST /auth/logout", h.HandleLogout)
	mux.HandleFunc("POST /chat", h.HandleChat)
	mux.HandleFunc("GET /navigation", h.HandleNavigation)
	mux.HandleFunc("POST /refresh", h.HandleRefresh)
	if h.Broadcast != nil {
		mux.HandleFunc("GET /events", h.Broadcast.ServeSSE)
		mux.HandleFunc("GET /ws", h.Broadcast.ServeWebSocket)
	}
	mux.HandleFunc("GET /", h.HandleFeedByPath)
	return mux
}

func muxPattern(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if strings.HasPrefix(part, ":") {
			parts[i] = "{" + part[1:] + "}"
		}
	}
	return strings.Join(parts, "/")
}

// HandleFeeds lists the feed definitions visible to the caller.
func (h *Handlers) HandleFeeds(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	defs, err := h.API.Feeds(r.Context(), viewer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": defs, "total": len(defs)})
}

// HandleFeedByCode serves GET /feeds/{code}.
func (h *Handlers) HandleFeedByCode(w http.ResponseWriter, r *http.Request) {
	h.serveFeed(w, r, queries.FeedInput{Code: r.PathValue("code")})
}

// HandleFeedByPath serves the feed registered at the request path.
func (h *Handlers) HandleFeedByPath(w http.ResponseWriter, r *http.Request) {
	h.serveFeed(w, r, queries.FeedInput{Path: r.URL.Path})
}

func (h *Handlers) serveFeed(w http.ResponseWriter, r *http.Request, input queries.FeedInput) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	input.Viewer = viewer
	input.Params = QueryParams(r.URL.Query())
	data, err := h.API.Feed(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (h *Handlers) actionHandler(route ActionRoute) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(r)
		if err != nil {
			writeError(w, err)
			return
		}
		req, err := ActionRequestFor(route, r.PathValue("id"), body)
		if err != nil {
			writeError(w, err)
			return
		}
		h.runAction(w, r, req)
	}
}

// HandleGenericAction serves POST /actions/{action}.
func (h *Handlers) HandleGenericAction(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	req, err := GenericActionRequest(r.PathValue("action"), body)
	if err != nil {
		writeError(w, err)
		return
	}
	h.runAction(w, r, req)
}

func (h *Handlers) runAction(w http.ResponseWriter, r *http.Request, req dashboard.ActionRequest) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	var result dashboard.ActionResult
	if err := h.API.RunAction(r.Context(), commands.RunActionInput{
		Viewer:  viewer,
		Request: req,
		Result:  &result,
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleLogin exchanges demo credentials for a session.
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var input commands.LoginInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}
	var session dashboard.Session
	input.Result = &session
	if err := h.API.Login(r.Context(), input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// HandleSession returns the session behind the bearer token.
func (h *Handlers) HandleSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.API.Session(r.Context(), queries.SessionInput{
		Token: BearerToken(r.Header.Get("Authorization")),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// HandleLogout discards the bearer token's session.
func (h *Handlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.API.Logout(r.Context(), commands.LogoutInput{
		Token: BearerToken(r.Header.Get("Authorization")),
	}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// HandleChat answers a chat message.
func (h *Handlers) HandleChat(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	var input queries.ChatInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}
	input.Viewer = viewer
	reply, err := h.API.Chat(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// HandleNavigation lists the pages the caller may open.
func (h *Handlers) HandleNavigation(w http.ResponseWriter, r *http.Request) {
	viewer, ok := h.viewer(w, r)
	if !ok {
		return
	}
	items, err := h.API.Navigation(r.Context(), viewer)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// HandleRefresh emits a manual refresh event for a feed.
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	var event dashboard.FeedEvent
	if err := decodeJSON(r, &event); err != nil {
		writeError(w, err)
		return
	}
	if event.FeedCode == "" {
		writeError(w, errors.Join(dashboard.ErrValidation, errors.New("feed_code is required")))
		return
	}
	if err := h.API.Refresh(r.Context(), commands.RefreshFeedInput{Event: event}); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

// viewer resolves the bearer token. A bad token is answered with 401; a
// missing token yields the anonymous viewer.
func (h *Handlers) viewer(w http.ResponseWriter, r *http.Request) (dashboard.ViewerContext, bool) {
	token := BearerToken(r.Header.Get("Authorization"))
	if token == "" {
		return dashboard.ViewerContext{}, true
	}
	session, err := h.API.Session(r.Context(), queries.SessionInput{Token: token})
	if err != nil {
		writeError(w, err)
		return dashboard.ViewerContext{}, false
	}
	return session.Viewer(), true
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	return io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
}

func decodeJSON(r *http.Request, target any) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return errors.Join(dashboard.ErrValidation, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), NewErrorBody(err))
}
