package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
)

// ActionRoute binds a REST route to a simulated action. Path uses ":id" for
// the target segment.
type ActionRoute struct {
	Method string
	Path   string
	Action string
}

// DefaultActionRoutes lists the action endpoints served under the API base.
func DefaultActionRoutes() []ActionRoute {
	return []ActionRoute{
		{Method: http.MethodPost, Path: "/services/:id/restart", Action: dashboard.ActionRestartService},
		{Method: http.MethodPost, Path: "/services/:id/scale", Action: dashboard.ActionScaleService},
		{Method: http.MethodPost, Path: "/optimizations/:id/apply", Action: dashboard.ActionApplyOptimization},
		{Method: http.MethodPost, Path: "/alerts/:id/acknowledge", Action: dashboard.ActionAcknowledgeAlert},
		{Method: http.MethodPost, Path: "/alerts/:id/resolve", Action: dashboard.ActionResolveAlert},
		{Method: http.MethodPost, Path: "/tasks", Action: dashboard.ActionCreateTask},
		{Method: http.MethodPost, Path: "/tasks/:id/status", Action: dashboard.ActionUpdateTask},
	}
}

// ActionRequestFor decodes an action route body into a request.
func ActionRequestFor(route ActionRoute, target string, body []byte) (dashboard.ActionRequest, error) {
	req := dashboard.ActionRequest{Action: route.Action, Target: target}
	if len(strings.TrimSpace(string(body))) == 0 {
		return req, nil
	}
	payload := map[string]any{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return req, fmt.Errorf("%w: decode payload: %v", dashboard.ErrValidation, err)
	}
	req.Payload = payload
	return req, nil
}

// GenericActionRequest decodes the body of POST /actions/:action, which
// carries {"target": ..., "payload": {...}}.
func GenericActionRequest(action string, body []byte) (dashboard.ActionRequest, error) {
	var req dashboard.ActionRequest
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return req, fmt.Errorf("%w: decode action: %v", dashboard.ErrValidation, err)
		}
	}
	req.Action = action
	return req, nil
}

// StatusFor maps service errors onto HTTP status codes.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, dashboard.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, dashboard.ErrInvalidCredentials),
		errors.Is(err, dashboard.ErrUnauthorized),
		errors.Is(err, dashboard.ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, dashboard.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, dashboard.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error  string                 `json:"error"`
	Fields []dashboard.FieldError `json:"fields,omitempty"`
}

// NewErrorBody builds the response body for err, listing payload fields when
// the error carries them.
func NewErrorBody(err error) ErrorBody {
	body := ErrorBody{Error: err.Error()}
	var perr *dashboard.PayloadError
	if errors.As(err, &perr) {
		body.Fields = perr.Fields
	}
	return body
}

// QueryParams flattens URL query values, keeping the first value per key.
func QueryParams(values map[string][]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
