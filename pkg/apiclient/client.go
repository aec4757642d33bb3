package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds each HTTP request when no client is supplied.
const DefaultTimeout = 10 * time.Second

// Config configures the API client.
type Config struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Notifier   Notifier
	// RequestsPerSecond enables client-side rate limiting when positive.
	RequestsPerSecond float64
	Logger            *zap.Logger
}

// Client calls the OrganizeIT backend. Failures are reported to the Notifier
// and returned; nothing is retried.
type Client struct {
	baseURL  string
	apiKey   string
	client   *http.Client
	notifier Notifier
	limiter  *rate.Limiter
	logger   *zap.Logger

	mu    sync.RWMutex
	token string
}

// NewClient builds a client for the backend at cfg.BaseURL.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("apiclient: base url is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = NopNotifier{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL:  base,
		apiKey:   cfg.APIKey,
		client:   httpClient,
		notifier: notifier,
		logger:   logger,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c, nil
}

// SetToken sets the session token sent as the bearer credential.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = strings.TrimSpace(token)
}

// Token returns the current session token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) bearer() string {
	if token := c.Token(); token != "" {
		return token
	}
	return c.apiKey
}

// Request describes one backend call.
type Request struct {
	Method string
	Path   string
	Body   any
	// SuccessMessage is shown after a successful mutating call. When empty the
	// response "message" field is used.
	SuccessMessage string
}

// APIError is returned for non-2xx responses.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("apiclient: %s %s: %d %s", e.Method, e.Path, e.Status, e.Message)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Do performs the request and decodes a successful body into target when
// target is not nil.
func (c *Client) Do(ctx context.Context, req Request, target any) error {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	if !strings.HasPrefix(req.Path, "/") {
		req.Path = "/" + req.Path
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return c.fail(ctx, fmt.Errorf("apiclient: rate limit: %w", err))
		}
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return c.fail(ctx, fmt.Errorf("apiclient: encode payload: %w", err))
		}
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, body)
	if err != nil {
		return c.fail(ctx, fmt.Errorf("apiclient: build request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if bearer := c.bearer(); bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+bearer)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return c.fail(ctx, fmt.Errorf("apiclient: %s %s: %w", req.Method, req.Path, err))
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.fail(ctx, fmt.Errorf("apiclient: read response: %w", err))
	}
	c.logger.Debug("api request",
		zap.String("method", req.Method),
		zap.String("path", req.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.fail(ctx, &APIError{
			Method:  req.Method,
			Path:    req.Path,
			Status:  resp.StatusCode,
			Message: errorMessage(resp.StatusCode, raw),
		})
	}
	if target != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, target); err != nil {
			return c.fail(ctx, fmt.Errorf("apiclient: decode response: %w", err))
		}
	}
	if mutating(req.Method) {
		msg := req.SuccessMessage
		if msg == "" {
			msg = jsonField(raw, "message")
		}
		if msg != "" {
			c.notifier.Success(ctx, msg)
		}
	}
	return nil
}

func (c *Client) fail(ctx context.Context, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		c.notifier.Error(ctx, apiErr.Message)
	} else {
		c.notifier.Error(ctx, err.Error())
	}
	return err
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// errorMessage prefers the JSON error or message field, then the raw body,
// then the status text.
func errorMessage(status int, raw []byte) string {
	if msg := jsonField(raw, "error"); msg != "" {
		return msg
	}
	if msg := jsonField(raw, "message"); msg != "" {
		return msg
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return http.StatusText(status)
}

func jsonField(raw []byte, key string) string {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ""
	}
	if v, ok := fields[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
