package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
)

// Feed fetches a feed by code with optional query params.
func (c *Client) Feed(ctx context.Context, code string, params map[string]string) (dashboard.FeedData, error) {
	var data dashboard.FeedData
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/feeds/" + url.PathEscape(code) + encodeQuery(params)}, &data)
	return data, err
}

// Feeds lists the feed definitions visible to the current session.
func (c *Client) Feeds(ctx context.Context) ([]dashboard.FeedDefinition, error) {
	var resp struct {
		Items []dashboard.FeedDefinition `json:"items"`
	}
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/feeds"}, &resp)
	return resp.Items, err
}

// RunAction triggers a simulated action.
func (c *Client) RunAction(ctx context.Context, req dashboard.ActionRequest) (dashboard.ActionResult, error) {
	var result dashboard.ActionResult
	body := map[string]any{"target": req.Target}
	if req.Payload != nil {
		body["payload"] = req.Payload
	}
	err := c.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/actions/" + url.PathEscape(req.Action),
		Body:   body,
	}, &result)
	return result, err
}

// Login exchanges credentials for a session and keeps its token.
func (c *Client) Login(ctx context.Context, email, password string) (dashboard.Session, error) {
	var session dashboard.Session
	err := c.Do(ctx, Request{
		Method:         http.MethodPost,
		Path:           "/auth/login",
		Body:           map[string]string{"email": email, "password": password},
		SuccessMessage: "Signed in",
	}, &session)
	if err != nil {
		return dashboard.Session{}, err
	}
	c.SetToken(session.Token)
	return session, nil
}

// Session returns the session behind the current token.
func (c *Client) Session(ctx context.Context) (dashboard.Session, error) {
	var session dashboard.Session
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/auth/session"}, &session)
	return session, err
}

// Logout discards the current session and forgets its token.
func (c *Client) Logout(ctx context.Context) error {
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/auth/logout", SuccessMessage: "Signed out"}, nil)
	if err == nil {
		c.SetToken("")
	}
	return err
}

// Chat sends a message to the assistant.
func (c *Client) Chat(ctx context.Context, message string) (dashboard.ChatReply, error) {
	var reply dashboard.ChatReply
	err := c.Do(ctx, Request{Method: http.MethodPost, Path: "/chat", Body: map[string]string{"message": message}}, &reply)
	return reply, err
}

// Navigation returns the pages available to the current session.
func (c *Client) Navigation(ctx context.Context) ([]dashboard.NavItem, error) {
	var resp struct {
		Items []dashboard.NavItem `json:"items"`
	}
	err := c.Do(ctx, Request{Method: http.MethodGet, Path: "/navigation"}, &resp)
	return resp.Items, err
}

func encodeQuery(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		if strings.TrimSpace(k) != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	values := url.Values{}
	for _, k := range keys {
		values.Set(k, params[k])
	}
	return "?" + values.Encode()
}
