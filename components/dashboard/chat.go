package dashboard

import (
	"context"
	"fmt"
	"strings"
)

// ChatReply is the assistant answer for a chat message.
type ChatReply struct {
	Reply       string   `json:"reply"`
	Topic       string   `json:"topic"`
	Suggestions []string `json:"suggestions"`
}

// ChatTopic is one row of the keyword table.
type ChatTopic struct {
	Topic       string
	Keywords    []string
	Reply       string
	Suggestions []string
}

// Responder answers chat messages.
type Responder interface {
	Respond(ctx context.Context, message string) (ChatReply, error)
}

// KeywordResponder matches messages against an ordered topic table. The
// first topic with a keyword contained in the message wins.
type KeywordResponder struct {
	Topics   []ChatTopic
	Fallback ChatReply
}

// NewKeywordResponder builds a responder over the default topic table.
func NewKeywordResponder() *KeywordResponder {
	return &KeywordResponder{
		Topics:   DefaultChatTopics(),
		Fallback: defaultChatFallback,
	}
}

// Respond implements Responder.
func (r *KeywordResponder) Respond(_ context.Context, message string) (ChatReply, error) {
	text := strings.ToLower(strings.TrimSpace(message))
	if text == "" {
		return ChatReply{}, fmt.Errorf("%w: message is required", ErrValidation)
	}
	for _, topic := range r.Topics {
		for _, kw := range topic.Keywords {
			if strings.Contains(text, kw) {
				return ChatReply{
					Reply:       topic.Reply,
					Topic:       topic.Topic,
					Suggestions: append([]string(nil), topic.Suggestions...),
				}, nil
			}
		}
	}
	fallback := r.Fallback
	fallback.Suggestions = append([]string(nil), fallback.Suggestions...)
	return fallback, nil
}

var defaultChatFallback = ChatReply{
	Reply: "I can help with infrastructure health, cloud costs, sustainability metrics, " +
		"identity, audit trails and projects. Try asking about one of those.",
	Topic:       "help",
	Suggestions: []string{"Show active alerts", "How much are we spending?", "What is our carbon footprint?"},
}

// DefaultChatTopics returns the built-in keyword table in match order.
func DefaultChatTopics() []ChatTopic {
	return []ChatTopic{
		{
			Topic:       "alerts",
			Keywords:    []string{"alert", "incident", "outage", "down"},
			Reply:       "Open the IT Operations page to see active alerts. Critical alerts can be acknowledged or resolved from the alert list.",
			Suggestions: []string{"Which services are degraded?", "Acknowledge alerts"},
		},
		{
			Topic:       "performance",
			Keywords:    []string{"cpu", "memory", "performance", "latency", "slow", "uptime"},
			Reply:       "Infrastructure metrics refresh every 30 seconds. Services above 85% CPU are usually flagged as degraded; restarting or scaling them helps.",
			Suggestions: []string{"Restart a service", "Show the last 24 hours of metrics"},
		},
		{
			Topic:       "costs",
			Keywords:    []string{"cost", "spend", "budget", "bill", "finops", "saving"},
			Reply:       "The FinOps page breaks spend down by provider and shows open optimizations. Applying a recommendation lowers the reported monthly total.",
			Suggestions: []string{"Any cost optimizations?", "What is the forecast?"},
		},
		{
			Topic:       "esg",
			Keywords:    []string{"carbon", "esg", "emission", "energy", "sustainab", "renewable"},
			Reply:       "The ESG page tracks emissions, energy use, renewable share, water and waste recycling against a 12-month trend.",
			Suggestions: []string{"What is our ESG score?", "Show renewable energy share"},
		},
		{
			Topic:       "security",
			Keywords:    []string{"security", "mfa", "password", "login", "user", "identity", "access"},
			Reply:       "Identity management lists every account with MFA status and a risk score. Accounts above 70 are flagged as high risk.",
			Suggestions: []string{"Who has MFA disabled?", "Show audit logs"},
		},
		{
			Topic:       "audit",
			Keywords:    []string{"audit", "log", "compliance", "history"},
			Reply:       "Audit logs include every action taken in this session, newest first, followed by recent directory events.",
			Suggestions: []string{"Show failed logins", "Export audit logs"},
		},
		{
			Topic:       "projects",
			Keywords:    []string{"project", "task", "deadline", "milestone"},
			Reply:       "Projects show progress against budget. You can create tasks and move them between todo, in progress and done.",
			Suggestions: []string{"Create a task", "Which projects are at risk?"},
		},
		{
			Topic:       "greeting",
			Keywords:    []string{"hello", "hi there", "hey", "good morning"},
			Reply:       "Hi! I'm the OrganizeIT assistant. Ask me about services, costs, ESG or projects.",
			Suggestions: []string{"Show active alerts", "Any cost optimizations?"},
		},
	}
}
