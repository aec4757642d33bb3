package dashboard

import "context"

// NotificationsClient receives feed events for delivery outside the process
// (log streams, chat ops, toasts on connected clients).
type NotificationsClient interface {
	PublishFeedEvent(ctx context.Context, event FeedEvent) error
}

// NotificationsHook forwards feed events to an external notifications client.
type NotificationsHook struct {
	Client NotificationsClient
	// Feeds limits forwarding to these codes. Empty forwards everything.
	Feeds []string
}

// FeedUpdated publishes events to the configured notifications client.
func (h *NotificationsHook) FeedUpdated(ctx context.Context, event FeedEvent) error {
	if h == nil || h.Client == nil {
		return nil
	}
	if len(h.Feeds) > 0 && !containsString(h.Feeds, event.FeedCode) {
		return nil
	}
	return h.Client.PublishFeedEvent(ctx, event)
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
