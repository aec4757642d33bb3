package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

const subscriberBuffer = 16

// BroadcastHook fans feed events out to in-process subscribers. A subscriber
// whose buffer is full misses the event; publishers never block.
type BroadcastHook struct {
	mu      sync.RWMutex
	subs    map[int]*subscriber
	next    int
	seq     atomic.Uint64
	dropped atomic.Uint64
}

type subscriber struct {
	ch    chan FeedEvent
	feeds map[string]struct{}
}

func (s *subscriber) wants(code string) bool {
	if len(s.feeds) == 0 {
		return true
	}
	_, ok := s.feeds[code]
	return ok
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{subs: make(map[int]*subscriber)}
}

// FeedUpdated implements RefreshHook.
func (h *BroadcastHook) FeedUpdated(_ context.Context, event FeedEvent) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs {
		if !sub.wants(event.FeedCode) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

// Subscribe returns a channel of feed events and a cancel func. With feed
// codes given, only events for those feeds are delivered.
func (h *BroadcastHook) Subscribe(feeds ...string) (<-chan FeedEvent, func()) {
	sub := &subscriber{ch: make(chan FeedEvent, subscriberBuffer)}
	for _, code := range feeds {
		if code = strings.TrimSpace(code); code != "" {
			if sub.feeds == nil {
				sub.feeds = make(map[string]struct{})
			}
			sub.feeds[code] = struct{}{}
		}
	}
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = sub
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Subscribers reports the number of active subscriptions.
func (h *BroadcastHook) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped reports how many deliveries were skipped because a subscriber was
// behind.
func (h *BroadcastHook) Dropped() uint64 {
	return h.dropped.Load()
}

// MultiRefreshHook invokes every hook in order and stops at the first error.
type MultiRefreshHook []RefreshHook

// FeedUpdated implements RefreshHook.
func (m MultiRefreshHook) FeedUpdated(ctx context.Context, event FeedEvent) error {
	for _, hook := range m {
		if hook == nil {
			continue
		}
		if err := hook.FeedUpdated(ctx, event); err != nil {
			return err
		}
	}
	return nil
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// FeedFilterParam is the query parameter refresh streams filter on.
const FeedFilterParam = "feed"

// ParseFeedFilter splits repeated or comma separated feed filter values.
func ParseFeedFilter(values ...string) []string {
	var feeds []string
	for _, raw := range values {
		for _, code := range strings.Split(raw, ",") {
			if code = strings.TrimSpace(code); code != "" {
				feeds = append(feeds, code)
			}
		}
	}
	return feeds
}

func feedFilter(r *http.Request) []string {
	return ParseFeedFilter(r.URL.Query()[FeedFilterParam]...)
}

// ServeWebSocket upgrades the request and streams feed events as JSON.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, cancel := h.Subscribe(feedFilter(r)...)
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

// ServeSSE streams refresh events as Server-Sent Events. Each event is named
// after its feed code so browsers can addEventListener per feed.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	events, cancel := h.Subscribe(feedFilter(r)...)
	defer cancel()

	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				return
			}
			if _, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", h.seq.Add(1), event.FeedCode, data); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
