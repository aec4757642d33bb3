package dashboard

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
)

func stringOr(value any, fallback string) string {
	if v, ok := value.(string); ok && v != "" {
		return v
	}
	return fallback
}

func intOr(value any, fallback int) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return fallback
}

func lookupAction(ctx context.Context, feed FeedContext, action, target string) (ActionRecord, bool) {
	if feed.Actions == nil {
		return ActionRecord{}, false
	}
	return feed.Actions.Latest(ctx, action, target)
}

// latestOf returns whichever of the given actions was recorded last for target.
func latestOf(ctx context.Context, feed FeedContext, target string, actions ...string) (ActionRecord, bool) {
	var (
		latest ActionRecord
		found  bool
	)
	for _, action := range actions {
		rec, ok := lookupAction(ctx, feed, action, target)
		if !ok {
			continue
		}
		if !found || rec.CreatedAt.After(latest.CreatedAt) {
			latest = rec
			found = true
		}
	}
	return latest, found
}
