package dashboard

import "context"

// ActivityContext carries actor/user/tenant identifiers for activity events
// when they differ from the viewer (e.g. an admin acting for a tenant).
type ActivityContext struct {
	ActorID  string
	UserID   string
	TenantID string
}

type activityContextKey struct{}

// ContextWithActivity stores activity context on the provided context.
func ContextWithActivity(ctx context.Context, meta ActivityContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, activityContextKey{}, meta)
}

func activityContextFrom(ctx context.Context, viewer ViewerContext) ActivityContext {
	var meta ActivityContext
	if ctx != nil {
		if stored, ok := ctx.Value(activityContextKey{}).(ActivityContext); ok {
			meta = stored
		}
	}
	if meta.ActorID == "" {
		meta.ActorID = viewer.UserID
	}
	if meta.UserID == "" {
		meta.UserID = viewer.UserID
	}
	return meta
}
