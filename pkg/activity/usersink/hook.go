// Package usersink forwards activity events into go-users activity sinks.
package usersink

import (
	"context"

	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"

	"github.com/organizeit/go-organizeit/pkg/activity"
)

// Sink is the subset of the go-users activity sink used here.
type Sink interface {
	Log(ctx context.Context, record types.ActivityRecord) error
}

// Hook adapts a go-users sink into an activity.Hook.
type Hook struct {
	Sink Sink
}

// Notify maps the event onto an ActivityRecord. Events without a verb are
// skipped; non-UUID identifiers are left as uuid.Nil.
func (h Hook) Notify(ctx context.Context, evt activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	evt = activity.NormalizeEvent(evt)
	if evt.Verb == "" {
		return nil
	}
	data := make(map[string]any, len(evt.Metadata)+2)
	for k, v := range evt.Metadata {
		data[k] = v
	}
	if evt.DefinitionCode != "" {
		data["definition_code"] = evt.DefinitionCode
	}
	if len(evt.Recipients) > 0 {
		data["recipients"] = evt.Recipients
	}
	return h.Sink.Log(ctx, types.ActivityRecord{
		ID:         uuid.New(),
		UserID:     parseID(evt.UserID),
		ActorID:    parseID(evt.ActorID),
		TenantID:   parseID(evt.TenantID),
		Verb:       evt.Verb,
		ObjectType: evt.ObjectType,
		ObjectID:   evt.ObjectID,
		Channel:    evt.Channel,
		Data:       data,
		OccurredAt: evt.OccurredAt,
	})
}

func parseID(raw string) uuid.UUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
