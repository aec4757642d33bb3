package observability

import (
	"context"

	"github.com/goliatone/go-users/pkg/types"
	"go.uber.org/zap"
)

// ActivityLog is a go-users activity sink that writes records to zap.
type ActivityLog struct {
	Logger *zap.Logger
}

// Log implements the go-users activity sink contract.
func (l *ActivityLog) Log(_ context.Context, record types.ActivityRecord) error {
	if l == nil || l.Logger == nil {
		return nil
	}
	l.Logger.Info("activity",
		zap.String("id", record.ID.String()),
		zap.String("verb", record.Verb),
		zap.String("object_type", record.ObjectType),
		zap.String("object_id", record.ObjectID),
		zap.String("channel", record.Channel),
		zap.String("actor_id", record.ActorID.String()),
		zap.Any("data", record.Data),
		zap.Time("occurred_at", record.OccurredAt),
	)
	return nil
}
