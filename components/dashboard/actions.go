package dashboard

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Action codes handled by RunAction.
const (
	ActionRestartService    = "service.restart"
	ActionScaleService      = "service.scale"
	ActionApplyOptimization = "optimization.apply"
	ActionAcknowledgeAlert  = "alert.acknowledge"
	ActionResolveAlert      = "alert.resolve"
	ActionCreateTask        = "task.create"
	ActionUpdateTask        = "task.update"
)

// ActionStatusCompleted marks a simulated action that succeeded.
const ActionStatusCompleted = "completed"

// MemoryActionStore is the process-local action map. Entries are never
// expired; restarting the process clears it.
type MemoryActionStore struct {
	mu      sync.RWMutex
	records []ActionRecord
	latest  map[string]int
}

// NewMemoryActionStore builds an empty action map.
func NewMemoryActionStore() *MemoryActionStore {
	return &MemoryActionStore{latest: map[string]int{}}
}

func actionKey(action, target string) string {
	return action + "|" + target
}

// Record appends the record, filling ID and status when missing.
func (s *MemoryActionStore) Record(_ context.Context, record ActionRecord) (ActionRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Status == "" {
		record.Status = ActionStatusCompleted
	}
	record.Payload = cloneMap(record.Payload)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	s.latest[actionKey(record.Action, record.Target)] = len(s.records) - 1
	return record, nil
}

// Latest returns the most recent record for action against target.
func (s *MemoryActionStore) Latest(_ context.Context, action, target string) (ActionRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.latest[actionKey(action, target)]
	if !ok {
		return ActionRecord{}, false
	}
	return s.records[idx], true
}

// Recent returns up to limit records, newest first. limit <= 0 returns all.
func (s *MemoryActionStore) Recent(_ context.Context, limit int) ([]ActionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.records)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]ActionRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.records[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ByAction returns every record for action in insertion order.
func (s *MemoryActionStore) ByAction(_ context.Context, action string) ([]ActionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ActionRecord
	for _, rec := range s.records {
		if rec.Action == action {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Len reports how many records the map holds.
func (s *MemoryActionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
