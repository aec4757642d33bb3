package apiclient

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Notifier surfaces request outcomes to the user, the way toasts do in the
// browser.
type Notifier interface {
	Success(ctx context.Context, message string)
	Error(ctx context.Context, message string)
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) Success(context.Context, string) {}
func (NopNotifier) Error(context.Context, string)   {}

// LogNotifier writes notifications to a zap logger.
type LogNotifier struct {
	Logger *zap.Logger
}

// NewLogNotifier builds a notifier over logger; nil uses a no-op logger.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) Success(_ context.Context, message string) {
	n.Logger.Info(message, zap.String("toast", ToastSuccess))
}

func (n *LogNotifier) Error(_ context.Context, message string) {
	n.Logger.Error(message, zap.String("toast", ToastError))
}

// Toast kinds.
const (
	ToastSuccess = "success"
	ToastError   = "error"
)

// Toast is one recorded notification.
type Toast struct {
	Kind    string
	Message string
}

// RecordingNotifier keeps notifications in memory.
type RecordingNotifier struct {
	mu     sync.Mutex
	toasts []Toast
}

func (r *RecordingNotifier) Success(_ context.Context, message string) {
	r.add(Toast{Kind: ToastSuccess, Message: message})
}

func (r *RecordingNotifier) Error(_ context.Context, message string) {
	r.add(Toast{Kind: ToastError, Message: message})
}

func (r *RecordingNotifier) add(t Toast) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, t)
}

// Toasts returns a copy of the recorded notifications.
func (r *RecordingNotifier) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}
