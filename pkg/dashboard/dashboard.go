// Package dashboard is the public entry point for embedding the OrganizeIT
// mock backend in another program.
package dashboard

import (
	core "github.com/organizeit/go-organizeit/components/dashboard"
	"github.com/organizeit/go-organizeit/components/dashboard/httpapi"
)

// Service exposes the underlying components/dashboard.Service type.
type Service = core.Service

// Options re-export for convenience.
type Options = core.Options

// ViewerContext identifies the caller of a feed or action.
type ViewerContext = core.ViewerContext

// FeedData is a generated feed payload.
type FeedData = core.FeedData

// ActionRequest asks the service to simulate an action.
type ActionRequest = core.ActionRequest

// NewService proxies to the internal constructor.
func NewService(opts Options) *Service {
	return core.NewService(opts)
}

// NewHandlers wires the net/http API over service. broadcast may be nil, in
// which case the event streams are not mounted.
func NewHandlers(service *Service, broadcast *core.BroadcastHook) *httpapi.Handlers {
	return &httpapi.Handlers{
		API:       httpapi.NewCommandExecutor(service, nil),
		Broadcast: broadcast,
	}
}
