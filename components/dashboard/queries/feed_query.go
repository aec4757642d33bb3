package queries

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
)

// FeedInput identifies a feed either by code or by path.
type FeedInput struct {
	Viewer dashboard.ViewerContext
	Code   string
	Path   string
	Params map[string]string
}

type feedService interface {
	FetchFeed(ctx context.Context, viewer dashboard.ViewerContext, code string, params map[string]string) (dashboard.FeedData, error)
	FetchFeedByPath(ctx context.Context, viewer dashboard.ViewerContext, path string, params map[string]string) (dashboard.FeedData, error)
}

// FeedQuery generates a feed payload.
type FeedQuery struct {
	service feedService
}

// NewFeedQuery builds the query.
func NewFeedQuery(service feedService) *FeedQuery {
	return &FeedQuery{service: service}
}

var _ gocommand.Querier[FeedInput, dashboard.FeedData] = (*FeedQuery)(nil)

// Query resolves the feed by code, falling back to path.
func (q *FeedQuery) Query(ctx context.Context, input FeedInput) (dashboard.FeedData, error) {
	switch {
	case input.Code != "":
		return q.service.FetchFeed(ctx, input.Viewer, input.Code, input.Params)
	case input.Path != "":
		return q.service.FetchFeedByPath(ctx, input.Viewer, input.Path, input.Params)
	default:
		return nil, errors.New("feed query requires code or path")
	}
}

type feedLister interface {
	Feeds(ctx context.Context, viewer dashboard.ViewerContext) []dashboard.FeedDefinition
}

// FeedListQuery lists the feeds a viewer may read.
type FeedListQuery struct {
	service feedLister
}

// NewFeedListQuery builds the query.
func NewFeedListQuery(service feedLister) *FeedListQuery {
	return &FeedListQuery{service: service}
}

var _ gocommand.Querier[dashboard.ViewerContext, []dashboard.FeedDefinition] = (*FeedListQuery)(nil)

// Query returns the visible definitions.
func (q *FeedListQuery) Query(ctx context.Context, viewer dashboard.ViewerContext) ([]dashboard.FeedDefinition, error) {
	return q.service.Feeds(ctx, viewer), nil
}
