package apiclient

import (
	"context"
	"errors"

	"go.uber.org/zap"

	dashboard "github.com/organizeit/go-organizeit/components/dashboard"
)

// FeedFetcher returns a feed payload by code.
type FeedFetcher interface {
	Feed(ctx context.Context, code string, params map[string]string) (dashboard.FeedData, error)
}

// FeedFetcherFunc adapts a function into a FeedFetcher.
type FeedFetcherFunc func(ctx context.Context, code string, params map[string]string) (dashboard.FeedData, error)

// Feed implements FeedFetcher.
func (f FeedFetcherFunc) Feed(ctx context.Context, code string, params map[string]string) (dashboard.FeedData, error) {
	return f(ctx, code, params)
}

// LocalFeeds serves feeds from an in-process service as the anonymous viewer.
func LocalFeeds(service *dashboard.Service) FeedFetcher {
	return FeedFetcherFunc(func(ctx context.Context, code string, params map[string]string) (dashboard.FeedData, error) {
		return service.FetchFeed(ctx, dashboard.ViewerContext{}, code, params)
	})
}

// FallbackSource reads from Remote and, on any failure, logs it and serves
// Local data instead. Failures are not classified.
type FallbackSource struct {
	Remote FeedFetcher
	Local  FeedFetcher
	Logger *zap.Logger
	// OnFallback observes each fallback.
	OnFallback func(code string, err error)
}

// Feed implements FeedFetcher.
func (s *FallbackSource) Feed(ctx context.Context, code string, params map[string]string) (dashboard.FeedData, error) {
	if s.Local == nil {
		return nil, errors.New("apiclient: fallback source requires local feeds")
	}
	if s.Remote != nil {
		data, err := s.Remote.Feed(ctx, code, params)
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		s.logger().Warn("backend unavailable, using local mock data",
			zap.String("feed", code),
			zap.Error(err),
		)
		if s.OnFallback != nil {
			s.OnFallback(code, err)
		}
	}
	return s.Local.Feed(ctx, code, params)
}

func (s *FallbackSource) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
