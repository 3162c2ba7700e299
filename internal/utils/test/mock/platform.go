package mock

import (
	"context"
	"time"

	"github.com/hackforge/atlasman/internal/auth"
	"github.com/hackforge/atlasman/internal/platform"
)

// EventStore is a mocked event store
type EventStore struct {
	platform.EventStore
	EventFn                func(ctx context.Context, id string) (platform.Event, error)
	ListAutoCleanupEndedFn func(ctx context.Context, now time.Time) ([]platform.Event, error)
}

// Event calls the mocked implementation if provided
func (es EventStore) Event(ctx context.Context, id string) (platform.Event, error) {
	if es.EventFn != nil {
		return es.EventFn(ctx, id)
	}
	return es.EventStore.Event(ctx, id)
}

// ListAutoCleanupEnded calls the mocked implementation if provided
func (es EventStore) ListAutoCleanupEnded(ctx context.Context, now time.Time) ([]platform.Event, error) {
	if es.ListAutoCleanupEndedFn != nil {
		return es.ListAutoCleanupEndedFn(ctx, now)
	}
	return es.EventStore.ListAutoCleanupEnded(ctx, now)
}

// TeamStore is a mocked team store
type TeamStore struct {
	platform.TeamStore
	TeamFn func(ctx context.Context, id string) (platform.Team, error)
}

// Team calls the mocked implementation if provided
func (ts TeamStore) Team(ctx context.Context, id string) (platform.Team, error) {
	if ts.TeamFn != nil {
		return ts.TeamFn(ctx, id)
	}
	return ts.TeamStore.Team(ctx, id)
}

// Sessions is a mocked session resolver
type Sessions struct {
	CurrentFn func(ctx context.Context) (auth.Identity, error)
}

// Current calls the mocked implementation if provided
func (s Sessions) Current(ctx context.Context) (auth.Identity, error) {
	if s.CurrentFn != nil {
		return s.CurrentFn(ctx)
	}
	return auth.Identity{}, auth.ErrNoSession
}
