package mock

import (
	"context"
	"time"

	"github.com/hackforge/atlasman/internal/cluster"
)

// ClusterStore is a mocked cluster store
type ClusterStore struct {
	cluster.Store
	EnsureIndexesFn    func(ctx context.Context) error
	InsertFn           func(ctx context.Context, c *cluster.Cluster) error
	GetFn              func(ctx context.Context, id string) (cluster.Cluster, error)
	FindFn             func(ctx context.Context, filter cluster.Filter) ([]cluster.Cluster, error)
	CountNonDeletedFn  func(ctx context.Context, eventID string) (int64, error)
	MarkDeletingFn     func(ctx context.Context, id string) (cluster.Cluster, error)
	MarkActiveFn       func(ctx context.Context, id, connectionString string, checkedAt time.Time) (cluster.Cluster, error)
	MarkFailedFn       func(ctx context.Context, id string, checkedAt time.Time) (cluster.Cluster, error)
	MarkDeletedFn      func(ctx context.Context, id string, checkedAt time.Time) (cluster.Cluster, error)
	TouchFn            func(ctx context.Context, id string, checkedAt time.Time) error
	RemoveFn           func(ctx context.Context, id string) error
	PushDatabaseUserFn func(ctx context.Context, id string, user cluster.DatabaseUser, maxUsers int) (cluster.Cluster, error)
	PullDatabaseUserFn func(ctx context.Context, id, username string) (cluster.Cluster, error)
}

// EnsureIndexes calls the mocked implementation if provided
func (cs ClusterStore) EnsureIndexes(ctx context.Context) error {
	if cs.EnsureIndexesFn != nil {
		return cs.EnsureIndexesFn(ctx)
	}
	return cs.Store.EnsureIndexes(ctx)
}

// Insert calls the mocked implementation if provided
func (cs ClusterStore) Insert(ctx context.Context, c *cluster.Cluster) error {
	if cs.InsertFn != nil {
		return cs.InsertFn(ctx, c)
	}
	return cs.Store.Insert(ctx, c)
}

// Get calls the mocked implementation if provided
func (cs ClusterStore) Get(ctx context.Context, id string) (cluster.Cluster, error) {
	if cs.GetFn != nil {
		return cs.GetFn(ctx, id)
	}
	return cs.Store.Get(ctx, id)
}

// Find calls the mocked implementation if provided
func (cs ClusterStore) Find(ctx context.Context, filter cluster.Filter) ([]cluster.Cluster, error) {
	if cs.FindFn != nil {
		return cs.FindFn(ctx, filter)
	}
	return cs.Store.Find(ctx, filter)
}

// CountNonDeleted calls the mocked implementation if provided
func (cs ClusterStore) CountNonDeleted(ctx context.Context, eventID string) (int64, error) {
	if cs.CountNonDeletedFn != nil {
		return cs.CountNonDeletedFn(ctx, eventID)
	}
	return cs.Store.CountNonDeleted(ctx, eventID)
}

// MarkDeleting calls the mocked implementation if provided
func (cs ClusterStore) MarkDeleting(ctx context.Context, id string) (cluster.Cluster, error) {
	if cs.MarkDeletingFn != nil {
		return cs.MarkDeletingFn(ctx, id)
	}
	return cs.Store.MarkDeleting(ctx, id)
}

// MarkActive calls the mocked implementation if provided
func (cs ClusterStore) MarkActive(ctx context.Context, id, connectionString string, checkedAt time.Time) (cluster.Cluster, error) {
	if cs.MarkActiveFn != nil {
		return cs.MarkActiveFn(ctx, id, connectionString, checkedAt)
	}
	return cs.Store.MarkActive(ctx, id, connectionString, checkedAt)
}

// MarkFailed calls the mocked implementation if provided
func (cs ClusterStore) MarkFailed(ctx context.Context, id string, checkedAt time.Time) (cluster.Cluster, error) {
	if cs.MarkFailedFn != nil {
		return cs.MarkFailedFn(ctx, id, checkedAt)
	}
	return cs.Store.MarkFailed(ctx, id, checkedAt)
}

// MarkDeleted calls the mocked implementation if provided
func (cs ClusterStore) MarkDeleted(ctx context.Context, id string, checkedAt time.Time) (cluster.Cluster, error) {
	if cs.MarkDeletedFn != nil {
		return cs.MarkDeletedFn(ctx, id, checkedAt)
	}
	return cs.Store.MarkDeleted(ctx, id, checkedAt)
}

// Touch calls the mocked implementation if provided
func (cs ClusterStore) Touch(ctx context.Context, id string, checkedAt time.Time) error {
	if cs.TouchFn != nil {
		return cs.TouchFn(ctx, id, checkedAt)
	}
	return cs.Store.Touch(ctx, id, checkedAt)
}

// Remove calls the mocked implementation if provided
func (cs ClusterStore) Remove(ctx context.Context, id string) error {
	if cs.RemoveFn != nil {
		return cs.RemoveFn(ctx, id)
	}
	return cs.Store.Remove(ctx, id)
}

// PushDatabaseUser calls the mocked implementation if provided
func (cs ClusterStore) PushDatabaseUser(ctx context.Context, id string, user cluster.DatabaseUser, maxUsers int) (cluster.Cluster, error) {
	if cs.PushDatabaseUserFn != nil {
		return cs.PushDatabaseUserFn(ctx, id, user, maxUsers)
	}
	return cs.Store.PushDatabaseUser(ctx, id, user, maxUsers)
}

// PullDatabaseUser calls the mocked implementation if provided
func (cs ClusterStore) PullDatabaseUser(ctx context.Context, id, username string) (cluster.Cluster, error) {
	if cs.PullDatabaseUserFn != nil {
		return cs.PullDatabaseUserFn(ctx, id, username)
	}
	return cs.Store.PullDatabaseUser(ctx, id, username)
}
