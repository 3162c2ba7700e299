// Package reconcile polls the Atlas control plane for a cluster's real
// state and folds it back into the local record. It owns no timer;
// callers poll at whatever interval suits them.
package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/hackforge/atlasman/internal/cloud/atlas"
	"github.com/hackforge/atlasman/internal/cluster"
	"github.com/hackforge/atlasman/internal/errs"

	"github.com/rs/zerolog"
)

// Result is the refreshed view of a cluster. Callers must use it (or
// re-read the record) rather than trust any copy loaded before the
// refresh.
type Result struct {
	Status           cluster.Status
	ConnectionString string
}

// Service reconciles cluster records against the control plane
type Service struct {
	atlas    atlas.Client
	clusters cluster.Store
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService returns a new reconciliation service
func NewService(atlasClient atlas.Client, clusters cluster.Store, logger zerolog.Logger) *Service {
	return &Service{
		atlas:    atlasClient,
		clusters: clusters,
		logger:   logger.With().Str("component", "reconcile").Logger(),
		now:      time.Now,
	}
}

// RefreshClusterStatus describes the cluster on Atlas and applies the
// resulting transition:
//
//	provisioning -> active  once Atlas reports the cluster idle
//	provisioning -> failed  on an unrecognized Atlas state
//	any state    -> deleted once Atlas reports the cluster deleted
//	                        or no longer knows it
//
// An active cluster stays active; re-describing it refreshes the
// connection string if it was rotated externally. last_status_check is
// updated on every call regardless of transition.
func (s *Service) RefreshClusterStatus(ctx context.Context, clusterID string) (Result, error) {
	record, err := s.clusters.Get(ctx, clusterID)
	if err != nil {
		if errors.Is(err, cluster.ErrNotFound) {
			return Result{}, errs.Wrap(errs.KindNotFound, "cluster could not be found", err)
		}
		return Result{}, err
	}

	checkedAt := s.now().UTC()

	if record.Status == cluster.StatusDeleted {
		if err := s.clusters.Touch(ctx, clusterID, checkedAt); err != nil && !errors.Is(err, cluster.ErrNotFound) {
			return Result{}, err
		}
		return Result{Status: cluster.StatusDeleted}, nil
	}

	described, err := s.atlas.Cluster(record.GroupID, record.Name)
	if err != nil {
		if atlas.IsNotFound(err) {
			// the external cluster is gone; this is a legitimate
			// terminal signal, not an error
			updated, markErr := s.clusters.MarkDeleted(ctx, clusterID, checkedAt)
			if markErr != nil {
				if errors.Is(markErr, cluster.ErrNotFound) {
					return Result{Status: cluster.StatusDeleted}, nil
				}
				return Result{}, markErr
			}
			return Result{Status: updated.Status}, nil
		}

		if touchErr := s.clusters.Touch(ctx, clusterID, checkedAt); touchErr != nil && !errors.Is(touchErr, cluster.ErrNotFound) {
			return Result{}, touchErr
		}
		return Result{}, errs.Wrap(errs.KindProvisioningFailed, "failed to describe cluster", err)
	}

	switch cluster.StatusFromClusterState(described.State) {
	case cluster.StatusActive:
		updated, err := s.clusters.MarkActive(ctx, clusterID, described.ConnectionString, checkedAt)
		if err == nil {
			if record.Status != cluster.StatusActive {
				s.logger.Info().Str("cluster_id", clusterID).Msg("cluster became active")
			}
			return Result{Status: updated.Status, ConnectionString: updated.ConnectionString}, nil
		}
		if !errors.Is(err, cluster.ErrNotFound) {
			return Result{}, err
		}
		// a concurrent delete claimed the record; report what the
		// record says now instead of resurrecting it

	case cluster.StatusFailed:
		updated, err := s.clusters.MarkFailed(ctx, clusterID, checkedAt)
		if err == nil {
			s.logger.Warn().
				Str("cluster_id", clusterID).
				Str("atlas_state", described.State).
				Msg("cluster reported an unrecognized state")
			return Result{Status: updated.Status}, nil
		}
		if !errors.Is(err, cluster.ErrNotFound) {
			return Result{}, err
		}

	case cluster.StatusDeleted:
		updated, err := s.clusters.MarkDeleted(ctx, clusterID, checkedAt)
		if err == nil {
			s.logger.Info().Str("cluster_id", clusterID).Msg("cluster reported deleted upstream")
			return Result{Status: updated.Status}, nil
		}
		if !errors.Is(err, cluster.ErrNotFound) {
			return Result{}, err
		}
	}

	if err := s.clusters.Touch(ctx, clusterID, checkedAt); err != nil && !errors.Is(err, cluster.ErrNotFound) {
		return Result{}, err
	}

	refreshed, err := s.clusters.Get(ctx, clusterID)
	if err != nil {
		if errors.Is(err, cluster.ErrNotFound) {
			return Result{Status: cluster.StatusDeleted}, nil
		}
		return Result{}, err
	}

	result := Result{Status: refreshed.Status}
	// only an active record carries a usable connection string
	if refreshed.Status == cluster.StatusActive {
		result.ConnectionString = refreshed.ConnectionString
	}
	return result, nil
}
