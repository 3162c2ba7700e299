// Package provision orchestrates the creation and teardown of Atlas
// clusters for hackathon teams.
package provision

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/hackforge/atlasman/internal/cloud/atlas"
	"github.com/hackforge/atlasman/internal/cluster"
	"github.com/hackforge/atlasman/internal/errs"
	"github.com/hackforge/atlasman/internal/platform"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Spec describes the cluster a team is asking for. Zero values fall
// back to the event's configured defaults.
type Spec struct {
	Provider     cluster.Provider
	Region       string
	InstanceSize string
	ProjectID    string
}

// DatabaseUserCredentials carries the one-time plaintext password for a
// newly created database user; it is never persisted
type DatabaseUserCredentials struct {
	Username string
	Password string
}

// Service provisions and tears down clusters
type Service struct {
	atlas    atlas.Client
	clusters cluster.Store
	events   platform.EventStore
	logger   zerolog.Logger
}

// NewService returns a new provisioning service
func NewService(atlasClient atlas.Client, clusters cluster.Store, events platform.EventStore, logger zerolog.Logger) *Service {
	return &Service{
		atlas:    atlasClient,
		clusters: clusters,
		events:   events,
		logger:   logger.With().Str("component", "provision").Logger(),
	}
}

// ProvisionCluster validates the request against the event's config,
// starts the asynchronous cluster creation on Atlas and persists the
// record in provisioning state. The cluster is not usable until a later
// status refresh observes it ready.
func (s *Service) ProvisionCluster(ctx context.Context, eventID, teamID, requestedBy string, spec Spec) (cluster.Cluster, error) {
	event, err := s.events.Event(ctx, eventID)
	if err != nil {
		if errors.Is(err, platform.ErrEventNotFound) {
			return cluster.Cluster{}, errs.Wrap(errs.KindNotFound, "event could not be found", err)
		}
		return cluster.Cluster{}, err
	}

	cfg := event.Atlas
	if !cfg.Enabled {
		return cluster.Cluster{}, errs.Newf(errs.KindFeatureDisabled, "cluster provisioning is not enabled for event %s", eventID)
	}

	if spec.Provider == "" {
		spec.Provider = cfg.DefaultProvider
	}
	if spec.Region == "" {
		spec.Region = cfg.DefaultRegion
	}
	if spec.InstanceSize == "" {
		spec.InstanceSize = cfg.DefaultInstanceSize
	}

	if !cluster.ValidProvider(spec.Provider) {
		return cluster.Cluster{}, errs.Newf(errs.KindInvalidConfig, "unknown cloud provider %q", spec.Provider)
	}
	if !cfg.AllowsProvider(spec.Provider) {
		return cluster.Cluster{}, errs.Newf(errs.KindInvalidConfig, "provider %q is not allowed for this event", spec.Provider)
	}
	if !cfg.AllowsRegion(spec.Region) {
		return cluster.Cluster{}, errs.Newf(errs.KindInvalidConfig, "region %q is not allowed for this event", spec.Region)
	}

	// fast path; the store's unique index is the authoritative guard
	existing, err := s.clusters.Find(ctx, cluster.Filter{
		EventID:  eventID,
		TeamID:   teamID,
		Statuses: []cluster.Status{cluster.StatusProvisioning, cluster.StatusActive, cluster.StatusDeleting},
	})
	if err != nil {
		return cluster.Cluster{}, err
	}
	if len(existing) > 0 {
		return cluster.Cluster{}, errs.Newf(errs.KindConflict, "team %s already has a cluster for event %s", teamID, eventID)
	}

	name := clusterName(eventID, teamID)

	created, err := s.atlas.CreateCluster(cfg.GroupID, atlas.ClusterSpec{
		Name:         name,
		Provider:     string(spec.Provider),
		Region:       spec.Region,
		InstanceSize: spec.InstanceSize,
	})
	if err != nil {
		return cluster.Cluster{}, errs.Wrap(errs.KindProvisioningFailed, "failed to start cluster creation", err)
	}

	if cfg.OpenNetworkAccess {
		if err := s.atlas.CreateAccessListEntry(cfg.GroupID, atlas.OpenAccessEntry); err != nil {
			// the cluster is still usable from allowed networks
			s.logger.Warn().Err(err).Str("group_id", cfg.GroupID).
				Msg("failed to open project network access")
		}
	}

	record := cluster.Cluster{
		EventID:       eventID,
		TeamID:        teamID,
		ProjectID:     spec.ProjectID,
		GroupID:       cfg.GroupID,
		Name:          name,
		Provider:      spec.Provider,
		Region:        spec.Region,
		InstanceSize:  spec.InstanceSize,
		Status:        cluster.StatusProvisioning,
		ProvisionedBy: requestedBy,
	}

	if err := s.clusters.Insert(ctx, &record); err != nil {
		if errors.Is(err, cluster.ErrDuplicateActive) {
			// a concurrent provision won the slot; tear down our orphan job
			if deleteErr := s.atlas.DeleteCluster(cfg.GroupID, name); deleteErr != nil && !atlas.IsNotFound(deleteErr) {
				s.logger.Error().Err(deleteErr).Str("cluster", name).
					Msg("failed to tear down orphaned cluster after lost provision race")
			}
			return cluster.Cluster{}, errs.Wrap(errs.KindConflict, "team already has a cluster for this event", err)
		}
		return cluster.Cluster{}, err
	}

	s.logger.Info().
		Str("cluster_id", record.ID.Hex()).
		Str("event_id", eventID).
		Str("team_id", teamID).
		Str("atlas_cluster", created.Name).
		Msg("cluster provisioning started")

	return record, nil
}

// DeleteCluster tears down the external cluster and removes the local
// record. On external failure the record stays in deleting state so a
// later cleanup pass retries; it is never reverted to active.
func (s *Service) DeleteCluster(ctx context.Context, clusterID string) error {
	record, err := s.clusters.Get(ctx, clusterID)
	if err != nil {
		if errors.Is(err, cluster.ErrNotFound) {
			return errs.Wrap(errs.KindNotFound, "cluster could not be found", err)
		}
		return err
	}

	if record.Status == cluster.StatusDeleted {
		return nil
	}

	if _, err := s.clusters.MarkDeleting(ctx, clusterID); err != nil {
		if errors.Is(err, cluster.ErrNotFound) {
			// already removed by a concurrent delete
			return nil
		}
		return err
	}

	if err := s.atlas.DeleteCluster(record.GroupID, record.Name); err != nil && !atlas.IsNotFound(err) {
		s.logger.Error().Err(err).
			Str("cluster_id", clusterID).
			Str("atlas_cluster", record.Name).
			Msg("external cluster deletion failed; record retained for retry")
		return errs.Wrap(errs.KindDeletionFailed, "failed to delete cluster", err)
	}

	if err := s.clusters.Remove(ctx, clusterID); err != nil && !errors.Is(err, cluster.ErrNotFound) {
		return err
	}

	s.logger.Info().Str("cluster_id", clusterID).Msg("cluster deleted")
	return nil
}

// ListClusters lists cluster records matching the filter
func (s *Service) ListClusters(ctx context.Context, filter cluster.Filter) ([]cluster.Cluster, error) {
	return s.clusters.Find(ctx, filter)
}

// CreateDatabaseUser creates a database user on the cluster, scoped to
// it, and returns the generated credentials exactly once
func (s *Service) CreateDatabaseUser(ctx context.Context, clusterID, username string, roles []string) (DatabaseUserCredentials, error) {
	record, err := s.clusters.Get(ctx, clusterID)
	if err != nil {
		if errors.Is(err, cluster.ErrNotFound) {
			return DatabaseUserCredentials{}, errs.Wrap(errs.KindNotFound, "cluster could not be found", err)
		}
		return DatabaseUserCredentials{}, err
	}

	if record.Status != cluster.StatusActive {
		return DatabaseUserCredentials{}, errs.Newf(errs.KindConflict, "cluster is %s, database users require an active cluster", record.Status)
	}

	event, err := s.events.Event(ctx, record.EventID)
	if err != nil {
		if errors.Is(err, platform.ErrEventNotFound) {
			return DatabaseUserCredentials{}, errs.Wrap(errs.KindNotFound, "event could not be found", err)
		}
		return DatabaseUserCredentials{}, err
	}

	if len(roles) == 0 {
		roles = []string{"readWriteAnyDatabase"}
	}

	password := uuid.NewString()

	atlasRoles := make([]atlas.DatabaseUserRole, 0, len(roles))
	for _, role := range roles {
		atlasRoles = append(atlasRoles, atlas.DatabaseUserRole{RoleName: role, DatabaseName: "admin"})
	}

	if _, err := s.atlas.CreateDatabaseUser(record.GroupID, atlas.DatabaseUserSpec{
		Username: username,
		Password: password,
		Roles:    atlasRoles,
		Scopes:   []atlas.DatabaseUserScope{{Name: record.Name, Type: atlas.ScopeTypeCluster}},
	}); err != nil {
		return DatabaseUserCredentials{}, errs.Wrap(errs.KindProvisioningFailed, "failed to create database user", err)
	}

	user := cluster.DatabaseUser{
		Username:    username,
		PasswordRef: passwordRef(password),
		Roles:       roles,
		CreatedAt:   time.Now().UTC(),
	}

	if _, err := s.clusters.PushDatabaseUser(ctx, clusterID, user, event.Atlas.MaxDatabaseUsersPerCluster); err != nil {
		// undo the external user so record and Atlas stay consistent
		if deleteErr := s.atlas.DeleteDatabaseUser(record.GroupID, username); deleteErr != nil && !atlas.IsNotFound(deleteErr) {
			s.logger.Error().Err(deleteErr).Str("username", username).
				Msg("failed to remove database user after record update failure")
		}

		switch {
		case errors.Is(err, cluster.ErrTooManyDatabaseUsers):
			return DatabaseUserCredentials{}, errs.Newf(errs.KindConflict, "cluster already has %d database users", event.Atlas.MaxDatabaseUsersPerCluster)
		case errors.Is(err, cluster.ErrNotActive):
			return DatabaseUserCredentials{}, errs.Wrap(errs.KindConflict, "cluster is no longer active", err)
		case errors.Is(err, cluster.ErrNotFound):
			return DatabaseUserCredentials{}, errs.Wrap(errs.KindNotFound, "cluster could not be found", err)
		}
		return DatabaseUserCredentials{}, err
	}

	return DatabaseUserCredentials{Username: username, Password: password}, nil
}

// DeleteDatabaseUser removes a database user from Atlas and from the
// cluster record; a user already gone externally still gets pruned
func (s *Service) DeleteDatabaseUser(ctx context.Context, clusterID, username string) error {
	record, err := s.clusters.Get(ctx, clusterID)
	if err != nil {
		if errors.Is(err, cluster.ErrNotFound) {
			return errs.Wrap(errs.KindNotFound, "cluster could not be found", err)
		}
		return err
	}

	if err := s.atlas.DeleteDatabaseUser(record.GroupID, username); err != nil && !atlas.IsNotFound(err) {
		return errs.Wrap(errs.KindDeletionFailed, "failed to delete database user", err)
	}

	if _, err := s.clusters.PullDatabaseUser(ctx, clusterID, username); err != nil && !errors.Is(err, cluster.ErrNotFound) {
		return err
	}
	return nil
}

// clusterName derives a stable, Atlas-safe cluster name from the owning
// event and team
func clusterName(eventID, teamID string) string {
	return "hx-" + suffix(eventID, 6) + "-" + suffix(teamID, 6)
}

func suffix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func passwordRef(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
