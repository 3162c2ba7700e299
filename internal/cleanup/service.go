// Package cleanup finds concluded events that opted in to automatic
// cluster teardown and deletes their remaining clusters. It is driven
// by an external scheduler and never fails a whole batch for one bad
// cluster.
package cleanup

import (
	"context"
	"time"

	"github.com/hackforge/atlasman/internal/cluster"
	"github.com/hackforge/atlasman/internal/platform"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ClusterDeleter tears down a single cluster, external resource first.
// The provisioning service implements it.
type ClusterDeleter interface {
	DeleteCluster(ctx context.Context, clusterID string) error
}

// Report summarizes one event's cleanup pass
type Report struct {
	EventID         string   `json:"eventId" yaml:"eventId"`
	EventName       string   `json:"eventName,omitempty" yaml:"eventName,omitempty"`
	ClustersFound   int      `json:"clustersFound" yaml:"clustersFound"`
	ClustersDeleted int      `json:"clustersDeleted" yaml:"clustersDeleted"`
	Errors          []string `json:"errors,omitempty" yaml:"errors,omitempty"`
	DryRun          bool     `json:"dryRun,omitempty" yaml:"dryRun,omitempty"`
}

var nonDeletedStatuses = []cluster.Status{
	cluster.StatusProvisioning,
	cluster.StatusActive,
	cluster.StatusFailed,
	cluster.StatusDeleting,
}

// Service runs scheduled cluster cleanup
type Service struct {
	events   platform.EventStore
	clusters cluster.Store
	deleter  ClusterDeleter
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService returns a new cleanup service
func NewService(events platform.EventStore, clusters cluster.Store, deleter ClusterDeleter, logger zerolog.Logger) *Service {
	return &Service{
		events:   events,
		clusters: clusters,
		deleter:  deleter,
		logger:   logger.With().Str("component", "cleanup").Logger(),
		now:      time.Now,
	}
}

// FindEventsNeedingCleanup returns the ids of concluded events with
// auto-cleanup enabled that still have at least one non-deleted
// cluster. It performs no destructive calls.
func (s *Service) FindEventsNeedingCleanup(ctx context.Context) ([]string, error) {
	events, err := s.candidateEvents(ctx)
	if err != nil {
		return nil, err
	}

	eventIDs := make([]string, 0, len(events))
	for _, event := range events {
		eventIDs = append(eventIDs, event.ID)
	}
	return eventIDs, nil
}

// CleanupEventClusters deletes every non-deleted cluster belonging to
// the event. A failing cluster is reported and skipped, never aborting
// the rest of the batch.
func (s *Service) CleanupEventClusters(ctx context.Context, eventID string) (Report, error) {
	return s.cleanupEvent(ctx, eventID, false)
}

// PreviewEventClusters reports what CleanupEventClusters would do
// without performing any destructive call
func (s *Service) PreviewEventClusters(ctx context.Context, eventID string) (Report, error) {
	return s.cleanupEvent(ctx, eventID, true)
}

// RunScheduledCleanup cleans up every qualifying event and returns one
// report per event; intended to be invoked by cron
func (s *Service) RunScheduledCleanup(ctx context.Context) ([]Report, error) {
	return s.run(ctx, false)
}

// PreviewScheduledCleanup reports what RunScheduledCleanup would do
// with zero external side effects
func (s *Service) PreviewScheduledCleanup(ctx context.Context) ([]Report, error) {
	return s.run(ctx, true)
}

func (s *Service) run(ctx context.Context, dryRun bool) ([]Report, error) {
	runID := uuid.NewString()
	logger := s.logger.With().Str("run_id", runID).Bool("dry_run", dryRun).Logger()

	events, err := s.candidateEvents(ctx)
	if err != nil {
		return nil, err
	}

	logger.Info().Int("events", len(events)).Msg("cleanup run starting")

	reports := make([]Report, 0, len(events))
	for _, event := range events {
		report, err := s.cleanupEvent(ctx, event.ID, dryRun)
		if err != nil {
			// an unreadable event still must not block its siblings
			logger.Error().Err(err).Str("event_id", event.ID).Msg("cleanup pass failed")
			report = Report{EventID: event.ID, Errors: []string{err.Error()}, DryRun: dryRun}
		}
		report.EventName = event.Name
		reports = append(reports, report)
	}

	logger.Info().Int("reports", len(reports)).Msg("cleanup run finished")
	return reports, nil
}

func (s *Service) cleanupEvent(ctx context.Context, eventID string, dryRun bool) (Report, error) {
	clusters, err := s.clusters.Find(ctx, cluster.Filter{
		EventID:  eventID,
		Statuses: nonDeletedStatuses,
	})
	if err != nil {
		return Report{}, err
	}

	report := Report{
		EventID:       eventID,
		ClustersFound: len(clusters),
		DryRun:        dryRun,
	}

	if dryRun {
		return report, nil
	}

	for _, c := range clusters {
		id := c.ID.Hex()
		if err := s.deleter.DeleteCluster(ctx, id); err != nil {
			report.Errors = append(report.Errors, id+": "+err.Error())
			continue
		}
		report.ClustersDeleted++
	}

	return report, nil
}

// candidateEvents lists concluded, auto-cleanup events that still have
// clusters to tear down
func (s *Service) candidateEvents(ctx context.Context) ([]platform.Event, error) {
	ended, err := s.events.ListAutoCleanupEnded(ctx, s.now().UTC())
	if err != nil {
		return nil, err
	}

	var candidates []platform.Event
	for _, event := range ended {
		count, err := s.clusters.CountNonDeleted(ctx, event.ID)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			candidates = append(candidates, event)
		}
	}
	return candidates, nil
}
