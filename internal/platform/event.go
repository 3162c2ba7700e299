// Package platform exposes read models of the hackathon platform's own
// records that the cluster lifecycle services collaborate with: events,
// their Atlas provisioning config, and teams.
package platform

import (
	"context"
	"errors"
	"time"

	"github.com/hackforge/atlasman/internal/cluster"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// set of known platform store errors
var (
	ErrEventNotFound = errors.New("event could not be found")
	ErrTeamNotFound  = errors.New("team could not be found")
)

const (
	eventsCollection = "events"
	teamsCollection  = "teams"
)

// Event is the read model of a hackathon event
type Event struct {
	ID      string             `bson:"_id"`
	Name    string             `bson:"name"`
	EndDate time.Time          `bson:"end_date"`
	Atlas   ProvisioningConfig `bson:"atlas"`
}

// Concluded determines whether the event has ended as of the provided time
func (e Event) Concluded(now time.Time) bool {
	return !e.EndDate.IsZero() && e.EndDate.Before(now)
}

// ProvisioningConfig governs what cluster provisioning permits for an
// event's teams
type ProvisioningConfig struct {
	Enabled bool `bson:"enabled"`

	// GroupID is the Atlas project the event's clusters are created in
	GroupID string `bson:"group_id"`

	DefaultProvider     cluster.Provider `bson:"default_provider"`
	DefaultRegion       string           `bson:"default_region"`
	DefaultInstanceSize string           `bson:"default_instance_size"`

	OpenNetworkAccess          bool `bson:"open_network_access"`
	MaxDatabaseUsersPerCluster int  `bson:"max_db_users_per_cluster"`
	AutoCleanupOnEventEnd      bool `bson:"auto_cleanup_on_event_end"`

	AllowedProviders []cluster.Provider `bson:"allowed_providers"`
	AllowedRegions   []string           `bson:"allowed_regions"`
}

// AllowsProvider determines whether the config permits the provider.
// An empty allow list places no restriction.
func (c ProvisioningConfig) AllowsProvider(provider cluster.Provider) bool {
	if len(c.AllowedProviders) == 0 {
		return true
	}
	for _, allowed := range c.AllowedProviders {
		if allowed == provider {
			return true
		}
	}
	return false
}

// AllowsRegion determines whether the config permits the region. An
// empty allow list places no restriction.
func (c ProvisioningConfig) AllowsRegion(region string) bool {
	if len(c.AllowedRegions) == 0 {
		return true
	}
	for _, allowed := range c.AllowedRegions {
		if allowed == region {
			return true
		}
	}
	return false
}

// EventStore reads event records
type EventStore interface {
	Event(ctx context.Context, id string) (Event, error)
	ListAutoCleanupEnded(ctx context.Context, now time.Time) ([]Event, error)
}

// NewEventStore returns an event store backed by the provided database
func NewEventStore(db *mongo.Database) EventStore {
	return &eventStore{coll: db.Collection(eventsCollection)}
}

type eventStore struct {
	coll *mongo.Collection
}

func (s *eventStore) Event(ctx context.Context, id string) (Event, error) {
	var event Event
	if err := s.coll.FindOne(ctx, bson.M{"_id": recordID(id)}).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Event{}, ErrEventNotFound
		}
		return Event{}, err
	}
	return event, nil
}

// ListAutoCleanupEnded returns the events that have concluded and opted
// in to automatic cluster cleanup
func (s *eventStore) ListAutoCleanupEnded(ctx context.Context, now time.Time) ([]Event, error) {
	cursor, err := s.coll.Find(ctx, bson.M{
		"end_date":                        bson.M{"$lt": now},
		"atlas.auto_cleanup_on_event_end": true,
	})
	if err != nil {
		return nil, err
	}

	var events []Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// recordID widens an id to match records keyed either by ObjectID or by
// plain string; older platform collections mix both
func recordID(id string) interface{} {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}
