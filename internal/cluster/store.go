package cluster

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// set of known cluster store errors
var (
	ErrNotFound = errors.New("cluster could not be found")

	// ErrDuplicateActive is returned when inserting a record would give
	// a team a second live cluster for the same event
	ErrDuplicateActive = errors.New("team already has a cluster for this event")

	ErrNotActive = errors.New("cluster is not active")

	ErrTooManyDatabaseUsers = errors.New("cluster has reached its database user limit")
)

const collectionName = "atlas_clusters"

// Filter narrows a cluster listing
type Filter struct {
	EventID  string
	TeamID   string
	Statuses []Status
}

// Store persists cluster records
type Store interface {
	EnsureIndexes(ctx context.Context) error

	Insert(ctx context.Context, cluster *Cluster) error
	Get(ctx context.Context, id string) (Cluster, error)
	Find(ctx context.Context, filter Filter) ([]Cluster, error)
	CountNonDeleted(ctx context.Context, eventID string) (int64, error)

	MarkDeleting(ctx context.Context, id string) (Cluster, error)
	MarkActive(ctx context.Context, id, connectionString string, checkedAt time.Time) (Cluster, error)
	MarkFailed(ctx context.Context, id string, checkedAt time.Time) (Cluster, error)
	MarkDeleted(ctx context.Context, id string, checkedAt time.Time) (Cluster, error)
	Touch(ctx context.Context, id string, checkedAt time.Time) error
	Remove(ctx context.Context, id string) error

	PushDatabaseUser(ctx context.Context, id string, user DatabaseUser, maxUsers int) (Cluster, error)
	PullDatabaseUser(ctx context.Context, id, username string) (Cluster, error)
}

// NewStore returns a cluster store backed by the provided database
func NewStore(db *mongo.Database) Store {
	return &store{coll: db.Collection(collectionName)}
}

type store struct {
	coll *mongo.Collection
}

// EnsureIndexes creates the indexes the store relies on. The unique
// sparse index on active_key is what makes the one-live-cluster-per-team
// invariant hold under concurrent provision attempts.
func (s *store) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "active_key", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetSparse(true),
		},
		{
			Keys: bson.D{{Key: "event_id", Value: 1}, {Key: "status", Value: 1}},
		},
	})
	return err
}

func (s *store) Insert(ctx context.Context, cluster *Cluster) error {
	if cluster.ID.IsZero() {
		cluster.ID = primitive.NewObjectID()
	}
	if cluster.CreatedAt.IsZero() {
		cluster.CreatedAt = time.Now().UTC()
	}
	cluster.ActiveKey = ActiveKey(cluster.EventID, cluster.TeamID)

	if _, err := s.coll.InsertOne(ctx, cluster); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateActive
		}
		return err
	}
	return nil
}

func (s *store) Get(ctx context.Context, id string) (Cluster, error) {
	oid, err := objectID(id)
	if err != nil {
		return Cluster{}, err
	}

	var cluster Cluster
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&cluster); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Cluster{}, ErrNotFound
		}
		return Cluster{}, err
	}
	return cluster, nil
}

func (s *store) Find(ctx context.Context, filter Filter) ([]Cluster, error) {
	query := bson.M{}
	if filter.EventID != "" {
		query["event_id"] = filter.EventID
	}
	if filter.TeamID != "" {
		query["team_id"] = filter.TeamID
	}
	if len(filter.Statuses) > 0 {
		query["status"] = bson.M{"$in": filter.Statuses}
	}

	cursor, err := s.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}

	var clusters []Cluster
	if err := cursor.All(ctx, &clusters); err != nil {
		return nil, err
	}
	return clusters, nil
}

func (s *store) CountNonDeleted(ctx context.Context, eventID string) (int64, error) {
	return s.coll.CountDocuments(ctx, bson.M{
		"event_id": eventID,
		"status":   bson.M{"$ne": StatusDeleted},
	})
}

// MarkDeleting flips the record to deleting ahead of the external
// delete call so a concurrent status refresh cannot resurrect it. The
// connection string is cleared; only active records carry one.
func (s *store) MarkDeleting(ctx context.Context, id string) (Cluster, error) {
	return s.findOneAndUpdate(ctx, id,
		bson.M{"status": bson.M{"$in": []Status{
			StatusProvisioning, StatusActive, StatusFailed, StatusDeleting,
		}}},
		bson.M{
			"$set":   bson.M{"status": StatusDeleting},
			"$unset": bson.M{"connection_string": ""},
		},
	)
}

func (s *store) MarkActive(ctx context.Context, id, connectionString string, checkedAt time.Time) (Cluster, error) {
	return s.findOneAndUpdate(ctx, id,
		bson.M{"status": bson.M{"$in": []Status{StatusProvisioning, StatusActive}}},
		bson.M{"$set": bson.M{
			"status":            StatusActive,
			"connection_string": connectionString,
			"last_status_check": checkedAt,
		}},
	)
}

func (s *store) MarkFailed(ctx context.Context, id string, checkedAt time.Time) (Cluster, error) {
	return s.findOneAndUpdate(ctx, id,
		bson.M{"status": bson.M{"$in": []Status{StatusProvisioning, StatusActive}}},
		bson.M{
			"$set":   bson.M{"status": StatusFailed, "last_status_check": checkedAt},
			"$unset": bson.M{"active_key": "", "connection_string": ""},
		},
	)
}

func (s *store) MarkDeleted(ctx context.Context, id string, checkedAt time.Time) (Cluster, error) {
	return s.findOneAndUpdate(ctx, id,
		bson.M{},
		bson.M{
			"$set":   bson.M{"status": StatusDeleted, "last_status_check": checkedAt},
			"$unset": bson.M{"active_key": "", "connection_string": ""},
		},
	)
}

func (s *store) Touch(ctx context.Context, id string, checkedAt time.Time) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"last_status_check": checkedAt}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *store) Remove(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PushDatabaseUser appends a database user in a single conditional
// update: the cluster must be active and below its user limit at the
// moment of the write, not merely at check time
func (s *store) PushDatabaseUser(ctx context.Context, id string, user DatabaseUser, maxUsers int) (Cluster, error) {
	oid, err := objectID(id)
	if err != nil {
		return Cluster{}, err
	}

	filter := bson.M{
		"_id":    oid,
		"status": StatusActive,
		"$expr": bson.M{"$lt": bson.A{
			bson.M{"$size": bson.M{"$ifNull": bson.A{"$database_users", bson.A{}}}},
			maxUsers,
		}},
	}

	after := options.After
	res := s.coll.FindOneAndUpdate(ctx, filter,
		bson.M{"$push": bson.M{"database_users": user}},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	)

	var cluster Cluster
	if err := res.Decode(&cluster); err == nil {
		return cluster, nil
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		return Cluster{}, err
	}

	// the conditional update missed; re-read to report why
	current, getErr := s.Get(ctx, id)
	if getErr != nil {
		return Cluster{}, getErr
	}
	if current.Status != StatusActive {
		return Cluster{}, ErrNotActive
	}
	return Cluster{}, ErrTooManyDatabaseUsers
}

func (s *store) PullDatabaseUser(ctx context.Context, id, username string) (Cluster, error) {
	return s.findOneAndUpdate(ctx, id,
		bson.M{},
		bson.M{"$pull": bson.M{"database_users": bson.M{"username": username}}},
	)
}

func (s *store) findOneAndUpdate(ctx context.Context, id string, filter, update bson.M) (Cluster, error) {
	oid, err := objectID(id)
	if err != nil {
		return Cluster{}, err
	}
	filter["_id"] = oid

	after := options.After
	res := s.coll.FindOneAndUpdate(ctx, filter, update,
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	)

	var cluster Cluster
	if err := res.Decode(&cluster); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Cluster{}, ErrNotFound
		}
		return Cluster{}, err
	}
	return cluster, nil
}

// objectID parses a record id, treating malformed ids as missing
// records rather than errors worth surfacing separately
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.ObjectID{}, ErrNotFound
	}
	return oid, nil
}
