package platform

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Team is the read model of a hackathon team
type Team struct {
	ID       string   `bson:"_id"`
	LeaderID string   `bson:"leader_id"`
	Members  []string `bson:"members"`
}

// HasMember determines whether the user belongs to the team;
// the leader always counts as a member
func (t Team) HasMember(userID string) bool {
	if userID == "" {
		return false
	}
	if t.LeaderID == userID {
		return true
	}
	for _, member := range t.Members {
		if member == userID {
			return true
		}
	}
	return false
}

// TeamStore reads team records
type TeamStore interface {
	Team(ctx context.Context, id string) (Team, error)
}

// NewTeamStore returns a team store backed by the provided database
func NewTeamStore(db *mongo.Database) TeamStore {
	return &teamStore{coll: db.Collection(teamsCollection)}
}

type teamStore struct {
	coll *mongo.Collection
}

func (s *teamStore) Team(ctx context.Context, id string) (Team, error) {
	var team Team
	if err := s.coll.FindOne(ctx, bson.M{"_id": recordID(id)}).Decode(&team); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Team{}, ErrTeamNotFound
		}
		return Team{}, err
	}
	return team, nil
}
