package cluster

import (
	"time"

	"github.com/hackforge/atlasman/internal/cloud/atlas"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status is the lifecycle status of a provisioned cluster
type Status string

// set of cluster lifecycle statuses
const (
	StatusProvisioning Status = "provisioning"
	StatusActive       Status = "active"
	StatusFailed       Status = "failed"
	StatusDeleting     Status = "deleting"
	StatusDeleted      Status = "deleted"
)

// HoldsTeamSlot determines whether a cluster in this status still counts
// against its team's one-cluster-per-event allowance
func (s Status) HoldsTeamSlot() bool {
	return s != StatusDeleted && s != StatusFailed
}

// StatusFromClusterState maps the Atlas describe vocabulary
// onto the record lifecycle model
func StatusFromClusterState(state string) Status {
	switch state {
	case atlas.ClusterStateIdle:
		return StatusActive
	case atlas.ClusterStateCreating, atlas.ClusterStateUpdating, atlas.ClusterStateRepairing:
		return StatusProvisioning
	case atlas.ClusterStateDeleting:
		return StatusDeleting
	case atlas.ClusterStateDeleted:
		return StatusDeleted
	}
	// Atlas has no dedicated error state; an unrecognized state needs
	// operator attention before the team slot is released
	return StatusFailed
}

// Provider is a cloud provider backing an Atlas cluster
type Provider string

// set of supported cloud providers
const (
	ProviderAWS   Provider = "AWS"
	ProviderGCP   Provider = "GCP"
	ProviderAzure Provider = "AZURE"
)

// ValidProvider determines whether the provided value names a supported
// cloud provider
func ValidProvider(provider Provider) bool {
	switch provider {
	case ProviderAWS, ProviderGCP, ProviderAzure:
		return true
	}
	return false
}

// Cluster is the persisted record of an Atlas cluster provisioned for a
// hackathon team. connection_string is only ever present while the
// cluster is active; database_users is empty while it is provisioning.
type Cluster struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID   string             `bson:"event_id" json:"eventId"`
	TeamID    string             `bson:"team_id" json:"teamId"`
	ProjectID string             `bson:"project_id,omitempty" json:"projectId,omitempty"`

	GroupID string `bson:"group_id" json:"groupId"`
	Name    string `bson:"name" json:"name"`

	Provider     Provider `bson:"provider" json:"provider"`
	Region       string   `bson:"region" json:"region"`
	InstanceSize string   `bson:"instance_size" json:"instanceSize"`

	Status           Status `bson:"status" json:"status"`
	ConnectionString string `bson:"connection_string,omitempty" json:"connectionString,omitempty"`

	DatabaseUsers []DatabaseUser `bson:"database_users,omitempty" json:"databaseUsers,omitempty"`

	ProvisionedBy   string    `bson:"provisioned_by" json:"provisionedBy"`
	CreatedAt       time.Time `bson:"created_at" json:"createdAt"`
	LastStatusCheck time.Time `bson:"last_status_check,omitempty" json:"lastStatusCheck,omitempty"`

	// ActiveKey backs the unique index that keeps a team at one live
	// cluster per event; it is unset once the status no longer holds
	// the team's slot
	ActiveKey string `bson:"active_key,omitempty" json:"-"`
}

// DatabaseUser is a database user provisioned on a cluster. Only a
// reference to the password is kept, the plaintext is returned once at
// creation time and never stored.
type DatabaseUser struct {
	Username    string    `bson:"username" json:"username"`
	PasswordRef string    `bson:"password_ref" json:"-"`
	Roles       []string  `bson:"roles" json:"roles"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
}

// ActiveKey derives the uniqueness key for a team's live cluster
// within an event
func ActiveKey(eventID, teamID string) string {
	return eventID + ":" + teamID
}
