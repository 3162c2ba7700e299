package provision_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hackforge/atlasman/internal/cloud/atlas"
	"github.com/hackforge/atlasman/internal/cluster"
	"github.com/hackforge/atlasman/internal/errs"
	"github.com/hackforge/atlasman/internal/platform"
	"github.com/hackforge/atlasman/internal/provision"
	"github.com/hackforge/atlasman/internal/utils/test/assert"
	"github.com/hackforge/atlasman/internal/utils/test/mock"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testEvent() platform.Event {
	return platform.Event{
		ID:   "event1",
		Name: "HackForge 2026",
		Atlas: platform.ProvisioningConfig{
			Enabled:                    true,
			GroupID:                    "group1",
			DefaultProvider:            cluster.ProviderAWS,
			DefaultRegion:              "US_EAST_1",
			DefaultInstanceSize:        "M10",
			MaxDatabaseUsersPerCluster: 2,
		},
	}
}

func eventStoreWith(event platform.Event) mock.EventStore {
	return mock.EventStore{EventFn: func(ctx context.Context, id string) (platform.Event, error) {
		if id == event.ID {
			return event, nil
		}
		return platform.Event{}, platform.ErrEventNotFound
	}}
}

func emptyFind(ctx context.Context, filter cluster.Filter) ([]cluster.Cluster, error) {
	return nil, nil
}

func TestProvisionCluster(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	t.Run("Should fail when the event does not exist", func(t *testing.T) {
		svc := provision.NewService(mock.AtlasClient{}, mock.ClusterStore{}, eventStoreWith(testEvent()), logger)

		_, err := svc.ProvisionCluster(ctx, "ghost", "team1", "user1", provision.Spec{})
		assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	})

	t.Run("Should fail when provisioning is disabled for the event", func(t *testing.T) {
		event := testEvent()
		event.Atlas.Enabled = false
		svc := provision.NewService(mock.AtlasClient{}, mock.ClusterStore{}, eventStoreWith(event), logger)

		_, err := svc.ProvisionCluster(ctx, "event1", "team1", "user1", provision.Spec{})
		assert.Equal(t, errs.KindFeatureDisabled, errs.KindOf(err))
	})

	t.Run("Should reject a disallowed provider without touching Atlas or the store", func(t *testing.T) {
		event := testEvent()
		event.Atlas.AllowedProviders = []cluster.Provider{cluster.ProviderGCP}

		var externalCalls, inserts int
		atlasClient := mock.AtlasClient{CreateClusterFn: func(groupID string, spec atlas.ClusterSpec) (atlas.Cluster, error) {
			externalCalls++
			return atlas.Cluster{}, nil
		}}
		store := mock.ClusterStore{InsertFn: func(ctx context.Context, c *cluster.Cluster) error {
			inserts++
			return nil
		}}

		svc := provision.NewService(atlasClient, store, eventStoreWith(event), logger)

		_, err := svc.ProvisionCluster(ctx, "event1", "team1", "user1", provision.Spec{
			Provider: cluster.ProviderAWS,
			Region:   "US_EAST_1",
		})
		assert.Equal(t, errs.KindInvalidConfig, errs.KindOf(err))
		assert.Equal(t, 0, externalCalls)
		assert.Equal(t, 0, inserts)
	})

	t.Run("Should reject an unknown provider", func(t *testing.T) {
		svc := provision.NewService(mock.AtlasClient{}, mock.ClusterStore{}, eventStoreWith(testEvent()), logger)

		_, err := svc.ProvisionCluster(ctx, "event1", "team1", "user1", provision.Spec{Provider: "DIGITALOCEAN"})
		assert.Equal(t, errs.KindInvalidConfig, errs.KindOf(err))
	})

	t.Run("Should reject a disallowed region", func(t *testing.T) {
		event := testEvent()
		event.Atlas.AllowedRegions = []string{"EU_WEST_1"}
		svc := provision.NewService(mock.AtlasClient{}, mock.ClusterStore{}, eventStoreWith(event), logger)

		_, err := svc.ProvisionCluster(ctx, "event1", "team1", "user1", provision.Spec{Region: "US_EAST_1"})
		assert.Equal(t, errs.KindInvalidConfig, errs.KindOf(err))
	})

	t.Run("Should conflict when the team already has a live cluster", func(t *testing.T) {
		store := mock.ClusterStore{FindFn: func(ctx context.Context, filter cluster.Filter) ([]cluster.Cluster, error) {
			return []cluster.Cluster{{Status: cluster.StatusActive}}, nil
		}}
		svc := provision.NewService(mock.AtlasClient{}, store, eventStoreWith(testEvent()), logger)

		_, err := svc.ProvisionCluster(ctx, "event1", "team1", "user1", provision.Spec{})
		assert.Equal(t, errs.KindConflict, errs.KindOf(err))
	})

	t.Run("Should not persist a record when the external create fails", func(t *testing.T) {
		var inserts int
		atlasClient := mock.AtlasClient{CreateClusterFn: func(groupID string, spec atlas.ClusterSpec) (atlas.Cluster, error) {
			return atlas.Cluster{}, errors.New("atlas is down")
		}}
		store := mock.ClusterStore{
			FindFn: emptyFind,
			InsertFn: func(ctx context.Context, c *cluster.Cluster) error {
				inserts++
				return nil
			},
		}
		svc := provision.NewService(atlasClient, store, eventStoreWith(testEvent()), logger)

		_, err := svc.ProvisionCluster(ctx, "event1", "team1", "user1", provision.Spec{})
		assert.Equal(t, errs.KindProvisioningFailed, errs.KindOf(err))
		assert.Equal(t, 0, inserts)
	})

	t.Run("Should start provisioning with the event defaults", func(t *testing.T) {
		var gotSpec atlas.ClusterSpec
		var gotEntry *atlas.AccessListEntry

		event := testEvent()
		event.Atlas.OpenNetworkAccess = true

		atlasClient := mock.AtlasClient{
			CreateClusterFn: func(groupID string, spec atlas.ClusterSpec) (atlas.Cluster, error) {
				assert.Equal(t, "group1", groupID)
				gotSpec = spec
				return atlas.Cluster{Name: spec.Name, State: atlas.ClusterStateCreating}, nil
			},
			CreateAccessListEntryFn: func(groupID string, entry atlas.AccessListEntry) error {
				gotEntry = &entry
				return nil
			},
		}
		store := mock.ClusterStore{
			FindFn: emptyFind,
			InsertFn: func(ctx context.Context, c *cluster.Cluster) error {
				c.ID = primitive.NewObjectID()
				return nil
			},
		}
		svc := provision.NewService(atlasClient, store, eventStoreWith(event), logger)

		record, err := svc.ProvisionCluster(ctx, "event1", "team1", "user1", provision.Spec{})
		assert.Nil(t, err)
		assert.Equal(t, cluster.StatusProvisioning, record.Status)
		assert.Equal(t, cluster.ProviderAWS, record.Provider)
		assert.Equal(t, "US_EAST_1", record.Region)
		assert.Equal(t, "M10", record.InstanceSize)
		assert.Equal(t, "user1", record.ProvisionedBy)
		assert.Equal(t, 0, len(record.DatabaseUsers))

		assert.Equal(t, "hx-event1-team1", gotSpec.Name)
		assert.Equal(t, "AWS", gotSpec.Provider)
		assert.NotNil(t, gotEntry)
		assert.Equal(t, atlas.OpenAccessEntry, *gotEntry)
	})

	t.Run("Should tear down the orphan cluster after losing the provision race", func(t *testing.T) {
		var deletedName string
		atlasClient := mock.AtlasClient{
			CreateClusterFn: func(groupID string, spec atlas.ClusterSpec) (atlas.Cluster, error) {
				return atlas.Cluster{Name: spec.Name}, nil
			},
			DeleteClusterFn: func(groupID, name string) error {
				deletedName = name
				return nil
			},
		}
		store := mock.ClusterStore{
			FindFn: emptyFind,
			InsertFn: func(ctx context.Context, c *cluster.Cluster) error {
				return cluster.ErrDuplicateActive
			},
		}
		svc := provision.NewService(atlasClient, store, eventStoreWith(testEvent()), logger)

		_, err := svc.ProvisionCluster(ctx, "event1", "team1", "user1", provision.Spec{})
		assert.Equal(t, errs.KindConflict, errs.KindOf(err))
		assert.Equal(t, "hx-event1-team1", deletedName)
	})
}

func TestDeleteCluster(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	record := cluster.Cluster{
		ID:      primitive.NewObjectID(),
		GroupID: "group1",
		Name:    "hx-event1-team1",
		Status:  cluster.StatusActive,
	}

	storeFor := func(c cluster.Cluster) mock.ClusterStore {
		return mock.ClusterStore{
			GetFn: func(ctx context.Context, id string) (cluster.Cluster, error) {
				return c, nil
			},
			MarkDeletingFn: func(ctx context.Context, id string) (cluster.Cluster, error) {
				marked := c
				marked.Status = cluster.StatusDeleting
				return marked, nil
			},
			RemoveFn: func(ctx context.Context, id string) error { return nil },
		}
	}

	t.Run("Should fail when the cluster does not exist", func(t *testing.T) {
		store := mock.ClusterStore{GetFn: func(ctx context.Context, id string) (cluster.Cluster, error) {
			return cluster.Cluster{}, cluster.ErrNotFound
		}}
		svc := provision.NewService(mock.AtlasClient{}, store, mock.EventStore{}, logger)

		err := svc.DeleteCluster(ctx, record.ID.Hex())
		assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	})

	t.Run("Should delete the external cluster then remove the record", func(t *testing.T) {
		var externalDeletes, removes int
		atlasClient := mock.AtlasClient{DeleteClusterFn: func(groupID, name string) error {
			assert.Equal(t, "group1", groupID)
			assert.Equal(t, "hx-event1-team1", name)
			externalDeletes++
			return nil
		}}
		store := storeFor(record)
		store.RemoveFn = func(ctx context.Context, id string) error {
			removes++
			return nil
		}
		svc := provision.NewService(atlasClient, store, mock.EventStore{}, logger)

		assert.Nil(t, svc.DeleteCluster(ctx, record.ID.Hex()))
		assert.Equal(t, 1, externalDeletes)
		assert.Equal(t, 1, removes)
	})

	t.Run("Should treat an externally missing cluster as deleted", func(t *testing.T) {
		atlasClient := mock.AtlasClient{DeleteClusterFn: func(groupID, name string) error {
			return atlas.ErrNotFound{Resource: "cluster " + name}
		}}
		svc := provision.NewService(atlasClient, storeFor(record), mock.EventStore{}, logger)

		assert.Nil(t, svc.DeleteCluster(ctx, record.ID.Hex()))
	})

	t.Run("Should keep the record in deleting state when the external delete fails", func(t *testing.T) {
		var removes int
		atlasClient := mock.AtlasClient{DeleteClusterFn: func(groupID, name string) error {
			return errors.New("atlas is down")
		}}
		store := storeFor(record)
		store.RemoveFn = func(ctx context.Context, id string) error {
			removes++
			return nil
		}
		svc := provision.NewService(atlasClient, store, mock.EventStore{}, logger)

		err := svc.DeleteCluster(ctx, record.ID.Hex())
		assert.Equal(t, errs.KindDeletionFailed, errs.KindOf(err))
		assert.Equal(t, 0, removes)
	})

	t.Run("Should succeed for a cluster already marked deleted", func(t *testing.T) {
		deleted := record
		deleted.Status = cluster.StatusDeleted
		store := mock.ClusterStore{GetFn: func(ctx context.Context, id string) (cluster.Cluster, error) {
			return deleted, nil
		}}
		svc := provision.NewService(mock.AtlasClient{}, store, mock.EventStore{}, logger)

		assert.Nil(t, svc.DeleteCluster(ctx, record.ID.Hex()))
	})

	t.Run("Should succeed when a concurrent delete already removed the record", func(t *testing.T) {
		store := storeFor(record)
		store.MarkDeletingFn = func(ctx context.Context, id string) (cluster.Cluster, error) {
			return cluster.Cluster{}, cluster.ErrNotFound
		}
		svc := provision.NewService(mock.AtlasClient{}, store, mock.EventStore{}, logger)

		assert.Nil(t, svc.DeleteCluster(ctx, record.ID.Hex()))
	})
}

func TestCreateDatabaseUser(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	record := cluster.Cluster{
		ID:      primitive.NewObjectID(),
		EventID: "event1",
		GroupID: "group1",
		Name:    "hx-event1-team1",
		Status:  cluster.StatusActive,
	}

	t.Run("Should fail for a cluster that is not active", func(t *testing.T) {
		provisioning := record
		provisioning.Status = cluster.StatusProvisioning
		store := mock.ClusterStore{GetFn: func(ctx context.Context, id string) (cluster.Cluster, error) {
			return provisioning, nil
		}}
		svc := provision.NewService(mock.AtlasClient{}, store, eventStoreWith(testEvent()), logger)

		_, err := svc.CreateDatabaseUser(ctx, record.ID.Hex(), "team-user", nil)
		assert.Equal(t, errs.KindConflict, errs.KindOf(err))
	})

	t.Run("Should create a scoped user and return the password exactly once", func(t *testing.T) {
		var gotSpec atlas.DatabaseUserSpec
		atlasClient := mock.AtlasClient{CreateDatabaseUserFn: func(groupID string, spec atlas.DatabaseUserSpec) (atlas.DatabaseUser, error) {
			assert.Equal(t, "group1", groupID)
			gotSpec = spec
			return atlas.DatabaseUser{Username: spec.Username}, nil
		}}

		var pushedUser cluster.DatabaseUser
		store := mock.ClusterStore{
			GetFn: func(ctx context.Context, id string) (cluster.Cluster, error) {
				return record, nil
			},
			PushDatabaseUserFn: func(ctx context.Context, id string, user cluster.DatabaseUser, maxUsers int) (cluster.Cluster, error) {
				assert.Equal(t, 2, maxUsers)
				pushedUser = user
				updated := record
				updated.DatabaseUsers = []cluster.DatabaseUser{user}
				return updated, nil
			},
		}
		svc := provision.NewService(atlasClient, store, eventStoreWith(testEvent()), logger)

		creds, err := svc.CreateDatabaseUser(ctx, record.ID.Hex(), "team-user", nil)
		assert.Nil(t, err)
		assert.Equal(t, "team-user", creds.Username)
		assert.True(t, creds.Password != "", "expected a generated password")

		assert.Equal(t, creds.Password, gotSpec.Password)
		assert.Equal(t, []atlas.DatabaseUserRole{{RoleName: "readWriteAnyDatabase", DatabaseName: "admin"}}, gotSpec.Roles)
		assert.Equal(t, []atlas.DatabaseUserScope{{Name: "hx-event1-team1", Type: atlas.ScopeTypeCluster}}, gotSpec.Scopes)

		assert.Equal(t, []string{"readWriteAnyDatabase"}, pushedUser.Roles)
		assert.True(t, pushedUser.PasswordRef != "", "expected a password reference")
		assert.True(t, pushedUser.PasswordRef != creds.Password, "expected the plaintext password not to be persisted")
	})

	t.Run("Should remove the external user when the cluster is at its user limit", func(t *testing.T) {
		var externalDeletes int
		atlasClient := mock.AtlasClient{
			CreateDatabaseUserFn: func(groupID string, spec atlas.DatabaseUserSpec) (atlas.DatabaseUser, error) {
				return atlas.DatabaseUser{Username: spec.Username}, nil
			},
			DeleteDatabaseUserFn: func(groupID, username string) error {
				assert.Equal(t, "team-user", username)
				externalDeletes++
				return nil
			},
		}
		store := mock.ClusterStore{
			GetFn: func(ctx context.Context, id string) (cluster.Cluster, error) {
				return record, nil
			},
			PushDatabaseUserFn: func(ctx context.Context, id string, user cluster.DatabaseUser, maxUsers int) (cluster.Cluster, error) {
				return cluster.Cluster{}, cluster.ErrTooManyDatabaseUsers
			},
		}
		svc := provision.NewService(atlasClient, store, eventStoreWith(testEvent()), logger)

		_, err := svc.CreateDatabaseUser(ctx, record.ID.Hex(), "team-user", nil)
		assert.Equal(t, errs.KindConflict, errs.KindOf(err))
		assert.Equal(t, 1, externalDeletes)
	})
}

func TestDeleteDatabaseUser(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	record := cluster.Cluster{
		ID:      primitive.NewObjectID(),
		GroupID: "group1",
		Name:    "hx-event1-team1",
		Status:  cluster.StatusActive,
	}

	t.Run("Should remove the user externally and from the record", func(t *testing.T) {
		var pulls int
		atlasClient := mock.AtlasClient{DeleteDatabaseUserFn: func(groupID, username string) error {
			return nil
		}}
		store := mock.ClusterStore{
			GetFn: func(ctx context.Context, id string) (cluster.Cluster, error) {
				return record, nil
			},
			PullDatabaseUserFn: func(ctx context.Context, id, username string) (cluster.Cluster, error) {
				pulls++
				return record, nil
			},
		}
		svc := provision.NewService(atlasClient, store, mock.EventStore{}, logger)

		assert.Nil(t, svc.DeleteDatabaseUser(ctx, record.ID.Hex(), "team-user"))
		assert.Equal(t, 1, pulls)
	})

	t.Run("Should still prune a user already gone externally", func(t *testing.T) {
		var pulls int
		atlasClient := mock.AtlasClient{DeleteDatabaseUserFn: func(groupID, username string) error {
			return atlas.ErrNotFound{Resource: "database user " + username}
		}}
		store := mock.ClusterStore{
			GetFn: func(ctx context.Context, id string) (cluster.Cluster, error) {
				return record, nil
			},
			PullDatabaseUserFn: func(ctx context.Context, id, username string) (cluster.Cluster, error) {
				pulls++
				return record, nil
			},
		}
		svc := provision.NewService(atlasClient, store, mock.EventStore{}, logger)

		assert.Nil(t, svc.DeleteDatabaseUser(ctx, record.ID.Hex(), "team-user"))
		assert.Equal(t, 1, pulls)
	})

	t.Run("Should report an external failure without touching the record", func(t *testing.T) {
		var pulls int
		atlasClient := mock.AtlasClient{DeleteDatabaseUserFn: func(groupID, username string) error {
			return errors.New("atlas is down")
		}}
		store := mock.ClusterStore{
			GetFn: func(ctx context.Context, id string) (cluster.Cluster, error) {
				return record, nil
			},
			PullDatabaseUserFn: func(ctx context.Context, id, username string) (cluster.Cluster, error) {
				pulls++
				return record, nil
			},
		}
		svc := provision.NewService(atlasClient, store, mock.EventStore{}, logger)

		err := svc.DeleteDatabaseUser(ctx, record.ID.Hex(), "team-user")
		assert.Equal(t, errs.KindDeletionFailed, errs.KindOf(err))
		assert.Equal(t, 0, pulls)
	})
}
