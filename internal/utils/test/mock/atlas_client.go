package mock

import "github.com/hackforge/atlasman/internal/cloud/atlas"

// AtlasClient is a mocked Atlas client
type AtlasClient struct {
	atlas.Client
	CreateClusterFn         func(groupID string, spec atlas.ClusterSpec) (atlas.Cluster, error)
	ClusterFn               func(groupID, name string) (atlas.Cluster, error)
	DeleteClusterFn         func(groupID, name string) error
	CreateDatabaseUserFn    func(groupID string, spec atlas.DatabaseUserSpec) (atlas.DatabaseUser, error)
	DeleteDatabaseUserFn    func(groupID, username string) error
	CreateAccessListEntryFn func(groupID string, entry atlas.AccessListEntry) error
	GroupsFn                func() ([]atlas.Group, error)
	StatusFn                func() error
}

// CreateCluster calls the mocked CreateCluster implementation if provided,
// otherwise the call falls back to the underlying atlas.Client implementation.
// NOTE: this may panic if the underlying atlas.Client is left undefined
func (ac AtlasClient) CreateCluster(groupID string, spec atlas.ClusterSpec) (atlas.Cluster, error) {
	if ac.CreateClusterFn != nil {
		return ac.CreateClusterFn(groupID, spec)
	}
	return ac.Client.CreateCluster(groupID, spec)
}

// Cluster calls the mocked Cluster implementation if provided,
// otherwise the call falls back to the underlying atlas.Client implementation.
// NOTE: this may panic if the underlying atlas.Client is left undefined
func (ac AtlasClient) Cluster(groupID, name string) (atlas.Cluster, error) {
	if ac.ClusterFn != nil {
		return ac.ClusterFn(groupID, name)
	}
	return ac.Client.Cluster(groupID, name)
}

// DeleteCluster calls the mocked DeleteCluster implementation if provided,
// otherwise the call falls back to the underlying atlas.Client implementation.
// NOTE: this may panic if the underlying atlas.Client is left undefined
func (ac AtlasClient) DeleteCluster(groupID, name string) error {
	if ac.DeleteClusterFn != nil {
		return ac.DeleteClusterFn(groupID, name)
	}
	return ac.Client.DeleteCluster(groupID, name)
}

// CreateDatabaseUser calls the mocked CreateDatabaseUser implementation if provided,
// otherwise the call falls back to the underlying atlas.Client implementation.
// NOTE: this may panic if the underlying atlas.Client is left undefined
func (ac AtlasClient) CreateDatabaseUser(groupID string, spec atlas.DatabaseUserSpec) (atlas.DatabaseUser, error) {
	if ac.CreateDatabaseUserFn != nil {
		return ac.CreateDatabaseUserFn(groupID, spec)
	}
	return ac.Client.CreateDatabaseUser(groupID, spec)
}

// DeleteDatabaseUser calls the mocked DeleteDatabaseUser implementation if provided,
// otherwise the call falls back to the underlying atlas.Client implementation.
// NOTE: this may panic if the underlying atlas.Client is left undefined
func (ac AtlasClient) DeleteDatabaseUser(groupID, username string) error {
	if ac.DeleteDatabaseUserFn != nil {
		return ac.DeleteDatabaseUserFn(groupID, username)
	}
	return ac.Client.DeleteDatabaseUser(groupID, username)
}

// CreateAccessListEntry calls the mocked CreateAccessListEntry implementation if provided,
// otherwise the call falls back to the underlying atlas.Client implementation.
// NOTE: this may panic if the underlying atlas.Client is left undefined
func (ac AtlasClient) CreateAccessListEntry(groupID string, entry atlas.AccessListEntry) error {
	if ac.CreateAccessListEntryFn != nil {
		return ac.CreateAccessListEntryFn(groupID, entry)
	}
	return ac.Client.CreateAccessListEntry(groupID, entry)
}

// Groups calls the mocked Groups implementation if provided,
// otherwise the call falls back to the underlying atlas.Client implementation.
// NOTE: this may panic if the underlying atlas.Client is left undefined
func (ac AtlasClient) Groups() ([]atlas.Group, error) {
	if ac.GroupsFn != nil {
		return ac.GroupsFn()
	}
	return ac.Client.Groups()
}

// Status calls the mocked Status implementation if provided,
// otherwise the call falls back to the underlying atlas.Client implementation.
// NOTE: this may panic if the underlying atlas.Client is left undefined
func (ac AtlasClient) Status() error {
	if ac.StatusFn != nil {
		return ac.StatusFn()
	}
	return ac.Client.Status()
}
