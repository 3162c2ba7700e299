package atlas

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hackforge/atlasman/internal/utils/api"
)

// set of supported Atlas cluster states
const (
	ClusterStateIdle      = "IDLE"
	ClusterStateCreating  = "CREATING"
	ClusterStateUpdating  = "UPDATING"
	ClusterStateRepairing = "REPAIRING"
	ClusterStateDeleting  = "DELETING"
	ClusterStateDeleted   = "DELETED"
)

// Cluster contains non sensitive data about an Atlas cluster
type Cluster struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	State            string `json:"stateName"`
	ConnectionString string `json:"-"`
}

// ClusterSpec describes the Atlas cluster to be created
type ClusterSpec struct {
	Name         string
	Provider     string
	Region       string
	InstanceSize string
}

type clusterResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	State             string `json:"stateName"`
	ConnectionStrings struct {
		StandardSrv string `json:"standardSrv"`
	} `json:"connectionStrings"`
}

func (res clusterResponse) cluster() Cluster {
	return Cluster{
		ID:               res.ID,
		Name:             res.Name,
		State:            res.State,
		ConnectionString: res.ConnectionStrings.StandardSrv,
	}
}

type createClusterRequest struct {
	Name             string                 `json:"name"`
	ProviderSettings clusterProviderSetting `json:"providerSettings"`
}

type clusterProviderSetting struct {
	ProviderName     string `json:"providerName"`
	RegionName       string `json:"regionName"`
	InstanceSizeName string `json:"instanceSizeName"`
}

const (
	clustersPattern = atlasAPI + "/groups/%s/clusters"
	clusterPattern  = clustersPattern + "/%s"
)

// CreateCluster starts the asynchronous creation of an Atlas cluster.
// The returned cluster is not yet usable, its state reflects the
// in-flight creation job.
func (c *client) CreateCluster(groupID string, spec ClusterSpec) (Cluster, error) {
	options, optionsErr := jsonRequestOptions(createClusterRequest{
		Name: spec.Name,
		ProviderSettings: clusterProviderSetting{
			ProviderName:     spec.Provider,
			RegionName:       spec.Region,
			InstanceSizeName: spec.InstanceSize,
		},
	})
	if optionsErr != nil {
		return Cluster{}, optionsErr
	}

	res, err := c.doWithBaseURL(
		http.MethodPost,
		fmt.Sprintf(clustersPattern, groupID),
		options,
	)
	if err != nil {
		return Cluster{}, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated {
		return Cluster{}, api.ErrUnexpectedStatusCode{Action: "create cluster", StatusCode: res.StatusCode}
	}

	var cluster clusterResponse
	if err := json.NewDecoder(res.Body).Decode(&cluster); err != nil {
		return Cluster{}, err
	}

	return cluster.cluster(), nil
}

// Cluster describes a single Atlas cluster by name
func (c *client) Cluster(groupID, name string) (Cluster, error) {
	res, err := c.doWithBaseURL(
		http.MethodGet,
		fmt.Sprintf(clusterPattern, groupID, name),
		api.RequestOptions{},
	)
	if err != nil {
		return Cluster{}, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return Cluster{}, ErrNotFound{"cluster " + name}
	}
	if res.StatusCode != http.StatusOK {
		return Cluster{}, api.ErrUnexpectedStatusCode{Action: "get cluster", StatusCode: res.StatusCode}
	}

	var cluster clusterResponse
	if err := json.NewDecoder(res.Body).Decode(&cluster); err != nil {
		return Cluster{}, err
	}

	return cluster.cluster(), nil
}

// DeleteCluster starts the asynchronous deletion of an Atlas cluster
func (c *client) DeleteCluster(groupID, name string) error {
	res, err := c.doWithBaseURL(
		http.MethodDelete,
		fmt.Sprintf(clusterPattern, groupID, name),
		api.RequestOptions{},
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return ErrNotFound{"cluster " + name}
	}
	if res.StatusCode != http.StatusAccepted && res.StatusCode != http.StatusOK {
		return api.ErrUnexpectedStatusCode{Action: "delete cluster", StatusCode: res.StatusCode}
	}
	return nil
}
