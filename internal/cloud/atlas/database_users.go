package atlas

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hackforge/atlasman/internal/utils/api"
)

const (
	adminAuthDatabase = "admin"
)

// DatabaseUser contains non sensitive data about an Atlas database user
type DatabaseUser struct {
	Username string `json:"username"`
}

// DatabaseUserSpec describes the Atlas database user to be created
type DatabaseUserSpec struct {
	Username string
	Password string
	Roles    []DatabaseUserRole
	Scopes   []DatabaseUserScope
}

// DatabaseUserRole grants a database user access to a database
type DatabaseUserRole struct {
	RoleName     string `json:"roleName"`
	DatabaseName string `json:"databaseName"`
}

// DatabaseUserScope restricts a database user to specific clusters
type DatabaseUserScope struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ScopeTypeCluster scopes a database user to a single cluster
const ScopeTypeCluster = "CLUSTER"

type createDatabaseUserRequest struct {
	Username     string              `json:"username"`
	Password     string              `json:"password"`
	DatabaseName string              `json:"databaseName"`
	Roles        []DatabaseUserRole  `json:"roles"`
	Scopes       []DatabaseUserScope `json:"scopes,omitempty"`
}

const (
	databaseUsersPattern = atlasAPI + "/groups/%s/databaseUsers"
	databaseUserPattern  = databaseUsersPattern + "/" + adminAuthDatabase + "/%s"
)

// CreateDatabaseUser creates a new Atlas database user
func (c *client) CreateDatabaseUser(groupID string, spec DatabaseUserSpec) (DatabaseUser, error) {
	options, optionsErr := jsonRequestOptions(createDatabaseUserRequest{
		Username:     spec.Username,
		Password:     spec.Password,
		DatabaseName: adminAuthDatabase,
		Roles:        spec.Roles,
		Scopes:       spec.Scopes,
	})
	if optionsErr != nil {
		return DatabaseUser{}, optionsErr
	}

	res, err := c.doWithBaseURL(
		http.MethodPost,
		fmt.Sprintf(databaseUsersPattern, groupID),
		options,
	)
	if err != nil {
		return DatabaseUser{}, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated {
		return DatabaseUser{}, api.ErrUnexpectedStatusCode{Action: "create database user", StatusCode: res.StatusCode}
	}

	var databaseUser DatabaseUser
	if err := json.NewDecoder(res.Body).Decode(&databaseUser); err != nil {
		return DatabaseUser{}, err
	}

	return databaseUser, nil
}

// DeleteDatabaseUser deletes the Atlas database user with the provided username
func (c *client) DeleteDatabaseUser(groupID, username string) error {
	res, err := c.doWithBaseURL(
		http.MethodDelete,
		fmt.Sprintf(databaseUserPattern, groupID, username),
		api.RequestOptions{},
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return ErrNotFound{"database user " + username}
	}
	if res.StatusCode != http.StatusAccepted && res.StatusCode != http.StatusOK &&
		res.StatusCode != http.StatusNoContent {
		return api.ErrUnexpectedStatusCode{Action: "delete database user", StatusCode: res.StatusCode}
	}
	return nil
}
