package atlas_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hackforge/atlasman/internal/cli/user"
	"github.com/hackforge/atlasman/internal/cloud/atlas"
	"github.com/hackforge/atlasman/internal/utils/test/assert"
)

func TestCreateDatabaseUser(t *testing.T) {
	t.Run("Should create a database user scoped to a cluster", func(t *testing.T) {
		var gotBody map[string]interface{}

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/atlas/v1.0/groups/groupID/databaseUsers", r.URL.Path)
			assert.Nil(t, json.NewDecoder(r.Body).Decode(&gotBody))

			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"username":"team-user"}`)
		}))
		defer server.Close()

		client := atlas.NewAuthClient(server.URL, user.Credentials{PublicAPIKey: "username", PrivateAPIKey: "apiKey"})

		databaseUser, err := client.CreateDatabaseUser("groupID", atlas.DatabaseUserSpec{
			Username: "team-user",
			Password: "secret",
			Roles:    []atlas.DatabaseUserRole{{RoleName: "readWriteAnyDatabase", DatabaseName: "admin"}},
			Scopes:   []atlas.DatabaseUserScope{{Name: "hx-test", Type: atlas.ScopeTypeCluster}},
		})
		assert.Nil(t, err)
		assert.Equal(t, atlas.DatabaseUser{Username: "team-user"}, databaseUser)
		assert.Equal(t, "admin", gotBody["databaseName"])
	})
}

func TestDeleteDatabaseUser(t *testing.T) {
	for _, tc := range []struct {
		description string
		statusCode  int
		expectedErr error
	}{
		{"Should accept a successful delete", http.StatusAccepted, nil},
		{"Should report a missing user as not found", http.StatusNotFound, atlas.ErrNotFound{Resource: "database user team-user"}},
	} {
		t.Run(tc.description, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/atlas/v1.0/groups/groupID/databaseUsers/admin/team-user", r.URL.Path)
				w.WriteHeader(tc.statusCode)
			}))
			defer server.Close()

			client := atlas.NewAuthClient(server.URL, user.Credentials{PublicAPIKey: "username", PrivateAPIKey: "apiKey"})

			err := client.DeleteDatabaseUser("groupID", "team-user")
			assert.Equal(t, tc.expectedErr, err)
		})
	}
}

func TestCreateAccessListEntry(t *testing.T) {
	t.Run("Should add an access list entry", func(t *testing.T) {
		var gotBody []atlas.AccessListEntry

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/atlas/v1.0/groups/groupID/accessList", r.URL.Path)
			assert.Nil(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client := atlas.NewAuthClient(server.URL, user.Credentials{PublicAPIKey: "username", PrivateAPIKey: "apiKey"})

		assert.Nil(t, client.CreateAccessListEntry("groupID", atlas.OpenAccessEntry))
		assert.Equal(t, []atlas.AccessListEntry{atlas.OpenAccessEntry}, gotBody)
	})
}
