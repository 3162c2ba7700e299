package atlas

import (
	"encoding/json"
	"net/http"

	"github.com/hackforge/atlasman/internal/utils/api"
)

const (
	groupsPath = publicAPI + "/groups"
)

// Group is an Atlas project that clusters are provisioned into
type Group struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type groupResponse struct {
	Results []Group `json:"results"`
}

// Groups lists the Atlas projects the configured credentials can reach.
// It doubles as a credential check since it requires authentication.
func (c *client) Groups() ([]Group, error) {
	res, resErr := c.doWithBaseURL(
		http.MethodGet,
		groupsPath,
		api.RequestOptions{},
	)
	if resErr != nil {
		return nil, resErr
	}
	if res.StatusCode != http.StatusOK {
		return nil, api.ErrUnexpectedStatusCode{Action: "get groups", StatusCode: res.StatusCode}
	}
	defer res.Body.Close()

	var groupRes groupResponse
	if err := json.NewDecoder(res.Body).Decode(&groupRes); err != nil {
		return nil, err
	}
	return groupRes.Results, nil
}
