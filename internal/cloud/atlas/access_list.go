package atlas

import (
	"fmt"
	"net/http"

	"github.com/hackforge/atlasman/internal/utils/api"
)

// AccessListEntry is a network address allowed to reach
// the clusters of an Atlas project
type AccessListEntry struct {
	CIDRBlock string `json:"cidrBlock"`
	Comment   string `json:"comment,omitempty"`
}

// OpenAccessEntry allows connections from anywhere; hackathon teams
// connect from venue networks we cannot enumerate ahead of time
var OpenAccessEntry = AccessListEntry{
	CIDRBlock: "0.0.0.0/0",
	Comment:   "hackforge: open network access",
}

const (
	accessListPattern = atlasAPI + "/groups/%s/accessList"
)

// CreateAccessListEntry adds an entry to the project's IP access list.
// Adding an entry that already exists is not an error on the Atlas side.
func (c *client) CreateAccessListEntry(groupID string, entry AccessListEntry) error {
	options, optionsErr := jsonRequestOptions([]AccessListEntry{entry})
	if optionsErr != nil {
		return optionsErr
	}

	res, err := c.doWithBaseURL(
		http.MethodPost,
		fmt.Sprintf(accessListPattern, groupID),
		options,
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated && res.StatusCode != http.StatusOK {
		return api.ErrUnexpectedStatusCode{Action: "create access list entry", StatusCode: res.StatusCode}
	}
	return nil
}
