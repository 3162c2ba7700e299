package atlas

import (
	"errors"
	"net/http"

	"github.com/hackforge/atlasman/internal/utils/api"
)

// set of known MongoDB Cloud Atlas status errors
var (
	ErrServerUnavailable = errors.New("Atlas server is not available")
)

func (c *client) Status() error {
	res, err := c.doWithBaseURL(http.MethodGet, publicAPI, api.RequestOptions{NoAuth: c.transport == nil})
	if err != nil {
		return ErrServerUnavailable
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return ErrServerUnavailable
	}
	return nil
}
