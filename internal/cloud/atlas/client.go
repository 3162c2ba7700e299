package atlas

import (
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/hackforge/atlasman/internal/cli/user"
	"github.com/hackforge/atlasman/internal/utils/api"

	"github.com/edaniels/digest"
)

const (
	publicAPI = "/api/public/v1.0"
	atlasAPI  = "/api/atlas/v1.0"

	userAgentHeader = "User-Agent"
	userAgentValue  = "Hackforge-Atlasman"
)

// Client is a MongoDB Cloud Atlas control-plane client. Cluster creation
// and deletion start asynchronous jobs on the Atlas side; completion is
// only ever observed through Cluster describe calls.
type Client interface {
	CreateCluster(groupID string, spec ClusterSpec) (Cluster, error)
	Cluster(groupID, name string) (Cluster, error)
	DeleteCluster(groupID, name string) error

	CreateDatabaseUser(groupID string, spec DatabaseUserSpec) (DatabaseUser, error)
	DeleteDatabaseUser(groupID, username string) error

	CreateAccessListEntry(groupID string, entry AccessListEntry) error

	Groups() ([]Group, error)
	Status() error
}

// NewClient returns a new MongoDB Cloud Atlas client
func NewClient(baseURL string) Client {
	return &client{baseURL: baseURL}
}

// NewAuthClient returns a new authenticated MongoDB Cloud Atlas client
func NewAuthClient(baseURL string, creds user.Credentials) Client {
	return &client{
		baseURL:   baseURL,
		transport: digest.NewTransport(creds.PublicAPIKey, creds.PrivateAPIKey),
	}
}

type client struct {
	baseURL   string
	transport *digest.Transport
}

func (c *client) doWithBaseURL(method, path string, options api.RequestOptions) (*http.Response, error) {
	return c.doWithURL(method, c.baseURL+path, options)
}

func (c *client) doWithURL(method, url string, options api.RequestOptions) (*http.Response, error) {
	req, reqErr := http.NewRequest(method, url, options.Body)
	if reqErr != nil {
		return nil, reqErr
	}

	api.IncludeQuery(req, options.Query)

	req.Header.Set(userAgentHeader, userAgentValue)

	if options.ContentType != "" {
		req.Header.Set(api.HeaderContentType, options.ContentType)
	}

	client := &http.Client{}
	client.Timeout = time.Second * 20

	if c.transport == nil {
		if !options.NoAuth {
			return nil, ErrMissingAuth
		}
		return client.Do(req)
	}
	client.Transport = c.transport

	res, resErr := client.Do(req)
	if resErr != nil {
		if netErr, ok := resErr.(net.Error); ok && netErr.Timeout() {
			return nil, errServerError{"request timed out after " + client.Timeout.String()}
		}
		return nil, errServerError{}
	}

	if res.StatusCode == http.StatusUnauthorized {
		defer res.Body.Close()

		var errRes errResponse
		if err := json.NewDecoder(res.Body).Decode(&errRes); err != nil {
			return nil, ErrUnauthorized{err.Error()}
		}
		return nil, ErrUnauthorized{errRes.Detail}
	}

	if res.StatusCode == http.StatusForbidden {
		return nil, errForbidden(res.Status)
	}

	return res, nil
}
