package atlas

import (
	"bytes"
	"encoding/json"

	"github.com/hackforge/atlasman/internal/utils/api"
)

// jsonRequestOptions returns RequestOptions configured
// to send the provided payload as JSON
func jsonRequestOptions(payload interface{}) (api.RequestOptions, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return api.RequestOptions{}, err
	}
	return api.RequestOptions{
		Body:        bytes.NewReader(body),
		ContentType: api.MediaTypeJSON,
	}, nil
}
