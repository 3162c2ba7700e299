package atlas

import (
	"errors"
	"fmt"
)

var (
	errCommonServerError = "an unexpected server error has occurred"

	errCommonUnauthorized = "failed to authenticate with MongoDB Cloud API"

	errCommonForbidden = "please check your Atlas API access list entries to " +
		"ensure that requests from this IP address are allowed"
)

// set of known MongoDB Cloud Atlas errors
var (
	ErrMissingAuth = errors.New("must provide auth details")
)

type errResponse struct {
	Detail    string `json:"detail"`
	Error     int    `json:"error"`
	ErrorCode string `json:"errorCode"`
}

type errServerError struct {
	reason string
}

func (err errServerError) Error() string {
	if err.reason == "" {
		return errCommonServerError
	}
	return fmt.Sprintf("%s: %s", errCommonServerError, err.reason)
}

// ErrUnauthorized is an unauthorized error
type ErrUnauthorized struct {
	Reason string
}

func (err ErrUnauthorized) Error() string {
	return fmt.Sprintf("%s: %s", errCommonUnauthorized, err.Reason)
}

func errForbidden(status string) error {
	return fmt.Errorf("(%s) %s", status, errCommonForbidden)
}

// ErrNotFound is returned when the requested Atlas resource does not
// exist. Deletes treat it as success, describes treat it as the
// resource having been torn down externally.
type ErrNotFound struct {
	Resource string
}

func (err ErrNotFound) Error() string {
	return fmt.Sprintf("%s could not be found", err.Resource)
}

// IsNotFound determines whether the provided error
// signals a missing Atlas resource
func IsNotFound(err error) bool {
	var errNotFound ErrNotFound
	return errors.As(err, &errNotFound)
}
