package auth

import (
	"context"
	"errors"
)

// ErrNoSession is returned when no authenticated caller is attached to
// the request context
var ErrNoSession = errors.New("no authenticated session")

// Sessions resolves the authenticated caller for a request. The
// platform's session middleware owns the implementation; tests and the
// CLI provide their own.
type Sessions interface {
	Current(ctx context.Context) (Identity, error)
}

// StaticSession is a Sessions implementation fixed to a single identity,
// used by the operational CLI which runs under a service identity
type StaticSession struct {
	Identity Identity
}

// Current returns the fixed identity
func (s StaticSession) Current(context.Context) (Identity, error) {
	if s.Identity.UserID == "" {
		return Identity{}, ErrNoSession
	}
	return s.Identity, nil
}
