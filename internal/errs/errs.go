// Package errs carries the error taxonomy shared by the cluster
// lifecycle services. Callers map kinds to transport status codes;
// this package only classifies.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a service error
type Kind int

// set of known service error kinds
const (
	KindUnknown Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindFeatureDisabled
	KindInvalidConfig
	KindConflict
	KindProvisioningFailed
	KindDeletionFailed
)

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindFeatureDisabled:
		return "feature disabled"
	case KindInvalidConfig:
		return "invalid config"
	case KindConflict:
		return "conflict"
	case KindProvisioningFailed:
		return "provisioning failed"
	case KindDeletionFailed:
		return "deletion failed"
	}
	return "unknown"
}

// New creates a new service error
func New(kind Kind, message string) Error {
	return Error{kind: kind, message: message}
}

// Newf creates a new service error with a formatted message
func Newf(kind Kind, format string, args ...interface{}) Error {
	return Error{kind: kind, message: fmt.Sprintf(format, args...)}
}

// Wrap creates a new service error with the wrapped cause's details
// hidden from the resulting error message
func Wrap(kind Kind, message string, cause error) Error {
	return Error{kind: kind, message: message, cause: cause}
}

// Error is a service error with a classified kind
type Error struct {
	kind    Kind
	message string
	cause   error
}

func (err Error) Error() string { return err.message }

// Kind returns the error's classification
func (err Error) Kind() Kind { return err.kind }

// Unwrap unwraps the error's root cause
func (err Error) Unwrap() error { return err.cause }

func (err Error) String() string {
	if err.cause == nil {
		return err.message
	}
	return fmt.Sprintf("%s: %s", err.message, err.cause)
}

// KindOf returns the kind of the provided error,
// or KindUnknown if the error is not a service error
func KindOf(err error) Kind {
	var e Error
	if errors.As(err, &e) {
		return e.kind
	}
	return KindUnknown
}
