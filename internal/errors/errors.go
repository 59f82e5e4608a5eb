package errors

import "errors"

// This package defines a centralized set of sentinel errors for the pipeline.
// Components return these (usually wrapped) so callers can branch with
// `errors.Is()` without depending on transport or storage details.

var (
	// ErrNotFound signifies that a requested resource could not be located.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that input data failed validation.
	// The control API maps it to a 400 Bad Request.
	ErrValidation = errors.New("validation failed")

	// ErrAuthentication is the terminal error returned by the request gateway
	// after a refresh-and-retry cycle still ends in 401/403.
	ErrAuthentication = errors.New("authentication failed")

	// ErrUnattributed is returned when an observed message cannot be tied to
	// any conversation and was dropped.
	ErrUnattributed = errors.New("message has no conversation")

	// ErrInternal signifies an unexpected error. The control API uses it to
	// avoid leaking implementation details.
	ErrInternal = errors.New("internal server error")
)
