// Package apperr defines the sentinel errors shared across Attune services.
package apperr

import "errors"

var (
	// ErrNotFound is returned when a requested profile does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists is returned when creating a profile for a user that
	// already has one.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidConfiguration is returned for malformed profile fields or
	// invalid transformation parameters. Caller's responsibility; never retried.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrExternalService is returned when the generative-model collaborator
	// fails. Callers are expected to degrade to the local deterministic path.
	ErrExternalService = errors.New("external service failure")
)
