package internal

import (
	"errors"
	"fmt"
)

// Generic errors
var (
	// ErrAccessNotPermitted is returned when an authorization check fails.
	ErrAccessNotPermitted = errors.New("access to the resource is not permitted")

	// ErrUnauthorized is returned when a request lacks a valid session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrResourceNotFound is returned when a resource cannot be found.
	ErrResourceNotFound = errors.New("resource not found")

	// ErrResourceAlreadyExists is returned when attempting to create a resource
	// that already exists.
	ErrResourceAlreadyExists = errors.New("resource already exists")

	// ErrRequiredName is returned when a name option is not present.
	ErrRequiredName = errors.New("name is required")

	// ErrInvalidName is returned when the name option has invalid value.
	ErrInvalidName = errors.New("invalid value for name")
)

type (
	// MissingParameterError occurs when the caller has failed to provide a
	// required parameter
	MissingParameterError struct {
		Parameter string
	}

	InvalidParameterError string
)

func (e InvalidParameterError) Error() string {
	return string(e)
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("required parameter missing: %s", e.Parameter)
}
