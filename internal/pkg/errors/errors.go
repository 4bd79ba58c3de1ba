package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable marks an inference collaborator failure. Callers must
	// degrade locally rather than propagate it out of the pipeline.
	ErrUnavailable = errors.New("collaborator unavailable")
	// ErrInvalidImage marks image bytes that could not be decoded.
	ErrInvalidImage = errors.New("invalid image")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
)

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
