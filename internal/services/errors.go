package services

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is returned for a missing token and for an unknown one alike.
	ErrUnauthorized = errors.New("Unauthorized")
	// ErrNotFound covers both absent records and records owned by someone else.
	ErrNotFound = errors.New("Not found")
	// ErrBlobNotFound is returned by blob stores when nothing exists at a path.
	ErrBlobNotFound = errors.New("blob not found")
)

// ValidationError is a client input problem. Message is sent back verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// StorageError wraps a failure of the blob store or the metadata store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// JobError is returned by job handlers. Fatal errors can never succeed on
// redelivery.
type JobError struct {
	Reason string
	Fatal  bool
	Err    error
}

func (e *JobError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *JobError) Unwrap() error {
	return e.Err
}

// IsFatalJobError reports whether err carries a fatal JobError.
func IsFatalJobError(err error) bool {
	var jobErr *JobError
	return errors.As(err, &jobErr) && jobErr.Fatal
}

// StatusFor maps an error to its HTTP status and the message sent to the
// client. Storage failures never leak their cause.
func StatusFor(err error) (int, string) {
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, ErrUnauthorized.Error()
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, ErrNotFound.Error()
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}
