package services

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed user input (bad regex, bad id syntax).
	ErrValidation = errors.New("validation error")
	// ErrConflict marks a remote resource that already exists.
	ErrConflict = errors.New("conflict")
	// ErrNotFound marks an absent batch/scene/rule id on a command.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks any other network or remote failure.
	ErrTransient = errors.New("transient failure")
)

// ConflictError reports a duplicate scene on the media server. HasLocalFile
// distinguishes a true duplicate (file present) from a stub record without a
// file, for which the client has already triggered a follow-up search. Title
// carries the remote title when the server returned one.
type ConflictError struct {
	HasLocalFile bool
	Title        string
}

func (e *ConflictError) Error() string {
	if e.HasLocalFile {
		return "scene already exists with a local file"
	}
	return "scene already exists without a local file; search triggered"
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// NotFound builds an ErrNotFound with entity context.
func NotFound(entity, id string) error {
	return fmt.Errorf("%w: %s %q", ErrNotFound, entity, id)
}

// Transient wraps err as a retryable remote failure.
func Transient(operation string, err error) error {
	if err == nil {
		return fmt.Errorf("%w: %s", ErrTransient, operation)
	}
	return fmt.Errorf("%w: %s: %w", ErrTransient, operation, err)
}
