package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when the referenced record id is absent.
var ErrNotFound = errors.New("not found")

// ValidationError reports booking input with required fields left empty.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// StorageError wraps a failure to durably persist a collection.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
