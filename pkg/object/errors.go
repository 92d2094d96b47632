package object

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingObject is returned by typed reads when the store holds no
	// object under the requested id.
	ErrMissingObject = errors.New("missing object")

	// ErrMalformedObject is returned when stored bytes cannot be decoded
	// into the requested type.
	ErrMalformedObject = errors.New("malformed object")
)

// StoreError records a failed filesystem operation inside a DiskStore.
type StoreError struct {
	Op   string // "read", "write", "stat", ...
	Path string
	Err  error
}

func (e *StoreError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("object store %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StoreError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func missingObject(h Hash) error {
	return fmt.Errorf("object %s: %w", h, ErrMissingObject)
}

func malformedObject(h Hash, err error) error {
	return fmt.Errorf("object %s: %w: %v", h, ErrMalformedObject, err)
}
