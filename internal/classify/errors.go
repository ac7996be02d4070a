package classify

import (
	"errors"
	"fmt"
)

// ErrInvalidInput signals an empty or missing required field. Surfaced
// immediately to the caller, never retried.
var ErrInvalidInput = errors.New("invalid input")

// ErrNoUsableData signals that retraining found no eligible (text, label)
// pairs; no mutation occurred.
var ErrNoUsableData = errors.New("no usable training data")

// ErrIndeterminateState signals that a restore after a failed retrain itself
// failed: the live artifacts may be inconsistent and operator attention is
// required.
var ErrIndeterminateState = errors.New("classifier artifacts may be in an indeterminate state")

// FetchError wraps a content-source failure (network error or timeout) for a
// specific URL.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// PersistenceError wraps an artifact load/save failure. During retraining it
// triggers the backup-restore path.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
