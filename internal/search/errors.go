package search

import (
	"errors"
	"fmt"
)

// TransientError marks a search run that produced no results because every
// contributing strategy call failed. Callers should suggest a retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	if e.Err == nil {
		return "search: transient failure"
	}
	return fmt.Sprintf("search: transient failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Code implements the error-code contract used by handler summary logging.
func (e *TransientError) Code() string { return "SEARCH_TRANSIENT" }

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var t *TransientError
	return errors.As(err, &t)
}
