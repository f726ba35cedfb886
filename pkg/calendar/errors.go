package calendar

import (
	"errors"
	"fmt"
)

var ErrNotConfigured = errors.New("google calendar is not configured")

// ErrProvider wraps a failed Calendar API call.
type ErrProvider struct {
	Op     string
	Status int
	Err    error
}

func (e ErrProvider) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("calendar %s failed (status %d): %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("calendar %s failed: %v", e.Op, e.Err)
}

func (e ErrProvider) Unwrap() error { return e.Err }
