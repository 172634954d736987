package remote

import (
	"errors"
	"fmt"
)

// ErrUnavailable is wrapped by every failure to talk to the remote store.
var ErrUnavailable = errors.New("remote store unavailable")

// Error describes a failed remote store call.
type Error struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("remote %s: status %d: %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("remote %s: status %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("remote %s failed", e.Op)
	}
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrUnavailable}
	}
	return []error{ErrUnavailable, e.Err}
}
