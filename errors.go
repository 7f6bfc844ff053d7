package relay

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmpty is returned by a non-blocking take when nothing is buffered.
	// DispatchAll treats it as the normal end of a drain, never as a failure.
	ErrEmpty = errors.New("queue empty")

	// ErrTimeout is returned when a blocking take outlives its timeout.
	ErrTimeout = errors.New("wait timed out")

	// ErrClosed is returned for operations on a closed queue.
	ErrClosed = errors.New("queue closed")

	// ErrUnknownKind is returned when decoding an envelope whose kind has no
	// registered factory.
	ErrUnknownKind = errors.New("unknown message kind")
)

// WaitTimeoutError is returned by WaitFor when no matching message arrived
// within the per-take timeout. It unwraps to ErrTimeout.
type WaitTimeoutError struct {
	Kinds   []Kind
	Timeout time.Duration
}

func (e *WaitTimeoutError) Error() string {
	return fmt.Sprintf("no message of kinds %v within %v", e.Kinds, e.Timeout)
}

// Unwrap returns ErrTimeout for errors.Is support
func (e *WaitTimeoutError) Unwrap() error {
	return ErrTimeout
}
