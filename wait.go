package relay

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// WaitFor blocks until a message whose kind is in kinds arrives on q and
// returns it. Anything else taken along the way is discarded with a debug
// log; discarded messages are gone, so callers awaiting a reply should not
// share the queue with unrelated traffic they still need.
//
// A positive timeout bounds each individual take, not the whole call: a
// mismatched stream that keeps delivering unwanted messages resets the clock
// every time and can starve the caller indefinitely. On expiry the error is
// a *WaitTimeoutError, which unwraps to ErrTimeout. timeout <= 0 waits
// forever.
//
// An empty kinds slice can never match; the call then only ends via the
// timeout (or never, without one). Callers must supply at least one kind.
func WaitFor(q Queue, kinds []Kind, timeout time.Duration) (Message, error) {
	return waitFor(q, kinds, timeout, defaultLogger(), nil)
}

// WaitForKind is shorthand for WaitFor with a single wanted kind.
func WaitForKind(q Queue, kind Kind, timeout time.Duration) (Message, error) {
	return WaitFor(q, []Kind{kind}, timeout)
}

func waitFor(q Queue, kinds []Kind, timeout time.Duration, logger *log.Logger, m *Metrics) (Message, error) {
	wanted := make(map[Kind]struct{}, len(kinds))
	for _, k := range kinds {
		wanted[k] = struct{}{}
	}

	logger.Debug("waiting for message", "kinds", kinds, "timeout", timeout)
	if len(wanted) == 0 {
		logger.Debug("no wanted kinds; only the timeout can end this wait")
	}

	for {
		msg, err := q.Take(timeout)
		if errors.Is(err, ErrTimeout) {
			m.RecordWaitTimeout()
			return nil, &WaitTimeoutError{Kinds: kinds, Timeout: timeout}
		}
		if err != nil {
			return nil, fmt.Errorf("take failed: %w", err)
		}

		if _, ok := wanted[msg.Kind()]; ok {
			return msg, nil
		}

		logger.Debug("discarding message", "kind", msg.Kind(), "sender", msg.Sender())
		m.RecordDiscarded(msg.Kind())
	}
}
