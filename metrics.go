package relay

import (
	"sync"
	"time"
)

// MetricsSnapshot is a point-in-time copy of dispatch and wait activity.
type MetricsSnapshot struct {
	// Drain counters
	Drains        int `json:"drains"`
	Dispatched    int `json:"dispatched"`
	Unhandled     int `json:"unhandled"`
	HandlerErrors int `json:"handler_errors"`

	// Selective wait counters
	Discarded    int `json:"discarded"`
	WaitTimeouts int `json:"wait_timeouts"`

	// Per-kind breakdowns
	DispatchedByKind    map[Kind]int `json:"dispatched_by_kind,omitempty"`
	UnhandledByKind     map[Kind]int `json:"unhandled_by_kind,omitempty"`
	HandlerErrorsByKind map[Kind]int `json:"handler_errors_by_kind,omitempty"`
	DiscardedByKind     map[Kind]int `json:"discarded_by_kind,omitempty"`

	// Timestamp
	Timestamp time.Time `json:"timestamp"`
}

// Metrics is a thread-safe counter set covering the two lossy paths the
// dispatch layer has: kinds drained with no handler, and messages discarded
// by a selective wait. All record methods are safe on a nil receiver so
// internal call sites need no guards.
type Metrics struct {
	mu sync.Mutex

	drains        int
	dispatched    int
	unhandled     int
	handlerErrors int
	discarded     int
	waitTimeouts  int

	dispatchedByKind    map[Kind]int
	unhandledByKind     map[Kind]int
	handlerErrorsByKind map[Kind]int
	discardedByKind     map[Kind]int
}

// NewMetrics creates an empty Metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		dispatchedByKind:    make(map[Kind]int),
		unhandledByKind:     make(map[Kind]int),
		handlerErrorsByKind: make(map[Kind]int),
		discardedByKind:     make(map[Kind]int),
	}
}

// RecordDrain counts one DispatchAll invocation.
func (m *Metrics) RecordDrain() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drains++
}

// RecordDispatched counts one successful handler invocation.
func (m *Metrics) RecordDispatched(kind Kind) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatched++
	m.dispatchedByKind[kind]++
}

// RecordUnhandled counts one message drained with no registered handler.
func (m *Metrics) RecordUnhandled(kind Kind) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unhandled++
	m.unhandledByKind[kind]++
}

// RecordHandlerError counts one handler failure (which also aborts its drain).
func (m *Metrics) RecordHandlerError(kind Kind) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlerErrors++
	m.handlerErrorsByKind[kind]++
}

// RecordDiscarded counts one non-matching message dropped by a selective wait.
func (m *Metrics) RecordDiscarded(kind Kind) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discarded++
	m.discardedByKind[kind]++
}

// RecordWaitTimeout counts one selective wait ending in a timeout.
func (m *Metrics) RecordWaitTimeout() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waitTimeouts++
}

// Snapshot returns a point-in-time copy of all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{Timestamp: time.Now()}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	return MetricsSnapshot{
		Drains:              m.drains,
		Dispatched:          m.dispatched,
		Unhandled:           m.unhandled,
		HandlerErrors:       m.handlerErrors,
		Discarded:           m.discarded,
		WaitTimeouts:        m.waitTimeouts,
		DispatchedByKind:    copyKindCounts(m.dispatchedByKind),
		UnhandledByKind:     copyKindCounts(m.unhandledByKind),
		HandlerErrorsByKind: copyKindCounts(m.handlerErrorsByKind),
		DiscardedByKind:     copyKindCounts(m.discardedByKind),
		Timestamp:           time.Now(),
	}
}

// Reset resets all counters.
func (m *Metrics) Reset() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.drains = 0
	m.dispatched = 0
	m.unhandled = 0
	m.handlerErrors = 0
	m.discarded = 0
	m.waitTimeouts = 0
	m.dispatchedByKind = make(map[Kind]int)
	m.unhandledByKind = make(map[Kind]int)
	m.handlerErrorsByKind = make(map[Kind]int)
	m.discardedByKind = make(map[Kind]int)
}

func copyKindCounts(src map[Kind]int) map[Kind]int {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[Kind]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
