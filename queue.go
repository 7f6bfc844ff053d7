package relay

import (
	"sync"
	"time"
)

// DefaultQueueCapacity is the buffer size used when NewQueue is given a
// non-positive capacity.
const DefaultQueueCapacity = 100

// Producer is the sending half of a queue. Both MessageQueue and RemoteQueue
// satisfy it, so handler code can reply without knowing whether the peer is
// local or behind a bridge.
type Producer interface {
	Put(msg Message) error
}

// Queue is the FIFO the dispatch layer consumes from. The dispatcher never
// owns the queue; it borrows it for the duration of one drain or one wait
// call. Take and TryTake must remove each message exactly once and preserve
// per-producer arrival order.
type Queue interface {
	Producer

	// TryTake removes and returns the oldest buffered message, or ErrEmpty
	// without blocking when there is none.
	TryTake() (Message, error)

	// Take removes and returns the oldest buffered message, blocking until
	// one arrives. A positive timeout bounds the wait and surfaces as
	// ErrTimeout; timeout <= 0 waits forever.
	Take(timeout time.Duration) (Message, error)
}

// MessageQueue is a channel-backed Queue, safe for concurrent producers and
// consumers. Messages from a single producer are taken in the order they
// were put.
type MessageQueue struct {
	ch        chan Message
	done      chan struct{}
	closeOnce sync.Once
}

// NewQueue creates a MessageQueue with the given buffer capacity.
// Non-positive capacity selects DefaultQueueCapacity.
func NewQueue(capacity int) *MessageQueue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &MessageQueue{
		ch:   make(chan Message, capacity),
		done: make(chan struct{}),
	}
}

// Put appends msg to the queue, blocking while the buffer is full.
// Returns ErrClosed after Close.
func (q *MessageQueue) Put(msg Message) error {
	select {
	case <-q.done:
		return ErrClosed
	default:
	}

	select {
	case q.ch <- msg:
		return nil
	case <-q.done:
		return ErrClosed
	}
}

// TryTake removes the oldest buffered message without blocking.
func (q *MessageQueue) TryTake() (Message, error) {
	select {
	case msg := <-q.ch:
		return msg, nil
	default:
	}

	select {
	case <-q.done:
		return nil, ErrClosed
	default:
		return nil, ErrEmpty
	}
}

// Take removes the oldest buffered message, blocking up to timeout.
// timeout <= 0 blocks until a message arrives or the queue is closed.
func (q *MessageQueue) Take(timeout time.Duration) (Message, error) {
	if timeout <= 0 {
		select {
		case msg := <-q.ch:
			return msg, nil
		case <-q.done:
			return q.drainOrClosed()
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-q.ch:
		return msg, nil
	case <-timer.C:
		return nil, ErrTimeout
	case <-q.done:
		return q.drainOrClosed()
	}
}

// drainOrClosed lets takes racing with Close still observe buffered
// messages before reporting ErrClosed.
func (q *MessageQueue) drainOrClosed() (Message, error) {
	select {
	case msg := <-q.ch:
		return msg, nil
	default:
		return nil, ErrClosed
	}
}

// Len returns the number of currently buffered messages.
func (q *MessageQueue) Len() int {
	return len(q.ch)
}

// Close marks the queue closed. Buffered messages can still be taken;
// further puts fail with ErrClosed. Close is idempotent.
func (q *MessageQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
}
