package relay

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// Dispatcher drains a queue and routes each message to the handler its
// registry associates with the message's kind. A Dispatcher holds no queue
// state of its own and may serve any number of queues.
type Dispatcher struct {
	registry *Registry
	logger   *log.Logger
	metrics  *Metrics
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithLogger replaces the package default logger.
func WithLogger(logger *log.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// WithMetrics replaces the dispatcher's metrics collector, e.g. to share one
// collector across several dispatchers.
func WithMetrics(m *Metrics) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// NewDispatcher creates a Dispatcher over the given registry.
func NewDispatcher(registry *Registry, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		logger:   defaultLogger(),
		metrics:  NewMetrics(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Metrics returns the dispatcher's metrics collector.
func (d *Dispatcher) Metrics() *Metrics {
	return d.metrics
}

// DispatchAll drains every message currently buffered on q and invokes the
// registered handler for each, in arrival order. It never blocks: the drain
// ends, with a nil error, the moment the queue reports empty. A message
// arriving after that check belongs to the next call.
//
// Messages whose kind has no registered handler are logged at debug level
// and dropped. A handler error stops the drain immediately and is returned;
// messages behind the failing one stay on the queue for the next call.
//
// Handlers run on the calling goroutine. A handler may put new messages on
// the queue or consume from it via WaitFor; the dispatcher does not
// synchronize those interactions.
func (d *Dispatcher) DispatchAll(q Queue) error {
	d.metrics.RecordDrain()

	for {
		msg, err := q.TryTake()
		if errors.Is(err, ErrEmpty) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("take failed: %w", err)
		}

		d.logger.Debug("handling message", "kind", msg.Kind(), "sender", msg.Sender())

		handler, ok := d.registry.Handler(msg.Kind())
		if !ok {
			d.logger.Debug("no handler registered for message",
				"kind", msg.Kind(), "sender", msg.Sender())
			d.metrics.RecordUnhandled(msg.Kind())
			continue
		}

		if err := handler(msg); err != nil {
			d.metrics.RecordHandlerError(msg.Kind())
			return fmt.Errorf("handler for kind %q failed: %w", msg.Kind(), err)
		}
		d.metrics.RecordDispatched(msg.Kind())
	}
}

// WaitFor is the selective wait bound to this dispatcher's logger and
// metrics; see the package-level WaitFor for the contract.
func (d *Dispatcher) WaitFor(q Queue, kinds []Kind, timeout time.Duration) (Message, error) {
	return waitFor(q, kinds, timeout, d.logger, d.metrics)
}
