package relay

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
)

// Handler is the normalized form every registered handler is reduced to.
// The dispatcher always calls handlers with the message; a non-nil error
// aborts the remainder of the drain that invoked it.
type Handler func(msg Message) error

// Registry maps message kinds to handlers for one receiver type. Build it
// once during program initialization; it is read-only afterwards and safe
// to share across every instance of the receiver and across goroutines.
type Registry struct {
	handlers map[Kind]Handler
	logger   *log.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[Kind]Handler),
		logger:   defaultLogger(),
	}
}

// On registers a handler for kind and returns the registry so registrations
// chain into a declarative table. Accepted handler shapes:
//
//	func(relay.Message) error
//	func(relay.Message)
//	func() error
//	func()
//
// The shape is inspected once here and cached as a uniform Handler, so a
// handler that declares the message parameter receives the exact instance
// taken from the queue and one that declares none is called without it.
// Any other shape is skipped with a debug log; registration never fails.
// Registering the same kind twice keeps the last handler.
func (r *Registry) On(kind Kind, handler any) *Registry {
	h, ok := normalizeHandler(handler)
	if !ok {
		r.logger.Debug("skipping handler with unsupported signature",
			"kind", kind, "type", fmt.Sprintf("%T", handler))
		return r
	}

	if _, exists := r.handlers[kind]; exists {
		r.logger.Debug("replacing previously registered handler", "kind", kind)
	}
	r.handlers[kind] = h
	return r
}

// normalizeHandler reduces the accepted handler shapes to Handler.
func normalizeHandler(handler any) (Handler, bool) {
	switch h := handler.(type) {
	case Handler:
		return h, true
	case func(Message) error:
		return h, true
	case func(Message):
		return func(msg Message) error {
			h(msg)
			return nil
		}, true
	case func() error:
		return func(Message) error {
			return h()
		}, true
	case func():
		return func(Message) error {
			h()
			return nil
		}, true
	default:
		return nil, false
	}
}

// Handler returns the handler registered for kind, if any.
func (r *Registry) Handler(kind Kind) (Handler, bool) {
	h, ok := r.handlers[kind]
	return h, ok
}

// Len returns the number of registered kinds.
func (r *Registry) Len() int {
	return len(r.handlers)
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.handlers))
	for k := range r.handlers {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
