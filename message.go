package relay

import (
	"fmt"
	"os"
	"path/filepath"
)

// Kind tags a message with the identifier used for handler lookup.
// Dispatch matches kinds exactly; there is no subtype matching.
type Kind string

// Message is the contract every message type satisfies. A message's kind is
// fixed at construction and is the sole dispatch key. Messages must not be
// mutated after construction: the same instance may pass through the queue,
// the dispatcher, and a handler without copying.
type Message interface {
	Kind() Kind
	Sender() string
}

// Base carries the sender identity shared by all message types. Embed it in
// a message struct and set the sender at construction; it is never mutated
// afterwards.
//
//	type Ping struct {
//	    relay.Base `msgpack:",inline"`
//	    Value      int `msgpack:"value"`
//	}
//
//	func (Ping) Kind() relay.Kind { return KindPing }
type Base struct {
	From string `msgpack:"from"`
}

// NewBase returns a Base for the given sender. Pass CurrentProcess() to
// identify the running process the way the queue's other endpoints will see
// it.
func NewBase(sender string) Base {
	return Base{From: sender}
}

// Sender returns the identity of the process that constructed the message.
func (b Base) Sender() string {
	return b.From
}

// CurrentProcess returns a sender identity derived from the running
// executable and its PID.
func CurrentProcess() string {
	return fmt.Sprintf("%s-%d", filepath.Base(os.Args[0]), os.Getpid())
}
