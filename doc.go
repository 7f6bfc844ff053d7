// Package relay is a typed message-dispatch layer over shared FIFO queues.
// Cooperating processes (or goroutines) exchange tagged messages; each
// receiver declares a registry mapping message kinds to handlers, drains its
// queue without blocking, and can selectively wait for a specific follow-up
// message from inside a handler.
//
// # Architecture
//
//   - Message: a tagged value carrying a sender identity plus payload fields
//   - Registry: kind -> handler table, built once at program init
//   - Dispatcher: drains a queue and routes each message by exact kind
//   - WaitFor: blocking selective consume that discards non-matching kinds
//   - Bridge: optional ZeroMQ PUSH/PULL transport that feeds a local queue
//     from another process, using a msgpack envelope
//
// # Quick Start
//
// Declare message types by embedding Base:
//
//	const KindPing = relay.Kind("ping")
//
//	type Ping struct {
//	    relay.Base `msgpack:",inline"`
//	    Value      int `msgpack:"value"`
//	}
//
//	func (Ping) Kind() relay.Kind { return KindPing }
//
// Build a registry and drain the queue from the receiver's main loop:
//
//	registry := relay.NewRegistry().
//	    On(KindPing, func(msg relay.Message) error {
//	        ping := msg.(*Ping)
//	        // Await the follow-up on the same queue.
//	        reply, err := relay.WaitFor(queue, []relay.Kind{KindPong}, 5*time.Second)
//	        ...
//	        return nil
//	    })
//
//	dispatcher := relay.NewDispatcher(registry)
//	for {
//	    if err := dispatcher.DispatchAll(queue); err != nil {
//	        log.Fatal(err)
//	    }
//	    ...
//	}
//
// Cross-process use replaces the local Put side with a bridge:
//
//	// Receiving process
//	queue := relay.NewQueue(0)
//	bridge, err := relay.ListenBridge(queue, codec, 0, "pong-service")
//	defer bridge.Close()
//
//	// Sending process
//	remote, err := relay.DialService(codec, "pong-service", 0)
//	remote.Put(&Ping{Base: relay.NewBase(relay.CurrentProcess()), Value: 1})
package relay

// Version is the current library version
const Version = "1.0.0"
