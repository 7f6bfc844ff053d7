package relay

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	zmq "github.com/go-zeromq/zmq4"
)

// Bridge feeds a local queue from a ZeroMQ PULL socket so producers in other
// processes can share it. The dispatch layer never sees the socket: drains
// and waits work on the local queue exactly as in the single-process case.
//
// PUSH/PULL keeps per-producer FIFO order and fair-queues multiple
// producers, which matches the queue's ordering contract.
type Bridge struct {
	queue     *MessageQueue
	codec     *Codec
	socket    zmq.Socket
	logger    *log.Logger
	port      int
	serviceID string
	done      chan struct{}
	closeOnce sync.Once
}

// ListenBridge binds a PULL socket on port and pumps every decoded message
// into q. Pass port 0 to pick a free port (see Port). A non-empty serviceID
// registers the bridge for discovery; Close unregisters it.
func ListenBridge(q *MessageQueue, codec *Codec, port int, serviceID string) (*Bridge, error) {
	if port == 0 {
		port = findFreePort()
	}
	if err := ValidatePort(port); err != nil {
		return nil, err
	}

	socket := zmq.NewPull(context.Background())
	endpoint := fmt.Sprintf("tcp://*:%d", port)
	if err := socket.Listen(endpoint); err != nil {
		return nil, fmt.Errorf("failed to bind to %s: %w", endpoint, err)
	}

	if serviceID != "" {
		if err := RegisterService(serviceID, port); err != nil {
			socket.Close()
			return nil, fmt.Errorf("failed to register service: %w", err)
		}
	}

	b := &Bridge{
		queue:     q,
		codec:     codec,
		socket:    socket,
		logger:    defaultLogger(),
		port:      port,
		serviceID: serviceID,
		done:      make(chan struct{}),
	}
	go b.receiveLoop()

	return b, nil
}

// receiveLoop pumps socket frames into the local queue until Close.
func (b *Bridge) receiveLoop() {
	for {
		select {
		case <-b.done:
			return
		default:
		}

		msg, err := b.socket.Recv()
		if err != nil {
			select {
			case <-b.done:
				return
			default:
			}
			b.logger.Error("receive failed", "err", err)
			time.Sleep(10 * time.Millisecond)
			continue
		}

		if len(msg.Frames) == 0 {
			continue
		}
		decoded, err := b.codec.Unpack(msg.Frames[0])
		if err != nil {
			b.logger.Debug("dropping undecodable message", "err", err)
			continue
		}

		if err := b.queue.Put(decoded); err != nil {
			b.logger.Debug("queue rejected bridged message", "err", err)
			return
		}
	}
}

// Port returns the port the bridge is bound to.
func (b *Bridge) Port() int {
	return b.port
}

// Close stops the pump, unregisters the service (if any), and closes the
// socket. The local queue stays usable. Close is idempotent.
func (b *Bridge) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.done)
		if b.serviceID != "" {
			if uerr := UnregisterService(b.serviceID); uerr != nil {
				b.logger.Warn("failed to unregister service", "service", b.serviceID, "err", uerr)
			}
		}
		// Closing the socket wakes the blocked Recv in receiveLoop.
		err = b.socket.Close()
	})
	return err
}

// RemoteQueue is the producer half of a bridged queue: Put encodes the
// message and sends it to the listening bridge, which delivers it to the
// consumer's local queue. It satisfies Producer, so handler code can reply
// through it exactly as through a MessageQueue.
type RemoteQueue struct {
	codec  *Codec
	socket zmq.Socket
	logger *log.Logger

	mu     sync.Mutex
	closed bool
}

// DialBridge connects a PUSH socket to a listening bridge at endpoint, e.g.
// "tcp://localhost:5555".
func DialBridge(codec *Codec, endpoint string) (*RemoteQueue, error) {
	socket := zmq.NewPush(context.Background())
	if err := socket.Dial(endpoint); err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}

	return &RemoteQueue{
		codec:  codec,
		socket: socket,
		logger: defaultLogger(),
	}, nil
}

// DialService discovers serviceID via the service directory and dials its
// bridge. A zero timeout uses DiscoveryTimeout.
func DialService(codec *Codec, serviceID string, timeout time.Duration) (*RemoteQueue, error) {
	port, err := DiscoverService(serviceID, timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to discover service %q: %w", serviceID, err)
	}
	return DialBridge(codec, fmt.Sprintf("tcp://localhost:%d", port))
}

// Put encodes msg and sends it to the bridge.
func (r *RemoteQueue) Put(msg Message) error {
	data, err := r.codec.Pack(msg)
	if err != nil {
		return fmt.Errorf("failed to pack message: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return ErrClosed
	}
	if err := r.socket.Send(zmq.NewMsg(data)); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Close closes the sending socket. Close is idempotent.
func (r *RemoteQueue) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.socket.Close()
}
