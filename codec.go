package relay

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// AppName tags every envelope so unrelated traffic arriving on a shared
// endpoint can be rejected before kind lookup.
const AppName = "relay_ipc_v1"

const (
	maxEnvelopeSize = 10 * 1024 * 1024 // 10MB
	maxPayloadSize  = 8 * 1024 * 1024
)

// Envelope is the wire form of a message. The payload holds the concrete
// message struct, msgpack-encoded, so the receiving side can rebuild it from
// the kind's registered factory.
type Envelope struct {
	App       string  `msgpack:"app"`
	ID        string  `msgpack:"id"`
	Kind      string  `msgpack:"kind"`
	Sender    string  `msgpack:"sender"`
	Timestamp float64 `msgpack:"timestamp"`
	Payload   []byte  `msgpack:"payload"`
}

// Codec packs messages into envelopes and reconstructs them on the far side.
// Every kind crossing a bridge must be registered with a factory on both
// sides before traffic flows; registration is not safe to interleave with
// decoding, so build the codec once at program init like a Registry.
type Codec struct {
	factories map[Kind]func() Message
}

// NewCodec creates an empty Codec.
func NewCodec() *Codec {
	return &Codec{factories: make(map[Kind]func() Message)}
}

// RegisterKind associates kind with a factory producing an empty instance to
// decode into, and returns the codec so registrations chain. The factory
// must return a pointer:
//
//	codec.RegisterKind(KindPing, func() relay.Message { return &Ping{} })
//
// Registering the same kind twice keeps the last factory.
func (c *Codec) RegisterKind(kind Kind, factory func() Message) *Codec {
	c.factories[kind] = factory
	return c
}

// Knows reports whether kind has a registered factory.
func (c *Codec) Knows(kind Kind) bool {
	_, ok := c.factories[kind]
	return ok
}

// Pack serializes msg into an envelope for the wire.
func (c *Codec) Pack(msg Message) ([]byte, error) {
	payload, err := msgpack.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %q payload: %w", msg.Kind(), err)
	}
	if len(payload) > maxPayloadSize {
		return nil, fmt.Errorf("payload size %d exceeds limit %d", len(payload), maxPayloadSize)
	}

	env := Envelope{
		App:       AppName,
		ID:        uuid.New().String(),
		Kind:      string(msg.Kind()),
		Sender:    msg.Sender(),
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
		Payload:   payload,
	}
	return msgpack.Marshal(&env)
}

// Unpack deserializes an envelope and rebuilds the concrete message via the
// kind's factory. Data from peers speaking another protocol (wrong app tag)
// and kinds with no factory are errors the caller can choose to drop.
func (c *Codec) Unpack(data []byte) (Message, error) {
	// Check message size limit (DoS protection)
	if len(data) > maxEnvelopeSize {
		return nil, fmt.Errorf("message size %d exceeds limit %d", len(data), maxEnvelopeSize)
	}

	var env Envelope
	if err := msgpack.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode failed: %w", err)
	}

	if env.App != AppName {
		return nil, fmt.Errorf("unexpected app tag %q", env.App)
	}
	if math.IsNaN(env.Timestamp) || math.IsInf(env.Timestamp, 0) {
		env.Timestamp = 0.0
	}

	factory, ok := c.factories[Kind(env.Kind)]
	if !ok {
		return nil, fmt.Errorf("no factory for kind %q: %w", env.Kind, ErrUnknownKind)
	}

	msg := factory()
	if err := msgpack.Unmarshal(env.Payload, msg); err != nil {
		return nil, fmt.Errorf("decode %q payload: %w", env.Kind, err)
	}
	return msg, nil
}
