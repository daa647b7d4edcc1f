package broker

import (
	"context"
)

// Delivery is one message taken off a topic. The payload shape differs per
// topic, so the raw bytes are handed to the registered handler, which owns
// decoding and validation.
type Delivery struct {
	Topic string
	Key   []byte
	Value []byte
}

type HandlerFunc func(ctx context.Context, d Delivery) error

type Producer interface {
	// Publish JSON-encodes payload and writes it to topic. The write is
	// synchronous: when Publish returns nil the broker has accepted the
	// message.
	Publish(ctx context.Context, topic string, key []byte, payload interface{}) error
	Close() error
}

type Consumer interface {
	// Consume runs until ctx is done, invoking handler once per delivery.
	// A delivery is committed only after the handler (including retries)
	// finishes; permanently failing deliveries go to the DLQ.
	Consume(ctx context.Context, topic string, handler HandlerFunc) error
	Close() error
	SetServiceName(name string)
}
