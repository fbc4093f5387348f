package messaging

import (
	"context"
)

// Publisher delivers an encoded event envelope to every subscriber of channel.
// The outbox processor is the only publisher; it retries on error, so an
// implementation may fail fast.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Subscriber streams envelopes published on channel. The returned channel is
// closed when ctx is done or the underlying connection goes away.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// Broker is the fan-out transport between the outbox processor and the
// notification consumer.
type Broker interface {
	Publisher
	Subscriber
	Close() error
}

// Handler processes one delivered envelope.
type Handler func(ctx context.Context, payload []byte) error
