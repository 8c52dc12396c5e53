package broadcast

import (
	"context"
	"time"
)

// Message is one broadcast value with its delivery metadata.
type Message[T any] struct {
	Seq  uint64
	At   time.Time
	Data T
}

// Subscriber receives messages until it is closed.
type Subscriber[T any] interface {
	// Receive returns the delivery channel. It is closed when the
	// subscription ends.
	Receive() <-chan Message[T]
	// Dropped reports how many messages did not fit the buffer.
	Dropped() uint64
	Close() error
}

// Broadcaster publishes values to its subscribers.
type Broadcaster[T any] interface {
	Subscribe(ctx context.Context) Subscriber[T]
	Broadcast(ctx context.Context, data T) error
	Close() error
}
