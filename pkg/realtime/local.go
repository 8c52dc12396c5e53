package realtime

import (
	"context"
	"errors"

	"github.com/dmitrymomot/bellfeed/pkg/broadcast"
)

// Publisher emits events to listening clients.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Local publishes events into an in-process broadcaster.
type Local struct {
	b broadcast.Broadcaster[Event]
}

func NewLocal(b broadcast.Broadcaster[Event]) *Local {
	return &Local{b: b}
}

func (l *Local) Publish(ctx context.Context, ev Event) error {
	if err := l.b.Broadcast(ctx, ev); err != nil {
		return errors.Join(ErrPublish, err)
	}
	return nil
}
