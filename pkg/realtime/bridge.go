package realtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/bellfeed/pkg/broadcast"
	"github.com/dmitrymomot/bellfeed/pkg/logger"
	"github.com/dmitrymomot/bellfeed/pkg/notifications"
)

// Collection is the part of *notifications.Collection the bridge drives.
type Collection interface {
	FetchAllStores(ctx context.Context, params notifications.Params, opts ...notifications.FetchOption) error
	MarkAllAsSeen(ctx context.Context, opts ...notifications.MutationOption) (notifications.MutationResult, error)
	MarkAllAsRead(ctx context.Context, opts ...notifications.MutationOption) (notifications.MutationResult, error)
	DeleteNotification(ctx context.Context, id string, opts ...notifications.MutationOption) (notifications.MutationResult, error)
}

// Bridge applies realtime events to a collection.
type Bridge struct {
	collection Collection
	logger     *slog.Logger
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

func WithBridgeLogger(l *slog.Logger) BridgeOption {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

func NewBridge(c Collection, opts ...BridgeOption) *Bridge {
	b := &Bridge{collection: c, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With(logger.Component("realtime"))
	return b
}

// Dispatch applies ev. Changes reported by events are never sent back to
// the server.
func (b *Bridge) Dispatch(ctx context.Context, ev Event) error {
	firstPage := notifications.Params{notifications.ParamPage: 1}

	var err error
	switch e := ev.(type) {
	case Wakeup, NotificationRead, NotificationUnread:
		err = b.collection.FetchAllStores(ctx, firstPage, notifications.WithReset())
	case NotificationCreated:
		err = b.collection.FetchAllStores(ctx, firstPage)
	case AllSeen:
		_, err = b.collection.MarkAllAsSeen(ctx, notifications.WithoutPersist())
	case AllRead:
		_, err = b.collection.MarkAllAsRead(ctx, notifications.WithoutPersist())
	case NotificationDeleted:
		_, err = b.collection.DeleteNotification(ctx, e.NotificationID, notifications.WithoutPersist())
	default:
		return fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}
	if err != nil {
		return fmt.Errorf("apply %s: %w", ev.Name(), err)
	}
	return nil
}

// Listen dispatches events from sub until ctx is done or sub is closed.
// Failures are logged and do not stop the loop. When messages were dropped
// upstream the collection is resynchronised as on Wakeup.
func (b *Bridge) Listen(ctx context.Context, sub broadcast.Subscriber[Event]) error {
	var last uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-sub.Receive():
			if !ok {
				return nil
			}
			if last != 0 && msg.Seq > last+1 {
				b.logger.LogAttrs(ctx, slog.LevelWarn, "realtime events missed, resyncing",
					logger.Count(int(msg.Seq-last-1)),
				)
				b.handle(ctx, Wakeup{})
			}
			last = msg.Seq
			b.handle(ctx, msg.Data)
		}
	}
}

func (b *Bridge) handle(ctx context.Context, ev Event) {
	if ev == nil {
		return
	}
	if err := b.Dispatch(ctx, ev); err != nil && !errors.Is(err, context.Canceled) {
		b.logger.LogAttrs(ctx, slog.LevelWarn, "realtime event not applied",
			logger.Event(ev.Name()),
			logger.Error(err),
		)
		return
	}
	b.logger.LogAttrs(ctx, slog.LevelDebug, "realtime event applied", logger.Event(ev.Name()))
}
