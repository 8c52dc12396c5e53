package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/bellfeed/pkg/async"
	"github.com/dmitrymomot/bellfeed/pkg/broadcast"
	"github.com/dmitrymomot/bellfeed/pkg/logger"
)

// Collection holds the notification stores of one user and keeps them
// consistent across fetches, local mutations and realtime events.
//
// Local changes are applied under the collection lock before any request is
// sent, so callers observe them immediately. Requests run without the lock.
type Collection struct {
	api          API
	clock        Clock
	logger       *slog.Logger
	changeBuffer int
	changes      *broadcast.Memory[Change]

	mu     sync.Mutex
	stores map[string]*entry
}

type entry struct {
	store Store
	// issued is the sequence number of the newest fetch sent for this
	// registration; applied is the newest one whose response was used.
	// Responses with a sequence at or below applied are stale.
	issued  uint64
	applied uint64
}

// NewCollection creates an empty collection backed by api.
func NewCollection(api API, opts ...CollectionOption) *Collection {
	c := &Collection{
		api:    api,
		clock:  SystemClock,
		logger: slog.Default(),
		stores: make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.changes = broadcast.NewMemory[Change](c.changeBuffer)
	c.logger = c.logger.With(logger.Component("notifications"))
	return c
}

// SetStore registers the store id with the given filter context, replacing
// any store with the same id unless WithMerge is passed. No request is made.
func (c *Collection) SetStore(id string, params Params, opts ...StoreOption) Store {
	var o storeOptions
	for _, opt := range opts {
		opt(&o)
	}

	c.mu.Lock()
	e, exists := c.stores[id]
	if !o.merge || !exists {
		e = &entry{store: newStore(params)}
		c.stores[id] = e
	} else {
		e.store.Context = e.store.Context.Merge(params)
	}
	for _, fn := range o.seed {
		fn(&e.store)
	}
	snapshot := e.store.clone()
	c.mu.Unlock()

	c.publish(context.Background(), Change{Kind: ChangeRegistered, StoreIDs: []string{id}})
	return snapshot
}

// RemoveStore unregisters id. Fetches in flight for it are discarded.
func (c *Collection) RemoveStore(id string) bool {
	c.mu.Lock()
	_, ok := c.stores[id]
	delete(c.stores, id)
	c.mu.Unlock()

	if ok {
		c.publish(context.Background(), Change{Kind: ChangeRemoved, StoreIDs: []string{id}})
	}
	return ok
}

// Store returns a snapshot of the store id.
func (c *Collection) Store(id string) (Store, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.stores[id]
	if !ok {
		return Store{}, false
	}
	return e.store.clone(), true
}

// Stores returns snapshots of every registered store.
func (c *Collection) Stores() map[string]Store {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]Store, len(c.stores))
	for id, e := range c.stores {
		out[id] = e.store.clone()
	}
	return out
}

// StoreIDs returns the registered ids in sorted order.
func (c *Collection) StoreIDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.idsLocked()
}

// FetchStore requests the next page for store id and merges it in. The
// store's context is sent with params layered on top; the page defaults to
// the store's current page. On failure the store is left as it was.
//
// When several fetches for one store overlap, only the most recently issued
// response is applied; an older response arriving later is dropped and the
// current snapshot is returned.
func (c *Collection) FetchStore(ctx context.Context, id string, params Params) (Store, error) {
	c.mu.Lock()
	e, ok := c.stores[id]
	if !ok {
		c.mu.Unlock()
		return Store{}, fmt.Errorf("%w: %q", ErrStoreNotFound, id)
	}
	query := e.store.Context.Merge(params)
	if _, ok := query.Page(); !ok {
		query[ParamPage] = e.store.CurrentPage
	}
	e.issued++
	seq := e.issued
	issuedAt := c.clock.Now()
	c.mu.Unlock()

	start := time.Now()
	page, err := c.api.FetchNotifications(ctx, query)
	if err == nil && page == nil {
		err = ErrEmptyPage
	}
	if err != nil {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "store fetch failed",
			logger.StoreID(id),
			logger.Duration(time.Since(start)),
			logger.Error(err),
		)
		return Store{}, fmt.Errorf("fetch store %q: %w", id, err)
	}

	c.mu.Lock()
	current, ok := c.stores[id]
	if !ok {
		c.mu.Unlock()
		return Store{}, fmt.Errorf("%w: %q", ErrStoreNotFound, id)
	}
	if current != e || seq <= e.applied {
		snapshot := current.store.clone()
		c.mu.Unlock()
		c.logger.LogAttrs(ctx, slog.LevelDebug, "discarding stale page",
			logger.StoreID(id),
			slog.Uint64("seq", seq),
		)
		return snapshot, nil
	}
	e.applied = seq
	e.store.applyPage(page, issuedAt)
	snapshot := e.store.clone()
	c.mu.Unlock()

	c.logger.LogAttrs(ctx, slog.LevelDebug, "store fetched",
		logger.StoreID(id),
		slog.Int("page", snapshot.CurrentPage),
		logger.Count(len(page.Notifications)),
		logger.Duration(time.Since(start)),
	)
	c.publish(ctx, Change{Kind: ChangeFetched, StoreIDs: []string{id}})
	return snapshot, nil
}

// FetchAllStores fetches every registered store concurrently with the same
// params. A failing store does not affect the others; all failures are
// returned joined.
func (c *Collection) FetchAllStores(ctx context.Context, params Params, opts ...FetchOption) error {
	var o fetchOptions
	for _, opt := range opts {
		opt(&o)
	}

	c.mu.Lock()
	ids := c.idsLocked()
	if o.reset {
		for _, e := range c.stores {
			e.store.reset()
			e.applied = e.issued
		}
	}
	c.mu.Unlock()

	if len(ids) == 0 {
		return nil
	}
	if o.reset {
		c.publish(ctx, Change{Kind: ChangeReset, StoreIDs: ids})
	}

	futures := make([]*async.Future[Store], 0, len(ids))
	for _, id := range ids {
		futures = append(futures, async.Go(ctx, func(ctx context.Context) (Store, error) {
			return c.FetchStore(ctx, id, params)
		}))
	}

	_, err := async.Settle(futures...)
	return err
}

// MarkNotificationAsSeen sets SeenAt on notification id in every store that
// holds it. There is no per-notification seen endpoint, so it never sends a
// request.
func (c *Collection) MarkNotificationAsSeen(ctx context.Context, id string, opts ...MutationOption) (MutationResult, error) {
	o := newMutationOptions(opts)

	var res MutationResult
	if o.updateModels {
		res.Stores = c.applyLocal(ctx, ChangeSeen, id, func(s *Store, now time.Time) bool {
			return s.markSeen(id, now)
		})
	}
	return res, nil
}

// MarkNotificationAsRead marks id read in every store that holds it, then
// persists the change.
func (c *Collection) MarkNotificationAsRead(ctx context.Context, id string, opts ...MutationOption) (MutationResult, error) {
	return c.mutate(ctx, newMutationOptions(opts), ChangeRead, id,
		func(s *Store, now time.Time) bool { return s.markRead(id, now) },
		func(ctx context.Context) error { return c.api.MarkAsRead(ctx, id) },
	)
}

// MarkNotificationAsUnread clears ReadAt on id in every store that holds it,
// then persists the change.
func (c *Collection) MarkNotificationAsUnread(ctx context.Context, id string, opts ...MutationOption) (MutationResult, error) {
	return c.mutate(ctx, newMutationOptions(opts), ChangeUnread, id,
		func(s *Store, _ time.Time) bool { return s.markUnread(id) },
		func(ctx context.Context) error { return c.api.MarkAsUnread(ctx, id) },
	)
}

// DeleteNotification removes id from every store that holds it, then
// persists the deletion.
func (c *Collection) DeleteNotification(ctx context.Context, id string, opts ...MutationOption) (MutationResult, error) {
	return c.mutate(ctx, newMutationOptions(opts), ChangeDeleted, id,
		func(s *Store, _ time.Time) bool { return s.remove(id) },
		func(ctx context.Context) error { return c.api.Delete(ctx, id) },
	)
}

// MarkAllAsSeen marks every loaded notification seen, zeroes every store's
// unseen counter and sends one bulk request.
func (c *Collection) MarkAllAsSeen(ctx context.Context, opts ...MutationOption) (MutationResult, error) {
	return c.mutate(ctx, newMutationOptions(opts), ChangeAllSeen, "",
		func(s *Store, now time.Time) bool { return s.markAllSeen(now) },
		c.api.MarkAllAsSeen,
	)
}

// MarkAllAsRead marks every loaded notification read, zeroes every store's
// unread counter and sends one bulk request.
func (c *Collection) MarkAllAsRead(ctx context.Context, opts ...MutationOption) (MutationResult, error) {
	return c.mutate(ctx, newMutationOptions(opts), ChangeAllRead, "",
		func(s *Store, now time.Time) bool { return s.markAllRead(now) },
		c.api.MarkAllAsRead,
	)
}

// Subscribe streams changes until ctx is done or the subscriber is closed.
func (c *Collection) Subscribe(ctx context.Context) broadcast.Subscriber[Change] {
	return c.changes.Subscribe(ctx)
}

// Close ends every change subscription. Stores stay readable.
func (c *Collection) Close() error {
	return c.changes.Close()
}

func (c *Collection) mutate(
	ctx context.Context,
	o mutationOptions,
	kind ChangeKind,
	id string,
	local func(*Store, time.Time) bool,
	remote func(context.Context) error,
) (MutationResult, error) {
	var res MutationResult
	if o.updateModels {
		res.Stores = c.applyLocal(ctx, kind, id, local)
	}
	if !o.persist {
		return res, nil
	}

	res.Requested = true
	if err := remote(ctx); err != nil {
		res.Err = persistError(kind, id, err)
		c.logger.LogAttrs(ctx, slog.LevelWarn, "mutation not persisted",
			slog.String("kind", string(kind)),
			logger.NotificationID(id),
			logger.StoreIDs(res.Stores),
			logger.Error(err),
		)
		return res, res.Err
	}
	res.Persisted = true
	return res, nil
}

// applyLocal runs fn on every store under one lock acquisition and returns
// the sorted ids of the stores it changed.
func (c *Collection) applyLocal(ctx context.Context, kind ChangeKind, id string, fn func(*Store, time.Time) bool) []string {
	c.mu.Lock()
	now := c.clock.Now()
	var changed []string
	for storeID, e := range c.stores {
		if fn(&e.store, now) {
			changed = append(changed, storeID)
		}
	}
	c.mu.Unlock()

	if len(changed) == 0 {
		return nil
	}
	slices.Sort(changed)
	c.publish(ctx, Change{Kind: kind, StoreIDs: changed, NotificationID: id})
	return changed
}

func (c *Collection) idsLocked() []string {
	ids := make([]string, 0, len(c.stores))
	for id := range c.stores {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (c *Collection) publish(ctx context.Context, change Change) {
	if err := c.changes.Broadcast(ctx, change); err != nil && !errors.Is(err, broadcast.ErrClosed) {
		c.logger.LogAttrs(ctx, slog.LevelWarn, "change not published",
			slog.String("kind", string(change.Kind)),
			logger.Error(err),
		)
	}
}

func persistError(kind ChangeKind, id string, err error) error {
	if id == "" {
		return fmt.Errorf("persist %s: %w", kind, err)
	}
	return fmt.Errorf("persist %s of notification %q: %w", kind, id, err)
}
