package notifications

import (
	"log/slog"
	"time"
)

// CollectionOption configures a Collection.
type CollectionOption func(*Collection)

// WithClock sets the time source for local timestamps.
func WithClock(clock Clock) CollectionOption {
	return func(c *Collection) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the collection logger.
func WithLogger(logger *slog.Logger) CollectionOption {
	return func(c *Collection) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithChangeBuffer sets how many changes each subscriber may lag behind
// before changes are dropped for it.
func WithChangeBuffer(size int) CollectionOption {
	return func(c *Collection) { c.changeBuffer = size }
}

// StoreOption seeds a store registered with SetStore.
type StoreOption func(*storeOptions)

type storeOptions struct {
	merge bool
	seed  []func(*Store)
}

// WithMerge keeps an existing store's state and applies the new context and
// seeds on top of it instead of replacing it.
func WithMerge() StoreOption {
	return func(o *storeOptions) { o.merge = true }
}

// WithNotifications seeds the loaded notifications.
func WithNotifications(ns ...Notification) StoreOption {
	return seed(func(s *Store) { s.Notifications = cloneNotifications(ns) })
}

func WithTotal(n int) StoreOption {
	return seed(func(s *Store) { s.Total = max(n, 0) })
}

func WithTotalPages(n int) StoreOption {
	return seed(func(s *Store) { s.TotalPages = max(n, 0) })
}

func WithPerPage(n int) StoreOption {
	return seed(func(s *Store) { s.PerPage = max(n, 0) })
}

func WithCurrentPage(n int) StoreOption {
	return seed(func(s *Store) { s.CurrentPage = n })
}

func WithUnreadCount(n int) StoreOption {
	return seed(func(s *Store) { s.UnreadCount = max(n, 0) })
}

func WithUnseenCount(n int) StoreOption {
	return seed(func(s *Store) { s.UnseenCount = max(n, 0) })
}

// WithLastFetchedAt seeds the last fetch time.
func WithLastFetchedAt(t time.Time) StoreOption {
	return seed(func(s *Store) { s.LastFetchedAt = timeRef(t) })
}

func seed(fn func(*Store)) StoreOption {
	return func(o *storeOptions) { o.seed = append(o.seed, fn) }
}

// FetchOption configures FetchAllStores.
type FetchOption func(*fetchOptions)

type fetchOptions struct {
	reset bool
}

// WithReset clears every store's notifications and rewinds it to page 1
// before fetching. Responses to requests issued before the reset are ignored.
func WithReset() FetchOption {
	return func(o *fetchOptions) { o.reset = true }
}

// MutationOption configures a mutation.
type MutationOption func(*mutationOptions)

type mutationOptions struct {
	persist      bool
	updateModels bool
}

func newMutationOptions(opts []MutationOption) mutationOptions {
	o := mutationOptions{persist: true, updateModels: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithoutPersist skips the server request. Used when applying changes the
// server already knows about, such as realtime events.
func WithoutPersist() MutationOption {
	return func(o *mutationOptions) { o.persist = false }
}

// WithoutModelUpdate leaves local state untouched and only sends the request.
func WithoutModelUpdate() MutationOption {
	return func(o *mutationOptions) { o.updateModels = false }
}
