// Package notifications keeps a client-side cache of one user's notification
// feed consistent across paginated fetches, optimistic mutations and
// realtime events.
//
// # Model
//
// A Collection holds named Stores. Each Store is a filtered, paginated view
// of the feed: its Context holds the filter parameters sent with every fetch
// (for example {"read": false} for an unread tab, or {"category": "billing"}),
// and it tracks the server's Total, TotalPages, UnreadCount and UnseenCount
// next to the notifications loaded so far.
//
// The same notification may sit in several stores. Every mutation is applied
// to each store that holds it, and each store keeps its own counters.
// Counters never go below zero.
//
// # Usage
//
//	api := apiclient.New(cfg)
//	feed := notifications.NewCollection(api, notifications.WithLogger(log))
//
//	feed.SetStore("inbox", nil)
//	feed.SetStore("unread", notifications.Params{"read": false})
//	if err := feed.FetchAllStores(ctx, nil); err != nil {
//		return err
//	}
//
//	res, err := feed.MarkNotificationAsRead(ctx, id)
//	switch res.Status() {
//	case notifications.StatusConfirmed:
//	case notifications.StatusUnconfirmed:
//		// the local change was kept; refetch to resync
//	}
//
// # Mutations
//
// MarkNotificationAsSeen, MarkNotificationAsRead, MarkNotificationAsUnread,
// DeleteNotification, MarkAllAsSeen and MarkAllAsRead change local state
// first, under the collection lock, and then send at most one request.
// WithoutPersist skips the request (realtime events use it, the server
// already knows) and WithoutModelUpdate skips the local change. A failed
// request is reported in the MutationResult and is never rolled back.
//
// # Fetching
//
// FetchStore merges the store's context with the call's params, defaults the
// page to the store's current page, and appends the returned page. Server
// counters overwrite local ones. FetchAllStores does the same for every
// store concurrently; WithReset rewinds each store to page 1 first. When
// fetches for one store overlap, the last one issued wins and older
// responses are dropped.
//
// # Observing changes
//
// Subscribe returns a stream of Change values published after every state
// change, for binding the collection to a view. Sessions keeps one
// Collection per user with LRU eviction, and MemoryAPI is an in-memory API
// for tests and the mock server.
package notifications
