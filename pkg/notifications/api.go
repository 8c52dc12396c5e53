package notifications

import "context"

// API is the server side of a notification feed. Implementations must be
// safe for concurrent use; the collection calls them without holding its
// lock.
type API interface {
	// FetchNotifications returns one page of the feed matching params.
	FetchNotifications(ctx context.Context, params Params) (*Page, error)
	MarkAsRead(ctx context.Context, id string) error
	MarkAsUnread(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	MarkAllAsSeen(ctx context.Context) error
	MarkAllAsRead(ctx context.Context) error
}

// Page is a fetch response. Counters describe the whole filtered feed, not
// just this page.
type Page struct {
	Total         int
	CurrentPage   int
	PerPage       int
	TotalPages    int
	UnreadCount   int
	UnseenCount   int
	Notifications []Notification
}
