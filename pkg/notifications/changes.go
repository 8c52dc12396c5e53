package notifications

// ChangeKind names what happened to the collection.
type ChangeKind string

const (
	ChangeRegistered ChangeKind = "registered"
	ChangeRemoved    ChangeKind = "removed"
	ChangeReset      ChangeKind = "reset"
	ChangeFetched    ChangeKind = "fetched"
	ChangeSeen       ChangeKind = "seen"
	ChangeRead       ChangeKind = "read"
	ChangeUnread     ChangeKind = "unread"
	ChangeDeleted    ChangeKind = "deleted"
	ChangeAllSeen    ChangeKind = "all_seen"
	ChangeAllRead    ChangeKind = "all_read"
)

// Change is published after the collection's state changes. Subscribers read
// the new state through Collection.Store.
type Change struct {
	Kind           ChangeKind
	StoreIDs       []string
	NotificationID string
}
