package notifications

import (
	"slices"
	"time"
)

// Store is one paginated, filtered view of the feed. Values returned by a
// Collection are snapshots: changing them does not affect the collection.
type Store struct {
	Context       Params
	Total         int
	TotalPages    int
	PerPage       int
	CurrentPage   int
	UnreadCount   int
	UnseenCount   int
	Notifications []Notification
	LastFetchedAt *time.Time
}

func newStore(ctx Params) Store {
	return Store{
		Context:     ctx.Clone(),
		CurrentPage: 1,
	}
}

// Find returns the notification with id.
func (s Store) Find(id string) (Notification, bool) {
	if i := s.index(id); i >= 0 {
		return s.Notifications[i].Clone(), true
	}
	return Notification{}, false
}

// HasNextPage reports whether the server has pages beyond CurrentPage.
func (s Store) HasNextPage() bool { return s.CurrentPage < s.TotalPages }

func (s Store) clone() Store {
	s.Context = s.Context.Clone()
	s.Notifications = cloneNotifications(s.Notifications)
	s.LastFetchedAt = cloneTime(s.LastFetchedAt)
	return s
}

func (s *Store) index(id string) int {
	return slices.IndexFunc(s.Notifications, func(n Notification) bool { return n.ID == id })
}

// applyPage overwrites the counters with the server's and merges the page
// into the loaded notifications. Entries already loaded are replaced in place.
func (s *Store) applyPage(p *Page, issuedAt time.Time) {
	s.Total = max(p.Total, 0)
	s.TotalPages = max(p.TotalPages, 0)
	s.PerPage = max(p.PerPage, 0)
	s.CurrentPage = p.CurrentPage
	s.UnreadCount = max(p.UnreadCount, 0)
	s.UnseenCount = max(p.UnseenCount, 0)
	s.LastFetchedAt = timeRef(issuedAt)

	for _, n := range p.Notifications {
		if i := s.index(n.ID); i >= 0 {
			s.Notifications[i] = n.Clone()
			continue
		}
		s.Notifications = append(s.Notifications, n.Clone())
	}
}

func (s *Store) reset() {
	s.CurrentPage = 1
	s.Notifications = nil
}

func (s *Store) markSeen(id string, now time.Time) bool {
	i := s.index(id)
	if i < 0 || s.Notifications[i].SeenAt != nil {
		return false
	}
	s.Notifications[i].SeenAt = timeRef(now)
	s.UnseenCount = max(s.UnseenCount-1, 0)
	return true
}

func (s *Store) markRead(id string, now time.Time) bool {
	i := s.index(id)
	if i < 0 || s.Notifications[i].ReadAt != nil {
		return false
	}
	s.Notifications[i].ReadAt = timeRef(now)
	s.UnreadCount = max(s.UnreadCount-1, 0)
	return true
}

func (s *Store) markUnread(id string) bool {
	i := s.index(id)
	if i < 0 || s.Notifications[i].ReadAt == nil {
		return false
	}
	s.Notifications[i].ReadAt = nil
	s.UnreadCount++
	return true
}

func (s *Store) remove(id string) bool {
	i := s.index(id)
	if i < 0 {
		return false
	}
	wasUnread := s.Notifications[i].ReadAt == nil
	s.Notifications = slices.Delete(s.Notifications, i, i+1)
	s.Total = max(s.Total-1, 0)
	if wasUnread {
		s.UnreadCount = max(s.UnreadCount-1, 0)
	}
	return true
}

// markAllSeen reports whether anything visible changed.
func (s *Store) markAllSeen(now time.Time) bool {
	changed := s.UnseenCount != 0
	for i := range s.Notifications {
		if s.Notifications[i].SeenAt == nil {
			s.Notifications[i].SeenAt = timeRef(now)
			changed = true
		}
	}
	s.UnseenCount = 0
	return changed
}

func (s *Store) markAllRead(now time.Time) bool {
	changed := s.UnreadCount != 0
	for i := range s.Notifications {
		if s.Notifications[i].ReadAt == nil {
			s.Notifications[i].ReadAt = timeRef(now)
			changed = true
		}
	}
	s.UnreadCount = 0
	return changed
}
