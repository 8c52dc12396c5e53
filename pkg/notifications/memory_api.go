package notifications

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// DefaultPerPage is the page size MemoryAPI uses when a fetch names none.
const DefaultPerPage = 15

// MaxPerPage caps the per_page param MemoryAPI accepts.
const MaxPerPage = 100

// MemoryAPI is an in-memory API holding a single user's feed. It backs the
// mock server and tests.
//
// Supported fetch params: page, per_page, category, topic, read and seen.
// Unread and unseen counts cover the notifications matching category and
// topic, ignoring the read and seen filters.
type MemoryAPI struct {
	mu      sync.RWMutex
	items   []Notification // newest first
	clock   Clock
	perPage int
}

// MemoryAPIOption configures a MemoryAPI.
type MemoryAPIOption func(*MemoryAPI)

// WithMemoryClock sets the clock used for read and seen timestamps.
func WithMemoryClock(clock Clock) MemoryAPIOption {
	return func(m *MemoryAPI) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithDefaultPerPage overrides DefaultPerPage.
func WithDefaultPerPage(n int) MemoryAPIOption {
	return func(m *MemoryAPI) {
		if n > 0 {
			m.perPage = n
		}
	}
}

func NewMemoryAPI(opts ...MemoryAPIOption) *MemoryAPI {
	m := &MemoryAPI{
		clock:   SystemClock,
		perPage: DefaultPerPage,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Add inserts notifications at the head of the feed, the last argument
// ending up first. Missing IDs are generated and a missing SentAt defaults
// to now. It returns the stored copies.
func (m *MemoryAPI) Add(ns ...Notification) []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	added := make([]Notification, 0, len(ns))
	for _, n := range ns {
		n = n.Clone()
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		if n.SentAt == nil {
			n.SentAt = timeRef(m.clock.Now())
		}
		m.items = append([]Notification{n}, m.items...)
		added = append(added, n.Clone())
	}
	return added
}

// Notification returns a copy of the stored notification id.
func (m *MemoryAPI) Notification(id string) (Notification, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.index(id); i >= 0 {
		return m.items[i].Clone(), true
	}
	return Notification{}, false
}

// Len returns the number of stored notifications.
func (m *MemoryAPI) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *MemoryAPI) FetchNotifications(_ context.Context, params Params) (*Page, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	perPage, ok := params.Int(ParamPerPage)
	if !ok || perPage <= 0 {
		perPage = m.perPage
	}
	perPage = min(perPage, MaxPerPage)
	page, ok := params.Page()
	if !ok || page <= 0 {
		page = 1
	}

	category, hasCategory := params.String("category")
	topic, hasTopic := params.String("topic")
	read, hasRead := params.Bool("read")
	seen, hasSeen := params.Bool("seen")

	res := &Page{CurrentPage: page, PerPage: perPage}
	var matched []Notification
	for _, n := range m.items {
		if hasCategory && n.Category != category {
			continue
		}
		if hasTopic && n.Topic != topic {
			continue
		}
		if !n.IsRead() {
			res.UnreadCount++
		}
		if !n.IsSeen() {
			res.UnseenCount++
		}
		if hasRead && n.IsRead() != read {
			continue
		}
		if hasSeen && n.IsSeen() != seen {
			continue
		}
		matched = append(matched, n)
	}

	res.Total = len(matched)
	res.TotalPages = (res.Total + perPage - 1) / perPage
	res.Notifications = []Notification{}
	if page > res.TotalPages {
		return res, nil
	}
	from := (page - 1) * perPage
	to := min(from+perPage, res.Total)
	res.Notifications = cloneNotifications(matched[from:to])
	return res, nil
}

func (m *MemoryAPI) MarkAsRead(_ context.Context, id string) error {
	return m.update(id, func(n *Notification, clock Clock) {
		if n.ReadAt == nil {
			n.ReadAt = timeRef(clock.Now())
		}
	})
}

func (m *MemoryAPI) MarkAsUnread(_ context.Context, id string) error {
	return m.update(id, func(n *Notification, _ Clock) { n.ReadAt = nil })
}

func (m *MemoryAPI) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return ErrNotificationNotFound
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	return nil
}

func (m *MemoryAPI) MarkAllAsSeen(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	for i := range m.items {
		if m.items[i].SeenAt == nil {
			m.items[i].SeenAt = timeRef(now)
		}
	}
	return nil
}

func (m *MemoryAPI) MarkAllAsRead(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	for i := range m.items {
		if m.items[i].ReadAt == nil {
			m.items[i].ReadAt = timeRef(now)
		}
	}
	return nil
}

func (m *MemoryAPI) update(id string, fn func(*Notification, Clock)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.index(id)
	if i < 0 {
		return ErrNotificationNotFound
	}
	fn(&m.items[i], m.clock)
	return nil
}

func (m *MemoryAPI) index(id string) int {
	for i := range m.items {
		if m.items[i].ID == id {
			return i
		}
	}
	return -1
}
