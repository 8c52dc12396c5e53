package apiclient

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/dmitrymomot/bellfeed/pkg/notifications"
)

// UnixTime is a timestamp encoded as (possibly fractional) Unix seconds.
type UnixTime struct {
	time.Time
}

func (t UnixTime) MarshalJSON() ([]byte, error) {
	if t.Nanosecond() == 0 {
		return strconv.AppendInt(nil, t.Unix(), 10), nil
	}
	return strconv.AppendFloat(nil, float64(t.UnixMicro())/1e6, 'f', -1, 64), nil
}

func (t *UnixTime) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if bytes.Equal(data, []byte("null")) || len(data) == 0 {
		t.Time = time.Time{}
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		parsed, perr := time.Parse(time.RFC3339Nano, string(data))
		if perr != nil {
			return fmt.Errorf("unix time %q: %w", data, err)
		}
		t.Time = parsed.UTC()
		return nil
	}
	sec, frac := math.Modf(f)
	t.Time = time.Unix(int64(sec), int64(math.Round(frac*1e6))*1e3).UTC()
	return nil
}

func unixRef(t *time.Time) *UnixTime {
	if t == nil {
		return nil
	}
	return &UnixTime{Time: *t}
}

func timeRef(u *UnixTime) *time.Time {
	if u == nil || u.IsZero() {
		return nil
	}
	t := u.Time
	return &t
}

// WireNotification is the JSON shape of a notification.
type WireNotification struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Content          string         `json:"content,omitempty"`
	ActionURL        string         `json:"action_url,omitempty"`
	Category         string         `json:"category,omitempty"`
	Topic            string         `json:"topic,omitempty"`
	CustomAttributes map[string]any `json:"custom_attributes,omitempty"`
	SentAt           *UnixTime      `json:"sent_at"`
	ReadAt           *UnixTime      `json:"read_at"`
	SeenAt           *UnixTime      `json:"seen_at"`
}

// WirePage is the JSON shape of a fetch response.
type WirePage struct {
	Total         int                `json:"total"`
	CurrentPage   int                `json:"current_page"`
	PerPage       int                `json:"per_page"`
	TotalPages    int                `json:"total_pages"`
	UnreadCount   int                `json:"unread_count"`
	UnseenCount   int                `json:"unseen_count"`
	Notifications []WireNotification `json:"notifications"`
}

func EncodeNotification(n notifications.Notification) WireNotification {
	return WireNotification{
		ID:               n.ID,
		Title:            n.Title,
		Content:          n.Content,
		ActionURL:        n.ActionURL,
		Category:         n.Category,
		Topic:            n.Topic,
		CustomAttributes: n.Clone().CustomAttributes,
		SentAt:           unixRef(n.SentAt),
		ReadAt:           unixRef(n.ReadAt),
		SeenAt:           unixRef(n.SeenAt),
	}
}

func (w WireNotification) Decode() notifications.Notification {
	return notifications.Notification{
		ID:               w.ID,
		Title:            w.Title,
		Content:          w.Content,
		ActionURL:        w.ActionURL,
		Category:         w.Category,
		Topic:            w.Topic,
		CustomAttributes: w.CustomAttributes,
		SentAt:           timeRef(w.SentAt),
		ReadAt:           timeRef(w.ReadAt),
		SeenAt:           timeRef(w.SeenAt),
	}
}

func EncodePage(p *notifications.Page) WirePage {
	w := WirePage{
		Total:         p.Total,
		CurrentPage:   p.CurrentPage,
		PerPage:       p.PerPage,
		TotalPages:    p.TotalPages,
		UnreadCount:   p.UnreadCount,
		UnseenCount:   p.UnseenCount,
		Notifications: make([]WireNotification, 0, len(p.Notifications)),
	}
	for _, n := range p.Notifications {
		w.Notifications = append(w.Notifications, EncodeNotification(n))
	}
	return w
}

func (w WirePage) Decode() *notifications.Page {
	p := &notifications.Page{
		Total:         w.Total,
		CurrentPage:   w.CurrentPage,
		PerPage:       w.PerPage,
		TotalPages:    w.TotalPages,
		UnreadCount:   w.UnreadCount,
		UnseenCount:   w.UnseenCount,
		Notifications: make([]notifications.Notification, 0, len(w.Notifications)),
	}
	for _, n := range w.Notifications {
		p.Notifications = append(p.Notifications, n.Decode())
	}
	return p
}
