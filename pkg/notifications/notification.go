package notifications

import "time"

// Notification is one entry of a user's feed. A nil ReadAt means unread and
// a nil SeenAt means unseen.
type Notification struct {
	ID               string
	Title            string
	Content          string
	ActionURL        string
	Category         string
	Topic            string
	CustomAttributes map[string]any
	SentAt           *time.Time
	ReadAt           *time.Time
	SeenAt           *time.Time
}

func (n Notification) IsRead() bool { return n.ReadAt != nil }

func (n Notification) IsSeen() bool { return n.SeenAt != nil }

// Clone returns a deep copy sharing no pointers or maps with n.
func (n Notification) Clone() Notification {
	n.SentAt = cloneTime(n.SentAt)
	n.ReadAt = cloneTime(n.ReadAt)
	n.SeenAt = cloneTime(n.SeenAt)
	if n.CustomAttributes != nil {
		n.CustomAttributes = cloneValue(n.CustomAttributes).(map[string]any)
	}
	return n
}

func cloneNotifications(src []Notification) []Notification {
	if src == nil {
		return nil
	}
	out := make([]Notification, len(src))
	for i, n := range src {
		out[i] = n.Clone()
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func timeRef(t time.Time) *time.Time { return &t }

// cloneValue copies the JSON-shaped containers found in custom attributes.
func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
