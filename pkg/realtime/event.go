package realtime

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Wire names of the supported events.
const (
	NameWakeup             = "wakeup"
	NameNotificationNew    = "notifications.new"
	NameAllSeen            = "notifications.seen.all"
	NameAllRead            = "notifications.read.all"
	NameNotificationRead   = "notifications.read"
	NameNotificationUnread = "notifications.unread"
	NameNotificationDelete = "notifications.delete"
)

// Event is one of the types declared in this file.
type Event interface {
	Name() string
	event()
}

// Wakeup is sent when the connection resumes and local state may be stale.
type Wakeup struct{}

// NotificationCreated announces a new notification.
type NotificationCreated struct{ NotificationID string }

// AllSeen reports that every notification was marked seen elsewhere.
type AllSeen struct{}

// AllRead reports that every notification was marked read elsewhere.
type AllRead struct{}

// NotificationRead reports that a notification was read elsewhere.
type NotificationRead struct{ NotificationID string }

// NotificationUnread reports that a notification was marked unread elsewhere.
type NotificationUnread struct{ NotificationID string }

// NotificationDeleted reports that a notification was deleted elsewhere.
type NotificationDeleted struct{ NotificationID string }

func (Wakeup) Name() string              { return NameWakeup }
func (NotificationCreated) Name() string { return NameNotificationNew }
func (AllSeen) Name() string             { return NameAllSeen }
func (AllRead) Name() string             { return NameAllRead }
func (NotificationRead) Name() string    { return NameNotificationRead }
func (NotificationUnread) Name() string  { return NameNotificationUnread }
func (NotificationDeleted) Name() string { return NameNotificationDelete }

func (Wakeup) event()              {}
func (NotificationCreated) event() {}
func (AllSeen) event()             {}
func (AllRead) event()             {}
func (NotificationRead) event()    {}
func (NotificationUnread) event()  {}
func (NotificationDeleted) event() {}

type payload struct {
	ID string `json:"id,omitempty"`
}

// Parse builds the event called name from its JSON payload. Only deletion
// requires a payload, an object with the notification "id".
func Parse(name string, data []byte) (Event, error) {
	var p payload
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) {
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return nil, errors.Join(ErrInvalidPayload, fmt.Errorf("%s: %w", name, err))
		}
	}

	switch name {
	case NameWakeup:
		return Wakeup{}, nil
	case NameNotificationNew:
		return NotificationCreated{NotificationID: p.ID}, nil
	case NameAllSeen:
		return AllSeen{}, nil
	case NameAllRead:
		return AllRead{}, nil
	case NameNotificationRead:
		return NotificationRead{NotificationID: p.ID}, nil
	case NameNotificationUnread:
		return NotificationUnread{NotificationID: p.ID}, nil
	case NameNotificationDelete:
		if p.ID == "" {
			return nil, fmt.Errorf("%w: %s without id", ErrInvalidPayload, name)
		}
		return NotificationDeleted{NotificationID: p.ID}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
}

type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Decode parses an envelope of the form {"event": name, "data": {...}}.
func Decode(raw []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.Join(ErrInvalidPayload, err)
	}
	return Parse(env.Event, env.Data)
}

// Encode is the inverse of Decode.
func Encode(ev Event) ([]byte, error) {
	var id string
	switch e := ev.(type) {
	case NotificationCreated:
		id = e.NotificationID
	case NotificationRead:
		id = e.NotificationID
	case NotificationUnread:
		id = e.NotificationID
	case NotificationDeleted:
		id = e.NotificationID
	case Wakeup, AllSeen, AllRead:
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownEvent, ev)
	}

	env := envelope{Event: ev.Name()}
	if id != "" {
		data, err := json.Marshal(payload{ID: id})
		if err != nil {
			return nil, err
		}
		env.Data = data
	}
	return json.Marshal(env)
}
