package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Group nests attrs under name.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error records err under "error". A nil error yields an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Errors groups the non-nil errors under "errors", keyed by position.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Component names the subsystem emitting the record.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// StoreID records a notification store identifier under "store_id".
func StoreID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("store_id", id)
}

// StoreIDs records several store identifiers under "store_ids".
func StoreIDs(ids []string) slog.Attr {
	if len(ids) == 0 {
		return slog.Attr{}
	}
	return slog.Any("store_ids", ids)
}

// NotificationID records a notification identifier under "notification_id".
func NotificationID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("notification_id", id)
}

// Event records a realtime event name under "event".
func Event(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("event", name)
}

// Status records an HTTP status code or an outcome label under "status".
func Status(status any) slog.Attr {
	if status == nil {
		return slog.Attr{}
	}
	return slog.Any("status", status)
}

// RequestID records the request identifier under "request_id".
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// Method records the HTTP method under "method".
func Method(method string) slog.Attr {
	return slog.String("method", method)
}

// Path records a URL path under "path".
func Path(path string) slog.Attr {
	return slog.String("path", path)
}

// Duration records d in milliseconds under "duration_ms".
func Duration(d time.Duration) slog.Attr {
	return slog.Int64("duration_ms", d.Milliseconds())
}

// Count records an item count under "count".
func Count(n int) slog.Attr {
	return slog.Int("count", n)
}
