package realtime

import "errors"

var (
	ErrUnknownEvent   = errors.New("realtime: unknown event")
	ErrInvalidPayload = errors.New("realtime: invalid event payload")
	ErrSubscribe      = errors.New("realtime: subscription failed")
	ErrPublish        = errors.New("realtime: publish failed")

	ErrInvalidRedisURL = errors.New("realtime: failed to parse redis connection string")
	ErrRedisNotReady   = errors.New("realtime: redis did not become ready in time")
)
