package notifications

import "errors"

var (
	ErrStoreNotFound        = errors.New("notifications: store is not registered")
	ErrNotificationNotFound = errors.New("notifications: notification not found")
	ErrEmptyPage            = errors.New("notifications: transport returned no page")
)
