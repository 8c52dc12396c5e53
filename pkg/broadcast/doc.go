// Package broadcast fans values out to any number of in-process subscribers.
//
// Delivery never blocks the publisher: each subscriber owns a buffered
// channel and a value that does not fit is dropped for that subscriber only
// and counted. Subscriptions end when the subscriber is closed, when the
// context passed to Subscribe is done, or when the broadcaster is closed.
// Messages carry a per-broadcaster sequence number so receivers can detect
// gaps left by drops.
package broadcast
