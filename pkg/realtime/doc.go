// Package realtime turns server push events into collection updates.
//
// Events form a closed set of types implementing Event. Parse and Decode
// build them from wire names and payloads; Bridge applies each kind to a
// notifications collection:
//
//	wakeup, notifications.read, notifications.unread  refetch page 1, resetting stores
//	notifications.new                                   refetch page 1
//	notifications.seen.all, notifications.read.all      mark all, without a request
//	notifications.delete                                delete locally, without a request
//
// Events travel through a broadcast.Broadcaster so one source can feed
// several bridges. RedisSource fills it from a Redis pub/sub channel and
// RedisPublisher writes to that channel; Local publishes straight into a
// broadcaster for in-process use.
package realtime
