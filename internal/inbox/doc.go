// Package inbox holds the server-side storage of the inbox relay: inboxes
// with their owner-token hashes and the opaque items pushed to them.
//
// Backends:
//   - MemoryStore: process-local, for development and tests.
//   - RedisStore: item bodies under inbox:item:{id} with a TTL, a FIFO list
//     inbox:queue:{inbox} of item ids, owner hash under inbox:owner:{inbox}.
//   - MongoStore: inboxes and items collections; a TTL index expires items.
//
// A Notifier wakes long-poll and websocket listeners when an item is pushed.
// Hub does this in-process; RedisNotifier fans out over pub/sub so several
// relay instances can share one Redis.
package inbox
