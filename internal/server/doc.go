// Package server implements the HTTP surface of the inbox relay and blob
// host.
//
// HTTP API
//
//	POST   /inbox                       create an inbox; returns {"inbox","token"}
//	POST   /inbox/{id}                  push an envelope (anonymous)
//	GET    /inbox/{id}[?longPoll=1]     list pending items (bearer)
//	GET    /inbox/{id}/ws               websocket of {"item": url} notifications (bearer)
//	GET    /inbox/{id}/items/{item}     fetch one item (anonymous)
//	DELETE /inbox/{id}/items/{item}     delete one item (bearer)
//	POST   /blob                        upload a blob; X-Blob-Expires header, returns {"location"}
//	GET    /blob/{name}                 download a blob (anonymous)
//
// Behaviour
//
//   - Owner tokens are only ever stored hashed.
//   - A long poll returns as soon as an item is pushed, or an empty list
//     after Config.LongPollTimeout.
//   - The relay never sees plaintext; items and blobs are opaque bytes.
//   - Every request is access-logged with method, path, status, bytes and
//     duration.
package server
