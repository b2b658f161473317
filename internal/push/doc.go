// Package push attaches relay push notifications to a channel.
//
// A Watcher holds a websocket to the relay's /inbox/{id}/ws endpoint and
// calls back once per pushed item. The channel itself never needs it; a
// client that wants prompt delivery runs a Watcher and triggers a receive
// pass from the callback.
package push
