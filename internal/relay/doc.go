// Package relay provides an HTTP implementation of domain.InboxRelay.
//
// The relay is a store-and-forward service for encrypted envelopes. Anyone
// may push to an inbox or fetch an item by its unguessable URL; listing and
// deleting require the bearer token handed out when the inbox was created.
//
// Supported operations:
//   - Creating an inbox (returns its URL and owner token).
//   - Pushing an envelope to any inbox.
//   - Listing pending items, optionally as a long poll.
//   - Fetching a single item.
//   - Deleting an item once it has been processed.
//
// List, Fetch and Delete are retried with backoff on transient failures.
// Non-2xx statuses are returned as *httpx.StatusError values carrying the
// method, URL and status text.
package relay
