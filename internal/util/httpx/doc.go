// Package httpx holds the HTTP plumbing shared by the relay and blob clients:
// status errors, bearer authorisation and retry with exponential backoff.
package httpx
