// Package store provides file-based persistence for the local endpoint and
// its pinned contacts.
//
// The OwnEndpoint, private keys and inbox owner token included, is sealed
// with a passphrase (scrypt key derivation, ChaCha20-Poly1305) before it
// touches disk. Contacts are public endpoints and are stored as plain JSON.
// Every write goes through a temporary file and an atomic rename. All methods
// are concurrency-safe via internal locking.
//
// The package includes:
//   - EndpointFileStore (endpoint.json.enc)
//   - ContactFileStore (contacts.json)
package store
