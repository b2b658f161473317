// Package blob implements the blob storage collaborator.
//
// BadgerStore and MemoryStore are server-side backends implementing
// domain.BlobStorage; the relay serves their blobs for anonymous download.
// HTTP is the client used by peers to upload ciphertext to such a server and
// to download blobs by location from any HTTP host.
package blob
