// Package main runs the courier inbox relay and blob host.
//
// The relay holds encrypted notifications in per-recipient inboxes until the
// owner deletes them, and serves uploaded ciphertext blobs anonymously until
// they expire. It never sees plaintext or private keys.
//
// Configuration
//
// Settings come from a YAML file (--config, default relay.yaml, optional),
// then from COURIER_* environment variables, with a .env file in the working
// directory loaded first when present:
//
//	listen            COURIER_LISTEN            default :8080
//	public_url        COURIER_PUBLIC_URL        default http://localhost:8080
//	long_poll_timeout COURIER_LONG_POLL_TIMEOUT default 30s
//	item_ttl          COURIER_ITEM_TTL          default 720h
//	purge_interval    COURIER_PURGE_INTERVAL    default 10m
//	inbox.backend     COURIER_INBOX_BACKEND     memory | redis | mongo
//	blob.backend      COURIER_BLOB_BACKEND      memory | badger
//	blob.dir          COURIER_BLOB_DIR          default ./blobs
//
// Redis and MongoDB connections are configured with COURIER_REDIS_ADDR,
// COURIER_REDIS_PASSWORD, COURIER_REDIS_DB, COURIER_MONGO_URI and
// COURIER_MONGO_DATABASE.
//
// The HTTP API is documented in package internal/server. SIGINT or SIGTERM
// drains in-flight requests for up to ten seconds before exit.
package main
