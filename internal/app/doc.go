// Package app wires application dependencies for the courier CLI and the
// relay server.
//
// For the CLI it builds the crypto provider, the file stores, the HTTP
// collaborators and the high-level services from Config, exposing them via
// the Wire struct; App adds the unlocked local endpoint and hands out
// channels and push watchers. For the relay it loads RelayConfig from YAML,
// .env and COURIER_* environment variables and opens the configured inbox
// and blob backends.
package app
