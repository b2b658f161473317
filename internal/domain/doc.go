// Package domain defines the core data models, error taxonomy and contracts
// shared across courier. It contains plain types (wire/state) and interfaces
// only; behaviour lives in the crypto, protocol and services packages.
package domain
