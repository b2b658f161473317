package types

import (
	"crypto/sha256"
	"encoding/base64"
)

// Thumbprint identifies an endpoint by the hash of its signing public key.
// It is the trust anchor users pin out of band.
type Thumbprint string

// String returns the string form of the thumbprint.
func (t Thumbprint) String() string { return string(t) }

// ComputeThumbprint returns the unpadded base64url SHA-256 digest of a signing
// public key. Thumbprints are always derived from key material and never read
// from a peer.
func ComputeThumbprint(signingKey []byte) Thumbprint {
	sum := sha256.Sum256(signingKey)
	return Thumbprint(base64.RawURLEncoding.EncodeToString(sum[:]))
}

// SecurityLevel names a crypto profile.
type SecurityLevel string

const (
	SecurityMinimum     SecurityLevel = "minimum"
	SecurityRecommended SecurityLevel = "recommended"
	SecurityMaximum     SecurityLevel = "maximum"
)

// String returns the string form of the level.
func (l SecurityLevel) String() string { return string(l) }
