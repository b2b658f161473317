package crypto

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// Hash algorithm names recorded in payload references.
const (
	HashSHA256     = "SHA256"
	HashSHA512     = "SHA512"
	HashBLAKE2b256 = "BLAKE2b-256"
)

// HashFunc digests data.
type HashFunc func(data []byte) []byte

// HashByName returns the hash function registered under name.
func HashByName(name string) (HashFunc, error) {
	switch name {
	case HashSHA256:
		return func(b []byte) []byte { s := sha256.Sum256(b); return s[:] }, nil
	case HashSHA512:
		return func(b []byte) []byte { s := sha512.Sum512(b); return s[:] }, nil
	case HashBLAKE2b256:
		return func(b []byte) []byte { s := blake2b.Sum256(b); return s[:] }, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownHash, name)
}
