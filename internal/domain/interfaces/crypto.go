package interfaces

import domaintypes "courier/internal/domain/types"

// CryptoProvider is the set of primitives the protocol composes. Key material
// is opaque encoded bytes owned by the provider's suite.
type CryptoProvider interface {
	// Suite names the signing and asymmetric encryption algorithms.
	Suite() string

	Sign(data, privateKey []byte) ([]byte, error)
	VerifySignature(publicKey, data, signature []byte) bool

	// Encrypt and Decrypt are asymmetric and meant for small inputs such as
	// signed payload references.
	Encrypt(publicKey, plaintext []byte) ([]byte, error)
	Decrypt(privateKey, ciphertext []byte) ([]byte, error)

	// EncryptSymmetric generates a fresh key and IV when either is nil.
	EncryptSymmetric(plaintext, key, iv []byte) (domaintypes.SymmetricCiphertext, error)
	DecryptSymmetric(ciphertext, key, iv []byte) ([]byte, error)

	Hash(data []byte) []byte
	HashAlgorithm() string

	GenerateSigningKeyPair() (domaintypes.KeyPair, error)
	GenerateEncryptionKeyPair() (domaintypes.KeyPair, error)
}

// SuiteResolver finds the provider able to handle a peer's suite.
type SuiteResolver interface {
	Resolve(suite string) (CryptoProvider, error)
	// Hasher returns the hash function named in a payload reference.
	Hasher(algorithm string) (func([]byte) []byte, error)
}
