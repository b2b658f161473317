package crypto

import "errors"

var (
	// ErrInvalidKey is returned for key material of the wrong size or format.
	ErrInvalidKey = errors.New("crypto: invalid key material")
	// ErrInvalidKeySize is returned for a symmetric key that is not 16, 24 or 32 bytes.
	ErrInvalidKeySize = errors.New("crypto: invalid symmetric key size")
	// ErrInvalidIVSize is returned for an IV that is not IVSize bytes.
	ErrInvalidIVSize = errors.New("crypto: invalid IV size")
	// ErrDecrypt is returned when authenticated decryption fails.
	ErrDecrypt = errors.New("crypto: decryption failed")
	// ErrUnknownSuite is returned for a suite name no provider handles.
	ErrUnknownSuite = errors.New("crypto: unknown suite")
	// ErrUnknownHash is returned for an unsupported hash algorithm name.
	ErrUnknownHash = errors.New("crypto: unknown hash algorithm")
	// ErrUnknownLevel is returned for an unsupported security level.
	ErrUnknownLevel = errors.New("crypto: unknown security level")
)
