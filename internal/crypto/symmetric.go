package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"courier/internal/domain"
)

// IVSize is the AES-GCM nonce length used for payload encryption.
const IVSize = 12

func encryptAESGCM(plaintext, key, iv []byte, keySize int) (domain.SymmetricCiphertext, error) {
	var err error
	if key == nil {
		if key, err = randomBytes(keySize); err != nil {
			return domain.SymmetricCiphertext{}, err
		}
	}
	if iv == nil {
		if iv, err = randomBytes(IVSize); err != nil {
			return domain.SymmetricCiphertext{}, err
		}
	}
	aead, err := newGCM(key, iv)
	if err != nil {
		return domain.SymmetricCiphertext{}, err
	}
	return domain.SymmetricCiphertext{
		Ciphertext: aead.Seal(nil, iv, plaintext, nil),
		Key:        key,
		IV:         iv,
	}, nil
}

func decryptAESGCM(ciphertext, key, iv []byte) ([]byte, error) {
	aead, err := newGCM(key, iv)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, iv, ciphertext, nil)
	if err != nil {
		return nil, ErrDecrypt
	}
	return pt, nil
}

func newGCM(key, iv []byte) (cipher.AEAD, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidKeySize, len(key))
	}
	if len(iv) != IVSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidIVSize, len(iv))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
