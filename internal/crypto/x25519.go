package crypto

import (
	"crypto/rand"

	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/nacl/box"

	"courier/internal/domain"
	"courier/internal/util/memzero"
)

// x25519Sealer wraps small messages in anonymous NaCl boxes.
type x25519Sealer struct{}

func (x25519Sealer) generate() (domain.KeyPair, error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return domain.KeyPair{}, err
	}
	kp := domain.KeyPair{Public: append([]byte(nil), pub[:]...), Private: append([]byte(nil), priv[:]...)}
	memzero.Zero(priv[:])
	return kp, nil
}

func (x25519Sealer) seal(pub, plaintext []byte) ([]byte, error) {
	if len(pub) != curve25519.PointSize {
		return nil, ErrInvalidKey
	}
	var pk [32]byte
	copy(pk[:], pub)
	return box.SealAnonymous(nil, plaintext, &pk, rand.Reader)
}

func (x25519Sealer) open(priv, sealed []byte) ([]byte, error) {
	if len(priv) != curve25519.ScalarSize {
		return nil, ErrInvalidKey
	}
	pubBytes, err := curve25519.X25519(priv, curve25519.Basepoint)
	if err != nil {
		return nil, ErrInvalidKey
	}
	var pk, sk [32]byte
	copy(pk[:], pubBytes)
	copy(sk[:], priv)
	defer memzero.Zero(sk[:])

	out, ok := box.OpenAnonymous(nil, sealed, &pk, &sk)
	if !ok {
		return nil, ErrDecrypt
	}
	return out, nil
}
