package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"github.com/cloudflare/circl/kem/mlkem/mlkem768"
	"golang.org/x/crypto/hkdf"

	"courier/internal/domain"
	"courier/internal/util/memzero"
)

const mlkemWrapInfo = "courier mlkem768 reference wrap v1"

// mlkemSealer encapsulates a fresh secret to the recipient and seals the
// message under an AES-256-GCM key derived from it.
//
// Layout: kem ciphertext || nonce || aes-gcm ciphertext.
type mlkemSealer struct{}

var mlkemScheme = mlkem768.Scheme()

func (mlkemSealer) generate() (domain.KeyPair, error) {
	pk, sk, err := mlkemScheme.GenerateKeyPair()
	if err != nil {
		return domain.KeyPair{}, err
	}
	pub, err := pk.MarshalBinary()
	if err != nil {
		return domain.KeyPair{}, err
	}
	priv, err := sk.MarshalBinary()
	if err != nil {
		return domain.KeyPair{}, err
	}
	return domain.KeyPair{Public: pub, Private: priv}, nil
}

func (mlkemSealer) seal(pub, plaintext []byte) ([]byte, error) {
	if len(pub) != mlkemScheme.PublicKeySize() {
		return nil, ErrInvalidKey
	}
	pk, err := mlkemScheme.UnmarshalBinaryPublicKey(pub)
	if err != nil {
		return nil, ErrInvalidKey
	}
	kemCT, secret, err := mlkemScheme.Encapsulate(pk)
	if err != nil {
		return nil, err
	}
	aead, err := wrapAEAD(secret, kemCT)
	memzero.Zero(secret)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(kemCT)+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, kemCT...)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, plaintext, kemCT), nil
}

func (mlkemSealer) open(priv, sealed []byte) ([]byte, error) {
	if len(priv) != mlkemScheme.PrivateKeySize() {
		return nil, ErrInvalidKey
	}
	sk, err := mlkemScheme.UnmarshalBinaryPrivateKey(priv)
	if err != nil {
		return nil, ErrInvalidKey
	}
	ctSize := mlkemScheme.CiphertextSize()
	if len(sealed) < ctSize+12 {
		return nil, ErrDecrypt
	}
	kemCT := sealed[:ctSize]
	secret, err := mlkemScheme.Decapsulate(sk, kemCT)
	if err != nil {
		return nil, ErrDecrypt
	}
	aead, err := wrapAEAD(secret, kemCT)
	memzero.Zero(secret)
	if err != nil {
		return nil, err
	}
	rest := sealed[ctSize:]
	nonce, body := rest[:aead.NonceSize()], rest[aead.NonceSize():]
	pt, err := aead.Open(nil, nonce, body, kemCT)
	if err != nil {
		return nil, ErrDecrypt
	}
	return pt, nil
}

// wrapAEAD derives the AES-256-GCM key bound to this encapsulation.
func wrapAEAD(secret, kemCT []byte) (cipher.AEAD, error) {
	key := make([]byte, 32)
	defer memzero.Zero(key)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, kemCT, []byte(mlkemWrapInfo)), key); err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
