package crypto_test

import (
	"bytes"
	"errors"
	"testing"

	"courier/internal/crypto"
	"courier/internal/domain"
)

func TestProvider_Levels(t *testing.T) {
	tests := []struct {
		level   domain.SecurityLevel
		suite   string
		keySize int
		hash    string
	}{
		{domain.SecurityMinimum, crypto.SuiteClassic, 16, crypto.HashSHA256},
		{domain.SecurityRecommended, crypto.SuiteClassic, 32, crypto.HashSHA256},
		{domain.SecurityMaximum, crypto.SuitePostQuantum, 32, crypto.HashSHA512},
	}
	for _, tc := range tests {
		t.Run(string(tc.level), func(t *testing.T) {
			p, err := crypto.New(tc.level)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if p.Suite() != tc.suite {
				t.Fatalf("suite = %q, want %q", p.Suite(), tc.suite)
			}
			if p.HashAlgorithm() != tc.hash {
				t.Fatalf("hash = %q, want %q", p.HashAlgorithm(), tc.hash)
			}

			sym, err := p.EncryptSymmetric([]byte("bulk"), nil, nil)
			if err != nil {
				t.Fatalf("EncryptSymmetric: %v", err)
			}
			if len(sym.Key) != tc.keySize || len(sym.IV) != crypto.IVSize {
				t.Fatalf("key/iv sizes = %d/%d", len(sym.Key), len(sym.IV))
			}
			pt, err := p.DecryptSymmetric(sym.Ciphertext, sym.Key, sym.IV)
			if err != nil || string(pt) != "bulk" {
				t.Fatalf("DecryptSymmetric = %q, %v", pt, err)
			}
		})
	}
}

func TestProvider_UnknownLevel(t *testing.T) {
	if _, err := crypto.New("paranoid"); !errors.Is(err, crypto.ErrUnknownLevel) {
		t.Fatalf("expected ErrUnknownLevel, got %v", err)
	}
}

func TestProvider_SignEncryptRoundTrip(t *testing.T) {
	for _, level := range []domain.SecurityLevel{domain.SecurityRecommended, domain.SecurityMaximum} {
		t.Run(string(level), func(t *testing.T) {
			p, err := crypto.New(level)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			sk, err := p.GenerateSigningKeyPair()
			if err != nil {
				t.Fatalf("GenerateSigningKeyPair: %v", err)
			}
			ek, err := p.GenerateEncryptionKeyPair()
			if err != nil {
				t.Fatalf("GenerateEncryptionKeyPair: %v", err)
			}

			msg := []byte("payload reference bytes")
			sig, err := p.Sign(msg, sk.Private)
			if err != nil {
				t.Fatalf("Sign: %v", err)
			}
			if !p.VerifySignature(sk.Public, msg, sig) {
				t.Fatal("signature did not verify")
			}
			if p.VerifySignature(sk.Public, []byte("other"), sig) {
				t.Fatal("signature verified over different data")
			}

			ct, err := p.Encrypt(ek.Public, msg)
			if err != nil {
				t.Fatalf("Encrypt: %v", err)
			}
			pt, err := p.Decrypt(ek.Private, ct)
			if err != nil {
				t.Fatalf("Decrypt: %v", err)
			}
			if !bytes.Equal(pt, msg) {
				t.Fatalf("decrypted %q, want %q", pt, msg)
			}

			ct[len(ct)-1] ^= 0xff
			if _, err := p.Decrypt(ek.Private, ct); !errors.Is(err, crypto.ErrDecrypt) {
				t.Fatalf("expected ErrDecrypt on tampered ciphertext, got %v", err)
			}
		})
	}
}

func TestProvider_RejectsWrongKeyMaterial(t *testing.T) {
	p, err := crypto.New(domain.SecurityRecommended)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := p.Sign([]byte("x"), []byte("short")); !errors.Is(err, crypto.ErrInvalidKey) {
		t.Fatalf("Sign with short key: %v", err)
	}
	if _, err := p.Encrypt([]byte("short"), []byte("x")); !errors.Is(err, crypto.ErrInvalidKey) {
		t.Fatalf("Encrypt with short key: %v", err)
	}
	if _, err := p.EncryptSymmetric([]byte("x"), make([]byte, 7), nil); !errors.Is(err, crypto.ErrInvalidKeySize) {
		t.Fatalf("EncryptSymmetric with 7-byte key: %v", err)
	}
	if _, err := p.DecryptSymmetric([]byte("x"), make([]byte, 32), make([]byte, 4)); !errors.Is(err, crypto.ErrInvalidIVSize) {
		t.Fatalf("DecryptSymmetric with 4-byte IV: %v", err)
	}
}

func TestRegistry_ResolvesBothSuites(t *testing.T) {
	primary, err := crypto.New(domain.SecurityMinimum)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	reg := crypto.NewRegistry(primary)

	got, err := reg.Resolve(crypto.SuiteClassic)
	if err != nil {
		t.Fatalf("Resolve classic: %v", err)
	}
	if got != primary {
		t.Fatal("primary provider not returned for its own suite")
	}
	if _, err := reg.Resolve(crypto.SuitePostQuantum); err != nil {
		t.Fatalf("Resolve post-quantum: %v", err)
	}
	if _, err := reg.Resolve("rsa-2048"); !errors.Is(err, crypto.ErrUnknownSuite) {
		t.Fatalf("expected ErrUnknownSuite, got %v", err)
	}

	h, err := reg.Hasher(crypto.HashBLAKE2b256)
	if err != nil {
		t.Fatalf("Hasher: %v", err)
	}
	if len(h([]byte("x"))) != 32 {
		t.Fatal("BLAKE2b-256 digest is not 32 bytes")
	}
}

func TestFingerprint_Groups(t *testing.T) {
	got := crypto.Fingerprint(domain.Thumbprint("abcdEFGH-_12"))
	if got != "abcd EFGH -_12" {
		t.Fatalf("Fingerprint = %q", got)
	}
}
