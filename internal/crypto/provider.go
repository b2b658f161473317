package crypto

import (
	"fmt"

	"courier/internal/domain"
)

// Suite names.
const (
	SuiteClassic     = "ed25519-x25519"
	SuitePostQuantum = "mldsa65-mlkem768"
)

type signer interface {
	generate() (domain.KeyPair, error)
	sign(priv, data []byte) ([]byte, error)
	verify(pub, data, sig []byte) bool
}

type sealer interface {
	generate() (domain.KeyPair, error)
	seal(pub, plaintext []byte) ([]byte, error)
	open(priv, sealed []byte) ([]byte, error)
}

type suite struct {
	signer signer
	sealer sealer
}

var suites = map[string]suite{
	SuiteClassic:     {signer: ed25519Signer{}, sealer: x25519Sealer{}},
	SuitePostQuantum: {signer: mldsaSigner{}, sealer: mlkemSealer{}},
}

// Profile selects the algorithms behind a Provider.
type Profile struct {
	Suite            string
	SymmetricKeySize int
	HashAlgorithm    string
}

// ProfileFor returns the profile of a security level.
func ProfileFor(level domain.SecurityLevel) (Profile, error) {
	switch level {
	case domain.SecurityMinimum:
		return Profile{Suite: SuiteClassic, SymmetricKeySize: 16, HashAlgorithm: HashSHA256}, nil
	case domain.SecurityRecommended, "":
		return Profile{Suite: SuiteClassic, SymmetricKeySize: 32, HashAlgorithm: HashSHA256}, nil
	case domain.SecurityMaximum:
		return Profile{Suite: SuitePostQuantum, SymmetricKeySize: 32, HashAlgorithm: HashSHA512}, nil
	}
	return Profile{}, fmt.Errorf("%w: %q", ErrUnknownLevel, level)
}

// Provider implements domain.CryptoProvider for one Profile. It holds no key
// material and is safe for concurrent use.
type Provider struct {
	profile Profile
	suite   suite
	hash    HashFunc
}

// New returns the provider for a security level.
func New(level domain.SecurityLevel) (*Provider, error) {
	p, err := ProfileFor(level)
	if err != nil {
		return nil, err
	}
	return NewWithProfile(p)
}

// NewWithProfile returns a provider for an explicit profile.
func NewWithProfile(p Profile) (*Provider, error) {
	s, ok := suites[p.Suite]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSuite, p.Suite)
	}
	switch p.SymmetricKeySize {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidKeySize, p.SymmetricKeySize)
	}
	h, err := HashByName(p.HashAlgorithm)
	if err != nil {
		return nil, err
	}
	return &Provider{profile: p, suite: s, hash: h}, nil
}

// Profile returns the algorithms in use.
func (p *Provider) Profile() Profile { return p.profile }

func (p *Provider) Suite() string { return p.profile.Suite }

func (p *Provider) Sign(data, privateKey []byte) ([]byte, error) {
	return p.suite.signer.sign(privateKey, data)
}

func (p *Provider) VerifySignature(publicKey, data, signature []byte) bool {
	return p.suite.signer.verify(publicKey, data, signature)
}

func (p *Provider) Encrypt(publicKey, plaintext []byte) ([]byte, error) {
	return p.suite.sealer.seal(publicKey, plaintext)
}

func (p *Provider) Decrypt(privateKey, ciphertext []byte) ([]byte, error) {
	return p.suite.sealer.open(privateKey, ciphertext)
}

func (p *Provider) EncryptSymmetric(plaintext, key, iv []byte) (domain.SymmetricCiphertext, error) {
	return encryptAESGCM(plaintext, key, iv, p.profile.SymmetricKeySize)
}

func (p *Provider) DecryptSymmetric(ciphertext, key, iv []byte) ([]byte, error) {
	return decryptAESGCM(ciphertext, key, iv)
}

func (p *Provider) Hash(data []byte) []byte { return p.hash(data) }

func (p *Provider) HashAlgorithm() string { return p.profile.HashAlgorithm }

func (p *Provider) GenerateSigningKeyPair() (domain.KeyPair, error) {
	return p.suite.signer.generate()
}

func (p *Provider) GenerateEncryptionKeyPair() (domain.KeyPair, error) {
	return p.suite.sealer.generate()
}

var _ domain.CryptoProvider = (*Provider)(nil)
