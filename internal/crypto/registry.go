package crypto

import (
	"fmt"

	"courier/internal/domain"
)

// Registry resolves suite names to providers.
type Registry struct {
	providers map[string]domain.CryptoProvider
}

// NewRegistry registers primary and then fills every other known suite with
// its recommended-strength provider.
func NewRegistry(primary domain.CryptoProvider) *Registry {
	r := &Registry{providers: map[string]domain.CryptoProvider{primary.Suite(): primary}}
	for name := range suites {
		if _, ok := r.providers[name]; ok {
			continue
		}
		p, err := NewWithProfile(Profile{Suite: name, SymmetricKeySize: 32, HashAlgorithm: HashSHA256})
		if err != nil {
			continue
		}
		r.providers[name] = p
	}
	return r
}

// Register adds or replaces the provider for its suite.
func (r *Registry) Register(p domain.CryptoProvider) { r.providers[p.Suite()] = p }

// Resolve returns the provider of suite.
func (r *Registry) Resolve(suite string) (domain.CryptoProvider, error) {
	p, ok := r.providers[suite]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSuite, suite)
	}
	return p, nil
}

// Hasher returns the hash function named in a payload reference.
func (r *Registry) Hasher(algorithm string) (func([]byte) []byte, error) {
	h, err := HashByName(algorithm)
	if err != nil {
		return nil, err
	}
	return h, nil
}

var _ domain.SuiteResolver = (*Registry)(nil)
