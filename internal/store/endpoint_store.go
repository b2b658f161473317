package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"courier/internal/domain"
	"courier/internal/util/memzero"
)

const endpointFilename = "endpoint.json.enc"

// ErrNoEndpoint is returned by LoadEndpoint before an endpoint was saved.
var ErrNoEndpoint = errors.New("no local endpoint; run init first")

// EndpointFileStore persists the local OwnEndpoint sealed under a passphrase.
type EndpointFileStore struct {
	dir    string
	params scryptParams
	mu     sync.Mutex
}

// NewEndpointFileStore returns an EndpointFileStore rooted at dir.
func NewEndpointFileStore(dir string) *EndpointFileStore {
	return &EndpointFileStore{dir: dir, params: defaultScryptParams()}
}

// SaveEndpoint seals own with passphrase and writes it atomically.
func (s *EndpointFileStore) SaveEndpoint(passphrase string, own domain.OwnEndpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(own)
	if err != nil {
		return err
	}
	defer memzero.Zero(raw)
	ct, err := seal(passphrase, raw, s.params)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	return writeFile(s.path(), ct, 0o600)
}

// LoadEndpoint reads and opens the sealed endpoint.
func (s *EndpointFileStore) LoadEndpoint(passphrase string) (domain.OwnEndpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := readFile(s.path())
	if err != nil {
		return domain.OwnEndpoint{}, err
	}
	if b == nil {
		return domain.OwnEndpoint{}, ErrNoEndpoint
	}
	pt, err := open(passphrase, b)
	if err != nil {
		return domain.OwnEndpoint{}, err
	}
	defer memzero.Zero(pt)
	var own domain.OwnEndpoint
	if err := json.Unmarshal(pt, &own); err != nil {
		return domain.OwnEndpoint{}, fmt.Errorf("decode endpoint: %w", err)
	}
	return own, nil
}

// Exists reports whether an endpoint file is present.
func (s *EndpointFileStore) Exists() bool {
	_, err := os.Stat(s.path())
	return err == nil
}

func (s *EndpointFileStore) path() string { return filepath.Join(s.dir, endpointFilename) }

// Compile-time assertion that EndpointFileStore implements domain.EndpointStore.
var _ domain.EndpointStore = (*EndpointFileStore)(nil)
