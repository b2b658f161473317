package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"courier/internal/domain"
)

const contactsFilename = "contacts.json"

// ContactFileStore keeps pinned endpoints by name in a JSON file.
type ContactFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewContactFileStore returns a ContactFileStore rooted at dir.
func NewContactFileStore(dir string) *ContactFileStore { return &ContactFileStore{dir: dir} }

// SaveContact adds or replaces the endpoint pinned under name.
func (s *ContactFileStore) SaveContact(name string, endpoint domain.Endpoint) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: empty contact name", domain.ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[string]domain.Endpoint)
	if err := readJSON(s.path(), &m); err != nil {
		return err
	}
	m[name] = endpoint
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	return writeJSON(s.path(), m, 0o600)
}

// LoadContact returns the endpoint pinned under name.
func (s *ContactFileStore) LoadContact(name string) (domain.Endpoint, bool, error) {
	m, err := s.ListContacts()
	if err != nil {
		return domain.Endpoint{}, false, err
	}
	e, ok := m[strings.TrimSpace(name)]
	return e, ok, nil
}

// ListContacts returns every pinned endpoint keyed by name.
func (s *ContactFileStore) ListContacts() (map[string]domain.Endpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m := make(map[string]domain.Endpoint)
	if err := readJSON(s.path(), &m); err != nil {
		return nil, err
	}
	return m, nil
}

// FindByThumbprint returns the name under which a sender is pinned.
func (s *ContactFileStore) FindByThumbprint(t domain.Thumbprint) (string, bool, error) {
	m, err := s.ListContacts()
	if err != nil {
		return "", false, err
	}
	for name, e := range m {
		if e.Thumbprint() == t {
			return name, true, nil
		}
	}
	return "", false, nil
}

func (s *ContactFileStore) path() string { return filepath.Join(s.dir, contactsFilename) }

// Compile-time assertion that ContactFileStore implements domain.ContactStore.
var _ domain.ContactStore = (*ContactFileStore)(nil)
