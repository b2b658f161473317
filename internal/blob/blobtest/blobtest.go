// Package blobtest provides a blob server for tests that need to count
// uploads or to serve content other than what was uploaded.
package blobtest

import (
	"context"
	"io"
	"slices"
	"strings"
	"sync"
	"time"

	"courier/internal/blob"
)

// Store wraps a blob.Server.
type Store struct {
	blob.Server

	mu       sync.Mutex
	uploads  int
	replaced map[string][]byte
}

// New returns a Store over an in-memory blob server rooted at base.
func New(base string) *Store {
	return &Store{Server: blob.NewMemoryStore(base), replaced: make(map[string][]byte)}
}

func (s *Store) Upload(ctx context.Context, content io.Reader, expiresUTC time.Time, contentType string) (string, error) {
	loc, err := s.Server.Upload(ctx, content, expiresUTC, contentType)
	if err == nil {
		s.mu.Lock()
		s.uploads++
		s.mu.Unlock()
	}
	return loc, err
}

func (s *Store) Get(ctx context.Context, name string) (blob.Blob, error) {
	b, err := s.Server.Get(ctx, name)
	if err != nil {
		return b, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.replaced[name]; ok {
		b.Content = slices.Clone(c)
	}
	return b, nil
}

// Replace serves content for the existing blob name from now on, as a hostile
// or broken storage host could.
func (s *Store) Replace(name string, content []byte) error {
	if _, err := s.Server.Get(context.Background(), name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaced[name] = slices.Clone(content)
	return nil
}

// Uploads returns the number of successful uploads.
func (s *Store) Uploads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploads
}

// Name returns the blob name at the end of a location.
func Name(location string) string { return location[strings.LastIndex(location, "/")+1:] }

var _ blob.Server = (*Store)(nil)
