package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"courier/internal/domain"
)

// MemoryStore keeps blobs in memory.
type MemoryStore struct {
	locator
	mu    sync.Mutex
	blobs map[string]Blob
	now   func() time.Time
}

// NewMemoryStore returns a store whose locations are rooted at base.
func NewMemoryStore(base string) *MemoryStore {
	return &MemoryStore{locator: locator{base: trimBase(base)}, blobs: make(map[string]Blob), now: time.Now}
}

func (s *MemoryStore) Upload(
	_ context.Context,
	content io.Reader,
	expiresUTC time.Time,
	contentType string,
) (string, error) {
	if err := checkUpload(expiresUTC, contentType, s.now()); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(content, MaxBlobSize+1)); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}
	if buf.Len() > MaxBlobSize {
		return "", fmt.Errorf("%w: blob exceeds %d bytes", domain.ErrUploadFailed, MaxBlobSize)
	}
	name := newName()
	s.mu.Lock()
	s.blobs[name] = Blob{Name: name, ContentType: contentType, ExpiresUTC: expiresUTC, Content: buf.Bytes()}
	s.mu.Unlock()
	return s.location(name), nil
}

func (s *MemoryStore) CreateContainerIfNotExist(context.Context) error { return nil }

func (s *MemoryStore) PurgeExpiredBefore(_ context.Context, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, b := range s.blobs {
		if b.ExpiresUTC.Before(t) {
			delete(s.blobs, name)
		}
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, name string) (Blob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.blobs[name]
	if !ok || !s.now().Before(b.ExpiresUTC) {
		return Blob{}, ErrNoBlob
	}
	b.Content = slices.Clone(b.Content)
	return b, nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Server = (*MemoryStore)(nil)
