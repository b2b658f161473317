package inbox

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	inboxes map[string]*memInbox
	now     func() time.Time
}

type memInbox struct {
	ownerHash []byte
	items     []Item
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{inboxes: make(map[string]*memInbox), now: time.Now}
}

func (s *MemoryStore) CreateInbox(_ context.Context, id string, ownerHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inboxes[id] = &memInbox{ownerHash: slices.Clone(ownerHash)}
	return nil
}

func (s *MemoryStore) OwnerHash(_ context.Context, id string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.inboxes[id]
	if !ok {
		return nil, ErrNoInbox
	}
	return in.ownerHash, nil
}

func (s *MemoryStore) Push(_ context.Context, item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.inboxes[item.Inbox]
	if !ok {
		return ErrNoInbox
	}
	item.Body = slices.Clone(item.Body)
	in.items = append(in.items, item)
	return nil
}

func (s *MemoryStore) List(_ context.Context, inbox string) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.inboxes[inbox]
	if !ok {
		return nil, ErrNoInbox
	}
	s.dropExpired(in)
	out := make([]Item, 0, len(in.items))
	for _, it := range in.items {
		it.Body = nil
		out = append(out, it)
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, inbox, id string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.inboxes[inbox]
	if !ok {
		return Item{}, ErrNoInbox
	}
	s.dropExpired(in)
	for _, it := range in.items {
		if it.ID == id {
			it.Body = slices.Clone(it.Body)
			return it, nil
		}
	}
	return Item{}, ErrNoItem
}

func (s *MemoryStore) Delete(_ context.Context, inbox, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	in, ok := s.inboxes[inbox]
	if !ok {
		return ErrNoInbox
	}
	i := slices.IndexFunc(in.items, func(it Item) bool { return it.ID == id })
	if i < 0 {
		return ErrNoItem
	}
	in.items = slices.Delete(in.items, i, i+1)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

// dropExpired must be called with s.mu held.
func (s *MemoryStore) dropExpired(in *memInbox) {
	now := s.now()
	in.items = slices.DeleteFunc(in.items, func(it Item) bool {
		return !it.Expires.IsZero() && !now.Before(it.Expires)
	})
}

var _ Store = (*MemoryStore)(nil)
