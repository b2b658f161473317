package inbox

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"time"
)

var (
	// ErrNoInbox is returned for an inbox id that was never created.
	ErrNoInbox = errors.New("inbox: no such inbox")
	// ErrNoItem is returned for an item id that is absent or expired.
	ErrNoItem = errors.New("inbox: no such item")
)

// Item is one stored envelope.
type Item struct {
	ID      string
	Inbox   string
	Posted  time.Time
	Expires time.Time
	Body    []byte
}

// Store persists inboxes and their items.
type Store interface {
	CreateInbox(ctx context.Context, id string, ownerHash []byte) error
	OwnerHash(ctx context.Context, id string) ([]byte, error)
	Push(ctx context.Context, item Item) error
	// List returns pending items oldest first, without bodies.
	List(ctx context.Context, inbox string) ([]Item, error)
	Get(ctx context.Context, inbox, id string) (Item, error)
	Delete(ctx context.Context, inbox, id string) error
	Close() error
}

// HashToken returns the digest stored in place of an owner token.
func HashToken(token string) []byte {
	sum := sha256.Sum256([]byte(token))
	return sum[:]
}

// TokenMatches compares a presented token against a stored hash in constant
// time.
func TokenMatches(token string, hash []byte) bool {
	return subtle.ConstantTimeCompare(HashToken(token), hash) == 1
}
