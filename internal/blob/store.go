package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"courier/internal/domain"
)

// ErrNoBlob is returned for a blob name that is absent or expired.
var ErrNoBlob = errors.New("blob: no such blob")

// MaxBlobSize bounds a single upload.
const MaxBlobSize = 64 << 20

// Blob is a stored object as served back to readers.
type Blob struct {
	Name        string
	ContentType string
	ExpiresUTC  time.Time
	Content     []byte
}

// Server is a domain.BlobStorage whose blobs can also be read back by name.
type Server interface {
	domain.BlobStorage
	Get(ctx context.Context, name string) (Blob, error)
	Close() error
}

// locator turns blob names into public locations under base.
type locator struct{ base string }

func (l locator) location(name string) string { return l.base + "/blob/" + name }

func newName() string { return uuid.NewString() }

func checkUpload(expiresUTC time.Time, contentType string, now time.Time) error {
	switch {
	case contentType == "":
		return fmt.Errorf("%w: empty content type", domain.ErrInvalidArgument)
	case expiresUTC.Location() != time.UTC:
		return fmt.Errorf("%w: expiration is not UTC", domain.ErrInvalidArgument)
	case !expiresUTC.After(now):
		return fmt.Errorf("%w: expiration is in the past", domain.ErrInvalidArgument)
	}
	return nil
}

func trimBase(base string) string { return strings.TrimRight(base, "/") }
