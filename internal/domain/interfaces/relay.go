package interfaces

import (
	"context"
	"io"
	"time"

	domaintypes "courier/internal/domain/types"
)

// InboxRelay holds encrypted notifications for recipients until they are
// deleted. List and Delete are owner scoped; Push and Fetch are anonymous.
type InboxRelay interface {
	CreateInbox(ctx context.Context) (domaintypes.InboxCreation, error)
	Push(ctx context.Context, inboxURL string, envelope []byte) error
	List(
		ctx context.Context,
		inboxURL string,
		ownerToken string,
		longPoll bool,
	) ([]domaintypes.InboxItem, error)
	Fetch(ctx context.Context, itemURL string) ([]byte, error)
	Delete(ctx context.Context, itemURL string, ownerToken string) error
}

// BlobUploader stores ciphertext and returns a publicly readable location.
type BlobUploader interface {
	Upload(
		ctx context.Context,
		content io.Reader,
		expiresUTC time.Time,
		contentType string,
	) (string, error)
}

// BlobDownloader reads a blob anonymously by location.
type BlobDownloader interface {
	Download(ctx context.Context, location string) ([]byte, error)
}

// BlobStorage is the full storage collaborator including housekeeping.
type BlobStorage interface {
	BlobUploader
	CreateContainerIfNotExist(ctx context.Context) error
	PurgeExpiredBefore(ctx context.Context, t time.Time) error
}
