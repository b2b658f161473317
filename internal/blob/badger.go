package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"courier/internal/domain"
)

const (
	prefixData = "blob:data:"
	prefixMeta = "blob:meta:"
	keyVersion = "blob:container"
)

type blobMeta struct {
	ContentType string    `json:"content_type"`
	Expires     time.Time `json:"expires"`
}

// BadgerStore keeps blobs in an embedded Badger database. Entries carry a
// TTL equal to the blob's expiration, so expired blobs vanish even if no
// purge runs.
type BadgerStore struct {
	locator
	db  *badger.DB
	log *zap.Logger
	now func() time.Time
}

// OpenBadgerStore opens (creating if needed) the database in dir. Locations
// are rooted at base.
func OpenBadgerStore(dir, base string, log *zap.Logger) (*BadgerStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open blob db: %w", err)
	}
	return &BadgerStore{locator: locator{base: trimBase(base)}, db: db, log: log, now: time.Now}, nil
}

// CreateContainerIfNotExist stamps the database as a blob container.
func (s *BadgerStore) CreateContainerIfNotExist(context.Context) error {
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(keyVersion))
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set([]byte(keyVersion), []byte("1"))
	})
}

func (s *BadgerStore) Upload(
	_ context.Context,
	content io.Reader,
	expiresUTC time.Time,
	contentType string,
) (string, error) {
	now := s.now()
	if err := checkUpload(expiresUTC, contentType, now); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(content, MaxBlobSize+1)); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}
	if buf.Len() > MaxBlobSize {
		return "", fmt.Errorf("%w: blob exceeds %d bytes", domain.ErrUploadFailed, MaxBlobSize)
	}
	meta, err := json.Marshal(blobMeta{ContentType: contentType, Expires: expiresUTC})
	if err != nil {
		return "", err
	}

	name := newName()
	ttl := expiresUTC.Sub(now)
	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.SetEntry(badger.NewEntry([]byte(prefixData+name), buf.Bytes()).WithTTL(ttl)); err != nil {
			return err
		}
		return txn.SetEntry(badger.NewEntry([]byte(prefixMeta+name), meta).WithTTL(ttl))
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
	}
	return s.location(name), nil
}

func (s *BadgerStore) Get(_ context.Context, name string) (Blob, error) {
	out := Blob{Name: name}
	err := s.db.View(func(txn *badger.Txn) error {
		metaItem, err := txn.Get([]byte(prefixMeta + name))
		if err != nil {
			return err
		}
		var meta blobMeta
		if err := metaItem.Value(func(v []byte) error { return json.Unmarshal(v, &meta) }); err != nil {
			return err
		}
		dataItem, err := txn.Get([]byte(prefixData + name))
		if err != nil {
			return err
		}
		out.ContentType = meta.ContentType
		out.ExpiresUTC = meta.Expires.UTC()
		out.Content, err = dataItem.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Blob{}, ErrNoBlob
	}
	if err != nil {
		return Blob{}, err
	}
	if !s.now().Before(out.ExpiresUTC) {
		return Blob{}, ErrNoBlob
	}
	return out, nil
}

// PurgeExpiredBefore deletes every blob expiring before t and reclaims log
// space.
func (s *BadgerStore) PurgeExpiredBefore(ctx context.Context, t time.Time) error {
	var expired []string
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixMeta)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var meta blobMeta
			if err := item.Value(func(v []byte) error { return json.Unmarshal(v, &meta) }); err != nil {
				return err
			}
			if meta.Expires.Before(t) {
				expired = append(expired, string(item.Key()[len(prefix):]))
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scan blobs: %w", err)
	}

	for _, name := range expired {
		err := s.db.Update(func(txn *badger.Txn) error {
			if err := txn.Delete([]byte(prefixData + name)); err != nil {
				return err
			}
			return txn.Delete([]byte(prefixMeta + name))
		})
		if err != nil {
			return fmt.Errorf("delete blob %s: %w", name, err)
		}
	}
	if len(expired) > 0 {
		s.log.Info("purged expired blobs", zap.Int("count", len(expired)), zap.Time("before", t))
		if err := s.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
			s.log.Debug("value log gc", zap.Error(err))
		}
	}
	return nil
}

func (s *BadgerStore) Close() error { return s.db.Close() }

var _ Server = (*BadgerStore)(nil)
