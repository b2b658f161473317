package inbox

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ownerKeyPrefix = "inbox:owner:"
	queueKeyPrefix = "inbox:queue:"
	itemKeyPrefix  = "inbox:item:"
	notifyPrefix   = "inbox:notify:"
)

// RedisStore keeps inboxes in Redis.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps an existing client.
func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func (s *RedisStore) CreateInbox(ctx context.Context, id string, ownerHash []byte) error {
	return s.rdb.Set(ctx, ownerKeyPrefix+id, ownerHash, 0).Err()
}

func (s *RedisStore) OwnerHash(ctx context.Context, id string) ([]byte, error) {
	b, err := s.rdb.Get(ctx, ownerKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoInbox
	}
	return b, err
}

func (s *RedisStore) Push(ctx context.Context, item Item) error {
	if _, err := s.OwnerHash(ctx, item.Inbox); err != nil {
		return err
	}
	key := itemKeyPrefix + item.ID
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key,
			"inbox", item.Inbox,
			"posted", strconv.FormatInt(item.Posted.UnixNano(), 10),
			"body", item.Body,
		)
		if !item.Expires.IsZero() {
			p.ExpireAt(ctx, key, item.Expires)
		}
		p.RPush(ctx, queueKeyPrefix+item.Inbox, item.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis push: %w", err)
	}
	return nil
}

func (s *RedisStore) List(ctx context.Context, inbox string) ([]Item, error) {
	if _, err := s.OwnerHash(ctx, inbox); err != nil {
		return nil, err
	}
	queueKey := queueKeyPrefix + inbox
	ids, err := s.rdb.LRange(ctx, queueKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Item, 0, len(ids))
	for _, id := range ids {
		posted, err := s.rdb.HGet(ctx, itemKeyPrefix+id, "posted").Result()
		if errors.Is(err, redis.Nil) {
			// Expired; drop from the queue.
			s.rdb.LRem(ctx, queueKey, 1, id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Item{ID: id, Inbox: inbox, Posted: parseNanos(posted)})
	}
	return out, nil
}

func (s *RedisStore) Get(ctx context.Context, inbox, id string) (Item, error) {
	vals, err := s.rdb.HGetAll(ctx, itemKeyPrefix+id).Result()
	if err != nil {
		return Item{}, err
	}
	if len(vals) == 0 || vals["inbox"] != inbox {
		return Item{}, ErrNoItem
	}
	return Item{ID: id, Inbox: inbox, Posted: parseNanos(vals["posted"]), Body: []byte(vals["body"])}, nil
}

// deleteItem removes the item only when it belongs to the inbox in ARGV[1].
// KEYS: queue, item hash. ARGV: inbox id, item id.
var deleteItem = redis.NewScript(`
if redis.call('HGET', KEYS[2], 'inbox') ~= ARGV[1] then
	return 0
end
redis.call('LREM', KEYS[1], 1, ARGV[2])
redis.call('DEL', KEYS[2])
return 1
`)

func (s *RedisStore) Delete(ctx context.Context, inbox, id string) error {
	n, err := deleteItem.Run(ctx, s.rdb, []string{queueKeyPrefix + inbox, itemKeyPrefix + id}, inbox, id).Int()
	if err != nil {
		return fmt.Errorf("redis delete: %w", err)
	}
	if n == 0 {
		return ErrNoItem
	}
	return nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }

func parseNanos(s string) time.Time {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

var _ Store = (*RedisStore)(nil)
