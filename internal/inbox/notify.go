package inbox

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Notifier announces pushed item ids to listeners of an inbox.
type Notifier interface {
	Notify(ctx context.Context, inbox, itemID string)
	// Subscribe returns a channel of item ids and a cancel func that must be
	// called to release the subscription.
	Subscribe(ctx context.Context, inbox string) (<-chan string, func())
}

// Hub is an in-process Notifier. Slow listeners miss notifications rather
// than block pushes.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan string]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub { return &Hub{subs: make(map[string]map[chan string]struct{})} }

func (h *Hub) Notify(_ context.Context, inbox, itemID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[inbox] {
		select {
		case ch <- itemID:
		default:
		}
	}
}

func (h *Hub) Subscribe(_ context.Context, inbox string) (<-chan string, func()) {
	ch := make(chan string, 16)
	h.mu.Lock()
	if h.subs[inbox] == nil {
		h.subs[inbox] = make(map[chan string]struct{})
	}
	h.subs[inbox][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[inbox], ch)
			if len(h.subs[inbox]) == 0 {
				delete(h.subs, inbox)
			}
			h.mu.Unlock()
		})
	}
}

// RedisNotifier publishes on inbox:notify:{inbox}.
type RedisNotifier struct {
	rdb *redis.Client
	log *zap.Logger
}

// NewRedisNotifier wraps an existing client.
func NewRedisNotifier(rdb *redis.Client, log *zap.Logger) *RedisNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisNotifier{rdb: rdb, log: log}
}

func (n *RedisNotifier) Notify(ctx context.Context, inbox, itemID string) {
	if err := n.rdb.Publish(ctx, notifyPrefix+inbox, itemID).Err(); err != nil {
		n.log.Warn("publish inbox notification", zap.String("inbox", inbox), zap.Error(err))
	}
}

func (n *RedisNotifier) Subscribe(ctx context.Context, inbox string) (<-chan string, func()) {
	ctx, cancel := context.WithCancel(ctx)
	ps := n.rdb.Subscribe(ctx, notifyPrefix+inbox)
	// Wait for the subscription to be confirmed so a push that follows
	// Subscribe is not missed.
	if _, err := ps.Receive(ctx); err != nil {
		n.log.Warn("subscribe inbox notifications", zap.String("inbox", inbox), zap.Error(err))
	}
	out := make(chan string, 16)
	go func() {
		defer close(out)
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- m.Payload:
				default:
				}
			}
		}
	}()
	var once sync.Once
	return out, func() {
		once.Do(func() {
			cancel()
			_ = ps.Close()
		})
	}
}

var (
	_ Notifier = (*Hub)(nil)
	_ Notifier = (*RedisNotifier)(nil)
)
