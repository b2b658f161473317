package push

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"courier/internal/domain"
	"courier/internal/util/httpx"
)

// Notification is one pushed item.
type Notification struct {
	Item string `json:"item"`
}

// Watcher streams notifications for an owned inbox.
type Watcher struct {
	own    *domain.OwnEndpoint
	dialer *websocket.Dialer
	retry  httpx.RetryConfig
	log    *zap.Logger
}

// NewWatcher returns a watcher for own's inbox. Reconnects back off with
// retry.
func NewWatcher(own *domain.OwnEndpoint, retry httpx.RetryConfig, log *zap.Logger) *Watcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{own: own, dialer: websocket.DefaultDialer, retry: retry, log: log}
}

// SocketURL maps an inbox URL to its websocket URL.
func SocketURL(inboxURL string) (string, error) {
	switch {
	case strings.HasPrefix(inboxURL, "https://"):
		return "wss://" + strings.TrimPrefix(inboxURL, "https://") + "/ws", nil
	case strings.HasPrefix(inboxURL, "http://"):
		return "ws://" + strings.TrimPrefix(inboxURL, "http://") + "/ws", nil
	}
	return "", fmt.Errorf("%w: inbox %q is not an http(s) URL", domain.ErrInvalidArgument, inboxURL)
}

// Run calls fn for every notification until ctx ends, reconnecting after
// connection loss. fn runs on the watcher's goroutine; a non-nil error from
// fn stops Run and is returned. onConnect, when set, runs after each
// successful connection so callers can pick up items pushed while
// disconnected.
func (w *Watcher) Run(ctx context.Context, onConnect func(context.Context) error, fn func(context.Context, Notification) error) error {
	u, err := SocketURL(w.own.Endpoint.InboxURL)
	if err != nil {
		return err
	}
	hdr := http.Header{}
	hdr.Set("Authorization", "Bearer "+w.own.InboxOwnerToken)

	for attempt := 0; ; {
		err := w.session(ctx, u, hdr, onConnect, fn, &attempt)
		var stop *stopError
		if errors.As(err, &stop) {
			return stop.err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		delay := w.retry.Delay(attempt)
		w.log.Info("push connection lost", zap.Error(err), zap.Duration("retry_in", delay))
		attempt++
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// stopError carries a callback failure out of a session.
type stopError struct{ err error }

func (e *stopError) Error() string { return e.err.Error() }

func (w *Watcher) session(
	ctx context.Context,
	u string,
	hdr http.Header,
	onConnect func(context.Context) error,
	fn func(context.Context, Notification) error,
	attempt *int,
) error {
	conn, resp, err := w.dialer.DialContext(ctx, u, hdr)
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return &stopError{fmt.Errorf("push: relay rejected owner token: %s", resp.Status)}
		}
		return err
	}
	defer conn.Close()
	*attempt = 0
	w.log.Debug("push connected", zap.String("url", u))

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if onConnect != nil {
		if err := onConnect(ctx); err != nil {
			return &stopError{err}
		}
	}
	for {
		var n Notification
		if err := conn.ReadJSON(&n); err != nil {
			return err
		}
		if err := fn(ctx, n); err != nil {
			return &stopError{err}
		}
	}
}
