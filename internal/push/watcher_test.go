package push_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courier/internal/domain"
	"courier/internal/inbox"
	"courier/internal/push"
	"courier/internal/relay"
	"courier/internal/server"
	"courier/internal/util/httpx"
)

func TestSocketURL(t *testing.T) {
	u, err := push.SocketURL("https://relay.example.com/inbox/abc")
	require.NoError(t, err)
	assert.Equal(t, "wss://relay.example.com/inbox/abc/ws", u)

	u, err = push.SocketURL("http://127.0.0.1:8080/inbox/abc")
	require.NoError(t, err)
	assert.Equal(t, "ws://127.0.0.1:8080/inbox/abc/ws", u)

	_, err = push.SocketURL("ftp://x")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestWatcher_DeliversNotifications(t *testing.T) {
	var h http.Handler
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r)
	}))
	defer ts.Close()
	h = server.New(server.Config{PublicURL: ts.URL}, inbox.NewMemoryStore(), nil, nil, nil).Handler()

	rc := relay.NewHTTP(ts.URL, ts.Client(), relay.WithRetry(httpx.NoRetry()))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	in, err := rc.CreateInbox(ctx)
	require.NoError(t, err)
	own := &domain.OwnEndpoint{Endpoint: domain.Endpoint{InboxURL: in.InboxURL}, InboxOwnerToken: in.OwnerToken}

	connected := make(chan struct{})
	got := make(chan push.Notification, 1)
	done := errors.New("done")
	w := push.NewWatcher(own, httpx.RetryConfig{BaseDelay: 10 * time.Millisecond}, nil)

	result := make(chan error, 1)
	go func() {
		result <- w.Run(ctx,
			func(context.Context) error { close(connected); return nil },
			func(_ context.Context, n push.Notification) error {
				got <- n
				return done
			})
	}()

	select {
	case <-connected:
	case <-ctx.Done():
		t.Fatal("watcher never connected")
	}
	// The server subscribes right after the upgrade; give it a moment.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, rc.Push(ctx, in.InboxURL, []byte("envelope")))

	select {
	case n := <-got:
		items, err := rc.List(ctx, in.InboxURL, in.OwnerToken, false)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, items[0].URL, n.Item)
	case <-ctx.Done():
		t.Fatal("no notification")
	}
	assert.ErrorIs(t, <-result, done)
}

func TestWatcher_StopsOnRejectedToken(t *testing.T) {
	var h http.Handler
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r)
	}))
	defer ts.Close()
	h = server.New(server.Config{PublicURL: ts.URL}, inbox.NewMemoryStore(), nil, nil, nil).Handler()

	rc := relay.NewHTTP(ts.URL, ts.Client(), relay.WithRetry(httpx.NoRetry()))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	in, err := rc.CreateInbox(ctx)
	require.NoError(t, err)
	own := &domain.OwnEndpoint{Endpoint: domain.Endpoint{InboxURL: in.InboxURL}, InboxOwnerToken: "not-the-token"}

	err = push.NewWatcher(own, httpx.NoRetry(), nil).Run(ctx, nil, func(context.Context, push.Notification) error { return nil })
	require.Error(t, err)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)
}
