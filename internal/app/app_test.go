package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courier/internal/app"
	"courier/internal/blob"
	"courier/internal/domain"
	"courier/internal/inbox"
	"courier/internal/server"
)

const pass = "Str0ng-Passphrase!"

func newRelay(t *testing.T) *httptest.Server {
	t.Helper()
	var h http.Handler
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)
	h = server.New(server.Config{PublicURL: ts.URL}, inbox.NewMemoryStore(), nil, blob.NewMemoryStore(ts.URL), nil).Handler()
	return ts
}

func newApp(t *testing.T, ts *httptest.Server, home string, level domain.SecurityLevel) *app.App {
	t.Helper()
	cfg := app.Config{Home: home, RelayURL: ts.URL, Level: level, HTTP: ts.Client()}
	cfg.Merge(app.FileConfig{})
	w, err := app.NewWire(cfg, nil)
	require.NoError(t, err)
	return app.New(w)
}

func TestChannel_UsesEndpointSuiteNotConfiguredLevel(t *testing.T) {
	ctx := context.Background()
	ts := newRelay(t)
	home := t.TempDir()

	created, err := newApp(t, ts, home, domain.SecurityMaximum).Identity.Create(ctx, pass)
	require.NoError(t, err)

	// A later run without --level maximum.
	a := newApp(t, ts, home, "")
	require.NotEqual(t, created.Endpoint.Suite, a.Provider.Suite())

	ch, err := a.Channel(pass)
	require.NoError(t, err)
	own := ch.Own()

	res, err := ch.Post(ctx,
		domain.Payload{ContentType: "text/plain", Content: []byte("note to self")},
		[]domain.Endpoint{own.Endpoint},
		time.Now().UTC().Add(time.Hour),
	)
	require.NoError(t, err)
	assert.Equal(t, []domain.Thumbprint{own.Thumbprint()}, res.Delivered)

	got, err := ch.Receive(ctx, domain.ReceiveOptions{})
	require.NoError(t, err)
	assert.Empty(t, got.Rejected)
	require.Len(t, got.Payloads, 1)
	assert.Equal(t, "note to self", string(got.Payloads[0].Payload.Content))
	assert.Equal(t, created.Thumbprint(), got.Payloads[0].Sender.Thumbprint())
}
