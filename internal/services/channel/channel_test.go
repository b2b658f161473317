package channel_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"courier/internal/blob"
	"courier/internal/blob/blobtest"
	"courier/internal/crypto"
	"courier/internal/domain"
	"courier/internal/inbox"
	"courier/internal/protocol/reference"
	"courier/internal/protocol/wire"
	"courier/internal/relay"
	"courier/internal/server"
	"courier/internal/services/channel"
	"courier/internal/util/httpx"
)

// network is a relay and blob host backed by memory stores.
type network struct {
	url   string
	blobs *blobtest.Store
	relay *relay.HTTP
	blob  *blob.HTTP
}

func newNetwork(t *testing.T) *network {
	t.Helper()
	var h http.Handler
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)

	n := &network{url: ts.URL, blobs: blobtest.New(ts.URL)}
	h = server.New(server.Config{PublicURL: ts.URL, LongPollTimeout: 50 * time.Millisecond},
		inbox.NewMemoryStore(), nil, n.blobs, nil).Handler()
	n.relay = relay.NewHTTP(ts.URL, ts.Client(), relay.WithRetry(httpx.NoRetry()))
	n.blob = blob.NewHTTP(ts.URL, ts.Client()).WithRetry(httpx.NoRetry())
	return n
}

type peer struct {
	own *domain.OwnEndpoint
	ch  *channel.Channel
}

func (n *network) join(t *testing.T, name string, level domain.SecurityLevel) peer {
	t.Helper()
	p, err := crypto.New(level)
	require.NoError(t, err)
	sk, err := p.GenerateSigningKeyPair()
	require.NoError(t, err)
	ek, err := p.GenerateEncryptionKeyPair()
	require.NoError(t, err)
	in, err := n.relay.CreateInbox(context.Background())
	require.NoError(t, err)

	own := &domain.OwnEndpoint{
		Endpoint: domain.Endpoint{
			Suite:         p.Suite(),
			SigningKey:    sk.Public,
			EncryptionKey: ek.Public,
			ID:            name,
			InboxURL:      in.InboxURL,
			CreatedUTC:    time.Now().UTC(),
		},
		SigningPrivateKey:    sk.Private,
		EncryptionPrivateKey: ek.Private,
		InboxOwnerToken:      in.OwnerToken,
	}
	ch, err := channel.New(own, p, crypto.NewRegistry(p), n.blob, n.blob, n.relay,
		channel.WithPollBackoff(httpx.RetryConfig{BaseDelay: 10 * time.Millisecond}))
	require.NoError(t, err)
	return peer{own: own, ch: ch}
}

func text(s string) domain.Payload {
	return domain.Payload{ContentType: "text/plain", Content: []byte(s)}
}

func inAnHour() time.Time { return time.Now().UTC().Add(time.Hour) }

func TestPostReceiveDelete(t *testing.T) {
	ctx := context.Background()
	n := newNetwork(t)
	alice := n.join(t, "alice", domain.SecurityRecommended)
	bob := n.join(t, "bob", domain.SecurityRecommended)

	res, err := alice.ch.Post(ctx, text("hello"), []domain.Endpoint{bob.own.Endpoint}, inAnHour())
	require.NoError(t, err)
	assert.Equal(t, []domain.Thumbprint{bob.own.Thumbprint()}, res.Delivered)
	assert.Empty(t, res.Failed)

	got, err := bob.ch.Receive(ctx, domain.ReceiveOptions{})
	require.NoError(t, err)
	require.Len(t, got.Payloads, 1)
	assert.Empty(t, got.Rejected)

	p := got.Payloads[0]
	assert.Equal(t, "hello", string(p.Payload.Content))
	assert.Equal(t, "text/plain", p.Payload.ContentType)
	assert.Equal(t, alice.own.Thumbprint(), p.Sender.Thumbprint())
	assert.True(t, p.Reference.Equal(res.Reference))

	again, err := bob.ch.Receive(ctx, domain.ReceiveOptions{})
	require.NoError(t, err)
	assert.Len(t, again.Payloads, 1, "receive must not delete")

	require.NoError(t, bob.ch.DeleteInboxItem(ctx, p))
	require.NoError(t, bob.ch.DeleteInboxItem(ctx, p), "delete is idempotent")

	empty, err := bob.ch.Receive(ctx, domain.ReceiveOptions{})
	require.NoError(t, err)
	assert.Empty(t, empty.Payloads)
}

func TestPostAcrossSuites(t *testing.T) {
	ctx := context.Background()
	n := newNetwork(t)
	alice := n.join(t, "alice", domain.SecurityRecommended)
	bob := n.join(t, "bob", domain.SecurityMaximum)

	_, err := alice.ch.Post(ctx, text("to pq"), []domain.Endpoint{bob.own.Endpoint}, inAnHour())
	require.NoError(t, err)
	_, err = bob.ch.Post(ctx, text("to classic"), []domain.Endpoint{alice.own.Endpoint}, inAnHour())
	require.NoError(t, err)

	got, err := bob.ch.Receive(ctx, domain.ReceiveOptions{})
	require.NoError(t, err)
	require.Len(t, got.Payloads, 1)
	assert.Equal(t, "to pq", string(got.Payloads[0].Payload.Content))

	got, err = alice.ch.Receive(ctx, domain.ReceiveOptions{})
	require.NoError(t, err)
	require.Len(t, got.Payloads, 1)
	assert.Equal(t, "to classic", string(got.Payloads[0].Payload.Content))
	assert.Equal(t, crypto.HashSHA512, got.Payloads[0].Reference.HashAlgorithm)
}

func TestPostUploadsOnceForAllRecipients(t *testing.T) {
	ctx := context.Background()
	n := newNetwork(t)
	alice := n.join(t, "alice", domain.SecurityRecommended)
	bob := n.join(t, "bob", domain.SecurityRecommended)
	carol := n.join(t, "carol", domain.SecurityMaximum)

	_, err := alice.ch.Post(ctx, text("to both"), []domain.Endpoint{bob.own.Endpoint, carol.own.Endpoint}, inAnHour())
	require.NoError(t, err)
	assert.Equal(t, 1, n.blobs.Uploads())

	fromBob, err := bob.ch.Receive(ctx, domain.ReceiveOptions{})
	require.NoError(t, err)
	fromCarol, err := carol.ch.Receive(ctx, domain.ReceiveOptions{})
	require.NoError(t, err)
	require.Len(t, fromBob.Payloads, 1)
	require.Len(t, fromCarol.Payloads, 1)

	a, b := fromBob.Payloads[0].Reference, fromCarol.Payloads[0].Reference
	assert.Equal(t, a.Location, b.Location)
	assert.Equal(t, a.Key, b.Key)
	assert.Equal(t, a.IV, b.IV)
}

func TestPostValidation(t *testing.T) {
	ctx := context.Background()
	n := newNetwork(t)
	alice := n.join(t, "alice", domain.SecurityRecommended)
	bob := n.join(t, "bob", domain.SecurityRecommended)
	to := []domain.Endpoint{bob.own.Endpoint}

	noInbox := bob.own.Endpoint
	noInbox.InboxURL = ""
	unknownSuite := bob.own.Endpoint
	unknownSuite.Suite = "rot13"

	tests := []struct {
		name       string
		payload    domain.Payload
		recipients []domain.Endpoint
		expires    time.Time
	}{
		{"empty content", domain.Payload{ContentType: "text/plain"}, to, inAnHour()},
		{"empty content type", domain.Payload{Content: []byte("x")}, to, inAnHour()},
		{"no recipients", text("x"), nil, inAnHour()},
		{"local expiry", text("x"), to, time.Now().Add(time.Hour).In(time.FixedZone("CET", 3600))},
		{"past expiry", text("x"), to, time.Now().UTC().Add(-time.Minute)},
		{"recipient without inbox", text("x"), []domain.Endpoint{noInbox}, inAnHour()},
		{"unknown suite", text("x"), []domain.Endpoint{unknownSuite}, inAnHour()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := alice.ch.Post(ctx, tt.payload, tt.recipients, tt.expires)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
	assert.Equal(t, 0, n.blobs.Uploads(), "nothing is uploaded for invalid input")
}

func TestPostPartialFailure(t *testing.T) {
	ctx := context.Background()
	n := newNetwork(t)
	alice := n.join(t, "alice", domain.SecurityRecommended)
	bob := n.join(t, "bob", domain.SecurityRecommended)
	gone := n.join(t, "gone", domain.SecurityRecommended)
	gone.own.Endpoint.InboxURL = n.url + "/inbox/does-not-exist"

	res, err := alice.ch.Post(ctx, text("hi"), []domain.Endpoint{bob.own.Endpoint, gone.own.Endpoint}, inAnHour())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDeliveryFailed)

	var de *domain.DeliveryError
	require.ErrorAs(t, err, &de)
	require.Len(t, de.Failures, 1)
	assert.Equal(t, gone.own.Thumbprint(), de.Failures[0].Recipient)
	assert.Equal(t, []domain.Thumbprint{bob.own.Thumbprint()}, de.Delivered)
	require.NotNil(t, res)
	assert.Equal(t, []domain.Thumbprint{bob.own.Thumbprint()}, res.Delivered)

	got, err := bob.ch.Receive(ctx, domain.ReceiveOptions{})
	require.NoError(t, err)
	assert.Len(t, got.Payloads, 1)
}

type failingUploader struct{ calls int }

func (u *failingUploader) Upload(context.Context, io.Reader, time.Time, string) (string, error) {
	u.calls++
	return "", errors.New("storage host unreachable")
}

func TestPostUploadFailure(t *testing.T) {
	ctx := context.Background()
	n := newNetwork(t)
	alice := n.join(t, "alice", domain.SecurityRecommended)
	bob := n.join(t, "bob", domain.SecurityRecommended)

	p, err := crypto.New(domain.SecurityRecommended)
	require.NoError(t, err)
	up := &failingUploader{}
	ch, err := channel.New(alice.own, p, nil, up, n.blob, n.relay)
	require.NoError(t, err)

	res, err := ch.Post(ctx, text("hi"), []domain.Endpoint{bob.own.Endpoint}, inAnHour())
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	assert.Equal(t, 1, up.calls)

	got, err := bob.ch.Receive(ctx, domain.ReceiveOptions{})
	require.NoError(t, err)
	assert.Empty(t, got.Payloads, "no notification is pushed when the upload fails")
	assert.Empty(t, got.Rejected)
}

func TestNewRejectsMismatchedProvider(t *testing.T) {
	n := newNetwork(t)
	alice := n.join(t, "alice", domain.SecurityRecommended)

	pq, err := crypto.New(domain.SecurityMaximum)
	require.NoError(t, err)
	require.NotEqual(t, alice.own.Endpoint.Suite, pq.Suite())

	_, err = channel.New(alice.own, pq, nil, n.blob, n.blob, n.relay)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = channel.New(alice.own, nil, nil, n.blob, n.blob, n.relay)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = channel.New(nil, pq, nil, n.blob, n.blob, n.relay)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

// forge pushes an envelope to victim that claims to come from claimed but is
// signed by signer.
func forge(t *testing.T, n *network, claimed domain.Endpoint, signer peer, victim peer, location string) {
	t.Helper()
	p, err := crypto.New(domain.SecurityRecommended)
	require.NoError(t, err)

	ct, err := p.EncryptSymmetric([]byte("forged"), nil, nil)
	require.NoError(t, err)
	ref, err := domain.NewPayloadReference(location, "text/plain", p.HashAlgorithm(), p.Hash(ct.Ciphertext), ct.Key, ct.IV, inAnHour())
	require.NoError(t, err)
	refBytes, err := reference.Encode(ref)
	require.NoError(t, err)

	body, err := wire.EncodeNotification(wire.Notification{
		Reference: refBytes,
		Recipient: victim.own.Thumbprint(),
		Sender:    claimed.Thumbprint(),
		PostedUTC: time.Now().UTC(),
	})
	require.NoError(t, err)
	sig, err := p.Sign(body, signer.own.SigningPrivateKey)
	require.NoError(t, err)
	signed, err := wire.EncodeSigned(wire.SignedNotification{Body: body, Signature: sig})
	require.NoError(t, err)
	sealed, err := p.Encrypt(victim.own.Endpoint.EncryptionKey, signed)
	require.NoError(t, err)
	sender, err := wire.EncodeEndpoint(claimed)
	require.NoError(t, err)
	env, err := wire.EncodeEnvelope(wire.Envelope{Sender: sender, PostedUTC: time.Now().UTC(), ExpiresUTC: inAnHour(), Sealed: sealed})
	require.NoError(t, err)
	require.NoError(t, n.relay.Push(context.Background(), victim.own.Endpoint.InboxURL, env))
}

func TestReceiveSkipsUntrustedItems(t *testing.T) {
	ctx := context.Background()
	n := newNetwork(t)
	alice := n.join(t, "alice", domain.SecurityRecommended)
	bob := n.join(t, "bob", domain.SecurityRecommended)
	mallory := n.join(t, "mallory", domain.SecurityRecommended)

	res, err := alice.ch.Post(ctx, text("genuine"), []domain.Endpoint{bob.own.Endpoint}, inAnHour())
	require.NoError(t, err)
	forge(t, n, alice.own.Endpoint, mallory, bob, res.Reference.Location)
	require.NoError(t, n.relay.Push(ctx, bob.own.Endpoint.InboxURL, []byte("not an envelope")))

	got, err := bob.ch.Receive(ctx, domain.ReceiveOptions{})
	require.NoError(t, err, "untrusted items do not fail the batch")
	require.Len(t, got.Payloads, 1)
	assert.Equal(t, "genuine", string(got.Payloads[0].Payload.Content))

	require.Len(t, got.Rejected, 2)
	for _, r := range got.Rejected {
		assert.ErrorIs(t, r, domain.ErrUntrustedMessage)
	}
}

func TestReceiveRejectsMisaddressedItems(t *testing.T) {
	ctx := context.Background()
	n := newNetwork(t)
	alice := n.join(t, "alice", domain.SecurityRecommended)
	bob := n.join(t, "bob", domain.SecurityRecommended)
	carol := n.join(t, "carol", domain.SecurityRecommended)

	// Bob's keys behind Carol's inbox: Carol cannot open what was sealed to Bob.
	redirected := bob.own.Endpoint
	redirected.InboxURL = carol.own.Endpoint.InboxURL
	_, err := alice.ch.Post(ctx, text("for bob"), []domain.Endpoint{redirected}, inAnHour())
	require.NoError(t, err)

	got, err := carol.ch.Receive(ctx, domain.ReceiveOptions{})
	require.NoError(t, err)
	assert.Empty(t, got.Payloads)
	require.Len(t, got.Rejected, 1)
	assert.ErrorIs(t, got.Rejected[0], domain.ErrUntrustedMessage)
}

func TestReceiveDetectsSwappedBlob(t *testing.T) {
	ctx := context.Background()
	n := newNetwork(t)
	alice := n.join(t, "alice", domain.SecurityRecommended)
	bob := n.join(t, "bob", domain.SecurityRecommended)

	res, err := alice.ch.Post(ctx, text("original"), []domain.Endpoint{bob.own.Endpoint}, inAnHour())
	require.NoError(t, err)
	require.NoError(t, n.blobs.Replace(blobtest.Name(res.Reference.Location), []byte("attacker controlled bytes")))

	got, err := bob.ch.Receive(ctx, domain.ReceiveOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrHashMismatch)
	assert.Empty(t, got.Payloads)
	require.Len(t, got.Rejected, 1)
	assert.Equal(t, alice.own.Thumbprint(), got.Rejected[0].Sender)
}

func TestReceiveReportsMissingBlob(t *testing.T) {
	ctx := context.Background()
	n := newNetwork(t)
	alice := n.join(t, "alice", domain.SecurityRecommended)
	bob := n.join(t, "bob", domain.SecurityRecommended)

	_, err := alice.ch.Post(ctx, text("short lived"), []domain.Endpoint{bob.own.Endpoint}, inAnHour())
	require.NoError(t, err)
	require.NoError(t, n.blobs.PurgeExpiredBefore(ctx, time.Now().UTC().Add(2*time.Hour)))

	got, err := bob.ch.Receive(ctx, domain.ReceiveOptions{})
	require.NoError(t, err)
	assert.Empty(t, got.Payloads)
	require.Len(t, got.Rejected, 1)
	assert.ErrorIs(t, got.Rejected[0], domain.ErrNotFound)
}

func TestReceiveProgressSeesEveryPayload(t *testing.T) {
	ctx := context.Background()
	n := newNetwork(t)
	alice := n.join(t, "alice", domain.SecurityRecommended)
	bob := n.join(t, "bob", domain.SecurityRecommended)

	for i := range 5 {
		_, err := alice.ch.Post(ctx, text(strings.Repeat("x", i+1)), []domain.Endpoint{bob.own.Endpoint}, inAnHour())
		require.NoError(t, err)
	}

	var mu sync.Mutex
	var seen []*domain.ReceivedPayload
	got, err := bob.ch.Receive(ctx, domain.ReceiveOptions{Progress: func(p *domain.ReceivedPayload) {
		mu.Lock()
		seen = append(seen, p)
		mu.Unlock()
	}})
	require.NoError(t, err)
	assert.Len(t, got.Payloads, 5)
	assert.ElementsMatch(t, seen, got.Payloads)
}

func TestStreamStopsEarly(t *testing.T) {
	ctx := context.Background()
	n := newNetwork(t)
	alice := n.join(t, "alice", domain.SecurityRecommended)
	bob := n.join(t, "bob", domain.SecurityRecommended)

	for range 3 {
		_, err := alice.ch.Post(ctx, text("m"), []domain.Endpoint{bob.own.Endpoint}, inAnHour())
		require.NoError(t, err)
	}
	count := 0
	for p, err := range bob.ch.Stream(ctx, domain.ReceiveOptions{}) {
		require.NoError(t, err)
		require.NotNil(t, p)
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestLongPollWaitsForItem(t *testing.T) {
	ctx := context.Background()
	n := newNetwork(t)
	alice := n.join(t, "alice", domain.SecurityRecommended)
	bob := n.join(t, "bob", domain.SecurityRecommended)

	go func() {
		time.Sleep(150 * time.Millisecond)
		_, _ = alice.ch.Post(ctx, text("late"), []domain.Endpoint{bob.own.Endpoint}, inAnHour())
	}()

	wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	got, err := bob.ch.Receive(wctx, domain.ReceiveOptions{LongPoll: true})
	require.NoError(t, err)
	require.Len(t, got.Payloads, 1)
	assert.Equal(t, "late", string(got.Payloads[0].Payload.Content))
}

func TestCancellation(t *testing.T) {
	n := newNetwork(t)
	alice := n.join(t, "alice", domain.SecurityRecommended)
	bob := n.join(t, "bob", domain.SecurityRecommended)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := alice.ch.Post(cancelled, text("x"), []domain.Endpoint{bob.own.Endpoint}, inAnHour())
	assert.True(t, errors.Is(err, context.Canceled), "post: %v", err)

	_, err = bob.ch.Receive(cancelled, domain.ReceiveOptions{})
	assert.True(t, errors.Is(err, context.Canceled), "receive: %v", err)

	short, stop := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer stop()
	_, err = bob.ch.Receive(short, domain.ReceiveOptions{LongPoll: true})
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "long poll: %v", err)
}

func TestDeleteInboxItemValidation(t *testing.T) {
	n := newNetwork(t)
	bob := n.join(t, "bob", domain.SecurityRecommended)

	assert.ErrorIs(t, bob.ch.DeleteInboxItem(context.Background(), nil), domain.ErrInvalidArgument)
	assert.ErrorIs(t, bob.ch.DeleteInboxItem(context.Background(), &domain.ReceivedPayload{}), domain.ErrInvalidArgument)
}
