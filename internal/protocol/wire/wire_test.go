package wire_test

import (
	"errors"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"

	"courier/internal/domain"
	"courier/internal/protocol/wire"
)

func sampleEndpoint() domain.Endpoint {
	return domain.Endpoint{
		Suite:         "ed25519-x25519",
		SigningKey:    []byte{1, 2, 3},
		EncryptionKey: []byte{4, 5, 6},
		ID:            "alice",
		InboxURL:      "https://relay.example.com/inbox/abc",
		CreatedUTC:    time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestEndpoint_EncodingIsDeterministic(t *testing.T) {
	a, err := wire.EncodeEndpoint(sampleEndpoint())
	if err != nil {
		t.Fatalf("EncodeEndpoint: %v", err)
	}
	b, err := wire.EncodeEndpoint(sampleEndpoint())
	if err != nil {
		t.Fatalf("EncodeEndpoint: %v", err)
	}
	if string(a) != string(b) {
		t.Fatal("two encodings of the same endpoint differ")
	}
	got, err := wire.DecodeEndpoint(a)
	if err != nil {
		t.Fatalf("DecodeEndpoint: %v", err)
	}
	if !got.Equal(sampleEndpoint()) {
		t.Fatalf("decoded endpoint %+v differs", got)
	}
}

func TestDecodeEndpoint_RequiresKeys(t *testing.T) {
	e := sampleEndpoint()
	e.SigningKey = nil
	b, err := wire.EncodeEndpoint(e)
	if err != nil {
		t.Fatalf("EncodeEndpoint: %v", err)
	}
	if _, err := wire.DecodeEndpoint(b); !errors.Is(err, wire.ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestEnvelope_SenderReadableAndVersioned(t *testing.T) {
	sender, err := wire.EncodeEndpoint(sampleEndpoint())
	if err != nil {
		t.Fatalf("EncodeEndpoint: %v", err)
	}
	posted := time.Now().UTC()
	b, err := wire.EncodeEnvelope(wire.Envelope{
		Sender:     sender,
		PostedUTC:  posted,
		ExpiresUTC: posted.Add(time.Hour),
		Sealed:     []byte("opaque"),
	})
	if err != nil {
		t.Fatalf("EncodeEnvelope: %v", err)
	}
	env, err := wire.DecodeEnvelope(b)
	if err != nil {
		t.Fatalf("DecodeEnvelope: %v", err)
	}
	if env.Version != wire.Version || !env.PostedUTC.Equal(posted) {
		t.Fatalf("unexpected envelope %+v", env)
	}
	ep, err := wire.DecodeEndpoint(env.Sender)
	if err != nil || ep.ID != "alice" {
		t.Fatalf("sender not readable before decryption: %+v, %v", ep, err)
	}

	future, err := cbor.Marshal(map[int]any{1: 99, 2: sender, 5: []byte("x")})
	if err != nil {
		t.Fatalf("cbor.Marshal: %v", err)
	}
	if _, err := wire.DecodeEnvelope(future); !errors.Is(err, wire.ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
	if _, err := wire.DecodeEnvelope([]byte{0xff, 0x00}); !errors.Is(err, wire.ErrMalformed) {
		t.Fatalf("expected ErrMalformed for garbage, got %v", err)
	}
}

func TestNotification_Fields(t *testing.T) {
	n := wire.Notification{
		Reference: []byte("ref"),
		Recipient: "bob-thumb",
		Sender:    "alice-thumb",
		PostedUTC: time.Unix(1700000000, 0).UTC(),
	}
	body, err := wire.EncodeNotification(n)
	if err != nil {
		t.Fatalf("EncodeNotification: %v", err)
	}
	signed, err := wire.EncodeSigned(wire.SignedNotification{Body: body, Signature: []byte("sig")})
	if err != nil {
		t.Fatalf("EncodeSigned: %v", err)
	}
	s, err := wire.DecodeSigned(signed)
	if err != nil {
		t.Fatalf("DecodeSigned: %v", err)
	}
	got, err := wire.DecodeNotification(s.Body)
	if err != nil {
		t.Fatalf("DecodeNotification: %v", err)
	}
	if got.Recipient != n.Recipient || got.Sender != n.Sender || !got.PostedUTC.Equal(n.PostedUTC) {
		t.Fatalf("notification mismatch: %+v", got)
	}
}
