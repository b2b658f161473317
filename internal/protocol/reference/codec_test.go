package reference_test

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"courier/internal/domain"
	"courier/internal/protocol/reference"
)

func sampleReference(t *testing.T) domain.PayloadReference {
	t.Helper()
	r, err := domain.NewPayloadReference(
		"https://blobs.example.com/blob/3f2a",
		"text/plain",
		"SHA256",
		bytes.Repeat([]byte{0xab}, 32),
		bytes.Repeat([]byte{0x01}, 32),
		bytes.Repeat([]byte{0x02}, 12),
		time.Date(2030, 1, 2, 3, 4, 5, 6, time.UTC),
	)
	if err != nil {
		t.Fatalf("NewPayloadReference: %v", err)
	}
	return r
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	refs := []domain.PayloadReference{sampleReference(t)}

	other := sampleReference(t)
	other.Location = "https://example.org/a/b?c=d#frag"
	other.ContentType = "application/vnd.courier+json; charset=utf-8"
	other.HashAlgorithm = "SHA512"
	other.Hash = bytes.Repeat([]byte{0x00}, 64)
	other.Key = []byte{0xff}
	other.IV = []byte{0x00}
	other.ExpiresUTC = time.Unix(1, 0).UTC()
	refs = append(refs, other)

	for _, r := range refs {
		b, err := reference.Encode(r)
		if err != nil {
			t.Fatalf("Encode: %v", err)
		}
		got, err := reference.Decode(b)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if !got.Equal(r) {
			t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, r)
		}
		if got.ExpiresUTC.Location() != time.UTC {
			t.Fatalf("decoded expiration not UTC: %v", got.ExpiresUTC.Location())
		}
	}
}

func TestNewPayloadReference_Validation(t *testing.T) {
	base := sampleReference(t)
	local, err := time.LoadLocation("America/New_York")
	if err != nil {
		local = time.FixedZone("EST", -5*3600)
	}

	tests := []struct {
		name   string
		mutate func(*domain.PayloadReference)
	}{
		{"non-UTC expiration", func(r *domain.PayloadReference) { r.ExpiresUTC = r.ExpiresUTC.In(local) }},
		{"zero expiration", func(r *domain.PayloadReference) { r.ExpiresUTC = time.Time{} }},
		{"empty hash", func(r *domain.PayloadReference) { r.Hash = nil }},
		{"empty key", func(r *domain.PayloadReference) { r.Key = []byte{} }},
		{"empty IV", func(r *domain.PayloadReference) { r.IV = nil }},
		{"empty content type", func(r *domain.PayloadReference) { r.ContentType = "" }},
		{"empty location", func(r *domain.PayloadReference) { r.Location = "" }},
		{"relative location", func(r *domain.PayloadReference) { r.Location = "/blob/1" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := base
			tc.mutate(&r)
			_, err := domain.NewPayloadReference(r.Location, r.ContentType, r.HashAlgorithm, r.Hash, r.Key, r.IV, r.ExpiresUTC)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
			if _, err := reference.Encode(r); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("Encode: expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	good, err := reference.Encode(sampleReference(t))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	zeroLocation := append([]byte{0, 0, 0, 0}, good[4+len("https://blobs.example.com/blob/3f2a"):]...)
	zeroExpiry := append(append([]byte(nil), good[:len(good)-8]...), 0, 0, 0, 0, 0, 0, 0, 0)

	tests := map[string][]byte{
		"empty":          nil,
		"truncated":      good[:len(good)-3],
		"trailing bytes": append(append([]byte(nil), good...), 0x00),
		"zero length":    zeroLocation,
		"huge length":    {0xff, 0xff, 0xff, 0xff, 'x'},
		"zero expiry":    zeroExpiry,
	}
	for name, b := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := reference.Decode(b); !errors.Is(err, domain.ErrMalformedReference) {
				t.Fatalf("expected ErrMalformedReference, got %v", err)
			}
		})
	}
}
