package wire

import (
	"fmt"

	"courier/internal/domain"
)

type endpointWire struct {
	Suite         string `cbor:"1,keyasint"`
	SigningKey    []byte `cbor:"2,keyasint"`
	EncryptionKey []byte `cbor:"3,keyasint"`
	ID            string `cbor:"4,keyasint,omitempty"`
	InboxURL      string `cbor:"5,keyasint"`
	Created       int64  `cbor:"6,keyasint,omitempty"`
}

// EncodeEndpoint returns the canonical encoding of the public endpoint.
func EncodeEndpoint(e domain.Endpoint) ([]byte, error) {
	return marshal(endpointWire{
		Suite:         e.Suite,
		SigningKey:    e.SigningKey,
		EncryptionKey: e.EncryptionKey,
		ID:            e.ID,
		InboxURL:      e.InboxURL,
		Created:       toNanos(e.CreatedUTC),
	})
}

// DecodeEndpoint parses an endpoint. Suite, both keys and the inbox URL are
// required.
func DecodeEndpoint(b []byte) (domain.Endpoint, error) {
	var w endpointWire
	if err := unmarshal("endpoint", b, &w); err != nil {
		return domain.Endpoint{}, err
	}
	switch {
	case w.Suite == "":
		return domain.Endpoint{}, fmt.Errorf("%w: endpoint without suite", ErrMalformed)
	case len(w.SigningKey) == 0:
		return domain.Endpoint{}, fmt.Errorf("%w: endpoint without signing key", ErrMalformed)
	case len(w.EncryptionKey) == 0:
		return domain.Endpoint{}, fmt.Errorf("%w: endpoint without encryption key", ErrMalformed)
	case w.InboxURL == "":
		return domain.Endpoint{}, fmt.Errorf("%w: endpoint without inbox", ErrMalformed)
	}
	return domain.Endpoint{
		Suite:         w.Suite,
		SigningKey:    w.SigningKey,
		EncryptionKey: w.EncryptionKey,
		ID:            w.ID,
		InboxURL:      w.InboxURL,
		CreatedUTC:    fromNanos(w.Created),
	}, nil
}

// AddressBookEntryContentType is the media type under which entries are
// published.
const AddressBookEntryContentType = "application/vnd.courier.entry+cbor"

type entryWire struct {
	Endpoint  []byte `cbor:"1,keyasint"`
	Signature []byte `cbor:"2,keyasint"`
}

// EncodeAddressBookEntry encodes a published entry.
func EncodeAddressBookEntry(e domain.AddressBookEntry) ([]byte, error) {
	return marshal(entryWire{Endpoint: e.SerializedEndpoint, Signature: e.Signature})
}

// DecodeAddressBookEntry parses a published entry without verifying it.
func DecodeAddressBookEntry(b []byte) (domain.AddressBookEntry, error) {
	var w entryWire
	if err := unmarshal("address book entry", b, &w); err != nil {
		return domain.AddressBookEntry{}, err
	}
	if len(w.Endpoint) == 0 || len(w.Signature) == 0 {
		return domain.AddressBookEntry{}, fmt.Errorf("%w: incomplete address book entry", ErrMalformed)
	}
	return domain.AddressBookEntry{SerializedEndpoint: w.Endpoint, Signature: w.Signature}, nil
}
