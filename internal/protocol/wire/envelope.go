package wire

import (
	"fmt"
	"time"

	"courier/internal/domain"
)

// Version is the envelope version written by this build.
const Version = 1

// Envelope is what a sender pushes to a recipient's inbox.
type Envelope struct {
	Version int
	// Sender is the encoded sender Endpoint, readable without decryption.
	Sender     []byte
	PostedUTC  time.Time
	ExpiresUTC time.Time
	// Sealed is the SignedNotification encrypted to the recipient.
	Sealed []byte
}

type envelopeWire struct {
	Version int    `cbor:"1,keyasint"`
	Sender  []byte `cbor:"2,keyasint"`
	Posted  int64  `cbor:"3,keyasint"`
	Expires int64  `cbor:"4,keyasint"`
	Sealed  []byte `cbor:"5,keyasint"`
}

// EncodeEnvelope encodes env, stamping the current Version when unset.
func EncodeEnvelope(env Envelope) ([]byte, error) {
	v := env.Version
	if v == 0 {
		v = Version
	}
	return marshal(envelopeWire{
		Version: v,
		Sender:  env.Sender,
		Posted:  toNanos(env.PostedUTC),
		Expires: toNanos(env.ExpiresUTC),
		Sealed:  env.Sealed,
	})
}

// DecodeEnvelope parses an inbox item.
func DecodeEnvelope(b []byte) (Envelope, error) {
	var w envelopeWire
	if err := unmarshal("envelope", b, &w); err != nil {
		return Envelope{}, err
	}
	if w.Version != Version {
		return Envelope{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, w.Version)
	}
	if len(w.Sender) == 0 || len(w.Sealed) == 0 {
		return Envelope{}, fmt.Errorf("%w: incomplete envelope", ErrMalformed)
	}
	return Envelope{
		Version:    w.Version,
		Sender:     w.Sender,
		PostedUTC:  fromNanos(w.Posted),
		ExpiresUTC: fromNanos(w.Expires),
		Sealed:     w.Sealed,
	}, nil
}

// Notification is the signed body sealed to one recipient. Binding both
// thumbprints stops a recipient from re-sealing a signed reference to a
// third party under the original sender's name.
type Notification struct {
	Reference []byte
	Recipient domain.Thumbprint
	Sender    domain.Thumbprint
	PostedUTC time.Time
}

type notificationWire struct {
	Reference []byte `cbor:"1,keyasint"`
	Recipient string `cbor:"2,keyasint"`
	Sender    string `cbor:"3,keyasint"`
	Posted    int64  `cbor:"4,keyasint"`
}

// EncodeNotification encodes the bytes the sender signs.
func EncodeNotification(n Notification) ([]byte, error) {
	return marshal(notificationWire{
		Reference: n.Reference,
		Recipient: n.Recipient.String(),
		Sender:    n.Sender.String(),
		Posted:    toNanos(n.PostedUTC),
	})
}

// DecodeNotification parses signed bytes after their signature was checked.
func DecodeNotification(b []byte) (Notification, error) {
	var w notificationWire
	if err := unmarshal("notification", b, &w); err != nil {
		return Notification{}, err
	}
	if len(w.Reference) == 0 || w.Recipient == "" || w.Sender == "" {
		return Notification{}, fmt.Errorf("%w: incomplete notification", ErrMalformed)
	}
	return Notification{
		Reference: w.Reference,
		Recipient: domain.Thumbprint(w.Recipient),
		Sender:    domain.Thumbprint(w.Sender),
		PostedUTC: fromNanos(w.Posted),
	}, nil
}

// SignedNotification pairs encoded Notification bytes with the sender's
// signature over exactly those bytes.
type SignedNotification struct {
	Body      []byte `cbor:"1,keyasint"`
	Signature []byte `cbor:"2,keyasint"`
}

// EncodeSigned encodes s.
func EncodeSigned(s SignedNotification) ([]byte, error) { return marshal(s) }

// DecodeSigned parses a decrypted SignedNotification.
func DecodeSigned(b []byte) (SignedNotification, error) {
	var s SignedNotification
	if err := unmarshal("signed notification", b, &s); err != nil {
		return SignedNotification{}, err
	}
	if len(s.Body) == 0 || len(s.Signature) == 0 {
		return SignedNotification{}, fmt.Errorf("%w: incomplete signed notification", ErrMalformed)
	}
	return s, nil
}
