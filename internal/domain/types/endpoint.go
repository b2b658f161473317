package types

import (
	"bytes"
	"time"
)

// Endpoint is the public identity of a messaging participant.
type Endpoint struct {
	Suite         string    `json:"suite"`
	SigningKey    []byte    `json:"signing_key"`
	EncryptionKey []byte    `json:"encryption_key"`
	ID            string    `json:"id"`
	InboxURL      string    `json:"inbox_url"`
	CreatedUTC    time.Time `json:"created_utc"`
}

// Thumbprint recomputes the hash of the signing public key.
func (e Endpoint) Thumbprint() Thumbprint { return ComputeThumbprint(e.SigningKey) }

// Equal reports whether two endpoints carry the same keys and inbox.
func (e Endpoint) Equal(o Endpoint) bool {
	return e.Suite == o.Suite &&
		e.ID == o.ID &&
		e.InboxURL == o.InboxURL &&
		e.CreatedUTC.Equal(o.CreatedUTC) &&
		bytes.Equal(e.SigningKey, o.SigningKey) &&
		bytes.Equal(e.EncryptionKey, o.EncryptionKey)
}

// OwnEndpoint is an Endpoint plus its private key material and the bearer
// token proving ownership of its inbox. It is read-only once built.
type OwnEndpoint struct {
	Endpoint             Endpoint `json:"endpoint"`
	SigningPrivateKey    []byte   `json:"signing_private_key"`
	EncryptionPrivateKey []byte   `json:"encryption_private_key"`
	InboxOwnerToken      string   `json:"inbox_owner_token"`
}

// Thumbprint returns the thumbprint of the public half.
func (o *OwnEndpoint) Thumbprint() Thumbprint { return o.Endpoint.Thumbprint() }

// AddressBookEntry is a self-signed, published Endpoint.
type AddressBookEntry struct {
	SerializedEndpoint []byte
	Signature          []byte
}
