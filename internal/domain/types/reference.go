package types

import (
	"bytes"
	"fmt"
	"net/url"
	"time"
)

// PayloadReference is the pointer delivered to each recipient: where the
// ciphertext lives and how to verify and decrypt it.
type PayloadReference struct {
	Location      string
	ContentType   string
	HashAlgorithm string
	Hash          []byte
	Key           []byte
	IV            []byte
	ExpiresUTC    time.Time
}

// NewPayloadReference builds a validated reference.
func NewPayloadReference(
	location, contentType, hashAlgorithm string,
	hash, key, iv []byte,
	expiresUTC time.Time,
) (PayloadReference, error) {
	r := PayloadReference{
		Location:      location,
		ContentType:   contentType,
		HashAlgorithm: hashAlgorithm,
		Hash:          hash,
		Key:           key,
		IV:            iv,
		ExpiresUTC:    expiresUTC,
	}
	if err := r.Validate(); err != nil {
		return PayloadReference{}, err
	}
	return r, nil
}

// Validate checks the reference invariants and returns an error wrapping
// ErrInvalidArgument when one is violated.
func (r PayloadReference) Validate() error {
	switch {
	case r.Location == "":
		return fmt.Errorf("%w: reference location is empty", ErrInvalidArgument)
	case r.ContentType == "":
		return fmt.Errorf("%w: reference content type is empty", ErrInvalidArgument)
	case r.HashAlgorithm == "":
		return fmt.Errorf("%w: reference hash algorithm is empty", ErrInvalidArgument)
	case len(r.Hash) == 0:
		return fmt.Errorf("%w: reference hash is empty", ErrInvalidArgument)
	case len(r.Key) == 0:
		return fmt.Errorf("%w: reference key is empty", ErrInvalidArgument)
	case len(r.IV) == 0:
		return fmt.Errorf("%w: reference IV is empty", ErrInvalidArgument)
	case r.ExpiresUTC.IsZero():
		return fmt.Errorf("%w: reference expiration is unset", ErrInvalidArgument)
	case r.ExpiresUTC.Location() != time.UTC:
		return fmt.Errorf("%w: reference expiration %s is not UTC", ErrInvalidArgument, r.ExpiresUTC)
	}
	u, err := url.Parse(r.Location)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("%w: reference location %q is not an absolute URL", ErrInvalidArgument, r.Location)
	}
	return nil
}

// Expired reports whether the referenced blob may already be gone at now.
func (r PayloadReference) Expired(now time.Time) bool { return !now.Before(r.ExpiresUTC) }

// Equal reports field-wise equality.
func (r PayloadReference) Equal(o PayloadReference) bool {
	return r.Location == o.Location &&
		r.ContentType == o.ContentType &&
		r.HashAlgorithm == o.HashAlgorithm &&
		bytes.Equal(r.Hash, o.Hash) &&
		bytes.Equal(r.Key, o.Key) &&
		bytes.Equal(r.IV, o.IV) &&
		r.ExpiresUTC.Equal(o.ExpiresUTC)
}
