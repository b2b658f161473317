package types

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument reports malformed caller input. It is never retried.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUploadFailed reports that blob storage rejected the ciphertext.
	ErrUploadFailed = errors.New("upload failed")
	// ErrDeliveryFailed reports that one or more inbox pushes failed.
	ErrDeliveryFailed = errors.New("delivery failed")
	// ErrUntrustedMessage reports an inbox item whose signature or addressing
	// does not verify against the claimed sender.
	ErrUntrustedMessage = errors.New("untrusted message")
	// ErrHashMismatch reports a blob whose content does not match the hash
	// recorded in its reference.
	ErrHashMismatch = errors.New("payload hash mismatch")
	// ErrBadAddressBookEntry reports a discovered entry that was tampered
	// with or does not match its pinned thumbprint.
	ErrBadAddressBookEntry = errors.New("bad address book entry")
	// ErrNotFound reports an expected absence (expired blob, deleted item).
	ErrNotFound = errors.New("not found")
	// ErrMalformedReference reports bytes that do not decode to a valid
	// PayloadReference.
	ErrMalformedReference = errors.New("malformed payload reference")
)

// RecipientFailure records why a push to one recipient failed.
type RecipientFailure struct {
	Recipient Thumbprint
	InboxURL  string
	Err       error
}

// DeliveryError is returned by Post when at least one push failed. The
// recipients listed in Delivered already hold the notification.
type DeliveryError struct {
	Delivered []Thumbprint
	Failures  []RecipientFailure
}

func (e *DeliveryError) Error() string {
	names := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		names = append(names, fmt.Sprintf("%s (%v)", f.Recipient, f.Err))
	}
	return fmt.Sprintf("%v for %d of %d recipients: %s",
		ErrDeliveryFailed, len(e.Failures), len(e.Failures)+len(e.Delivered), strings.Join(names, "; "))
}

// Unwrap exposes ErrDeliveryFailed and every per-recipient cause.
func (e *DeliveryError) Unwrap() []error {
	errs := []error{ErrDeliveryFailed}
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}

// ItemError reports why a single inbox item was rejected during receive.
type ItemError struct {
	ItemURL string
	Sender  Thumbprint
	Err     error
}

func (e *ItemError) Error() string {
	if e.Sender != "" {
		return fmt.Sprintf("inbox item %s from %s: %v", e.ItemURL, e.Sender, e.Err)
	}
	return fmt.Sprintf("inbox item %s: %v", e.ItemURL, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }
