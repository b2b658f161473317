package channel

import (
	"fmt"
	"time"

	"courier/internal/domain"
	"courier/internal/protocol/wire"
)

// seal builds the envelope for one recipient around already encoded
// reference bytes.
func (c *Channel) seal(
	sender []byte,
	ref []byte,
	recipient domain.Endpoint,
	postedUTC, expiresUTC time.Time,
) ([]byte, error) {
	body, err := wire.EncodeNotification(wire.Notification{
		Reference: ref,
		Recipient: recipient.Thumbprint(),
		Sender:    c.own.Thumbprint(),
		PostedUTC: postedUTC,
	})
	if err != nil {
		return nil, err
	}
	sig, err := c.provider.Sign(body, c.own.SigningPrivateKey)
	if err != nil {
		return nil, fmt.Errorf("sign notification: %w", err)
	}
	signed, err := wire.EncodeSigned(wire.SignedNotification{Body: body, Signature: sig})
	if err != nil {
		return nil, err
	}

	rp, err := c.suites.Resolve(recipient.Suite)
	if err != nil {
		return nil, err
	}
	sealed, err := rp.Encrypt(recipient.EncryptionKey, signed)
	if err != nil {
		return nil, fmt.Errorf("encrypt notification: %w", err)
	}
	return wire.EncodeEnvelope(wire.Envelope{
		Sender:     sender,
		PostedUTC:  postedUTC,
		ExpiresUTC: expiresUTC,
		Sealed:     sealed,
	})
}

// opened is a verified notification and the sender it was verified against.
type opened struct {
	sender       domain.Endpoint
	senderSuite  domain.CryptoProvider
	notification wire.Notification
}

// open decrypts and verifies an inbox item. Every failure wraps
// domain.ErrUntrustedMessage; the sender is filled in as soon as it is known.
func (c *Channel) open(raw []byte) (opened, error) {
	var o opened
	env, err := wire.DecodeEnvelope(raw)
	if err != nil {
		return o, untrusted("decode envelope: %v", err)
	}
	o.sender, err = wire.DecodeEndpoint(env.Sender)
	if err != nil {
		return o, untrusted("decode sender: %v", err)
	}
	o.senderSuite, err = c.suites.Resolve(o.sender.Suite)
	if err != nil {
		return o, untrusted("sender suite: %v", err)
	}

	plain, err := c.provider.Decrypt(c.own.EncryptionPrivateKey, env.Sealed)
	if err != nil {
		return o, untrusted("decrypt notification: %v", err)
	}
	signed, err := wire.DecodeSigned(plain)
	if err != nil {
		return o, untrusted("decode signed notification: %v", err)
	}
	if !o.senderSuite.VerifySignature(o.sender.SigningKey, signed.Body, signed.Signature) {
		return o, untrusted("signature does not verify against claimed sender")
	}

	o.notification, err = wire.DecodeNotification(signed.Body)
	if err != nil {
		return o, untrusted("decode notification: %v", err)
	}
	if o.notification.Sender != o.sender.Thumbprint() {
		return o, untrusted("signed sender does not match envelope sender")
	}
	if o.notification.Recipient != c.own.Thumbprint() {
		return o, untrusted("notification addressed to %s", o.notification.Recipient)
	}
	return o, nil
}

func untrusted(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{domain.ErrUntrustedMessage}, args...)...)
}
