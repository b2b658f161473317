package channel

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"courier/internal/domain"
	"courier/internal/protocol/reference"
	"courier/internal/protocol/wire"
)

// Post uploads payload once and notifies every recipient.
//
// When some pushes fail the result lists delivered and failed recipients and
// the error is a *domain.DeliveryError. Nothing is rolled back; callers may
// retry the failed recipients with a new Post.
func (c *Channel) Post(
	ctx context.Context,
	payload domain.Payload,
	recipients []domain.Endpoint,
	expiresUTC time.Time,
) (*domain.PostResult, error) {
	if err := c.validatePost(payload, recipients, expiresUTC); err != nil {
		return nil, err
	}
	sender, err := wire.EncodeEndpoint(c.own.Endpoint)
	if err != nil {
		return nil, err
	}

	ct, err := c.provider.EncryptSymmetric(payload.Content, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("encrypt payload: %w", err)
	}
	location, err := c.uploader.Upload(ctx, bytes.NewReader(ct.Ciphertext), expiresUTC, payload.ContentType)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("post: %w", ctxErr)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrUploadFailed, err)
	}

	ref, err := domain.NewPayloadReference(
		location,
		payload.ContentType,
		c.provider.HashAlgorithm(),
		c.provider.Hash(ct.Ciphertext),
		ct.Key,
		ct.IV,
		expiresUTC,
	)
	if err != nil {
		return nil, err
	}
	encoded, err := reference.Encode(ref)
	if err != nil {
		return nil, err
	}

	posted := c.now().UTC()
	outcomes := make([]error, len(recipients))
	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, r := range recipients {
		g.Go(func() error {
			outcomes[i] = c.deliver(ctx, sender, encoded, r, posted, expiresUTC)
			return nil
		})
	}
	_ = g.Wait()

	res := &domain.PostResult{Reference: ref}
	for i, r := range recipients {
		if outcomes[i] == nil {
			res.Delivered = append(res.Delivered, r.Thumbprint())
			continue
		}
		res.Failed = append(res.Failed, domain.RecipientFailure{
			Recipient: r.Thumbprint(),
			InboxURL:  r.InboxURL,
			Err:       outcomes[i],
		})
	}
	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("post: %w", err)
	}
	if len(res.Failed) > 0 {
		return res, &domain.DeliveryError{Delivered: res.Delivered, Failures: res.Failed}
	}
	c.log.Debug("posted",
		zap.String("location", location),
		zap.Int("recipients", len(recipients)),
	)
	return res, nil
}

func (c *Channel) deliver(
	ctx context.Context,
	sender, ref []byte,
	recipient domain.Endpoint,
	posted, expires time.Time,
) error {
	env, err := c.seal(sender, ref, recipient, posted, expires)
	if err != nil {
		return err
	}
	if err := c.relay.Push(ctx, recipient.InboxURL, env); err != nil {
		c.log.Warn("push failed",
			zap.String("recipient", recipient.Thumbprint().String()),
			zap.String("inbox", recipient.InboxURL),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (c *Channel) validatePost(
	payload domain.Payload,
	recipients []domain.Endpoint,
	expiresUTC time.Time,
) error {
	switch {
	case len(payload.Content) == 0:
		return fmt.Errorf("%w: empty payload", domain.ErrInvalidArgument)
	case payload.ContentType == "":
		return fmt.Errorf("%w: empty content type", domain.ErrInvalidArgument)
	case len(recipients) == 0:
		return fmt.Errorf("%w: no recipients", domain.ErrInvalidArgument)
	case expiresUTC.Location() != time.UTC:
		return fmt.Errorf("%w: expiration is not UTC", domain.ErrInvalidArgument)
	case !expiresUTC.After(c.now()):
		return fmt.Errorf("%w: expiration is not in the future", domain.ErrInvalidArgument)
	}
	for _, r := range recipients {
		if r.InboxURL == "" || len(r.SigningKey) == 0 || len(r.EncryptionKey) == 0 {
			return fmt.Errorf("%w: incomplete recipient %q", domain.ErrInvalidArgument, r.ID)
		}
		if _, err := c.suites.Resolve(r.Suite); err != nil {
			return fmt.Errorf("%w: recipient %s: %v", domain.ErrInvalidArgument, r.Thumbprint(), err)
		}
	}
	return nil
}
