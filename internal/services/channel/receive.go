package channel

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"courier/internal/domain"
	"courier/internal/protocol/reference"
)

// Receive runs one pass over the own inbox and collects the result.
//
// Rejected items are listed in the result. The returned error joins the
// hash-mismatch rejections, or reports a failed listing or cancellation.
// Receive does not delete anything.
func (c *Channel) Receive(ctx context.Context, opts domain.ReceiveOptions) (*domain.ReceiveResult, error) {
	res := &domain.ReceiveResult{}
	var security []error
	for p, err := range c.Stream(ctx, opts) {
		if err == nil {
			res.Payloads = append(res.Payloads, p)
			continue
		}
		var ie *domain.ItemError
		if !errors.As(err, &ie) {
			return res, err
		}
		res.Rejected = append(res.Rejected, ie)
		if errors.Is(ie, domain.ErrHashMismatch) {
			security = append(security, ie)
		}
	}
	return res, errors.Join(security...)
}

type outcome struct {
	payload *domain.ReceivedPayload
	err     error
}

// Stream lists the own inbox once and yields every trusted payload. Item
// failures are yielded as *domain.ItemError and the sequence continues; a
// listing failure or cancellation is yielded last. Items are processed
// concurrently and arrive in no particular order. opts.Progress runs on the
// consuming goroutine before each payload is yielded.
//
// The sequence is single use.
func (c *Channel) Stream(ctx context.Context, opts domain.ReceiveOptions) iter.Seq2[*domain.ReceivedPayload, error] {
	return func(yield func(*domain.ReceivedPayload, error) bool) {
		items, err := c.list(ctx, opts.LongPoll)
		if err != nil {
			yield(nil, err)
			return
		}

		work, cancel := context.WithCancel(ctx)
		results := make(chan outcome)
		go func() {
			defer close(results)
			var g errgroup.Group
			g.SetLimit(c.concurrency)
			for _, item := range items {
				if work.Err() != nil {
					break
				}
				g.Go(func() error {
					p, err := c.receiveItem(work, item)
					if err != nil && work.Err() != nil {
						return nil
					}
					select {
					case results <- outcome{payload: p, err: err}:
					case <-work.Done():
					}
					return nil
				})
			}
			_ = g.Wait()
		}()
		defer func() {
			cancel()
			for range results {
			}
		}()

		for o := range results {
			if o.err != nil {
				if !yield(nil, o.err) {
					return
				}
				continue
			}
			if opts.Progress != nil {
				opts.Progress(o.payload)
			}
			if !yield(o.payload, nil) {
				return
			}
		}
		if err := ctx.Err(); err != nil {
			yield(nil, fmt.Errorf("receive: %w", err))
		}
	}
}

// list returns pending items. In long-poll mode it keeps asking the relay
// until something arrives or ctx ends.
func (c *Channel) list(ctx context.Context, longPoll bool) ([]domain.InboxItem, error) {
	for attempt := 0; ; attempt++ {
		items, err := c.relay.List(ctx, c.own.Endpoint.InboxURL, c.own.InboxOwnerToken, longPoll)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, fmt.Errorf("receive: %w", ctxErr)
			}
			return nil, fmt.Errorf("list inbox: %w", err)
		}
		if len(items) > 0 || !longPoll {
			return items, nil
		}
		timer := time.NewTimer(c.pollBackoff.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("receive: %w", ctx.Err())
		case <-timer.C:
		}
	}
}

func (c *Channel) receiveItem(ctx context.Context, item domain.InboxItem) (*domain.ReceivedPayload, error) {
	fail := func(sender domain.Thumbprint, err error) (*domain.ReceivedPayload, error) {
		ie := &domain.ItemError{ItemURL: item.URL, Sender: sender, Err: err}
		switch {
		case errors.Is(err, domain.ErrHashMismatch):
			c.log.Warn("payload hash mismatch",
				zap.String("item", item.URL), zap.String("sender", sender.String()))
		case errors.Is(err, domain.ErrUntrustedMessage):
			c.log.Warn("untrusted inbox item",
				zap.String("item", item.URL), zap.String("sender", sender.String()), zap.Error(err))
		default:
			c.log.Info("inbox item skipped", zap.String("item", item.URL), zap.Error(err))
		}
		return nil, ie
	}

	raw, err := c.relay.Fetch(ctx, item.URL)
	if err != nil {
		return fail("", err)
	}
	o, err := c.open(raw)
	if err != nil {
		var sender domain.Thumbprint
		if len(o.sender.SigningKey) > 0 {
			sender = o.sender.Thumbprint()
		}
		return fail(sender, err)
	}
	sender := o.sender.Thumbprint()

	ref, err := reference.Decode(o.notification.Reference)
	if err != nil {
		return fail(sender, err)
	}
	if ref.Expired(c.now()) {
		return fail(sender, fmt.Errorf("reference expired at %s: %w", ref.ExpiresUTC, domain.ErrNotFound))
	}
	hash, err := c.suites.Hasher(ref.HashAlgorithm)
	if err != nil {
		return fail(sender, fmt.Errorf("%w: %v", domain.ErrMalformedReference, err))
	}

	blob, err := c.downloader.Download(ctx, ref.Location)
	if err != nil {
		return fail(sender, err)
	}
	if !bytes.Equal(hash(blob), ref.Hash) {
		return fail(sender, fmt.Errorf("%w: blob %s", domain.ErrHashMismatch, ref.Location))
	}
	content, err := o.senderSuite.DecryptSymmetric(blob, ref.Key, ref.IV)
	if err != nil {
		return fail(sender, untrusted("decrypt payload: %v", err))
	}

	return &domain.ReceivedPayload{
		Payload:   domain.Payload{ContentType: ref.ContentType, Content: content},
		Reference: ref,
		Sender:    o.sender,
		InboxItem: item,
		PostedUTC: o.notification.PostedUTC,
	}, nil
}
