package channel

import (
	"context"
	"fmt"

	"courier/internal/domain"
)

// DeleteInboxItem acknowledges a received payload by removing its inbox
// item.
func (c *Channel) DeleteInboxItem(ctx context.Context, received *domain.ReceivedPayload) error {
	if received == nil {
		return fmt.Errorf("%w: nil received payload", domain.ErrInvalidArgument)
	}
	return c.DeleteItem(ctx, received.InboxItem.URL)
}

// DeleteItem removes an item of the own inbox by URL. Deleting an item that
// is already gone succeeds.
func (c *Channel) DeleteItem(ctx context.Context, itemURL string) error {
	if itemURL == "" {
		return fmt.Errorf("%w: empty item URL", domain.ErrInvalidArgument)
	}
	if err := c.relay.Delete(ctx, itemURL, c.own.InboxOwnerToken); err != nil {
		return fmt.Errorf("delete inbox item: %w", err)
	}
	return nil
}
