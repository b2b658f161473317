package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"courier/internal/domain"
	"courier/internal/util/httpx"
)

// ContentType is the media type of envelopes pushed to an inbox.
const ContentType = "application/cbor"

// maxItemSize bounds an inbox item read from the relay.
const maxItemSize = 1 << 20

// HTTP talks to an inbox relay over HTTP.
type HTTP struct {
	base  string
	http  *http.Client
	retry httpx.RetryConfig
	log   *zap.Logger
}

// Option configures an HTTP client.
type Option func(*HTTP)

// WithRetry replaces the retry policy for idempotent calls.
func WithRetry(cfg httpx.RetryConfig) Option { return func(c *HTTP) { c.retry = cfg } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(c *HTTP) { c.log = l } }

// NewHTTP returns a client for the relay rooted at base. Inbox and item URLs
// returned by the relay are absolute and used as-is.
func NewHTTP(base string, client *http.Client, opts ...Option) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	c := &HTTP{
		base:  strings.TrimRight(base, "/"),
		http:  client,
		retry: httpx.DefaultRetryConfig(),
		log:   zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CreateInbox provisions a new inbox and returns its URL and owner token.
func (c *HTTP) CreateInbox(ctx context.Context) (domain.InboxCreation, error) {
	if c.base == "" {
		return domain.InboxCreation{}, fmt.Errorf("%w: no relay configured", domain.ErrInvalidArgument)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/inbox", nil)
	if err != nil {
		return domain.InboxCreation{}, err
	}
	var out domain.InboxCreation
	if err := c.doJSON(req, &out); err != nil {
		return domain.InboxCreation{}, fmt.Errorf("relay create inbox: %w", err)
	}
	if out.InboxURL == "" || out.OwnerToken == "" {
		return domain.InboxCreation{}, fmt.Errorf("relay create inbox: incomplete response")
	}
	return out, nil
}

// Push delivers envelope bytes to any inbox. It is not retried: a lost
// response would otherwise deliver the item twice.
func (c *HTTP) Push(ctx context.Context, inboxURL string, envelope []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, inboxURL, bytes.NewReader(envelope))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", ContentType)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("relay push %s: %w", inboxURL, err)
	}
	defer resp.Body.Close()
	if err := httpx.CheckStatus(resp); err != nil {
		return fmt.Errorf("relay push: %w", err)
	}
	return nil
}

// List returns pending items of an owned inbox. With longPoll the relay holds
// the request open until an item arrives or its own timeout passes; ctx
// cancellation closes the connection.
func (c *HTTP) List(
	ctx context.Context,
	inboxURL string,
	ownerToken string,
	longPoll bool,
) ([]domain.InboxItem, error) {
	u := inboxURL
	if longPoll {
		u += "?longPoll=1"
	}
	var items []domain.InboxItem
	list := func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		httpx.SetBearer(req, ownerToken)
		items = nil
		return c.doJSON(req, &items)
	}
	if err := c.retry.Do(ctx, list); err != nil {
		return nil, fmt.Errorf("relay list: %w", err)
	}
	return items, nil
}

// Fetch downloads one inbox item.
func (c *HTTP) Fetch(ctx context.Context, itemURL string) ([]byte, error) {
	var body []byte
	fetch := func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, itemURL, nil)
		if err != nil {
			return err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if err := httpx.CheckStatus(resp); err != nil {
			return err
		}
		body, err = io.ReadAll(io.LimitReader(resp.Body, maxItemSize+1))
		if err != nil {
			return err
		}
		if len(body) > maxItemSize {
			return fmt.Errorf("item larger than %d bytes", maxItemSize)
		}
		return nil
	}
	if err := c.retry.Do(ctx, fetch); err != nil {
		if httpx.IsStatus(err, http.StatusNotFound) {
			return nil, fmt.Errorf("relay fetch %s: %w", itemURL, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("relay fetch: %w", err)
	}
	return body, nil
}

// Delete removes an item from an owned inbox. Deleting an item that is
// already gone succeeds.
func (c *HTTP) Delete(ctx context.Context, itemURL string, ownerToken string) error {
	del := func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodDelete, itemURL, nil)
		if err != nil {
			return err
		}
		httpx.SetBearer(req, ownerToken)
		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		return httpx.CheckStatus(resp)
	}
	err := c.retry.Do(ctx, del)
	if httpx.IsStatus(err, http.StatusNotFound) {
		c.log.Debug("inbox item already deleted", zap.String("item", itemURL))
		return nil
	}
	if err != nil {
		return fmt.Errorf("relay delete: %w", err)
	}
	return nil
}

func (c *HTTP) doJSON(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := httpx.CheckStatus(resp); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

var _ domain.InboxRelay = (*HTTP)(nil)
