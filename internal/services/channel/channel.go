package channel

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"courier/internal/crypto"
	"courier/internal/domain"
	"courier/internal/util/httpx"
)

// Channel binds an OwnEndpoint to its collaborators.
type Channel struct {
	own        *domain.OwnEndpoint
	provider   domain.CryptoProvider
	suites     domain.SuiteResolver
	uploader   domain.BlobUploader
	downloader domain.BlobDownloader
	relay      domain.InboxRelay

	log         *zap.Logger
	concurrency int
	pollBackoff httpx.RetryConfig
	now         func() time.Time
}

// Option configures a Channel.
type Option func(*Channel)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option { return func(c *Channel) { c.log = l } }

// WithConcurrency bounds parallel pushes in Post and parallel item processing
// in Receive.
func WithConcurrency(n int) Option {
	return func(c *Channel) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithPollBackoff sets the wait between empty long-poll rounds.
func WithPollBackoff(cfg httpx.RetryConfig) Option { return func(c *Channel) { c.pollBackoff = cfg } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(c *Channel) { c.now = now } }

// New constructs a Channel for own. provider must implement own's suite,
// otherwise New fails with domain.ErrInvalidArgument. suites resolves the
// providers of peers and defaults to a registry seeded with provider.
func New(
	own *domain.OwnEndpoint,
	provider domain.CryptoProvider,
	suites domain.SuiteResolver,
	uploader domain.BlobUploader,
	downloader domain.BlobDownloader,
	relay domain.InboxRelay,
	opts ...Option,
) (*Channel, error) {
	if own == nil || provider == nil {
		return nil, fmt.Errorf("%w: channel needs an endpoint and a provider", domain.ErrInvalidArgument)
	}
	if provider.Suite() != own.Endpoint.Suite {
		return nil, fmt.Errorf("%w: provider suite %q does not match endpoint suite %q",
			domain.ErrInvalidArgument, provider.Suite(), own.Endpoint.Suite)
	}
	if suites == nil {
		suites = crypto.NewRegistry(provider)
	}
	c := &Channel{
		own:         own,
		provider:    provider,
		suites:      suites,
		uploader:    uploader,
		downloader:  downloader,
		relay:       relay,
		log:         zap.NewNop(),
		concurrency: 8,
		pollBackoff: httpx.RetryConfig{
			BaseDelay:  time.Second,
			MaxDelay:   30 * time.Second,
			Multiplier: 2,
			Jitter:     0.1,
		},
		now: time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

// Own returns the endpoint the channel acts for.
func (c *Channel) Own() *domain.OwnEndpoint { return c.own }

var _ domain.ChannelService = (*Channel)(nil)
