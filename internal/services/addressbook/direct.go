package addressbook

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"courier/internal/domain"
	"courier/internal/protocol/wire"
)

// DirectEntry looks up identifiers that are direct-entry URLs.
type DirectEntry struct {
	fetch  domain.BlobDownloader
	suites domain.SuiteResolver
	log    *zap.Logger
}

// NewDirectEntry returns a DirectEntry that reads entries anonymously with
// fetch and verifies them with suites.
func NewDirectEntry(fetch domain.BlobDownloader, suites domain.SuiteResolver, log *zap.Logger) *DirectEntry {
	if log == nil {
		log = zap.NewNop()
	}
	return &DirectEntry{fetch: fetch, suites: suites, log: log}
}

// Lookup fetches and verifies the entry at identifier.
func (d *DirectEntry) Lookup(ctx context.Context, identifier string) (*domain.Endpoint, error) {
	location, pinned, err := ParseDirectEntry(identifier)
	if err != nil {
		return nil, err
	}
	body, err := d.fetch.Download(ctx, location)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !errors.Is(err, domain.ErrNotFound) {
			d.log.Debug("address book entry unreachable", zap.String("location", location), zap.Error(err))
		}
		return nil, nil
	}
	ep, err := d.verify(body, pinned)
	if err != nil {
		d.log.Warn("rejected address book entry",
			zap.String("location", location),
			zap.String("pinned", pinned.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return ep, nil
}

func (d *DirectEntry) verify(body []byte, pinned domain.Thumbprint) (*domain.Endpoint, error) {
	entry, err := wire.DecodeAddressBookEntry(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBadAddressBookEntry, err)
	}
	ep, err := wire.DecodeEndpoint(entry.SerializedEndpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBadAddressBookEntry, err)
	}
	got := ep.Thumbprint()
	if subtle.ConstantTimeCompare([]byte(got), []byte(pinned)) != 1 {
		return nil, fmt.Errorf("%w: thumbprint %s does not match pinned %s",
			domain.ErrBadAddressBookEntry, got, pinned)
	}
	p, err := d.suites.Resolve(ep.Suite)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBadAddressBookEntry, err)
	}
	if !p.VerifySignature(ep.SigningKey, entry.SerializedEndpoint, entry.Signature) {
		return nil, fmt.Errorf("%w: self-signature does not verify", domain.ErrBadAddressBookEntry)
	}
	return &ep, nil
}

// ParseDirectEntry splits a direct-entry URL into the location to fetch and
// the pinned thumbprint from its fragment.
func ParseDirectEntry(identifier string) (string, domain.Thumbprint, error) {
	u, err := url.Parse(strings.TrimSpace(identifier))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return "", "", fmt.Errorf("%w: %q is not an http(s) URL", domain.ErrInvalidArgument, identifier)
	}
	if u.Fragment == "" {
		return "", "", fmt.Errorf("%w: %q has no thumbprint fragment", domain.ErrInvalidArgument, identifier)
	}
	pinned := domain.Thumbprint(u.Fragment)
	u.Fragment, u.RawFragment = "", ""
	return u.String(), pinned, nil
}

var _ domain.AddressBook = (*DirectEntry)(nil)
