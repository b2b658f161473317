package addressbook

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"courier/internal/domain"
	"courier/internal/util/httpx"
)

// directEntryPattern finds a direct-entry URL in free text.
var directEntryPattern = regexp.MustCompile(`https?://[^\s"'<>#]+#[A-Za-z0-9_-]+`)

// ProfileSource returns the free-text biography of a social profile.
type ProfileSource interface {
	Biography(ctx context.Context, handle string) (string, error)
}

// Social discovers direct-entry URLs published in profile biographies.
type Social struct {
	profiles ProfileSource
	direct   *DirectEntry
	log      *zap.Logger
}

// NewSocial returns a Social address book.
func NewSocial(profiles ProfileSource, direct *DirectEntry, log *zap.Logger) *Social {
	if log == nil {
		log = zap.NewNop()
	}
	return &Social{profiles: profiles, direct: direct, log: log}
}

// Lookup resolves "@handle". A profile that cannot be read or carries no
// direct-entry URL yields nil, nil.
func (s *Social) Lookup(ctx context.Context, identifier string) (*domain.Endpoint, error) {
	handle, ok := strings.CutPrefix(strings.TrimSpace(identifier), "@")
	if !ok || handle == "" {
		return nil, fmt.Errorf("%w: %q is not a @handle", domain.ErrInvalidArgument, identifier)
	}
	bio, err := s.profiles.Biography(ctx, handle)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		s.log.Debug("profile unavailable", zap.String("handle", handle), zap.Error(err))
		return nil, nil
	}
	match := directEntryPattern.FindString(bio)
	if match == "" {
		return nil, nil
	}
	return s.direct.Lookup(ctx, match)
}

// HTTPProfileSource reads biographies from a JSON profile API. The URL
// template contains {handle}; the response is an object whose
// "description" or "bio" field holds the biography.
type HTTPProfileSource struct {
	template string
	http     *http.Client
	retry    httpx.RetryConfig
}

// NewHTTPProfileSource returns a source for template, for example
// "https://social.example.com/api/users/{handle}".
func NewHTTPProfileSource(template string, client *http.Client) *HTTPProfileSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPProfileSource{template: template, http: client, retry: httpx.DefaultRetryConfig()}
}

type profile struct {
	Description string `json:"description"`
	Bio         string `json:"bio"`
}

func (s *HTTPProfileSource) Biography(ctx context.Context, handle string) (string, error) {
	u := strings.ReplaceAll(s.template, "{handle}", url.PathEscape(handle))
	var p profile
	get := func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		resp, err := s.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if err := httpx.CheckStatus(resp); err != nil {
			return err
		}
		p = profile{}
		return json.NewDecoder(resp.Body).Decode(&p)
	}
	if err := s.retry.Do(ctx, get); err != nil {
		return "", fmt.Errorf("profile %s: %w", handle, err)
	}
	if p.Description != "" {
		return p.Description, nil
	}
	return p.Bio, nil
}

var (
	_ domain.AddressBook = (*Social)(nil)
	_ ProfileSource      = (*HTTPProfileSource)(nil)
)
