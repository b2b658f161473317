package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"courier/internal/domain"
	"courier/internal/util/httpx"
)

// Header names used by the upload endpoint.
const (
	HeaderExpires = "X-Blob-Expires"
)

// HTTP uploads blobs to a blob server and downloads blobs from any host.
type HTTP struct {
	base  string
	http  *http.Client
	retry httpx.RetryConfig
}

// NewHTTP returns a client that uploads to base. Downloads accept any
// absolute location.
func NewHTTP(base string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{base: strings.TrimRight(base, "/"), http: client, retry: httpx.DefaultRetryConfig()}
}

// WithRetry returns a copy of c using cfg for downloads.
func (c *HTTP) WithRetry(cfg httpx.RetryConfig) *HTTP {
	cp := *c
	cp.retry = cfg
	return &cp
}

// Upload posts content and returns its public location.
func (c *HTTP) Upload(
	ctx context.Context,
	content io.Reader,
	expiresUTC time.Time,
	contentType string,
) (string, error) {
	if c.base == "" {
		return "", fmt.Errorf("%w: no blob server configured", domain.ErrInvalidArgument)
	}
	if err := checkUpload(expiresUTC, contentType, time.Now()); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/blob", content)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(HeaderExpires, expiresUTC.Format(time.RFC3339Nano))
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("blob upload: %w", err)
	}
	defer resp.Body.Close()
	if err := httpx.CheckStatus(resp); err != nil {
		return "", fmt.Errorf("blob upload: %w", err)
	}
	var out struct {
		Location string `json:"location"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("blob upload: decode response: %w", err)
	}
	if out.Location == "" {
		return "", fmt.Errorf("blob upload: server returned no location")
	}
	return out.Location, nil
}

// Download reads a blob anonymously. A 404 or 410 maps to domain.ErrNotFound.
func (c *HTTP) Download(ctx context.Context, location string) ([]byte, error) {
	var body []byte
	get := func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
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
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, io.LimitReader(resp.Body, MaxBlobSize+1)); err != nil {
			return err
		}
		if buf.Len() > MaxBlobSize {
			return fmt.Errorf("blob larger than %d bytes", MaxBlobSize)
		}
		body = buf.Bytes()
		return nil
	}
	err := c.retry.Do(ctx, get)
	if httpx.IsStatus(err, http.StatusNotFound) || httpx.IsStatus(err, http.StatusGone) {
		return nil, fmt.Errorf("blob %s: %w", location, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("blob download: %w", err)
	}
	return body, nil
}

var (
	_ domain.BlobUploader   = (*HTTP)(nil)
	_ domain.BlobDownloader = (*HTTP)(nil)
)
