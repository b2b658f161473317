package httpx_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"courier/internal/util/httpx"
)

func TestRetry_StopsOnPermanentStatus(t *testing.T) {
	cfg := httpx.RetryConfig{MaxRetries: 5, BaseDelay: time.Millisecond}
	calls := 0
	err := cfg.Do(context.Background(), func(context.Context) error {
		calls++
		return &httpx.StatusError{Code: http.StatusForbidden}
	})
	if err == nil || calls != 1 {
		t.Fatalf("calls = %d, err = %v", calls, err)
	}
}

func TestRetry_RetriesTransientThenSucceeds(t *testing.T) {
	cfg := httpx.RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, Multiplier: 2}
	calls := 0
	err := cfg.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return &httpx.StatusError{Code: http.StatusServiceUnavailable}
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("calls = %d, err = %v", calls, err)
	}
}

func TestRetry_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := httpx.RetryConfig{MaxRetries: 10, BaseDelay: time.Hour}
	err := cfg.Do(ctx, func(context.Context) error {
		cancel()
		return &httpx.StatusError{Code: http.StatusBadGateway}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRetryConfig_DelayCapped(t *testing.T) {
	cfg := httpx.RetryConfig{BaseDelay: time.Second, MaxDelay: 3 * time.Second, Multiplier: 10}
	if d := cfg.Delay(5); d != 3*time.Second {
		t.Fatalf("Delay = %v, want 3s", d)
	}
}

func TestBearerToken(t *testing.T) {
	req, _ := http.NewRequest(http.MethodGet, "http://x", nil)
	if _, ok := httpx.BearerToken(req); ok {
		t.Fatal("token found on bare request")
	}
	httpx.SetBearer(req, "s3cret")
	tok, ok := httpx.BearerToken(req)
	if !ok || tok != "s3cret" {
		t.Fatalf("BearerToken = %q, %v", tok, ok)
	}
}
