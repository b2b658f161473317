package httpx

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"net"
	"net/http"
	"time"
)

// RetryConfig configures retries of idempotent requests.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	// Jitter randomises each delay by up to this fraction (0.0 to 1.0).
	Jitter float64
}

// DefaultRetryConfig returns the retry policy used by the HTTP clients.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  200 * time.Millisecond,
		MaxDelay:   5 * time.Second,
		Multiplier: 2.0,
		Jitter:     0.2,
	}
}

// NoRetry performs every request exactly once.
func NoRetry() RetryConfig { return RetryConfig{} }

// Delay returns the wait before retry number attempt (zero based).
func (r RetryConfig) Delay(attempt int) time.Duration {
	mult := r.Multiplier
	if mult <= 0 {
		mult = 1
	}
	delay := float64(r.BaseDelay) * math.Pow(mult, float64(attempt))
	if r.MaxDelay > 0 && delay > float64(r.MaxDelay) {
		delay = float64(r.MaxDelay)
	}
	if r.Jitter > 0 {
		j := delay * r.Jitter
		delay = delay - j + rand.Float64()*2*j
	}
	return time.Duration(delay)
}

// Do runs fn until it succeeds, returns a non-retryable error, the retry
// budget is spent or ctx ends.
func (r RetryConfig) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	for attempt := 0; ; attempt++ {
		err := fn(ctx)
		if err == nil || attempt >= r.MaxRetries || !Retryable(err) {
			return err
		}
		timer := time.NewTimer(r.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Retryable reports whether err is a transient transport failure or a status
// the server marks as temporary.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		switch se.Code {
		case http.StatusRequestTimeout, http.StatusTooManyRequests,
			http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
		return false
	}
	var ne net.Error
	return errors.As(err, &ne)
}
