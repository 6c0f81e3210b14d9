package retry

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	httpclient "github.com/swapstats/revenue-api/internal/client/http"
	"github.com/swapstats/revenue-api/internal/logger"
)

// Options configures a retried operation. The zero value is usable; every
// field falls back to the package default.
type Options struct {
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	// DisableJitter turns off the ±10% delay perturbation.
	DisableJitter bool
	// ShouldRetry classifies an error as transient. Defaults to IsRetryable.
	ShouldRetry func(error) bool
}

const (
	defaultMaxRetries   = 3
	defaultInitialDelay = 1 * time.Second
	defaultMaxDelay     = 30 * time.Second
	defaultMultiplier   = 2.0
	jitterFactor        = 0.1
)

// IsRetryable is the default transient-error classifier: rate limiting
// (429), gateway timeouts (504), transport-level connection failures and
// timeouts. Everything else is terminal.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 429 || httpErr.StatusCode == 504
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ETIMEDOUT)
}

func (o Options) withDefaults() Options {
	if o.MaxRetries == 0 {
		o.MaxRetries = defaultMaxRetries
	}
	if o.InitialDelay == 0 {
		o.InitialDelay = defaultInitialDelay
	}
	if o.MaxDelay == 0 {
		o.MaxDelay = defaultMaxDelay
	}
	if o.BackoffMultiplier == 0 {
		o.BackoffMultiplier = defaultMultiplier
	}
	if o.ShouldRetry == nil {
		o.ShouldRetry = IsRetryable
	}
	return o
}

// Do invokes op with exponential backoff until it succeeds, the classifier
// declares the error terminal, or the retry budget is exhausted. The last
// error is returned unchanged so callers can inspect the original failure.
func Do[T any](ctx context.Context, op func() (T, error), opts Options) (T, error) {
	o := opts.withDefaults()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = o.InitialDelay
	bo.MaxInterval = o.MaxDelay
	bo.Multiplier = o.BackoffMultiplier
	bo.MaxElapsedTime = 0
	if o.DisableJitter {
		bo.RandomizationFactor = 0
	} else {
		bo.RandomizationFactor = jitterFactor
	}
	bo.Reset()

	wrapped := func() (T, error) {
		res, err := op()
		if err != nil && !o.ShouldRetry(err) {
			return res, backoff.Permanent(err)
		}
		return res, err
	}

	attempt := 0
	notify := func(err error, delay time.Duration) {
		attempt++
		logger.Warn("retrying after transient failure",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", o.MaxRetries),
			zap.Duration("delay", delay),
			zap.Error(err))
	}

	return backoff.RetryNotifyWithData(
		wrapped,
		backoff.WithContext(backoff.WithMaxRetries(bo, uint64(o.MaxRetries)), ctx),
		notify,
	)
}
