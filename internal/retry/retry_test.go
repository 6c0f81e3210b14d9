package retry_test

import (
	"context"
	"errors"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpclient "github.com/swapstats/revenue-api/internal/client/http"
	"github.com/swapstats/revenue-api/internal/logger"
	"github.com/swapstats/revenue-api/internal/retry"
)

func init() {
	logger.InitLogger()
}

func fastOptions() retry.Options {
	return retry.Options{
		MaxRetries:   3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
	}
}

func TestDo_ExhaustsRetriesAndReturnsOriginalError(t *testing.T) {
	sentinel := errors.New("remote exploded")
	calls := 0

	opts := fastOptions()
	opts.ShouldRetry = func(error) bool { return true }

	_, err := retry.Do(context.Background(), func() (int, error) {
		calls++
		return 0, sentinel
	}, opts)

	require.Error(t, err)
	// maxRetries=3 means the operation runs once plus three retries
	assert.Equal(t, 4, calls)
	// the last error must come back unwrapped
	assert.Same(t, sentinel, err)
}

func TestDo_TerminalErrorFailsImmediately(t *testing.T) {
	sentinel := errors.New("bad request")
	calls := 0

	_, err := retry.Do(context.Background(), func() (string, error) {
		calls++
		return "", sentinel
	}, fastOptions())

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Same(t, sentinel, err)
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0

	opts := fastOptions()
	opts.ShouldRetry = func(error) bool { return true }

	got, err := retry.Do(context.Background(), func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("flaky")
		}
		return "ok", nil
	}, opts)

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestDo_FirstTrySuccessSkipsBackoff(t *testing.T) {
	calls := 0
	got, err := retry.Do(context.Background(), func() (int, error) {
		calls++
		return 42, nil
	}, retry.Options{})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, calls)
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", &httpclient.HTTPError{StatusCode: 429}, true},
		{"gateway timeout", &httpclient.HTTPError{StatusCode: 504}, true},
		{"server error", &httpclient.HTTPError{StatusCode: 500}, false},
		{"not found", &httpclient.HTTPError{StatusCode: 404}, false},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"dns failure", &net.DNSError{Err: "no such host", Name: "api.example.com", IsNotFound: true}, true},
		{"connection reset", syscall.ECONNRESET, true},
		{"connection refused", syscall.ECONNREFUSED, true},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, retry.IsRetryable(tt.err))
		})
	}
}
