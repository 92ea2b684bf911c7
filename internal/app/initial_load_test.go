package app

import (
	"context"
	"errors"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type flakyRefresher struct {
	failures int
	calls    int
}

func (f *flakyRefresher) Refresh(context.Context) (int, error) {
	f.calls++
	if f.calls <= f.failures {
		return 0, errors.New("store unavailable")
	}
	return 7, nil
}

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond, BackoffFactor: 2}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	require.Positive(t, cfg.MaxAttempts)
	require.Positive(t, cfg.InitialDelay)
	require.Greater(t, cfg.BackoffFactor, 1.0)
}

func TestInitialLoad_SucceedsAfterRetry(t *testing.T) {
	orders := &flakyRefresher{failures: 2}

	n, err := initialLoad(context.Background(), orders, fastRetry(3), log.WithField("test", "initial-load"))
	require.NoError(t, err)
	require.Equal(t, 7, n)
	require.Equal(t, 3, orders.calls)
}

func TestInitialLoad_GivesUp(t *testing.T) {
	orders := &flakyRefresher{failures: 10}

	_, err := initialLoad(context.Background(), orders, fastRetry(2), log.WithField("test", "initial-load"))
	require.ErrorContains(t, err, "store unavailable")
	require.Equal(t, 2, orders.calls)
}

func TestInitialLoad_StopsOnCancel(t *testing.T) {
	orders := &flakyRefresher{failures: 10}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := fastRetry(5)
	cfg.InitialDelay = time.Hour
	_, err := initialLoad(ctx, orders, cfg, log.WithField("test", "initial-load"))
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, orders.calls)
}
