package app

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// RetryConfig задаёт повторы первой загрузки заказов.
// Изменения заказов не повторяются: повторяется только чтение списка.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig возвращает конфигурацию по умолчанию.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   5,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      10 * time.Second,
		BackoffFactor: 2.0,
	}
}

// initialLoad перечитывает заказы с экспоненциальной задержкой, пока хранилище
// не ответит или не кончатся попытки.
func initialLoad(ctx context.Context, orders refresher, cfg RetryConfig, logger *log.Entry) (int, error) {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	delay := cfg.InitialDelay

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		n, err := orders.Refresh(ctx)
		if err == nil {
			if attempt > 1 {
				logger.WithField("attempt", attempt).Info("initial order load succeeded after retry")
			}
			return n, nil
		}
		lastErr = err
		if attempt == cfg.MaxAttempts {
			break
		}

		logger.WithFields(log.Fields{
			"attempt": attempt,
			"delay":   delay,
		}).WithError(err).Warn("initial order load failed, retrying")

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * cfg.BackoffFactor)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return 0, lastErr
}
