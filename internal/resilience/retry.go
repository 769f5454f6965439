package resilience

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// Retryable decides whether err is worth another attempt. Nil retries
	// everything except context errors.
	Retryable func(error) bool
	Logger    *zap.Logger
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     2 * time.Second,
		Logger:       zap.NewNop(),
	}
}

// Retry runs op with exponential backoff until it succeeds, returns a
// non-retryable error, runs out of attempts, or ctx is done.
func Retry(ctx context.Context, cfg RetryConfig, op func(context.Context) error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	delay := cfg.InitialDelay
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if !retryable(cfg, lastErr) || attempt == cfg.MaxAttempts {
			return lastErr
		}
		cfg.Logger.Debug("operation failed, retrying",
			zap.Error(lastErr),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
		)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}
	return lastErr
}

func retryable(cfg RetryConfig, err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if cfg.Retryable == nil {
		return true
	}
	return cfg.Retryable(err)
}
