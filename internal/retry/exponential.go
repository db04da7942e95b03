package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// ExponentialBackoff retries a failing operation with doubling delays up to
// maxDelay. It gives up after maxAttempts or when the context is cancelled.
type ExponentialBackoff struct {
	maxAttempts  int
	initialDelay time.Duration
	maxDelay     time.Duration
	logger       zerolog.Logger
}

func NewExponentialBackoff(maxAttempts int, initialDelay, maxDelay time.Duration, logger zerolog.Logger) *ExponentialBackoff {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &ExponentialBackoff{
		maxAttempts:  maxAttempts,
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		logger:       logger,
	}
}

func (s *ExponentialBackoff) Execute(ctx context.Context, op Operation) error {
	var lastErr error
	delay := s.initialDelay

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		if err := op(ctx); err == nil {
			if attempt > 1 {
				s.logger.Info().Int("attempt", attempt).Msg("retry: operation succeeded after retry")
			}
			return nil
		} else {
			lastErr = err
		}

		if attempt == s.maxAttempts {
			break
		}

		s.logger.Warn().
			Err(lastErr).
			Int("attempt", attempt).
			Dur("retry_in", delay).
			Msg("retry: operation failed, backing off")

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}

		delay *= 2
		if delay > s.maxDelay {
			delay = s.maxDelay
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", s.maxAttempts, lastErr)
}
