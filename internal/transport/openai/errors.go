package openai

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// mapAPIError translates go-openai errors into the domain taxonomy.
// 429 becomes ErrRateLimited; everything else, including timeouts, becomes
// ErrProviderError so callers retry instead of hanging or failing hard.
func mapAPIError(err error, op string) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%s API status %d: %s: %w", op, apiErr.HTTPStatusCode, apiErr.Message, domain.ErrRateLimited)
		}
		return fmt.Errorf("%s API status %d: %s: %w", op, apiErr.HTTPStatusCode, apiErr.Message, domain.ErrProviderError)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("%s API status %d: %s: %w", op, reqErr.HTTPStatusCode, string(reqErr.Body), domain.ErrRateLimited)
		}
		return fmt.Errorf("%s API status %d: %s: %w", op, reqErr.HTTPStatusCode, string(reqErr.Body), domain.ErrProviderError)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s request timed out: %w", op, domain.ErrProviderError)
	}

	return fmt.Errorf("%s request failed: %v: %w", op, err, domain.ErrProviderError)
}

// retryable reports whether the call may succeed on another attempt.
func retryable(err error) bool {
	return errors.Is(err, domain.ErrRateLimited) || errors.Is(err, domain.ErrProviderError)
}

// backoff returns exponential backoff with jitter: base doubled per attempt,
// capped at 30s, with ±25% random jitter.
func backoff(base time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	d := base * time.Duration(1<<uint(attempt))
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(d)/2)) - d/4
	return d + jitter
}

const backoffBase = 500 * time.Millisecond

// withRetries runs call up to maxRetries+1 times, backing off between
// retryable failures. Caller context cancellation wins over the backoff wait.
func withRetries(ctx context.Context, maxRetries int, logger *zap.Logger, call func(ctx context.Context) error) error {
	var err error
	for attempt := 0; ; attempt++ {
		err = call(ctx)
		if err == nil || !retryable(err) || attempt >= maxRetries {
			return err
		}

		wait := backoff(backoffBase, attempt+1)
		logger.Warn("provider call failed, backing off",
			zap.Int("attempt", attempt+1),
			zap.Duration("wait", wait),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		case <-time.After(wait):
		}
	}
}
