package marketdata

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog/log"
)

// withRetry retries fn up to maxAttempts times with jittered exponential
// backoff (base 2, bounded by maxBackoff), per spec.md §4.2. Every
// non-nil error from fn is retried; withRetry does not tell retryable
// errors (transport, 5xx) from terminal ones (4xx, decode failures).
func withRetry(ctx context.Context, maxAttempts int, maxBackoff time.Duration, fn func() error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == maxAttempts-1 {
			break
		}
		backoff := time.Duration(math.Pow(2, float64(attempt))) * 100 * time.Millisecond
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
		jitter := time.Duration(rand.Int63n(int64(backoff) + 1))
		log.Warn().Err(err).Int("attempt", attempt+1).Dur("backoff", jitter).Msg("marketdata: retrying after error")
		select {
		case <-time.After(jitter):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}
