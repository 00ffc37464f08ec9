package utils

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// RetryStartup runs fn until it succeeds, ctx is done, or it has been retried
// attempts times, backing off exponentially from base. Only for process
// startup; request paths never retry store calls.
func RetryStartup(ctx context.Context, attempts uint64, base time.Duration, fn func(ctx context.Context) error) error {
	b := retry.WithMaxRetries(attempts, retry.NewExponential(base))
	return retry.Do(ctx, b, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
