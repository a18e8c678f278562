package store

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	readAttempts = 3
	readBackoff  = 25 * time.Millisecond
)

// RetryRead runs fn up to three times with exponential backoff. ErrNotFound
// and context cancellation are returned immediately since retrying cannot
// change them.
func RetryRead[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	backoff := retry.WithMaxRetries(readAttempts-1, retry.NewExponential(readBackoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		v, err := fn(ctx)
		switch {
		case err == nil:
			out = v
			return nil
		case errors.Is(err, ErrNotFound),
			errors.Is(err, context.Canceled),
			errors.Is(err, context.DeadlineExceeded):
			return err
		default:
			return retry.RetryableError(err)
		}
	})
	return out, err
}
