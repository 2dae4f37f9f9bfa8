package cache

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/matzehuels/followstreams/pkg/errors"
)

// Retry bounds how often a backend operation is attempted. Only failures
// coded NETWORK_ERROR are retried.
type Retry struct {
	// Attempts is the total number of tries. Values below 1 mean one try.
	Attempts int
	// Delay is the wait before the second try. It doubles after each failure.
	Delay time.Duration
}

// DefaultRetry is used when RedisOptions.Retry is zero.
var DefaultRetry = Retry{Attempts: 3, Delay: 250 * time.Millisecond}

// Do calls fn until it succeeds, fails with an error other than
// NETWORK_ERROR, or runs out of attempts. The last error is returned.
func (r Retry) Do(ctx context.Context, fn func() error) error {
	attempts := max(r.Attempts, 1)
	delay := r.Delay
	var err error
	for i := range attempts {
		if err = fn(); err == nil || !errors.Is(err, errors.ErrCodeNetwork) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return err
}

// Unavailable codes a backend failure as NETWORK_ERROR so that [Retry.Do]
// tries again. Context errors pass through unchanged and are never retried.
func Unavailable(backend string, err error) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return err
	}
	return errors.Wrap(errors.ErrCodeNetwork, err, "%s unavailable", backend)
}
