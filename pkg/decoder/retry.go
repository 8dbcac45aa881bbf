package decoder

import (
	"context"
	"time"
)

// ConnectWithRetry calls connect up to retries times, sleeping delay after
// each failure, and returns nil on the first success. It returns the last
// connect error once retries are exhausted, or ctx.Err() if ctx ends first.
//
// Unlike Manager.Run it gives up; it suits one-shot probes such as checking a
// camera before starting the pipeline.
func ConnectWithRetry(ctx context.Context, connect func(context.Context) error, retries int, delay time.Duration) error {
	lastErr := ErrStreamEnded
	for i := 0; i < retries; i++ {
		err := connect(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
