package database

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	pingAttempts = 5
	pingBackoff  = 500 * time.Millisecond
)

// pingWithRetry calls ping until it succeeds, the attempts run out or ctx ends.
// Containers started together (compose, CI) are often not ready on first dial.
func pingWithRetry(ctx context.Context, log zerolog.Logger, target string, ping func(context.Context) error) error {
	var err error
	backoff := pingBackoff
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		if err = ping(ctx); err == nil {
			return nil
		}
		if attempt == pingAttempts {
			break
		}
		log.Warn().
			Err(err).
			Str("target", target).
			Int("attempt", attempt).
			Dur("retry_in", backoff).
			Msg("Ping failed, retrying")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return err
}
