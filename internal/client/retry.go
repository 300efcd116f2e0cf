package client

import (
	"context"
	"time"
)

// Chatter makes one chat attempt.
type Chatter interface {
	Chat(ctx context.Context, message string) (string, error)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Retry sends a chat message with a bounded number of attempts and a
// linear backoff between them: Backoff after the first failure, twice
// that after the second, and so on.
type Retry struct {
	Attempts int
	Backoff  time.Duration
	Sleep    SleepFunc
}

// DefaultRetry makes three attempts with 500ms and 1000ms pauses.
func DefaultRetry() Retry {
	return Retry{Attempts: 3, Backoff: 500 * time.Millisecond, Sleep: Sleep}
}

// Sleep is the real-clock SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Send calls c.Chat until it succeeds or attempts run out. Failures
// between attempts are not reported; the last one is returned.
func (r Retry) Send(ctx context.Context, c Chatter, message string) (string, error) {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		reply, err := c.Chat(ctx, message)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		if err := sleep(ctx, r.Backoff*time.Duration(attempt)); err != nil {
			return "", err
		}
	}
	return "", lastErr
}
