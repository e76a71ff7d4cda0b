package modeladapter

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/avelez/sleuth/pkg/chats/chat"
	"github.com/avelez/sleuth/pkg/chats/message"
	"github.com/avelez/sleuth/pkg/tools/toolbox"
)

var _ Completer = (*RetryCompleter)(nil)

// RetryOpts configures a RetryCompleter.
type RetryOpts struct {
	MaxRetries int           // Max retries on 429 (default 3).
	BaseDelay  time.Duration // Initial backoff delay (default 1s).
}

// RetryCompleter wraps a Completer with reactive 429 retry: exponential
// backoff with jitter, honoring Retry-After when the server sends one.
// Non-rate-limit errors pass through untouched.
type RetryCompleter struct {
	inner      Completer
	maxRetries int
	baseDelay  time.Duration

	// sleepFunc and randFunc are swapped out in tests.
	sleepFunc func(ctx context.Context, d time.Duration) error
	randFunc  func() float64
}

// NewRetryCompleter wraps inner with 429 retry behaviour.
func NewRetryCompleter(inner Completer, opts RetryOpts) *RetryCompleter {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Second
	}

	return &RetryCompleter{
		inner:      inner,
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.BaseDelay,
		sleepFunc:  contextSleep,
		randFunc:   rand.Float64,
	}
}

// SetSleepFunc overrides the sleep function (for testing).
func (r *RetryCompleter) SetSleepFunc(fn func(ctx context.Context, d time.Duration) error) {
	r.sleepFunc = fn
}

// SetRandFunc overrides the jitter random source (for testing).
func (r *RetryCompleter) SetRandFunc(fn func() float64) { r.randFunc = fn }

// Complete calls the inner completer, retrying on *RateLimitError up to
// MaxRetries times. The final rate limit error is returned when retries are
// exhausted.
func (r *RetryCompleter) Complete(ctx context.Context, c *chat.Chat, tools []toolbox.Tool) (message.Message, error) {
	var lastErr error

	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		msg, err := r.inner.Complete(ctx, c, tools)
		if err == nil {
			return msg, nil
		}

		var rle *RateLimitError
		if !errors.As(err, &rle) {
			return message.Message{}, err
		}

		lastErr = err

		if attempt >= r.maxRetries {
			break
		}

		backoff := r.baseDelay * time.Duration(math.Pow(2, float64(attempt)))
		if rle.RetryAfter > backoff {
			backoff = rle.RetryAfter
		}

		if err := r.sleepFunc(ctx, r.jitter(backoff)); err != nil {
			return message.Message{}, err
		}
	}

	return message.Message{}, lastErr
}

// jitter scales d by a random factor in [0.75, 1.25).
func (r *RetryCompleter) jitter(d time.Duration) time.Duration {
	factor := 0.75 + r.randFunc()*0.5
	return time.Duration(float64(d) * factor)
}

// contextSleep sleeps for d or until ctx is cancelled.
func contextSleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
