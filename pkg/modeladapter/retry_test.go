package modeladapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avelez/sleuth/pkg/chats/chat"
	"github.com/avelez/sleuth/pkg/chats/message"
	"github.com/avelez/sleuth/pkg/chats/role"
	"github.com/avelez/sleuth/pkg/tools/toolbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedCompleter returns canned replies/errors in order.
type scriptedCompleter struct {
	replies []message.Message
	errs    []error
	calls   int
}

func (s *scriptedCompleter) Complete(_ context.Context, _ *chat.Chat, _ []toolbox.Tool) (message.Message, error) {
	i := s.calls
	s.calls++

	var reply message.Message
	if i < len(s.replies) {
		reply = s.replies[i]
	}
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return reply, err
}

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func TestRetrySucceedsAfterRateLimit(t *testing.T) {
	inner := &scriptedCompleter{
		replies: []message.Message{{}, message.NewText("m", role.Assistant, "done")},
		errs:    []error{&RateLimitError{}, nil},
	}

	r := NewRetryCompleter(inner, RetryOpts{MaxRetries: 3, BaseDelay: time.Millisecond})
	r.SetSleepFunc(noSleep)

	reply, err := r.Complete(context.Background(), chat.New(), nil)

	require.NoError(t, err)
	assert.Equal(t, "done", reply.Text())
	assert.Equal(t, 2, inner.calls)
}

func TestRetryExhausted(t *testing.T) {
	inner := &scriptedCompleter{
		errs: []error{&RateLimitError{}, &RateLimitError{}, &RateLimitError{}},
	}

	r := NewRetryCompleter(inner, RetryOpts{MaxRetries: 2, BaseDelay: time.Millisecond})
	r.SetSleepFunc(noSleep)

	_, err := r.Complete(context.Background(), chat.New(), nil)

	var rle *RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, 3, inner.calls) // initial attempt + 2 retries
}

func TestRetryPassesThroughOtherErrors(t *testing.T) {
	boom := errors.New("boom")
	inner := &scriptedCompleter{errs: []error{boom}}

	r := NewRetryCompleter(inner, RetryOpts{})
	r.SetSleepFunc(noSleep)

	_, err := r.Complete(context.Background(), chat.New(), nil)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, inner.calls)
}

func TestRetryHonorsRetryAfter(t *testing.T) {
	inner := &scriptedCompleter{
		replies: []message.Message{{}, {}},
		errs:    []error{&RateLimitError{RetryAfter: time.Minute}, nil},
	}

	var slept time.Duration
	r := NewRetryCompleter(inner, RetryOpts{MaxRetries: 1, BaseDelay: time.Millisecond})
	r.SetSleepFunc(func(_ context.Context, d time.Duration) error {
		slept = d
		return nil
	})
	r.SetRandFunc(func() float64 { return 0.5 }) // jitter factor 1.0

	_, err := r.Complete(context.Background(), chat.New(), nil)

	require.NoError(t, err)
	assert.Equal(t, time.Minute, slept)
}

func TestRetrySleepCancelled(t *testing.T) {
	inner := &scriptedCompleter{errs: []error{&RateLimitError{}}}

	r := NewRetryCompleter(inner, RetryOpts{MaxRetries: 1})
	r.SetSleepFunc(func(_ context.Context, _ time.Duration) error {
		return context.Canceled
	})

	_, err := r.Complete(context.Background(), chat.New(), nil)

	assert.ErrorIs(t, err, context.Canceled)
}
