package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWait_SameDestination_EnforcesGap(t *testing.T) {
	limiter := NewDestinationLimiter(100 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx, "telegram:-1"))

	start := time.Now()
	require.NoError(t, limiter.Wait(ctx, "telegram:-1"))

	// Allow 20ms for timer jitter.
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestWait_DifferentDestinations_NoCrossBlocking(t *testing.T) {
	limiter := NewDestinationLimiter(200 * time.Millisecond)
	ctx := context.Background()

	require.NoError(t, limiter.Wait(ctx, "telegram:-1"))

	start := time.Now()
	require.NoError(t, limiter.Wait(ctx, "telegram:-2"))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestWait_ContextCancellation(t *testing.T) {
	limiter := NewDestinationLimiter(5 * time.Second)
	require.NoError(t, limiter.Wait(context.Background(), "telegram:-1"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx, "telegram:-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

type countingSink struct {
	sent []time.Time
	err  error
}

func (c *countingSink) Send(_ context.Context, _, _ string) error {
	c.sent = append(c.sent, time.Now())
	return c.err
}

func TestSink_PacesAndDelegates(t *testing.T) {
	inner := &countingSink{}
	s := NewSink(inner, NewDestinationLimiter(60*time.Millisecond))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Send(ctx, "telegram:-1", "msg"))
	}
	require.Len(t, inner.sent, 3)
	assert.GreaterOrEqual(t, inner.sent[2].Sub(inner.sent[0]), 100*time.Millisecond)
}

func TestSink_PropagatesInnerError(t *testing.T) {
	inner := &countingSink{err: errors.New("delivery failed")}
	s := NewSink(inner, NewDestinationLimiter(time.Millisecond))

	err := s.Send(context.Background(), "telegram:-1", "msg")
	assert.EqualError(t, err, "delivery failed")
}
