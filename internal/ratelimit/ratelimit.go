package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vagabot/vagabot/internal/model"
)

// DestinationLimiter enforces a minimum gap between messages to the same
// destination. Chat providers throttle bots that post in bursts.
type DestinationLimiter struct {
	mu       sync.Mutex
	lastSend map[string]time.Time // key: destination
	minGap   time.Duration
}

// NewDestinationLimiter creates a limiter that keeps minGap between
// consecutive sends to one destination.
func NewDestinationLimiter(minGap time.Duration) *DestinationLimiter {
	return &DestinationLimiter{
		lastSend: make(map[string]time.Time),
		minGap:   minGap,
	}
}

// Wait blocks until destination may receive another message.
// Returns an error if the context is cancelled while waiting.
func (l *DestinationLimiter) Wait(ctx context.Context, destination string) error {
	l.mu.Lock()
	last, seen := l.lastSend[destination]
	now := time.Now()

	if !seen || now.Sub(last) >= l.minGap {
		l.lastSend[destination] = now
		l.mu.Unlock()
		return nil
	}

	remaining := l.minGap - now.Sub(last)
	// Reserve the slot so a concurrent caller queues behind this one.
	l.lastSend[destination] = now.Add(remaining)
	l.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", destination, ctx.Err())
	case <-time.After(remaining):
	}
	return nil
}

// Sink is a decorator that paces sends through a DestinationLimiter before
// delegating to the wrapped sink.
type Sink struct {
	inner   model.Sink
	limiter *DestinationLimiter
}

// NewSink wraps inner with per-destination pacing.
func NewSink(inner model.Sink, limiter *DestinationLimiter) *Sink {
	return &Sink{inner: inner, limiter: limiter}
}

// Send waits for the limiter, then delegates.
func (s *Sink) Send(ctx context.Context, destination, message string) error {
	if err := s.limiter.Wait(ctx, destination); err != nil {
		return err
	}
	return s.inner.Send(ctx, destination, message)
}
