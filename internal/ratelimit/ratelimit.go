// Package ratelimit implements token-bucket rate limiting guarding the
// session registry from request floods. The bucket algorithm is unchanged
// from the project this was adapted from; only the grouping changed, from
// per-external-API-endpoint categories to per-registry-operation
// categories relevant to a backtest server.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenBucket is a continuous-refill rate limiter. Callers block in Wait()
// until a token is available or the context is cancelled.
type TokenBucket struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64
	lastTime time.Time
}

// NewTokenBucket creates a bucket with the given burst capacity and
// steady-state refill rate in tokens per second.
func NewTokenBucket(capacity, ratePerSecond float64) *TokenBucket {
	return &TokenBucket{
		tokens:   capacity,
		capacity: capacity,
		rate:     ratePerSecond,
		lastTime: time.Now(),
	}
}

// Wait blocks until a token is available or ctx is cancelled.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		tb.mu.Lock()
		now := time.Now()
		elapsed := now.Sub(tb.lastTime).Seconds()
		tb.tokens += elapsed * tb.rate
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastTime = now

		if tb.tokens >= 1 {
			tb.tokens--
			tb.mu.Unlock()
			return nil
		}

		wait := time.Duration((1 - tb.tokens) / tb.rate * float64(time.Second))
		tb.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// Limiter groups token buckets by registry operation category. Tick and
// mutating requests (insert/delete order) guard the same mutex the
// read-only routes share, so they get their own, tighter bucket; plain
// reads (fetch_quotes, info) get a looser one.
type Limiter struct {
	Tick   *TokenBucket
	Mutate *TokenBucket
	Read   *TokenBucket

	// waitTimeout bounds how long a caller may sit in a bucket before the
	// request is shed. Zero means wait until the request context is done.
	waitTimeout time.Duration
}

// NewLimiter builds a Limiter from the given capacity/rate pairs.
func NewLimiter(tickCap, tickRate, mutateCap, mutateRate, readCap, readRate float64, waitTimeout time.Duration) *Limiter {
	return &Limiter{
		Tick:        NewTokenBucket(tickCap, tickRate),
		Mutate:      NewTokenBucket(mutateCap, mutateRate),
		Read:        NewTokenBucket(readCap, readRate),
		waitTimeout: waitTimeout,
	}
}

// WaitTick acquires a token from the tick bucket.
func (l *Limiter) WaitTick(ctx context.Context) error { return l.wait(ctx, l.Tick) }

// WaitMutate acquires a token from the mutate bucket.
func (l *Limiter) WaitMutate(ctx context.Context) error { return l.wait(ctx, l.Mutate) }

// WaitRead acquires a token from the read bucket.
func (l *Limiter) WaitRead(ctx context.Context) error { return l.wait(ctx, l.Read) }

func (l *Limiter) wait(ctx context.Context, tb *TokenBucket) error {
	if l.waitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.waitTimeout)
		defer cancel()
	}
	return tb.Wait(ctx)
}
