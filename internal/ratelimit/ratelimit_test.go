package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWaitConsumesAvailableTokenImmediately(t *testing.T) {
	tb := NewTokenBucket(1, 1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	start := time.Now()
	if err := tb.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if time.Since(start) > 50*time.Millisecond {
		t.Errorf("Wait() took %v, want near-instant with a full bucket", time.Since(start))
	}
}

func TestWaitBlocksUntilRefill(t *testing.T) {
	tb := NewTokenBucket(1, 10) // 1 burst, refills at 10/sec -> ~100ms per token
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	tb.Wait(ctx) // drains the single token

	start := time.Now()
	if err := tb.Wait(ctx); err != nil {
		t.Fatalf("second Wait() error = %v", err)
	}
	if time.Since(start) < 50*time.Millisecond {
		t.Errorf("second Wait() took %v, want a refill delay", time.Since(start))
	}
}

func TestLimiterWaitTimeoutShedsStarvedCallers(t *testing.T) {
	l := NewLimiter(1, 0.01, 1, 0.01, 1, 0.01, 20*time.Millisecond)
	l.WaitRead(context.Background()) // drains the read bucket

	start := time.Now()
	if err := l.WaitRead(context.Background()); err == nil {
		t.Fatal("WaitRead() error = nil, want timeout once the bucket is drained")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Errorf("WaitRead() took %v, want return near the 20ms wait timeout", time.Since(start))
	}
}

func TestWaitRespectsContextCancellation(t *testing.T) {
	tb := NewTokenBucket(1, 0.01) // effectively never refills within the test
	tb.Wait(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := tb.Wait(ctx); err == nil {
		t.Fatal("Wait() error = nil, want context deadline exceeded")
	}
}
