package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestNewRateLimiterStartsFull verifies the bucket starts at full capacity.
func TestNewRateLimiterStartsFull(t *testing.T) {
	rl := NewRateLimiter(1.0, 10, nil)
	if tokens := rl.Tokens(); tokens < 9.9 {
		t.Errorf("expected ~10 tokens, got %.2f", tokens)
	}
}

// TestAllowConsumesToken verifies token consumption.
func TestAllowConsumesToken(t *testing.T) {
	rl := NewRateLimiter(0.01, 5, nil)

	for i := 0; i < 5; i++ {
		if !rl.Allow() {
			t.Fatalf("Allow() failed on attempt %d", i+1)
		}
	}

	if rl.Allow() {
		t.Error("Allow() should fail when bucket is empty")
	}
}

// TestWaitImmediate verifies Wait returns at once while tokens remain.
func TestWaitImmediate(t *testing.T) {
	rl := NewRateLimiter(1.0, 3, nil)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := rl.Wait(context.Background()); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("Wait() took %v with tokens available", elapsed)
	}
}

// TestWaitRefills verifies Wait blocks for roughly one refill interval.
func TestWaitRefills(t *testing.T) {
	rl := NewRateLimiter(20.0, 1, nil) // one token every 50ms
	_ = rl.Allow()

	start := time.Now()
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("Wait() returned after %v, expected to block for a refill", elapsed)
	}
}

// TestWaitContextCancelled verifies cancellation is honored while waiting.
func TestWaitContextCancelled(t *testing.T) {
	rl := NewRateLimiter(0.1, 1, nil) // 10s per token
	_ = rl.Allow()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want deadline exceeded", err)
	}
}
