// Package ratelimit throttles outgoing platform API calls.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/constants"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/logging"
)

// warnThreshold is the reservation delay above which a wait is logged.
const warnThreshold = 2 * time.Second

// RateLimiter is a token bucket shared by every request a client makes.
// It allows bursts up to the burst size, then refills at the configured rate.
type RateLimiter struct {
	limiter      *rate.Limiter
	logger       *logging.Logger
	lastWarnTime time.Time
	mu           sync.Mutex
}

// NewRateLimiter creates a limiter refilling tokensPerSecond up to burstSize.
func NewRateLimiter(tokensPerSecond float64, burstSize int, logger *logging.Logger) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(tokensPerSecond), burstSize),
		logger:  logging.OrNop(logger),
	}
}

// NewAPIRateLimiter creates the limiter used by the platform API client.
func NewAPIRateLimiter(logger *logging.Logger) *RateLimiter {
	return NewRateLimiter(constants.APIRatePerSec, constants.APIRateBurst, logger)
}

// Wait blocks until a token is available or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.limiter.Allow() {
		return nil
	}

	r := rl.limiter.Reserve()
	delay := r.Delay()
	if delay > warnThreshold {
		rl.mu.Lock()
		// Only warn every 10 seconds to avoid spam
		if time.Since(rl.lastWarnTime) > 10*time.Second {
			rl.logger.Warn().Dur("wait", delay).Msg("Rate limited: waiting for API capacity")
			rl.lastWarnTime = time.Now()
		}
		rl.mu.Unlock()
	}
	if delay == 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		r.Cancel()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Allow reports whether a token is available now, consuming it if so.
func (rl *RateLimiter) Allow() bool {
	return rl.limiter.Allow()
}

// Tokens returns the number of tokens currently available.
func (rl *RateLimiter) Tokens() float64 {
	return rl.limiter.Tokens()
}
