package constants

import (
	"time"
)

// Pending-count polling
const (
	// PendingPollInterval - how often the pending-count controller refreshes all counters (10 minutes)
	// Every process runs its own poller; there is no cross-process leader election.
	PendingPollInterval = 10 * time.Minute

	// PendingInitialDelay - delay before the opportunistic refresh after the controller starts
	PendingInitialDelay = 1 * time.Second
)

// List loading
const (
	// DefaultPageSize - page size used by list engines when none is configured
	DefaultPageSize = 10

	// MaxPageSize - upper bound accepted by the platform for a single page
	MaxPageSize = 100

	// SentinelRootMargin - leading margin (in rows) within which a trailing sentinel counts as visible
	SentinelRootMargin = 3

	// SearchDebounceDelay - settling window for search inputs
	SearchDebounceDelay = 500 * time.Millisecond

	// MaxSearchQueryLength - longest search query accepted by the list views
	MaxSearchQueryLength = 100
)

// Event bus configuration
const (
	// EventBusDefaultBuffer - default buffer size for event channels
	EventBusDefaultBuffer = 256

	// EventBusMaxBuffer - maximum buffer size for event channels
	EventBusMaxBuffer = 4096
)

// HTTP client configuration
const (
	// HTTPDialTimeout - TCP connect timeout
	HTTPDialTimeout = 30 * time.Second

	// HTTPDialKeepAlive - TCP keep-alive interval
	HTTPDialKeepAlive = 30 * time.Second

	// HTTPIdleConnTimeout - how long idle connections stay in the pool
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - TLS handshake timeout
	HTTPTLSHandshakeTimeout = 15 * time.Second

	// HTTPExpectContinueTimeout - wait for 100-continue
	HTTPExpectContinueTimeout = 1 * time.Second

	// HTTPClientTimeout - overall timeout for a single API request including retries
	HTTPClientTimeout = 60 * time.Second

	// ProxyWarmupTimeout - timeout for the optional proxy warmup request
	ProxyWarmupTimeout = 15 * time.Second
)

// API retry and rate limiting
const (
	// APIRetryMax - retries performed by the transport for retryable failures
	APIRetryMax = 3

	// APIRetryWaitMin - minimum backoff between transport retries
	APIRetryWaitMin = 500 * time.Millisecond

	// APIRetryWaitMax - maximum backoff between transport retries
	APIRetryWaitMax = 5 * time.Second

	// APIRatePerSec - sustained client-side request rate
	APIRatePerSec = 5.0

	// APIRateBurst - burst size for the client-side limiter
	APIRateBurst = 20
)

// Notifications
const (
	// NotifyTitle - title used by desktop notifications
	NotifyTitle = "Nabotix"
)
