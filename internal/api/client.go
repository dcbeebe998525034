// Package api is the client for the Nabotix platform REST API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/config"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/constants"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/http"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/logging"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/models"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/ratelimit"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/version"
)

// retryLogger implements the retryablehttp.LeveledLogger interface
type retryLogger struct {
	logger *logging.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	// Only log errors and warnings, not all info
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}

// Client represents the platform API client
type Client struct {
	httpClient *nethttp.Client
	baseURL    string
	limiter    *ratelimit.RateLimiter
	logger     *logging.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates a new API client
func NewClient(cfg *config.Config, logger *logging.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrEmptyBaseURL
	}
	logger = logging.OrNop(logger).Named("api")

	// Configure HTTP client with proxy support
	httpClient, err := http.ConfigureHTTPClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	// Wrap with retry logic
	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httpClient
	retryClient.RetryMax = constants.APIRetryMax
	retryClient.RetryWaitMin = constants.APIRetryWaitMin
	retryClient.RetryWaitMax = constants.APIRetryWaitMax
	retryClient.Logger = &retryLogger{logger: logger}

	return &Client{
		httpClient: retryClient.StandardClient(),
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		limiter:    ratelimit.NewAPIRateLimiter(logger),
		logger:     logger,
		token:      cfg.Token,
	}, nil
}

// SetToken replaces the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// BaseURL returns the platform root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs an HTTP request with authentication and rate limiting
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*nethttp.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter cancelled: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonData)
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := nethttp.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("User-Agent", version.UserAgent())

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().
			Err(err).
			Str("method", method).
			Str("path", path).
			Str("request_id", requestID).
			Str("class", http.ErrorTypeName(http.ClassifyError(err))).
			Msg("API call failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode == nethttp.StatusTooManyRequests {
		c.logger.Warn().
			Str("method", method).
			Str("path", path).
			Str("retry_after", resp.Header.Get("Retry-After")).
			Msg("Throttled by platform")
	}

	return resp, nil
}

// call performs a request and decodes the envelope's data into out.
// out may be nil when the caller only cares about success.
func call[T any](ctx context.Context, c *Client, method, path string, query url.Values, body interface{}, out *T) error {
	resp, err := c.doRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env models.Envelope[T]
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(raw))
		if decodeErr == nil && env.Message != "" {
			msg = env.Message
		}
		return &Error{StatusCode: resp.StatusCode, Message: msg, Path: path}
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode %s response: %w", path, decodeErr)
	}
	if !env.Success {
		return &Error{StatusCode: resp.StatusCode, Message: env.Message, Path: path}
	}

	if out != nil {
		*out = env.Data
	}
	return nil
}

// pageQuery builds the query string shared by every paged listing.
func pageQuery(search string, page, size int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	if s := strings.TrimSpace(search); s != "" {
		q.Set("searchTerm", s)
	}
	return q
}

func listPage[T any](ctx context.Context, c *Client, path string, query url.Values) (*models.Page[T], error) {
	var page models.Page[T]
	if err := call(ctx, c, nethttp.MethodGet, path, query, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
