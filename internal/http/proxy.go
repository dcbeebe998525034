// Package http builds the HTTP client used for platform API calls.
package http

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	nethttp "net/http"
	"net/url"
	"strings"

	ntlmssp "github.com/Azure/go-ntlmssp"
	"golang.org/x/net/http/httpproxy"
	"golang.org/x/net/http2"

	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/config"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/constants"
	"github.com/StanleyChan-code/share-platform-nabotix-sub002/internal/logging"
)

// ConfigureHTTPClient configures an HTTP client with proxy settings from cfg.
//
// Proxy modes:
//   - "no-proxy" / "": direct connections, HTTP/2 enabled
//   - "system": HTTP_PROXY / HTTPS_PROXY / NO_PROXY from the environment
//   - "basic": explicit proxy with optional user/password
//   - "ntlm": explicit proxy wrapped in an NTLM negotiator
//
// A basic or ntlm mode without a host falls back to direct connections so a
// half-written config does not lock the user out of `config init`.
func ConfigureHTTPClient(cfg *config.Config, logger *logging.Logger) (*nethttp.Client, error) {
	logger = logging.OrNop(logger)

	transport := &nethttp.Transport{
		DialContext: (&net.Dialer{
			Timeout:   constants.HTTPDialTimeout,
			KeepAlive: constants.HTTPDialKeepAlive,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		MaxIdleConns:          32,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       constants.HTTPIdleConnTimeout,
		TLSHandshakeTimeout:   constants.HTTPTLSHandshakeTimeout,
		ExpectContinueTimeout: constants.HTTPExpectContinueTimeout,
	}

	newClient := func(rt nethttp.RoundTripper) *nethttp.Client {
		return &nethttp.Client{Transport: rt, Timeout: constants.HTTPClientTimeout}
	}

	switch strings.ToLower(cfg.ProxyMode) {
	case "no-proxy", "":
		transport.Proxy = nil
		// Proxies often mishandle HTTP/2 streams, so only direct connections get it
		transport.ForceAttemptHTTP2 = true
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Debug().Err(err).Msg("HTTP/2 not configured")
		}
		return newClient(transport), nil

	case "system":
		transport.Proxy = nethttp.ProxyFromEnvironment
		return newClient(transport), nil

	case "ntlm":
		if cfg.ProxyHost == "" {
			logger.Warn().Msg("Proxy mode is NTLM but host is missing - falling back to no-proxy mode")
			return newClient(transport), nil
		}

		transport.Proxy = proxyFuncWithBypass(buildProxyURL(cfg), cfg.NoProxy, logger)
		client := newClient(ntlmssp.Negotiator{RoundTripper: transport})

		if cfg.ProxyWarmup && cfg.ProxyUser != "" && cfg.ProxyPassword != "" {
			if err := warmupProxy(client, cfg); err != nil {
				return nil, fmt.Errorf("proxy warmup failed: %w", err)
			}
		}
		return client, nil

	case "basic":
		if cfg.ProxyHost == "" {
			logger.Warn().Msg("Proxy mode is basic but host is missing - falling back to no-proxy mode")
			return newClient(transport), nil
		}

		transport.Proxy = proxyFuncWithBypass(buildProxyURL(cfg), cfg.NoProxy, logger)
		if cfg.ProxyUser != "" && cfg.ProxyPassword == "" {
			logger.Warn().Msg("Proxy user configured but password missing - proxy auth disabled until password is set")
		}

		client := newClient(transport)
		if cfg.ProxyWarmup && cfg.ProxyUser != "" && cfg.ProxyPassword != "" {
			if err := warmupProxy(client, cfg); err != nil {
				return nil, fmt.Errorf("proxy warmup failed: %w", err)
			}
		}
		return client, nil

	default:
		return nil, fmt.Errorf("unsupported proxy mode: %s", cfg.ProxyMode)
	}
}

// buildProxyURL constructs a proxy URL from config
func buildProxyURL(cfg *config.Config) *url.URL {
	port := cfg.ProxyPort
	if port == 0 {
		port = 8080
	}

	proxyURL := &url.URL{
		Scheme: "http",
		Host:   net.JoinHostPort(cfg.ProxyHost, fmt.Sprintf("%d", port)),
	}

	// Empty password in URL can cause auth failures with some proxies
	if cfg.ProxyUser != "" && cfg.ProxyPassword != "" {
		proxyURL.User = url.UserPassword(cfg.ProxyUser, cfg.ProxyPassword)
	}

	return proxyURL
}

// warmupProxy performs one lightweight request to establish the proxy connection.
func warmupProxy(client *nethttp.Client, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), constants.ProxyWarmupTimeout)
	defer cancel()

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, strings.TrimSuffix(cfg.BaseURL, "/")+"/api/health", nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("warmup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("warmup request returned server error: %d", resp.StatusCode)
	}
	return nil
}

// proxyFuncWithBypass returns a proxy function that respects the NoProxy bypass list.
// With an empty noProxy it behaves like nethttp.ProxyURL; otherwise hosts and CIDRs
// are matched by golang.org/x/net/http/httpproxy.
func proxyFuncWithBypass(proxyURL *url.URL, noProxy string, logger *logging.Logger) func(*nethttp.Request) (*url.URL, error) {
	if noProxy == "" {
		return nethttp.ProxyURL(proxyURL)
	}
	logger = logging.OrNop(logger)

	cfg := httpproxy.Config{
		HTTPProxy:  proxyURL.String(),
		HTTPSProxy: proxyURL.String(),
		NoProxy:    noProxy,
	}
	proxyFunc := cfg.ProxyFunc()
	return func(req *nethttp.Request) (*url.URL, error) {
		result, err := proxyFunc(req.URL)
		if result == nil {
			logger.Debug().Str("host", req.URL.Host).Msg("Proxy bypass (direct connection)")
		} else {
			logger.Debug().Str("host", req.URL.Host).Str("proxy", result.Host).Msg("Proxied")
		}
		return result, err
	}
}

// NeedsProxyPassword reports whether the proxy needs a password that has not been provided.
// The CLI uses it to decide whether to prompt.
func NeedsProxyPassword(cfg *config.Config) bool {
	mode := strings.ToLower(cfg.ProxyMode)
	if mode != "basic" && mode != "ntlm" {
		return false
	}
	return cfg.ProxyUser != "" && cfg.ProxyPassword == ""
}
