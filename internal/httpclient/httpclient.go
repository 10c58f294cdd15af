package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/spacetravelling/internal/logger"
	"github.com/spacetravelling/internal/trace"
	"golang.org/x/time/rate"
)

// Config holds the shared outbound HTTP settings.
type Config struct {
	Timeout time.Duration
	// RequestsPerSecond caps outbound calls. Zero or less disables the limit.
	RequestsPerSecond float64
	Burst             int
}

// loggingRoundTripper logs every outbound call and forwards the inbound request id.
type loggingRoundTripper struct {
	inner http.RoundTripper
}

func (l *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	requestID := trace.RequestIDFromContext(req.Context())
	if requestID != "" {
		req.Header.Set(trace.HeaderRequestID, requestID)
	}

	resp, err := l.inner.RoundTrip(req)
	duration := time.Since(start)
	if err != nil {
		logger.ErrorWithFields("httpclient request failed", logger.Fields{
			"method":     req.Method,
			"url":        redactURL(req.URL),
			"duration":   duration.String(),
			"request_id": requestID,
			"error":      err.Error(),
		})
		return nil, err
	}

	logger.DebugWithFields("httpclient request success", logger.Fields{
		"method":     req.Method,
		"url":        redactURL(req.URL),
		"status":     resp.StatusCode,
		"duration":   duration.String(),
		"request_id": requestID,
	})
	return resp, nil
}

// redactURL hides the CMS access token from logs.
func redactURL(u *url.URL) string {
	if u == nil {
		return ""
	}
	q := u.Query()
	if q.Get("access_token") == "" {
		return u.String()
	}
	q.Set("access_token", "xxx")
	clone := *u
	clone.RawQuery = q.Encode()
	return clone.String()
}

// BaseClient pairs an http.Client with a base URL and an outbound rate limiter.
type BaseClient struct {
	HTTPClient *http.Client
	BaseURL    string
	limiter    *rate.Limiter
}

// NewBaseClient builds a BaseClient for baseURL using cfg.
func NewBaseClient(baseURL string, cfg Config) *BaseClient {
	return &BaseClient{
		HTTPClient: New(cfg),
		BaseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    newLimiter(cfg),
	}
}

// NewBaseClientWithClient wraps an existing http.Client. A nil client falls back to the default one.
func NewBaseClientWithClient(httpClient *http.Client, baseURL string, cfg Config) *BaseClient {
	if httpClient == nil {
		httpClient = New(cfg)
	}
	return &BaseClient{
		HTTPClient: httpClient,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    newLimiter(cfg),
	}
}

func newLimiter(cfg Config) *rate.Limiter {
	if cfg.RequestsPerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
}

// NewRequest builds a request for relPath under the base URL.
// Query parameters must be passed through query; relPath must not contain "?".
func (c *BaseClient) NewRequest(ctx context.Context, method, relPath string, query url.Values, body io.Reader) (*http.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if strings.Contains(relPath, "?") {
		return nil, fmt.Errorf("httpclient: relPath must not contain query string (use query parameter instead): %s", relPath)
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil, err
	}
	if relPath != "" {
		base.Path = path.Join(base.Path, relPath)
	}
	if query != nil {
		base.RawQuery = query.Encode()
	}
	return http.NewRequestWithContext(ctx, method, base.String(), body)
}

// Do waits for the rate limiter and executes req.
func (c *BaseClient) Do(req *http.Request) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, fmt.Errorf("httpclient: rate limit wait: %w", err)
		}
	}
	return c.HTTPClient.Do(req)
}

// New builds an http.Client with the logging transport. A zero Timeout means 10 seconds.
func New(cfg Config) *http.Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &loggingRoundTripper{inner: http.DefaultTransport},
	}
}
