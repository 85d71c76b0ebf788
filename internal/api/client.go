// Package api provides the HTTP client for a todolite remote store.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/todolite/todolite/internal/observability"
	"github.com/todolite/todolite/internal/output"
	"github.com/todolite/todolite/internal/version"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 250 * time.Millisecond
	maxJitter         = 100 * time.Millisecond
	defaultTimeout    = 30 * time.Second
)

// Breaker gates outgoing requests. *resilience.CircuitBreaker satisfies it.
type Breaker interface {
	Allow() (bool, error)
	RecordSuccess() error
	RecordFailure() error
}

// Client is an HTTP client for the todos resource.
type Client struct {
	baseURL    string
	httpClient *http.Client
	hooks      observability.Hooks
	breaker    Breaker
	log        logrus.FieldLogger
	maxRetries int
	baseDelay  time.Duration
	userAgent  string
}

// Response wraps an API response.
type Response struct {
	Data       json.RawMessage
	StatusCode int
	Headers    http.Header
	RequestID  string
}

// UnmarshalData unmarshals the response data into the given value.
// An undecodable body is reported as a remote error.
func (r *Response) UnmarshalData(v any) error {
	if err := json.Unmarshal(r.Data, v); err != nil {
		return &output.Error{
			Code:       output.CodeAPI,
			Message:    "invalid response body",
			HTTPStatus: r.StatusCode,
			Cause:      err,
		}
	}
	return nil
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHooks installs request lifecycle hooks.
func WithHooks(h observability.Hooks) Option {
	return func(c *Client) {
		if h != nil {
			c.hooks = h
		}
	}
}

// WithBreaker installs a circuit breaker.
func WithBreaker(b Breaker) Option {
	return func(c *Client) { c.breaker = b }
}

// WithLogger sets the logger used for request debug lines.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRetries sets how many attempts a GET gets. Values below 1 mean 1.
func WithRetries(n int) Option {
	return func(c *Client) {
		if n < 1 {
			n = 1
		}
		c.maxRetries = n
	}
}

// WithBackoff sets the base delay of the exponential backoff.
func WithBackoff(d time.Duration) Option {
	return func(c *Client) { c.baseDelay = d }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// NewClient creates a client for the remote rooted at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		hooks:      observability.NoopHooks{},
		log:        discard,
		maxRetries: defaultMaxRetries,
		baseDelay:  defaultBaseDelay,
		userAgent:  version.UserAgent(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the remote root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET request. GETs are retried on retryable failures.
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.doRequest(ctx, http.MethodGet, path, nil)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.doRequest(ctx, http.MethodPost, path, body)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.doRequest(ctx, http.MethodPut, path, body)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*Response, error) {
	url := c.buildURL(path)

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
	}

	// Writes are never replayed: a lost response may hide a committed change.
	attempts := 1
	if method == http.MethodGet {
		attempts = c.maxRetries
	}

	requestID := uuid.NewString()
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		resp, err := c.singleRequest(ctx, method, url, payload, attempt, requestID)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		apiErr, ok := err.(*output.Error)
		if !ok || !apiErr.Retryable || attempt == attempts {
			return nil, err
		}

		info := observability.RequestInfo{Method: method, URL: url, Attempt: attempt + 1, RequestID: requestID}
		c.hooks.OnRetry(ctx, info, attempt+1, err)

		delay := c.backoffDelay(attempt)
		c.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"attempt":    attempt,
			"delay":      delay,
		}).Debugf("retrying %s %s: %v", method, url, err)

		select {
		case <-ctx.Done():
			return nil, output.ErrNetwork(ctx.Err())
		case <-time.After(delay):
		}
	}

	return nil, lastErr
}

func (c *Client) singleRequest(ctx context.Context, method, url string, payload []byte, attempt int, requestID string) (*Response, error) {
	if c.breaker != nil {
		if allowed, _ := c.breaker.Allow(); !allowed {
			return nil, output.ErrCircuitOpen()
		}
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, output.ErrNetwork(err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	info := observability.RequestInfo{Method: method, URL: url, Attempt: attempt, RequestID: requestID}
	ctx = c.hooks.OnRequestStart(ctx, info)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		netErr := output.ErrNetwork(err)
		c.finish(ctx, info, observability.RequestResult{Duration: time.Since(start), Retryable: true, Error: netErr})
		return nil, netErr
	}
	defer resp.Body.Close()

	respBody, readErr := io.ReadAll(resp.Body)
	result := observability.RequestResult{StatusCode: resp.StatusCode, Duration: time.Since(start)}

	if readErr != nil {
		netErr := output.ErrNetwork(readErr)
		result.Error = netErr
		result.Retryable = true
		c.finish(ctx, info, result)
		return nil, netErr
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.finish(ctx, info, result)
		return &Response{
			Data:       respBody,
			StatusCode: resp.StatusCode,
			Headers:    resp.Header,
			RequestID:  requestID,
		}, nil
	}

	apiErr := statusError(resp, respBody, url)
	result.Error = apiErr
	result.Retryable = apiErr.Retryable
	c.finish(ctx, info, result)
	return nil, apiErr
}

// finish reports the attempt to hooks, the breaker and the debug log.
func (c *Client) finish(ctx context.Context, info observability.RequestInfo, result observability.RequestResult) {
	c.hooks.OnRequestEnd(ctx, info, result)

	if c.breaker != nil {
		if result.Error != nil && (result.StatusCode == 0 || result.StatusCode >= 500) {
			_ = c.breaker.RecordFailure()
		} else {
			_ = c.breaker.RecordSuccess()
		}
	}

	entry := c.log.WithFields(logrus.Fields{
		"request_id": info.RequestID,
		"method":     info.Method,
		"url":        info.URL,
		"attempt":    info.Attempt,
		"status":     result.StatusCode,
		"duration":   result.Duration,
	})
	if result.Error != nil {
		entry.WithError(result.Error).Debug("request failed")
		return
	}
	entry.Debug("request completed")
}

// statusError maps a non-2xx response onto the error taxonomy.
func statusError(resp *http.Response, body []byte, url string) *output.Error {
	switch resp.StatusCode {
	case http.StatusNotFound:
		return output.ErrNotFound("Todo", url)

	case http.StatusTooManyRequests:
		return output.ErrRateLimit(parseRetryAfter(resp.Header.Get("Retry-After")))

	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return &output.Error{
			Code:       output.CodeAPI,
			Message:    fmt.Sprintf("Gateway error (%d)", resp.StatusCode),
			HTTPStatus: resp.StatusCode,
			Retryable:  true,
		}
	}

	var apiErr struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &apiErr) == nil {
		msg := apiErr.Error
		if msg == "" {
			msg = apiErr.Message
		}
		if msg != "" {
			return output.ErrAPI(resp.StatusCode, msg)
		}
	}
	return output.ErrAPI(resp.StatusCode, fmt.Sprintf("Request failed (HTTP %d)", resp.StatusCode))
}

func (c *Client) buildURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) backoffDelay(attempt int) time.Duration {
	// Exponential backoff: base * 2^(attempt-1)
	delay := c.baseDelay * time.Duration(1<<(attempt-1))

	jitter := time.Duration(rand.Int63n(int64(maxJitter))) //nolint:gosec // G404: Jitter doesn't need crypto rand

	return delay + jitter
}

// parseRetryAfter parses the Retry-After header value.
func parseRetryAfter(header string) int {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return seconds
	}
	return 0
}
