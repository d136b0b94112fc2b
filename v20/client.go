// Package v20 is a client for the OANDA v20 REST API.
package v20

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Environment selects the OANDA trading environment
type Environment struct {
	APIURL    string
	StreamURL string
}

var (
	// Practice is the fxTrade Practice (demo) environment
	Practice = Environment{
		APIURL:    "https://api-fxpractice.oanda.com",
		StreamURL: "https://stream-fxpractice.oanda.com",
	}
	// Live is the fxTrade environment
	Live = Environment{
		APIURL:    "https://api-fxtrade.oanda.com",
		StreamURL: "https://stream-fxtrade.oanda.com",
	}
)

const (
	apiVersion         = "/v3"
	defaultMaxRetries  = 3
	defaultRetryWait   = 250 * time.Millisecond
	defaultHTTPTimeout = 30 * time.Second
)

// Client is a thin wrapper around the v20 REST endpoints. It is safe for
// concurrent use.
type Client struct {
	baseURL   string
	streamURL string
	token     string
	http      *http.Client
	stream    *http.Client
	logger    *zap.Logger
	inFlight  *semaphore.Weighted

	maxRetries uint64
	retryWait  time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithToken sets the personal access token sent as a bearer token
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithEnvironment points the client at Practice or Live
func WithEnvironment(env Environment) Option {
	return func(c *Client) {
		c.baseURL = env.APIURL
		c.streamURL = env.StreamURL
	}
}

// WithBaseURL overrides the REST host
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithStreamURL overrides the streaming host
func WithStreamURL(u string) Option {
	return func(c *Client) { c.streamURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the HTTP client used for REST requests
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithStreamHTTPClient replaces the HTTP client used for streaming requests.
// It should carry no Timeout, which would cut long-lived streams.
func WithStreamHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.stream = h }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMaxRetries limits retries of idempotent requests; 0 disables retrying
func WithMaxRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithRetryWait sets the first wait between retries
func WithRetryWait(d time.Duration) Option {
	return func(c *Client) { c.retryWait = d }
}

// WithMaxInFlight caps concurrent REST requests; 0 means unlimited
func WithMaxInFlight(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.inFlight = semaphore.NewWeighted(n)
		} else {
			c.inFlight = nil
		}
	}
}

// New returns a client for the Practice environment unless configured otherwise.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    Practice.APIURL,
		streamURL:  Practice.StreamURL,
		http:       &http.Client{Timeout: defaultHTTPTimeout},
		stream:     &http.Client{},
		logger:     zap.NewNop(),
		maxRetries: defaultMaxRetries,
		retryWait:  defaultRetryWait,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode   int    `json:"-"`
	ErrorCode    string `json:"errorCode,omitempty"`
	ErrorMessage string `json:"errorMessage"`
	// Body is the raw response, which may carry reject transactions.
	Body []byte `json:"-"`
}

func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("v20: %d %s: %s", e.StatusCode, e.ErrorCode, e.ErrorMessage)
	}
	return fmt.Sprintf("v20: %d: %s", e.StatusCode, e.ErrorMessage)
}

// Temporary reports whether retrying the request may succeed
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: body}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.ErrorMessage == "" {
		apiErr.ErrorMessage = strings.TrimSpace(string(body))
		if apiErr.ErrorMessage == "" {
			apiErr.ErrorMessage = http.StatusText(status)
		}
	}
	return apiErr
}

// do sends a request to the REST host and decodes a 2xx response into v.
// Idempotent requests are retried on network errors, 429 and 5xx.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, v any) error {
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(withDefaults(body)); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	endpoint := c.baseURL + apiVersion + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	if c.inFlight != nil {
		if err := c.inFlight.Acquire(ctx, 1); err != nil {
			return fmt.Errorf("failed to acquire request slot: %w", err)
		}
		defer c.inFlight.Release(1)
	}

	attempt := func() error {
		return c.send(ctx, method, endpoint, payload, v)
	}

	if !idempotent(method) || c.maxRetries == 0 {
		return attempt()
	}

	operation := func() error {
		err := attempt()
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("retrying v20 request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	return backoff.RetryNotify(operation, backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.maxRetries), ctx), notify)
}

func (c *Client) send(ctx context.Context, method, endpoint string, payload []byte, v any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("v20 request",
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}

	if v != nil && len(data) > 0 {
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Datetime-Format", "RFC3339")
}

func (c *Client) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.retryWait
	b.MaxElapsedTime = 0
	return b
}

func idempotent(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	}
	return false
}

func retryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	var urlErr *url.Error
	return errors.As(err, &netErr) || errors.As(err, &urlErr)
}

func accountPath(accountID AccountID, parts ...string) string {
	return "/accounts/" + url.PathEscape(string(accountID)) + strings.Join(parts, "")
}
