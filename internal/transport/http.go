// Package transport dispatches built request descriptors over HTTP.
package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"resty.dev/v3"

	"nakula/internal/circuitbreaker"
	"nakula/internal/ratelimit"
	"nakula/pkg/core"
)

const formContentType = "application/x-www-form-urlencoded"

// Config holds transport settings. Retries are deliberately absent: failed
// requests surface to the caller, who owns any retry policy.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client executes request descriptors against one base URL. It implements
// core.Doer.
type Client struct {
	client  *resty.Client
	limiter *ratelimit.Limiter
	breaker *circuitbreaker.Breaker
	logger  zerolog.Logger
}

// Option configures optional transport behavior.
type Option func(*Client)

// WithLogger sets the transport logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit paces dispatch to the given quota.
func WithRateLimit(requests int, period time.Duration) Option {
	return func(c *Client) {
		c.limiter = ratelimit.New(requests, period)
	}
}

// WithCircuitBreaker adds a fail-fast gate in front of dispatch.
func WithCircuitBreaker(config circuitbreaker.Config) Option {
	return func(c *Client) {
		c.breaker = circuitbreaker.New(config)
	}
}

// NewClient creates a transport bound to config.BaseURL.
func NewClient(config Config, opts ...Option) *Client {
	client := resty.New()
	client.SetBaseURL(config.BaseURL)
	if config.Timeout > 0 {
		client.SetTimeout(config.Timeout)
	}
	client.SetRetryCount(0)

	c := &Client{
		client: client,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close releases the underlying HTTP client.
func (c *Client) Close() error {
	return c.client.Close()
}

// Do dispatches one request descriptor and wraps the outcome in a single-use
// response handle. The rendered query string is appended to the URL verbatim
// rather than through resty's query-param API, which would re-encode and
// reorder the parameters and break the signature.
func (c *Client) Do(ctx context.Context, req *core.Request) *core.Response {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return core.FailedResponse(&core.TransportError{Op: "ratelimit", Err: err})
		}
	}
	if c.breaker != nil && !c.breaker.Allow() {
		return core.FailedResponse(&core.TransportError{Op: "dispatch", Err: circuitbreaker.ErrOpen})
	}

	url := req.Path
	if req.Query != "" {
		url += "?" + req.Query
	}

	r := c.client.R().SetContext(ctx)
	for k, v := range req.Headers {
		r.SetHeader(k, v)
	}
	if req.Body != "" {
		r.SetHeader("Content-Type", formContentType)
		r.SetBody(req.Body)
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Msg("http request")

	resp, err := c.execute(r, req.Method, url)

	if c.breaker != nil {
		// A 5xx counts as a failure: the upstream is in trouble. A 4xx does
		// not; it means the upstream is healthy and rejecting this request
		// specifically.
		c.breaker.Record(err == nil && resp.StatusCode() < http.StatusInternalServerError)
	}

	if err != nil {
		c.logger.Error().Err(err).
			Str("method", req.Method).
			Str("path", req.Path).
			Msg("http request failed")
		return core.FailedResponse(&core.TransportError{Op: req.Method + " " + req.Path, Err: err})
	}

	c.logger.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", resp.StatusCode()).
		Int("size", len(resp.Bytes())).
		Msg("http response")

	return core.NewResponse(resp.StatusCode(), resp.Bytes())
}

func (c *Client) execute(r *resty.Request, method, url string) (*resty.Response, error) {
	switch method {
	case http.MethodGet:
		return r.Get(url)
	case http.MethodPost:
		return r.Post(url)
	case http.MethodPut:
		return r.Put(url)
	case http.MethodDelete:
		return r.Delete(url)
	default:
		return nil, fmt.Errorf("unsupported http method: %s", method)
	}
}
