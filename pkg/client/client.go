// Package client exposes the exchange's REST surface, grouped the way the
// API groups it: general, market data, account, user-data stream, and
// withdrawal endpoints.
package client

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"nakula/internal/circuitbreaker"
	"nakula/internal/keyring"
	"nakula/internal/transport"
	"nakula/pkg/core"
)

// ProductionURL is the public REST endpoint.
const ProductionURL = "https://api.binance.com"

// Config holds client construction settings.
type Config struct {
	BaseURL string        `validate:"required,url"`
	Timeout time.Duration `validate:"min=0"`
}

var validate = validator.New()

// Options holds optional construction settings shared by every client kind.
type Options struct {
	Logger            zerolog.Logger
	Timeout           time.Duration
	RateLimitRequests int
	RateLimitPeriod   time.Duration
	Breaker           *circuitbreaker.Config
	Ring              *keyring.Ring
}

// Option configures optional client behavior.
type Option func(*Options)

// WithLogger sets the logger used by the client and its transport.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithTimeout bounds each dispatched request.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.Timeout = timeout
	}
}

// WithRateLimit paces requests to the given quota.
func WithRateLimit(requests int, period time.Duration) Option {
	return func(o *Options) {
		o.RateLimitRequests = requests
		o.RateLimitPeriod = period
	}
}

// WithCircuitBreaker adds a fail-fast gate in front of dispatch.
func WithCircuitBreaker(config circuitbreaker.Config) Option {
	return func(o *Options) {
		o.Breaker = &config
	}
}

// WithKeyring rotates signed requests across the ring's key pairs instead of
// the fixed credentials passed at construction.
func WithKeyring(ring *keyring.Ring) Option {
	return func(o *Options) {
		o.Ring = ring
	}
}

// baseClient carries what every client kind shares: the transport, the
// credentials, and the logger. Credentials are fixed at construction and
// never serialized or logged.
type baseClient struct {
	transport *transport.Client
	creds     core.Credentials
	ring      *keyring.Ring
	logger    zerolog.Logger
}

func newBaseClient(creds core.Credentials, baseURL string, opts ...Option) (*baseClient, error) {
	options := &Options{Logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(options)
	}

	config := Config{BaseURL: baseURL, Timeout: options.Timeout}
	if err := validate.Struct(config); err != nil {
		return nil, core.NewConfigError("invalid base URL %q", baseURL)
	}

	transportOpts := []transport.Option{transport.WithLogger(options.Logger)}
	if options.RateLimitRequests > 0 {
		transportOpts = append(transportOpts,
			transport.WithRateLimit(options.RateLimitRequests, options.RateLimitPeriod))
	}
	if options.Breaker != nil {
		transportOpts = append(transportOpts, transport.WithCircuitBreaker(*options.Breaker))
	}

	return &baseClient{
		transport: transport.NewClient(transport.Config{
			BaseURL: baseURL,
			Timeout: options.Timeout,
		}, transportOpts...),
		creds:  creds,
		ring:   options.Ring,
		logger: options.Logger,
	}, nil
}

// credentials returns the key pair for the next request, consulting the
// keyring when one is configured.
func (c *baseClient) credentials() core.Credentials {
	if c.ring != nil {
		if key, ok := c.ring.Current(); ok {
			c.ring.MarkUsed()
			return core.Credentials{APIKey: key.APIKey, SecretKey: key.SecretKey}
		}
	}
	return c.creds
}

func (c *baseClient) request(method, path string, security core.Security) *core.Builder {
	return core.NewBuilder(c.transport, method, path, security, c.credentials())
}

// Close releases the underlying transport.
func (c *baseClient) Close() error {
	return c.transport.Close()
}
