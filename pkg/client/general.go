package client

import (
	"net/http"

	"nakula/pkg/core"
)

// GeneralClient covers the public connectivity endpoints. No credentials are
// required.
type GeneralClient struct {
	*baseClient
}

// NewGeneralClient creates a client for the public endpoints under baseURL.
func NewGeneralClient(baseURL string, opts ...Option) (*GeneralClient, error) {
	base, err := newBaseClient(core.Credentials{}, baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &GeneralClient{baseClient: base}, nil
}

// Ping tests connectivity to the REST API.
func (c *GeneralClient) Ping() *core.Builder {
	return c.request(http.MethodGet, "/api/v3/ping", core.SecurityNone)
}

// ServerTime returns the exchange's clock, used by callers that want to
// timestamp signed requests with server time instead of wall-clock time.
func (c *GeneralClient) ServerTime() *core.Builder {
	return c.request(http.MethodGet, "/api/v3/time", core.SecurityNone)
}

// ExchangeInfo returns current trading rules and symbol information.
func (c *GeneralClient) ExchangeInfo() *core.Builder {
	return c.request(http.MethodGet, "/api/v3/exchangeInfo", core.SecurityNone)
}
