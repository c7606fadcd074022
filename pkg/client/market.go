package client

import (
	"net/http"

	"nakula/pkg/core"
)

// MarketClient covers the market data endpoints. Most are public; the
// historical trades lookup requires an API key, so the client carries one.
type MarketClient struct {
	*baseClient
}

// NewMarketClient creates a market data client. apiKey may be empty when the
// historical trades endpoint is not needed.
func NewMarketClient(apiKey, baseURL string, opts ...Option) (*MarketClient, error) {
	base, err := newBaseClient(core.Credentials{APIKey: apiKey}, baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &MarketClient{baseClient: base}, nil
}

// OrderBook returns the depth snapshot for a symbol.
func (c *MarketClient) OrderBook(symbol string) *core.Builder {
	return c.request(http.MethodGet, "/api/v3/depth", core.SecurityNone).
		Param("symbol", symbol)
}

// Trades returns the most recent trades for a symbol.
func (c *MarketClient) Trades(symbol string) *core.Builder {
	return c.request(http.MethodGet, "/api/v3/trades", core.SecurityNone).
		Param("symbol", symbol)
}

// HistoricalTrades returns older trades for a symbol. Requires an API key.
func (c *MarketClient) HistoricalTrades(symbol string) *core.Builder {
	return c.request(http.MethodGet, "/api/v3/historicalTrades", core.SecurityAPIKey).
		Param("symbol", symbol)
}

// AggTrades returns compressed, aggregate trades for a symbol.
func (c *MarketClient) AggTrades(symbol string) *core.Builder {
	return c.request(http.MethodGet, "/api/v3/aggTrades", core.SecurityNone).
		Param("symbol", symbol)
}

// Klines returns candlestick bars for a symbol at the given interval.
func (c *MarketClient) Klines(symbol string, interval core.Interval) *core.Builder {
	return c.request(http.MethodGet, "/api/v3/klines", core.SecurityNone).
		Param("symbol", symbol).
		Param("interval", interval)
}

// AvgPrice returns the current average price for a symbol.
func (c *MarketClient) AvgPrice(symbol string) *core.Builder {
	return c.request(http.MethodGet, "/api/v3/avgPrice", core.SecurityNone).
		Param("symbol", symbol)
}

// Ticker24h returns 24 hour rolling window statistics for a symbol.
func (c *MarketClient) Ticker24h(symbol string) *core.Builder {
	return c.request(http.MethodGet, "/api/v3/ticker/24hr", core.SecurityNone).
		Param("symbol", symbol)
}

// AllTickers24h returns 24 hour statistics for every symbol.
func (c *MarketClient) AllTickers24h() *core.Builder {
	return c.request(http.MethodGet, "/api/v3/ticker/24hr", core.SecurityNone)
}

// PriceTicker returns the latest price for a symbol.
func (c *MarketClient) PriceTicker(symbol string) *core.Builder {
	return c.request(http.MethodGet, "/api/v3/ticker/price", core.SecurityNone).
		Param("symbol", symbol)
}

// AllPriceTickers returns the latest price for every symbol.
func (c *MarketClient) AllPriceTickers() *core.Builder {
	return c.request(http.MethodGet, "/api/v3/ticker/price", core.SecurityNone)
}

// BookTicker returns the best bid and ask for a symbol.
func (c *MarketClient) BookTicker(symbol string) *core.Builder {
	return c.request(http.MethodGet, "/api/v3/ticker/bookTicker", core.SecurityNone).
		Param("symbol", symbol)
}

// AllBookTickers returns the best bid and ask for every symbol.
func (c *MarketClient) AllBookTickers() *core.Builder {
	return c.request(http.MethodGet, "/api/v3/ticker/bookTicker", core.SecurityNone)
}
