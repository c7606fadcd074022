package client

import (
	"net/http"

	"github.com/cockroachdb/apd/v3"

	"nakula/pkg/core"
)

// AccountClient covers the signed trading and account endpoints.
type AccountClient struct {
	*baseClient
}

// NewAccountClient creates a client for the signed endpoints. Both halves of
// the key pair are required.
func NewAccountClient(apiKey, secretKey, baseURL string, opts ...Option) (*AccountClient, error) {
	if apiKey == "" || secretKey == "" {
		return nil, &core.ConfigError{Reason: core.ErrNoCredentials.Error()}
	}
	base, err := newBaseClient(core.Credentials{APIKey: apiKey, SecretKey: secretKey}, baseURL, opts...)
	if err != nil {
		return nil, err
	}
	return &AccountClient{baseClient: base}, nil
}

// General returns a general client sharing this client's transport.
func (c *AccountClient) General() *GeneralClient {
	return &GeneralClient{baseClient: c.baseClient}
}

// Market returns a market data client sharing this client's transport.
func (c *AccountClient) Market() *MarketClient {
	return &MarketClient{baseClient: c.baseClient}
}

// orderPath returns the live or test order endpoint. Test orders are
// validated and signed exactly like live ones but never reach the matching
// engine.
func orderPath(execute bool) string {
	if execute {
		return "/api/v3/order"
	}
	return "/api/v3/order/test"
}

// PlaceLimitOrder places a GTC limit order. With execute false the order is
// sent to the test endpoint.
func (c *AccountClient) PlaceLimitOrder(symbol string, side core.Side, price, qty *apd.Decimal, execute bool) *core.Builder {
	return c.request(http.MethodPost, orderPath(execute), core.SecuritySigned).
		Param("symbol", symbol).
		Param("side", side).
		Param("type", core.TypeLimit).
		Param("timeInForce", core.GTC).
		Param("quantity", qty).
		Param("price", price)
}

// PlaceMarketOrder places a market order. With execute false the order is
// sent to the test endpoint.
func (c *AccountClient) PlaceMarketOrder(symbol string, side core.Side, qty *apd.Decimal, execute bool) *core.Builder {
	return c.request(http.MethodPost, orderPath(execute), core.SecuritySigned).
		Param("symbol", symbol).
		Param("side", side).
		Param("type", core.TypeMarket).
		Param("quantity", qty)
}

// GetOrder looks up a single order.
func (c *AccountClient) GetOrder(symbol string, id core.OrderID) *core.Builder {
	b := c.request(http.MethodGet, "/api/v3/order", core.SecuritySigned).
		Param("symbol", symbol)
	return id.Apply(b, "orderId", "origClientOrderId")
}

// CancelOrder cancels a single open order.
func (c *AccountClient) CancelOrder(symbol string, id core.OrderID) *core.Builder {
	b := c.request(http.MethodDelete, "/api/v3/order", core.SecuritySigned).
		Param("symbol", symbol)
	return id.Apply(b, "orderId", "origClientOrderId")
}

// OpenOrders returns the open orders for a symbol.
func (c *AccountClient) OpenOrders(symbol string) *core.Builder {
	return c.request(http.MethodGet, "/api/v3/openOrders", core.SecuritySigned).
		Param("symbol", symbol)
}

// AllOpenOrders returns every open order on the account. Heavily weighted on
// the server side; prefer OpenOrders with a symbol.
func (c *AccountClient) AllOpenOrders() *core.Builder {
	return c.request(http.MethodGet, "/api/v3/openOrders", core.SecuritySigned)
}

// AllOrders returns all orders for a symbol: active, cancelled, and filled.
func (c *AccountClient) AllOrders(symbol string) *core.Builder {
	return c.request(http.MethodGet, "/api/v3/allOrders", core.SecuritySigned).
		Param("symbol", symbol)
}

// PlaceOCO places a one-cancels-the-other order pair: a limit leg and a stop
// loss leg.
func (c *AccountClient) PlaceOCO(symbol string, side core.Side, price, stopPrice, qty *apd.Decimal) *core.Builder {
	return c.request(http.MethodPost, "/api/v3/order/oco", core.SecuritySigned).
		Param("symbol", symbol).
		Param("side", side).
		Param("quantity", qty).
		Param("price", price).
		Param("stopPrice", stopPrice)
}

// GetOCO looks up an OCO order list by its exchange-assigned id.
func (c *AccountClient) GetOCO(orderListID int64) *core.Builder {
	return c.request(http.MethodGet, "/api/v3/orderList", core.SecuritySigned).
		Param("orderListId", orderListID)
}

// CancelOCO cancels an entire OCO order list.
func (c *AccountClient) CancelOCO(symbol string, orderListID int64) *core.Builder {
	return c.request(http.MethodDelete, "/api/v3/orderList", core.SecuritySigned).
		Param("symbol", symbol).
		Param("orderListId", orderListID)
}

// AllOCO returns the account's OCO history.
func (c *AccountClient) AllOCO() *core.Builder {
	return c.request(http.MethodGet, "/api/v3/allOrderList", core.SecuritySigned)
}

// OpenOCO returns the account's open OCO order lists.
func (c *AccountClient) OpenOCO() *core.Builder {
	return c.request(http.MethodGet, "/api/v3/openOrderList", core.SecuritySigned)
}

// Account returns current account information including balances.
func (c *AccountClient) Account() *core.Builder {
	return c.request(http.MethodGet, "/api/v3/account", core.SecuritySigned)
}

// MyTrades returns the account's trade history for a symbol.
func (c *AccountClient) MyTrades(symbol string) *core.Builder {
	return c.request(http.MethodGet, "/api/v3/myTrades", core.SecuritySigned).
		Param("symbol", symbol)
}
