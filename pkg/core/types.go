package core

import (
	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"
)

// Side represents the direction of an order.
type Side int

const (
	// SideBuy indicates an order to purchase the base asset.
	SideBuy Side = iota
	// SideSell indicates an order to sell the base asset.
	SideSell
)

// String returns the wire representation of the side ("BUY" or "SELL").
func (s Side) String() string {
	return [...]string{"BUY", "SELL"}[s]
}

// MarshalJSON implements json.Marshaler for Side.
func (s Side) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Side.
func (s *Side) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"BUY"`, `"buy"`:
		*s = SideBuy
	case `"SELL"`, `"sell"`:
		*s = SideSell
	}
	return nil
}

// OrderType represents how an order executes.
type OrderType int

const (
	// TypeLimit executes at a specified price or better.
	TypeLimit OrderType = iota
	// TypeMarket executes immediately at the best available price.
	TypeMarket
	// TypeStopLoss triggers a market order at the stop price.
	TypeStopLoss
	// TypeStopLossLimit triggers a limit order at the stop price.
	TypeStopLossLimit
	// TypeTakeProfit triggers a market order at the target price.
	TypeTakeProfit
	// TypeTakeProfitLimit triggers a limit order at the target price.
	TypeTakeProfitLimit
	// TypeLimitMaker rests on the book or is rejected.
	TypeLimitMaker
)

// String returns the wire representation of the order type.
func (t OrderType) String() string {
	return [...]string{
		"LIMIT",
		"MARKET",
		"STOP_LOSS",
		"STOP_LOSS_LIMIT",
		"TAKE_PROFIT",
		"TAKE_PROFIT_LIMIT",
		"LIMIT_MAKER",
	}[t]
}

// MarshalJSON implements json.Marshaler for OrderType.
func (t OrderType) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// TimeInForce controls how long an order stays active.
type TimeInForce int

const (
	// GTC keeps the order active until filled or cancelled.
	GTC TimeInForce = iota
	// IOC fills what it can immediately and cancels the rest.
	IOC
	// FOK fills completely and immediately or not at all.
	FOK
)

// String returns the wire representation of the time in force.
func (t TimeInForce) String() string {
	return [...]string{"GTC", "IOC", "FOK"}[t]
}

// MarshalJSON implements json.Marshaler for TimeInForce.
func (t TimeInForce) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for TimeInForce.
func (t *TimeInForce) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"GTC"`:
		*t = GTC
	case `"IOC"`:
		*t = IOC
	case `"FOK"`:
		*t = FOK
	}
	return nil
}

// OrderRespType selects how much detail a placed order returns.
type OrderRespType int

const (
	// RespAck returns only the order identifiers.
	RespAck OrderRespType = iota
	// RespResult returns the order state after placement.
	RespResult
	// RespFull additionally returns the fill breakdown.
	RespFull
)

// String returns the wire representation of the response type.
func (t OrderRespType) String() string {
	return [...]string{"ACK", "RESULT", "FULL"}[t]
}

// Interval is a kline/candlestick aggregation window.
type Interval string

// Supported kline intervals.
const (
	Interval1m  Interval = "1m"
	Interval3m  Interval = "3m"
	Interval5m  Interval = "5m"
	Interval15m Interval = "15m"
	Interval30m Interval = "30m"
	Interval1h  Interval = "1h"
	Interval2h  Interval = "2h"
	Interval4h  Interval = "4h"
	Interval6h  Interval = "6h"
	Interval8h  Interval = "8h"
	Interval12h Interval = "12h"
	Interval1d  Interval = "1d"
	Interval3d  Interval = "3d"
	Interval1w  Interval = "1w"
	Interval1M  Interval = "1M"
)

// String returns the wire representation of the interval.
func (i Interval) String() string {
	return string(i)
}

// OrderID identifies an order for lookup or cancellation. Exactly one of the
// two variants is set: the exchange-assigned numeric id or the caller's
// client order id. The variant set is closed; apply renders whichever is
// present into the right parameter.
type OrderID struct {
	id       int64
	clientID string
	byClient bool
}

// ByOrderID references an order by its exchange-assigned identifier.
func ByOrderID(id int64) OrderID {
	return OrderID{id: id}
}

// ByClientOrderID references an order by the caller-supplied identifier.
func ByClientOrderID(id string) OrderID {
	return OrderID{clientID: id, byClient: true}
}

// Apply renders the identifier into params using the given parameter names
// for the exchange id and the client id respectively.
func (o OrderID) Apply(params *Builder, idKey, clientKey string) *Builder {
	if o.byClient {
		return params.Param(clientKey, o.clientID)
	}
	return params.Param(idKey, o.id)
}

// ServerTime is the response of the server time endpoint.
type ServerTime struct {
	ServerTime int64 `json:"serverTime"`
}

// ListenKey is the session token returned when a user-data stream starts.
// The caller owns it once returned; the library does not persist it.
type ListenKey struct {
	ListenKey string `json:"listenKey"`
}

// AvgPrice is the response of the average price endpoint.
type AvgPrice struct {
	Mins  int         `json:"mins"`
	Price apd.Decimal `json:"price"`
}

// PriceTicker is a single symbol/price pair.
type PriceTicker struct {
	Symbol string      `json:"symbol"`
	Price  apd.Decimal `json:"price"`
}

// BookTicker is the best bid and ask for a symbol.
type BookTicker struct {
	Symbol   string      `json:"symbol"`
	BidPrice apd.Decimal `json:"bidPrice"`
	BidQty   apd.Decimal `json:"bidQty"`
	AskPrice apd.Decimal `json:"askPrice"`
	AskQty   apd.Decimal `json:"askQty"`
}

// Order is the state of an order as reported by the exchange.
type Order struct {
	Symbol        string      `json:"symbol"`
	OrderID       int64       `json:"orderId"`
	ClientOrderID string      `json:"clientOrderId"`
	Price         apd.Decimal `json:"price"`
	OrigQty       apd.Decimal `json:"origQty"`
	ExecutedQty   apd.Decimal `json:"executedQty"`
	Status        string      `json:"status"`
	TimeInForce   TimeInForce `json:"timeInForce"`
	Type          string      `json:"type"`
	Side          Side        `json:"side"`
	TransactTime  int64       `json:"transactTime"`
}

// Balance is one asset's free and locked amounts.
type Balance struct {
	Asset  string      `json:"asset"`
	Free   apd.Decimal `json:"free"`
	Locked apd.Decimal `json:"locked"`
}

// Account is the account information response.
type Account struct {
	MakerCommission int64     `json:"makerCommission"`
	TakerCommission int64     `json:"takerCommission"`
	CanTrade        bool      `json:"canTrade"`
	CanWithdraw     bool      `json:"canWithdraw"`
	CanDeposit      bool      `json:"canDeposit"`
	UpdateTime      int64     `json:"updateTime"`
	AccountType     string    `json:"accountType"`
	Balances        []Balance `json:"balances"`
}

// Trade is one of the account's executed trades.
type Trade struct {
	Symbol          string      `json:"symbol"`
	ID              int64       `json:"id"`
	OrderID         int64       `json:"orderId"`
	Price           apd.Decimal `json:"price"`
	Qty             apd.Decimal `json:"qty"`
	Commission      apd.Decimal `json:"commission"`
	CommissionAsset string      `json:"commissionAsset"`
	Time            int64       `json:"time"`
	IsBuyer         bool        `json:"isBuyer"`
	IsMaker         bool        `json:"isMaker"`
}

// OrderBookLevel is one price level of the depth endpoint. The wire format
// is a two-element array of strings.
type OrderBookLevel struct {
	Price apd.Decimal
	Qty   apd.Decimal
}

// UnmarshalJSON decodes the ["price","qty"] array form.
func (l *OrderBookLevel) UnmarshalJSON(data []byte) error {
	var raw [2]string
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return err
	}
	if _, _, err := l.Price.SetString(raw[0]); err != nil {
		return err
	}
	_, _, err := l.Qty.SetString(raw[1])
	return err
}

// OrderBook is the depth endpoint response.
type OrderBook struct {
	LastUpdateID int64            `json:"lastUpdateId"`
	Bids         []OrderBookLevel `json:"bids"`
	Asks         []OrderBookLevel `json:"asks"`
}
