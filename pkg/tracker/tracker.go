// Package tracker mirrors the account's order state from user-data stream
// events. It holds whatever execution reports have been seen; it does not
// query the REST surface on its own.
package tracker

import (
	"sync"

	"github.com/cockroachdb/apd/v3"
	"github.com/rs/zerolog"

	"nakula/pkg/core"
	"nakula/pkg/stream"
)

// ExecutionReport is the order update event on a user-data stream.
type ExecutionReport struct {
	EventType     string      `json:"e"`
	EventTime     int64       `json:"E"`
	Symbol        string      `json:"s"`
	ClientOrderID string      `json:"c"`
	Side          core.Side   `json:"S"`
	OrderType     string      `json:"o"`
	ExecutionType string      `json:"x"`
	Status        string      `json:"X"`
	OrderID       int64       `json:"i"`
	Price         apd.Decimal `json:"p"`
	OrigQty       apd.Decimal `json:"q"`
	CumQty        apd.Decimal `json:"z"`
	LastQty       apd.Decimal `json:"l"`
	LastPrice     apd.Decimal `json:"L"`
}

// Order is the tracked state of one order.
type Order struct {
	Symbol        string
	OrderID       int64
	ClientOrderID string
	Side          core.Side
	Type          string
	Status        string
	Price         apd.Decimal
	OrigQty       apd.Decimal
	ExecutedQty   apd.Decimal
	UpdateTime    int64
}

// open reports whether the order can still trade.
func (o *Order) open() bool {
	switch o.Status {
	case "NEW", "PARTIALLY_FILLED":
		return true
	default:
		return false
	}
}

// UpdateFunc observes each applied execution report.
type UpdateFunc func(order *Order)

// Tracker folds execution reports into an in-memory order table. It is safe
// for concurrent use.
type Tracker struct {
	mu       sync.RWMutex
	orders   map[int64]*Order
	onUpdate UpdateFunc
	logger   zerolog.Logger
}

// Option configures optional tracker behavior.
type Option func(*Tracker)

// WithLogger sets the tracker logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// WithUpdateFunc registers a callback invoked after each applied report. The
// callback receives a copy and runs on the caller's goroutine.
func WithUpdateFunc(fn UpdateFunc) Option {
	return func(t *Tracker) {
		t.onUpdate = fn
	}
}

// New creates an empty tracker.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		orders: make(map[int64]*Order),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Process inspects one stream message and applies it if it is an execution
// report. Other user-data events pass through untouched; the return reports
// whether the message was applied.
func (t *Tracker) Process(msg *stream.Message) (bool, error) {
	var report ExecutionReport
	if err := msg.JSON(&report); err != nil {
		return false, err
	}
	if report.EventType != "executionReport" {
		return false, nil
	}
	t.Apply(&report)
	return true, nil
}

// Apply folds one execution report into the table.
func (t *Tracker) Apply(report *ExecutionReport) {
	order := &Order{
		Symbol:        report.Symbol,
		OrderID:       report.OrderID,
		ClientOrderID: report.ClientOrderID,
		Side:          report.Side,
		Type:          report.OrderType,
		Status:        report.Status,
		Price:         report.Price,
		OrigQty:       report.OrigQty,
		ExecutedQty:   report.CumQty,
		UpdateTime:    report.EventTime,
	}

	t.mu.Lock()
	existing, known := t.orders[report.OrderID]
	if known && existing.UpdateTime > report.EventTime {
		// Late event for a state we have already moved past.
		t.mu.Unlock()
		return
	}
	t.orders[report.OrderID] = order
	t.mu.Unlock()

	t.logger.Debug().
		Str("symbol", order.Symbol).
		Int64("order_id", order.OrderID).
		Str("status", order.Status).
		Msg("order updated")

	if t.onUpdate != nil {
		copied := *order
		t.onUpdate(&copied)
	}
}

// Get returns the tracked state of an order by its exchange id.
func (t *Tracker) Get(orderID int64) (*Order, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	order, ok := t.orders[orderID]
	if !ok {
		return nil, false
	}
	copied := *order
	return &copied, true
}

// GetByClientID returns the tracked state of an order by its client id.
func (t *Tracker) GetByClientID(clientOrderID string) (*Order, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, order := range t.orders {
		if order.ClientOrderID == clientOrderID {
			copied := *order
			return &copied, true
		}
	}
	return nil, false
}

// Open returns the orders still able to trade.
func (t *Tracker) Open() []*Order {
	t.mu.RLock()
	defer t.mu.RUnlock()

	open := make([]*Order, 0)
	for _, order := range t.orders {
		if order.open() {
			copied := *order
			open = append(open, &copied)
		}
	}
	return open
}

// Len returns the number of tracked orders.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.orders)
}
