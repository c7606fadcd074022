// Package book maintains a local order book from a depth snapshot plus the
// diff stream. The caller wires the two sides: the snapshot comes from the
// REST depth endpoint and the diffs from a depth channel subscription.
package book

import (
	"errors"
	"sort"
	"sync"

	"github.com/cockroachdb/apd/v3"

	"nakula/pkg/core"
)

// ErrOutOfSync is returned when a diff leaves a gap after the last applied
// update. The book must be reloaded from a fresh snapshot.
var ErrOutOfSync = errors.New("order book out of sync, reload snapshot")

// DepthUpdate is one diff event from a depth stream channel.
type DepthUpdate struct {
	EventType string                `json:"e"`
	EventTime int64                 `json:"E"`
	Symbol    string                `json:"s"`
	FirstID   int64                 `json:"U"`
	LastID    int64                 `json:"u"`
	Bids      []core.OrderBookLevel `json:"b"`
	Asks      []core.OrderBookLevel `json:"a"`
}

// Book is a locally maintained order book. It is safe for concurrent use.
type Book struct {
	mu           sync.RWMutex
	symbol       string
	bids         map[string]*apd.Decimal
	asks         map[string]*apd.Decimal
	lastUpdateID int64
	loaded       bool
}

// New creates an empty book for symbol. Apply rejects diffs until Load seeds
// the book with a snapshot.
func New(symbol string) *Book {
	return &Book{
		symbol: symbol,
		bids:   make(map[string]*apd.Decimal),
		asks:   make(map[string]*apd.Decimal),
	}
}

// Symbol returns the symbol this book tracks.
func (b *Book) Symbol() string {
	return b.symbol
}

// Load replaces the book contents with a REST depth snapshot.
func (b *Book) Load(snapshot *core.OrderBook) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bids = make(map[string]*apd.Decimal, len(snapshot.Bids))
	b.asks = make(map[string]*apd.Decimal, len(snapshot.Asks))
	for i := range snapshot.Bids {
		setLevel(b.bids, &snapshot.Bids[i])
	}
	for i := range snapshot.Asks {
		setLevel(b.asks, &snapshot.Asks[i])
	}
	b.lastUpdateID = snapshot.LastUpdateID
	b.loaded = true
}

// Apply folds one diff into the book. Diffs at or before the snapshot are
// skipped silently. A diff that does not connect to the last applied update
// returns ErrOutOfSync and leaves the book unchanged.
func (b *Book) Apply(update *DepthUpdate) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.loaded {
		return ErrOutOfSync
	}
	if update.LastID <= b.lastUpdateID {
		return nil
	}
	if update.FirstID > b.lastUpdateID+1 {
		return ErrOutOfSync
	}

	for i := range update.Bids {
		setLevel(b.bids, &update.Bids[i])
	}
	for i := range update.Asks {
		setLevel(b.asks, &update.Asks[i])
	}
	b.lastUpdateID = update.LastID
	return nil
}

// setLevel inserts or replaces a price level. A zero quantity removes it.
func setLevel(side map[string]*apd.Decimal, level *core.OrderBookLevel) {
	key := level.Price.String()
	if level.Qty.IsZero() {
		delete(side, key)
		return
	}
	qty := new(apd.Decimal).Set(&level.Qty)
	side[key] = qty
}

// LastUpdateID returns the id of the last applied update.
func (b *Book) LastUpdateID() int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastUpdateID
}

// BestBid returns the highest bid level. The second return is false when the
// bid side is empty.
func (b *Book) BestBid() (core.OrderBookLevel, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return bestLevel(b.bids, func(cmp int) bool { return cmp > 0 })
}

// BestAsk returns the lowest ask level. The second return is false when the
// ask side is empty.
func (b *Book) BestAsk() (core.OrderBookLevel, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return bestLevel(b.asks, func(cmp int) bool { return cmp < 0 })
}

func bestLevel(side map[string]*apd.Decimal, better func(int) bool) (core.OrderBookLevel, bool) {
	var best core.OrderBookLevel
	found := false
	for priceStr, qty := range side {
		var price apd.Decimal
		if _, _, err := price.SetString(priceStr); err != nil {
			continue
		}
		if !found || better(price.Cmp(&best.Price)) {
			best.Price = price
			best.Qty = *qty
			found = true
		}
	}
	return best, found
}

// Spread returns the difference between the best ask and the best bid. The
// second return is false when either side is empty.
func (b *Book) Spread() (apd.Decimal, bool) {
	bid, okBid := b.BestBid()
	ask, okAsk := b.BestAsk()

	var spread apd.Decimal
	if !okBid || !okAsk {
		return spread, false
	}
	if _, err := apd.BaseContext.Sub(&spread, &ask.Price, &bid.Price); err != nil {
		return spread, false
	}
	return spread, true
}

// Snapshot renders the book as a sorted depth view: bids descending, asks
// ascending, each side truncated to limit levels. A limit of zero keeps every
// level.
func (b *Book) Snapshot(limit int) *core.OrderBook {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snapshot := &core.OrderBook{
		LastUpdateID: b.lastUpdateID,
		Bids:         collectLevels(b.bids),
		Asks:         collectLevels(b.asks),
	}

	sort.Slice(snapshot.Bids, func(i, j int) bool {
		return snapshot.Bids[i].Price.Cmp(&snapshot.Bids[j].Price) > 0
	})
	sort.Slice(snapshot.Asks, func(i, j int) bool {
		return snapshot.Asks[i].Price.Cmp(&snapshot.Asks[j].Price) < 0
	})

	if limit > 0 {
		if len(snapshot.Bids) > limit {
			snapshot.Bids = snapshot.Bids[:limit]
		}
		if len(snapshot.Asks) > limit {
			snapshot.Asks = snapshot.Asks[:limit]
		}
	}
	return snapshot
}

func collectLevels(side map[string]*apd.Decimal) []core.OrderBookLevel {
	levels := make([]core.OrderBookLevel, 0, len(side))
	for priceStr, qty := range side {
		var price apd.Decimal
		if _, _, err := price.SetString(priceStr); err != nil {
			continue
		}
		levels = append(levels, core.OrderBookLevel{Price: price, Qty: *qty})
	}
	return levels
}
