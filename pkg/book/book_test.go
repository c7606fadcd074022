package book

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nakula/pkg/core"
)

func snapshot(t *testing.T) *core.OrderBook {
	t.Helper()
	var ob core.OrderBook
	payload := `{
		"lastUpdateId": 100,
		"bids": [["0.0024", "10"], ["0.0023", "5"]],
		"asks": [["0.0026", "100"], ["0.0027", "20"]]
	}`
	require.NoError(t, sonic.UnmarshalString(payload, &ob))
	return &ob
}

func update(t *testing.T, payload string) *DepthUpdate {
	t.Helper()
	var u DepthUpdate
	require.NoError(t, sonic.UnmarshalString(payload, &u))
	return &u
}

func TestBook_LoadAndBest(t *testing.T) {
	b := New("BNBBTC")
	b.Load(snapshot(t))

	bid, ok := b.BestBid()
	require.True(t, ok)
	assert.Equal(t, "0.0024", bid.Price.String())
	assert.Equal(t, "10", bid.Qty.String())

	ask, ok := b.BestAsk()
	require.True(t, ok)
	assert.Equal(t, "0.0026", ask.Price.String())

	spread, ok := b.Spread()
	require.True(t, ok)
	assert.Equal(t, "0.0002", spread.String())
}

func TestBook_ApplyBeforeLoad(t *testing.T) {
	b := New("BNBBTC")

	err := b.Apply(update(t, `{"e":"depthUpdate","s":"BNBBTC","U":101,"u":102,"b":[],"a":[]}`))
	assert.ErrorIs(t, err, ErrOutOfSync)
}

func TestBook_ApplyDiff(t *testing.T) {
	b := New("BNBBTC")
	b.Load(snapshot(t))

	// New bid level, replaced ask quantity.
	err := b.Apply(update(t, `{
		"e":"depthUpdate","s":"BNBBTC","U":101,"u":105,
		"b":[["0.0025","7"]],
		"a":[["0.0026","50"]]
	}`))
	require.NoError(t, err)
	assert.Equal(t, int64(105), b.LastUpdateID())

	bid, _ := b.BestBid()
	assert.Equal(t, "0.0025", bid.Price.String())

	ask, _ := b.BestAsk()
	assert.Equal(t, "50", ask.Qty.String())
}

func TestBook_ApplyRemovesZeroQtyLevels(t *testing.T) {
	b := New("BNBBTC")
	b.Load(snapshot(t))

	err := b.Apply(update(t, `{
		"e":"depthUpdate","s":"BNBBTC","U":101,"u":101,
		"b":[["0.0024","0.00000000"]],
		"a":[]
	}`))
	require.NoError(t, err)

	bid, ok := b.BestBid()
	require.True(t, ok)
	assert.Equal(t, "0.0023", bid.Price.String())
}

func TestBook_ApplySkipsStaleDiffs(t *testing.T) {
	b := New("BNBBTC")
	b.Load(snapshot(t))

	err := b.Apply(update(t, `{
		"e":"depthUpdate","s":"BNBBTC","U":90,"u":100,
		"b":[["0.0030","1"]],
		"a":[]
	}`))
	require.NoError(t, err)

	bid, _ := b.BestBid()
	assert.Equal(t, "0.0024", bid.Price.String())
	assert.Equal(t, int64(100), b.LastUpdateID())
}

func TestBook_ApplyDetectsGap(t *testing.T) {
	b := New("BNBBTC")
	b.Load(snapshot(t))

	err := b.Apply(update(t, `{"e":"depthUpdate","s":"BNBBTC","U":105,"u":110,"b":[],"a":[]}`))
	assert.ErrorIs(t, err, ErrOutOfSync)
	assert.Equal(t, int64(100), b.LastUpdateID())
}

func TestBook_Snapshot(t *testing.T) {
	b := New("BNBBTC")
	b.Load(snapshot(t))

	view := b.Snapshot(0)
	require.Len(t, view.Bids, 2)
	require.Len(t, view.Asks, 2)
	assert.Equal(t, "0.0024", view.Bids[0].Price.String())
	assert.Equal(t, "0.0023", view.Bids[1].Price.String())
	assert.Equal(t, "0.0026", view.Asks[0].Price.String())

	limited := b.Snapshot(1)
	assert.Len(t, limited.Bids, 1)
	assert.Len(t, limited.Asks, 1)
}

func TestBook_EmptySides(t *testing.T) {
	b := New("BNBBTC")
	b.Load(&core.OrderBook{LastUpdateID: 1})

	_, ok := b.BestBid()
	assert.False(t, ok)
	_, ok = b.BestAsk()
	assert.False(t, ok)
	_, ok = b.Spread()
	assert.False(t, ok)
}
