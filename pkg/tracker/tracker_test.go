package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nakula/pkg/core"
	"nakula/pkg/stream"
)

func reportMessage(payload string) *stream.Message {
	return &stream.Message{Stream: "listen-key", Data: []byte(payload)}
}

const newOrderReport = `{
	"e":"executionReport","E":1499405658658,"s":"ETHBTC",
	"c":"my-order-1","S":"BUY","o":"LIMIT","x":"NEW","X":"NEW",
	"i":4293153,"p":"0.10264410","q":"1.00000000","z":"0.00000000",
	"l":"0.00000000","L":"0.00000000"
}`

const fillReport = `{
	"e":"executionReport","E":1499405660000,"s":"ETHBTC",
	"c":"my-order-1","S":"BUY","o":"LIMIT","x":"TRADE","X":"FILLED",
	"i":4293153,"p":"0.10264410","q":"1.00000000","z":"1.00000000",
	"l":"1.00000000","L":"0.10264410"
}`

func TestTracker_Process(t *testing.T) {
	tr := New()

	applied, err := tr.Process(reportMessage(newOrderReport))
	require.NoError(t, err)
	assert.True(t, applied)

	order, ok := tr.Get(4293153)
	require.True(t, ok)
	assert.Equal(t, "ETHBTC", order.Symbol)
	assert.Equal(t, "my-order-1", order.ClientOrderID)
	assert.Equal(t, core.SideBuy, order.Side)
	assert.Equal(t, "NEW", order.Status)
	assert.Equal(t, "0.10264410", order.Price.String())
}

func TestTracker_ProcessIgnoresOtherEvents(t *testing.T) {
	tr := New()

	applied, err := tr.Process(reportMessage(`{"e":"outboundAccountPosition","E":1}`))
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 0, tr.Len())
}

func TestTracker_FillTransition(t *testing.T) {
	tr := New()

	_, err := tr.Process(reportMessage(newOrderReport))
	require.NoError(t, err)
	assert.Len(t, tr.Open(), 1)

	_, err = tr.Process(reportMessage(fillReport))
	require.NoError(t, err)

	order, ok := tr.Get(4293153)
	require.True(t, ok)
	assert.Equal(t, "FILLED", order.Status)
	assert.Equal(t, "1.00000000", order.ExecutedQty.String())
	assert.Empty(t, tr.Open())
	assert.Equal(t, 1, tr.Len())
}

func TestTracker_LateEventDropped(t *testing.T) {
	tr := New()

	_, err := tr.Process(reportMessage(fillReport))
	require.NoError(t, err)

	// The NEW report carries an earlier event time and must not regress
	// the terminal state.
	_, err = tr.Process(reportMessage(newOrderReport))
	require.NoError(t, err)

	order, _ := tr.Get(4293153)
	assert.Equal(t, "FILLED", order.Status)
}

func TestTracker_GetByClientID(t *testing.T) {
	tr := New()

	_, err := tr.Process(reportMessage(newOrderReport))
	require.NoError(t, err)

	order, ok := tr.GetByClientID("my-order-1")
	require.True(t, ok)
	assert.Equal(t, int64(4293153), order.OrderID)

	_, ok = tr.GetByClientID("unknown")
	assert.False(t, ok)
}

func TestTracker_UpdateFunc(t *testing.T) {
	var seen []string
	tr := New(WithUpdateFunc(func(order *Order) {
		seen = append(seen, order.Status)
	}))

	_, err := tr.Process(reportMessage(newOrderReport))
	require.NoError(t, err)
	_, err = tr.Process(reportMessage(fillReport))
	require.NoError(t, err)

	assert.Equal(t, []string{"NEW", "FILLED"}, seen)
}

func TestTracker_GetReturnsCopy(t *testing.T) {
	tr := New()

	_, err := tr.Process(reportMessage(newOrderReport))
	require.NoError(t, err)

	order, _ := tr.Get(4293153)
	order.Status = "MUTATED"

	fresh, _ := tr.Get(4293153)
	assert.Equal(t, "NEW", fresh.Status)
}
