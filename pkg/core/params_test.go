package core

import (
	"testing"

	"github.com/cockroachdb/apd/v3"
	"github.com/stretchr/testify/assert"
)

func TestParams_Encode_InsertionOrder(t *testing.T) {
	var p Params
	p.Set("symbol", "BTCUSDT").
		Set("side", "BUY").
		Set("quantity", "1")

	assert.Equal(t, "symbol=BTCUSDT&side=BUY&quantity=1", p.Encode())
	assert.Equal(t, []string{"symbol", "side", "quantity"}, p.Keys())
}

func TestParams_Set_OverwriteKeepsPosition(t *testing.T) {
	var p Params
	p.Set("a", "1").Set("b", "2").Set("c", "3")
	p.Set("a", "9")

	assert.Equal(t, "a=9&b=2&c=3", p.Encode())
	assert.Equal(t, 3, p.Len())
}

func TestParams_Encode_Empty(t *testing.T) {
	var p Params
	assert.Equal(t, "", p.Encode())
}

func TestParams_Encode_EscapesValues(t *testing.T) {
	var p Params
	p.Set("note", "a b&c")

	assert.Equal(t, "note=a+b%26c", p.Encode())
}

func TestParams_Get(t *testing.T) {
	var p Params
	p.Set("symbol", "ETHBTC")

	got, ok := p.Get("symbol")
	assert.True(t, ok)
	assert.Equal(t, "ETHBTC", got)

	_, ok = p.Get("missing")
	assert.False(t, ok)
}

func TestParams_Set_ValueTypes(t *testing.T) {
	price := apd.New(1, -1) // 0.1

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"string", "GTC", "GTC"},
		{"int", 5, "5"},
		{"int64", int64(1499827319559), "1499827319559"},
		{"float64", 0.5, "0.5"},
		{"bool", true, "true"},
		{"decimal", price, "0.1"},
		{"stringer", SideSell, "SELL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Params
			p.Set("v", tt.value)
			got, _ := p.Get("v")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParams_Clone_Independent(t *testing.T) {
	var p Params
	p.Set("a", "1")

	clone := p.Clone()
	clone.Set("a", "2").Set("b", "3")

	got, _ := p.Get("a")
	assert.Equal(t, "1", got)
	assert.Equal(t, 1, p.Len())
	assert.Equal(t, 2, clone.Len())
}
