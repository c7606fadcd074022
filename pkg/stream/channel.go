package stream

import (
	"strconv"
	"strings"

	"nakula/pkg/core"
)

// channelKind is the closed set of channel shapes. Rendering switches
// exhaustively over it; there is no open-ended dispatch.
type channelKind int

const (
	kindStream channelKind = iota
	kindUserData
	kindCombined
)

// Channel addresses one logical subscription: a single named stream, a
// combination of streams multiplexed over one connection, or a user-data
// session keyed by a listen key. Rendering is pure, and distinct channels
// never render identically.
type Channel struct {
	kind  channelKind
	name  string
	parts []string
}

// Level is the partial-depth snapshot size.
type Level int

// Supported partial depth levels.
const (
	Level5  Level = 5
	Level10 Level = 10
	Level20 Level = 20
)

// Speed is the depth update frequency.
type Speed string

// Supported depth update speeds.
const (
	Speed100ms  Speed = "100ms"
	Speed1000ms Speed = "1000ms"
)

func symbolStream(symbol, suffix string) Channel {
	return Channel{kind: kindStream, name: strings.ToLower(symbol) + "@" + suffix}
}

// AggTrade streams aggregated trades for a symbol.
func AggTrade(symbol string) Channel {
	return symbolStream(symbol, "aggTrade")
}

// Trade streams raw trades for a symbol.
func Trade(symbol string) Channel {
	return symbolStream(symbol, "trade")
}

// Kline streams candlesticks for a symbol at the given interval.
func Kline(symbol string, interval core.Interval) Channel {
	return symbolStream(symbol, "kline_"+interval.String())
}

// MiniTicker streams the abbreviated 24h ticker for a symbol.
func MiniTicker(symbol string) Channel {
	return symbolStream(symbol, "miniTicker")
}

// AllMiniTickers streams abbreviated tickers for every symbol.
func AllMiniTickers() Channel {
	return Channel{kind: kindStream, name: "!miniTicker@arr"}
}

// Ticker streams the full 24h ticker for a symbol.
func Ticker(symbol string) Channel {
	return symbolStream(symbol, "ticker")
}

// AllTickers streams full tickers for every symbol.
func AllTickers() Channel {
	return Channel{kind: kindStream, name: "!ticker@arr"}
}

// BookTicker streams best bid/ask updates for a symbol.
func BookTicker(symbol string) Channel {
	return symbolStream(symbol, "bookTicker")
}

// AllBookTickers streams best bid/ask updates for every symbol.
func AllBookTickers() Channel {
	return Channel{kind: kindStream, name: "!bookTicker"}
}

// Depth streams order book diffs for a symbol at the given speed.
func Depth(symbol string, speed Speed) Channel {
	return symbolStream(symbol, "depth@"+string(speed))
}

// PartialDepth streams top-of-book snapshots for a symbol.
func PartialDepth(symbol string, level Level, speed Speed) Channel {
	return symbolStream(symbol, "depth"+strconv.Itoa(int(level))+"@"+string(speed))
}

// UserData addresses the private user-data session identified by listenKey.
// The listen key is rendered verbatim.
func UserData(listenKey string) Channel {
	return Channel{kind: kindUserData, name: listenKey}
}

// Combined multiplexes several channels over one connection. Inbound
// messages arrive wrapped in an envelope naming their source stream.
func Combined(channels ...Channel) Channel {
	parts := make([]string, 0, len(channels))
	for _, ch := range channels {
		parts = append(parts, ch.names()...)
	}
	return Channel{kind: kindCombined, parts: parts}
}

// Name returns the wire-level stream name. Combined channels join their
// member names with "/".
func (c Channel) Name() string {
	switch c.kind {
	case kindCombined:
		return strings.Join(c.parts, "/")
	default:
		return c.name
	}
}

// Path returns the URL path fragment appended to the websocket base URL.
func (c Channel) Path() string {
	switch c.kind {
	case kindCombined:
		return "/stream?streams=" + strings.Join(c.parts, "/")
	default:
		return "/ws/" + c.name
	}
}

// Matches reports whether an inbound envelope's stream name belongs to this
// channel. Callers use it to filter a shared combined connection.
func (c Channel) Matches(stream string) bool {
	switch c.kind {
	case kindCombined:
		for _, p := range c.parts {
			if p == stream {
				return true
			}
		}
		return false
	default:
		return c.name == stream
	}
}

func (c Channel) names() []string {
	if c.kind == kindCombined {
		return c.parts
	}
	return []string{c.name}
}

// String implements fmt.Stringer.
func (c Channel) String() string {
	return c.Name()
}
