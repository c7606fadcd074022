package core

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Params is an ordered set of request parameters. Keys are unique and keep
// their first-insertion position; setting an existing key overwrites its
// value in place. Ordering matters because the signature is computed over
// the rendered string exactly as sent, so the encoder must never reorder.
type Params struct {
	pairs []pair
}

type pair struct {
	key   string
	value string
}

// Set inserts or overwrites a parameter and returns the set for chaining.
// Values are rendered to their wire form immediately.
func (p *Params) Set(key string, value any) *Params {
	v := formatValue(value)
	for i := range p.pairs {
		if p.pairs[i].key == key {
			p.pairs[i].value = v
			return p
		}
	}
	p.pairs = append(p.pairs, pair{key: key, value: v})
	return p
}

// Get returns the value for key and whether it is present.
func (p *Params) Get(key string) (string, bool) {
	for i := range p.pairs {
		if p.pairs[i].key == key {
			return p.pairs[i].value, true
		}
	}
	return "", false
}

// Len returns the number of parameters.
func (p *Params) Len() int {
	return len(p.pairs)
}

// Keys returns the parameter names in insertion order.
func (p *Params) Keys() []string {
	keys := make([]string, len(p.pairs))
	for i := range p.pairs {
		keys[i] = p.pairs[i].key
	}
	return keys
}

// Encode renders the canonical query string: key=value pairs joined with "&"
// in insertion order, values percent-encoded. An empty set renders to "".
// url.Values is deliberately not used here because its Encode sorts keys.
func (p *Params) Encode() string {
	if len(p.pairs) == 0 {
		return ""
	}

	var sb strings.Builder
	for i := range p.pairs {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(p.pairs[i].key)
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(p.pairs[i].value))
	}
	return sb.String()
}

// Clone returns an independent copy of the parameter set.
func (p *Params) Clone() *Params {
	clone := &Params{pairs: make([]pair, len(p.pairs))}
	copy(clone.pairs, p.pairs)
	return clone
}

func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case *apd.Decimal:
		return v.String()
	case apd.Decimal:
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
