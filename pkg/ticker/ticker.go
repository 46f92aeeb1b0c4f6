// Package ticker parses, renders and classifies exchange-qualified
// security identifiers. Grounded on original_source/src/ticker.rs: the
// prefix-based exchange inference table and the "SYMBOL.EXCHANGE"
// render format come directly from there (the distilled spec.md §3
// names the prefixes but not the render format).
package ticker

import (
	"fmt"
	"strings"

	"github.com/CCAtAlvis/vfunds/pkg/vferrors"
)

// Exchange identifies the listing venue.
type Exchange string

const (
	Shanghai   Exchange = "SH"
	Shenzhen   Exchange = "SZ"
	Beijing    Exchange = "BJ"
	HongKong   Exchange = "HK"
	UnknownExc Exchange = ""
)

// Type distinguishes instrument classes carried by a Ticker.
type Type string

const (
	Stock           Type = "stock"
	ConvertibleBond Type = "convertible_bond"
)

// Ticker is an exchange-qualified symbol.
type Ticker struct {
	Exchange Exchange
	Symbol   string
	Type     Type
}

// New builds a Ticker, inferring the exchange from the symbol prefix when
// exchange is empty.
func New(symbol string, exchange Exchange, typ Type) (Ticker, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return Ticker{}, vferrors.Invalid("ticker_symbol", "symbol must not be empty")
	}
	if typ == "" {
		typ = Stock
	}
	if exchange == "" {
		exchange = inferExchange(symbol)
	}
	return Ticker{Exchange: exchange, Symbol: symbol, Type: typ}, nil
}

// inferExchange applies the prefix table from spec.md §3:
// six-digit 60*  -> Shanghai
// six-digit 00*/15*/30* -> Shenzhen
// 43*/83* -> Beijing
// five digits -> Hong Kong
func inferExchange(symbol string) Exchange {
	digits := symbol
	switch {
	case len(digits) == 6 && strings.HasPrefix(digits, "60"):
		return Shanghai
	case len(digits) == 6 && (strings.HasPrefix(digits, "00") || strings.HasPrefix(digits, "15") || strings.HasPrefix(digits, "30")):
		return Shenzhen
	case len(digits) == 6 && (strings.HasPrefix(digits, "43") || strings.HasPrefix(digits, "83")):
		return Beijing
	case len(digits) == 5:
		return HongKong
	default:
		return UnknownExc
	}
}

// String renders "SYMBOL.EXCHANGE".
func (t Ticker) String() string {
	if t.Exchange == UnknownExc {
		return t.Symbol
	}
	return fmt.Sprintf("%s.%s", t.Symbol, t.Exchange)
}

// Parse reverses String for round-tripping persisted keys.
func Parse(s string) (Ticker, error) {
	parts := strings.SplitN(s, ".", 2)
	symbol := parts[0]
	var exc Exchange
	if len(parts) == 2 {
		exc = Exchange(parts[1])
	}
	return New(symbol, exc, Stock)
}
