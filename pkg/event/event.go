// Package event defines the tagged-union events a fund simulation emits
// while it runs (orders, diagnostics, progress, final results) and the
// bounded channel they travel over. Grounded on backgommon's
// pkg/interfaces.Broker callback style, generalized from direct callback
// invocation to a channel so a caller can select/drain at its own pace
// and a FoF composer can multiplex many child funds onto one consumer.
package event

import (
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/ticker"
)

// Kind tags the concrete payload carried by an Event.
type Kind string

const (
	KindBuy     Kind = "buy"
	KindSell    Kind = "sell"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
	KindToast   Kind = "toast"
	KindResult  Kind = "result"
	KindError   Kind = "error"
)

// Event is the single type carried on the bus; exactly one of the
// payload fields is populated, selected by Kind.
type Event struct {
	Kind   Kind
	Source string // fund/rule name that produced the event
	Time   time.Time

	Order   *OrderPayload
	Message string // Info/Warning/Toast
	Result  any    // backtest.Result value from a fund simulator or FoF composer, kept as any to avoid an import cycle
	Err     error
}

// OrderPayload describes a single fill, for Buy and Sell events.
type OrderPayload struct {
	Ticker ticker.Ticker
	Date   time.Time
	Shares uint64
	Price  float64
	Value  float64
	Fee    float64
	Reason string // name of the fundctx primitive that placed the order
}

func Buy(source string, at time.Time, o OrderPayload) Event {
	return Event{Kind: KindBuy, Source: source, Time: at, Order: &o}
}

func Sell(source string, at time.Time, o OrderPayload) Event {
	return Event{Kind: KindSell, Source: source, Time: at, Order: &o}
}

func Info(source string, at time.Time, msg string) Event {
	return Event{Kind: KindInfo, Source: source, Time: at, Message: msg}
}

func Warning(source string, at time.Time, msg string) Event {
	return Event{Kind: KindWarning, Source: source, Time: at, Message: msg}
}

func Toast(source string, at time.Time, msg string) Event {
	return Event{Kind: KindToast, Source: source, Time: at, Message: msg}
}

func Result(source string, at time.Time, result any) Event {
	return Event{Kind: KindResult, Source: source, Time: at, Result: result}
}

func Error(source string, at time.Time, err error) Event {
	return Event{Kind: KindError, Source: source, Time: at, Err: err}
}
