// Package fundctx implements spec.md §4.4's Fund Context: the owner of
// a mutable Portfolio plus the fund's BacktestOptions/FundDefinition,
// exposing the trading primitives rules call. Grounded on backgommon's
// pkg/portfolio.Portfolio.ProcessOrder/handleEntryOrder/handleExitOrder
// for the "validate, then mutate cash, then append to history" shape,
// and on aristath-sentinel's rebalancing service (see
// other_examples/8723c3fc_aristath-sentinel__...-rebalancing-service.go)
// for the "compute deltas against current holdings, accrue two-sided
// costs" shape used by Rebalance.
package fundctx

import (
	"context"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/backtest"
	"github.com/CCAtAlvis/vfunds/pkg/event"
	"github.com/CCAtAlvis/vfunds/pkg/marketdata"
	"github.com/CCAtAlvis/vfunds/pkg/portfolio"
	"github.com/CCAtAlvis/vfunds/pkg/series"
	"github.com/CCAtAlvis/vfunds/pkg/ticker"
)

// DefaultAdjustMode is the dividend-adjustment mode klines are fetched
// with when a rule doesn't ask for a specific one — forward-adjusted
// prices are the glossary's documented default for return math.
const DefaultAdjustMode = marketdata.AdjustForward

// QuoteFields names the logical column names fundctx reads from each
// ticker's kline Table for close/high/low. Defaults match the field
// names a vendor decoder would normally map onto via series.MapField.
var QuoteFields = struct{ Close, High, Low string }{"close", "high", "low"}

// Context is the mutable state a single fund simulation carries through
// its calendar loop: the portfolio, the backtest options, the fund
// definition (for target weights used by CashDeployFree), the set of
// dates an order was placed, and the per-ticker kline series rules
// trade against.
type Context struct {
	Portfolio  *portfolio.Portfolio
	Options    backtest.Options
	Fund       *backtest.FundDefinition
	OrderDates map[time.Time]struct{}
	Klines     map[ticker.Ticker]*series.Table
	Source     marketdata.Source
	Bus        *event.Bus
	Title      string
}

// New builds a Context with a freshly funded Portfolio.
func New(fund *backtest.FundDefinition, opts backtest.Options, klines map[ticker.Ticker]*series.Table, source marketdata.Source, bus *event.Bus) *Context {
	return &Context{
		Portfolio:  portfolio.New(opts.InitCash),
		Options:    opts,
		Fund:       fund,
		OrderDates: make(map[time.Time]struct{}),
		Klines:     klines,
		Source:     source,
		Bus:        bus,
		Title:      fund.Title,
	}
}

// EnsureKline lazily fetches and caches t's kline series over
// [from,to] if it is not already present, so rules that scan a wider
// ticker universe (e.g. holdtopn) than the fund's declared weights can
// pull in candidate series on demand.
func (c *Context) EnsureKline(ctx context.Context, t ticker.Ticker, from, to time.Time) (*series.Table, error) {
	if tbl, ok := c.Klines[t]; ok {
		return tbl, nil
	}
	tbl, err := c.Source.Kline(ctx, t, from, to, DefaultAdjustMode)
	if err != nil {
		return nil, err
	}
	c.Klines[t] = tbl
	return tbl, nil
}

// recordOrder marks d as an order date; spec.md §3's "Order events are
// idempotent w.r.t. order_dates (set)".
func (c *Context) recordOrder(d time.Time) {
	c.OrderDates[d] = struct{}{}
}

// OrderDatesSorted returns the recorded order dates in ascending order.
func (c *Context) OrderDatesSorted() []time.Time {
	out := make([]time.Time, 0, len(c.OrderDates))
	for d := range c.OrderDates {
		out = append(out, d)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Before(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// closePrice returns t's close price on d.
func (c *Context) closePrice(t ticker.Ticker, d time.Time) (float64, bool) {
	tbl, ok := c.Klines[t]
	if !ok {
		return 0, false
	}
	v, ok := series.GetValue[float64](tbl, d, QuoteFields.Close)
	return v, ok
}

// ClosePriceAt exposes closePrice for callers outside the package
// (pkg/simulator's final-positions-value snapshot).
func (c *Context) ClosePriceAt(t ticker.Ticker, d time.Time) (float64, bool) {
	return c.closePrice(t, d)
}

// buyPrice returns the price a buy fills at on d, per spec.md §4.4's
// price-type policy: pessimistic mode uses the day's high, else the
// day's mid (midpoint of high/low).
func (c *Context) buyPrice(t ticker.Ticker, d time.Time) (float64, bool) {
	tbl, ok := c.Klines[t]
	if !ok {
		return 0, false
	}
	if c.Options.Pessimistic {
		return series.GetValue[float64](tbl, d, QuoteFields.High)
	}
	return c.midPrice(tbl, d)
}

// sellPrice returns the price a sell fills at on d: pessimistic mode
// uses the day's low, else the day's mid.
func (c *Context) sellPrice(t ticker.Ticker, d time.Time) (float64, bool) {
	tbl, ok := c.Klines[t]
	if !ok {
		return 0, false
	}
	if c.Options.Pessimistic {
		return series.GetValue[float64](tbl, d, QuoteFields.Low)
	}
	return c.midPrice(tbl, d)
}

func (c *Context) midPrice(tbl *series.Table, d time.Time) (float64, bool) {
	high, ok := series.GetValue[float64](tbl, d, QuoteFields.High)
	if !ok {
		return 0, false
	}
	low, ok := series.GetValue[float64](tbl, d, QuoteFields.Low)
	if !ok {
		return 0, false
	}
	return (high + low) / 2, true
}

// TotalEquity computes spec.md §3's total_equity(d): free cash plus
// reserved cash plus suspended cash (positions parked by Suspend keep
// their value on the books even though Portfolio.Positions() is empty
// while suspended) plus the close-priced value of every held position.
// Returns ok=false if any held ticker is missing a close price on d
// (spec.md §3: "missing data raises NoData").
func (c *Context) TotalEquity(d time.Time) (float64, bool) {
	total := c.Portfolio.FreeCash()
	for _, r := range c.Portfolio.ReservedCash() {
		total += r.Cash
	}
	for _, cash := range c.Portfolio.SuspendedCash() {
		total += cash
	}
	for t, units := range c.Portfolio.Positions() {
		price, ok := c.closePrice(t, d)
		if !ok {
			return 0, false
		}
		total += float64(units) * price
	}
	return total, true
}
