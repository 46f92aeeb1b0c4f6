package backtest

import (
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/metrics"
	"github.com/CCAtAlvis/vfunds/pkg/ticker"
)

// ValueAt is one equity-curve sample (spec.md §3's trade_dates_value).
type ValueAt struct {
	Date  time.Time
	Value float64
}

// Result is spec.md §3's BacktestResult.
type Result struct {
	Title               string
	Options             Options
	FinalCash           float64
	FinalPositionsValue map[ticker.Ticker]float64
	Metrics             metrics.Summary
	OrderDates          []time.Time
	TradeDatesValue     []ValueAt
}
