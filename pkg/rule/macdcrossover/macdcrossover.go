// Package macdcrossover implements the "macdcrossover" reference rule:
// hold a ticker at its fund-declared weight while its MACD line is
// above its signal line, and flat otherwise. The MACD math itself
// lives in pkg/indicators; this package only pulls closes out of a
// series.Table and turns the crossover into rebalance targets.
package macdcrossover

import (
	"context"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/event"
	"github.com/CCAtAlvis/vfunds/pkg/fundctx"
	"github.com/CCAtAlvis/vfunds/pkg/indicators"
	"github.com/CCAtAlvis/vfunds/pkg/rule"
	"github.com/CCAtAlvis/vfunds/pkg/series"
)

func init() {
	rule.Register("macdcrossover", New)
}

// MACDCrossover holds each fund ticker at its declared weight while its
// MACD line is above its signal line, flat otherwise.
type MACDCrossover struct {
	spec         rule.Spec
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
	lookbackDays int
}

// New constructs a MACDCrossover rule, reading "fast_period" (default
// 12), "slow_period" (default 26), "signal_period" (default 9) and
// "lookback_days" (default 180, how many calendar days of klines
// EnsureKline fetches for a ticker not yet loaded) from spec.Options.
// The MACD is computed over every loaded close up to the rule date.
func New(spec rule.Spec) (rule.Rule, error) {
	return &MACDCrossover{
		spec:         spec,
		fastPeriod:   rule.Option(&spec, "fast_period", 12),
		slowPeriod:   rule.Option(&spec, "slow_period", 26),
		signalPeriod: rule.Option(&spec, "signal_period", 9),
		lookbackDays: rule.Option(&spec, "lookback_days", 180),
	}, nil
}

func (m *MACDCrossover) Definition() *rule.Spec { return &m.spec }

func (m *MACDCrossover) Exec(ctx context.Context, fc *fundctx.Context, date time.Time, bus *event.Bus) error {
	macd := indicators.NewMACD(m.fastPeriod, m.slowPeriod, m.signalPeriod)

	var targets []fundctx.Target
	for t, weight := range fc.Fund.Weights {
		tbl, err := fc.EnsureKline(ctx, t, date.AddDate(0, 0, -m.lookbackDays), date)
		if err != nil {
			continue
		}
		closes := closesThrough(tbl, date)
		macdLine, signalLine, ok := latestCrossover(macd, closes)
		if !ok {
			continue
		}
		if macdLine > signalLine {
			targets = append(targets, fundctx.Target{Ticker: t, Weight: weight})
		}
	}
	return fc.Rebalance(ctx, targets, date)
}

func closesThrough(tbl *series.Table, date time.Time) []float64 {
	dated := series.GetValues[float64](tbl, time.Time{}, date, "close")
	out := make([]float64, len(dated))
	for i, dv := range dated {
		out[i] = dv.Value
	}
	return out
}

// latestCrossover returns the most recent MACD line and signal line
// values, or ok=false if there isn't enough history yet.
func latestCrossover(macd *indicators.MACD, closes []float64) (macdLine, signalLine float64, ok bool) {
	if len(closes) == 0 {
		return 0, 0, false
	}
	values := macd.Calculate(closes)
	mv, ok := values[len(values)-1].(indicators.MACDValue)
	if !ok {
		return 0, 0, false
	}
	return mv.Value(), mv.Signal(), true
}
