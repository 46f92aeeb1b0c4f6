// Package holdtopn implements the "holdtopn" reference rule: rank a
// ticker universe by a score and hold the top N equally weighted.
// Grounded on original_source/src/rule/hold_topn_equal.rs. The score
// function defaults to trailing momentum (close today vs close
// lookback_days ago) but is pluggable via Scorer for callers assembling
// a rule programmatically rather than from a TOML options block.
package holdtopn

import (
	"context"
	"sort"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/event"
	"github.com/CCAtAlvis/vfunds/pkg/fundctx"
	"github.com/CCAtAlvis/vfunds/pkg/indicators"
	"github.com/CCAtAlvis/vfunds/pkg/marketdata"
	"github.com/CCAtAlvis/vfunds/pkg/rule"
	"github.com/CCAtAlvis/vfunds/pkg/rule/filter"
	"github.com/CCAtAlvis/vfunds/pkg/series"
	"github.com/CCAtAlvis/vfunds/pkg/ticker"
)

func init() {
	rule.Register("holdtopn", New)
}

// Scorer ranks a candidate ticker as of date; higher is better.
type Scorer func(ctx context.Context, fc *fundctx.Context, t ticker.Ticker, date time.Time, lookbackDays int) (float64, bool)

// HoldTopN holds the top N tickers of its universe, equally weighted,
// re-ranked every Exec.
type HoldTopN struct {
	spec         rule.Spec
	n            int
	lookbackDays int
	Scorer       Scorer

	// Filter, if set, is applied to each universe candidate before
	// scoring; a candidate failing it is dropped regardless of score.
	// Callers assembling the rule programmatically can compose
	// pkg/rule/filter predicates here (e.g. filter.All(filter.Delisted(src),
	// filter.NotST(src))) to keep delisted or ST-flagged tickers out of
	// contention.
	Filter filter.Predicate
}

// New constructs a HoldTopN rule instance, reading "n" (default 5) and
// "lookback_days" (default 20) from spec.Options.
func New(spec rule.Spec) (rule.Rule, error) {
	return &HoldTopN{
		spec:         spec,
		n:            rule.Option(&spec, "n", 5),
		lookbackDays: rule.Option(&spec, "lookback_days", 20),
		Scorer:       momentumScore,
	}, nil
}

func (h *HoldTopN) Definition() *rule.Spec { return &h.spec }

func (h *HoldTopN) Exec(ctx context.Context, fc *fundctx.Context, date time.Time, bus *event.Bus) error {
	universe, err := h.universe(ctx, fc, date)
	if err != nil {
		return err
	}

	type scored struct {
		t     ticker.Ticker
		score float64
	}
	var candidates []scored
	for _, t := range universe {
		if h.Filter != nil {
			pass, err := h.Filter(ctx, t, date)
			if err != nil || !pass {
				continue
			}
		}
		if _, err := fc.EnsureKline(ctx, t, date.AddDate(0, 0, -h.lookbackDays*2), date); err != nil {
			continue
		}
		score, ok := h.Scorer(ctx, fc, t, date, h.lookbackDays)
		if !ok {
			continue
		}
		candidates = append(candidates, scored{t: t, score: score})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > h.n {
		candidates = candidates[:h.n]
	}

	targets := make([]fundctx.Target, len(candidates))
	for i, c := range candidates {
		targets[i] = fundctx.Target{Ticker: c.t, Weight: 1}
	}
	return fc.Rebalance(ctx, targets, date)
}

func (h *HoldTopN) universe(ctx context.Context, fc *fundctx.Context, date time.Time) ([]ticker.Ticker, error) {
	if len(fc.Fund.Sources) == 0 {
		out := make([]ticker.Ticker, 0, len(fc.Fund.Weights))
		for t := range fc.Fund.Weights {
			out = append(out, t)
		}
		return out, nil
	}
	var out []ticker.Ticker
	cp := marketdata.ConstituentAdapter{Source: fc.Source}
	for _, src := range fc.Fund.Sources {
		tickers, err := src.Expand(ctx, date, cp)
		if err != nil {
			return nil, err
		}
		out = append(out, tickers...)
	}
	return out, nil
}

func momentumScore(ctx context.Context, fc *fundctx.Context, t ticker.Ticker, date time.Time, lookbackDays int) (float64, bool) {
	tbl, err := fc.EnsureKline(ctx, t, date.AddDate(0, 0, -lookbackDays*2), date)
	if err != nil {
		return 0, false
	}
	_, latest, ok := series.GetLatestValue[float64](tbl, date, true, "close")
	if !ok {
		return 0, false
	}
	past := date.AddDate(0, 0, -lookbackDays)
	_, base, ok := series.GetLatestValue[float64](tbl, past, true, "close")
	if !ok || base == 0 {
		return 0, false
	}
	return latest/base - 1, true
}

// SMACrossoverScore ranks a ticker by how far its latest close sits
// above its trailing lookbackDays-period simple moving average,
// expressed as a fraction of the average. Set HoldTopN.Scorer to this
// to rank by trend strength relative to the SMA instead of raw
// momentum.
func SMACrossoverScore(ctx context.Context, fc *fundctx.Context, t ticker.Ticker, date time.Time, lookbackDays int) (float64, bool) {
	tbl, err := fc.EnsureKline(ctx, t, date.AddDate(0, 0, -lookbackDays*2), date)
	if err != nil {
		return 0, false
	}
	dated := series.GetValues[float64](tbl, time.Time{}, date, "close")
	if len(dated) == 0 {
		return 0, false
	}
	closes := make([]float64, len(dated))
	for i, dv := range dated {
		closes[i] = dv.Value
	}

	sma := indicators.NewSMA(lookbackDays)
	values := sma.Calculate(closes)
	avg, ok := values[len(values)-1].(float64)
	if !ok || avg == 0 {
		return 0, false
	}
	latest := closes[len(closes)-1]
	return latest/avg - 1, true
}
