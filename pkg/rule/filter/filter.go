// Package filter implements composable ticker predicates a rule can
// apply when expanding a TickerSource (holdtopn's universe ranking,
// index-constituent sources). Supplemented from
// original_source/src/filter/{filter_delisted,filter_market_cap,filter_st}.rs
// — the distilled spec.md does not name these, but they do not
// contradict any Non-goal, so they are ported here as Go predicates.
package filter

import (
	"context"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/marketdata"
	"github.com/CCAtAlvis/vfunds/pkg/ticker"
)

// Predicate reports whether t passes the filter as of date.
type Predicate func(ctx context.Context, t ticker.Ticker, date time.Time) (bool, error)

// Delisted rejects tickers flagged delisted by src, grounded on
// filter_delisted.rs.
func Delisted(src marketdata.Source) Predicate {
	return func(ctx context.Context, t ticker.Ticker, date time.Time) (bool, error) {
		delisted, err := src.DelistFlags(ctx, t)
		if err != nil {
			return false, err
		}
		return !delisted, nil
	}
}

// NotST rejects tickers under special-treatment status as of date,
// grounded on filter_st.rs.
func NotST(src marketdata.Source) Predicate {
	return func(ctx context.Context, t ticker.Ticker, date time.Time) (bool, error) {
		st, err := src.STFlags(ctx, t, date)
		if err != nil {
			return false, err
		}
		return !st, nil
	}
}

// MarketCapFloor rejects tickers whose latest value of capField (in the
// ticker's capital-structure series, as of date) is below minCap,
// grounded on filter_market_cap.rs.
func MarketCapFloor(src marketdata.Source, capField string, minCap float64) Predicate {
	return func(ctx context.Context, t ticker.Ticker, date time.Time) (bool, error) {
		tbl, err := src.CapitalStructure(ctx, t, date.AddDate(-1, 0, 0), date)
		if err != nil {
			return false, err
		}
		_, cap, ok := latestFloat(tbl, date, capField)
		if !ok {
			return false, nil
		}
		return cap >= minCap, nil
	}
}

// All composes predicates with AND-short-circuit, stopping at the first
// failing predicate or error.
func All(predicates ...Predicate) Predicate {
	return func(ctx context.Context, t ticker.Ticker, date time.Time) (bool, error) {
		for _, p := range predicates {
			ok, err := p(ctx, t, date)
			if err != nil || !ok {
				return ok, err
			}
		}
		return true, nil
	}
}

// Any composes predicates with OR-short-circuit.
func Any(predicates ...Predicate) Predicate {
	return func(ctx context.Context, t ticker.Ticker, date time.Time) (bool, error) {
		for _, p := range predicates {
			ok, err := p(ctx, t, date)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	}
}
