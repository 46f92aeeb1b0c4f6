// Package backtest holds the data-model types shared across the
// simulation engine (options, fund/FoF definitions, and the result
// envelope) from spec.md §3, so pkg/fundctx, pkg/simulator, pkg/fof and
// pkg/cv can all depend on one small, dependency-light package instead
// of each other.
package backtest

import (
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/fee"
)

// Options is spec.md §3's BacktestOptions.
type Options struct {
	InitCash          float64
	StartDate         time.Time
	EndDate           time.Time // inclusive
	RiskFreeRate      float64
	Fees              fee.Schedule // stamp_duty_* + broker_commission_*
	BufferRatio       float64      // in [0,1)
	PositionTolerance float64      // >= 0
	Pessimistic       bool
}

// Validate checks the synchronous, fatal-before-spawn conditions named
// in spec.md §7: "end_date <= start_date, invalid weight, unknown rule
// name, buffer_ratio not in [0,1)". Weight/rule-name validation is done
// by the caller (FundDefinition.Validate / rule.Build) since Options
// alone doesn't carry them.
func (o Options) Validate() error {
	if !o.EndDate.After(o.StartDate) {
		return invalidErr("backtest_options", "end_date must be after start_date")
	}
	if o.BufferRatio < 0 || o.BufferRatio >= 1 {
		return invalidErr("backtest_options", "buffer_ratio must be in [0,1)")
	}
	if o.PositionTolerance < 0 {
		return invalidErr("backtest_options", "position_tolerance must be >= 0")
	}
	return nil
}
