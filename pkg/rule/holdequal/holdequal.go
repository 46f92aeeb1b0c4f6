// Package holdequal implements the "holdequal" reference rule: rebalance
// to the fund definition's static weights every time it runs. Grounded
// on original_source/src/rule/hold_equal.rs, ported to the registry
// contract rather than transliterated.
package holdequal

import (
	"context"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/event"
	"github.com/CCAtAlvis/vfunds/pkg/fundctx"
	"github.com/CCAtAlvis/vfunds/pkg/rule"
)

func init() {
	rule.Register("holdequal", New)
}

// HoldEqual rebalances a fund to its FundDefinition.Weights on every
// Exec, regardless of how the weights are distributed between ticker
// entries (despite the name, weights need not be literally equal — the
// fund definition supplies them; this rule just enforces them).
type HoldEqual struct {
	spec rule.Spec
}

// New constructs a HoldEqual rule instance.
func New(spec rule.Spec) (rule.Rule, error) {
	return &HoldEqual{spec: spec}, nil
}

func (h *HoldEqual) Definition() *rule.Spec { return &h.spec }

func (h *HoldEqual) Exec(ctx context.Context, fc *fundctx.Context, date time.Time, bus *event.Bus) error {
	targets := make([]fundctx.Target, 0, len(fc.Fund.Weights))
	for t, w := range fc.Fund.Weights {
		targets = append(targets, fundctx.Target{Ticker: t, Weight: w})
	}
	return fc.Rebalance(ctx, targets, date)
}
