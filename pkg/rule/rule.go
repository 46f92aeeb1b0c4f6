// Package rule defines the pluggable strategy contract from spec.md
// §4.5: a rule reads fund context state and market data and issues
// orders only through fundctx primitives, never by mutating the
// portfolio directly. Grounded on backgommon's pkg/interfaces.Strategy
// (OnTick/SetPortfolio callback shape) and pkg/interfaces.Indicator
// (Name()/Dependencies() registry-free style), generalized into a
// name-registered constructor map since spec.md's rule catalogue is
// open-ended and user-declared by name in a FundDefinition.
package rule

import (
	"context"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/backtest"
	"github.com/CCAtAlvis/vfunds/pkg/event"
	"github.com/CCAtAlvis/vfunds/pkg/fundctx"
)

// Spec aliases backtest.RuleSpec. It lives on backtest instead of here
// because FundDefinition (pkg/backtest) needs it and this package
// depends on pkg/fundctx, which depends on pkg/backtest — aliasing
// avoids that cycle while keeping the rule.Spec call-site name.
type Spec = backtest.RuleSpec

// Rule is a value with mutable state implementing a trading strategy.
// Rules are purely advisory (spec.md §4.5): they manipulate portfolio
// state only through fundctx.Context primitives.
type Rule interface {
	Exec(ctx context.Context, fc *fundctx.Context, date time.Time, bus *event.Bus) error
	Definition() *Spec
}

// Option reads a named scalar from spec.Options with a default, per
// spec.md §9's "typed record constructed by the rule's constructor from
// a map<string, scalar> with explicit defaults" guidance.
func Option[T any](spec *Spec, name string, def T) T {
	raw, ok := spec.Options[name]
	if !ok {
		return def
	}
	if v, ok := raw.(T); ok {
		return v
	}
	// Tolerate numeric literals parsed as float64 (common for
	// TOML/JSON option blocks) when T is an int-like type.
	if f, ok := raw.(float64); ok {
		switch any(def).(type) {
		case int:
			return any(int(f)).(T)
		case int64:
			return any(int64(f)).(T)
		}
	}
	return def
}
