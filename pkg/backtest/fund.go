package backtest

import (
	"github.com/CCAtAlvis/vfunds/pkg/ticker"
)

// FundOptions is spec.md §3's FundDefinition.FundOptions.
type FundOptions struct {
	SuspendMonths     map[int]struct{} // subset of 1..12
	BufferRatio       float64
	PositionTolerance float64
}

// SuspendedAt reports whether month (1..12) is a suspend month.
func (o FundOptions) SuspendedAt(month int) bool {
	_, ok := o.SuspendMonths[month]
	return ok
}

// FundDefinition is spec.md §3's FundDefinition.
type FundDefinition struct {
	Title   string
	Weights map[ticker.Ticker]float64
	Sources []ticker.Source
	Rules   []RuleSpec
	Options FundOptions
	Search  *SearchSpec
}

// Validate checks the fatal-before-spawn conditions that live on the
// definition itself: negative weight, unknown rule frequency. Unknown
// rule names are rejected by rule.Build when the simulator validates.
// buffer_ratio/position_tolerance are validated by Options.Validate;
// FundOptions carries its own copies of them, but the simulator and
// fundctx read only the Options values (of FundOptions, only
// SuspendMonths is used).
func (f FundDefinition) Validate() error {
	for t, w := range f.Weights {
		if w < 0 {
			return invalidErr("fund_definition", "negative weight for "+t.String())
		}
	}
	for _, r := range f.Rules {
		if !r.Frequency.Valid() {
			return invalidErr("fund_definition", "unknown frequency for rule "+r.Name)
		}
	}
	return nil
}

// FofDefinition is spec.md §3's FofDefinition.
type FofDefinition struct {
	Title     string
	Weights   map[string]float64 // fund_name -> weight
	Frequency Frequency
	Search    *FofSearchSpec
}

// SearchSpec is spec.md §3's per-fund SearchSpec: per-rule frequency
// candidates and per-rule option candidates, expanded by pkg/cv into a
// Cartesian-product grid.
type SearchSpec struct {
	// RuleFrequencies maps a rule name to the frequency candidates to
	// try for it.
	RuleFrequencies map[string][]Frequency
	// RuleOptions maps a rule name to a set of named-option candidate
	// lists, e.g. {"n": [5, 10, 20]}.
	RuleOptions map[string]map[string][]any
}

// FofSearchSpec is the FoF analogue: per-fund weight candidates and a
// shared frequency candidate list.
type FofSearchSpec struct {
	FundWeights     map[string][]float64
	FrequencyChoice []Frequency
}
