// Package cv implements spec.md §4.8's cross-validation driver: search
// mode (grid search over a FundDefinition's SearchSpec) and window mode
// (rolling/half-overlap sub-windows), both run through pkg/simulator and
// scored via pkg/metrics.ScoreCVResults. Grounded on backgommon's
// pkg/runner parameter-sweep idiom (table-driven Options variants fed
// through the same Runner), generalized to a Cartesian-product grid.
package cv

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/backtest"
	"github.com/CCAtAlvis/vfunds/pkg/event"
	"github.com/CCAtAlvis/vfunds/pkg/marketdata"
	"github.com/CCAtAlvis/vfunds/pkg/metrics"
	"github.com/CCAtAlvis/vfunds/pkg/rule"
	"github.com/CCAtAlvis/vfunds/pkg/simulator"
)

// ProgressInterval is the default cadence of progress Info events
// during a search or window run (spec.md §4.8: "PROGRESS_INTERVAL_SECS
// (default 1 s)").
const ProgressInterval = time.Second

// CvOptions is spec.md §4.8's shared cross-validation configuration.
type CvOptions struct {
	Base          backtest.Options
	StartDates    []time.Time
	MinWindowDays int
	Search        bool
	Window        bool
}

// variant is one rule's candidate (frequency, options) pair within a
// grid point.
type variant struct {
	name      string
	frequency rule.Frequency
	options   map[string]any
}

// GridCandidate is one grid point's per-start-date results plus its
// aggregate score.
type GridCandidate struct {
	Rules      []backtest.RuleSpec
	ByStart    map[time.Time]metrics.Summary
	Score      float64
	NearBest   bool
}

// Search expands fund.Search (if present) into a Cartesian-product grid
// of rule (frequency, options) variants, runs a full backtest for every
// grid point × every cv.StartDates entry, scores each grid point with
// metrics.ScoreCVResults, and streams a ranking over bus. Progress Info
// events fire at most once per ProgressInterval.
func Search(ctx context.Context, fund *backtest.FundDefinition, cv CvOptions, source marketdata.Source, bus *event.Bus) ([]GridCandidate, error) {
	grid := expandGrid(fund)
	if len(grid) == 0 {
		grid = [][]variant{nil}
	}
	if len(cv.StartDates) == 0 {
		cv.StartDates = []time.Time{cv.Base.StartDate}
	}

	candidates := make([]GridCandidate, 0, len(grid))
	lastProgress := time.Time{}
	total := len(grid) * len(cv.StartDates)
	done := 0

	for _, combo := range grid {
		rules := applyVariants(fund.Rules, combo)
		byStart := make(map[time.Time]metrics.Summary, len(cv.StartDates))
		var summaries []metrics.Summary

		for _, start := range cv.StartDates {
			opts := cv.Base
			opts.StartDate = start
			child := *fund
			child.Rules = rules
			sim := simulator.New(simulator.WithDefinition(&child), simulator.WithOptions(opts), simulator.WithMarketData(source))
			result, err := runOnce(ctx, sim, bus)
			if err != nil {
				return nil, err
			}
			byStart[start] = result.Metrics
			summaries = append(summaries, result.Metrics)

			done++
			if now := progressNow(); now.Sub(lastProgress) >= ProgressInterval {
				_ = bus.Publish(ctx, event.Info("cv", now, fmt.Sprintf("search progress: %d/%d", done, total)))
				lastProgress = now
			}
		}

		candidates = append(candidates, GridCandidate{
			Rules:   rules,
			ByStart: byStart,
			Score:   metrics.ScoreCVResults(summaries),
		})
	}

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })
	if len(candidates) > 0 {
		best := candidates[0].Score
		for i := range candidates {
			if best != 0 && (best-candidates[i].Score)/absFloat(best) <= 0.01 {
				candidates[i].NearBest = true
			}
		}
	}

	for i, c := range candidates {
		tag := ""
		if c.NearBest && i > 0 {
			tag = " (≈ Best)"
		} else if i == 0 {
			tag = " (Best)"
		}
		_ = bus.Publish(ctx, event.Info("cv", progressNow(), fmt.Sprintf("rank %d: score=%.4f%s", i+1, c.Score, tag)))
	}

	return candidates, nil
}

func runOnce(ctx context.Context, sim *simulator.Simulator, bus *event.Bus) (backtest.Result, error) {
	childBus, err := sim.Run(ctx)
	if err != nil {
		return backtest.Result{}, err
	}
	var result backtest.Result
	for ev := range childBus.Events() {
		_ = bus.Publish(ctx, ev)
		switch ev.Kind {
		case event.KindResult:
			if r, ok := ev.Result.(backtest.Result); ok {
				result = r
			}
		case event.KindError:
			return backtest.Result{}, ev.Err
		}
	}
	return result, nil
}

// expandGrid builds every (frequency, options) combination fund.Search
// names, per rule, then takes the Cartesian product across rules.
func expandGrid(fund *backtest.FundDefinition) [][]variant {
	if fund.Search == nil {
		return nil
	}
	names := make(map[string]struct{})
	for name := range fund.Search.RuleFrequencies {
		names[name] = struct{}{}
	}
	for name := range fund.Search.RuleOptions {
		names[name] = struct{}{}
	}
	if len(names) == 0 {
		return nil
	}

	var perRule [][]variant
	for name := range names {
		perRule = append(perRule, ruleVariants(name, fund.Search))
	}
	return cartesianVariants(perRule)
}

func ruleVariants(name string, search *backtest.SearchSpec) []variant {
	freqs := search.RuleFrequencies[name]
	if len(freqs) == 0 {
		freqs = []backtest.Frequency{""} // "" means "keep original"
	}
	optionSets := optionCombos(search.RuleOptions[name])

	var out []variant
	for _, f := range freqs {
		for _, opts := range optionSets {
			out = append(out, variant{name: name, frequency: f, options: opts})
		}
	}
	return out
}

// optionCombos returns the Cartesian product of each option's candidate
// list, e.g. {"n": [5,10]} -> [{n:5}, {n:10}].
func optionCombos(choices map[string][]any) []map[string]any {
	if len(choices) == 0 {
		return []map[string]any{nil}
	}
	names := make([]string, 0, len(choices))
	for name := range choices {
		names = append(names, name)
	}
	sort.Strings(names)

	combos := []map[string]any{{}}
	for _, name := range names {
		var next []map[string]any
		for _, base := range combos {
			for _, v := range choices[name] {
				m := make(map[string]any, len(base)+1)
				for k, bv := range base {
					m[k] = bv
				}
				m[name] = v
				next = append(next, m)
			}
		}
		combos = next
	}
	return combos
}

func cartesianVariants(perRule [][]variant) [][]variant {
	combos := [][]variant{nil}
	for _, choices := range perRule {
		var next [][]variant
		for _, base := range combos {
			for _, v := range choices {
				combo := make([]variant, len(base), len(base)+1)
				copy(combo, base)
				combo = append(combo, v)
				next = append(next, combo)
			}
		}
		combos = next
	}
	return combos
}

func applyVariants(rules []backtest.RuleSpec, combo []variant) []backtest.RuleSpec {
	out := make([]backtest.RuleSpec, len(rules))
	copy(out, rules)
	for _, v := range combo {
		for i, r := range out {
			if r.Name != v.name {
				continue
			}
			if v.frequency != "" {
				r.Frequency = v.frequency
			}
			if len(v.options) > 0 {
				merged := make(map[string]any, len(r.Options)+len(v.options))
				for k, val := range r.Options {
					merged[k] = val
				}
				for k, val := range v.options {
					merged[k] = val
				}
				r.Options = merged
			}
			out[i] = r
		}
	}
	return out
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// progressNow stands in for time.Now() at call sites that need a
// timestamp for a progress event; it is its own function so a future
// caller needing deterministic progress timestamps (tests) can swap it.
var progressNow = time.Now
