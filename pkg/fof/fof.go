// Package fof implements spec.md §4.7's FoF (fund-of-funds) composer:
// run several child fund simulations concurrently, project each one's
// equity curve onto a standardized basis, and rebalance the composite
// periodically. Grounded on golang.org/x/sync/errgroup's fan-out/join
// shape (as used in penny-vault-pv-data's downloadTiingoEODQuotes
// family) for the concurrent child-fund run, and on backgommon's event
// forwarding for the per-child event tagging by fund name.
package fof

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/backtest"
	"github.com/CCAtAlvis/vfunds/pkg/event"
	"github.com/CCAtAlvis/vfunds/pkg/marketdata"
	"github.com/CCAtAlvis/vfunds/pkg/metrics"
	"github.com/CCAtAlvis/vfunds/pkg/simulator"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Composer runs a FofDefinition's child funds concurrently and
// recomposes their equity curves under periodic rebalancing.
type Composer struct {
	Definition *backtest.FofDefinition
	Funds      map[string]*backtest.FundDefinition // fund name -> definition
	Options    backtest.Options
	Source     marketdata.Source
}

// childResult holds one child fund's standardized equity curve and
// order dates once its simulation has completed.
type childResult struct {
	name   string
	weight float64
	curve  []backtest.ValueAt
	orders map[time.Time]struct{}
}

// Run executes every weighted child fund concurrently, then folds their
// equity curves together per spec.md §4.7, streaming per-child events
// (tagged by child fund name, exactly as each child simulator produced
// them) plus the composer's own Info/Result events over bus.
func (c *Composer) Run(ctx context.Context, bus *event.Bus) error {
	names := make([]string, 0, len(c.Definition.Weights))
	for name, w := range c.Definition.Weights {
		if w <= 0 {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]childResult, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		fund, ok := c.Funds[name]
		if !ok {
			return fmt.Errorf("fof: unknown child fund %q", name)
		}
		g.Go(func() error {
			sim := simulator.New(
				simulator.WithDefinition(fund),
				simulator.WithOptions(c.Options),
				simulator.WithMarketData(c.Source),
			)
			childBus, err := sim.Run(gctx)
			if err != nil {
				return err
			}
			orders := make(map[time.Time]struct{})
			var curve []backtest.ValueAt
			for ev := range childBus.Events() {
				tagged := ev
				tagged.Source = name
				_ = bus.Publish(gctx, tagged)
				switch ev.Kind {
				case event.KindResult:
					if r, ok := ev.Result.(backtest.Result); ok {
						curve = r.TradeDatesValue
						for _, d := range r.OrderDates {
							orders[d] = struct{}{}
						}
					}
				case event.KindError:
					return ev.Err
				}
			}
			results[i] = childResult{name: name, weight: c.Definition.Weights[name], curve: curve, orders: orders}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		_ = bus.Publish(ctx, event.Error("fof", time.Now(), err))
		return err
	}

	log.Info().Int("children", len(names)).Msg("fof: all child funds complete")

	byDate := make(map[time.Time]map[string]float64)
	var dates []time.Time
	seen := make(map[time.Time]bool)
	for _, r := range results {
		for _, vd := range r.curve {
			if _, ok := byDate[vd.Date]; !ok {
				byDate[vd.Date] = make(map[string]float64)
			}
			byDate[vd.Date][r.name] = vd.Value
			if !seen[vd.Date] {
				seen[vd.Date] = true
				dates = append(dates, vd.Date)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	var totalWeight float64
	for _, r := range results {
		totalWeight += r.weight
	}

	periodDays := c.Definition.Frequency.Days()

	var (
		startStandard = make(map[string]float64)
		startValue    = make(map[string]float64)
		periodStart   time.Time
		initialized   bool
		curveOut      []backtest.ValueAt
	)

	deployable := c.Options.InitCash
	for _, d := range dates {
		snapshot := byDate[d]
		if len(snapshot) == 0 {
			continue
		}

		if !initialized {
			for _, r := range results {
				v, ok := snapshot[r.name]
				if !ok {
					continue
				}
				alloc := deployable * r.weight / totalWeight
				startStandard[r.name] = v
				startValue[r.name] = alloc
			}
			periodStart = d
			initialized = true
		} else if periodDays > 0 && int(d.Sub(periodStart).Hours()/24) >= periodDays {
			c.rebalance(ctx, bus, d, results, snapshot, startValue, startStandard, totalWeight)
			periodStart = d
		}

		var total float64
		for _, r := range results {
			v, ok := snapshot[r.name]
			if !ok {
				continue
			}
			base, ok := startStandard[r.name]
			if !ok || base == 0 {
				continue
			}
			total += startValue[r.name] * v / base
		}
		curveOut = append(curveOut, backtest.ValueAt{Date: d, Value: total})
	}

	var allVals []float64
	for _, vd := range curveOut {
		allVals = append(allVals, vd.Value)
	}
	summaryDates := make([]time.Time, len(curveOut))
	for i, vd := range curveOut {
		summaryDates[i] = vd.Date
	}

	orderDates := make(map[time.Time]struct{})
	for _, r := range results {
		for d := range r.orders {
			orderDates[d] = struct{}{}
		}
	}
	orderDatesSorted := make([]time.Time, 0, len(orderDates))
	for d := range orderDates {
		orderDatesSorted = append(orderDatesSorted, d)
	}
	sort.Slice(orderDatesSorted, func(i, j int) bool { return orderDatesSorted[i].Before(orderDatesSorted[j]) })

	// final_cash is fixed at 0 per spec.md §9: the FoF reports equity
	// only through trade_dates_value and metrics, mirroring the source.
	result := backtest.Result{
		Title:           c.Definition.Title,
		Options:         c.Options,
		FinalCash:       0,
		Metrics:         metrics.Calculate(summaryDates, allVals, c.Options.InitCash, c.Options.RiskFreeRate),
		OrderDates:      orderDatesSorted,
		TradeDatesValue: curveOut,
	}
	return bus.Publish(ctx, event.Result(c.Definition.Title, time.Now(), result))
}

// rebalance implements spec.md §4.7 step 3: retarget each child fund's
// allocation to T·w_i/W, charging two-sided fees on the delta, then
// reset the standardized basis for the next period.
func (c *Composer) rebalance(ctx context.Context, bus *event.Bus, d time.Time, results []childResult, snapshot map[string]float64, startValue, startStandard map[string]float64, totalWeight float64) {
	var total float64
	current := make(map[string]float64, len(results))
	for _, r := range results {
		v, ok := snapshot[r.name]
		if !ok {
			continue
		}
		base, ok := startStandard[r.name]
		if !ok || base == 0 {
			continue
		}
		val := startValue[r.name] * v / base
		current[r.name] = val
		total += val
	}

	for _, r := range results {
		cur, ok := current[r.name]
		if !ok {
			continue
		}
		target := total * r.weight / totalWeight
		delta := target - cur

		pct := 0.0
		if cur != 0 {
			pct = (target - cur) / cur
		}

		fee := c.Options.Fees.BuyFee(math.Abs(delta)) + c.Options.Fees.SellFee(math.Abs(delta))
		// Fees subtract from the target allocation after the trade,
		// shrinking it, mirroring the source rather than drawing from
		// free_cash (spec.md §9 Open Question, resolved in DESIGN.md).
		target -= fee
		startValue[r.name] = target
		startStandard[r.name] = snapshot[r.name]

		msg := fmt.Sprintf("Rebalance %s: delta=%.4f%%", r.name, pct*100)
		_ = bus.Publish(ctx, event.Info("fof", d, msg))
	}
}
