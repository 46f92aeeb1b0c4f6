// Package simulator implements spec.md §4.6's Fund Simulator: the
// calendar-driven dispatch loop that owns a Portfolio (via fundctx),
// runs rules in declared order under frequency gating, and streams
// Buy/Sell/Info/Warning/Result/Error events over a bounded channel.
//
// Grounded on backgommon's pkg/runner.Runner — its Start() row-
// iteration loop and processTick/processOrders/updateEquityCurve
// decomposition generalize here to a calendar-date loop, and its
// functional-options New(strategy, opts...) constructor generalizes to
// WithDefinition/WithOptions/WithMarketData. Unlike the teacher's
// synchronous Start(), Run spawns a goroutine owning the send half of a
// bounded chan event.Event (capacity 64, spec.md §5) and returns the
// receive half immediately — grounded on pvdata's
// downloadTiingoEODQuotes(ctx, sub, out chan<- *Observation, ...)
// shape: goroutine owns a send-only channel, caller owns the receive
// end. Here Result/Error are carried as terminal Event variants on the
// same stream instead of a second summary channel.
package simulator

import (
	"context"
	"fmt"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/backtest"
	"github.com/CCAtAlvis/vfunds/pkg/event"
	"github.com/CCAtAlvis/vfunds/pkg/fundctx"
	"github.com/CCAtAlvis/vfunds/pkg/marketdata"
	"github.com/CCAtAlvis/vfunds/pkg/metrics"
	"github.com/CCAtAlvis/vfunds/pkg/rule"
	"github.com/CCAtAlvis/vfunds/pkg/series"
	"github.com/CCAtAlvis/vfunds/pkg/ticker"
	"github.com/rs/zerolog/log"
)

// Simulator runs one fund's backtest.
type Simulator struct {
	fund    *backtest.FundDefinition
	options backtest.Options
	source  marketdata.Source
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithDefinition sets the fund being simulated.
func WithDefinition(fund *backtest.FundDefinition) Option {
	return func(s *Simulator) { s.fund = fund }
}

// WithOptions sets the backtest options.
func WithOptions(opts backtest.Options) Option {
	return func(s *Simulator) { s.options = opts }
}

// WithMarketData sets the market data source rules and the calendar
// loop read through.
func WithMarketData(source marketdata.Source) Option {
	return func(s *Simulator) { s.source = source }
}

// New builds a Simulator, applying opts in order.
func New(opts ...Option) *Simulator {
	s := &Simulator{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) validate() error {
	if s.fund == nil {
		return fmt.Errorf("simulator: fund definition not set")
	}
	if s.source == nil {
		return fmt.Errorf("simulator: market data source not set")
	}
	if err := s.options.Validate(); err != nil {
		return err
	}
	if err := s.fund.Validate(); err != nil {
		return err
	}
	for _, rs := range s.fund.Rules {
		if _, err := rule.Build(rs); err != nil {
			return err
		}
	}
	return nil
}

// ruleState tracks a single rule's frequency-gate state across the
// calendar loop.
type ruleState struct {
	rule        rule.Rule
	periodStart *time.Time
}

// Run validates the fund synchronously (spec.md §7: fatal input errors
// are "reported synchronously to the caller") then spawns the worker
// goroutine and returns the event stream immediately.
func (s *Simulator) Run(ctx context.Context) (*event.Bus, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}

	rules := make([]*ruleState, 0, len(s.fund.Rules))
	for _, rs := range s.fund.Rules {
		r, _ := rule.Build(rs) // already validated in s.validate()
		rules = append(rules, &ruleState{rule: r})
	}

	bus := event.NewBus()
	go s.work(ctx, bus, rules)
	return bus, nil
}

func (s *Simulator) work(ctx context.Context, bus *event.Bus, rules []*ruleState) {
	defer bus.Close()
	log.Info().Str("fund", s.fund.Title).Time("start", s.options.StartDate).Time("end", s.options.EndDate).Msg("simulator: run started")

	klines, err := s.prefetchKlines(ctx)
	if err != nil {
		_ = bus.Publish(ctx, event.Error(s.fund.Title, time.Now(), err))
		return
	}

	calendar, err := s.source.TradeCalendar(ctx, s.options.StartDate, s.options.EndDate)
	if err != nil {
		_ = bus.Publish(ctx, event.Error(s.fund.Title, time.Now(), err))
		return
	}

	fc := fundctx.New(s.fund, s.options, klines, s.source, bus)

	var dates []time.Time
	var vals []float64

	for _, d := range calendar {
		if d.Before(s.options.StartDate) || d.After(s.options.EndDate) {
			continue
		}

		month := int(d.Month())
		if s.fund.Options.SuspendedAt(month) {
			if !fc.Portfolio.IsSuspended() {
				if err := fc.Suspend(ctx, d); err != nil {
					_ = bus.Publish(ctx, event.Error(s.fund.Title, d, err))
					return
				}
			}
			continue
		}
		if fc.Portfolio.IsSuspended() {
			if err := fc.Resume(ctx, d); err != nil {
				_ = bus.Publish(ctx, event.Error(s.fund.Title, d, err))
				return
			}
		}

		for i, rs := range rules {
			freq := s.fund.Rules[i].Frequency
			if !rule.ShouldRun(freq, rs.periodStart, d) {
				continue
			}
			if err := rs.rule.Exec(ctx, fc, d, bus); err != nil {
				_ = bus.Publish(ctx, event.Error(s.fund.Title, d, err))
				return
			}
			dCopy := d
			rs.periodStart = &dCopy
		}

		if equity, ok := fc.TotalEquity(d); ok {
			dates = append(dates, d)
			vals = append(vals, equity)
		}
	}

	result := s.buildResult(fc, dates, vals)
	log.Info().Str("fund", s.fund.Title).Int("trade_days", len(dates)).Msg("simulator: run finished")
	_ = bus.Publish(ctx, event.Result(s.fund.Title, time.Now(), result))
}

func (s *Simulator) prefetchKlines(ctx context.Context) (map[ticker.Ticker]*series.Table, error) {
	out := make(map[ticker.Ticker]*series.Table, len(s.fund.Weights))
	for t := range s.fund.Weights {
		tbl, err := s.source.Kline(ctx, t, s.options.StartDate, s.options.EndDate, fundctx.DefaultAdjustMode)
		if err != nil {
			return nil, err
		}
		out[t] = tbl
	}
	for _, src := range s.fund.Sources {
		tickers, err := src.Expand(ctx, s.options.StartDate, marketdata.ConstituentAdapter{Source: s.source})
		if err != nil {
			return nil, err
		}
		for _, t := range tickers {
			if _, ok := out[t]; ok {
				continue
			}
			tbl, err := s.source.Kline(ctx, t, s.options.StartDate, s.options.EndDate, fundctx.DefaultAdjustMode)
			if err != nil {
				return nil, err
			}
			out[t] = tbl
		}
	}
	return out, nil
}

func (s *Simulator) buildResult(fc *fundctx.Context, dates []time.Time, vals []float64) backtest.Result {
	positionsValue := make(map[ticker.Ticker]float64, len(fc.Portfolio.Positions()))
	for t, units := range fc.Portfolio.Positions() {
		if len(dates) == 0 {
			continue
		}
		if price, ok := fc.ClosePriceAt(t, dates[len(dates)-1]); ok {
			positionsValue[t] = float64(units) * price
		}
	}

	curve := make([]backtest.ValueAt, len(dates))
	for i := range dates {
		curve[i] = backtest.ValueAt{Date: dates[i], Value: vals[i]}
	}

	return backtest.Result{
		Title:               s.fund.Title,
		Options:             s.options,
		FinalCash:           fc.Portfolio.FreeCash(),
		FinalPositionsValue: positionsValue,
		Metrics:             metrics.Calculate(dates, vals, s.options.InitCash, s.options.RiskFreeRate),
		OrderDates:          fc.OrderDatesSorted(),
		TradeDatesValue:     curve,
	}
}
