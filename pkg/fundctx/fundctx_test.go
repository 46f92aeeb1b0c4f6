package fundctx

import (
	"context"
	"testing"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/backtest"
	"github.com/CCAtAlvis/vfunds/pkg/event"
	"github.com/CCAtAlvis/vfunds/pkg/fee"
	"github.com/CCAtAlvis/vfunds/pkg/series"
	"github.com/CCAtAlvis/vfunds/pkg/ticker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fday(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func mustTicker(t *testing.T, symbol string) ticker.Ticker {
	t.Helper()
	tk, err := ticker.New(symbol, ticker.Shanghai, ticker.Stock)
	require.NoError(t, err)
	return tk
}

func kline(t *testing.T, rows map[time.Time][3]float64) *series.Table {
	t.Helper()
	tbl := series.New([]string{"close", "high", "low"})
	for d, v := range rows {
		require.NoError(t, tbl.SetRow(d, map[string]any{"close": v[0], "high": v[1], "low": v[2]}))
	}
	return tbl
}

func newTestContext(t *testing.T, klines map[ticker.Ticker]*series.Table) (*Context, *event.Bus) {
	t.Helper()
	fund := &backtest.FundDefinition{
		Title:   "test-fund",
		Weights: map[ticker.Ticker]float64{},
	}
	opts := backtest.Options{
		InitCash:          100_000,
		StartDate:         fday(2024, 1, 1),
		EndDate:           fday(2024, 12, 31),
		Fees:              fee.Schedule{Commission: fee.Policy{Rate: 0.001, MinFee: 0}, StampDuty: fee.Policy{Rate: 0.001}},
		BufferRatio:       0.05,
		PositionTolerance: 0.01,
	}
	bus := event.NewBus()
	return New(fund, opts, klines, nil, bus), bus
}

// drain consumes events on a background goroutine so Publish never
// blocks against the bounded channel during a test.
func drain(bus *event.Bus) {
	go func() {
		for range bus.Events() {
		}
	}()
}

func TestPositionOpenBuysWholeUnitsAndDebitsCash(t *testing.T) {
	tk := mustTicker(t, "600000")
	klines := map[ticker.Ticker]*series.Table{tk: kline(t, map[time.Time][3]float64{
		fday(2024, 1, 2): {10, 10.5, 9.5},
	})}
	ctx, bus := newTestContext(t, klines)
	drain(bus)

	err := ctx.PositionOpen(context.Background(), tk, 1000, fday(2024, 1, 2))
	require.NoError(t, err)

	assert.Greater(t, ctx.Portfolio.Position(tk), uint64(0))
	assert.Less(t, ctx.Portfolio.FreeCash(), 100_000.0)
}

func TestPositionOpenWarnsOnMissingPrice(t *testing.T) {
	tk := mustTicker(t, "600000")
	ctx, bus := newTestContext(t, map[ticker.Ticker]*series.Table{tk: kline(t, nil)})
	drain(bus)

	err := ctx.PositionOpen(context.Background(), tk, 1000, fday(2024, 1, 2))
	assert.NoError(t, err, "missing price recovers into a Warning, not an error")
	assert.Equal(t, uint64(0), ctx.Portfolio.Position(tk))
}

func TestPositionCloseCreditsFreeCashByDefault(t *testing.T) {
	tk := mustTicker(t, "600000")
	klines := map[ticker.Ticker]*series.Table{tk: kline(t, map[time.Time][3]float64{
		fday(2024, 1, 2): {10, 10.5, 9.5},
	})}
	ctx, bus := newTestContext(t, klines)
	drain(bus)

	require.NoError(t, ctx.PositionOpen(context.Background(), tk, 1000, fday(2024, 1, 2)))
	cashBefore := ctx.Portfolio.FreeCash()

	proceeds, err := ctx.PositionClose(context.Background(), tk, false, fday(2024, 1, 2))
	require.NoError(t, err)
	assert.Greater(t, proceeds, 0.0)
	assert.Equal(t, uint64(0), ctx.Portfolio.Position(tk))
	assert.Greater(t, ctx.Portfolio.FreeCash(), cashBefore)
}

func TestPositionCloseReservesCashWhenRequested(t *testing.T) {
	tk := mustTicker(t, "600000")
	klines := map[ticker.Ticker]*series.Table{tk: kline(t, map[time.Time][3]float64{
		fday(2024, 1, 2): {10, 10.5, 9.5},
	})}
	ctx, bus := newTestContext(t, klines)
	drain(bus)

	require.NoError(t, ctx.PositionOpen(context.Background(), tk, 1000, fday(2024, 1, 2)))
	_, err := ctx.PositionClose(context.Background(), tk, true, fday(2024, 1, 2))
	require.NoError(t, err)

	r, ok := ctx.Portfolio.Reserved(tk)
	require.True(t, ok)
	assert.Greater(t, r.Cash, 0.0)
}

func TestPositionCloseNoPositionWarns(t *testing.T) {
	tk := mustTicker(t, "600000")
	ctx, bus := newTestContext(t, map[ticker.Ticker]*series.Table{})
	drain(bus)

	_, err := ctx.PositionClose(context.Background(), tk, false, fday(2024, 1, 2))
	assert.NoError(t, err)
}

func TestTotalEquityMissingPriceReturnsNotOk(t *testing.T) {
	tk := mustTicker(t, "600000")
	klines := map[ticker.Ticker]*series.Table{tk: kline(t, map[time.Time][3]float64{
		fday(2024, 1, 2): {10, 10.5, 9.5},
	})}
	ctx, bus := newTestContext(t, klines)
	drain(bus)
	require.NoError(t, ctx.PositionOpen(context.Background(), tk, 1000, fday(2024, 1, 2)))

	_, ok := ctx.TotalEquity(fday(2024, 1, 3))
	assert.False(t, ok, "no price recorded for 2024-01-03")
}

func TestSuspendThenResumeRoundTripsPositions(t *testing.T) {
	tk := mustTicker(t, "600000")
	klines := map[ticker.Ticker]*series.Table{tk: kline(t, map[time.Time][3]float64{
		fday(2024, 1, 2): {10, 10.5, 9.5},
		fday(2024, 1, 3): {10, 10.5, 9.5},
	})}
	ctx, bus := newTestContext(t, klines)
	drain(bus)
	require.NoError(t, ctx.PositionOpen(context.Background(), tk, 1000, fday(2024, 1, 2)))
	units := ctx.Portfolio.Position(tk)
	require.Greater(t, units, uint64(0))

	require.NoError(t, ctx.Suspend(context.Background(), fday(2024, 1, 2)))
	assert.True(t, ctx.Portfolio.IsSuspended())
	assert.Equal(t, uint64(0), ctx.Portfolio.Position(tk))

	require.NoError(t, ctx.Resume(context.Background(), fday(2024, 1, 3)))
	assert.False(t, ctx.Portfolio.IsSuspended())
	assert.Equal(t, units, ctx.Portfolio.Position(tk))
}

func TestTotalEquityDuringSuspendIncludesParkedValue(t *testing.T) {
	tk := mustTicker(t, "600000")
	klines := map[ticker.Ticker]*series.Table{tk: kline(t, map[time.Time][3]float64{
		fday(2024, 1, 2): {10, 10.5, 9.5},
		fday(2024, 1, 3): {10, 10.5, 9.5},
	})}
	ctx, bus := newTestContext(t, klines)
	drain(bus)
	require.NoError(t, ctx.PositionOpen(context.Background(), tk, 1000, fday(2024, 1, 2)))

	before, ok := ctx.TotalEquity(fday(2024, 1, 2))
	require.True(t, ok)

	require.NoError(t, ctx.Suspend(context.Background(), fday(2024, 1, 2)))
	assert.Empty(t, ctx.Portfolio.Positions(), "suspend clears live positions")

	during, ok := ctx.TotalEquity(fday(2024, 1, 3))
	require.True(t, ok)
	assert.InDelta(t, before, during, 1e-9, "suspended value must still count toward total equity")
}

func TestRebalanceDropsPositionsNotInTargets(t *testing.T) {
	tkA := mustTicker(t, "600000")
	tkB := mustTicker(t, "600001")
	klines := map[ticker.Ticker]*series.Table{
		tkA: kline(t, map[time.Time][3]float64{fday(2024, 1, 2): {10, 10.5, 9.5}}),
		tkB: kline(t, map[time.Time][3]float64{fday(2024, 1, 2): {20, 20.5, 19.5}}),
	}
	ctx, bus := newTestContext(t, klines)
	drain(bus)
	require.NoError(t, ctx.PositionOpen(context.Background(), tkA, 1000, fday(2024, 1, 2)))

	err := ctx.Rebalance(context.Background(), []Target{{Ticker: tkB, Weight: 1.0}}, fday(2024, 1, 2))
	require.NoError(t, err)

	assert.Equal(t, uint64(0), ctx.Portfolio.Position(tkA))
	assert.Greater(t, ctx.Portfolio.Position(tkB), uint64(0))
}
