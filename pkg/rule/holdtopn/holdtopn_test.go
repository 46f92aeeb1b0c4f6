package holdtopn

import (
	"context"
	"testing"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/backtest"
	"github.com/CCAtAlvis/vfunds/pkg/event"
	"github.com/CCAtAlvis/vfunds/pkg/fee"
	"github.com/CCAtAlvis/vfunds/pkg/fundctx"
	"github.com/CCAtAlvis/vfunds/pkg/marketdata"
	"github.com/CCAtAlvis/vfunds/pkg/rule"
	"github.com/CCAtAlvis/vfunds/pkg/rule/filter"
	"github.com/CCAtAlvis/vfunds/pkg/series"
	"github.com/CCAtAlvis/vfunds/pkg/ticker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func htDay(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func TestHoldTopNRegistersItself(t *testing.T) {
	assert.Contains(t, rule.Names(), "holdtopn")
}

func TestNewReadsOptionsWithDefaults(t *testing.T) {
	r, err := New(rule.Spec{Name: "holdtopn", Options: map[string]any{"n": float64(3)}})
	require.NoError(t, err)
	htn := r.(*HoldTopN)
	assert.Equal(t, 3, htn.n)
	assert.Equal(t, 20, htn.lookbackDays, "lookback_days should fall back to its default")
}

func TestMomentumScoreRanksRisingTickerHigher(t *testing.T) {
	tkUp, err := ticker.New("600000", ticker.Shanghai, ticker.Stock)
	require.NoError(t, err)
	tkDown, err := ticker.New("600001", ticker.Shanghai, ticker.Stock)
	require.NoError(t, err)

	start := htDay(2024, 1, 1)
	end := htDay(2024, 1, 31)

	tblUp := series.New([]string{"close", "high", "low"})
	tblDown := series.New([]string{"close", "high", "low"})
	for i := 0; i < 30; i++ {
		d := start.AddDate(0, 0, i)
		up := 10.0 + float64(i)*0.1
		down := 10.0 - float64(i)*0.1
		require.NoError(t, tblUp.SetRow(d, map[string]any{"close": up, "high": up, "low": up}))
		require.NoError(t, tblDown.SetRow(d, map[string]any{"close": down, "high": down, "low": down}))
	}

	src := marketdata.NewStaticSource()
	src.Klines[tkUp.String()] = tblUp
	src.Klines[tkDown.String()] = tblDown

	fund := &backtest.FundDefinition{
		Title:   "topn-fund",
		Weights: map[ticker.Ticker]float64{tkUp: 0.5, tkDown: 0.5},
	}
	opts := backtest.Options{
		InitCash:    100_000,
		StartDate:   start,
		EndDate:     end,
		Fees:        fee.Schedule{Commission: fee.Policy{Rate: 0.001}, StampDuty: fee.Policy{Rate: 0.001}},
		BufferRatio: 0.05,
	}
	klines := map[ticker.Ticker]*series.Table{tkUp: tblUp, tkDown: tblDown}
	bus := event.NewBus()
	go func() {
		for range bus.Events() {
		}
	}()
	fc := fundctx.New(fund, opts, klines, src, bus)

	upScore, ok := momentumScore(context.Background(), fc, tkUp, end, 20)
	require.True(t, ok)
	downScore, ok := momentumScore(context.Background(), fc, tkDown, end, 20)
	require.True(t, ok)

	assert.Greater(t, upScore, downScore)
	assert.Greater(t, upScore, 0.0)
	assert.Less(t, downScore, 0.0)
}

func TestSMACrossoverScoreRanksRisingTickerHigher(t *testing.T) {
	tkUp, err := ticker.New("600000", ticker.Shanghai, ticker.Stock)
	require.NoError(t, err)
	tkDown, err := ticker.New("600001", ticker.Shanghai, ticker.Stock)
	require.NoError(t, err)

	start := htDay(2024, 1, 1)
	end := htDay(2024, 1, 31)

	tblUp := series.New([]string{"close", "high", "low"})
	tblDown := series.New([]string{"close", "high", "low"})
	for i := 0; i < 30; i++ {
		d := start.AddDate(0, 0, i)
		up := 10.0 + float64(i)*0.1
		down := 10.0 - float64(i)*0.1
		require.NoError(t, tblUp.SetRow(d, map[string]any{"close": up, "high": up, "low": up}))
		require.NoError(t, tblDown.SetRow(d, map[string]any{"close": down, "high": down, "low": down}))
	}

	src := marketdata.NewStaticSource()
	src.Klines[tkUp.String()] = tblUp
	src.Klines[tkDown.String()] = tblDown

	fund := &backtest.FundDefinition{
		Title:   "topn-fund-sma",
		Weights: map[ticker.Ticker]float64{tkUp: 0.5, tkDown: 0.5},
	}
	opts := backtest.Options{
		InitCash:    100_000,
		StartDate:   start,
		EndDate:     end,
		Fees:        fee.Schedule{Commission: fee.Policy{Rate: 0.001}, StampDuty: fee.Policy{Rate: 0.001}},
		BufferRatio: 0.05,
	}
	klines := map[ticker.Ticker]*series.Table{tkUp: tblUp, tkDown: tblDown}
	bus := event.NewBus()
	go func() {
		for range bus.Events() {
		}
	}()
	fc := fundctx.New(fund, opts, klines, src, bus)

	upScore, ok := SMACrossoverScore(context.Background(), fc, tkUp, end, 20)
	require.True(t, ok)
	downScore, ok := SMACrossoverScore(context.Background(), fc, tkDown, end, 20)
	require.True(t, ok)

	assert.Greater(t, upScore, downScore)
	assert.Greater(t, upScore, 0.0, "a rising ticker should trade above its own SMA")
	assert.Less(t, downScore, 0.0, "a falling ticker should trade below its own SMA")
}

func TestExecFilterExcludesDelistedCandidate(t *testing.T) {
	tkUp, err := ticker.New("600000", ticker.Shanghai, ticker.Stock)
	require.NoError(t, err)
	tkDelisted, err := ticker.New("600005", ticker.Shanghai, ticker.Stock)
	require.NoError(t, err)

	start := htDay(2024, 1, 1)
	end := htDay(2024, 1, 31)

	tblUp := series.New([]string{"close", "high", "low"})
	tblDelisted := series.New([]string{"close", "high", "low"})
	for i := 0; i < 30; i++ {
		d := start.AddDate(0, 0, i)
		up := 10.0 + float64(i)*0.1
		require.NoError(t, tblUp.SetRow(d, map[string]any{"close": up, "high": up, "low": up}))
		require.NoError(t, tblDelisted.SetRow(d, map[string]any{"close": up, "high": up, "low": up}))
	}

	src := marketdata.NewStaticSource()
	src.Klines[tkUp.String()] = tblUp
	src.Klines[tkDelisted.String()] = tblDelisted
	src.Delisted[tkDelisted.String()] = true

	fund := &backtest.FundDefinition{
		Title:   "topn-fund-filtered",
		Weights: map[ticker.Ticker]float64{tkUp: 0.5, tkDelisted: 0.5},
	}
	opts := backtest.Options{
		InitCash:    100_000,
		StartDate:   start,
		EndDate:     end,
		Fees:        fee.Schedule{Commission: fee.Policy{Rate: 0.001}, StampDuty: fee.Policy{Rate: 0.001}},
		BufferRatio: 0.05,
	}
	klines := map[ticker.Ticker]*series.Table{tkUp: tblUp, tkDelisted: tblDelisted}
	bus := event.NewBus()
	go func() {
		for range bus.Events() {
		}
	}()
	fc := fundctx.New(fund, opts, klines, src, bus)

	r, err := New(rule.Spec{Name: "holdtopn", Options: map[string]any{"n": float64(2)}})
	require.NoError(t, err)
	htn := r.(*HoldTopN)
	htn.Filter = filter.Delisted(src)

	require.NoError(t, htn.Exec(context.Background(), fc, end, bus))

	positions := fc.Portfolio.Positions()
	assert.Contains(t, positions, tkUp)
	assert.NotContains(t, positions, tkDelisted, "a delisted candidate must be filtered out before scoring")
}
