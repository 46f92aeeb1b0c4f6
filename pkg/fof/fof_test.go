package fof

import (
	"context"
	"testing"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/backtest"
	"github.com/CCAtAlvis/vfunds/pkg/event"
	"github.com/CCAtAlvis/vfunds/pkg/fee"
	"github.com/CCAtAlvis/vfunds/pkg/marketdata"
	"github.com/CCAtAlvis/vfunds/pkg/series"
	"github.com/CCAtAlvis/vfunds/pkg/ticker"

	_ "github.com/CCAtAlvis/vfunds/pkg/rule/holdequal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fofDay(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func staticFundSource(t *testing.T, tk ticker.Ticker, dates []time.Time, closes []float64, src *marketdata.StaticSource) {
	t.Helper()
	tbl := series.New([]string{"close", "high", "low"})
	for i, d := range dates {
		c := closes[i]
		require.NoError(t, tbl.SetRow(d, map[string]any{"close": c, "high": c * 1.01, "low": c * 0.99}))
	}
	src.Klines[tk.String()] = tbl
}

func TestComposerRunFoldsChildCurves(t *testing.T) {
	tkA, err := ticker.New("600000", ticker.Shanghai, ticker.Stock)
	require.NoError(t, err)
	tkB, err := ticker.New("600001", ticker.Shanghai, ticker.Stock)
	require.NoError(t, err)

	dates := []time.Time{fofDay(2024, 1, 2), fofDay(2024, 1, 3), fofDay(2024, 1, 4)}
	src := marketdata.NewStaticSource()
	staticFundSource(t, tkA, dates, []float64{10, 11, 12}, src)
	staticFundSource(t, tkB, dates, []float64{20, 19, 21}, src)
	src.TradeCalend_ = dates

	fundA := &backtest.FundDefinition{
		Title:   "fund-a",
		Weights: map[ticker.Ticker]float64{tkA: 1.0},
		Rules:   []backtest.RuleSpec{{Name: "holdequal", Frequency: backtest.Once}},
	}
	fundB := &backtest.FundDefinition{
		Title:   "fund-b",
		Weights: map[ticker.Ticker]float64{tkB: 1.0},
		Rules:   []backtest.RuleSpec{{Name: "holdequal", Frequency: backtest.Once}},
	}

	opts := backtest.Options{
		InitCash:    100_000,
		StartDate:   dates[0],
		EndDate:     dates[len(dates)-1],
		Fees:        fee.Schedule{Commission: fee.Policy{Rate: 0.001}, StampDuty: fee.Policy{Rate: 0.001}},
		BufferRatio: 0.05,
	}

	composer := &Composer{
		Definition: &backtest.FofDefinition{
			Title:     "fof-test",
			Weights:   map[string]float64{"fund-a": 0.5, "fund-b": 0.5},
			Frequency: backtest.Once,
		},
		Funds:   map[string]*backtest.FundDefinition{"fund-a": fundA, "fund-b": fundB},
		Options: opts,
		Source:  src,
	}

	bus := event.NewBus()
	go func() {
		_ = composer.Run(context.Background(), bus)
		bus.Close()
	}()

	var result backtest.Result
	var gotResult bool
	for ev := range bus.Events() {
		if ev.Kind == event.KindError {
			t.Fatalf("unexpected error event: %v", ev.Err)
		}
		if ev.Kind == event.KindResult {
			result, _ = ev.Result.(backtest.Result)
			gotResult = true
		}
	}

	require.True(t, gotResult)
	assert.Equal(t, "fof-test", result.Title)
	assert.Equal(t, 0.0, result.FinalCash, "fof final_cash is always reported as 0")
	require.Len(t, result.TradeDatesValue, 3)
	assert.Greater(t, result.TradeDatesValue[0].Value, 0.0)
}
