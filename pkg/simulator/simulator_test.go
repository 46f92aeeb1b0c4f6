package simulator

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

func simDay(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func buildStaticSource(t *testing.T, tk ticker.Ticker, dates []time.Time, closes []float64) *marketdata.StaticSource {
	t.Helper()
	src := marketdata.NewStaticSource()
	tbl := series.New([]string{"close", "high", "low"})
	for i, d := range dates {
		c := closes[i]
		require.NoError(t, tbl.SetRow(d, map[string]any{"close": c, "high": c * 1.01, "low": c * 0.99}))
	}
	src.Klines[tk.String()] = tbl
	src.TradeCalend_ = dates
	return src
}

func TestSimulatorRunProducesResult(t *testing.T) {
	tk, err := ticker.New("600000", ticker.Shanghai, ticker.Stock)
	require.NoError(t, err)

	dates := []time.Time{simDay(2024, 1, 2), simDay(2024, 1, 3), simDay(2024, 1, 4)}
	closes := []float64{10, 11, 12}
	src := buildStaticSource(t, tk, dates, closes)

	fund := &backtest.FundDefinition{
		Title:   "single-ticker-fund",
		Weights: map[ticker.Ticker]float64{tk: 1.0},
		Rules:   []backtest.RuleSpec{{Name: "holdequal", Frequency: backtest.Once}},
	}
	opts := backtest.Options{
		InitCash:    100_000,
		StartDate:   dates[0],
		EndDate:     dates[len(dates)-1],
		Fees:        fee.Schedule{Commission: fee.Policy{Rate: 0.001}, StampDuty: fee.Policy{Rate: 0.001}},
		BufferRatio: 0.05,
	}

	sim := New(WithDefinition(fund), WithOptions(opts), WithMarketData(src))
	bus, err := sim.Run(context.Background())
	require.NoError(t, err)

	var result backtest.Result
	var sawBuy bool
	for ev := range bus.Events() {
		switch ev.Kind {
		case event.KindBuy:
			sawBuy = true
		case event.KindResult:
			result, _ = ev.Result.(backtest.Result)
		case event.KindError:
			t.Fatalf("unexpected error event: %v", ev.Err)
		}
	}

	assert.True(t, sawBuy, "holdequal should buy into the single ticker on day one")
	assert.Equal(t, "single-ticker-fund", result.Title)
	require.Len(t, result.TradeDatesValue, 3)
	assert.Greater(t, result.TradeDatesValue[2].Value, result.TradeDatesValue[0].Value, "rising prices should grow equity")
}

func TestSimulatorRejectsUnknownRule(t *testing.T) {
	tk, err := ticker.New("600000", ticker.Shanghai, ticker.Stock)
	require.NoError(t, err)
	dates := []time.Time{simDay(2024, 1, 2)}
	src := buildStaticSource(t, tk, dates, []float64{10})

	fund := &backtest.FundDefinition{
		Title:   "bad-fund",
		Weights: map[ticker.Ticker]float64{tk: 1.0},
		Rules:   []backtest.RuleSpec{{Name: "does-not-exist", Frequency: backtest.Once}},
	}
	opts := backtest.Options{InitCash: 1000, StartDate: dates[0], EndDate: dates[0].AddDate(0, 0, 1), BufferRatio: 0.05}

	sim := New(WithDefinition(fund), WithOptions(opts), WithMarketData(src))
	_, err = sim.Run(context.Background())
	assert.Error(t, err)
}
