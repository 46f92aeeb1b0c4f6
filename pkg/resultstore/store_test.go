package resultstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/backtest"
	"github.com/CCAtAlvis/vfunds/pkg/metrics"
	"github.com/CCAtAlvis/vfunds/pkg/ticker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sday(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func sampleResult(t *testing.T) backtest.Result {
	t.Helper()
	tk, err := ticker.New("600000", ticker.Shanghai, ticker.Stock)
	require.NoError(t, err)
	arr := 0.12

	return backtest.Result{
		Title: "sample-fund",
		Options: backtest.Options{
			InitCash:  100_000,
			StartDate: sday(2024, 1, 1),
			EndDate:   sday(2024, 12, 31),
		},
		FinalCash:           5_000,
		FinalPositionsValue: map[ticker.Ticker]float64{tk: 120_000},
		Metrics: metrics.Summary{
			TotalReturn:          25_000,
			AnnualizedReturnRate: &arr,
			MaxDrawdown:          0.1,
			AnnualizedVolatility: 0.2,
			WinRate:              0.55,
			CalendarYearReturns:  map[int]float64{2024: 0.25},
		},
		OrderDates:      []time.Time{sday(2024, 1, 2), sday(2024, 6, 1)},
		TradeDatesValue: []backtest.ValueAt{{Date: sday(2024, 1, 1), Value: 100_000}, {Date: sday(2024, 12, 31), Value: 125_000}},
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer store.Close()

	result := sampleResult(t)
	id, err := store.Save(context.Background(), result)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	loaded, err := store.Load(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, result.Title, loaded.Title)
	assert.Equal(t, result.FinalCash, loaded.FinalCash)
	assert.Equal(t, result.Metrics.TotalReturn, loaded.Metrics.TotalReturn)
	require.NotNil(t, loaded.Metrics.AnnualizedReturnRate)
	assert.InDelta(t, *result.Metrics.AnnualizedReturnRate, *loaded.Metrics.AnnualizedReturnRate, 1e-9)
	assert.Nil(t, loaded.Metrics.Sharpe, "unset nullable metric must round-trip as nil, not zero")
	require.Len(t, loaded.TradeDatesValue, 2)
	require.Len(t, loaded.OrderDates, 2)
}

func TestListFiltersByTitle(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	defer store.Close()

	result := sampleResult(t)
	_, err = store.Save(context.Background(), result)
	require.NoError(t, err)

	other := sampleResult(t)
	other.Title = "other-fund"
	_, err = store.Save(context.Background(), other)
	require.NoError(t, err)

	rows, err := store.List(context.Background(), "sample-fund")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "sample-fund", rows[0].Result.Title)
}
