package filter

import (
	"context"
	"testing"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/marketdata"
	"github.com/CCAtAlvis/vfunds/pkg/series"
	"github.com/CCAtAlvis/vfunds/pkg/ticker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTicker(t *testing.T, symbol string) ticker.Ticker {
	t.Helper()
	tk, err := ticker.New(symbol, ticker.Shanghai, ticker.Stock)
	require.NoError(t, err)
	return tk
}

func TestDelistedRejectsFlaggedTicker(t *testing.T) {
	src := marketdata.NewStaticSource()
	live := mustTicker(t, "600000")
	delisted := mustTicker(t, "600001")
	src.Delisted[delisted.String()] = true

	pred := Delisted(src)
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	ok, err := pred(context.Background(), live, date)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = pred(context.Background(), delisted, date)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNotSTRejectsFlaggedTicker(t *testing.T) {
	src := marketdata.NewStaticSource()
	stTicker := mustTicker(t, "600002")
	src.ST[stTicker.String()] = true

	pred := NotST(src)
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	ok, err := pred(context.Background(), stTicker, date)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMarketCapFloorRejectsBelowThreshold(t *testing.T) {
	src := marketdata.NewStaticSource()
	tk := mustTicker(t, "600003")
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tbl := series.New([]string{"market_cap"})
	require.NoError(t, tbl.SetRow(date, map[string]any{"market_cap": 500_000_000.0}))
	src.Capital[tk.String()] = tbl

	pred := MarketCapFloor(src, "market_cap", 1_000_000_000)
	ok, err := pred(context.Background(), tk, date)
	require.NoError(t, err)
	assert.False(t, ok, "a cap below the floor should fail the predicate")

	pred = MarketCapFloor(src, "market_cap", 100_000_000)
	ok, err = pred(context.Background(), tk, date)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAllShortCircuitsOnFirstFailure(t *testing.T) {
	src := marketdata.NewStaticSource()
	tk := mustTicker(t, "600004")
	src.Delisted[tk.String()] = true
	src.ST[tk.String()] = true

	pred := All(Delisted(src), NotST(src))
	ok, err := pred(context.Background(), tk, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, ok)
}
