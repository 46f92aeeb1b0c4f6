package macdcrossover

import (
	"testing"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/indicators"
	"github.com/CCAtAlvis/vfunds/pkg/rule"
	"github.com/CCAtAlvis/vfunds/pkg/series"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMACDCrossoverRegistersItself(t *testing.T) {
	assert.Contains(t, rule.Names(), "macdcrossover")
}

func TestMACDInsufficientHistoryReturnsNotOk(t *testing.T) {
	macd := indicators.NewMACD(12, 26, 9)
	_, _, ok := latestCrossover(macd, make([]float64, 10))
	assert.False(t, ok)
}

func TestMACDSteadyUptrendLineAboveSignal(t *testing.T) {
	macd := indicators.NewMACD(12, 26, 9)
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 10 + float64(i)*0.5
	}

	macdLine, signalLine, ok := latestCrossover(macd, closes)
	require.True(t, ok)
	assert.Greater(t, macdLine, signalLine, "a steady uptrend should push the MACD line above its signal line")
}

func TestClosesThroughStopsAtGivenDate(t *testing.T) {
	tbl := series.New([]string{"close"})
	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	d3 := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	require.NoError(t, tbl.SetRow(d1, map[string]any{"close": 1.0}))
	require.NoError(t, tbl.SetRow(d2, map[string]any{"close": 2.0}))
	require.NoError(t, tbl.SetRow(d3, map[string]any{"close": 3.0}))

	out := closesThrough(tbl, d2)
	assert.Equal(t, []float64{1.0, 2.0}, out)
}
