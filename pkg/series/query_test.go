package series

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func buildTable(t *testing.T) *Table {
	t.Helper()
	tbl := New([]string{"close", "high", "low"})
	require.NoError(t, tbl.SetRow(day(2024, 1, 3), map[string]any{"close": 12.0, "high": 13.0, "low": 11.0}))
	require.NoError(t, tbl.SetRow(day(2024, 1, 1), map[string]any{"close": 10.0, "high": 10.5, "low": 9.5}))
	require.NoError(t, tbl.SetRow(day(2024, 1, 2), map[string]any{"close": 11.0, "high": 11.5, "low": 10.5}))
	return tbl
}

func TestGetValue(t *testing.T) {
	tbl := buildTable(t)
	v, ok := GetValue[float64](tbl, day(2024, 1, 2), "close")
	require.True(t, ok)
	assert.Equal(t, 11.0, v)

	_, ok = GetValue[float64](tbl, day(2024, 1, 5), "close")
	assert.False(t, ok)
}

func TestGetLatestValue(t *testing.T) {
	tbl := buildTable(t)

	d, v, ok := GetLatestValue[float64](tbl, day(2024, 1, 3), true, "close")
	require.True(t, ok)
	assert.True(t, d.Equal(day(2024, 1, 3)))
	assert.Equal(t, 12.0, v)

	d, v, ok = GetLatestValue[float64](tbl, day(2024, 1, 3), false, "close")
	require.True(t, ok)
	assert.True(t, d.Equal(day(2024, 1, 2)))
	assert.Equal(t, 11.0, v)

	_, _, ok = GetLatestValue[float64](tbl, day(2023, 12, 31), true, "close")
	assert.False(t, ok)
}

func TestGetValuesChronologicalOrder(t *testing.T) {
	tbl := buildTable(t)
	out := GetValues[float64](tbl, day(2024, 1, 1), day(2024, 1, 3), "close")
	require.Len(t, out, 3)
	assert.True(t, out[0].Date.Before(out[1].Date))
	assert.True(t, out[1].Date.Before(out[2].Date))
	assert.Equal(t, []float64{10.0, 11.0, 12.0}, []float64{out[0].Value, out[1].Value, out[2].Value})
}

func TestMapFieldAlias(t *testing.T) {
	tbl := buildTable(t)
	tbl.MapField("px_close", "close")
	v, ok := GetValue[float64](tbl, day(2024, 1, 1), "px_close")
	require.True(t, ok)
	assert.Equal(t, 10.0, v)
}

func TestCodecRoundTrip(t *testing.T) {
	tbl := buildTable(t)
	raw, err := tbl.MarshalJSON()
	require.NoError(t, err)

	out := &Table{}
	require.NoError(t, out.UnmarshalJSON(raw))

	v, ok := GetValue[float64](out, day(2024, 1, 2), "close")
	require.True(t, ok)
	assert.Equal(t, 11.0, v)
}
