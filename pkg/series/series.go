// Package series implements the column-oriented, date-indexed time series
// store from spec.md §4.1. It generalizes backgommon's pkg/types.Table and
// pkg/types.TimeseriesTable — which together store only a single generic
// payload type (core.Candle) — into a table of named columns holding
// mixed numeric, string, bool and null values, since a vendor's daily
// series exposes dozens of differently-named fields per ticker (price,
// volume, per-share metrics, flags) rather than one OHLCV struct.
//
// Filtering and slicing are the hot path (rules query these series tens
// of thousands of times per simulation), so rows are kept sorted lazily —
// the same "isDirty, sort on next read" trick the teacher uses in
// TimeseriesTable.Iterator/Rows — and slicing never copies more than the
// requested date window.
package series

import (
	"sort"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/vferrors"
)

// Table is a row-indexed table keyed by date, plus a logical-field-name to
// physical-column-name mapping (vendors expose different names for the
// same concept).
type Table struct {
	fieldMap map[string]string // logical field -> physical column
	columns  []string
	colIndex map[string]int
	dates    []time.Time
	dateIdx  map[time.Time]int
	rows     [][]any
	dirty    bool
}

// New creates an empty Table over the given physical columns.
func New(columns []string) *Table {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[c] = i
	}
	return &Table{
		fieldMap: make(map[string]string),
		columns:  columns,
		colIndex: idx,
		dateIdx:  make(map[time.Time]int),
	}
}

// MapField registers a logical field name as an alias for a physical
// column, so Get* calls can use vendor-agnostic names.
func (t *Table) MapField(logical, physical string) {
	t.fieldMap[logical] = physical
}

func (t *Table) resolveColumn(field string) (string, bool) {
	if phys, ok := t.fieldMap[field]; ok {
		field = phys
	}
	_, ok := t.colIndex[field]
	return field, ok
}

func normalizeDate(d time.Time) time.Time {
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// SetRow inserts or overwrites the row for date with the given field
// values (logical or physical names).
func (t *Table) SetRow(date time.Time, row map[string]any) error {
	date = normalizeDate(date)
	idx, ok := t.dateIdx[date]
	if !ok {
		idx = len(t.rows)
		t.rows = append(t.rows, make([]any, len(t.columns)))
		t.dateIdx[date] = idx
		t.dates = append(t.dates, date)
		t.dirty = true
	}
	for field, val := range row {
		col, ok := t.resolveColumn(field)
		if !ok {
			return vferrors.Invalid("series_column", "unknown column "+field)
		}
		t.rows[idx][t.colIndex[col]] = val
	}
	return nil
}

func (t *Table) ensureSorted() {
	if !t.dirty {
		return
	}
	order := make([]int, len(t.dates))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return t.dates[order[i]].Before(t.dates[order[j]]) })

	newDates := make([]time.Time, len(t.dates))
	newRows := make([][]any, len(t.rows))
	for newPos, oldPos := range order {
		newDates[newPos] = t.dates[oldPos]
		newRows[newPos] = t.rows[oldPos]
		t.dateIdx[t.dates[oldPos]] = newPos
	}
	t.dates = newDates
	t.rows = newRows
	t.dirty = false
}

// GetDates returns every date present in the table, in chronological order.
func (t *Table) GetDates() []time.Time {
	t.ensureSorted()
	out := make([]time.Time, len(t.dates))
	copy(out, t.dates)
	return out
}

// Cols returns the physical column names.
func (t *Table) Cols() []string { return t.columns }

// SliceByDateRange returns a new Table containing only rows with
// from <= date <= to.
func (t *Table) SliceByDateRange(from, to time.Time) *Table {
	t.ensureSorted()
	from, to = normalizeDate(from), normalizeDate(to)
	out := New(t.columns)
	out.fieldMap = t.fieldMap
	for i, d := range t.dates {
		if d.Before(from) || d.After(to) {
			continue
		}
		out.dates = append(out.dates, d)
		row := make([]any, len(t.rows[i]))
		copy(row, t.rows[i])
		out.rows = append(out.rows, row)
		out.dateIdx[d] = len(out.dates) - 1
	}
	return out
}

// rawAt returns the raw value stored for date/column without coercion.
func (t *Table) rawAt(date time.Time, column string) (any, bool) {
	idx, ok := t.dateIdx[normalizeDate(date)]
	if !ok {
		return nil, false
	}
	ci, ok := t.colIndex[column]
	if !ok {
		return nil, false
	}
	v := t.rows[idx][ci]
	return v, v != nil
}
