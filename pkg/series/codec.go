package series

import (
	"encoding/json"
	"time"
)

// wireTable is the JSON-serializable projection of a Table, used by the
// market data cache to persist fetched series as bytes.
type wireTable struct {
	Columns  []string         `json:"columns"`
	FieldMap map[string]string `json:"field_map"`
	Dates    []string         `json:"dates"`
	Rows     [][]any          `json:"rows"`
}

// MarshalJSON serializes the table's sorted rows and column layout.
func (t *Table) MarshalJSON() ([]byte, error) {
	t.ensureSorted()
	w := wireTable{
		Columns:  t.columns,
		FieldMap: t.fieldMap,
		Dates:    make([]string, len(t.dates)),
		Rows:     t.rows,
	}
	for i, d := range t.dates {
		w.Dates[i] = d.Format("2006-01-02")
	}
	return json.Marshal(w)
}

// UnmarshalJSON restores a Table previously produced by MarshalJSON.
func (t *Table) UnmarshalJSON(data []byte) error {
	var w wireTable
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	idx := make(map[string]int, len(w.Columns))
	for i, c := range w.Columns {
		idx[c] = i
	}
	t.columns = w.Columns
	t.colIndex = idx
	t.fieldMap = w.FieldMap
	if t.fieldMap == nil {
		t.fieldMap = make(map[string]string)
	}
	t.rows = w.Rows
	t.dates = make([]time.Time, len(w.Dates))
	t.dateIdx = make(map[time.Time]int, len(w.Dates))
	for i, s := range w.Dates {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			return err
		}
		t.dates[i] = d
		t.dateIdx[d] = i
	}
	t.dirty = false
	return nil
}
