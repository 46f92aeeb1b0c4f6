package resultstore

import (
	"io"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/backtest"
	"github.com/gocarina/gocsv"
)

// equityRow is one CSV row of an equity-curve export.
type equityRow struct {
	Date  string  `csv:"date"`
	Value float64 `csv:"value"`
}

// WriteEquityCurveCSV writes result's trade_dates_value series to w in
// "date,value" form via gocsv, the corpus's CSV marshaling library.
func WriteEquityCurveCSV(w io.Writer, result backtest.Result) error {
	rows := make([]*equityRow, len(result.TradeDatesValue))
	for i, v := range result.TradeDatesValue {
		rows[i] = &equityRow{Date: v.Date.Format("2006-01-02"), Value: v.Value}
	}
	return gocsv.Marshal(rows, w)
}

// ReadEquityCurveCSV reverses WriteEquityCurveCSV, for re-importing a
// previously exported curve.
func ReadEquityCurveCSV(r io.Reader) ([]backtest.ValueAt, error) {
	var rows []*equityRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, err
	}
	out := make([]backtest.ValueAt, 0, len(rows))
	for _, row := range rows {
		d, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			return nil, err
		}
		out = append(out, backtest.ValueAt{Date: d, Value: row.Value})
	}
	return out, nil
}
