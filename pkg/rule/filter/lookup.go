package filter

import (
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/series"
)

func latestFloat(tbl *series.Table, date time.Time, field string) (time.Time, float64, bool) {
	d, v, ok := series.GetLatestValue[float64](tbl, date, true, field)
	return d, v, ok
}
