package rule

import "time"

// ShouldRun implements spec.md §4.6's per-rule frequency gate: a rule
// with no prior successful run is always eligible; otherwise it is
// eligible once at least Frequency.Days() calendar days have elapsed
// since periodStart. Once (days == 0) never becomes eligible again once
// it has run: its one un-gated first run is the only run it ever gets.
func ShouldRun(freq Frequency, periodStart *time.Time, date time.Time) bool {
	if periodStart == nil {
		return true
	}
	d := freq.Days()
	if d <= 0 {
		return false
	}
	elapsed := int(date.Sub(*periodStart).Hours() / 24)
	return elapsed >= d
}
