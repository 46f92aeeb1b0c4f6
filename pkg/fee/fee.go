// Package fee implements the rate-with-floor commission model from
// spec.md §4.3. Grounded on backgommon's pkg/portfolio.ExecutionSettings,
// which charges a flat commission rate with no floor — generalized here
// to a rate-or-floor schedule. A BacktestOptions carries two Policy
// values (broker commission, stamp duty); the sell-side formula
// (commission + stamp duty) is composed from the two by Schedule.SellFee,
// per spec.md §4.3's `sell_fee(v) = max(v·broker_rate, broker_min) +
// max(v·stamp_rate, stamp_min)`.
package fee

import "math"

// Policy is a single rate-or-floor fee component.
type Policy struct {
	Rate   float64
	MinFee float64
}

// Apply returns the fee owed on a trade of the given value.
func (p Policy) Apply(value float64) float64 {
	return math.Max(p.Rate*value, p.MinFee)
}

// Schedule pairs a broker commission policy (charged on both buys and
// sells) with a stamp duty policy (sells only), implementing spec.md
// §4.3's two top-level formulas.
type Schedule struct {
	Commission Policy
	StampDuty  Policy
}

// BuyFee returns the commission owed on a buy of the given trade value.
func (s Schedule) BuyFee(value float64) float64 {
	return s.Commission.Apply(value)
}

// SellFee returns the commission plus stamp duty owed on a sell of the
// given trade value.
func (s Schedule) SellFee(value float64) float64 {
	return s.Commission.Apply(value) + s.StampDuty.Apply(value)
}
