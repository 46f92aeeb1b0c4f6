// Package indicators implements technical indicators over a flat
// close-price series, grounded on backgommon's pkg/indicators (EMA,
// MACD, SMA, the dependency-graph Indicator interface and its cycle
// validator) — ported from operating on []core.Candle to a flat
// []float64 of closes, since this module's price history lives in
// series.Table rather than a Candle slice. Wired into pkg/rule's
// reference rules: macdcrossover uses EMA/MACD directly, holdtopn can
// rank its universe with an SMA-crossover Scorer instead of the
// default momentum one.
package indicators

// Indicator computes a derived value series from a close-price series
// and may depend on other indicators (e.g. MACD depends on its three
// EMAs), mirroring backgommon's pkg/interfaces.Indicator contract.
type Indicator interface {
	Calculate(closes []float64) []any
	Name() string
	Dependencies() []Indicator
}
