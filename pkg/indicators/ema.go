package indicators

import "fmt"

// EMA implements Exponential Moving Average indicator.
// EMA gives more weight to recent prices, making it more responsive to new information
// than a simple moving average (SMA).
//
// The EMA is calculated using the formula:
// EMA = (Current Price - Previous EMA) * Multiplier + Previous EMA
//
// The Multiplier is calculated as:
// Multiplier = 2 / (Period + 1)
//
// Example usage:
//
//	// Create a 20-period EMA
//	ema := indicators.NewEMA(20)
//
//	// Calculate EMA value
//	values := ema.Calculate(closes)
//
//	// Use as dependency in other indicators
//	macd := indicators.NewMACD(12, 26, 9) // uses EMA internally
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator with the specified period.
// The period determines how many closes are used in the initial SMA
// calculation and affects the weighting multiplier.
func NewEMA(period int) *EMA {
	return &EMA{period: period}
}

// Calculate computes the EMA value for the given closes.
// Returns a slice of values, one per close. If there are fewer closes than the period at a given index, returns nil for that index.
func (e *EMA) Calculate(closes []float64) []any {
	result := make([]any, len(closes))
	if len(closes) == 0 {
		return result
	}
	multiplier := 2.0 / float64(e.period+1)
	var ema float64
	for i := range closes {
		if i+1 < e.period {
			result[i] = nil
			continue
		}
		if i+1 == e.period {
			// Start with SMA for the first EMA value
			sum := 0.0
			for j := 0; j < e.period; j++ {
				sum += closes[j]
			}
			ema = sum / float64(e.period)
			result[i] = ema
			continue
		}
		ema = (closes[i]-ema)*multiplier + ema
		result[i] = ema
	}
	return result
}

// Name returns the identifier for this EMA instance
func (e *EMA) Name() string {
	return fmt.Sprintf("EMA_%d", e.period)
}

// Dependencies returns empty slice as EMA has no dependencies
func (e *EMA) Dependencies() []Indicator {
	return nil
}
