package indicators

import "fmt"

// SMA implements Simple Moving Average indicator.
// SMA is calculated by taking the arithmetic mean of a given set of values over a specified period.
// For example, a 20-period SMA would average out the closing prices for the last 20 closes.
//
// Example usage:
//
//	// Create a 20-period SMA
//	sma := indicators.NewSMA(20)
//
//	// Calculate SMA value for a series of closes
//	values := sma.Calculate(closes)
type SMA struct {
	period int
}

// NewSMA creates a new SMA indicator with the specified period.
// The period determines how many closes are used in the calculation.
// Common periods: 20 (short term), 50 (medium term), 200 (long term)
func NewSMA(period int) *SMA {
	return &SMA{period: period}
}

// Calculate computes the SMA value for the given closes.
// Returns a slice of values, one per close. If there are fewer closes than the period at a given index, returns nil for that index.
func (s *SMA) Calculate(closes []float64) []any {
	result := make([]any, len(closes))
	for i := range closes {
		if i+1 < s.period {
			result[i] = nil
			continue
		}
		sum := 0.0
		for j := i + 1 - s.period; j <= i; j++ {
			sum += closes[j]
		}
		result[i] = sum / float64(s.period)
	}
	return result
}

// Name returns the identifier for this SMA instance
func (s *SMA) Name() string {
	return fmt.Sprintf("SMA_%d", s.period)
}

// Dependencies returns empty slice as SMA has no dependencies
func (s *SMA) Dependencies() []Indicator {
	return nil
}
