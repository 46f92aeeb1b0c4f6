package indicators

// CustomIndicator allows users to create their own indicators
type CustomIndicator struct {
	name     string
	calcFunc func([]float64) []any
	deps     []Indicator
}

// NewCustomIndicator creates a new custom indicator
func NewCustomIndicator(name string, calcFunc func([]float64) []any, deps []Indicator) Indicator {
	return &CustomIndicator{
		name:     name,
		calcFunc: calcFunc,
		deps:     deps,
	}
}

// Calculate calls the user-provided calculation function
func (c *CustomIndicator) Calculate(closes []float64) []any {
	return c.calcFunc(closes)
}

// Name returns the custom indicator's name
func (c *CustomIndicator) Name() string {
	return c.name
}

func (c *CustomIndicator) Dependencies() []Indicator {
	return c.deps
}
