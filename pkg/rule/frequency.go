package rule

import "github.com/CCAtAlvis/vfunds/pkg/backtest"

// Frequency and its constants alias backtest.Frequency; see Spec in
// rule.go for why these live on pkg/backtest rather than here.
type Frequency = backtest.Frequency

const (
	Once         = backtest.Once
	Daily        = backtest.Daily
	Weekly       = backtest.Weekly
	Biweekly     = backtest.Biweekly
	Monthly      = backtest.Monthly
	Quarterly    = backtest.Quarterly
	Semiannually = backtest.Semiannually
	Annually     = backtest.Annually
)
