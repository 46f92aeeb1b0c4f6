// Package marketdata exposes fetch-and-cache adapters for the daily
// price and reference datasets a fund simulation reads through: k-line,
// dividends, per-share reports, capital structure, index constituents,
// sector membership, delist/ST flags, and the trade calendar.
//
// Grounded on penny-vault-pv-data's provider/tiingo.go (resty client +
// rate.Limiter + read-through cache pattern) and provider/provider.go's
// Dataset/Fetch registry shape, generalized from "subscription pushes
// rows to a DB sink" to "fetcher returns a series.Table for one ticker,
// cached".
package marketdata

import (
	"context"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/series"
	"github.com/CCAtAlvis/vfunds/pkg/ticker"
)

// AdjustMode is the dividend-adjustment policy applied to a k-line
// fetch. Promoted from original_source's daily.rs four-mode scheme
// (spec.md §4.2 mentions "four dividend-adjustment modes" without
// naming them).
type AdjustMode string

const (
	AdjustNone           AdjustMode = "none"
	AdjustForward        AdjustMode = "forward"
	AdjustBackward       AdjustMode = "backward"
	AdjustForwardRatio   AdjustMode = "forward-ratio"
	AdjustBackwardRatio  AdjustMode = "backward-ratio"
)

// Source is the vendor-agnostic market data contract. A concrete vendor
// adapter (QMT/Tushare/AKTools) is out of scope per spec.md §1; Source
// is implemented here by HTTPSource (a generic resty-based client) and
// StaticSource (an in-memory fixture for tests and worked-example
// rules).
type Source interface {
	Kline(ctx context.Context, t ticker.Ticker, from, to time.Time, adjust AdjustMode) (*series.Table, error)
	Dividends(ctx context.Context, t ticker.Ticker, from, to time.Time) (*series.Table, error)
	PerShareReports(ctx context.Context, t ticker.Ticker, from, to time.Time) (*series.Table, error)
	CapitalStructure(ctx context.Context, t ticker.Ticker, from, to time.Time) (*series.Table, error)
	IndexConstituents(ctx context.Context, provider, symbol string, asOf time.Time) ([]ticker.Ticker, error)
	SectorMembership(ctx context.Context, sectorPrefix string, asOf time.Time) ([]ticker.Ticker, error)
	DelistFlags(ctx context.Context, t ticker.Ticker) (bool, error)
	STFlags(ctx context.Context, t ticker.Ticker, asOf time.Time) (bool, error)
	TradeCalendar(ctx context.Context, from, to time.Time) ([]time.Time, error)
}
