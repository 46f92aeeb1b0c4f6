package ticker

import (
	"context"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/vferrors"
)

// SourceKind distinguishes how a TickerSource should be expanded.
type SourceKind string

const (
	SourceExplicit SourceKind = "explicit"
	SourceSector   SourceKind = "sector"
	SourceIndex    SourceKind = "index"
)

// ConstituentProvider expands an index into the tickers that composed it
// on a given date. Implemented by pkg/marketdata; declared here to avoid
// an import cycle (marketdata depends on ticker, not the other way).
type ConstituentProvider interface {
	IndexConstituents(ctx context.Context, provider, symbol string, asOf time.Time) ([]Ticker, error)
	SectorMembers(ctx context.Context, sectorPrefix string, asOf time.Time) ([]Ticker, error)
}

// Source is one weighted entry of a FundDefinition's optional source list.
// Expansion is date-aware: index composition changes through time.
type Source struct {
	Kind SourceKind
	// Explicit tickers, used when Kind == SourceExplicit.
	Tickers []Ticker
	// SectorPrefix, used when Kind == SourceSector.
	SectorPrefix string
	// Provider/Symbol identify an index constituent set, used when
	// Kind == SourceIndex.
	Provider string
	Symbol   string
	Weight   float64
}

// Expand resolves the source to a concrete ticker list as of date.
func (s Source) Expand(ctx context.Context, date time.Time, cp ConstituentProvider) ([]Ticker, error) {
	switch s.Kind {
	case SourceExplicit:
		return s.Tickers, nil
	case SourceSector:
		if cp == nil {
			return nil, vferrors.Invalid("ticker_source", "sector source requires a constituent provider")
		}
		return cp.SectorMembers(ctx, s.SectorPrefix, date)
	case SourceIndex:
		if cp == nil {
			return nil, vferrors.Invalid("ticker_source", "index source requires a constituent provider")
		}
		return cp.IndexConstituents(ctx, s.Provider, s.Symbol, date)
	default:
		return nil, vferrors.Invalid("ticker_source", "unknown source kind")
	}
}
