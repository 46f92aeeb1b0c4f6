package marketdata

import (
	"context"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/ticker"
)

// ConstituentAdapter satisfies ticker.ConstituentProvider over a Source,
// bridging the naming difference between Source.SectorMembership (this
// package's vocabulary) and ticker.ConstituentProvider.SectorMembers
// (the ticker package's vocabulary, fixed to avoid an import cycle).
type ConstituentAdapter struct {
	Source Source
}

func (a ConstituentAdapter) IndexConstituents(ctx context.Context, provider, symbol string, asOf time.Time) ([]ticker.Ticker, error) {
	return a.Source.IndexConstituents(ctx, provider, symbol, asOf)
}

func (a ConstituentAdapter) SectorMembers(ctx context.Context, sectorPrefix string, asOf time.Time) ([]ticker.Ticker, error) {
	return a.Source.SectorMembership(ctx, sectorPrefix, asOf)
}
