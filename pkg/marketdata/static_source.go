package marketdata

import (
	"context"
	"sort"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/series"
	"github.com/CCAtAlvis/vfunds/pkg/ticker"
	"github.com/CCAtAlvis/vfunds/pkg/vferrors"
)

// StaticSource is an in-memory Source fixture: every dataset is
// populated directly by the caller (tests, worked-example rules)
// instead of fetched over HTTP. It never hits the network and never
// errors except on missing data, making it the reference Source for
// deterministic simulations and for spec.md §8's end-to-end scenarios.
type StaticSource struct {
	Klines       map[string]*series.Table // key: ticker.String()
	Dividends_   map[string]*series.Table
	PerShare     map[string]*series.Table
	Capital      map[string]*series.Table
	Indexes      map[string][]ticker.Ticker // key: provider+":"+symbol
	Sectors      map[string][]ticker.Ticker // key: sectorPrefix
	Delisted     map[string]bool
	ST           map[string]bool
	TradeCalend_ []time.Time
}

// NewStaticSource allocates an empty StaticSource ready for population.
func NewStaticSource() *StaticSource {
	return &StaticSource{
		Klines:   make(map[string]*series.Table),
		Dividends_: make(map[string]*series.Table),
		PerShare: make(map[string]*series.Table),
		Capital:  make(map[string]*series.Table),
		Indexes:  make(map[string][]ticker.Ticker),
		Sectors:  make(map[string][]ticker.Ticker),
		Delisted: make(map[string]bool),
		ST:       make(map[string]bool),
	}
}

func (s *StaticSource) Kline(ctx context.Context, t ticker.Ticker, from, to time.Time, adjust AdjustMode) (*series.Table, error) {
	tbl, ok := s.Klines[t.String()]
	if !ok {
		return nil, vferrors.NoData("kline", "no kline fixture for "+t.String())
	}
	return tbl.SliceByDateRange(from, to), nil
}

func (s *StaticSource) Dividends(ctx context.Context, t ticker.Ticker, from, to time.Time) (*series.Table, error) {
	tbl, ok := s.Dividends_[t.String()]
	if !ok {
		return nil, vferrors.NoData("dividends", "no dividend fixture for "+t.String())
	}
	return tbl.SliceByDateRange(from, to), nil
}

func (s *StaticSource) PerShareReports(ctx context.Context, t ticker.Ticker, from, to time.Time) (*series.Table, error) {
	tbl, ok := s.PerShare[t.String()]
	if !ok {
		return nil, vferrors.NoData("per_share", "no per-share fixture for "+t.String())
	}
	return tbl.SliceByDateRange(from, to), nil
}

func (s *StaticSource) CapitalStructure(ctx context.Context, t ticker.Ticker, from, to time.Time) (*series.Table, error) {
	tbl, ok := s.Capital[t.String()]
	if !ok {
		return nil, vferrors.NoData("capital_structure", "no capital-structure fixture for "+t.String())
	}
	return tbl.SliceByDateRange(from, to), nil
}

func (s *StaticSource) IndexConstituents(ctx context.Context, provider, symbol string, asOf time.Time) ([]ticker.Ticker, error) {
	members, ok := s.Indexes[provider+":"+symbol]
	if !ok {
		return nil, vferrors.NoData("index_constituents", "no index fixture for "+provider+":"+symbol)
	}
	return members, nil
}

func (s *StaticSource) SectorMembership(ctx context.Context, sectorPrefix string, asOf time.Time) ([]ticker.Ticker, error) {
	members, ok := s.Sectors[sectorPrefix]
	if !ok {
		return nil, vferrors.NoData("sector_membership", "no sector fixture for "+sectorPrefix)
	}
	return members, nil
}

func (s *StaticSource) DelistFlags(ctx context.Context, t ticker.Ticker) (bool, error) {
	return s.Delisted[t.String()], nil
}

func (s *StaticSource) STFlags(ctx context.Context, t ticker.Ticker, asOf time.Time) (bool, error) {
	return s.ST[t.String()], nil
}

func (s *StaticSource) TradeCalendar(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	var out []time.Time
	for _, d := range s.TradeCalend_ {
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}
