package marketdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/marketdata/cache"
	"github.com/CCAtAlvis/vfunds/pkg/series"
	"github.com/CCAtAlvis/vfunds/pkg/ticker"
	"github.com/rs/zerolog/log"
)

// Cache decorates a Source with the three-tier read-through chain from
// spec.md §4.2: a process-local concurrent map, a persistent key→bytes
// store, and finally the vendor itself. Keys are
// "<source>:<endpoint>?<params>"; expiry is computed by NextDataExpire.
type Cache struct {
	inner      Source
	local      sync.Map // string -> *series.Table
	persistent cache.Store
	expireDays int
	sourceName string
	now        func() time.Time
}

// NewCache wraps inner with the standard read-through chain. sourceName
// tags cache keys (e.g. "tushare", "qmt"); expireDays feeds
// NextDataExpire for freshly-fetched entries.
func NewCache(inner Source, persistent cache.Store, sourceName string, expireDays int) *Cache {
	return &Cache{inner: inner, persistent: persistent, sourceName: sourceName, expireDays: expireDays, now: time.Now}
}

func (c *Cache) key(endpoint string, params ...any) string {
	return fmt.Sprintf("%s:%s?%v", c.sourceName, endpoint, params)
}

func (c *Cache) fetchTable(key string, fetch func() (*series.Table, error)) (*series.Table, error) {
	if v, ok := c.local.Load(key); ok {
		return v.(*series.Table), nil
	}
	if raw, ok := c.persistent.Get(key); ok {
		tbl := &series.Table{}
		if err := tbl.UnmarshalJSON(raw); err == nil {
			log.Debug().Str("key", key).Msg("marketdata: persistent cache hit")
			c.local.Store(key, tbl)
			return tbl, nil
		}
	}
	log.Debug().Str("key", key).Msg("marketdata: cache miss, fetching from source")
	tbl, err := fetch()
	if err != nil {
		return nil, err
	}
	c.local.Store(key, tbl)
	if raw, err := tbl.MarshalJSON(); err == nil {
		c.persistent.Set(key, raw, NextDataExpire(c.expireDays, c.now()))
	}
	return tbl, nil
}

func (c *Cache) Kline(ctx context.Context, t ticker.Ticker, from, to time.Time, adjust AdjustMode) (*series.Table, error) {
	key := c.key("kline", t.String(), from, to, adjust)
	return c.fetchTable(key, func() (*series.Table, error) { return c.inner.Kline(ctx, t, from, to, adjust) })
}

func (c *Cache) Dividends(ctx context.Context, t ticker.Ticker, from, to time.Time) (*series.Table, error) {
	key := c.key("dividends", t.String(), from, to)
	return c.fetchTable(key, func() (*series.Table, error) { return c.inner.Dividends(ctx, t, from, to) })
}

func (c *Cache) PerShareReports(ctx context.Context, t ticker.Ticker, from, to time.Time) (*series.Table, error) {
	key := c.key("per_share", t.String(), from, to)
	return c.fetchTable(key, func() (*series.Table, error) { return c.inner.PerShareReports(ctx, t, from, to) })
}

func (c *Cache) CapitalStructure(ctx context.Context, t ticker.Ticker, from, to time.Time) (*series.Table, error) {
	key := c.key("capital_structure", t.String(), from, to)
	return c.fetchTable(key, func() (*series.Table, error) { return c.inner.CapitalStructure(ctx, t, from, to) })
}

// The remaining datasets (constituents, flags, calendar) are cheap,
// rarely-varying lookups in practice; spec.md §4.2 does not require the
// full Table-caching machinery for them, so Cache forwards directly.

func (c *Cache) IndexConstituents(ctx context.Context, provider, symbol string, asOf time.Time) ([]ticker.Ticker, error) {
	return c.inner.IndexConstituents(ctx, provider, symbol, asOf)
}

func (c *Cache) SectorMembership(ctx context.Context, sectorPrefix string, asOf time.Time) ([]ticker.Ticker, error) {
	return c.inner.SectorMembership(ctx, sectorPrefix, asOf)
}

func (c *Cache) DelistFlags(ctx context.Context, t ticker.Ticker) (bool, error) {
	return c.inner.DelistFlags(ctx, t)
}

func (c *Cache) STFlags(ctx context.Context, t ticker.Ticker, asOf time.Time) (bool, error) {
	return c.inner.STFlags(ctx, t, asOf)
}

func (c *Cache) TradeCalendar(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	return c.inner.TradeCalendar(ctx, from, to)
}
