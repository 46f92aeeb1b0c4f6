package marketdata

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/CCAtAlvis/vfunds/pkg/series"
	"github.com/CCAtAlvis/vfunds/pkg/ticker"
	"github.com/CCAtAlvis/vfunds/pkg/vferrors"
)

// RowDecoder turns one vendor HTTP response body into a series.Table.
// Concrete vendor adapters (QMT/Tushare/AKTools) are out of scope per
// spec.md §1; HTTPSource is the generic client shell a vendor adapter
// would configure with its own base URL, query params, and decoder.
type RowDecoder func(body []byte) (*series.Table, error)

// HTTPSource is a generic resty-backed vendor client: one rate limiter
// shared across all endpoints (mirrors pvdata's per-minute tiingo
// limiter), retried with jittered backoff, decoded by a caller-supplied
// RowDecoder per dataset.
type HTTPSource struct {
	Client      *resty.Client
	Limiter     *rate.Limiter
	MaxAttempts int
	MaxBackoff  time.Duration

	BaseURL string

	KlineDecoder            RowDecoder
	DividendsDecoder        RowDecoder
	PerShareDecoder         RowDecoder
	CapitalStructureDecoder RowDecoder
}

// NewHTTPSource builds an HTTPSource with sane retry/backoff defaults.
func NewHTTPSource(baseURL string, limiter *rate.Limiter) *HTTPSource {
	return &HTTPSource{
		Client:      resty.New().SetBaseURL(baseURL),
		Limiter:     limiter,
		MaxAttempts: 5,
		MaxBackoff:  30 * time.Second,
		BaseURL:     baseURL,
	}
}

func (h *HTTPSource) get(ctx context.Context, path string, params map[string]string, decode RowDecoder) (*series.Table, error) {
	if decode == nil {
		return nil, vferrors.Invalid("marketdata_endpoint", "no decoder configured for "+path)
	}
	if h.Limiter != nil {
		if err := h.Limiter.Wait(ctx); err != nil {
			return nil, vferrors.HTTPTransport(path, err)
		}
	}

	var table *series.Table
	err := withRetry(ctx, h.MaxAttempts, h.MaxBackoff, func() error {
		resp, err := h.Client.R().SetContext(ctx).SetQueryParams(params).Get(path)
		if err != nil {
			return vferrors.HTTPTransport(path, err)
		}
		if resp.StatusCode() >= 300 {
			return vferrors.HTTPStatus(resp.StatusCode(), path)
		}
		t, err := decode(resp.Body())
		if err != nil {
			return vferrors.Serialization(path, err)
		}
		table = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

func (h *HTTPSource) Kline(ctx context.Context, t ticker.Ticker, from, to time.Time, adjust AdjustMode) (*series.Table, error) {
	return h.get(ctx, "/kline", map[string]string{
		"symbol": t.String(),
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
		"adjust": string(adjust),
	}, h.KlineDecoder)
}

func (h *HTTPSource) Dividends(ctx context.Context, t ticker.Ticker, from, to time.Time) (*series.Table, error) {
	return h.get(ctx, "/dividends", map[string]string{
		"symbol": t.String(),
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
	}, h.DividendsDecoder)
}

func (h *HTTPSource) PerShareReports(ctx context.Context, t ticker.Ticker, from, to time.Time) (*series.Table, error) {
	return h.get(ctx, "/per-share", map[string]string{
		"symbol": t.String(),
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
	}, h.PerShareDecoder)
}

func (h *HTTPSource) CapitalStructure(ctx context.Context, t ticker.Ticker, from, to time.Time) (*series.Table, error) {
	return h.get(ctx, "/capital-structure", map[string]string{
		"symbol": t.String(),
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
	}, h.CapitalStructureDecoder)
}

func (h *HTTPSource) IndexConstituents(ctx context.Context, provider, symbol string, asOf time.Time) ([]ticker.Ticker, error) {
	return nil, vferrors.Invalid("marketdata_endpoint", fmt.Sprintf("IndexConstituents not wired for provider %q", provider))
}

func (h *HTTPSource) SectorMembership(ctx context.Context, sectorPrefix string, asOf time.Time) ([]ticker.Ticker, error) {
	return nil, vferrors.Invalid("marketdata_endpoint", "SectorMembership not wired")
}

func (h *HTTPSource) DelistFlags(ctx context.Context, t ticker.Ticker) (bool, error) {
	return false, vferrors.Invalid("marketdata_endpoint", "DelistFlags not wired")
}

func (h *HTTPSource) STFlags(ctx context.Context, t ticker.Ticker, asOf time.Time) (bool, error) {
	return false, vferrors.Invalid("marketdata_endpoint", "STFlags not wired")
}

func (h *HTTPSource) TradeCalendar(ctx context.Context, from, to time.Time) ([]time.Time, error) {
	return nil, vferrors.Invalid("marketdata_endpoint", "TradeCalendar not wired")
}
