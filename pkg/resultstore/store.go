// Package resultstore persists backtest.Result values to a local
// sqlite database, grounded on the corpus's database/sql +
// modernc.org/sqlite pairing (e.g. other_examples'
// IronWarden-Backtester, which drives a SQL store alongside its
// backtest loop). Metrics are flattened to columns for querying;
// trade_dates_value and order_dates, which don't fit a flat row, are
// stored as JSON blobs.
package resultstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/backtest"
	"github.com/CCAtAlvis/vfunds/pkg/metrics"
	"github.com/CCAtAlvis/vfunds/pkg/ticker"
	_ "modernc.org/sqlite"
)

// Store persists and retrieves backtest.Result rows.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) a sqlite database at path and ensures
// the results table exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS results (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	start_date TEXT NOT NULL,
	end_date TEXT NOT NULL,
	init_cash REAL NOT NULL,
	final_cash REAL NOT NULL,
	total_return REAL NOT NULL,
	annualized_return_rate REAL,
	max_drawdown REAL NOT NULL,
	annualized_volatility REAL NOT NULL,
	sharpe REAL,
	sortino REAL,
	calmar REAL,
	win_rate REAL NOT NULL,
	profit_factor REAL,
	order_dates TEXT NOT NULL,
	trade_dates_value TEXT NOT NULL,
	final_positions_value TEXT NOT NULL,
	calendar_year_returns TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_title ON results(title);
`)
	return err
}

// Save inserts result and returns its assigned row id.
func (s *Store) Save(ctx context.Context, result backtest.Result) (int64, error) {
	orderDates, err := json.Marshal(result.OrderDates)
	if err != nil {
		return 0, err
	}
	curve, err := json.Marshal(result.TradeDatesValue)
	if err != nil {
		return 0, err
	}
	positionsByName := make(map[string]float64, len(result.FinalPositionsValue))
	for t, v := range result.FinalPositionsValue {
		positionsByName[t.String()] = v
	}
	positions, err := json.Marshal(positionsByName)
	if err != nil {
		return 0, err
	}
	calendarReturns, err := json.Marshal(result.Metrics.CalendarYearReturns)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `
INSERT INTO results (
	title, start_date, end_date, init_cash, final_cash, total_return,
	annualized_return_rate, max_drawdown, annualized_volatility,
	sharpe, sortino, calmar, win_rate, profit_factor,
	order_dates, trade_dates_value, final_positions_value, calendar_year_returns, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.Title,
		result.Options.StartDate.Format(time.RFC3339),
		result.Options.EndDate.Format(time.RFC3339),
		result.Options.InitCash,
		result.FinalCash,
		result.Metrics.TotalReturn,
		nullableFloat(result.Metrics.AnnualizedReturnRate),
		result.Metrics.MaxDrawdown,
		result.Metrics.AnnualizedVolatility,
		nullableFloat(result.Metrics.Sharpe),
		nullableFloat(result.Metrics.Sortino),
		nullableFloat(result.Metrics.Calmar),
		result.Metrics.WinRate,
		nullableFloat(result.Metrics.ProfitFactor),
		string(orderDates),
		string(curve),
		string(positions),
		string(calendarReturns),
		time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Row is a results-table row as loaded back from the store.
type Row struct {
	ID     int64
	Result backtest.Result
}

// Load retrieves a single result by id.
func (s *Store) Load(ctx context.Context, id int64) (backtest.Result, error) {
	row := s.db.QueryRowContext(ctx, `SELECT title, start_date, end_date, init_cash, final_cash,
total_return, annualized_return_rate, max_drawdown, annualized_volatility,
sharpe, sortino, calmar, win_rate, profit_factor,
order_dates, trade_dates_value, final_positions_value, calendar_year_returns
FROM results WHERE id = ?`, id)
	return scanResult(row)
}

// List returns every stored result for the given fund title, most
// recent first.
func (s *Store) List(ctx context.Context, title string) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, start_date, end_date, init_cash, final_cash,
total_return, annualized_return_rate, max_drawdown, annualized_volatility,
sharpe, sortino, calmar, win_rate, profit_factor,
order_dates, trade_dates_value, final_positions_value, calendar_year_returns
FROM results WHERE title = ? ORDER BY id DESC`, title)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var id int64
		var startDate, endDate string
		var initCash, finalCash, totalReturn, maxDrawdown, annualizedVol, winRate float64
		var arr, sharpe, sortino, calmar, profitFactor sql.NullFloat64
		var orderDatesRaw, curveRaw, positionsRaw, calendarRaw string
		var title string
		if err := rows.Scan(&id, &title, &startDate, &endDate, &initCash, &finalCash,
			&totalReturn, &arr, &maxDrawdown, &annualizedVol,
			&sharpe, &sortino, &calmar, &winRate, &profitFactor,
			&orderDatesRaw, &curveRaw, &positionsRaw, &calendarRaw); err != nil {
			return nil, err
		}
		r, err := assembleResult(title, startDate, endDate, initCash, finalCash, totalReturn, arr,
			maxDrawdown, annualizedVol, sharpe, sortino, calmar, winRate, profitFactor,
			orderDatesRaw, curveRaw, positionsRaw, calendarRaw)
		if err != nil {
			return nil, err
		}
		out = append(out, Row{ID: id, Result: r})
	}
	return out, rows.Err()
}

func scanResult(row *sql.Row) (backtest.Result, error) {
	var startDate, endDate string
	var initCash, finalCash, totalReturn, maxDrawdown, annualizedVol, winRate float64
	var arr, sharpe, sortino, calmar, profitFactor sql.NullFloat64
	var orderDatesRaw, curveRaw, positionsRaw, calendarRaw string
	var title string
	if err := row.Scan(&title, &startDate, &endDate, &initCash, &finalCash,
		&totalReturn, &arr, &maxDrawdown, &annualizedVol,
		&sharpe, &sortino, &calmar, &winRate, &profitFactor,
		&orderDatesRaw, &curveRaw, &positionsRaw, &calendarRaw); err != nil {
		return backtest.Result{}, err
	}
	return assembleResult(title, startDate, endDate, initCash, finalCash, totalReturn, arr,
		maxDrawdown, annualizedVol, sharpe, sortino, calmar, winRate, profitFactor,
		orderDatesRaw, curveRaw, positionsRaw, calendarRaw)
}

func assembleResult(title, startDate, endDate string, initCash, finalCash, totalReturn float64, arr sql.NullFloat64,
	maxDrawdown, annualizedVol float64, sharpe, sortino, calmar sql.NullFloat64, winRate float64, profitFactor sql.NullFloat64,
	orderDatesRaw, curveRaw, positionsRaw, calendarRaw string) (backtest.Result, error) {

	start, err := time.Parse(time.RFC3339, startDate)
	if err != nil {
		return backtest.Result{}, err
	}
	end, err := time.Parse(time.RFC3339, endDate)
	if err != nil {
		return backtest.Result{}, err
	}

	var orderDates []time.Time
	if err := json.Unmarshal([]byte(orderDatesRaw), &orderDates); err != nil {
		return backtest.Result{}, err
	}
	var curve []backtest.ValueAt
	if err := json.Unmarshal([]byte(curveRaw), &curve); err != nil {
		return backtest.Result{}, err
	}
	var positionsByName map[string]float64
	if err := json.Unmarshal([]byte(positionsRaw), &positionsByName); err != nil {
		return backtest.Result{}, err
	}
	positions := make(map[ticker.Ticker]float64, len(positionsByName))
	for name, v := range positionsByName {
		t, err := ticker.Parse(name)
		if err != nil {
			continue
		}
		positions[t] = v
	}
	var calendarReturns map[int]float64
	if err := json.Unmarshal([]byte(calendarRaw), &calendarReturns); err != nil {
		return backtest.Result{}, err
	}

	return backtest.Result{
		Title:               title,
		Options:             backtest.Options{StartDate: start, EndDate: end, InitCash: initCash},
		FinalCash:           finalCash,
		FinalPositionsValue: positions,
		Metrics:             metricsFrom(totalReturn, arr, maxDrawdown, annualizedVol, sharpe, sortino, calmar, winRate, profitFactor, calendarReturns),
		OrderDates:          orderDates,
		TradeDatesValue:     curve,
	}, nil
}

func metricsFrom(totalReturn float64, arr sql.NullFloat64, maxDrawdown, annualizedVol float64,
	sharpe, sortino, calmar sql.NullFloat64, winRate float64, profitFactor sql.NullFloat64,
	calendarReturns map[int]float64) metrics.Summary {
	return metrics.Summary{
		TotalReturn:          totalReturn,
		AnnualizedReturnRate: nullFloatPtr(arr),
		MaxDrawdown:          maxDrawdown,
		AnnualizedVolatility: annualizedVol,
		Sharpe:               nullFloatPtr(sharpe),
		Sortino:              nullFloatPtr(sortino),
		Calmar:               nullFloatPtr(calmar),
		WinRate:              winRate,
		ProfitFactor:         nullFloatPtr(profitFactor),
		CalendarYearReturns:  calendarReturns,
	}
}

func nullFloatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}
