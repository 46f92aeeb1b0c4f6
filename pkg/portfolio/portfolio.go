// Package portfolio implements the engine state machine from spec.md
// §3: free cash, whole-unit positions, reserved cash earmarked for a
// future re-entry, and an optional suspension snapshot. This REPLACES
// backgommon's leverage/shorts/SIP/tax/management-fee Portfolio+Settings
// (see DESIGN.md for the per-field justification — all are Non-goals
// per spec.md §1) while keeping the teacher's style: unexported fields
// behind accessor methods, fmt.Errorf-wrapped validation in the
// mutators, and the "zero entries removed" / "never negative"
// invariant-checking idiom from the teacher's Position.AddOrder.
package portfolio

import (
	"fmt"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/ticker"
)

// Reservation is cash earmarked for a ticker, set aside when a position
// is closed "to be watched" rather than fully liquidated.
type Reservation struct {
	Cash       float64
	ReservedOn time.Time
}

// Portfolio is the mutable engine state a fund simulation carries
// through its calendar loop. Zero value is not valid; use New.
type Portfolio struct {
	freeCash     float64
	positions    map[ticker.Ticker]uint64
	reservedCash map[ticker.Ticker]Reservation
	suspended    map[ticker.Ticker]float64 // nil when not suspended
}

// New creates a Portfolio funded with initCash and no positions.
func New(initCash float64) *Portfolio {
	return &Portfolio{
		freeCash:     initCash,
		positions:    make(map[ticker.Ticker]uint64),
		reservedCash: make(map[ticker.Ticker]Reservation),
	}
}

// FreeCash returns uncommitted cash.
func (p *Portfolio) FreeCash() float64 { return p.freeCash }

// Position returns the held units of t (0 if not held).
func (p *Portfolio) Position(t ticker.Ticker) uint64 { return p.positions[t] }

// Positions returns a copy of the held-ticker -> units map.
func (p *Portfolio) Positions() map[ticker.Ticker]uint64 {
	out := make(map[ticker.Ticker]uint64, len(p.positions))
	for k, v := range p.positions {
		out[k] = v
	}
	return out
}

// Reserved returns the reservation for t, if any.
func (p *Portfolio) Reserved(t ticker.Ticker) (Reservation, bool) {
	r, ok := p.reservedCash[t]
	return r, ok
}

// ReservedCash returns a copy of the ticker -> reservation map.
func (p *Portfolio) ReservedCash() map[ticker.Ticker]Reservation {
	out := make(map[ticker.Ticker]Reservation, len(p.reservedCash))
	for k, v := range p.reservedCash {
		out[k] = v
	}
	return out
}

// IsSuspended reports whether the portfolio currently holds only cash
// because of a suspend-month.
func (p *Portfolio) IsSuspended() bool { return p.suspended != nil }

// SuspendedCash returns a copy of the per-ticker suspended cash map, or
// nil when the portfolio is not suspended.
func (p *Portfolio) SuspendedCash() map[ticker.Ticker]float64 {
	if p.suspended == nil {
		return nil
	}
	out := make(map[ticker.Ticker]float64, len(p.suspended))
	for k, v := range p.suspended {
		out[k] = v
	}
	return out
}

// DebitFreeCash subtracts amount from free cash, failing (no mutation)
// if that would drive it negative. spec.md §3's "a primitive that would
// drive free_cash negative fails silently" invariant is enforced by the
// caller (fundctx turns this error into a Warning event); this method
// only reports the condition.
func (p *Portfolio) DebitFreeCash(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("portfolio: debit amount must be non-negative, got %v", amount)
	}
	if p.freeCash-amount < -1e-9 {
		return fmt.Errorf("portfolio: insufficient free cash: have %v, need %v", p.freeCash, amount)
	}
	p.freeCash -= amount
	if p.freeCash < 0 {
		p.freeCash = 0
	}
	return nil
}

// CreditFreeCash adds amount to free cash.
func (p *Portfolio) CreditFreeCash(amount float64) {
	p.freeCash += amount
}

// SetPosition sets units held of t, removing the entry entirely when
// units is zero (spec.md §3: "positions[t] > 0; zero entries removed").
func (p *Portfolio) SetPosition(t ticker.Ticker, units uint64) {
	if units == 0 {
		delete(p.positions, t)
		return
	}
	p.positions[t] = units
}

// RemovePosition clears t from positions, returning the units held
// before removal.
func (p *Portfolio) RemovePosition(t ticker.Ticker) uint64 {
	units := p.positions[t]
	delete(p.positions, t)
	return units
}

// Reserve records cash earmarked for t as of date, overwriting any
// prior reservation.
func (p *Portfolio) Reserve(t ticker.Ticker, cash float64, date time.Time) {
	p.reservedCash[t] = Reservation{Cash: cash, ReservedOn: date}
}

// AdjustReserved rewrites the cash amount of an existing reservation,
// preserving its original ReservedOn date (spec.md §9: "reserved_on...
// preserve it").
func (p *Portfolio) AdjustReserved(t ticker.Ticker, cash float64) error {
	r, ok := p.reservedCash[t]
	if !ok {
		return fmt.Errorf("portfolio: %s has no reservation to adjust", t)
	}
	r.Cash = cash
	p.reservedCash[t] = r
	return nil
}

// ConsumeReserved removes and returns the reservation for t.
func (p *Portfolio) ConsumeReserved(t ticker.Ticker) (Reservation, bool) {
	r, ok := p.reservedCash[t]
	if ok {
		delete(p.reservedCash, t)
	}
	return r, ok
}

// Suspend closes every held position into the suspended-cash snapshot;
// proceeds is the caller-computed per-ticker close value (fundctx
// computes this from each ticker's close price before calling Suspend).
// Only the calendar loop (pkg/simulator) calls this.
func (p *Portfolio) Suspend(proceeds map[ticker.Ticker]float64) {
	snapshot := make(map[ticker.Ticker]float64, len(proceeds))
	for t, v := range proceeds {
		snapshot[t] = v
	}
	p.suspended = snapshot
	p.positions = make(map[ticker.Ticker]uint64)
}

// Resume clears the suspension snapshot, returning it so the caller
// (fundctx) can reopen positions at current prices.
func (p *Portfolio) Resume() map[ticker.Ticker]float64 {
	snap := p.suspended
	p.suspended = nil
	return snap
}
