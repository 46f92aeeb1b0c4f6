package fundctx

import (
	"context"
	"math"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/event"
	"github.com/CCAtAlvis/vfunds/pkg/ticker"
)

// warn emits a Warning and returns Publish's result (nil unless ctx is
// done) — spec.md §4.4's "all primitives
// emit a Warning when price data is missing and return success without
// placing an order" / §7's "context primitives recover missing-price
// conditions into Warning events".
func (c *Context) warn(ctx context.Context, d time.Time, msg string) error {
	return c.Bus.Publish(ctx, event.Warning(c.Title, d, msg))
}

func (c *Context) emitBuy(ctx context.Context, t ticker.Ticker, d time.Time, units uint64, price, feeAmt float64, reason string) error {
	return c.Bus.Publish(ctx, event.Buy(c.Title, d, event.OrderPayload{
		Ticker: t, Date: d, Shares: units, Price: price, Value: float64(units) * price, Fee: feeAmt, Reason: reason,
	}))
}

func (c *Context) emitSell(ctx context.Context, t ticker.Ticker, d time.Time, units uint64, price, feeAmt float64, reason string) error {
	return c.Bus.Publish(ctx, event.Sell(c.Title, d, event.OrderPayload{
		Ticker: t, Date: d, Shares: units, Price: price, Value: float64(units) * price, Fee: feeAmt, Reason: reason,
	}))
}

// PositionOpen buys units of t funded from cash, per spec.md §4.4:
// units = floor((cash - buy_fee(cash)) / price); debits u·p + buy_fee(u·p).
func (c *Context) PositionOpen(ctx context.Context, t ticker.Ticker, cash float64, d time.Time) error {
	price, ok := c.buyPrice(t, d)
	if !ok {
		return c.warn(ctx, d, "position_open: no price for "+t.String())
	}
	return c.positionOpenAt(ctx, t, cash, price, d, "position_open")
}

// PositionOpenWithPrice is PositionOpen with a fixed price, overriding
// the buy-side price policy.
func (c *Context) PositionOpenWithPrice(ctx context.Context, t ticker.Ticker, cash, price float64, d time.Time) error {
	return c.positionOpenAt(ctx, t, cash, price, d, "position_open_with_price")
}

func (c *Context) positionOpenAt(ctx context.Context, t ticker.Ticker, cash, price float64, d time.Time, reason string) error {
	if price <= 0 {
		return c.warn(ctx, d, "position_open: non-positive price for "+t.String())
	}
	reserve := c.Options.Fees.BuyFee(cash)
	units := uint64(math.Floor((cash - reserve) / price))
	if units == 0 {
		return c.warn(ctx, d, "position_open: cash too small to buy a unit of "+t.String())
	}
	value := float64(units) * price
	buyFee := c.Options.Fees.BuyFee(value)
	debit := value + buyFee
	if err := c.Portfolio.DebitFreeCash(debit); err != nil {
		return c.warn(ctx, d, "position_open: insufficient free cash for "+t.String())
	}
	c.Portfolio.SetPosition(t, c.Portfolio.Position(t)+units)
	c.recordOrder(d)
	return c.emitBuy(ctx, t, d, units, price, buyFee, reason)
}

// PositionClose sells all units of t. Proceeds go to reserved_cash[t]
// (with today as reserved_on) if makeReserved, else to free_cash.
func (c *Context) PositionClose(ctx context.Context, t ticker.Ticker, makeReserved bool, d time.Time) (float64, error) {
	price, ok := c.sellPrice(t, d)
	if !ok {
		return 0, c.warn(ctx, d, "position_close: no price for "+t.String())
	}
	return c.positionCloseAt(ctx, t, makeReserved, price, d, "position_close")
}

// PositionCloseWithPrice is PositionClose with a fixed price.
func (c *Context) PositionCloseWithPrice(ctx context.Context, t ticker.Ticker, makeReserved bool, price float64, d time.Time) (float64, error) {
	return c.positionCloseAt(ctx, t, makeReserved, price, d, "position_close_with_price")
}

func (c *Context) positionCloseAt(ctx context.Context, t ticker.Ticker, makeReserved bool, price float64, d time.Time, reason string) (float64, error) {
	units := c.Portfolio.Position(t)
	if units == 0 {
		return 0, c.warn(ctx, d, "position_close: no position in "+t.String())
	}
	if price <= 0 {
		return 0, c.warn(ctx, d, "position_close: non-positive price for "+t.String())
	}
	value := float64(units) * price
	sellFee := c.Options.Fees.SellFee(value)
	proceeds := value - sellFee
	c.Portfolio.RemovePosition(t)
	if makeReserved {
		c.Portfolio.Reserve(t, proceeds, d)
	} else {
		c.Portfolio.CreditFreeCash(proceeds)
	}
	c.recordOrder(d)
	if err := c.emitSell(ctx, t, d, units, price, sellFee, reason); err != nil {
		return proceeds, err
	}
	return proceeds, nil
}

// PositionScale moves the held units of t toward targetUnits. A no-op
// if |delta|/held < position_tolerance. Growing is capped by
// free_cash - buffer_ratio*total_equity; shrinking sells |delta| (and
// removes the entry entirely if it reaches zero).
func (c *Context) PositionScale(ctx context.Context, t ticker.Ticker, targetUnits uint64, d time.Time) error {
	held := c.Portfolio.Position(t)
	if held > 0 {
		delta := int64(targetUnits) - int64(held)
		if math.Abs(float64(delta))/float64(held) < c.Options.PositionTolerance {
			return nil
		}
	}

	if targetUnits > held {
		return c.scaleUp(ctx, t, targetUnits-held, d)
	}
	if targetUnits < held {
		return c.scaleDown(ctx, t, held-targetUnits, d)
	}
	return nil
}

func (c *Context) scaleUp(ctx context.Context, t ticker.Ticker, addUnits uint64, d time.Time) error {
	price, ok := c.buyPrice(t, d)
	if !ok {
		return c.warn(ctx, d, "position_scale: no price for "+t.String())
	}
	if price <= 0 {
		return c.warn(ctx, d, "position_scale: non-positive price for "+t.String())
	}

	totalEquity, ok := c.TotalEquity(d)
	if !ok {
		return c.warn(ctx, d, "position_scale: cannot compute total equity")
	}
	headroom := c.Portfolio.FreeCash() - c.Options.BufferRatio*totalEquity
	if headroom <= 0 {
		return c.warn(ctx, d, "position_scale: no buffer headroom to buy "+t.String())
	}

	desiredValue := float64(addUnits) * price
	capValue := math.Min(desiredValue, headroom)
	units := uint64(math.Floor(capValue / price))
	if units == 0 {
		return c.warn(ctx, d, "position_scale: no headroom to buy a unit of "+t.String())
	}
	value := float64(units) * price
	buyFee := c.Options.Fees.BuyFee(value)
	if err := c.Portfolio.DebitFreeCash(value + buyFee); err != nil {
		return c.warn(ctx, d, "position_scale: insufficient free cash for "+t.String())
	}
	c.Portfolio.SetPosition(t, c.Portfolio.Position(t)+units)
	c.recordOrder(d)
	return c.emitBuy(ctx, t, d, units, price, buyFee, "position_scale")
}

func (c *Context) scaleDown(ctx context.Context, t ticker.Ticker, removeUnits uint64, d time.Time) error {
	price, ok := c.sellPrice(t, d)
	if !ok {
		return c.warn(ctx, d, "position_scale: no price for "+t.String())
	}
	held := c.Portfolio.Position(t)
	if removeUnits > held {
		removeUnits = held
	}
	value := float64(removeUnits) * price
	sellFee := c.Options.Fees.SellFee(value)
	c.Portfolio.SetPosition(t, held-removeUnits)
	c.Portfolio.CreditFreeCash(value - sellFee)
	c.recordOrder(d)
	return c.emitSell(ctx, t, d, removeUnits, price, sellFee, "position_scale")
}

// PositionEntryReserved consumes reserved_cash[t], buys
// floor((cash-buy_fee)/price) units, and returns unspent cash
// (including skipped fractional amounts) to free_cash.
func (c *Context) PositionEntryReserved(ctx context.Context, t ticker.Ticker, d time.Time) error {
	reservation, ok := c.Portfolio.ConsumeReserved(t)
	if !ok {
		return c.warn(ctx, d, "position_entry_reserved: no reservation for "+t.String())
	}
	price, ok := c.buyPrice(t, d)
	if !ok {
		c.Portfolio.CreditFreeCash(reservation.Cash)
		return c.warn(ctx, d, "position_entry_reserved: no price for "+t.String())
	}
	if price <= 0 {
		c.Portfolio.CreditFreeCash(reservation.Cash)
		return c.warn(ctx, d, "position_entry_reserved: non-positive price for "+t.String())
	}

	buyFeeOnCash := c.Options.Fees.BuyFee(reservation.Cash)
	units := uint64(math.Floor((reservation.Cash - buyFeeOnCash) / price))
	if units == 0 {
		c.Portfolio.CreditFreeCash(reservation.Cash)
		return c.warn(ctx, d, "position_entry_reserved: reserved cash too small for "+t.String())
	}
	value := float64(units) * price
	buyFee := c.Options.Fees.BuyFee(value)
	spent := value + buyFee
	unspent := reservation.Cash - spent
	if unspent > 0 {
		c.Portfolio.CreditFreeCash(unspent)
	}
	c.Portfolio.SetPosition(t, c.Portfolio.Position(t)+units)
	c.recordOrder(d)
	return c.emitBuy(ctx, t, d, units, price, buyFee, "position_entry_reserved")
}
