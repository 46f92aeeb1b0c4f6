package fundctx

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/event"
	"github.com/CCAtAlvis/vfunds/pkg/ticker"
)

// Target is one (ticker, weight) pair of a Rebalance call.
type Target struct {
	Ticker ticker.Ticker
	Weight float64
}

// Rebalance implements spec.md §4.4's rebalance algorithm exactly.
func (c *Context) Rebalance(ctx context.Context, targets []Target, d time.Time) error {
	wanted := make(map[ticker.Ticker]float64, len(targets))
	var totalWeight float64
	for _, tg := range targets {
		wanted[tg.Ticker] = tg.Weight
		totalWeight += tg.Weight
	}

	// Step 1: drop positions/reservations not in targets.
	for t := range c.Portfolio.Positions() {
		if _, ok := wanted[t]; ok {
			continue
		}
		if _, err := c.PositionClose(ctx, t, false, d); err != nil {
			return err
		}
	}
	for t := range c.Portfolio.ReservedCash() {
		if _, ok := wanted[t]; ok {
			continue
		}
		if r, ok := c.Portfolio.ConsumeReserved(t); ok {
			c.Portfolio.CreditFreeCash(r.Cash)
		}
	}

	if totalWeight <= 0 {
		return c.emitSnapshot(ctx, d)
	}

	totalEquity, ok := c.TotalEquity(d)
	if !ok {
		return c.warn(ctx, d, "rebalance: cannot compute total equity")
	}
	deployable := (1 - c.Options.BufferRatio) * totalEquity

	for _, tg := range targets {
		share := deployable * tg.Weight / totalWeight
		if _, reserved := c.Portfolio.Reserved(tg.Ticker); reserved {
			if err := c.adjustReservedShare(tg.Ticker, share); err != nil {
				return err
			}
			continue
		}
		price, ok := c.closePrice(tg.Ticker, d)
		if !ok {
			if err := c.warn(ctx, d, "rebalance: no price for "+tg.Ticker.String()); err != nil {
				return err
			}
			continue
		}
		if price <= 0 {
			continue
		}
		targetUnits := uint64(math.Floor(share / price))
		if err := c.PositionScale(ctx, tg.Ticker, targetUnits, d); err != nil {
			return err
		}
	}

	return c.emitSnapshot(ctx, d)
}

func (c *Context) adjustReservedShare(t ticker.Ticker, share float64) error {
	r, _ := c.Portfolio.Reserved(t)
	delta := share - r.Cash
	if delta > 0 {
		if err := c.Portfolio.DebitFreeCash(delta); err != nil {
			return nil // insufficient headroom: leave reservation as-is
		}
	} else {
		c.Portfolio.CreditFreeCash(-delta)
	}
	return c.Portfolio.AdjustReserved(t, share)
}

func (c *Context) emitSnapshot(ctx context.Context, d time.Time) error {
	totalEquity, ok := c.TotalEquity(d)
	if !ok {
		return nil
	}
	cumReturn := (totalEquity - c.Options.InitCash) / c.Options.InitCash
	msg := fmt.Sprintf("snapshot: cash=%.2f equity=%.2f cumulative_return=%.4f", c.Portfolio.FreeCash(), totalEquity, cumReturn)
	return c.Bus.Publish(ctx, event.Info(c.Title, d, msg))
}

// CashDeployFree deploys excess free cash (above buffer_ratio *
// total_equity) proportionally across already-held tickers, weighted
// by their target weights from the fund definition.
func (c *Context) CashDeployFree(ctx context.Context, d time.Time) error {
	totalEquity, ok := c.TotalEquity(d)
	if !ok {
		return c.warn(ctx, d, "cash_deploy_free: cannot compute total equity")
	}
	excess := c.Portfolio.FreeCash() - c.Options.BufferRatio*totalEquity
	if excess <= 0 {
		return nil
	}

	var totalWeight float64
	held := c.Portfolio.Positions()
	for t := range held {
		totalWeight += c.Fund.Weights[t]
	}
	if totalWeight <= 0 {
		return nil
	}

	for t := range held {
		w := c.Fund.Weights[t]
		if w <= 0 {
			continue
		}
		share := excess * w / totalWeight
		price, ok := c.buyPrice(t, d)
		if !ok || price <= 0 {
			continue
		}
		units := uint64(math.Floor(share / price))
		if units == 0 {
			continue
		}
		value := float64(units) * price
		buyFee := c.Options.Fees.BuyFee(value)
		if err := c.Portfolio.DebitFreeCash(value + buyFee); err != nil {
			continue
		}
		c.Portfolio.SetPosition(t, c.Portfolio.Position(t)+units)
		c.recordOrder(d)
		if err := c.emitBuy(ctx, t, d, units, price, buyFee, "cash_deploy_free"); err != nil {
			return err
		}
	}
	return nil
}

// CashRaise is CashDeployFree's inverse: sells proportionally across
// held tickers, weighted by each position's current market value at the
// sell price, to raise the requested cash.
func (c *Context) CashRaise(ctx context.Context, cash float64, d time.Time) error {
	held := c.Portfolio.Positions()
	var totalValue float64
	values := make(map[ticker.Ticker]float64, len(held))
	for t, units := range held {
		price, ok := c.sellPrice(t, d)
		if !ok {
			continue
		}
		v := float64(units) * price
		values[t] = v
		totalValue += v
	}
	if totalValue <= 0 {
		return c.warn(ctx, d, "cash_raise: no sellable positions")
	}

	for t, v := range values {
		share := cash * v / totalValue
		price, ok := c.sellPrice(t, d)
		if !ok || price <= 0 {
			continue
		}
		units := uint64(math.Floor(share / price))
		held := c.Portfolio.Position(t)
		if units > held {
			units = held
		}
		if units == 0 {
			continue
		}
		value := float64(units) * price
		sellFee := c.Options.Fees.SellFee(value)
		c.Portfolio.SetPosition(t, held-units)
		c.Portfolio.CreditFreeCash(value - sellFee)
		c.recordOrder(d)
		if err := c.emitSell(ctx, t, d, units, price, sellFee, "cash_raise"); err != nil {
			return err
		}
	}
	return nil
}
