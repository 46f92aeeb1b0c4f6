package fundctx

import (
	"context"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/event"
	"github.com/CCAtAlvis/vfunds/pkg/ticker"
)

// Suspend closes every held position into suspended_cash, valued at
// the day's close price (falling back to 0 for a ticker with no price
// rather than aborting the whole suspension). Only the calendar loop
// (pkg/simulator) calls this, per spec.md §4.4's state machine.
func (c *Context) Suspend(ctx context.Context, d time.Time) error {
	proceeds := make(map[ticker.Ticker]float64)
	for t, units := range c.Portfolio.Positions() {
		price, ok := c.closePrice(t, d)
		if !ok {
			price = 0
		}
		proceeds[t] = float64(units) * price
	}
	c.Portfolio.Suspend(proceeds)
	return c.Bus.Publish(ctx, event.Info(c.Title, d, "suspended"))
}

// Resume reopens the positions captured by Suspend at current close
// prices, debiting nothing further (the cash was already set aside at
// close time); any residual imbalance from price movement during
// suspension lands in free_cash.
func (c *Context) Resume(ctx context.Context, d time.Time) error {
	snapshot := c.Portfolio.Resume()
	for t, cash := range snapshot {
		price, ok := c.closePrice(t, d)
		if !ok || price <= 0 {
			c.Portfolio.CreditFreeCash(cash)
			continue
		}
		units := uint64(cash / price)
		c.Portfolio.SetPosition(t, units)
		remainder := cash - float64(units)*price
		if remainder > 0 {
			c.Portfolio.CreditFreeCash(remainder)
		}
	}
	return c.Bus.Publish(ctx, event.Info(c.Title, d, "resumed"))
}
