package cv

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/backtest"
	"github.com/CCAtAlvis/vfunds/pkg/event"
	"github.com/CCAtAlvis/vfunds/pkg/marketdata"
	"github.com/CCAtAlvis/vfunds/pkg/metrics"
	"github.com/CCAtAlvis/vfunds/pkg/simulator"
)

// Window is one sub-window's calendar bounds.
type Window struct {
	Start, End time.Time
}

// WindowResult is a single window's backtest metrics.
type WindowResult struct {
	Window  Window
	Metrics metrics.Summary
}

// generateWindows builds the sub-window set spec.md §4.8 describes: the
// full [seed, end] window, then 2^k additional half-overlap windows for
// k = 1..floor(log2(total_days/minWindowDays)), each of length
// 2*total_days/(2^k+1), tiled backwards from end.
func generateWindows(seed, end time.Time, minWindowDays int) []Window {
	totalDays := int(end.Sub(seed).Hours() / 24)
	if totalDays <= 0 || minWindowDays <= 0 {
		return []Window{{Start: seed, End: end}}
	}

	windows := []Window{{Start: seed, End: end}}

	maxK := int(math.Floor(math.Log2(float64(totalDays) / float64(minWindowDays))))
	for k := 1; k <= maxK; k++ {
		numWindows := 1 << uint(k)
		lengthDays := int(2 * float64(totalDays) / float64(numWindows+1))
		if lengthDays < minWindowDays {
			continue
		}
		stride := lengthDays / 2
		for i := 0; i < numWindows; i++ {
			winEnd := end.AddDate(0, 0, -i*stride)
			winStart := winEnd.AddDate(0, 0, -lengthDays)
			if winStart.Before(seed) {
				winStart = seed
			}
			if !winStart.Before(winEnd) {
				continue
			}
			windows = append(windows, Window{Start: winStart, End: winEnd})
		}
	}
	return windows
}

// RunWindows executes fund over every sub-window generated from
// cv.StartDates[0] through cv.Base.EndDate, streaming per-window Info
// events and a final ARR/Sharpe mean/min summary over bus.
func RunWindows(ctx context.Context, fund *backtest.FundDefinition, cv CvOptions, source marketdata.Source, bus *event.Bus) ([]WindowResult, error) {
	seed := cv.Base.StartDate
	if len(cv.StartDates) > 0 {
		seed = cv.StartDates[0]
	}
	windows := generateWindows(seed, cv.Base.EndDate, cv.MinWindowDays)

	results := make([]WindowResult, 0, len(windows))
	lastProgress := time.Time{}

	var arrs, sharpes []float64
	for i, w := range windows {
		opts := cv.Base
		opts.StartDate, opts.EndDate = w.Start, w.End
		sim := simulator.New(simulator.WithDefinition(fund), simulator.WithOptions(opts), simulator.WithMarketData(source))
		result, err := runOnce(ctx, sim, bus)
		if err != nil {
			return nil, err
		}
		results = append(results, WindowResult{Window: w, Metrics: result.Metrics})

		if result.Metrics.AnnualizedReturnRate != nil {
			arrs = append(arrs, *result.Metrics.AnnualizedReturnRate)
		}
		if result.Metrics.Sharpe != nil {
			sharpes = append(sharpes, *result.Metrics.Sharpe)
		}

		_ = bus.Publish(ctx, event.Info("cv", w.End, fmt.Sprintf("window %d/%d [%s, %s]: total_return=%.2f", i+1, len(windows), w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"), result.Metrics.TotalReturn)))

		if now := progressNow(); now.Sub(lastProgress) >= ProgressInterval {
			_ = bus.Publish(ctx, event.Info("cv", now, fmt.Sprintf("window progress: %d/%d", i+1, len(windows))))
			lastProgress = now
		}
	}

	summary := fmt.Sprintf("windows: ARR mean=%.4f min=%.4f, Sharpe mean=%.4f min=%.4f", mean(arrs), minOf(arrs), mean(sharpes), minOf(sharpes))
	_ = bus.Publish(ctx, event.Info("cv", progressNow(), summary))

	return results, nil
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func minOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}
