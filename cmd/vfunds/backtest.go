package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/CCAtAlvis/vfunds/pkg/backtest"
	"github.com/CCAtAlvis/vfunds/pkg/event"
	"github.com/CCAtAlvis/vfunds/pkg/fee"
	"github.com/CCAtAlvis/vfunds/pkg/marketdata"
	"github.com/CCAtAlvis/vfunds/pkg/marketdata/cache"
	"github.com/CCAtAlvis/vfunds/pkg/resultstore"
	"github.com/CCAtAlvis/vfunds/pkg/simulator"
	"github.com/CCAtAlvis/vfunds/pkg/vfconfig"

	_ "github.com/CCAtAlvis/vfunds/pkg/rule/holdequal"
	_ "github.com/CCAtAlvis/vfunds/pkg/rule/holdtopn"
	_ "github.com/CCAtAlvis/vfunds/pkg/rule/macdcrossover"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var (
	backtestStart string
	backtestEnd   string
	backtestCash  float64
)

var backtestCmd = &cobra.Command{
	Use:   "backtest [fund-name]",
	Short: "Run a single fund's backtest over a date range",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		fundName := args[0]
		cfg := vfconfig.Get()

		fund, err := vfconfig.LoadFund(filepath.Join(cfg.Workspace, fundName+".toml"))
		if err != nil {
			log.Fatal().Err(err).Str("fund", fundName).Msg("could not load fund definition")
		}

		start, err := time.Parse("2006-01-02", backtestStart)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid --start date")
		}
		end, err := time.Parse("2006-01-02", backtestEnd)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid --end date")
		}

		opts := backtest.Options{
			InitCash:     backtestCash,
			StartDate:    start,
			EndDate:      end,
			RiskFreeRate: 0.02,
			Fees:         fee.Schedule{Commission: fee.Policy{Rate: 0.0003, MinFee: 5}, StampDuty: fee.Policy{Rate: 0.001}},
			BufferRatio:  0.05,
		}

		httpSource := marketdata.NewHTTPSource(cfg.TushareApi, rate.NewLimiter(rate.Every(time.Second), 5))
		httpSource.Client.SetHeader("Authorization", "Bearer "+cfg.TushareToken)
		source := marketdata.NewCache(httpSource, cache.WithCompression(cache.NewMemoryStore()), "tushare", 1)

		sim := simulator.New(simulator.WithDefinition(fund), simulator.WithOptions(opts), simulator.WithMarketData(source))
		bus, err := sim.Run(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("backtest failed to start")
		}

		var result backtest.Result
		for ev := range bus.Events() {
			printEvent(ev)
			if ev.Kind == event.KindResult {
				result, _ = ev.Result.(backtest.Result)
			}
		}

		store, err := resultstore.Open(filepath.Join(cfg.Workspace, "results.db"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not open result store")
		}
		defer store.Close()
		if _, err := store.Save(context.Background(), result); err != nil {
			log.Error().Err(err).Msg("could not persist result")
		}

		if err := resultstore.WriteEquityCurveCSV(os.Stdout, result); err != nil {
			log.Error().Err(err).Msg("could not write equity curve csv")
		}
	},
}

func printEvent(ev event.Event) {
	switch ev.Kind {
	case event.KindBuy:
		fmt.Printf("BUY  %s %-12s units=%d price=%.2f fee=%.2f\n", ev.Time.Format("2006-01-02"), ev.Order.Ticker, ev.Order.Shares, ev.Order.Price, ev.Order.Fee)
	case event.KindSell:
		fmt.Printf("SELL %s %-12s units=%d price=%.2f fee=%.2f\n", ev.Time.Format("2006-01-02"), ev.Order.Ticker, ev.Order.Shares, ev.Order.Price, ev.Order.Fee)
	case event.KindInfo:
		fmt.Printf("INFO %s %s\n", ev.Time.Format("2006-01-02"), ev.Message)
	case event.KindWarning:
		fmt.Printf("WARN %s %s\n", ev.Time.Format("2006-01-02"), ev.Message)
	case event.KindError:
		fmt.Printf("ERROR %s\n", ev.Err)
	}
}

func init() {
	backtestCmd.Flags().StringVar(&backtestStart, "start", "", "backtest start date (YYYY-MM-DD)")
	backtestCmd.Flags().StringVar(&backtestEnd, "end", "", "backtest end date (YYYY-MM-DD)")
	backtestCmd.Flags().Float64Var(&backtestCash, "cash", 1_000_000, "initial cash")
	_ = backtestCmd.MarkFlagRequired("start")
	_ = backtestCmd.MarkFlagRequired("end")
	rootCmd.AddCommand(backtestCmd)
}
