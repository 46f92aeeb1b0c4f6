package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/CCAtAlvis/vfunds/pkg/resultstore"
	"github.com/CCAtAlvis/vfunds/pkg/vfconfig"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var resultCmd = &cobra.Command{
	Use:   "result [fund-name]",
	Short: "List stored backtest results for a fund",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := vfconfig.Get()
		store, err := resultstore.Open(filepath.Join(cfg.Workspace, "results.db"))
		if err != nil {
			log.Fatal().Err(err).Msg("could not open result store")
		}
		defer store.Close()

		rows, err := store.List(context.Background(), args[0])
		if err != nil {
			log.Fatal().Err(err).Msg("could not list results")
		}
		for _, r := range rows {
			fmt.Printf("#%d %s -> %s  final_cash=%.2f  total_return=%.2f\n",
				r.ID, r.Result.Options.StartDate.Format("2006-01-02"), r.Result.Options.EndDate.Format("2006-01-02"),
				r.Result.FinalCash, r.Result.Metrics.TotalReturn)
		}
	},
}

func init() {
	rootCmd.AddCommand(resultCmd)
}
