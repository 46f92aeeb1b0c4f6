package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "vfunds",
	Short: "vfunds replays virtual-fund backtests against stored market data",
	Long: `vfunds is a command line utility for backtesting quantitative investment
strategies ("virtual funds") against historical market data: a fund declares a
ticker universe and an ordered list of trading rules, and vfunds replays that
declaration day by day to produce an equity curve, a stream of orders, and
performance metrics.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once from main.main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vfunds.toml)")
	rootCmd.PersistentFlags().String("workspace", "", "workspace directory holding fund/FoF definition files")
	if err := viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace")); err != nil {
		log.Fatal().Err(err).Msg("BindPFlag for workspace failed")
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigType("toml")
		viper.SetConfigName(".vfunds")
	}

	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		log.Info().Str("ConfigFN", viper.ConfigFileUsed()).Msg("using config file")
	}
}
