package main

import (
	"fmt"

	"github.com/CCAtAlvis/vfunds/pkg/vfconfig"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List fund and FoF definitions in the configured workspace",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := vfconfig.Get()
		entities, err := vfconfig.ListEntities(cfg.Workspace)
		if err != nil {
			log.Fatal().Err(err).Str("workspace", cfg.Workspace).Msg("could not list workspace")
		}
		for _, e := range entities {
			fmt.Println(e.Name)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
