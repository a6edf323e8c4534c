package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/sz3lp/sz/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults, the config file, .env files
and SZ_* environment variables are applied.

Examples:
  sentientzone config
  SZ_MONTECARLO_RUNS=500 sentientzone config --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(a.cfg)
			}
			return config.Dump(a.cfg, cmd.OutOrStdout())
		},
	}
}
