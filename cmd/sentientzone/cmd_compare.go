package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sz3lp/sz/internal/report"
	"github.com/sz3lp/sz/internal/simulator"
)

// CompareSeed is the default seed of the compare command.
const CompareSeed = "cli"

func newCompareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare legacy and SentientZone energy for one seed",
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := simConfigFromFlags(cmd, a.cfg)
			if err != nil {
				return err
			}
			seed, _ := cmd.Flags().GetString("seed")
			daily, _ := cmd.Flags().GetBool("daily")
			jsonOut, _ := cmd.Flags().GetBool("json")

			legacyDays := report.NewDailyAccumulator(nil)
			sentientDays := report.NewDailyAccumulator(nil)
			legacy := simulator.Simulate(simulator.Options{Policy: simulator.PolicyLegacy, Seed: seed, Config: sc, Callback: legacyDays})
			sentient := simulator.Simulate(simulator.Options{Policy: simulator.PolicySentient, Seed: seed, Config: sc, Callback: sentientDays})
			c := report.Compare(legacy, sentient)
			a.logger.Debug("comparison complete", "seed", seed, "reduction_pct", c.EnergyReductionPct)

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(c)
			}

			fmt.Fprintf(out, "Legacy energy: %.2f kWh\n", c.Legacy.EnergyUsedKWh)
			fmt.Fprintf(out, "SentientZone energy: %.2f kWh\n", c.Sentient.EnergyUsedKWh)
			fmt.Fprintf(out, "Reduction: %.2f%%\n", c.EnergyReductionPct)
			if daily {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Legacy:")
				printDaily(out, legacyDays.Days())
				fmt.Fprintln(out)
				fmt.Fprintln(out, "SentientZone:")
				printDaily(out, sentientDays.Days())
			}
			return nil
		},
	}

	cmd.Flags().String("seed", CompareSeed, "Seed string shared by both runs")
	cmd.Flags().Bool("daily", false, "Include per-day rollups")
	addRunFlags(cmd.Flags())
	return cmd
}
