package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sz3lp/sz/internal/report"
	"github.com/sz3lp/sz/internal/simulator"
)

func newSimulateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run one 30-day simulation",
		Long: `Run one 30-day simulation and print total energy, comfort violations
and HVAC runtime.

Examples:
  sentientzone simulate --seed cli
  sentientzone simulate --sentient --weather cold --daily
  sentientzone simulate --seed cli --trace --json > trace.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := policyFromFlags(cmd)
			if err != nil {
				return err
			}
			sc, err := simConfigFromFlags(cmd, a.cfg)
			if err != nil {
				return err
			}
			seed, _ := cmd.Flags().GetString("seed")
			trace, _ := cmd.Flags().GetBool("trace")
			daily, _ := cmd.Flags().GetBool("daily")
			jsonOut, _ := cmd.Flags().GetBool("json")

			acc := report.NewDailyAccumulator(nil)
			res := simulator.Simulate(simulator.Options{
				Policy:   policy,
				Seed:     seed,
				Config:   sc,
				Trace:    trace,
				Callback: acc,
			})
			a.logger.Debug("simulation complete", "policy", policy, "seed", res.Seed, "kwh", res.EnergyUsedKWh)

			out := cmd.OutOrStdout()
			if jsonOut {
				v := struct {
					Policy simulator.Policy `json:"policy"`
					simulator.Result
					Days []report.DailyRollup `json:"days,omitempty"`
				}{Policy: policy, Result: res}
				if daily {
					v.Days = acc.Days()
				}
				return json.NewEncoder(out).Encode(v)
			}

			fmt.Fprintf(out, "Policy: %s\n", policy)
			fmt.Fprintf(out, "Seed: %s\n", res.Seed)
			fmt.Fprintf(out, "Energy used: %.2f kWh\n", res.EnergyUsedKWh)
			fmt.Fprintf(out, "Comfort violations: %d\n", res.ComfortViolations)
			fmt.Fprintf(out, "Runtime minutes: %d\n", res.RuntimeMinutes)
			if daily {
				fmt.Fprintln(out)
				printDaily(out, acc.Days())
			}
			return nil
		},
	}

	cmd.Flags().String("seed", simulator.DefaultSeed, "Seed string")
	cmd.Flags().Bool("trace", false, "Include the per-minute trace (JSON output only)")
	cmd.Flags().Bool("daily", false, "Include the per-day rollup")
	addPolicyFlags(cmd.Flags())
	addRunFlags(cmd.Flags())
	return cmd
}

func printDaily(w io.Writer, days []report.DailyRollup) {
	fmt.Fprintf(w, "%4s  %10s  %10s  %8s\n", "Day", "kWh", "Violations", "Runtime")
	for _, d := range days {
		fmt.Fprintf(w, "%4d  %10.2f  %10d  %8d\n", d.Day+1, d.EnergyKWh, d.ComfortViolations, d.RuntimeMinutes)
	}
}
