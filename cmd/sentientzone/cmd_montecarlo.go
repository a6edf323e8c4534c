package main

import (
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/sz3lp/sz/internal/simulator"
)

func newMonteCarloCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "montecarlo",
		Aliases: []string{"mc"},
		Short:   "Run a batch of seeded simulations and report energy statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := policyFromFlags(cmd)
			if err != nil {
				return err
			}
			sc, err := simConfigFromFlags(cmd, a.cfg)
			if err != nil {
				return err
			}
			runs := a.cfg.MonteCarlo.Runs
			if cmd.Flags().Changed("runs") {
				runs, _ = cmd.Flags().GetInt("runs")
			}
			workers := a.cfg.MonteCarlo.Workers
			if cmd.Flags().Changed("workers") {
				workers, _ = cmd.Flags().GetInt("workers")
			}
			seed := a.cfg.MonteCarlo.Seed
			if cmd.Flags().Changed("seed") {
				seed, _ = cmd.Flags().GetString("seed")
			}
			showRuns, _ := cmd.Flags().GetBool("show-runs")
			jsonOut, _ := cmd.Flags().GetBool("json")

			logger := a.logger.WithPrefix("montecarlo")
			var done atomic.Int64
			every := max(1, runs/10)
			res, err := simulator.RunMonteCarlo(cmd.Context(), runs, simulator.MonteCarloOptions{
				Policy:  policy,
				Seed:    seed,
				Config:  sc,
				Workers: workers,
				OnRun: func(int, simulator.Result) {
					if k := done.Add(1); int(k)%every == 0 {
						logger.Info("progress", "completed", k, "total", runs)
					}
				},
			})
			if err != nil {
				return fmt.Errorf("monte carlo: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(res)
			}

			fmt.Fprintf(out, "Policy: %s\n", policy)
			fmt.Fprintf(out, "Runs: %d (seed %s)\n", runs, seed)
			fmt.Fprintf(out, "Mean energy: %.2f kWh\n", res.MeanEnergyKWh)
			fmt.Fprintf(out, "Median energy: %.2f kWh\n", res.MedianEnergyKWh)
			fmt.Fprintf(out, "Stdev energy: %.2f kWh\n", res.StdevEnergyKWh)
			if showRuns {
				fmt.Fprintln(out)
				fmt.Fprintf(out, "%5s  %-12s  %10s  %10s  %8s\n", "Run", "Seed", "kWh", "Violations", "Runtime")
				for i, r := range res.Results {
					fmt.Fprintf(out, "%5d  %-12s  %10.2f  %10d  %8d\n", i, r.Seed, r.EnergyUsedKWh, r.ComfortViolations, r.RuntimeMinutes)
				}
			}
			return nil
		},
	}

	cmd.Flags().Int("runs", 100, "Number of runs (default from config)")
	cmd.Flags().Int("workers", 0, "Parallel workers (default from config)")
	cmd.Flags().String("seed", simulator.DefaultMonteCarloSeed, "Base seed; run i uses <seed>-<i>")
	cmd.Flags().Bool("show-runs", false, "List every run")
	addPolicyFlags(cmd.Flags())
	addRunFlags(cmd.Flags())
	return cmd
}
