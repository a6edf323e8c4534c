package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/sz3lp/sz/internal/config"
	"github.com/sz3lp/sz/internal/logging"
)

var version = "0.1.0-dev"

// app carries state shared by every subcommand once the root pre-run has
// loaded configuration.
type app struct {
	cfg    *config.Config
	logger *log.Logger
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	rootCmd := &cobra.Command{
		Use:   "sentientzone",
		Short: "SentientZone HVAC simulator",
		Long: `sentientzone simulates a small clinic's HVAC for 30 days, minute by
minute, under a legacy fixed-setpoint policy and an occupancy-aware
SentientZone policy, and reports energy use and comfort.

Runs are fully determined by their seed.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newSimulateCmd(a),
		newCompareCmd(a),
		newMonteCarloCmd(a),
		newServeCmd(a),
		newConfigCmd(a),
	)
	return rootCmd
}

func (a *app) load(cmd *cobra.Command) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	a.cfg = cfg
	a.logger = logging.New(cfg.Log.Level, cmd.ErrOrStderr())
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sentientzone version %s\n", version)
		},
	}
}
