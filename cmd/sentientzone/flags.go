package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sz3lp/sz/internal/config"
	"github.com/sz3lp/sz/internal/simulator"
)

// addRunFlags registers the flags shared by commands that start runs.
func addRunFlags(fs *pflag.FlagSet) {
	fs.String("weather", "", "Weather profile: hot, cold or mixed (overrides config)")
	fs.Float64("base-temp", 0, "Baseline external temperature in °F (overrides weather profile)")
	fs.String("occupancy", "", "YAML file with hourly occupancy overrides")
}

// addPolicyFlags registers --sentient and --policy.
func addPolicyFlags(fs *pflag.FlagSet) {
	fs.Bool("sentient", false, "Use the occupancy-aware SentientZone policy")
	fs.String("policy", "", "Policy name: legacy or sentient (overrides --sentient)")
}

func policyFromFlags(cmd *cobra.Command) (simulator.Policy, error) {
	if name, _ := cmd.Flags().GetString("policy"); name != "" {
		return simulator.ParsePolicy(name)
	}
	sentient, _ := cmd.Flags().GetBool("sentient")
	return simulator.PolicyFor(sentient), nil
}

// simConfigFromFlags layers command-line overrides over the loaded config.
func simConfigFromFlags(cmd *cobra.Command, cfg *config.Config) (simulator.Config, error) {
	sc := cfg.Simulator()
	if w, _ := cmd.Flags().GetString("weather"); w != "" {
		norm := strings.ToLower(strings.TrimSpace(w))
		p := simulator.ParseWeatherProfile(norm)
		if string(p) != norm {
			return sc, fmt.Errorf("unknown weather profile %q", w)
		}
		sc.WeatherProfile = p
		sc.BaseExternalTemp = nil
	}
	if cmd.Flags().Changed("base-temp") {
		t, _ := cmd.Flags().GetFloat64("base-temp")
		sc.BaseExternalTemp = simulator.Float(t)
	}
	if path, _ := cmd.Flags().GetString("occupancy"); path != "" {
		occ, err := config.LoadOccupancyFile(path)
		if err != nil {
			return sc, err
		}
		if sc.OccupancyProb == nil {
			sc.OccupancyProb = occ
		} else {
			for room, probs := range occ {
				sc.OccupancyProb[room] = probs
			}
		}
	}
	return sc, nil
}
