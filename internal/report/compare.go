package report

import "github.com/sz3lp/sz/internal/simulator"

// Comparison contrasts a legacy run with a sentient run.
type Comparison struct {
	Legacy   simulator.Result `json:"legacy"`
	Sentient simulator.Result `json:"sentient"`

	EnergySavedKWh      float64 `json:"energy_saved_kwh"`
	EnergyReductionPct  float64 `json:"energy_reduction_pct"`
	RuntimeReductionPct float64 `json:"runtime_reduction_pct"`
	ViolationDelta      int     `json:"violation_delta"` // sentient minus legacy
}

// Compare computes savings of sentient relative to legacy. Percentages are
// 0 when the legacy baseline is 0.
func Compare(legacy, sentient simulator.Result) Comparison {
	c := Comparison{
		Legacy:         stripTrace(legacy),
		Sentient:       stripTrace(sentient),
		EnergySavedKWh: legacy.EnergyUsedKWh - sentient.EnergyUsedKWh,
		ViolationDelta: sentient.ComfortViolations - legacy.ComfortViolations,
	}
	if legacy.EnergyUsedKWh != 0 {
		c.EnergyReductionPct = c.EnergySavedKWh / legacy.EnergyUsedKWh * 100
	}
	if legacy.RuntimeMinutes != 0 {
		c.RuntimeReductionPct = float64(legacy.RuntimeMinutes-sentient.RuntimeMinutes) / float64(legacy.RuntimeMinutes) * 100
	}
	return c
}

func stripTrace(r simulator.Result) simulator.Result {
	r.Trace = nil
	return r
}

// CompareSeed runs both policies with the same seed and config.
func CompareSeed(seed string, cfg simulator.Config) Comparison {
	legacy := simulator.Simulate(simulator.Options{Policy: simulator.PolicyLegacy, Seed: seed, Config: cfg})
	sentient := simulator.Simulate(simulator.Options{Policy: simulator.PolicySentient, Seed: seed, Config: cfg})
	return Compare(legacy, sentient)
}
