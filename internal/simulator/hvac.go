package simulator

import (
	"github.com/sz3lp/sz/internal/model"
	"github.com/sz3lp/sz/internal/rng"
)

const (
	RatedPowerKW       = 4.29 // typical 5-ton unit
	CoolingStepF       = 0.3  // temperature removed per minute of runtime
	EfficiencyVariance = 0.1  // efficiency factor is uniform in 1±EfficiencyVariance

	ComfortMinF = 68.0
	ComfortMaxF = 74.0
)

// HVAC is one run's cooling unit. Its efficiency is fixed for the run.
type HVAC struct {
	Efficiency float64 // multiplier on RatedPowerKW
	PowerKW    float64 // effective electrical power while running
}

// NewHVAC draws the per-run efficiency factor from src.
func NewHVAC(src rng.Source) HVAC {
	eff := 1 + (src.Float64()*(2*EfficiencyVariance) - EfficiencyVariance)
	return HVAC{
		Efficiency: eff,
		PowerKW:    RatedPowerKW * eff,
	}
}

// KWhPerMinute is the energy consumed by one minute of runtime.
func (h HVAC) KWhPerMinute() float64 {
	return h.PowerKW / 60
}

// Cool runs the unit for one minute if rs is warmer than target and returns
// the energy consumed (0 when it stays off).
func (h HVAC) Cool(rs *model.RoomState, target float64) float64 {
	rs.TargetTemp = target
	if rs.Temp <= target {
		return 0
	}
	rs.Temp -= CoolingStepF
	rs.RuntimeMinutes++
	return h.KWhPerMinute()
}

// InComfortBand reports whether tempF lies within [ComfortMinF, ComfortMaxF].
func InComfortBand(tempF float64) bool {
	return tempF >= ComfortMinF && tempF <= ComfortMaxF
}

// CheckComfort counts a violation when rs ends the minute outside the band.
func CheckComfort(rs *model.RoomState) {
	if !InComfortBand(rs.Temp) {
		rs.ComfortViolations++
	}
}
