package simulator

import (
	"math"

	"github.com/sz3lp/sz/internal/model"
	"github.com/sz3lp/sz/internal/rng"
)

const (
	DiurnalAmplitudeF   = 10.0 // peak deviation of the daily sinusoid
	NoiseAmplitudeF     = 3.0  // external noise is uniform in ±NoiseAmplitudeF
	OccupantGainFPerMin = 0.2  // heat added by occupants each minute
	PassiveLossFPerMin  = 0.1  // heat lost by an empty room each minute
	LeakageCoefficient  = 0.01 // fraction of the indoor/outdoor gap closed per minute
)

// Weather produces the shared external temperature for each minute.
type Weather struct {
	BaseF float64 // baseline the diurnal cycle oscillates around
}

// NewWeather resolves the baseline for cfg.
func NewWeather(cfg Config) Weather {
	return Weather{BaseF: cfg.BaseExternalTempF()}
}

// Diurnal returns the noise-free external temperature at minute.
func (w Weather) Diurnal(minute int) float64 {
	m := float64(minute % model.MinutesPerDay)
	return w.BaseF + DiurnalAmplitudeF*math.Sin(2*math.Pi*m/model.MinutesPerDay)
}

// ExternalTemp draws one noise value from src and returns the external
// temperature at minute.
func (w Weather) ExternalTemp(src rng.Source, minute int) float64 {
	noise := src.Float64()*(2*NoiseAmplitudeF) - NoiseAmplitudeF
	return w.Diurnal(minute) + noise
}

// StepRoomTemp applies one minute of occupant gain or passive drift to rs.
// Empty rooms lose PassiveLossFPerMin and then leak toward externalF.
func StepRoomTemp(rs *model.RoomState, externalF float64) {
	if rs.Occupied {
		rs.Temp += OccupantGainFPerMin
		return
	}
	rs.Temp -= PassiveLossFPerMin
	rs.Temp += (externalF - rs.Temp) * LeakageCoefficient
}
