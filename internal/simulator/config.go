package simulator

import "github.com/sz3lp/sz/internal/model"

// WeatherProfile selects the baseline external temperature.
type WeatherProfile string

const (
	WeatherHot   WeatherProfile = "hot"   // 90°F baseline
	WeatherCold  WeatherProfile = "cold"  // 50°F baseline
	WeatherMixed WeatherProfile = "mixed" // 75°F baseline
)

// ParseWeatherProfile maps s to a known profile. Matching is exact and
// case-sensitive; empty or any other value falls back to WeatherHot.
func ParseWeatherProfile(s string) WeatherProfile {
	switch WeatherProfile(s) {
	case WeatherCold:
		return WeatherCold
	case WeatherMixed:
		return WeatherMixed
	default:
		return WeatherHot
	}
}

// BaseTempForProfile returns the baseline external temperature (°F).
func BaseTempForProfile(p WeatherProfile) float64 {
	switch ParseWeatherProfile(string(p)) {
	case WeatherCold:
		return 50
	case WeatherMixed:
		return 75
	default:
		return 90
	}
}

// Config holds per-run overrides. The zero value runs the default clinic.
// A Config is never mutated by the engine.
type Config struct {
	// OccupancyProb replaces a room's 24-entry hourly probability table.
	// Missing hours fall back to the room's default; values are not
	// range-checked.
	OccupancyProb map[model.Room][]float64 `json:"occupancyProb,omitempty" yaml:"occupancy,omitempty"`

	// BaseExternalTemp overrides the weather profile baseline when set.
	BaseExternalTemp *float64 `json:"baseExternalTemp,omitempty" yaml:"base_external_temp,omitempty"`

	WeatherProfile WeatherProfile `json:"weatherProfile,omitempty" yaml:"weather_profile,omitempty"`
}

// BaseExternalTempF resolves the baseline external temperature for c.
func (c Config) BaseExternalTempF() float64 {
	if c.BaseExternalTemp != nil {
		return *c.BaseExternalTemp
	}
	return BaseTempForProfile(c.WeatherProfile)
}

// Float returns a pointer to v, for populating Config.BaseExternalTemp.
func Float(v float64) *float64 {
	return &v
}
