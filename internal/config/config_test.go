package config

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sz3lp/sz/internal/model"
	"github.com/sz3lp/sz/internal/simulator"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 100, cfg.MonteCarlo.Runs)
	assert.Equal(t, runtime.NumCPU(), cfg.MonteCarlo.Workers)
	assert.Equal(t, "mc", cfg.MonteCarlo.Seed)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Nil(t, cfg.Simulation.BaseExternalTemp)
	assert.Empty(t, cfg.Simulation.Occupancy)

	assert.Equal(t, simulator.Config{}, cfg.Simulator())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "sz.yaml", `
server:
  addr: ":9090"
log:
  level: debug
montecarlo:
  runs: 12
  workers: 3
  seed: batch
simulation:
  weather_profile: cold
  base_external_temp: 61.5
  occupancy:
    TherapyA: [0.0, 0.5, 1]
cache:
  ttl: 30s
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 12, cfg.MonteCarlo.Runs)
	assert.Equal(t, 3, cfg.MonteCarlo.Workers)
	assert.Equal(t, "batch", cfg.MonteCarlo.Seed)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	require.NotNil(t, cfg.Simulation.BaseExternalTemp)
	assert.Equal(t, 61.5, *cfg.Simulation.BaseExternalTemp)
	assert.Equal(t, []float64{0, 0.5, 1}, cfg.Simulation.Occupancy[model.RoomTherapyA])

	sc := cfg.Simulator()
	assert.Equal(t, simulator.WeatherCold, sc.WeatherProfile)
	assert.Equal(t, 61.5, sc.BaseExternalTempF())
	assert.Equal(t, []float64{0, 0.5, 1}, sc.OccupancyProb[model.RoomTherapyA])
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SZ_SERVER_ADDR", ":7070")
	t.Setenv("SZ_MONTECARLO_RUNS", "7")
	t.Setenv("SZ_SIMULATION_WEATHER_PROFILE", "mixed")
	t.Setenv("SZ_CACHE_TTL", "1m")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, 7, cfg.MonteCarlo.Runs)
	assert.Equal(t, "mixed", cfg.Simulation.WeatherProfile)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 75.0, cfg.Simulator().BaseExternalTempF())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errText string
	}{
		{"zero runs", "montecarlo:\n  runs: 0\n", "montecarlo.runs"},
		{"too many runs", "montecarlo:\n  runs: 10001\n", "montecarlo.runs must be between 1 and 10000"},
		{"negative workers", "montecarlo:\n  workers: -1\n", "montecarlo.workers"},
		{"bad profile", "simulation:\n  weather_profile: arctic\n", "weather_profile"},
		{"unknown room", "simulation:\n  occupancy:\n    Lobby: [0.5]\n", "unknown room"},
		{"probability range", "simulation:\n  occupancy:\n    Admin: [1.5]\n", "out of [0,1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "sz.yaml", tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errText)
		})
	}
}

func TestLoadOccupancyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "occ.yaml", "occupancy:\n  waiting: [0.25, 0.75]\n  Admin: [1]\n")

	occ, err := LoadOccupancyFile(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.75}, occ[model.RoomWaiting])
	assert.Equal(t, []float64{1}, occ[model.RoomAdmin])

	_, err = LoadOccupancyFile(writeFile(t, dir, "empty.yaml", "other: 1\n"))
	assert.Error(t, err)
}

func TestLoad_OccupancyFileMergedUnderInline(t *testing.T) {
	dir := t.TempDir()
	occPath := writeFile(t, dir, "occ.yaml", "occupancy:\n  Waiting: [0.1]\n  Admin: [0.2]\n")
	cfgPath := writeFile(t, dir, "sz.yaml", "simulation:\n  occupancy_file: "+occPath+"\n  occupancy:\n    Admin: [0.9]\n")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.1}, cfg.Simulation.Occupancy[model.RoomWaiting])
	assert.Equal(t, []float64{0.9}, cfg.Simulation.Occupancy[model.RoomAdmin])
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, ".env", "SZ_LOG_LEVEL=warn\n")
	t.Setenv("SZ_LOG_LEVEL", "")
	os.Unsetenv("SZ_LOG_LEVEL")

	require.NoError(t, LoadDotEnv(path))
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}

func TestDump(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Dump(Default(), &buf))
	out := buf.String()
	assert.Contains(t, out, ":8080")
	assert.Contains(t, out, "runs: 100")
	assert.Contains(t, out, "seed: mc")
	assert.Contains(t, out, "ttl: 10m0s")
	assert.NotContains(t, out, "600000000000")
}

func TestDump_RoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Cache.TTL = 90 * time.Second
	var buf bytes.Buffer
	require.NoError(t, Dump(cfg, &buf))
	assert.Contains(t, buf.String(), "ttl: 1m30s")

	path := writeFile(t, t.TempDir(), "sz.yaml", buf.String())
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, loaded.Cache.TTL)
}

func TestSimulator_NormalizesWeatherCase(t *testing.T) {
	for _, in := range []string{"COLD", " Cold ", "cold"} {
		cfg := Default()
		cfg.Simulation.WeatherProfile = in
		require.NoError(t, cfg.Validate(), in)
		assert.Equal(t, simulator.WeatherCold, cfg.Simulator().WeatherProfile, in)
	}
}

func TestSimulator_CopiesOccupancy(t *testing.T) {
	cfg := Default()
	cfg.Simulation.Occupancy = map[model.Room][]float64{model.RoomAdmin: {0.3}}
	sc := cfg.Simulator()
	sc.OccupancyProb[model.RoomAdmin][0] = 1
	assert.Equal(t, 0.3, cfg.Simulation.Occupancy[model.RoomAdmin][0])
}
