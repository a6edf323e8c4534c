// Package config loads runtime settings from an optional YAML file, .env
// files and SZ_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/sz3lp/sz/internal/model"
	"github.com/sz3lp/sz/internal/simulator"
)

// EnvPrefix prefixes every environment override, e.g. SZ_SERVER_ADDR.
const EnvPrefix = "SZ"

// Config contains all SentientZone settings.
type Config struct {
	Server     ServerConfig     `json:"server" yaml:"server"`
	Log        LogConfig        `json:"log" yaml:"log"`
	MonteCarlo MonteCarloConfig `json:"montecarlo" yaml:"montecarlo"`
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`
	Cache      CacheConfig      `json:"cache" yaml:"cache"`
}

type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `json:"level" yaml:"level"`
}

type MonteCarloConfig struct {
	Runs    int    `json:"runs" yaml:"runs"`
	Workers int    `json:"workers" yaml:"workers"`
	Seed    string `json:"seed" yaml:"seed"`
}

// SimulationConfig holds the per-run overrides applied to every simulation
// started from the CLI or server.
type SimulationConfig struct {
	WeatherProfile   string   `json:"weather_profile,omitempty" yaml:"weather_profile,omitempty"`
	BaseExternalTemp *float64 `json:"base_external_temp,omitempty" yaml:"base_external_temp,omitempty"`

	// Occupancy maps a room to its hourly occupancy probabilities.
	Occupancy map[model.Room][]float64 `json:"occupancy,omitempty" yaml:"occupancy,omitempty"`

	// OccupancyFile names a YAML file with an occupancy block. Entries in
	// Occupancy take precedence over the file.
	OccupancyFile string `json:"occupancy_file,omitempty" yaml:"occupancy_file,omitempty"`
}

type CacheConfig struct {
	TTL time.Duration `json:"ttl" yaml:"ttl"`
}

// MarshalYAML renders TTL in time.Duration notation, the form Load accepts.
func (c CacheConfig) MarshalYAML() (any, error) {
	return struct {
		TTL string `yaml:"ttl"`
	}{c.TTL.String()}, nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Server:     ServerConfig{Addr: ":8080"},
		Log:        LogConfig{Level: "info"},
		MonteCarlo: MonteCarloConfig{Runs: 100, Workers: runtime.NumCPU(), Seed: simulator.DefaultMonteCarloSeed},
		Cache:      CacheConfig{TTL: 10 * time.Minute},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("montecarlo.runs", d.MonteCarlo.Runs)
	v.SetDefault("montecarlo.workers", d.MonteCarlo.Workers)
	v.SetDefault("montecarlo.seed", d.MonteCarlo.Seed)
	v.SetDefault("simulation.weather_profile", "")
	v.SetDefault("simulation.occupancy_file", "")
	v.SetDefault("cache.ttl", d.Cache.TTL)
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads settings. path may be empty, in which case only defaults and
// the environment apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	cfg.Server.Addr = v.GetString("server.addr")
	cfg.Log.Level = v.GetString("log.level")
	cfg.MonteCarlo.Runs = v.GetInt("montecarlo.runs")
	cfg.MonteCarlo.Workers = v.GetInt("montecarlo.workers")
	cfg.MonteCarlo.Seed = v.GetString("montecarlo.seed")
	cfg.Simulation.WeatherProfile = v.GetString("simulation.weather_profile")
	cfg.Simulation.OccupancyFile = v.GetString("simulation.occupancy_file")
	cfg.Cache.TTL = v.GetDuration("cache.ttl")
	if v.IsSet("simulation.base_external_temp") {
		t := v.GetFloat64("simulation.base_external_temp")
		cfg.Simulation.BaseExternalTemp = &t
	}

	if cfg.Simulation.OccupancyFile != "" {
		occ, err := LoadOccupancyFile(cfg.Simulation.OccupancyFile)
		if err != nil {
			return nil, err
		}
		cfg.Simulation.Occupancy = occ
	}
	if raw := v.Get("simulation.occupancy"); raw != nil {
		occ, err := decodeOccupancy(raw)
		if err != nil {
			return nil, err
		}
		if cfg.Simulation.Occupancy == nil {
			cfg.Simulation.Occupancy = occ
		} else {
			for room, probs := range occ {
				cfg.Simulation.Occupancy[room] = probs
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeOccupancy converts a generic occupancy block into room tables.
// Room names match case-insensitively since viper lowercases keys.
func decodeOccupancy(raw any) (map[model.Room][]float64, error) {
	b, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding occupancy: %w", err)
	}
	var byName map[string][]float64
	if err := yaml.Unmarshal(b, &byName); err != nil {
		return nil, fmt.Errorf("decoding occupancy: %w", err)
	}
	out := make(map[model.Room][]float64, len(byName))
	for name, probs := range byName {
		room, ok := model.ParseRoom(name)
		if !ok {
			return nil, fmt.Errorf("occupancy: unknown room %q", name)
		}
		out[room] = probs
	}
	return out, nil
}

type occupancyFile struct {
	Occupancy map[string][]float64 `yaml:"occupancy"`
}

// LoadOccupancyFile reads an occupancy override file:
//
//	occupancy:
//	  TherapyA: [0.1, 0.1, ...]
func LoadOccupancyFile(path string) (map[model.Room][]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading occupancy file: %w", err)
	}
	var f occupancyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing occupancy file %s: %w", path, err)
	}
	if f.Occupancy == nil {
		return nil, fmt.Errorf("occupancy file %s: missing occupancy block", path)
	}
	return decodeOccupancy(f.Occupancy)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.MonteCarlo.Runs <= 0 || c.MonteCarlo.Runs > simulator.MaxMonteCarloRuns {
		errs = append(errs, fmt.Errorf("montecarlo.runs must be between 1 and %d, got %d", simulator.MaxMonteCarloRuns, c.MonteCarlo.Runs))
	}
	if c.MonteCarlo.Workers < 0 {
		errs = append(errs, fmt.Errorf("montecarlo.workers must not be negative, got %d", c.MonteCarlo.Workers))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must not be negative, got %s", c.Cache.TTL))
	}
	switch p := strings.ToLower(strings.TrimSpace(c.Simulation.WeatherProfile)); p {
	case "", string(simulator.WeatherHot), string(simulator.WeatherCold), string(simulator.WeatherMixed):
	default:
		errs = append(errs, fmt.Errorf("simulation.weather_profile: unknown profile %q", c.Simulation.WeatherProfile))
	}
	for _, room := range model.Rooms() {
		probs, ok := c.Simulation.Occupancy[room]
		if !ok {
			continue
		}
		if len(probs) > model.HoursPerDay {
			errs = append(errs, fmt.Errorf("simulation.occupancy.%s: %d entries, at most %d", room, len(probs), model.HoursPerDay))
		}
		for h, p := range probs {
			if p < 0 || p > 1 {
				errs = append(errs, fmt.Errorf("simulation.occupancy.%s[%d]: probability %v out of [0,1]", room, h, p))
			}
		}
	}
	return errors.Join(errs...)
}

// Simulator converts the simulation block into engine overrides.
func (c *Config) Simulator() simulator.Config {
	sc := simulator.Config{
		BaseExternalTemp: c.Simulation.BaseExternalTemp,
	}
	if p := strings.ToLower(strings.TrimSpace(c.Simulation.WeatherProfile)); p != "" {
		sc.WeatherProfile = simulator.ParseWeatherProfile(p)
	}
	if len(c.Simulation.Occupancy) > 0 {
		sc.OccupancyProb = make(map[model.Room][]float64, len(c.Simulation.Occupancy))
		for room, probs := range c.Simulation.Occupancy {
			sc.OccupancyProb[room] = append([]float64(nil), probs...)
		}
	}
	return sc
}

// Dump writes c as YAML.
func Dump(c *Config, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}
