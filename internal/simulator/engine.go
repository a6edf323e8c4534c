package simulator

import (
	"github.com/sz3lp/sz/internal/model"
	"github.com/sz3lp/sz/internal/rng"
)

// DefaultSeed is used when Options.Seed is empty.
const DefaultSeed = "seed"

// Callback receives the live state at the end of every simulated minute.
// The state is mutated by the next step; clone it to keep it.
type Callback interface {
	OnMinute(state *model.SimulationState)
}

// CallbackFunc adapts a function to Callback.
type CallbackFunc func(state *model.SimulationState)

func (f CallbackFunc) OnMinute(state *model.SimulationState) { f(state) }

// Options configures a single simulation run.
type Options struct {
	Policy   Policy
	Seed     string
	Config   Config
	Trace    bool     // keep a snapshot of every minute in Result.Trace
	Callback Callback // optional, not part of the result
}

// Result summarizes a completed run.
type Result struct {
	EnergyUsedKWh     float64                 `json:"energyUsed_kWh"`
	ComfortViolations int                     `json:"comfortViolations"`
	RuntimeMinutes    int                     `json:"runtimeMinutes"`
	Seed              string                  `json:"seed"`
	Trace             []model.SimulationState `json:"trace,omitempty"`
}

// Engine steps one run through the fixed 30-day horizon. An Engine owns its
// random stream and state and is not safe for concurrent use.
type Engine struct {
	policy    Policy
	seed      string
	rand      rng.Source
	occupancy *OccupancyModel
	weather   Weather
	hvac      HVAC
	callback  Callback
	rooms     []model.Room

	state *model.SimulationState
	next  int // minute to simulate on the next Step

	tracing bool
	trace   []model.SimulationState
}

// New prepares a run. The HVAC efficiency factor is the first draw of the
// seeded stream, before any minute is simulated.
func New(opts Options) *Engine {
	seed := opts.Seed
	if seed == "" {
		seed = DefaultSeed
	}
	src := rng.New(seed)
	weather := NewWeather(opts.Config)

	e := &Engine{
		policy:    opts.Policy,
		seed:      seed,
		rand:      src,
		occupancy: NewOccupancyModel(opts.Config.OccupancyProb),
		weather:   weather,
		hvac:      NewHVAC(src),
		callback:  opts.Callback,
		rooms:     model.Rooms(),
		state:     model.NewSimulationState(weather.BaseF),
		tracing:   opts.Trace,
	}
	if e.tracing {
		e.trace = make([]model.SimulationState, 0, model.TotalMinutes)
	}
	return e
}

// Simulate runs the full horizon and returns its result.
func Simulate(opts Options) Result {
	return New(opts).Run()
}

// Seed returns the seed the run is keyed by.
func (e *Engine) Seed() string {
	return e.seed
}

// HVAC returns the run's cooling unit.
func (e *Engine) HVAC() HVAC {
	return e.hvac
}

// State returns a copy of the current state. Before the first Step it is
// the initial minute-0 state.
func (e *Engine) State() model.SimulationState {
	return e.state.Clone()
}

// Done reports whether every minute has been simulated.
func (e *Engine) Done() bool {
	return e.next >= model.TotalMinutes
}

// Step simulates one minute. Returns false once the horizon is exhausted.
func (e *Engine) Step() bool {
	if e.Done() {
		return false
	}
	minute := e.next
	s := e.state
	s.Minute = minute
	s.ExternalTemp = e.weather.ExternalTemp(e.rand, minute)

	for _, room := range e.rooms {
		rs := s.Rooms[room]
		rs.Occupied = e.occupancy.Draw(e.rand, room, minute)
		StepRoomTemp(rs, s.ExternalTemp)
		s.EnergyUsedKWh += e.hvac.Cool(rs, e.policy.Target(rs.Occupied))
		CheckComfort(rs)
	}

	if e.tracing {
		e.trace = append(e.trace, s.Clone())
	}
	if e.callback != nil {
		e.callback.OnMinute(s)
	}
	e.next++
	return true
}

// Run steps until the horizon is exhausted and returns the result.
func (e *Engine) Run() Result {
	for e.Step() {
	}
	return e.Result()
}

// Result summarizes the run so far.
func (e *Engine) Result() Result {
	r := Result{
		EnergyUsedKWh:     e.state.EnergyUsedKWh,
		ComfortViolations: e.state.TotalComfortViolations(),
		RuntimeMinutes:    e.state.TotalRuntimeMinutes(),
		Seed:              e.seed,
	}
	if e.tracing {
		r.Trace = e.trace
	}
	return r
}
