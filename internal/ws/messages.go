package ws

import (
	"encoding/json"
	"fmt"

	"github.com/sz3lp/sz/internal/model"
	"github.com/sz3lp/sz/internal/report"
	"github.com/sz3lp/sz/internal/simulator"
)

// Envelope wraps all WebSocket messages with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Message type constants
const (
	// Client -> Server
	TypeSimRun    = "sim:run"
	TypeMCRun     = "mc:run"
	TypeRunCancel = "run:cancel"

	// Server -> Client
	TypeHello      = "server:hello"
	TypeSimDay     = "sim:day"
	TypeSimResult  = "sim:result"
	TypeMCProgress = "mc:progress"
	TypeMCResult   = "mc:result"
	TypeRunStored  = "run:stored" // broadcast to every client
	TypeError      = "error"
)

// Client -> Server messages

// RunSpec selects the policy, seed and overrides of a run. Policy takes
// precedence over IsSentient when set.
type RunSpec struct {
	Policy     string            `json:"policy,omitempty"`
	IsSentient bool              `json:"isSentient,omitempty"`
	Seed       string            `json:"seed,omitempty"`
	Config     *simulator.Config `json:"config,omitempty"`
}

func (s RunSpec) resolvePolicy() (simulator.Policy, error) {
	if s.Policy == "" {
		return simulator.PolicyFor(s.IsSentient), nil
	}
	return simulator.ParsePolicy(s.Policy)
}

type SimRunPayload struct {
	RunSpec
}

type MCRunPayload struct {
	RunSpec
	Runs    int `json:"runs"`
	Workers int `json:"workers,omitempty"`
}

// Server -> Client messages

type RoomPayload struct {
	ID   model.Room     `json:"id"`
	Name string         `json:"name"`
	Kind model.RoomKind `json:"kind"`
}

type HelloPayload struct {
	Rooms           []RoomPayload `json:"rooms"`
	Policies        []string      `json:"policies"`
	WeatherProfiles []string      `json:"weather_profiles"`
	TotalMinutes    int           `json:"total_minutes"`
	DefaultSeed     string        `json:"default_seed"`
	DefaultMCSeed   string        `json:"default_mc_seed"`
	DefaultMCRuns   int           `json:"default_mc_runs"`
}

type SimDayPayload struct {
	Policy simulator.Policy   `json:"policy"`
	Seed   string             `json:"seed"`
	Day    report.DailyRollup `json:"day"`
}

type SimResultPayload struct {
	RunID  string               `json:"run_id"`
	Policy simulator.Policy     `json:"policy"`
	Result simulator.Result     `json:"result"`
	Days   []report.DailyRollup `json:"days"`
}

type MCProgressPayload struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

type MCResultPayload struct {
	Policy simulator.Policy `json:"policy"`
	Seed   string           `json:"seed"`
	Runs   int              `json:"runs"`
	simulator.MonteCarloResult
}

type RunStoredPayload struct {
	RunID     string           `json:"run_id"`
	Policy    simulator.Policy `json:"policy"`
	Seed      string           `json:"seed"`
	EnergyKWh float64          `json:"energy_kwh"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling %s payload: %w", msgType, err)
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}

func helloPayload(mcRuns int) HelloPayload {
	rooms := model.Rooms()
	out := make([]RoomPayload, len(rooms))
	for i, r := range rooms {
		info := r.Info()
		out[i] = RoomPayload{ID: r, Name: info.Name, Kind: info.Kind}
	}
	return HelloPayload{
		Rooms:    out,
		Policies: []string{simulator.PolicyLegacy.String(), simulator.PolicySentient.String()},
		WeatherProfiles: []string{
			string(simulator.WeatherHot),
			string(simulator.WeatherCold),
			string(simulator.WeatherMixed),
		},
		TotalMinutes:  model.TotalMinutes,
		DefaultSeed:   simulator.DefaultSeed,
		DefaultMCSeed: simulator.DefaultMonteCarloSeed,
		DefaultMCRuns: mcRuns,
	}
}
