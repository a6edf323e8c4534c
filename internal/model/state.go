package model

const (
	SimDays        = 30
	HoursPerDay    = 24
	MinutesPerHour = 60
	MinutesPerDay  = HoursPerDay * MinutesPerHour
	TotalMinutes   = SimDays * MinutesPerDay

	// InitialTempF is the starting temperature and target of every room.
	InitialTempF = 72.0
)

// HourOfDay returns the hour (0-23) that minute falls in.
func HourOfDay(minute int) int {
	return (minute % MinutesPerDay) / MinutesPerHour
}

// DayOf returns the zero-based simulation day of minute.
func DayOf(minute int) int {
	return minute / MinutesPerDay
}

// RoomState is the per-minute state of one room.
type RoomState struct {
	Temp              float64 `json:"temp"`
	Occupied          bool    `json:"occupied"`
	TargetTemp        float64 `json:"targetTemp"`
	ComfortViolations int     `json:"comfortViolations"`
	RuntimeMinutes    int     `json:"runtimeMinutes"`
}

// SimulationState is the facility-wide state at the end of a minute.
type SimulationState struct {
	Minute        int                 `json:"minute"`
	Rooms         map[Room]*RoomState `json:"rooms"`
	ExternalTemp  float64             `json:"externalTemp"`
	HVACOn        bool                `json:"hvacOn"` // reserved
	EnergyUsedKWh float64             `json:"energyUsed_kWh"`
}

// NewSimulationState returns the minute-0 state: every room at 72°F,
// unoccupied, zero counters.
func NewSimulationState(externalTemp float64) *SimulationState {
	rooms := make(map[Room]*RoomState, NumRooms)
	for _, r := range roomOrder {
		rooms[r] = &RoomState{
			Temp:       InitialTempF,
			TargetTemp: InitialTempF,
		}
	}
	return &SimulationState{
		Rooms:        rooms,
		ExternalTemp: externalTemp,
	}
}

// Clone returns a deep copy sharing no map or pointer with s.
func (s *SimulationState) Clone() SimulationState {
	rooms := make(map[Room]*RoomState, len(s.Rooms))
	for id, rs := range s.Rooms {
		cp := *rs
		rooms[id] = &cp
	}
	return SimulationState{
		Minute:        s.Minute,
		Rooms:         rooms,
		ExternalTemp:  s.ExternalTemp,
		HVACOn:        s.HVACOn,
		EnergyUsedKWh: s.EnergyUsedKWh,
	}
}

// TotalComfortViolations sums comfort violations across rooms.
func (s *SimulationState) TotalComfortViolations() int {
	total := 0
	for _, rs := range s.Rooms {
		total += rs.ComfortViolations
	}
	return total
}

// TotalRuntimeMinutes sums HVAC runtime across rooms.
func (s *SimulationState) TotalRuntimeMinutes() int {
	total := 0
	for _, rs := range s.Rooms {
		total += rs.RuntimeMinutes
	}
	return total
}
