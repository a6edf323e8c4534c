// Package report derives per-day series and policy comparisons from
// simulation output.
package report

import (
	"github.com/sz3lp/sz/internal/model"
)

// DailyRollup summarizes one simulated day.
type DailyRollup struct {
	Day               int                    `json:"day"` // zero-based
	Minutes           int                    `json:"minutes"`
	EnergyKWh         float64                `json:"energy_kwh"`
	ComfortViolations int                    `json:"comfort_violations"`
	RuntimeMinutes    int                    `json:"runtime_minutes"`
	AvgTempF          map[model.Room]float64 `json:"avg_temp_f"`
	OccupiedMinutes   map[model.Room]int     `json:"occupied_minutes"`
}

// DailyAccumulator builds daily rollups from a stream of end-of-minute
// states. It implements simulator.Callback.
type DailyAccumulator struct {
	onDay func(DailyRollup)
	days  []DailyRollup

	day     int
	minutes int
	tempSum map[model.Room]float64
	occ     map[model.Room]int

	// cumulative counters at the end of the previous day
	prevEnergy     float64
	prevViolations int
	prevRuntime    int

	// counters at the most recent minute
	lastEnergy     float64
	lastViolations int
	lastRuntime    int
}

// NewDailyAccumulator returns an accumulator. onDay, if non-nil, is called
// as each day completes.
func NewDailyAccumulator(onDay func(DailyRollup)) *DailyAccumulator {
	a := &DailyAccumulator{onDay: onDay}
	a.resetDay(0)
	return a
}

func (a *DailyAccumulator) resetDay(day int) {
	a.day = day
	a.minutes = 0
	a.tempSum = make(map[model.Room]float64, model.NumRooms)
	a.occ = make(map[model.Room]int, model.NumRooms)
}

// OnMinute folds s into the current day. States must arrive in minute order.
func (a *DailyAccumulator) OnMinute(s *model.SimulationState) {
	if d := model.DayOf(s.Minute); d != a.day {
		a.closeDay()
		a.resetDay(d)
	}
	a.minutes++
	for room, rs := range s.Rooms {
		a.tempSum[room] += rs.Temp
		if rs.Occupied {
			a.occ[room]++
		}
	}
	a.lastEnergy = s.EnergyUsedKWh
	a.lastViolations = s.TotalComfortViolations()
	a.lastRuntime = s.TotalRuntimeMinutes()

	if (s.Minute+1)%model.MinutesPerDay == 0 {
		a.closeDay()
		a.resetDay(a.day + 1)
	}
}

func (a *DailyAccumulator) closeDay() {
	if a.minutes == 0 {
		return
	}
	avg := make(map[model.Room]float64, len(a.tempSum))
	for room, sum := range a.tempSum {
		avg[room] = sum / float64(a.minutes)
	}
	occ := make(map[model.Room]int, len(a.occ))
	for room, n := range a.occ {
		occ[room] = n
	}
	d := DailyRollup{
		Day:               a.day,
		Minutes:           a.minutes,
		EnergyKWh:         a.lastEnergy - a.prevEnergy,
		ComfortViolations: a.lastViolations - a.prevViolations,
		RuntimeMinutes:    a.lastRuntime - a.prevRuntime,
		AvgTempF:          avg,
		OccupiedMinutes:   occ,
	}
	a.prevEnergy = a.lastEnergy
	a.prevViolations = a.lastViolations
	a.prevRuntime = a.lastRuntime
	a.minutes = 0

	a.days = append(a.days, d)
	if a.onDay != nil {
		a.onDay(d)
	}
}

// Days returns every completed day plus the current partial day, if any.
func (a *DailyAccumulator) Days() []DailyRollup {
	out := append([]DailyRollup(nil), a.days...)
	if a.minutes > 0 {
		partial := *a
		partial.days = nil
		partial.onDay = nil
		partial.closeDay()
		out = append(out, partial.days...)
	}
	return out
}

// Daily rolls a trace up into per-day series.
func Daily(trace []model.SimulationState) []DailyRollup {
	a := NewDailyAccumulator(nil)
	for i := range trace {
		a.OnMinute(&trace[i])
	}
	return a.Days()
}
