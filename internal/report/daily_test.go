package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sz3lp/sz/internal/model"
	"github.com/sz3lp/sz/internal/simulator"
)

func TestDaily_SumsMatchTotals(t *testing.T) {
	res := simulator.Simulate(simulator.Options{Policy: simulator.PolicySentient, Seed: "daily", Trace: true})
	days := Daily(res.Trace)
	require.Len(t, days, model.SimDays)

	var energy float64
	var violations, runtime int
	for i, d := range days {
		assert.Equal(t, i, d.Day)
		assert.Equal(t, model.MinutesPerDay, d.Minutes)
		assert.Len(t, d.AvgTempF, model.NumRooms)
		energy += d.EnergyKWh
		violations += d.ComfortViolations
		runtime += d.RuntimeMinutes
	}
	assert.InDelta(t, res.EnergyUsedKWh, energy, 1e-6)
	assert.Equal(t, res.ComfortViolations, violations)
	assert.Equal(t, res.RuntimeMinutes, runtime)
}

func TestDailyAccumulator_AsCallback(t *testing.T) {
	var seen []int
	acc := NewDailyAccumulator(func(d DailyRollup) { seen = append(seen, d.Day) })
	res := simulator.Simulate(simulator.Options{Policy: simulator.PolicyLegacy, Seed: "cb", Callback: acc})

	require.Len(t, seen, model.SimDays)
	assert.Equal(t, 0, seen[0])
	assert.Equal(t, model.SimDays-1, seen[len(seen)-1])

	fromTrace := Daily(simulator.Simulate(simulator.Options{Policy: simulator.PolicyLegacy, Seed: "cb", Trace: true}).Trace)
	assert.Equal(t, fromTrace, acc.Days())

	var runtime int
	for _, d := range acc.Days() {
		runtime += d.RuntimeMinutes
	}
	assert.Equal(t, res.RuntimeMinutes, runtime)
}

func TestDailyAccumulator_PartialDay(t *testing.T) {
	e := simulator.New(simulator.Options{Seed: "partial"})
	acc := NewDailyAccumulator(nil)
	for i := 0; i < model.MinutesPerDay+60; i++ {
		require.True(t, e.Step())
		s := e.State()
		acc.OnMinute(&s)
	}
	days := acc.Days()
	require.Len(t, days, 2)
	assert.Equal(t, model.MinutesPerDay, days[0].Minutes)
	assert.Equal(t, 60, days[1].Minutes)

	// Days must not consume the partial day.
	assert.Len(t, acc.Days(), 2)
}

func TestDaily_Empty(t *testing.T) {
	assert.Empty(t, Daily(nil))
}

func TestDaily_LegacyHoldsComfort(t *testing.T) {
	res := simulator.Simulate(simulator.Options{Policy: simulator.PolicyLegacy, Seed: "comfort", Trace: true})
	for _, d := range Daily(res.Trace) {
		assert.Zero(t, d.ComfortViolations, "day %d", d.Day)
		for room, avg := range d.AvgTempF {
			assert.InDelta(t, simulator.SetpointF, avg, 1.0, "day %d room %s", d.Day, room)
		}
	}
}
