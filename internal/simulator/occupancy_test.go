package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sz3lp/sz/internal/model"
)

func TestDefaultOccupancy(t *testing.T) {
	d := DefaultOccupancy()
	require.Len(t, d, model.NumRooms)

	for _, room := range model.Rooms() {
		require.Len(t, d[room], model.HoursPerDay, room)
	}

	assert.Equal(t, 0.1, d[model.RoomTherapyA][8])
	assert.Equal(t, 0.6, d[model.RoomTherapyA][9])
	assert.Equal(t, 0.6, d[model.RoomTherapyB][16])
	assert.Equal(t, 0.1, d[model.RoomTherapyB][17])
	assert.Equal(t, 0.2, d[model.RoomWaiting][3])
	assert.Equal(t, 0.8, d[model.RoomWaiting][12])
	assert.Equal(t, 0.9, d[model.RoomAdmin][8])
	assert.Equal(t, 0.9, d[model.RoomAdmin][17])
	assert.Equal(t, 0.1, d[model.RoomAdmin][18])
}

func TestDefaultOccupancy_ReturnsCopies(t *testing.T) {
	d := DefaultOccupancy()
	d[model.RoomAdmin][12] = 0
	delete(d, model.RoomWaiting)

	fresh := DefaultOccupancy()
	assert.Equal(t, 0.9, fresh[model.RoomAdmin][12])
	assert.Contains(t, fresh, model.RoomWaiting)

	o := NewOccupancyModel(nil)
	assert.Equal(t, 0.9, o.Probability(model.RoomAdmin, 12))
}

func TestNewOccupancyModel_Overrides(t *testing.T) {
	always := make([]float64, model.HoursPerDay)
	for i := range always {
		always[i] = 1
	}
	o := NewOccupancyModel(map[model.Room][]float64{
		model.RoomWaiting: always,
		model.RoomAdmin:   {0.5, 0.5},
		"Lobby":           always,
	})

	assert.Equal(t, 1.0, o.Probability(model.RoomWaiting, 3))
	// Short override: hours 0-1 overridden, the rest keep defaults.
	assert.Equal(t, 0.5, o.Probability(model.RoomAdmin, 0))
	assert.Equal(t, 0.5, o.Probability(model.RoomAdmin, 1))
	assert.Equal(t, 0.1, o.Probability(model.RoomAdmin, 2))
	assert.Equal(t, 0.9, o.Probability(model.RoomAdmin, 10))
	// Untouched room keeps its defaults.
	assert.Equal(t, 0.6, o.Probability(model.RoomTherapyA, 10))

	// Overrides are copied, not aliased.
	always[5] = 0
	assert.Equal(t, 1.0, o.Probability(model.RoomWaiting, 5))
}

func TestOccupancyModel_Draw(t *testing.T) {
	o := NewOccupancyModel(nil)
	minute := 10*60 + 15 // 10:15, TherapyA p=0.6

	src := newFixedSource(0.59, 0.6, 0.61)
	assert.True(t, o.Draw(src, model.RoomTherapyA, minute))
	assert.False(t, o.Draw(src, model.RoomTherapyA, minute), "draw equal to p is not occupied")
	assert.False(t, o.Draw(src, model.RoomTherapyA, minute))
	assert.Equal(t, 3, src.calls)
}

func TestOccupancyModel_OutOfRangeProbabilities(t *testing.T) {
	never := make([]float64, model.HoursPerDay)
	always := make([]float64, model.HoursPerDay)
	for h := range never {
		never[h] = -0.5
		always[h] = 1.5
	}
	o := NewOccupancyModel(map[model.Room][]float64{
		model.RoomTherapyA: never,
		model.RoomTherapyB: always,
	})

	src := newFixedSource(0, 0.999)
	assert.False(t, o.Draw(src, model.RoomTherapyA, 600))
	assert.True(t, o.Draw(src, model.RoomTherapyB, 600))
}
