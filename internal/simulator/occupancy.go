package simulator

import (
	"github.com/sz3lp/sz/internal/model"
	"github.com/sz3lp/sz/internal/rng"
)

// hourlyTable is one probability per hour of day.
type hourlyTable [model.HoursPerDay]float64

func window(from, to int, inside, outside float64) hourlyTable {
	var t hourlyTable
	for h := range t {
		if h >= from && h < to {
			t[h] = inside
		} else {
			t[h] = outside
		}
	}
	return t
}

// defaultTables is built once and only ever copied out.
var defaultTables = map[model.Room]hourlyTable{
	model.RoomTherapyA: window(9, 17, 0.6, 0.1),
	model.RoomTherapyB: window(9, 17, 0.6, 0.1),
	model.RoomWaiting:  window(9, 17, 0.8, 0.2),
	model.RoomAdmin:    window(8, 18, 0.9, 0.1),
}

// DefaultOccupancy returns a fresh copy of the built-in hourly occupancy
// probabilities for every room.
func DefaultOccupancy() map[model.Room][]float64 {
	out := make(map[model.Room][]float64, len(defaultTables))
	for room, t := range defaultTables {
		out[room] = append([]float64(nil), t[:]...)
	}
	return out
}

// OccupancyModel decides each minute whether a room is occupied.
type OccupancyModel struct {
	tables map[model.Room]hourlyTable
}

// NewOccupancyModel merges overrides over the defaults, per room. Entries
// beyond an override's length keep the default value for that hour; rooms
// that are not simulated are ignored.
func NewOccupancyModel(overrides map[model.Room][]float64) *OccupancyModel {
	tables := make(map[model.Room]hourlyTable, len(defaultTables))
	for room, t := range defaultTables {
		if o, ok := overrides[room]; ok && o != nil {
			for h := 0; h < len(o) && h < model.HoursPerDay; h++ {
				t[h] = o[h]
			}
		}
		tables[room] = t
	}
	return &OccupancyModel{tables: tables}
}

// Probability returns the occupancy probability of room during hour.
func (o *OccupancyModel) Probability(room model.Room, hour int) float64 {
	return o.tables[room][hour]
}

// Draw consumes exactly one value from src and reports whether room is
// occupied at minute.
func (o *OccupancyModel) Draw(src rng.Source, room model.Room, minute int) bool {
	return src.Float64() < o.Probability(room, model.HourOfDay(minute))
}
