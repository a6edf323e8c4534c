// Package rng provides the seeded pseudo-random stream that drives every
// stochastic draw in a simulation run.
//
// The generator is mulberry32 keyed by a 31-multiplier rolling hash of the
// seed string. Streams are bit-identical to other mulberry32 ports given the
// same seed, so results can be cross-checked against them.
package rng

import "unicode/utf16"

const (
	// HashMultiplier is the polynomial rolling hash multiplier.
	HashMultiplier uint32 = 31
	// StateIncrement is added to the generator state before every draw.
	StateIncrement uint32 = 0x6D2B79F5
	// outputScale maps a uint32 onto [0, 1).
	outputScale = 1 << 32
)

// Source yields floats in [0, 1).
type Source interface {
	Float64() float64
}

// HashSeed folds a seed string into 32 bits: h = h*31 + unit over the
// string's UTF-16 code units, wrapping at 2^32.
func HashSeed(seed string) uint32 {
	var h uint32
	for _, unit := range utf16.Encode([]rune(seed)) {
		h = h*HashMultiplier + uint32(unit)
	}
	return h
}

// Mulberry32 is a 32-bit counter-based generator. Each draw:
//
//	state += 0x6D2B79F5
//	t = state
//	t = (t ^ t>>15) * (t | 1)
//	t ^= t + (t ^ t>>7) * (t | 61)
//	out = (t ^ t>>14) / 2^32
//
// All arithmetic wraps at 2^32. The period is 2^32 draws.
// A Mulberry32 is not safe for concurrent use.
type Mulberry32 struct {
	state uint32
}

// New returns a generator keyed by HashSeed(seed).
func New(seed string) *Mulberry32 {
	return NewFromState(HashSeed(seed))
}

// NewFromState returns a generator whose initial state is s.
func NewFromState(s uint32) *Mulberry32 {
	return &Mulberry32{state: s}
}

// Uint32 advances the stream and returns the raw 32-bit output.
func (m *Mulberry32) Uint32() uint32 {
	m.state += StateIncrement
	t := m.state
	t = (t ^ t>>15) * (t | 1)
	t ^= t + (t^t>>7)*(t|61)
	return t ^ t>>14
}

// Float64 advances the stream and returns a value in [0, 1).
func (m *Mulberry32) Float64() float64 {
	return float64(m.Uint32()) / outputScale
}

// State returns the current internal state.
func (m *Mulberry32) State() uint32 {
	return m.state
}
