package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sz3lp/sz/internal/logging"
	"github.com/sz3lp/sz/internal/model"
	"github.com/sz3lp/sz/internal/simulator"
)

func newTestBridge(policy simulator.Policy, seed string) (*Bridge, *[][]byte) {
	var sent [][]byte
	send := func(msg []byte) bool {
		sent = append(sent, msg)
		return true
	}
	return NewBridge(send, logging.Discard(), policy, seed), &sent
}

func decodeEnvelope(t *testing.T, msg []byte) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(msg, &env))
	return env
}

func TestBridge_StreamsDays(t *testing.T) {
	bridge, sent := newTestBridge(simulator.PolicySentient, "bridge")
	res := simulator.Simulate(simulator.Options{Policy: simulator.PolicySentient, Seed: "bridge", Callback: bridge})

	require.Len(t, *sent, model.SimDays)

	var energy float64
	for i, msg := range *sent {
		env := decodeEnvelope(t, msg)
		assert.Equal(t, TypeSimDay, env.Type)

		var p SimDayPayload
		require.NoError(t, json.Unmarshal(env.Payload, &p))
		assert.Equal(t, i, p.Day.Day)
		assert.Equal(t, "bridge", p.Seed)
		assert.True(t, p.Policy.IsSentient())
		energy += p.Day.EnergyKWh
	}
	assert.InDelta(t, res.EnergyUsedKWh, energy, 1e-6)
	assert.Len(t, bridge.Days(), model.SimDays)
}

func TestBridge_NoDayBeforeMidnight(t *testing.T) {
	bridge, sent := newTestBridge(simulator.PolicyLegacy, "short")
	e := simulator.New(simulator.Options{Seed: "short", Callback: bridge})
	for i := 0; i < model.MinutesPerDay-1; i++ {
		e.Step()
	}
	assert.Empty(t, *sent)

	e.Step()
	assert.Len(t, *sent, 1)
}
