package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sz3lp/sz/internal/logging"
)

func TestNewEnvelope(t *testing.T) {
	payload := MCProgressPayload{Completed: 3, Total: 10}

	msg, err := NewEnvelope(TypeMCProgress, payload)
	require.NoError(t, err)

	var env Envelope
	err = json.Unmarshal(msg, &env)
	require.NoError(t, err)

	assert.Equal(t, TypeMCProgress, env.Type)

	var parsed MCProgressPayload
	err = json.Unmarshal(env.Payload, &parsed)
	require.NoError(t, err)

	assert.Equal(t, 3, parsed.Completed)
	assert.Equal(t, 10, parsed.Total)
}

func TestNewEnvelope_NoPayload(t *testing.T) {
	msg, err := NewEnvelope(TypeRunCancel, nil)
	require.NoError(t, err)

	var env Envelope
	err = json.Unmarshal(msg, &env)
	require.NoError(t, err)

	assert.Equal(t, TypeRunCancel, env.Type)
	assert.Nil(t, env.Payload)
}

func TestNewEnvelope_MarshalError(t *testing.T) {
	_, err := NewEnvelope(TypeError, make(chan int))
	assert.Error(t, err)
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub(logging.Discard())

	c := &Client{
		hub:  hub,
		send: make(chan []byte, 16),
	}

	hub.Register(c)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Unregister(c)
	assert.Equal(t, 0, hub.ClientCount())

	// Second unregister is a no-op.
	hub.Unregister(c)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub(logging.Discard())

	c1 := &Client{hub: hub, send: make(chan []byte, 16)}
	c2 := &Client{hub: hub, send: make(chan []byte, 16)}

	hub.Register(c1)
	hub.Register(c2)

	msg := []byte(`{"type":"test"}`)
	hub.Broadcast(msg)

	assert.Equal(t, msg, <-c1.send)
	assert.Equal(t, msg, <-c2.send)
}

func TestHub_SendTo(t *testing.T) {
	hub := NewHub(logging.Discard())
	c1 := &Client{hub: hub, send: make(chan []byte, 1)}
	c2 := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register(c1)
	hub.Register(c2)

	assert.True(t, hub.SendTo(c1, []byte("a")))
	assert.Equal(t, []byte("a"), <-c1.send)
	assert.Empty(t, c2.send)

	// Full buffer drops.
	assert.True(t, hub.SendTo(c1, []byte("b")))
	assert.False(t, hub.SendTo(c1, []byte("c")))

	// Unregistered clients are skipped, never sent on a closed channel.
	hub.Unregister(c2)
	assert.False(t, hub.SendTo(c2, []byte("d")))
}

func TestClient_Jobs(t *testing.T) {
	c := &Client{}
	cancelled := 0
	cancel := func() { cancelled++ }

	assert.False(t, c.cancelJob())
	require.True(t, c.startJob(cancel))
	assert.False(t, c.startJob(cancel))

	assert.True(t, c.cancelJob())
	assert.Equal(t, 1, cancelled)

	c.finishJob()
	assert.Equal(t, 2, cancelled)
	assert.True(t, c.startJob(cancel))
}

func TestMessageTypes(t *testing.T) {
	assert.Equal(t, "sim:run", TypeSimRun)
	assert.Equal(t, "mc:run", TypeMCRun)
	assert.Equal(t, "sim:day", TypeSimDay)
	assert.Equal(t, "sim:result", TypeSimResult)
	assert.Equal(t, "mc:progress", TypeMCProgress)
	assert.Equal(t, "mc:result", TypeMCResult)
	assert.Equal(t, "error", TypeError)
}

func TestRunSpec_ResolvePolicy(t *testing.T) {
	p, err := RunSpec{}.resolvePolicy()
	require.NoError(t, err)
	assert.Equal(t, "legacy", p.String())

	p, err = RunSpec{IsSentient: true}.resolvePolicy()
	require.NoError(t, err)
	assert.True(t, p.IsSentient())

	p, err = RunSpec{Policy: "legacy", IsSentient: true}.resolvePolicy()
	require.NoError(t, err)
	assert.False(t, p.IsSentient())

	_, err = RunSpec{Policy: "eco"}.resolvePolicy()
	assert.Error(t, err)
}
