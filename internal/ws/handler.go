package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/sz3lp/sz/internal/simulator"
	"github.com/sz3lp/sz/internal/store"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ErrBusy is reported when a client starts a run while another is in flight.
var ErrBusy = errors.New("a run is already in progress")

// HandlerOptions holds server-side defaults for client requests.
type HandlerOptions struct {
	// Config applies to runs whose request carries no config.
	Config            simulator.Config
	MonteCarloRuns    int
	MonteCarloWorkers int
}

// Handler manages WebSocket connections and runs simulations on request.
// Each client has at most one run in flight.
type Handler struct {
	hub    *Hub
	runs   *store.Store
	logger *log.Logger
	opts   HandlerOptions
}

func NewHandler(hub *Hub, runs *store.Store, logger *log.Logger, opts HandlerOptions) *Handler {
	if opts.MonteCarloRuns <= 0 {
		opts.MonteCarloRuns = 100
	}
	return &Handler{hub: hub, runs: runs, logger: logger, opts: opts}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade", "err", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, 256),
		ctx:    ctx,
		cancel: cancel,
	}

	h.hub.Register(client)
	go client.writePump()

	h.send(client, TypeHello, helloPayload(h.opts.MonteCarloRuns))

	// Read messages from client
	h.readPump(client)
}

func (h *Handler) readPump(c *Client) {
	defer func() {
		h.hub.Unregister(c)
		c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read", "err", err)
			}
			return
		}

		h.handleMessage(c, msg)
	}
}

func (h *Handler) handleMessage(c *Client, msg []byte) {
	var env Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		h.sendError(c, fmt.Errorf("invalid message: %w", err))
		return
	}

	switch env.Type {
	case TypeSimRun:
		var p SimRunPayload
		if err := decodePayload(env.Payload, &p); err != nil {
			h.sendError(c, fmt.Errorf("invalid %s payload: %w", TypeSimRun, err))
			return
		}
		opts, err := h.simOptions(p.RunSpec)
		if err != nil {
			h.sendError(c, err)
			return
		}
		h.startJob(c, func(ctx context.Context) { h.runSim(ctx, c, opts) })

	case TypeMCRun:
		var p MCRunPayload
		if err := decodePayload(env.Payload, &p); err != nil {
			h.sendError(c, fmt.Errorf("invalid %s payload: %w", TypeMCRun, err))
			return
		}
		opts, err := h.simOptions(p.RunSpec)
		if err != nil {
			h.sendError(c, err)
			return
		}
		n := p.Runs
		if n == 0 {
			n = h.opts.MonteCarloRuns
		}
		if n < 0 || n > simulator.MaxMonteCarloRuns {
			h.sendError(c, fmt.Errorf("runs must be between 1 and %d, got %d", simulator.MaxMonteCarloRuns, n))
			return
		}
		workers := p.Workers
		if workers <= 0 {
			workers = h.opts.MonteCarloWorkers
		}
		mc := simulator.MonteCarloOptions{
			Policy:  opts.Policy,
			Seed:    p.Seed,
			Config:  opts.Config,
			Workers: workers,
		}
		h.startJob(c, func(ctx context.Context) { h.runMonteCarlo(ctx, c, n, mc) })

	case TypeRunCancel:
		if !c.cancelJob() {
			h.sendError(c, errors.New("no run in progress"))
		}

	default:
		h.sendError(c, fmt.Errorf("unknown message type: %s", env.Type))
	}
}

func decodePayload(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func (h *Handler) simOptions(spec RunSpec) (simulator.Options, error) {
	policy, err := spec.resolvePolicy()
	if err != nil {
		return simulator.Options{}, err
	}
	cfg := h.opts.Config
	if spec.Config != nil {
		cfg = *spec.Config
	}
	seed := spec.Seed
	if seed == "" {
		seed = simulator.DefaultSeed
	}
	return simulator.Options{Policy: policy, Seed: seed, Config: cfg}, nil
}

func (h *Handler) startJob(c *Client, run func(ctx context.Context)) {
	ctx, cancel := context.WithCancel(c.ctx)
	if !c.startJob(cancel) {
		cancel()
		h.sendError(c, ErrBusy)
		return
	}
	go func() {
		defer c.finishJob()
		run(ctx)
	}()
}

func (h *Handler) runSim(ctx context.Context, c *Client, opts simulator.Options) {
	bridge := NewBridge(func(msg []byte) bool { return h.hub.SendTo(c, msg) }, h.logger, opts.Policy, opts.Seed)
	opts.Callback = bridge

	e := simulator.New(opts)
	for e.Step() {
		if err := ctx.Err(); err != nil {
			h.sendError(c, fmt.Errorf("simulation cancelled: %w", err))
			return
		}
	}
	res := e.Result()

	opts.Callback = nil
	run := h.runs.Put(opts, res)
	h.logger.Info("simulation complete", "run", run.ID, "policy", opts.Policy, "seed", res.Seed, "kwh", res.EnergyUsedKWh)

	h.send(c, TypeSimResult, SimResultPayload{
		RunID:  run.ID,
		Policy: opts.Policy,
		Result: res,
		Days:   bridge.Days(),
	})
	h.broadcast(TypeRunStored, RunStoredPayload{
		RunID:     run.ID,
		Policy:    opts.Policy,
		Seed:      res.Seed,
		EnergyKWh: res.EnergyUsedKWh,
	})
}

func (h *Handler) runMonteCarlo(ctx context.Context, c *Client, n int, opts simulator.MonteCarloOptions) {
	every := max(1, n/100)
	var completed atomic.Int64
	opts.OnRun = func(int, simulator.Result) {
		k := int(completed.Add(1))
		if k%every == 0 || k == n {
			h.send(c, TypeMCProgress, MCProgressPayload{Completed: k, Total: n})
		}
	}

	res, err := simulator.RunMonteCarlo(ctx, n, opts)
	if err != nil {
		h.sendError(c, fmt.Errorf("monte carlo: %w", err))
		return
	}
	seed := opts.Seed
	if seed == "" {
		seed = simulator.DefaultMonteCarloSeed
	}
	h.logger.Info("monte carlo complete", "runs", n, "policy", opts.Policy, "seed", seed, "mean_kwh", res.MeanEnergyKWh)
	h.send(c, TypeMCResult, MCResultPayload{Policy: opts.Policy, Seed: seed, Runs: n, MonteCarloResult: res})
}

func (h *Handler) send(c *Client, msgType string, payload any) {
	msg, err := NewEnvelope(msgType, payload)
	if err != nil {
		h.logger.Error("creating message", "type", msgType, "err", err)
		return
	}
	h.hub.SendTo(c, msg)
}

func (h *Handler) broadcast(msgType string, payload any) {
	msg, err := NewEnvelope(msgType, payload)
	if err != nil {
		h.logger.Error("creating message", "type", msgType, "err", err)
		return
	}
	h.hub.Broadcast(msg)
}

func (h *Handler) sendError(c *Client, err error) {
	h.logger.Debug("client error", "err", err)
	h.send(c, TypeError, ErrorPayload{Message: err.Error()})
}
