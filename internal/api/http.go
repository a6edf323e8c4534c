// Package api serves simulations over REST.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"

	"github.com/sz3lp/sz/internal/model"
	"github.com/sz3lp/sz/internal/report"
	"github.com/sz3lp/sz/internal/simulator"
	"github.com/sz3lp/sz/internal/store"
)

// Options holds server-side defaults.
type Options struct {
	// Config applies to requests that carry no config.
	Config            simulator.Config
	MonteCarloRuns    int
	MonteCarloWorkers int
}

type Server struct {
	runs *store.Store
	log  *log.Logger
	opts Options
}

func NewServer(runs *store.Store, logger *log.Logger, opts Options) *Server {
	if opts.MonteCarloRuns <= 0 {
		opts.MonteCarloRuns = 100
	}
	return &Server{runs: runs, log: logger, opts: opts}
}

// RunRequest selects one run. Policy takes precedence over IsSentient.
type RunRequest struct {
	Policy     string            `json:"policy,omitempty"`
	IsSentient bool              `json:"isSentient,omitempty"`
	Seed       string            `json:"seed,omitempty"`
	Config     *simulator.Config `json:"config,omitempty"`
	Trace      bool              `json:"trace,omitempty"`
}

type MonteCarloRequest struct {
	RunRequest
	Runs    int `json:"runs"`
	Workers int `json:"workers,omitempty"`
}

// RunResponse describes a stored run. The trace is served separately.
type RunResponse struct {
	RunID    string           `json:"run_id"`
	Policy   simulator.Policy `json:"policy"`
	Cached   bool             `json:"cached"`
	HasTrace bool             `json:"has_trace"`
	Result   simulator.Result `json:"result"`
}

type CompareResponse struct {
	LegacyRunID   string `json:"legacy_run_id"`
	SentientRunID string `json:"sentient_run_id"`
	report.Comparison
}

type MonteCarloResponse struct {
	Policy simulator.Policy `json:"policy"`
	Seed   string           `json:"seed"`
	Runs   int              `json:"runs"`
	simulator.MonteCarloResult
}

type TraceResponse struct {
	RunID  string                  `json:"run_id"`
	From   int                     `json:"from"`
	To     int                     `json:"to"`
	States []model.SimulationState `json:"states"`
}

type DailyResponse struct {
	RunID string               `json:"run_id"`
	Days  []report.DailyRollup `json:"days"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "runs": s.runs.Count()})
}

func (s *Server) options(req RunRequest) (simulator.Options, error) {
	policy := simulator.PolicyFor(req.IsSentient)
	if req.Policy != "" {
		var err error
		if policy, err = simulator.ParsePolicy(req.Policy); err != nil {
			return simulator.Options{}, err
		}
	}
	cfg := s.opts.Config
	if req.Config != nil {
		cfg = *req.Config
	}
	seed := req.Seed
	if seed == "" {
		seed = simulator.DefaultSeed
	}
	return simulator.Options{Policy: policy, Seed: seed, Config: cfg, Trace: req.Trace}, nil
}

func runResponse(run *store.Run, cached bool) RunResponse {
	res := run.Result
	res.Trace = nil
	return RunResponse{
		RunID:    run.ID,
		Policy:   run.Policy,
		Cached:   cached,
		HasTrace: run.HasTrace(),
		Result:   res,
	}
}

func (s *Server) simulate(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts, err := s.options(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, cached := s.runs.Simulate(opts)
	s.log.Debug("simulate", "run", run.ID, "policy", opts.Policy, "seed", opts.Seed, "cached", cached)
	writeJSON(w, http.StatusOK, runResponse(run, cached))
}

func (s *Server) compare(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts, err := s.options(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts.Policy = simulator.PolicyLegacy
	legacy, _ := s.runs.Simulate(opts)
	opts.Policy = simulator.PolicySentient
	sentient, _ := s.runs.Simulate(opts)

	writeJSON(w, http.StatusOK, CompareResponse{
		LegacyRunID:   legacy.ID,
		SentientRunID: sentient.ID,
		Comparison:    report.Compare(legacy.Result, sentient.Result),
	})
}

func (s *Server) monteCarlo(w http.ResponseWriter, r *http.Request) {
	var req MonteCarloRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Trace = false
	opts, err := s.options(req.RunRequest)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n := req.Runs
	if n == 0 {
		n = s.opts.MonteCarloRuns
	}
	if n < 0 || n > simulator.MaxMonteCarloRuns {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("runs must be between 1 and %d", simulator.MaxMonteCarloRuns))
		return
	}
	workers := req.Workers
	if workers <= 0 {
		workers = s.opts.MonteCarloWorkers
	}
	seed := req.Seed
	if seed == "" {
		seed = simulator.DefaultMonteCarloSeed
	}

	res, err := simulator.RunMonteCarlo(r.Context(), n, simulator.MonteCarloOptions{
		Policy:  opts.Policy,
		Seed:    seed,
		Config:  opts.Config,
		Workers: workers,
	})
	if err != nil {
		if errors.Is(err, simulator.ErrInvalidArgument) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		// Client went away.
		s.log.Warn("monte carlo aborted", "err", err)
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	s.log.Info("monte carlo complete", "runs", n, "policy", opts.Policy, "seed", seed, "mean_kwh", res.MeanEnergyKWh)
	writeJSON(w, http.StatusOK, MonteCarloResponse{Policy: opts.Policy, Seed: seed, Runs: n, MonteCarloResult: res})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	run, ok := s.runs.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, runResponse(run, true))
}

func (s *Server) getTrace(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	from, err := intParam(r, "from", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := intParam(r, "to", model.TotalMinutes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	states, err := s.runs.TraceRange(id, from, to)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if states == nil {
		states = []model.SimulationState{}
	}
	writeJSON(w, http.StatusOK, TraceResponse{RunID: id, From: from, To: to, States: states})
}

func (s *Server) getDaily(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	states, err := s.runs.TraceRange(id, 0, model.TotalMinutes)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DailyResponse{RunID: id, Days: report.Daily(states)})
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return v, nil
}

// decodeJSON decodes the request body into v. An empty body leaves v as is.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrNoTrace):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
