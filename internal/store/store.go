package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/sz3lp/sz/internal/model"
	"github.com/sz3lp/sz/internal/simulator"
)

var (
	ErrNotFound = errors.New("run not found")
	ErrNoTrace  = errors.New("run has no trace")
)

// Run is a stored simulation result.
type Run struct {
	ID        string           `json:"id"`
	Key       string           `json:"key"`
	Policy    simulator.Policy `json:"policy"`
	Seed      string           `json:"seed"`
	CreatedAt time.Time        `json:"created_at"`
	Result    simulator.Result `json:"result"`
}

// HasTrace reports whether the run was recorded with a per-minute trace.
func (r *Run) HasTrace() bool {
	return len(r.Result.Trace) > 0
}

// Store keeps simulation runs in memory with a TTL, indexed by run ID and
// by the canonical key of the options that produced them.
type Store struct {
	runs  *cache.Cache // id -> *Run
	byKey *cache.Cache // key -> id
	group singleflight.Group
	now   func() time.Time
}

// New returns a store whose entries expire after ttl. A ttl <= 0 keeps
// entries until the process exits.
func New(ttl time.Duration) *Store {
	exp, cleanup := ttl, 2*ttl
	if ttl <= 0 {
		exp, cleanup = cache.NoExpiration, 0
	}
	return &Store{
		runs:  cache.New(exp, cleanup),
		byKey: cache.New(exp, cleanup),
		now:   time.Now,
	}
}

type keyFields struct {
	Policy simulator.Policy `json:"policy"`
	Seed   string           `json:"seed"`
	Config simulator.Config `json:"config"`
}

// Key returns the canonical identity of opts. Trace and Callback do not
// affect the result and are left out.
func Key(opts simulator.Options) string {
	if opts.Seed == "" {
		opts.Seed = simulator.DefaultSeed
	}
	// Config holds only maps, pointers and strings; json sorts map keys.
	b, err := json.Marshal(keyFields{Policy: opts.Policy, Seed: opts.Seed, Config: opts.Config})
	if err != nil {
		return fmt.Sprintf("%s|%s|%v", opts.Policy, opts.Seed, opts.Config)
	}
	return string(b)
}

// Put stores a result and returns its run record.
func (s *Store) Put(opts simulator.Options, res simulator.Result) *Run {
	r := &Run{
		ID:        uuid.NewString(),
		Key:       Key(opts),
		Policy:    opts.Policy,
		Seed:      res.Seed,
		CreatedAt: s.now().UTC(),
		Result:    res,
	}
	s.runs.SetDefault(r.ID, r)
	s.byKey.SetDefault(r.Key, r.ID)
	return r
}

// Get returns the run with the given ID.
func (s *Store) Get(id string) (*Run, bool) {
	v, ok := s.runs.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*Run), true
}

// Lookup returns a stored run produced by equivalent options. A run
// without a trace does not satisfy a traced request.
func (s *Store) Lookup(opts simulator.Options) (*Run, bool) {
	id, ok := s.byKey.Get(Key(opts))
	if !ok {
		return nil, false
	}
	r, ok := s.Get(id.(string))
	if !ok || (opts.Trace && !r.HasTrace()) {
		return nil, false
	}
	return r, true
}

// Simulate returns a memoized run for opts, running the simulation on a
// miss. Concurrent identical requests share one run. cached reports
// whether this call was served without running a simulation of its own.
func (s *Store) Simulate(opts simulator.Options) (run *Run, cached bool) {
	if r, ok := s.Lookup(opts); ok {
		return r, true
	}
	flight := Key(opts)
	if opts.Trace {
		flight += "|trace"
	}
	v, _, shared := s.group.Do(flight, func() (any, error) {
		return s.Put(opts, simulator.Simulate(opts)), nil
	})
	return v.(*Run), shared
}

// Count returns the number of unexpired runs.
func (s *Store) Count() int {
	return s.runs.ItemCount()
}

// TraceRange returns deep copies of the trace entries of run id with
// from <= minute < to.
func (s *Store) TraceRange(id string, from, to int) ([]model.SimulationState, error) {
	r, ok := s.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	if !r.HasTrace() {
		return nil, ErrNoTrace
	}
	all := r.Result.Trace

	startIdx := sort.Search(len(all), func(i int) bool {
		return all[i].Minute >= from
	})
	endIdx := sort.Search(len(all), func(i int) bool {
		return all[i].Minute >= to
	})
	if startIdx >= endIdx {
		return nil, nil
	}

	result := make([]model.SimulationState, 0, endIdx-startIdx)
	for i := startIdx; i < endIdx; i++ {
		result = append(result, all[i].Clone())
	}
	return result, nil
}
