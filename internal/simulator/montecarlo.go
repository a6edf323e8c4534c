package simulator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// ErrInvalidArgument is returned for inputs the engine cannot run with.
var ErrInvalidArgument = errors.New("invalid argument")

// DefaultMonteCarloSeed is the base seed when MonteCarloOptions.Seed is empty.
const DefaultMonteCarloSeed = "mc"

// MaxMonteCarloRuns bounds the run count of one batch.
const MaxMonteCarloRuns = 10000

// MonteCarloOptions configures a batch of runs. Seed is the base seed; run i
// uses RunSeed(Seed, i).
type MonteCarloOptions struct {
	Policy Policy
	Seed   string
	Config Config
	Trace  bool

	// Workers > 1 simulates runs in parallel. Results do not depend on it.
	Workers int

	// OnRun is called after each run completes. With Workers > 1 it may be
	// called concurrently and out of index order.
	OnRun func(index int, r Result)
}

// MonteCarloResult holds energy statistics over every run plus the runs
// themselves, ordered by run index.
type MonteCarloResult struct {
	MeanEnergyKWh   float64  `json:"meanEnergy_kWh"`
	MedianEnergyKWh float64  `json:"medianEnergy_kWh"`
	StdevEnergyKWh  float64  `json:"stdevEnergy_kWh"`
	Results         []Result `json:"results"`
}

// RunSeed derives the seed of run i from base.
func RunSeed(base string, i int) string {
	return base + "-" + strconv.Itoa(i)
}

// RunMonteCarlo simulates n independently seeded runs, 1 <= n <=
// MaxMonteCarloRuns.
func RunMonteCarlo(ctx context.Context, n int, opts MonteCarloOptions) (MonteCarloResult, error) {
	if n <= 0 || n > MaxMonteCarloRuns {
		return MonteCarloResult{}, fmt.Errorf("monte carlo run count %d: %w", n, ErrInvalidArgument)
	}
	base := opts.Seed
	if base == "" {
		base = DefaultMonteCarloSeed
	}

	results := make([]Result, n)
	runOne := func(i int) {
		results[i] = Simulate(Options{
			Policy: opts.Policy,
			Seed:   RunSeed(base, i),
			Config: opts.Config,
			Trace:  opts.Trace,
		})
		if opts.OnRun != nil {
			opts.OnRun(i, results[i])
		}
	}

	if opts.Workers > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(opts.Workers)
		for i := range n {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				runOne(i)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return MonteCarloResult{}, err
		}
		if err := ctx.Err(); err != nil {
			return MonteCarloResult{}, err
		}
	} else {
		for i := range n {
			if err := ctx.Err(); err != nil {
				return MonteCarloResult{}, err
			}
			runOne(i)
		}
	}

	energies := make([]float64, n)
	for i, r := range results {
		energies[i] = r.EnergyUsedKWh
	}
	mean, median, stdev := EnergyStats(energies)
	return MonteCarloResult{
		MeanEnergyKWh:   mean,
		MedianEnergyKWh: median,
		StdevEnergyKWh:  stdev,
		Results:         results,
	}, nil
}

// EnergyStats returns the arithmetic mean, the median (the element at
// floor(n/2) of the sorted values, no interpolation) and the population
// standard deviation of values. values must be non-empty; it is not modified.
func EnergyStats(values []float64) (mean, median, stdev float64) {
	n := float64(len(values))
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean = sum / n

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	median = sorted[len(sorted)/2]

	var sq float64
	for _, v := range values {
		sq += math.Pow(v-mean, 2)
	}
	stdev = math.Sqrt(sq / n)
	return mean, median, stdev
}
