// Package ensemble runs independent stochastic replicates of one
// parameter set and aggregates them into mean trajectories and quantile
// bands. Replicates are order-insensitive and run on a bounded worker
// pool; each derives its own seed from the base seed, so a fixed base
// seed reproduces the whole ensemble.
package ensemble

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/outbreaklab/go-outbreak/engine"
	"github.com/outbreaklab/go-outbreak/epidemic"
	"github.com/outbreaklab/go-outbreak/metrics"
)

// Options configures an ensemble run.
type Options struct {
	Runs     int     // number of replicates (default 100)
	BaseSeed uint64  // replicate i runs with seed BaseSeed+i
	Workers  int     // parallel workers (default GOMAXPROCS)
	Band     float64 // central quantile band width, e.g. 0.9 (default)

	// OnProgress, when set, is called once per completed replicate.
	OnProgress func()
}

// DefaultOptions returns 100 replicates with a 90% band.
func DefaultOptions() *Options {
	return &Options{
		Runs: 100,
		Band: 0.9,
	}
}

// Summary aggregates an ensemble of replicates on the shared time grid.
type Summary struct {
	Runs int
	T    []float64

	Mean  map[string][]float64 // per-compartment mean trajectory
	Lower map[string][]float64 // lower band edge
	Upper map[string][]float64 // upper band edge
	Band  float64

	Bundles []*metrics.Bundle // per-replicate metrics, in replicate order
}

// Run executes the ensemble. Replicates that fail (numerical instability
// cuts a series short before the fill can pad it) abort the whole
// ensemble; stochastic runs share a fixed time grid otherwise.
func Run(variant epidemic.Variant, params epidemic.Parameters, opts *Options) (*Summary, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	runs := opts.Runs
	if runs <= 0 {
		runs = 100
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	band := opts.Band
	if band <= 0 || band >= 1 {
		band = 0.9
	}

	series := make([]*engine.TimeSeries, runs)
	errs := make([]error, runs)

	var wg sync.WaitGroup
	sem := make(chan struct{}, workers)
	var mu sync.Mutex

	for i := 0; i < runs; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			ts, err := engine.Run(variant, params, &engine.Options{
				Mode: engine.Stochastic,
				Seed: opts.BaseSeed + uint64(i),
			})
			series[i] = ts
			errs[i] = err

			if opts.OnProgress != nil {
				mu.Lock()
				opts.OnProgress()
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("replicate %d (seed %d): %w", i, opts.BaseSeed+uint64(i), err)
		}
	}

	return aggregate(variant, params, series, band)
}

func aggregate(variant epidemic.Variant, params epidemic.Parameters, series []*engine.TimeSeries, band float64) (*Summary, error) {
	first := series[0]
	labels := first.Labels
	points := first.Len()

	summary := &Summary{
		Runs:    len(series),
		T:       first.T,
		Mean:    make(map[string][]float64, len(labels)),
		Lower:   make(map[string][]float64, len(labels)),
		Upper:   make(map[string][]float64, len(labels)),
		Band:    band,
		Bundles: make([]*metrics.Bundle, len(series)),
	}

	for i, ts := range series {
		bundle, err := metrics.Summarize(ts, variant, params)
		if err != nil {
			return nil, fmt.Errorf("replicate %d: %w", i, err)
		}
		summary.Bundles[i] = bundle
	}

	lowerQ := (1 - band) / 2
	upperQ := 1 - lowerQ

	sample := make([]float64, len(series))
	for _, label := range labels {
		mean := make([]float64, points)
		lower := make([]float64, points)
		upper := make([]float64, points)

		for t := 0; t < points; t++ {
			for i, ts := range series {
				sample[i] = ts.U[t][label]
			}
			mean[t] = stat.Mean(sample, nil)
			sorted := append([]float64(nil), sample...)
			sort.Float64s(sorted)
			lower[t] = stat.Quantile(lowerQ, stat.Empirical, sorted, nil)
			upper[t] = stat.Quantile(upperQ, stat.Empirical, sorted, nil)
		}

		summary.Mean[label] = mean
		summary.Lower[label] = lower
		summary.Upper[label] = upper
	}
	return summary, nil
}

// MeanPeak returns the mean peak prevalence across replicates.
func (s *Summary) MeanPeak() float64 {
	if len(s.Bundles) == 0 {
		return 0
	}
	peaks := make([]float64, len(s.Bundles))
	for i, b := range s.Bundles {
		peaks[i] = b.PeakPrevalence
	}
	return stat.Mean(peaks, nil)
}

// MeanAttackRate returns the mean final attack rate across replicates.
func (s *Summary) MeanAttackRate() float64 {
	if len(s.Bundles) == 0 {
		return 0
	}
	rates := make([]float64, len(s.Bundles))
	for i, b := range s.Bundles {
		rates[i] = b.AttackRate
	}
	return stat.Mean(rates, nil)
}
