// Package engine advances compartment populations over discrete time
// steps, either deterministically (fixed-step integration of the variant's
// rate equations) or stochastically (seeded binomial sampling of transition
// counts). Each Run call touches only its own locals; runs are safe to
// execute concurrently.
package engine

import (
	"fmt"
	"math"

	"github.com/outbreaklab/go-outbreak/epidemic"
	"github.com/outbreaklab/go-outbreak/solver"
)

// Mode selects how compartment transitions are advanced per step.
type Mode int

const (
	// Deterministic integrates the continuous rate equations.
	Deterministic Mode = iota
	// Stochastic samples integer transition counts per step.
	Stochastic
)

// String returns "deterministic" or "stochastic".
func (m Mode) String() string {
	if m == Stochastic {
		return "stochastic"
	}
	return "deterministic"
}

// extinctionThreshold is the infectious (and exposed) level below which
// the epidemic is considered over; the remaining steps are filled with
// the steady state rather than integrated.
const extinctionThreshold = 1e-6

// Options configures a simulation run.
type Options struct {
	Mode   Mode
	Seed   uint64         // random seed, stochastic mode only
	Method *solver.Method // integration method, deterministic mode only
}

// DefaultOptions returns a deterministic Euler run.
func DefaultOptions() *Options {
	return &Options{
		Mode:   Deterministic,
		Method: solver.Euler(),
	}
}

// Run simulates the given variant over [0, Days] with step Dt and returns
// the resulting time series of n+1 points, n = Days/Dt. Parameters are
// assumed validated (see the validate package).
//
// On numerical instability the partial series computed so far is returned
// together with ErrNumericalInstability. An invalid variant fails with
// epidemic.ErrUnsupportedVariant and no series.
func Run(variant epidemic.Variant, params epidemic.Parameters, opts *Options) (*TimeSeries, error) {
	if !variant.Valid() {
		return nil, fmt.Errorf("%w: %s", epidemic.ErrUnsupportedVariant, variant)
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Mode == Stochastic {
		return runStochastic(variant, params, opts.Seed)
	}
	method := opts.Method
	if method == nil {
		method = solver.Euler()
	}
	return runDeterministic(variant, params, method)
}

func runDeterministic(variant epidemic.Variant, params epidemic.Parameters, method *solver.Method) (*TimeSeries, error) {
	labels := variant.Compartments()
	flows := variant.Flows()
	steps := params.Steps()

	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}

	// Derivative of the variant's rate equations: each flow moves
	// hazard*source individuals per unit time from source to target.
	// When a step would drain more than a compartment holds (large dt
	// against fast combined outflows, e.g. recovery plus death from I),
	// the available amount is split across that compartment's outflows
	// in proportion to their rates instead of letting the clamp below
	// over-credit the targets.
	f := func(_ float64, u []float64) []float64 {
		state := vecToState(u, labels)
		du := make([]float64, len(u))
		fluxes := make([]float64, len(flows))
		outflux := make(map[string]float64, len(labels))
		for k, fl := range flows {
			flux := fl.Hazard(params, state) * state[fl.Source]
			if flux <= 0 {
				continue
			}
			fluxes[k] = flux
			outflux[fl.Source] += flux
		}
		for k, fl := range flows {
			flux := fluxes[k]
			if flux <= 0 {
				continue
			}
			if total := outflux[fl.Source]; total*params.Dt > state[fl.Source] {
				flux *= state[fl.Source] / (total * params.Dt)
			}
			du[index[fl.Source]] -= flux
			du[index[fl.Target]] += flux
		}
		return du
	}

	u := stateToVec(params.InitialState(variant), labels)
	series := newSeries(steps, labels)
	series.append(0, u)

	for step := 1; step <= steps; step++ {
		t := float64(step) * params.Dt
		u = method.Step(f, t-params.Dt, u, params.Dt)

		// Step-size error can push a compartment slightly negative;
		// clamp to zero and accept the small conservation error
		// rather than redistribute.
		for i := range u {
			if u[i] < 0 {
				u[i] = 0
			}
		}
		trimConservationExcess(u, labels, index, variant, params.Population)

		if i, bad := unstableIndex(u); bad {
			return series.done(), fmt.Errorf("%w: compartment %s at t=%.4g", ErrNumericalInstability, labels[i], t)
		}
		series.append(t, u)

		if extinct(u, index) {
			series.fill(t, params.Dt, steps-step, u)
			break
		}
	}
	return series.done(), nil
}

// trimConservationExcess keeps the living compartment sum at or below N
// by removing the overshoot from the terminal compartment. Deceased
// accumulates outside the living total.
func trimConservationExcess(u []float64, labels []string, index map[string]int, variant epidemic.Variant, n float64) {
	sum := 0.0
	for i, label := range labels {
		if label == epidemic.Deceased {
			continue
		}
		sum += u[i]
	}
	if sum <= n {
		return
	}
	ti := index[variant.TerminalCompartment()]
	u[ti] -= sum - n
	if u[ti] < 0 {
		u[ti] = 0
	}
}

func extinct(u []float64, index map[string]int) bool {
	if i, ok := index[epidemic.Infectious]; ok && u[i] >= extinctionThreshold {
		return false
	}
	if i, ok := index[epidemic.Exposed]; ok && u[i] >= extinctionThreshold {
		return false
	}
	return true
}

func unstableIndex(u []float64) (int, bool) {
	for i, v := range u {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i, true
		}
	}
	return 0, false
}

// seriesBuilder accumulates (time, state) pairs during a run.
type seriesBuilder struct {
	t      []float64
	u      []map[string]float64
	labels []string
}

func newSeries(steps int, labels []string) *seriesBuilder {
	return &seriesBuilder{
		t:      make([]float64, 0, steps+1),
		u:      make([]map[string]float64, 0, steps+1),
		labels: labels,
	}
}

func (b *seriesBuilder) append(t float64, u []float64) {
	b.t = append(b.t, t)
	b.u = append(b.u, vecToState(u, b.labels))
}

// fill pads the series with count copies of the steady state u,
// advancing time by dt each point.
func (b *seriesBuilder) fill(t, dt float64, count int, u []float64) {
	for i := 1; i <= count; i++ {
		b.append(t+float64(i)*dt, u)
	}
}

func (b *seriesBuilder) done() *TimeSeries {
	return &TimeSeries{T: b.t, U: b.u, Labels: b.labels}
}

func vecToState(u []float64, labels []string) map[string]float64 {
	m := make(map[string]float64, len(labels))
	for i, label := range labels {
		m[label] = u[i]
	}
	return m
}

func stateToVec(m map[string]float64, labels []string) []float64 {
	u := make([]float64, len(labels))
	for i, label := range labels {
		u[i] = m[label]
	}
	return u
}
