package engine

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/outbreaklab/go-outbreak/epidemic"
)

// runStochastic samples one path of the variant's transition process.
// Per step, each flow draws Binomial(source, 1-exp(-hazard*dt)) new
// events; flows that share a source drain a per-step remaining count in
// declaration order, so a compartment can never go negative. The same
// seed and parameters always produce the same series.
func runStochastic(variant epidemic.Variant, params epidemic.Parameters, seed uint64) (*TimeSeries, error) {
	labels := variant.Compartments()
	flows := variant.Flows()
	steps := params.Steps()
	src := rand.NewSource(seed)

	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}

	u := stateToVec(params.InitialState(variant), labels)
	for i := range u {
		u[i] = math.Floor(u[i])
	}

	series := newSeries(steps, labels)
	series.append(0, u)

	for step := 1; step <= steps; step++ {
		t := float64(step) * params.Dt

		// Hazards are evaluated against the state at the start of
		// the step; draws within the step only compete for source
		// individuals, not for rate.
		state := vecToState(u, labels)
		remaining := append([]float64(nil), u...)

		for _, fl := range flows {
			si := index[fl.Source]
			hazard := fl.Hazard(params, state)
			if math.IsNaN(hazard) || math.IsInf(hazard, 0) {
				return series.done(), fmt.Errorf("%w: %s hazard at t=%.4g", ErrNumericalInstability, fl.Name, t)
			}
			p := 1 - math.Exp(-hazard*params.Dt)
			count := binomial(src, remaining[si], p)
			remaining[si] -= count
			u[si] -= count
			u[index[fl.Target]] += count
		}

		series.append(t, u)

		if extinct(u, index) {
			series.fill(t, params.Dt, steps-step, u)
			break
		}
	}
	return series.done(), nil
}

// binomial draws one Binomial(n, p) variate from the given source,
// guarding the degenerate edges gonum leaves to the caller.
func binomial(src rand.Source, n, p float64) float64 {
	n = math.Floor(n)
	if n <= 0 || p <= 0 {
		return 0
	}
	if p >= 1 {
		return n
	}
	b := distuv.Binomial{N: n, P: p, Src: src}
	return b.Rand()
}
