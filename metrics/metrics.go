// Package metrics derives summary statistics from a completed simulation
// run: peak prevalence and its timing, final attack rate, epidemic
// duration, and the basic reproduction number.
package metrics

import (
	"errors"

	"github.com/outbreaklab/go-outbreak/engine"
	"github.com/outbreaklab/go-outbreak/epidemic"
)

var (
	// ErrEmptySeries is returned when the time series has fewer than
	// two points and no trajectory metrics can be derived.
	ErrEmptySeries = errors.New("metrics: time series has fewer than 2 points")
)

// Bundle holds the summary metrics for one time series. Trajectory
// metrics are recomputed from scratch per call, never updated
// incrementally. R0 is a static function of the parameters, exposed
// here alongside the trajectory metrics for display.
type Bundle struct {
	PeakPrevalence float64            `json:"peakPrevalence"` // max Infectious over the run
	PeakTime       float64            `json:"peakTime"`       // time of the peak, first occurrence on ties
	AttackRate     float64            `json:"attackRate"`     // fraction of N infected by the end
	R0             float64            `json:"r0"`             // basic reproduction number
	Duration       float64            `json:"duration"`       // first time Infectious < 1, else the horizon
	FinalState     map[string]float64 `json:"finalState"`
}

// Summarize computes the metric bundle for a completed run.
// Fails with ErrEmptySeries when the series has fewer than 2 points.
func Summarize(series *engine.TimeSeries, variant epidemic.Variant, params epidemic.Parameters) (*Bundle, error) {
	if series == nil || series.Len() < 2 {
		return nil, ErrEmptySeries
	}

	infectious := series.GetVariable(epidemic.Infectious)

	peak := infectious[0]
	peakIdx := 0
	for i, v := range infectious {
		if v > peak {
			peak = v
			peakIdx = i
		}
	}

	duration := series.T[len(series.T)-1]
	for i, v := range infectious {
		if v < 1 {
			duration = series.T[i]
			break
		}
	}

	final := series.GetFinalState()
	return &Bundle{
		PeakPrevalence: peak,
		PeakTime:       series.T[peakIdx],
		AttackRate:     attackRate(final, variant, params.Population),
		R0:             params.R0(variant),
		Duration:       duration,
		FinalState:     final,
	}, nil
}

// attackRate is the fraction of the population no longer susceptible to
// first infection at the end of the run: recovered, plus vaccinated and
// deceased where the variant models them.
func attackRate(final map[string]float64, variant epidemic.Variant, n float64) float64 {
	if n <= 0 {
		return 0
	}
	total := final[epidemic.Recovered]
	if variant.HasCompartment(epidemic.Vaccinated) {
		total += final[epidemic.Vaccinated]
	}
	if variant.HasCompartment(epidemic.Deceased) {
		total += final[epidemic.Deceased]
	}
	return total / n
}
