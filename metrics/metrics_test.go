package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/outbreaklab/go-outbreak/engine"
	"github.com/outbreaklab/go-outbreak/epidemic"
)

func run(t *testing.T, variant epidemic.Variant, params epidemic.Parameters) *engine.TimeSeries {
	t.Helper()
	series, err := engine.Run(variant, params, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	return series
}

func TestSummarizeSIR(t *testing.T) {
	params := epidemic.Parameters{
		Population:      1000,
		InitialInfected: 1,
		Beta:            0.3,
		Gamma:           0.1,
		Days:            100,
		Dt:              1,
	}
	series := run(t, epidemic.SIR, params)

	bundle, err := Summarize(series, epidemic.SIR, params)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if bundle.PeakPrevalence <= 1 {
		t.Errorf("Expected peak above I0, got %f", bundle.PeakPrevalence)
	}
	if bundle.PeakTime <= 0 || bundle.PeakTime >= params.Days {
		t.Errorf("Expected interior peak time, got %f", bundle.PeakTime)
	}
	if bundle.AttackRate <= 0 || bundle.AttackRate >= 1 {
		t.Errorf("Expected attack rate in (0,1), got %f", bundle.AttackRate)
	}
	if math.Abs(bundle.R0-3.0) > 1e-12 {
		t.Errorf("Expected R0=3, got %f", bundle.R0)
	}
	if bundle.Duration <= 0 || bundle.Duration > params.Days {
		t.Errorf("Expected duration in (0, horizon], got %f", bundle.Duration)
	}
	if bundle.FinalState == nil {
		t.Error("Expected final state")
	}
}

func TestSummarizeEmptySeries(t *testing.T) {
	_, err := Summarize(nil, epidemic.SIR, epidemic.Parameters{})
	if !errors.Is(err, ErrEmptySeries) {
		t.Errorf("Expected ErrEmptySeries for nil series, got %v", err)
	}

	short := &engine.TimeSeries{
		T:      []float64{0},
		U:      []map[string]float64{{"S": 1000}},
		Labels: []string{"S"},
	}
	_, err = Summarize(short, epidemic.SIR, epidemic.Parameters{})
	if !errors.Is(err, ErrEmptySeries) {
		t.Errorf("Expected ErrEmptySeries for 1-point series, got %v", err)
	}
}

func TestPeakFirstOccurrenceOnTies(t *testing.T) {
	series := &engine.TimeSeries{
		T: []float64{0, 1, 2, 3},
		U: []map[string]float64{
			{"I": 5}, {"I": 10}, {"I": 10}, {"I": 2},
		},
		Labels: []string{"I"},
	}
	bundle, err := Summarize(series, epidemic.SIR, epidemic.Parameters{Population: 100, Gamma: 0.1, Beta: 0.3})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if bundle.PeakTime != 1 {
		t.Errorf("Expected first peak at t=1, got %f", bundle.PeakTime)
	}
}

func TestDurationFallsBackToHorizon(t *testing.T) {
	series := &engine.TimeSeries{
		T: []float64{0, 1, 2},
		U: []map[string]float64{
			{"I": 5}, {"I": 6}, {"I": 7},
		},
		Labels: []string{"I"},
	}
	bundle, err := Summarize(series, epidemic.SIR, epidemic.Parameters{Population: 100, Gamma: 0.1, Beta: 0.3})
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if bundle.Duration != 2 {
		t.Errorf("Expected duration = horizon 2, got %f", bundle.Duration)
	}
}

func TestAttackRateCountsTerminalCompartments(t *testing.T) {
	series := &engine.TimeSeries{
		T: []float64{0, 1},
		U: []map[string]float64{
			{"S": 100, "I": 0, "R": 0, "V": 0},
			{"S": 40, "I": 10, "R": 30, "V": 20},
		},
		Labels: []string{"S", "I", "R", "V"},
	}
	params := epidemic.Parameters{Population: 100, Beta: 0.3, Gamma: 0.1}

	bundle, err := Summarize(series, epidemic.SIRV, params)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	// R + V over N
	if math.Abs(bundle.AttackRate-0.5) > 1e-12 {
		t.Errorf("Expected attack rate 0.5, got %f", bundle.AttackRate)
	}

	// SIR on the same series ignores V.
	bundle, err = Summarize(series, epidemic.SIR, params)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if math.Abs(bundle.AttackRate-0.3) > 1e-12 {
		t.Errorf("Expected attack rate 0.3, got %f", bundle.AttackRate)
	}
}
