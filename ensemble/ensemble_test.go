package ensemble

import (
	"sync/atomic"
	"testing"

	"github.com/outbreaklab/go-outbreak/epidemic"
)

func testParams() epidemic.Parameters {
	return epidemic.Parameters{
		Population:      500,
		InitialInfected: 5,
		Beta:            0.3,
		Gamma:           0.1,
		Days:            60,
		Dt:              1,
	}
}

func TestRunAggregates(t *testing.T) {
	summary, err := Run(epidemic.SIR, testParams(), &Options{Runs: 20, BaseSeed: 1, Band: 0.9})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Runs != 20 {
		t.Errorf("Expected 20 runs, got %d", summary.Runs)
	}
	if len(summary.T) != 61 {
		t.Fatalf("Expected 61 time points, got %d", len(summary.T))
	}
	if len(summary.Bundles) != 20 {
		t.Errorf("Expected 20 metric bundles, got %d", len(summary.Bundles))
	}

	for _, label := range epidemic.SIR.Compartments() {
		mean := summary.Mean[label]
		lower := summary.Lower[label]
		upper := summary.Upper[label]
		if len(mean) != 61 || len(lower) != 61 || len(upper) != 61 {
			t.Fatalf("%s: aggregate length mismatch", label)
		}
		for i := range mean {
			if lower[i] > upper[i]+1e-9 {
				t.Fatalf("%s point %d: lower %f above upper %f", label, i, lower[i], upper[i])
			}
			if mean[i] < lower[i]-1e-9 || mean[i] > upper[i]+1e-9 {
				// Mean can leave a narrow band in heavy-tailed samples,
				// but not with 20 replicates of a tame SIR run.
				t.Fatalf("%s point %d: mean %f outside [%f, %f]", label, i, mean[i], lower[i], upper[i])
			}
		}
	}
}

func TestRunReproducible(t *testing.T) {
	opts := &Options{Runs: 10, BaseSeed: 42}
	a, err := Run(epidemic.SIR, testParams(), opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	b, err := Run(epidemic.SIR, testParams(), opts)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for i := range a.T {
		if a.Mean["I"][i] != b.Mean["I"][i] {
			t.Fatalf("Point %d: mean I differs between identical ensembles", i)
		}
	}
}

func TestRunProgress(t *testing.T) {
	var calls int64
	_, err := Run(epidemic.SIR, testParams(), &Options{
		Runs:       8,
		OnProgress: func() { atomic.AddInt64(&calls, 1) },
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if calls != 8 {
		t.Errorf("Expected 8 progress calls, got %d", calls)
	}
}

func TestMeanMetrics(t *testing.T) {
	summary, err := Run(epidemic.SIR, testParams(), &Options{Runs: 15, BaseSeed: 3})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if peak := summary.MeanPeak(); peak <= 0 {
		t.Errorf("Expected positive mean peak, got %f", peak)
	}
	rate := summary.MeanAttackRate()
	if rate <= 0 || rate > 1 {
		t.Errorf("Expected mean attack rate in (0,1], got %f", rate)
	}
}

func TestDefaultsApplied(t *testing.T) {
	summary, err := Run(epidemic.SIR, testParams(), &Options{Runs: 5, Band: -1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Band != 0.9 {
		t.Errorf("Expected band defaulted to 0.9, got %f", summary.Band)
	}
}
