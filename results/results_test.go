package results

import (
	"path/filepath"
	"testing"

	"github.com/outbreaklab/go-outbreak/engine"
	"github.com/outbreaklab/go-outbreak/epidemic"
	"github.com/outbreaklab/go-outbreak/metrics"
)

func buildResults(t *testing.T, downsampleTarget int) *Results {
	t.Helper()
	params := epidemic.Parameters{
		Population:      1000,
		InitialInfected: 1,
		Beta:            0.3,
		Gamma:           0.1,
		Days:            100,
		Dt:              1,
	}
	series, err := engine.Run(epidemic.SIR, params, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	bundle, err := metrics.Summarize(series, epidemic.SIR, params)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	return NewBuilder().
		WithModel(epidemic.SIR).
		WithSimulation(epidemic.SIR, params).
		WithRun(engine.DefaultOptions(), 0.01).
		WithSeries(series, downsampleTarget).
		WithMetrics(bundle).
		Build()
}

func TestBuilder(t *testing.T) {
	res := buildResults(t, 50)

	if res.Version != SchemaVersion {
		t.Errorf("Expected version %s, got %s", SchemaVersion, res.Version)
	}
	if res.Metadata.RunID == "" {
		t.Error("Expected a run ID")
	}
	if res.Metadata.Status != "success" {
		t.Errorf("Expected status success, got %s", res.Metadata.Status)
	}
	if res.Metadata.Mode != "deterministic" || res.Metadata.Method != "Euler" {
		t.Errorf("Run metadata wrong: %+v", res.Metadata)
	}
	if res.Model.Variant != "SIR" || len(res.Model.Compartments) != 3 {
		t.Errorf("Model wrong: %+v", res.Model)
	}
	if res.Simulation.Rates["beta"] != 0.3 || res.Simulation.Rates["gamma"] != 0.1 {
		t.Errorf("Rates wrong: %v", res.Simulation.Rates)
	}
	if res.Results.Summary.Points != 101 {
		t.Errorf("Expected 101 points, got %d", res.Results.Summary.Points)
	}
	if res.Metrics == nil || res.Metrics.R0 != 3 {
		t.Errorf("Metrics missing or wrong: %+v", res.Metrics)
	}
}

func TestDownsample(t *testing.T) {
	res := buildResults(t, 50)

	down := res.Results.Timeseries.Time.Downsampled
	if len(down) != 50 {
		t.Fatalf("Expected 50 downsampled points, got %d", len(down))
	}
	full := res.Results.Timeseries.Time.Full
	if down[0] != full[0] || down[len(down)-1] != full[len(full)-1] {
		t.Error("Downsampled series must keep first and last point")
	}

	for label, data := range res.Results.Timeseries.Variables {
		if len(data.Downsampled) != 50 {
			t.Errorf("%s: expected 50 downsampled values, got %d", label, len(data.Downsampled))
		}
	}
}

func TestDownsampleSkippedWhenSmall(t *testing.T) {
	res := buildResults(t, 500)
	down := res.Results.Timeseries.Time.Downsampled
	if len(down) != 101 {
		t.Errorf("Expected downsampling skipped for short series, got %d points", len(down))
	}
}

func TestWithError(t *testing.T) {
	res := NewBuilder().WithError(errFake{}, "unstable").Build()
	if res.Metadata.Status != "unstable" {
		t.Errorf("Expected status unstable, got %s", res.Metadata.Status)
	}
	if res.Metadata.Error == "" {
		t.Error("Expected error message recorded")
	}
}

type errFake struct{}

func (errFake) Error() string { return "fake" }

func TestJSONRoundTrip(t *testing.T) {
	res := buildResults(t, 50)
	path := filepath.Join(t.TempDir(), "results.json")

	if err := WriteJSON(res, path); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	loaded, err := ReadJSON(path)
	if err != nil {
		t.Fatalf("ReadJSON failed: %v", err)
	}

	if loaded.Metadata.RunID != res.Metadata.RunID {
		t.Errorf("Run ID changed: %s vs %s", loaded.Metadata.RunID, res.Metadata.RunID)
	}
	if loaded.Results.Summary.Points != res.Results.Summary.Points {
		t.Errorf("Points changed: %d vs %d", loaded.Results.Summary.Points, res.Results.Summary.Points)
	}
	if loaded.Metrics == nil || loaded.Metrics.R0 != res.Metrics.R0 {
		t.Error("Metrics lost in round trip")
	}
}
