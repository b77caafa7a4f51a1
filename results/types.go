// Package results defines the structured output format for simulation
// runs: run metadata, the parameters used, the (optionally downsampled)
// time series, and the derived metrics.
package results

import (
	"time"

	"github.com/outbreaklab/go-outbreak/metrics"
)

const SchemaVersion = "1.0.0"

// Results contains complete simulation output for one run.
type Results struct {
	Version    string          `json:"version"`
	Metadata   Metadata        `json:"metadata"`
	Model      Model           `json:"model"`
	Simulation Simulation      `json:"simulation"`
	Results    Data            `json:"results"`
	Metrics    *metrics.Bundle `json:"metrics,omitempty"`
}

// Metadata contains run execution information.
type Metadata struct {
	RunID       string    `json:"runId"`
	Timestamp   time.Time `json:"timestamp"`
	Mode        string    `json:"mode"` // deterministic, stochastic
	Method      string    `json:"method,omitempty"`
	Seed        uint64    `json:"seed,omitempty"`
	Status      string    `json:"status"` // success, unstable, error
	Error       string    `json:"error,omitempty"`
	ComputeTime float64   `json:"computeTime"` // seconds
}

// Model summarizes the variant simulated.
type Model struct {
	Variant      string   `json:"variant"`
	Compartments []string `json:"compartments"`
}

// Simulation contains the parameters used.
type Simulation struct {
	Population   float64            `json:"population"`
	Rates        map[string]float64 `json:"rates"`
	InitialState map[string]float64 `json:"initialState"`
	Days         float64            `json:"days"`
	Dt           float64            `json:"dt"`
}

// Data contains the run output.
type Data struct {
	Summary    Summary    `json:"summary"`
	Timeseries Timeseries `json:"timeseries"`
}

// Summary provides a quick overview.
type Summary struct {
	Points     int                `json:"points"`
	FinalTime  float64            `json:"finalTime"`
	FinalState map[string]float64 `json:"finalState"`
}

// Timeseries holds the trajectory, full and downsampled for plotting.
type Timeseries struct {
	Time      TimeData              `json:"time"`
	Variables map[string]SeriesData `json:"variables"`
}

// TimeData holds time vectors at both resolutions.
type TimeData struct {
	Full        []float64 `json:"full,omitempty"`
	Downsampled []float64 `json:"downsampled"`
}

// SeriesData holds compartment values at both resolutions.
type SeriesData struct {
	Full        []float64 `json:"full,omitempty"`
	Downsampled []float64 `json:"downsampled"`
}
