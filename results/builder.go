package results

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/outbreaklab/go-outbreak/engine"
	"github.com/outbreaklab/go-outbreak/epidemic"
	"github.com/outbreaklab/go-outbreak/metrics"
)

// Builder assembles Results from a finished run.
type Builder struct {
	results Results
}

// NewBuilder starts a result document with a fresh run ID.
func NewBuilder() *Builder {
	return &Builder{
		results: Results{
			Version: SchemaVersion,
			Metadata: Metadata{
				RunID:     uuid.New().String(),
				Timestamp: time.Now(),
			},
		},
	}
}

// WithModel records the simulated variant.
func (b *Builder) WithModel(variant epidemic.Variant) *Builder {
	b.results.Model = Model{
		Variant:      variant.String(),
		Compartments: variant.Compartments(),
	}
	return b
}

// WithSimulation records the parameters used.
func (b *Builder) WithSimulation(variant epidemic.Variant, params epidemic.Parameters) *Builder {
	b.results.Simulation = Simulation{
		Population:   params.Population,
		Rates:        params.Rates(variant),
		InitialState: params.InitialState(variant),
		Days:         params.Days,
		Dt:           params.Dt,
	}
	return b
}

// WithRun records mode, method and seed.
func (b *Builder) WithRun(opts *engine.Options, computeTime float64) *Builder {
	if opts == nil {
		opts = engine.DefaultOptions()
	}
	b.results.Metadata.Mode = opts.Mode.String()
	if opts.Mode == engine.Deterministic && opts.Method != nil {
		b.results.Metadata.Method = opts.Method.Name
	}
	if opts.Mode == engine.Stochastic {
		b.results.Metadata.Seed = opts.Seed
	}
	b.results.Metadata.ComputeTime = computeTime
	return b
}

// WithSeries processes the time series, keeping the full trajectory and a
// downsampled copy of about downsampleTarget points for plotting.
func (b *Builder) WithSeries(series *engine.TimeSeries, downsampleTarget int) *Builder {
	b.results.Metadata.Status = "success"

	finalState := series.GetFinalState()
	b.results.Results.Summary = Summary{
		Points:     series.Len(),
		FinalTime:  series.T[len(series.T)-1],
		FinalState: finalState,
	}

	timeFull := series.T
	timeDown := downsample(timeFull, downsampleTarget)

	b.results.Results.Timeseries = Timeseries{
		Time: TimeData{
			Full:        timeFull,
			Downsampled: timeDown,
		},
		Variables: make(map[string]SeriesData, len(series.Labels)),
	}

	for _, label := range series.Labels {
		values := series.GetVariable(label)
		b.results.Results.Timeseries.Variables[label] = SeriesData{
			Full:        values,
			Downsampled: downsampleAligned(timeFull, values, timeDown),
		}
	}
	return b
}

// WithMetrics attaches the metric bundle.
func (b *Builder) WithMetrics(bundle *metrics.Bundle) *Builder {
	b.results.Metrics = bundle
	return b
}

// WithError marks the run failed or unstable. A partial series recorded
// via WithSeries stays in place so callers can display partial results.
func (b *Builder) WithError(err error, status string) *Builder {
	b.results.Metadata.Status = status
	b.results.Metadata.Error = err.Error()
	return b
}

// Build returns the assembled Results.
func (b *Builder) Build() *Results {
	return &b.results
}

// downsample reduces data to approximately targetPoints, always keeping
// the first and last point.
func downsample(data []float64, targetPoints int) []float64 {
	if targetPoints < 2 || len(data) <= targetPoints {
		return data
	}

	result := make([]float64, targetPoints)
	result[0] = data[0]
	result[targetPoints-1] = data[len(data)-1]

	step := float64(len(data)-1) / float64(targetPoints-1)
	for i := 1; i < targetPoints-1; i++ {
		idx := int(math.Round(float64(i) * step))
		result[i] = data[idx]
	}
	return result
}

// downsampleAligned picks the values whose time points are closest to the
// downsampled time vector.
func downsampleAligned(timeFull, values, timeDown []float64) []float64 {
	result := make([]float64, len(timeDown))
	for i, target := range timeDown {
		result[i] = values[closestIndex(timeFull, target)]
	}
	return result
}

func closestIndex(data []float64, target float64) int {
	if len(data) == 0 {
		return 0
	}
	minDist := math.Abs(data[0] - target)
	minIdx := 0
	for i := 1; i < len(data); i++ {
		if dist := math.Abs(data[i] - target); dist < minDist {
			minDist = dist
			minIdx = i
		}
	}
	return minIdx
}
