package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/outbreaklab/go-outbreak/engine"
	"github.com/outbreaklab/go-outbreak/metrics"
	"github.com/outbreaklab/go-outbreak/results"
	"github.com/outbreaklab/go-outbreak/solver"
	"github.com/outbreaklab/go-outbreak/store"
	"github.com/outbreaklab/go-outbreak/validate"
)

func simulate(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	params := registerParamFlags(fs)
	mode := fs.String("mode", "deterministic", "Simulation mode: deterministic or stochastic")
	seed := fs.Uint64("seed", 0, "Random seed (stochastic mode)")
	method := fs.String("method", "euler", "Solver method: euler, heun, midpoint, rk4")
	output := fs.String("output", "", "Output file for results (required)")
	downsample := fs.Int("downsample", 500, "Target number of points for downsampled output")
	dbPath := fs.String("store", "", "SQLite database to archive the run in (optional)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: outbreak simulate [options]

Run one simulation and write the results document as JSON.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Deterministic SIR run
  outbreak simulate --model SIR --beta 0.3 --gamma 0.1 --output results.json

  # Stochastic SEIRV run with a fixed seed
  outbreak simulate --model SEIRV --mode stochastic --seed 42 --output results.json

  # Load initial compartments from a CSV dataset
  outbreak simulate --model SEIR --initial-csv initial.csv --output results.json
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *output == "" {
		fs.Usage()
		return fmt.Errorf("--output required")
	}

	in, cfg, err := params.buildInput(fs)
	if err != nil {
		return err
	}

	variant, p, err := validate.New(cfg).Validate(in)
	if err != nil {
		return fmt.Errorf("validate input: %w", err)
	}

	opts := engine.DefaultOptions()
	switch *mode {
	case "deterministic":
		opts.Method = solver.ByName(*method)
		if opts.Method == nil {
			return fmt.Errorf("unknown method: %s", *method)
		}
	case "stochastic":
		opts.Mode = engine.Stochastic
		opts.Seed = *seed
	default:
		return fmt.Errorf("unknown mode: %s", *mode)
	}

	start := time.Now()
	series, runErr := engine.Run(variant, p, opts)
	elapsed := time.Since(start).Seconds()

	builder := results.NewBuilder().
		WithModel(variant).
		WithSimulation(variant, p).
		WithRun(opts, elapsed)

	if series != nil {
		builder.WithSeries(series, *downsample)
		if bundle, err := metrics.Summarize(series, variant, p); err == nil {
			builder.WithMetrics(bundle)
		}
	}
	if runErr != nil {
		status := "error"
		if errors.Is(runErr, engine.ErrNumericalInstability) {
			status = "unstable"
		}
		builder.WithError(runErr, status)
	}

	res := builder.Build()

	if err := results.WriteJSON(res, *output); err != nil {
		return fmt.Errorf("write results: %w", err)
	}

	if *dbPath != "" {
		st, err := store.New(*dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		if err := st.SaveRun(res); err != nil {
			return fmt.Errorf("archive run: %w", err)
		}
	}

	// Summary goes to stderr so it doesn't interfere with piping
	fmt.Fprintf(os.Stderr, "Simulation complete\n")
	fmt.Fprintf(os.Stderr, "  Model: %s (%s)\n", variant, res.Metadata.Mode)
	fmt.Fprintf(os.Stderr, "  Status: %s\n", res.Metadata.Status)
	fmt.Fprintf(os.Stderr, "  Points: %d\n", res.Results.Summary.Points)
	if res.Metrics != nil {
		fmt.Fprintf(os.Stderr, "  Peak: %.1f at t=%.1f\n", res.Metrics.PeakPrevalence, res.Metrics.PeakTime)
		fmt.Fprintf(os.Stderr, "  Attack rate: %.3f\n", res.Metrics.AttackRate)
	}
	fmt.Fprintf(os.Stderr, "  Compute time: %.3fs\n", elapsed)
	fmt.Fprintf(os.Stderr, "  Output: %s\n", *output)

	if runErr != nil {
		return fmt.Errorf("simulation: %w", runErr)
	}
	return nil
}
