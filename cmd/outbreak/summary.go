package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/outbreaklab/go-outbreak/epidemic"
	"github.com/outbreaklab/go-outbreak/results"
)

func summary(args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: outbreak summary <results.json>

Display quick summary of a saved results document.

Examples:
  outbreak summary results.json
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("results file required")
	}

	res, err := results.ReadJSON(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("read results: %w", err)
	}

	fmt.Printf("Model: %s\n", res.Model.Variant)
	fmt.Printf("Run: %s\n", res.Metadata.RunID)
	fmt.Printf("Status: %s\n", res.Metadata.Status)

	if res.Metadata.Error != "" {
		fmt.Printf("Error: %s\n", res.Metadata.Error)
	}

	if res.Metadata.Mode == "stochastic" {
		fmt.Printf("Mode: stochastic (seed %d)\n", res.Metadata.Seed)
	} else {
		fmt.Printf("Mode: deterministic (%s, %.3fs)\n", res.Metadata.Method, res.Metadata.ComputeTime)
	}
	fmt.Printf("Horizon: %.1f days, dt=%.2f (%d points)\n",
		res.Simulation.Days, res.Simulation.Dt, res.Results.Summary.Points)

	fmt.Println("\nFinal state:")
	for _, label := range res.Model.Compartments {
		fmt.Printf("  %-12s %.2f\n", epidemic.CompartmentName(label), res.Results.Summary.FinalState[label])
	}

	if res.Metrics != nil {
		fmt.Println("\nMetrics:")
		fmt.Printf("  Peak prevalence: %.1f at t=%.1f\n", res.Metrics.PeakPrevalence, res.Metrics.PeakTime)
		fmt.Printf("  Attack rate:     %.3f\n", res.Metrics.AttackRate)
		fmt.Printf("  R0:              %.2f\n", res.Metrics.R0)
		fmt.Printf("  Duration:        %.1f days\n", res.Metrics.Duration)
	}

	return nil
}
