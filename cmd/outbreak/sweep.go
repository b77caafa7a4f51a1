package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/outbreaklab/go-outbreak/epidemic"
	"github.com/outbreaklab/go-outbreak/sensitivity"
	"github.com/outbreaklab/go-outbreak/validate"
)

func sweep(args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ExitOnError)
	params := registerParamFlags(fs)
	rateSpec := fs.String("rate", "", "Rate to sweep: 'name=min:max:count' (required)")
	objective := fs.String("objective", "peak", "Score: peak, attack, or final-infected")
	output := fs.String("output", "", "Output JSON file (optional, prints table otherwise)")
	gradients := fs.Bool("gradients", false, "Also print score gradients for all rates")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: outbreak sweep [options]

Sweep a single rate parameter over a range and score each value,
plus a knockout ranking of all rates.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Objectives:
  peak            Peak infectious count over the horizon
  attack          Fraction of the population no longer susceptible
  final-infected  Infectious count at the end of the horizon

Examples:
  # How does the peak move with beta?
  outbreak sweep --model SIR --rate "beta=0.1:0.5:9" --objective peak

  # Vaccination impact on attack rate, saved as JSON
  outbreak sweep --model SIRV --rate "nu=0:0.2:11" --objective attack --output sweep.json
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *rateSpec == "" {
		fs.Usage()
		return fmt.Errorf("--rate required")
	}

	name, min, max, count, err := parseSweepSpec(*rateSpec)
	if err != nil {
		return fmt.Errorf("parse --rate: %w", err)
	}

	in, cfg, err := params.buildInput(fs)
	if err != nil {
		return err
	}

	variant, p, err := validate.New(cfg).Validate(in)
	if err != nil {
		return fmt.Errorf("validate input: %w", err)
	}

	known := false
	for _, rn := range epidemic.RateNames(variant) {
		if rn == name {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("rate %q does not act on %s (choose from %s)",
			name, variant, strings.Join(epidemic.RateNames(variant), ", "))
	}

	scorer, err := buildScorer(*objective, p.Population)
	if err != nil {
		return err
	}

	analyzer := sensitivity.NewAnalyzer(variant, p, scorer)
	result := analyzer.SweepRateRange(name, min, max, count)
	ranking := analyzer.AnalyzeRatesParallel()

	if *output != "" {
		doc := map[string]any{
			"sweep":   result,
			"ranking": ranking,
		}
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal sweep: %w", err)
		}
		if err := os.WriteFile(*output, data, 0644); err != nil {
			return fmt.Errorf("write sweep: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Sweep written to %s\n", *output)
		return nil
	}

	fmt.Printf("Sweep of %s (%s, objective %s):\n", name, variant, *objective)
	for i, v := range result.Values {
		fmt.Printf("  %s=%-8.4f score=%.3f\n", name, v, result.Scores[i])
	}
	fmt.Printf("Best:  %s=%.4f score=%.3f\n", name, result.Best.Value, result.Best.Score)
	fmt.Printf("Worst: %s=%.4f score=%.3f\n", name, result.Worst.Value, result.Worst.Score)

	fmt.Printf("\nKnockout ranking (baseline %.3f):\n", ranking.Baseline)
	for _, rp := range ranking.Ranking {
		fmt.Printf("  %-6s impact=%+.3f\n", rp.Name, rp.Impact)
	}

	if *gradients {
		fmt.Println("\nGradients:")
		for rate, g := range analyzer.AllGradientsParallel(0) {
			fmt.Printf("  d(score)/d(%s) = %+.3f\n", rate, g)
		}
	}

	return nil
}

func buildScorer(objective string, population float64) (sensitivity.Scorer, error) {
	switch objective {
	case "peak":
		return sensitivity.PeakScorer(epidemic.Infectious), nil
	case "attack":
		return sensitivity.AttackRateScorer(population), nil
	case "final-infected":
		return sensitivity.CompartmentScorer(epidemic.Infectious), nil
	default:
		return nil, fmt.Errorf("unknown objective: %s", objective)
	}
}

// parseSweepSpec parses 'name=min:max:count'.
func parseSweepSpec(spec string) (name string, min, max float64, count int, err error) {
	eq := strings.SplitN(spec, "=", 2)
	if len(eq) != 2 {
		return "", 0, 0, 0, fmt.Errorf("expected name=min:max:count, got %q", spec)
	}
	name = strings.TrimSpace(eq[0])

	parts := strings.Split(eq[1], ":")
	if len(parts) != 3 {
		return "", 0, 0, 0, fmt.Errorf("expected min:max:count in %q", spec)
	}
	if min, err = strconv.ParseFloat(parts[0], 64); err != nil {
		return "", 0, 0, 0, fmt.Errorf("bad min %q: %w", parts[0], err)
	}
	if max, err = strconv.ParseFloat(parts[1], 64); err != nil {
		return "", 0, 0, 0, fmt.Errorf("bad max %q: %w", parts[1], err)
	}
	if count, err = strconv.Atoi(parts[2]); err != nil {
		return "", 0, 0, 0, fmt.Errorf("bad count %q: %w", parts[2], err)
	}
	if count < 2 {
		return "", 0, 0, 0, fmt.Errorf("count must be at least 2")
	}
	return name, min, max, count, nil
}
