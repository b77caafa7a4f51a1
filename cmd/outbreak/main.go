package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "simulate":
		if err := simulate(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "ensemble":
		if err := runEnsemble(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "sweep":
		if err := sweep(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "plot":
		if err := plot(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "summary":
		if err := summary(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "runs":
		if err := runs(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "serve":
		if err := serve(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "help", "-h", "--help":
		printUsage()
	case "version", "-v", "--version":
		fmt.Println("outbreak version 1.0.0")
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`outbreak - compartmental epidemic simulation tool

Usage:
  outbreak <command> [options]

Commands:
  simulate   Run a single simulation (deterministic or stochastic)
  ensemble   Run many stochastic replicates and aggregate them
  sweep      Sweep a rate parameter and score each value
  plot       Generate SVG plot from saved results
  summary    Display quick summary of saved results
  runs       List and inspect runs stored in the archive
  serve      Start the HTTP API server
  help       Show this help message
  version    Show version information

Examples:
  # Deterministic SIR run
  outbreak simulate --model SIR --beta 0.3 --gamma 0.1 --days 100 --output results.json

  # Stochastic SEIR run with a fixed seed
  outbreak simulate --model SEIR --mode stochastic --seed 42 --output results.json

  # 500-replicate ensemble with a 90% band
  outbreak ensemble --model SIR --runs 500 --output ensemble.json

  # Sweep beta and rank by peak prevalence
  outbreak sweep --model SIR --rate "beta=0.1:0.5:9" --objective peak

  # Plot saved results
  outbreak plot results.json --output plot.svg

For command-specific help, run:
  outbreak <command> --help`)
}
