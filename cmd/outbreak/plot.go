package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/outbreaklab/go-outbreak/epidemic"
	"github.com/outbreaklab/go-outbreak/plotter"
	"github.com/outbreaklab/go-outbreak/results"
)

func plot(args []string) error {
	fs := flag.NewFlagSet("plot", flag.ExitOnError)
	output := fs.String("output", "", "Output SVG file (required)")
	width := fs.Int("width", 800, "Plot width in pixels")
	height := fs.Int("height", 500, "Plot height in pixels")
	title := fs.String("title", "", "Plot title (default: model variant)")
	compartments := fs.String("compartments", "", "Compartments to plot (comma-separated labels, default: all)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: outbreak plot <results.json> [options]

Generate an SVG plot from a saved results document.

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Examples:
  # Plot all compartments
  outbreak plot results.json --output plot.svg

  # Only infectious and recovered
  outbreak plot results.json --output plot.svg --compartments "I,R"
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return fmt.Errorf("results file required")
	}
	if *output == "" {
		fs.Usage()
		return fmt.Errorf("--output required")
	}

	res, err := results.ReadJSON(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("read results: %w", err)
	}

	labels := res.Model.Compartments
	if *compartments != "" {
		labels = strings.Split(*compartments, ",")
		for i := range labels {
			labels[i] = strings.TrimSpace(labels[i])
		}
	}

	plotTitle := *title
	if plotTitle == "" {
		plotTitle = res.Model.Variant + " trajectory"
	}

	p := plotter.NewSVGPlotter(float64(*width), float64(*height))
	p.SetTitle(plotTitle)

	t := res.Results.Timeseries.Time.Downsampled
	for _, label := range labels {
		data, ok := res.Results.Timeseries.Variables[label]
		if !ok {
			return fmt.Errorf("compartment not in results: %s", label)
		}
		p.AddSeries(t, data.Downsampled, epidemic.CompartmentName(label), plotter.CompartmentColor(label))
	}

	svg := p.Render()
	if err := os.WriteFile(*output, []byte(svg), 0644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Plot written to %s\n", *output)
	return nil
}
