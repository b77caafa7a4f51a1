package plotter

import (
	"strings"
	"testing"

	"github.com/outbreaklab/go-outbreak/engine"
	"github.com/outbreaklab/go-outbreak/ensemble"
	"github.com/outbreaklab/go-outbreak/epidemic"
)

func testSeries() *engine.TimeSeries {
	return &engine.TimeSeries{
		T: []float64{0, 1, 2, 3},
		U: []map[string]float64{
			{"S": 99, "I": 1, "R": 0},
			{"S": 90, "I": 8, "R": 2},
			{"S": 70, "I": 20, "R": 10},
			{"S": 50, "I": 15, "R": 35},
		},
		Labels: []string{"S", "I", "R"},
	}
}

func TestRenderBasics(t *testing.T) {
	p := NewSVGPlotter(800, 500)
	p.SetTitle("Test & Title")
	p.AddSeries([]float64{0, 1, 2}, []float64{1, 4, 2}, "I", "")

	svg := p.Render()

	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Error("Expected SVG document")
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Error("Expected closing svg tag")
	}
	if !strings.Contains(svg, "Test &amp; Title") {
		t.Error("Title not escaped")
	}
	if !strings.Contains(svg, `<path d="M`) {
		t.Error("Expected a series path")
	}
	if p.LastPlot == nil {
		t.Fatal("Expected LastPlot metadata")
	}
	if p.LastPlot.Xmax <= p.LastPlot.Xmin || p.LastPlot.Ymax <= p.LastPlot.Ymin {
		t.Errorf("Bad plot ranges: %+v", p.LastPlot)
	}
}

func TestRenderEmpty(t *testing.T) {
	svg := NewSVGPlotter(400, 300).Render()
	if !strings.Contains(svg, "<svg") || !strings.Contains(svg, "</svg>") {
		t.Error("Empty plot must still render a valid document")
	}
}

func TestCompartmentColors(t *testing.T) {
	p := NewSVGPlotter(800, 500)
	p.AddSeries([]float64{0, 1}, []float64{1, 2}, epidemic.Infectious, "")
	if p.Series[0].Color != "#d62728" {
		t.Errorf("Expected infectious red, got %s", p.Series[0].Color)
	}

	p.AddSeries([]float64{0, 1}, []float64{1, 2}, "custom", "")
	if p.Series[1].Color == "" {
		t.Error("Expected a palette fallback color")
	}
}

func TestPlotSeries(t *testing.T) {
	svg, data := PlotSeries(testSeries(), epidemic.SIR, nil, 800, 500, "")

	if !strings.Contains(svg, "SIR trajectory") {
		t.Error("Expected default title with variant name")
	}
	for _, name := range []string{"Susceptible", "Infectious", "Recovered"} {
		if !strings.Contains(svg, name) {
			t.Errorf("Expected legend entry %s", name)
		}
	}
	if len(data.Series) != 3 {
		t.Errorf("Expected 3 series, got %d", len(data.Series))
	}
}

func TestPlotSeriesSubset(t *testing.T) {
	svg, data := PlotSeries(testSeries(), epidemic.SIR, []string{"I"}, 800, 500, "Peak only")
	if len(data.Series) != 1 {
		t.Fatalf("Expected 1 series, got %d", len(data.Series))
	}
	if !strings.Contains(svg, "Peak only") {
		t.Error("Expected custom title")
	}
}

func TestPlotEnsemble(t *testing.T) {
	summary := &ensemble.Summary{
		Runs: 10,
		T:    []float64{0, 1, 2},
		Mean: map[string][]float64{
			"S": {99, 90, 70}, "I": {1, 8, 20}, "R": {0, 2, 10},
		},
		Lower: map[string][]float64{
			"S": {98, 85, 60}, "I": {0, 5, 15}, "R": {0, 1, 5},
		},
		Upper: map[string][]float64{
			"S": {100, 95, 80}, "I": {2, 12, 25}, "R": {0, 4, 15},
		},
		Band: 0.9,
	}

	svg, data := PlotEnsemble(summary, epidemic.SIR, nil, 800, 500, "")
	if !strings.Contains(svg, "SIR ensemble (10 runs)") {
		t.Error("Expected default ensemble title")
	}
	if !strings.Contains(svg, `fill-opacity="0.2"`) {
		t.Error("Expected shaded quantile bands")
	}
	if len(data.Series) != 3 {
		t.Errorf("Expected 3 mean series, got %d", len(data.Series))
	}
}
