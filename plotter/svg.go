// Package plotter renders epidemic trajectories as standalone SVG
// documents: per-compartment curves, optional quantile bands for
// ensembles, axes, grid and legend.
package plotter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/outbreaklab/go-outbreak/engine"
	"github.com/outbreaklab/go-outbreak/ensemble"
	"github.com/outbreaklab/go-outbreak/epidemic"
)

// Compartment colors, shared across every plot so S is always blue and
// I always red regardless of variant.
var compartmentColors = map[string]string{
	epidemic.Susceptible: "#1f77b4",
	epidemic.Exposed:     "#ff7f0e",
	epidemic.Infectious:  "#d62728",
	epidemic.Recovered:   "#2ca02c",
	epidemic.Vaccinated:  "#9467bd",
	epidemic.Deceased:    "#7f7f7f",
}

// fallback palette for series without a compartment label
var palette = []string{"#e41a1c", "#377eb8", "#4daf4a", "#984ea3", "#ff7f00", "#a65628", "#f781bf"}

// Series represents a single data series to plot.
type Series struct {
	X     []float64
	Y     []float64
	Label string
	Color string
}

// Band is a shaded region between two curves, used for ensemble
// quantile envelopes.
type Band struct {
	X     []float64
	Lower []float64
	Upper []float64
	Color string
}

// PlotData contains metadata about the last rendered plot.
type PlotData struct {
	PlotID     string
	Margin     map[string]float64
	PlotWidth  float64
	PlotHeight float64
	Xmin       float64
	Xmax       float64
	Ymin       float64
	Ymax       float64
	Series     []Series
}

// SVGPlotter creates SVG plots with customizable styling.
type SVGPlotter struct {
	Width      float64
	Height     float64
	Margin     map[string]float64
	PlotWidth  float64
	PlotHeight float64
	Title      string
	XLabel     string
	YLabel     string
	Series     []Series
	Bands      []Band
	LastPlot   *PlotData
}

// NewSVGPlotter creates a new SVG plotter with the given dimensions.
func NewSVGPlotter(width, height float64) *SVGPlotter {
	margin := map[string]float64{"top": 40, "right": 30, "bottom": 50, "left": 60}
	pw := width - margin["left"] - margin["right"]
	ph := height - margin["top"] - margin["bottom"]
	return &SVGPlotter{
		Width:      width,
		Height:     height,
		Margin:     margin,
		PlotWidth:  pw,
		PlotHeight: ph,
		XLabel:     "Days",
		YLabel:     "Individuals",
	}
}

// SetTitle sets the plot title.
func (p *SVGPlotter) SetTitle(t string) *SVGPlotter {
	p.Title = t
	return p
}

// SetXLabel sets the X-axis label.
func (p *SVGPlotter) SetXLabel(s string) *SVGPlotter {
	p.XLabel = s
	return p
}

// SetYLabel sets the Y-axis label.
func (p *SVGPlotter) SetYLabel(s string) *SVGPlotter {
	p.YLabel = s
	return p
}

// AddSeries adds a data series to the plot. An empty color picks the
// compartment color for single-letter labels, then a default palette.
func (p *SVGPlotter) AddSeries(x, y []float64, label, color string) *SVGPlotter {
	if color == "" {
		if c, ok := compartmentColors[label]; ok {
			color = c
		} else {
			color = palette[len(p.Series)%len(palette)]
		}
	}
	p.Series = append(p.Series, Series{X: x, Y: y, Label: label, Color: color})
	return p
}

// AddBand adds a shaded region between lower and upper curves.
func (p *SVGPlotter) AddBand(x, lower, upper []float64, color string) *SVGPlotter {
	if color == "" {
		color = palette[len(p.Bands)%len(palette)]
	}
	p.Bands = append(p.Bands, Band{X: x, Lower: lower, Upper: upper, Color: color})
	return p
}

// Render generates the SVG string and stores metadata in LastPlot.
func (p *SVGPlotter) Render() string {
	xmin := math.Inf(1)
	xmax := math.Inf(-1)
	ymin := math.Inf(1)
	ymax := math.Inf(-1)

	observe := func(x, y float64) {
		if x < xmin {
			xmin = x
		}
		if x > xmax {
			xmax = x
		}
		if y < ymin {
			ymin = y
		}
		if y > ymax {
			ymax = y
		}
	}
	for _, s := range p.Series {
		for i := range s.X {
			observe(s.X[i], s.Y[i])
		}
	}
	for _, b := range p.Bands {
		for i := range b.X {
			observe(b.X[i], b.Lower[i])
			observe(b.X[i], b.Upper[i])
		}
	}

	if math.IsInf(xmin, 1) || math.IsInf(xmax, -1) {
		xmin = 0
		xmax = 1
	}
	if math.IsInf(ymin, 1) || math.IsInf(ymax, -1) {
		ymin = 0
		ymax = 1
	}

	xrange := xmax - xmin
	if xrange == 0 {
		xrange = 1
	}
	yrange := ymax - ymin
	if yrange == 0 {
		yrange = 1
	}

	xmin -= xrange * 0.05
	xmax += xrange * 0.05
	ymin -= yrange * 0.1
	ymax += yrange * 0.1

	sx := func(x float64) float64 {
		return p.Margin["left"] + ((x-xmin)/(xmax-xmin))*p.PlotWidth
	}
	sy := func(y float64) float64 {
		return p.Margin["top"] + p.PlotHeight - ((y-ymin)/(ymax-ymin))*p.PlotHeight
	}

	plotID := "plot_" + strconv.FormatInt(int64(math.Round(1000000*math.Abs(xmin+xmax+ymin+ymax))), 10)

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" id="%s">`,
		int(p.Width), int(p.Height), plotID))

	// Background rectangle for visibility on dark themes
	sb.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="#f8f9fa" rx="8"/>`,
		int(p.Width), int(p.Height)))

	if p.Title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%f" y="25" text-anchor="middle" font-family="Arial, sans-serif" font-size="16" font-weight="bold">%s</text>`,
			p.Width/2, escape(p.Title)))
	}

	// Axes
	sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#333" stroke-width="2"/>`,
		p.Margin["left"], p.Margin["top"], p.Margin["left"], p.Margin["top"]+p.PlotHeight))
	sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#333" stroke-width="2"/>`,
		p.Margin["left"], p.Margin["top"]+p.PlotHeight, p.Margin["left"]+p.PlotWidth, p.Margin["top"]+p.PlotHeight))

	// Axis labels
	sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" text-anchor="middle" font-family="Arial, sans-serif" font-size="12">%s</text>`,
		p.Margin["left"]+p.PlotWidth/2, p.Height-10, escape(p.XLabel)))
	sb.WriteString(fmt.Sprintf(`<text x="15" y="%f" text-anchor="middle" font-family="Arial, sans-serif" font-size="12" transform="rotate(-90, 15, %f)">%s</text>`,
		p.Margin["top"]+p.PlotHeight/2, p.Margin["top"]+p.PlotHeight/2, escape(p.YLabel)))

	// Grid and ticks
	numXTicks := 5
	numYTicks := 5
	for i := 0; i <= numXTicks; i++ {
		x := xmin + (xmax-xmin)*float64(i)/float64(numXTicks)
		px := sx(x)
		sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#333" stroke-width="1"/>`,
			px, p.Margin["top"]+p.PlotHeight, px, p.Margin["top"]+p.PlotHeight+5))
		sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" text-anchor="middle" font-family="Arial, sans-serif" font-size="10">%.1f</text>`,
			px, p.Margin["top"]+p.PlotHeight+20, x))
		sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#ddd" stroke-width="0.5"/>`,
			px, p.Margin["top"], px, p.Margin["top"]+p.PlotHeight))
	}
	for i := 0; i <= numYTicks; i++ {
		y := ymin + (ymax-ymin)*float64(i)/float64(numYTicks)
		py := sy(y)
		sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#333" stroke-width="1"/>`,
			p.Margin["left"]-5, py, p.Margin["left"], py))
		sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" text-anchor="end" font-family="Arial, sans-serif" font-size="10">%.1f</text>`,
			p.Margin["left"]-10, py+4, y))
		sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="#ddd" stroke-width="0.5"/>`,
			p.Margin["left"], py, p.Margin["left"]+p.PlotWidth, py))
	}

	// Bands go under the lines
	for _, b := range p.Bands {
		if len(b.X) == 0 {
			continue
		}
		path := strings.Builder{}
		for i := range b.X {
			px := sx(b.X[i])
			py := sy(b.Upper[i])
			if i == 0 {
				path.WriteString(fmt.Sprintf("M%f,%f", px, py))
			} else {
				path.WriteString(fmt.Sprintf(" L%f,%f", px, py))
			}
		}
		for i := len(b.X) - 1; i >= 0; i-- {
			path.WriteString(fmt.Sprintf(" L%f,%f", sx(b.X[i]), sy(b.Lower[i])))
		}
		path.WriteString(" Z")
		sb.WriteString(fmt.Sprintf(`<path d="%s" fill="%s" fill-opacity="0.2" stroke="none"/>`,
			path.String(), b.Color))
	}

	// Plot series
	for _, s := range p.Series {
		if len(s.X) == 0 {
			continue
		}
		path := strings.Builder{}
		for i := range s.X {
			px := sx(s.X[i])
			py := sy(s.Y[i])
			if i == 0 {
				path.WriteString(fmt.Sprintf("M%f,%f", px, py))
			} else {
				path.WriteString(fmt.Sprintf(" L%f,%f", px, py))
			}
		}
		sb.WriteString(fmt.Sprintf(`<path d="%s" stroke="%s" stroke-width="2" fill="none"/>`,
			path.String(), s.Color))
	}

	// Legend
	hasLabel := false
	for _, s := range p.Series {
		if s.Label != "" {
			hasLabel = true
			break
		}
	}
	if hasLabel {
		legendY := p.Margin["top"] + 10
		for _, s := range p.Series {
			if s.Label == "" {
				continue
			}
			x1 := p.Width - p.Margin["right"] - 110
			x2 := p.Width - p.Margin["right"] - 90
			sb.WriteString(fmt.Sprintf(`<line x1="%f" y1="%f" x2="%f" y2="%f" stroke="%s" stroke-width="2"/>`,
				x1, legendY, x2, legendY, s.Color))
			sb.WriteString(fmt.Sprintf(`<text x="%f" y="%f" font-family="Arial, sans-serif" font-size="10">%s</text>`,
				x2+5, legendY+4, escape(s.Label)))
			legendY += 20
		}
	}

	sb.WriteString(`</svg>`)

	p.LastPlot = &PlotData{
		PlotID:     plotID,
		Margin:     p.Margin,
		PlotWidth:  p.PlotWidth,
		PlotHeight: p.PlotHeight,
		Xmin:       xmin,
		Xmax:       xmax,
		Ymin:       ymin,
		Ymax:       ymax,
		Series:     p.Series,
	}

	return sb.String()
}

// PlotSeries plots a simulated trajectory. If compartments is nil, all
// of the variant's compartments are plotted in canonical order with the
// shared color scheme and full display names in the legend.
func PlotSeries(ts *engine.TimeSeries, variant epidemic.Variant, compartments []string, width, height float64, title string) (string, *PlotData) {
	p := NewSVGPlotter(width, height)
	if title == "" {
		title = variant.String() + " trajectory"
	}
	p.SetTitle(title)

	labels := compartments
	if labels == nil {
		labels = variant.Compartments()
	}
	for _, label := range labels {
		p.Series = append(p.Series, Series{
			X:     ts.T,
			Y:     ts.GetVariable(label),
			Label: epidemic.CompartmentName(label),
			Color: colorFor(label, len(p.Series)),
		})
	}

	svg := p.Render()
	return svg, p.LastPlot
}

// PlotEnsemble plots ensemble mean trajectories with their quantile
// bands. If compartments is nil, all compartments in the summary's
// variant are plotted.
func PlotEnsemble(sum *ensemble.Summary, variant epidemic.Variant, compartments []string, width, height float64, title string) (string, *PlotData) {
	p := NewSVGPlotter(width, height)
	if title == "" {
		title = fmt.Sprintf("%s ensemble (%d runs)", variant, sum.Runs)
	}
	p.SetTitle(title)

	labels := compartments
	if labels == nil {
		labels = variant.Compartments()
	}
	for _, label := range labels {
		color := colorFor(label, len(p.Series))
		p.AddBand(sum.T, sum.Lower[label], sum.Upper[label], color)
		p.Series = append(p.Series, Series{
			X:     sum.T,
			Y:     sum.Mean[label],
			Label: epidemic.CompartmentName(label),
			Color: color,
		})
	}

	svg := p.Render()
	return svg, p.LastPlot
}

// CompartmentColor returns the shared color for a compartment label, or
// "" for unknown labels.
func CompartmentColor(label string) string {
	return compartmentColors[label]
}

func colorFor(label string, i int) string {
	if c, ok := compartmentColors[label]; ok {
		return c
	}
	return palette[i%len(palette)]
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escape(s string) string {
	return escaper.Replace(s)
}
