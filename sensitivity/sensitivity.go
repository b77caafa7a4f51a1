// Package sensitivity analyzes how epidemic outcomes change with the
// transition rates. This includes rate knockout analysis, single-rate
// sweeps, gradient estimation, and grid search over rate combinations.
package sensitivity

import (
	"math"
	"sort"
	"sync"

	"github.com/outbreaklab/go-outbreak/engine"
	"github.com/outbreaklab/go-outbreak/epidemic"
)

// Scorer evaluates a simulated trajectory and returns a score.
type Scorer func(ts *engine.TimeSeries) float64

// FinalStateScorer creates a Scorer that evaluates the final state.
func FinalStateScorer(f func(state map[string]float64) float64) Scorer {
	return func(ts *engine.TimeSeries) float64 {
		return f(ts.GetFinalState())
	}
}

// CompartmentScorer creates a Scorer that returns the final value of a
// compartment.
func CompartmentScorer(label string) Scorer {
	return func(ts *engine.TimeSeries) float64 {
		return ts.GetFinalState()[label]
	}
}

// PeakScorer creates a Scorer that returns the peak value of a
// compartment over the whole trajectory.
func PeakScorer(label string) Scorer {
	return func(ts *engine.TimeSeries) float64 {
		peak := 0.0
		for _, u := range ts.U {
			if u[label] > peak {
				peak = u[label]
			}
		}
		return peak
	}
}

// AttackRateScorer creates a Scorer that returns the fraction of the
// population no longer susceptible at the end of the horizon.
func AttackRateScorer(population float64) Scorer {
	return func(ts *engine.TimeSeries) float64 {
		if population <= 0 {
			return 0
		}
		final := ts.GetFinalState()
		return (population - final[epidemic.Susceptible]) / population
	}
}

// Result holds the result of a rate knockout analysis.
type Result struct {
	Baseline float64            // Score with original rates
	Scores   map[string]float64 // Score when each rate is zeroed
	Impact   map[string]float64 // Change from baseline (Score - Baseline)
	Ranking  []RankedParam      // Rates sorted by absolute impact
}

// RankedParam represents a rate parameter and its impact.
type RankedParam struct {
	Name   string
	Impact float64
}

// Analyzer performs sensitivity analysis on one model variant.
type Analyzer struct {
	variant epidemic.Variant
	params  epidemic.Parameters
	opts    *engine.Options
	scorer  Scorer
}

// NewAnalyzer creates a new sensitivity analyzer. Simulations run in
// deterministic mode unless overridden with WithOptions.
func NewAnalyzer(variant epidemic.Variant, params epidemic.Parameters, scorer Scorer) *Analyzer {
	return &Analyzer{
		variant: variant,
		params:  params,
		opts:    engine.DefaultOptions(),
		scorer:  scorer,
	}
}

// WithOptions sets the engine options.
func (a *Analyzer) WithOptions(opts *engine.Options) *Analyzer {
	a.opts = opts
	return a
}

// RateNames returns the rate parameters that act on the variant.
func (a *Analyzer) RateNames() []string {
	return epidemic.RateNames(a.variant)
}

// simulate runs a simulation with the given rates and returns the score.
// Unstable runs score NaN so the caller can spot them in the ranking.
func (a *Analyzer) simulate(rates map[string]float64) float64 {
	params := a.params
	params.ApplyRates(rates)
	ts, err := engine.Run(a.variant, params, a.opts)
	if err != nil {
		return math.NaN()
	}
	return a.scorer(ts)
}

// AnalyzeRates tests the impact of zeroing each rate parameter.
func (a *Analyzer) AnalyzeRates() *Result {
	result := &Result{
		Scores: make(map[string]float64),
		Impact: make(map[string]float64),
	}

	base := a.params.Rates(a.variant)
	result.Baseline = a.simulate(base)

	for _, name := range a.RateNames() {
		testRates := copyRates(base)
		testRates[name] = 0

		score := a.simulate(testRates)
		result.Scores[name] = score
		result.Impact[name] = score - result.Baseline
	}

	result.Ranking = rankByImpact(result.Impact)
	return result
}

// AnalyzeRatesParallel tests the impact of zeroing each rate in parallel.
func (a *Analyzer) AnalyzeRatesParallel() *Result {
	result := &Result{
		Scores: make(map[string]float64),
		Impact: make(map[string]float64),
	}

	base := a.params.Rates(a.variant)
	result.Baseline = a.simulate(base)

	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, name := range a.RateNames() {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()

			testRates := copyRates(base)
			testRates[name] = 0

			score := a.simulate(testRates)

			mu.Lock()
			result.Scores[name] = score
			result.Impact[name] = score - result.Baseline
			mu.Unlock()
		}(name)
	}

	wg.Wait()

	result.Ranking = rankByImpact(result.Impact)
	return result
}

// rankByImpact sorts parameters by absolute impact (descending).
func rankByImpact(impact map[string]float64) []RankedParam {
	ranking := make([]RankedParam, 0, len(impact))
	for name, imp := range impact {
		ranking = append(ranking, RankedParam{Name: name, Impact: imp})
	}
	sort.Slice(ranking, func(i, j int) bool {
		return math.Abs(ranking[i].Impact) > math.Abs(ranking[j].Impact)
	})
	return ranking
}

// SweepResult holds results from a single-rate sweep.
type SweepResult struct {
	Parameter string
	Values    []float64
	Scores    []float64
	Best      struct {
		Value float64
		Score float64
	}
	Worst struct {
		Value float64
		Score float64
	}
}

// SweepRate tests a range of values for a single rate parameter.
func (a *Analyzer) SweepRate(name string, values []float64) *SweepResult {
	result := &SweepResult{
		Parameter: name,
		Values:    values,
		Scores:    make([]float64, len(values)),
	}

	base := a.params.Rates(a.variant)
	bestScore := math.Inf(-1)
	worstScore := math.Inf(1)

	for i, val := range values {
		testRates := copyRates(base)
		testRates[name] = val

		score := a.simulate(testRates)
		result.Scores[i] = score

		if score > bestScore {
			bestScore = score
			result.Best.Value = val
			result.Best.Score = score
		}
		if score < worstScore {
			worstScore = score
			result.Worst.Value = val
			result.Worst.Score = score
		}
	}

	return result
}

// SweepRateRange tests evenly spaced values in a range.
func (a *Analyzer) SweepRateRange(name string, min, max float64, steps int) *SweepResult {
	return a.SweepRate(name, linspace(min, max, steps))
}

// Gradient estimates the gradient of the score with respect to a rate
// parameter using central differences: (f(x+h) - f(x-h)) / (2h).
func (a *Analyzer) Gradient(name string, h float64) float64 {
	base := a.params.Rates(a.variant)
	orig := base[name]
	if h == 0 {
		h = 0.01 * orig
		if h == 0 {
			h = 0.01
		}
	}

	testPlus := copyRates(base)
	testPlus[name] = orig + h
	scorePlus := a.simulate(testPlus)

	testMinus := copyRates(base)
	testMinus[name] = orig - h
	if testMinus[name] < 0 {
		testMinus[name] = 0
	}
	scoreMinus := a.simulate(testMinus)

	return (scorePlus - scoreMinus) / (2 * h)
}

// AllGradients computes gradients for all rate parameters.
func (a *Analyzer) AllGradients(h float64) map[string]float64 {
	gradients := make(map[string]float64)
	for _, name := range a.RateNames() {
		gradients[name] = a.Gradient(name, h)
	}
	return gradients
}

// AllGradientsParallel computes gradients for all rates in parallel.
func (a *Analyzer) AllGradientsParallel(h float64) map[string]float64 {
	gradients := make(map[string]float64)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, name := range a.RateNames() {
		wg.Add(1)
		go func(name string) {
			defer wg.Done()
			grad := a.Gradient(name, h)
			mu.Lock()
			gradients[name] = grad
			mu.Unlock()
		}(name)
	}

	wg.Wait()
	return gradients
}

// GridSearch performs a grid search over multiple rate parameters.
type GridSearch struct {
	analyzer   *Analyzer
	parameters map[string][]float64
}

// NewGridSearch creates a new grid search.
func NewGridSearch(analyzer *Analyzer) *GridSearch {
	return &GridSearch{
		analyzer:   analyzer,
		parameters: make(map[string][]float64),
	}
}

// AddParameter adds a rate to sweep with specific values.
func (g *GridSearch) AddParameter(name string, values []float64) *GridSearch {
	g.parameters[name] = values
	return g
}

// AddParameterRange adds a rate to sweep with evenly spaced values.
func (g *GridSearch) AddParameterRange(name string, min, max float64, steps int) *GridSearch {
	g.parameters[name] = linspace(min, max, steps)
	return g
}

// GridResult holds results from a grid search.
type GridResult struct {
	Combinations []map[string]float64
	Scores       []float64
	Best         struct {
		Parameters map[string]float64
		Score      float64
		Index      int
	}
}

// Run executes the grid search.
func (g *GridSearch) Run() *GridResult {
	combinations := g.generateCombinations()

	result := &GridResult{
		Combinations: combinations,
		Scores:       make([]float64, len(combinations)),
	}

	base := g.analyzer.params.Rates(g.analyzer.variant)
	bestScore := math.Inf(-1)

	for i, combo := range combinations {
		testRates := copyRates(base)
		for k, v := range combo {
			testRates[k] = v
		}

		score := g.analyzer.simulate(testRates)
		result.Scores[i] = score

		if score > bestScore {
			bestScore = score
			result.Best.Parameters = combo
			result.Best.Score = score
			result.Best.Index = i
		}
	}

	return result
}

// generateCombinations generates all parameter combinations.
func (g *GridSearch) generateCombinations() []map[string]float64 {
	params := make([]string, 0, len(g.parameters))
	for p := range g.parameters {
		params = append(params, p)
	}
	sort.Strings(params)

	total := 1
	for _, p := range params {
		total *= len(g.parameters[p])
	}

	combinations := make([]map[string]float64, total)
	for i := 0; i < total; i++ {
		combo := make(map[string]float64)
		idx := i
		for _, p := range params {
			values := g.parameters[p]
			combo[p] = values[idx%len(values)]
			idx /= len(values)
		}
		combinations[i] = combo
	}

	return combinations
}

func copyRates(rates map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(rates))
	for k, v := range rates {
		out[k] = v
	}
	return out
}

func linspace(min, max float64, steps int) []float64 {
	values := make([]float64, steps)
	for i := 0; i < steps; i++ {
		values[i] = min + (max-min)*float64(i)/float64(steps-1)
	}
	return values
}
