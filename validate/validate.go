// Package validate checks and normalizes raw user-supplied simulation
// inputs before they reach the engine. A Validator is constructed with the
// app defaults (plain data, no globals) and produces either a validated
// parameter set or an error naming the offending field and constraint.
package validate

import (
	"errors"
	"fmt"
	"math"

	"github.com/outbreaklab/go-outbreak/config"
	"github.com/outbreaklab/go-outbreak/epidemic"
)

var (
	// ErrInconsistentPopulation is returned when an uploaded initial-
	// condition table does not sum to the declared population.
	ErrInconsistentPopulation = errors.New("validate: initial compartments do not sum to population")
)

// FieldError reports a single input that violates its constraint.
type FieldError struct {
	Field      string
	Value      float64
	Constraint string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("validate: %s=%v violates constraint: %s", e.Field, e.Value, e.Constraint)
}

// Input is a raw, unvalidated parameter set as gathered by the
// presentation layer. InitialTable optionally carries compartment counts
// parsed from an uploaded dataset; when present it overrides the scalar
// initial fields and must sum to Population.
type Input struct {
	Model string

	Population        float64
	InitialExposed    float64
	InitialInfected   float64
	InitialRecovered  float64
	InitialVaccinated float64
	InitialDeceased   float64

	Beta  float64
	Sigma float64
	Gamma float64
	Nu    float64
	Mu    float64

	Days float64
	Dt   float64

	InitialTable map[string]float64
}

// Validator validates inputs against the configured defaults.
type Validator struct {
	defaults config.Defaults
}

// New creates a Validator carrying the app defaults.
func New(cfg *config.Config) *Validator {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Validator{defaults: cfg.Defaults}
}

// DefaultInput returns an Input prefilled with the configured defaults
// for the given model tag, ready for the presentation layer to edit.
func (v *Validator) DefaultInput(model string) Input {
	d := v.defaults
	return Input{
		Model:             model,
		Population:        d.Population,
		InitialExposed:    d.InitialExposed,
		InitialInfected:   d.InitialInfected,
		InitialRecovered:  d.InitialRecovered,
		InitialVaccinated: d.InitialVaccinated,
		Beta:              d.Beta,
		Sigma:             d.Sigma,
		Gamma:             d.Gamma,
		Nu:                d.Nu,
		Mu:                d.Mu,
		Days:              d.Days,
		Dt:                d.Dt,
	}
}

// Validate checks the input and returns the resolved variant and a
// validated parameter set. It never mutates shared state; on failure the
// zero values are returned with the first violation found.
func (v *Validator) Validate(in Input) (epidemic.Variant, epidemic.Parameters, error) {
	variant, err := epidemic.ParseVariant(in.Model)
	if err != nil {
		return 0, epidemic.Parameters{}, err
	}

	if !finite(in.Population) || in.Population <= 0 {
		return 0, epidemic.Parameters{}, &FieldError{"population", in.Population, "must be a finite value > 0"}
	}
	for _, rate := range []struct {
		name  string
		value float64
	}{
		{"beta", in.Beta},
		{"sigma", in.Sigma},
		{"gamma", in.Gamma},
		{"nu", in.Nu},
		{"mu", in.Mu},
	} {
		if rate.value < 0 || math.IsNaN(rate.value) {
			return 0, epidemic.Parameters{}, &FieldError{rate.name, rate.value, "must be >= 0"}
		}
	}
	if !finite(in.Days) || in.Days <= 0 {
		return 0, epidemic.Parameters{}, &FieldError{"days", in.Days, "must be a finite value > 0"}
	}
	if !finite(in.Dt) || in.Dt <= 0 {
		return 0, epidemic.Parameters{}, &FieldError{"dt", in.Dt, "must be a finite value > 0"}
	}
	if in.Dt > in.Days {
		return 0, epidemic.Parameters{}, &FieldError{"dt", in.Dt, "must not exceed days"}
	}

	params := epidemic.Parameters{
		Population:        in.Population,
		InitialExposed:    clamp(in.InitialExposed, 0, in.Population),
		InitialInfected:   clamp(in.InitialInfected, 0, in.Population),
		InitialRecovered:  clamp(in.InitialRecovered, 0, in.Population),
		InitialVaccinated: clamp(in.InitialVaccinated, 0, in.Population),
		InitialDeceased:   clamp(in.InitialDeceased, 0, in.Population),
		Beta:              in.Beta,
		Sigma:             in.Sigma,
		Gamma:             in.Gamma,
		Nu:                in.Nu,
		Mu:                in.Mu,
		Days:              in.Days,
		Dt:                in.Dt,
	}

	if in.InitialTable != nil {
		if err := v.applyInitialTable(variant, in, &params); err != nil {
			return 0, epidemic.Parameters{}, err
		}
	}

	occupied := initialOccupied(variant, params)
	if occupied > params.Population {
		return 0, epidemic.Parameters{}, &FieldError{
			"initial compartments", occupied, "summed initial counts must not exceed population",
		}
	}

	return variant, params, nil
}

// applyInitialTable copies dataset-supplied initial compartments into the
// parameter set. The table must cover only compartments the variant
// models and, excluding the deceased sink, must sum to the population.
func (v *Validator) applyInitialTable(variant epidemic.Variant, in Input, params *epidemic.Parameters) error {
	sum := 0.0
	for label, value := range in.InitialTable {
		if !variant.HasCompartment(label) {
			return &FieldError{
				Field:      epidemic.CompartmentName(label),
				Value:      value,
				Constraint: fmt.Sprintf("compartment not modeled by %s", variant),
			}
		}
		if value < 0 {
			return &FieldError{epidemic.CompartmentName(label), value, "must be >= 0"}
		}
		if label != epidemic.Deceased {
			sum += value
		}
	}
	if math.Abs(sum-in.Population) > 1e-9 {
		return fmt.Errorf("%w: table sums to %v, declared population is %v",
			ErrInconsistentPopulation, sum, in.Population)
	}

	for label, value := range in.InitialTable {
		switch label {
		case epidemic.Exposed:
			params.InitialExposed = value
		case epidemic.Infectious:
			params.InitialInfected = value
		case epidemic.Recovered:
			params.InitialRecovered = value
		case epidemic.Vaccinated:
			params.InitialVaccinated = value
		case epidemic.Deceased:
			params.InitialDeceased = value
		}
		// Susceptible is derived as the remainder N minus the rest,
		// which reproduces the table's own S once the sum checks out.
	}
	return nil
}

func initialOccupied(variant epidemic.Variant, p epidemic.Parameters) float64 {
	sum := 0.0
	for _, c := range variant.Compartments() {
		switch c {
		case epidemic.Exposed:
			sum += p.InitialExposed
		case epidemic.Infectious:
			sum += p.InitialInfected
		case epidemic.Recovered:
			sum += p.InitialRecovered
		case epidemic.Vaccinated:
			sum += p.InitialVaccinated
		}
	}
	return sum
}

// finite reports whether v is a usable number. NaN slips through
// ordered comparisons (NaN <= 0 is false) and Inf overflows the step
// count, so both must be rejected explicitly.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
