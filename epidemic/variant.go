// Package epidemic defines the compartmental model variants supported by
// OutbreakLab and the parameter sets that drive them. A variant is a fixed,
// ordered set of compartments plus the flows (transitions) between them;
// the engine package turns flows into deterministic fluxes or stochastic
// event counts.
package epidemic

import (
	"fmt"
	"strings"
)

// Variant identifies a compartmental model. The set is closed: adding a
// model means adding a constant and its case in compartments/flows.
type Variant int

const (
	// SIR is the classic Susceptible-Infectious-Recovered model.
	SIR Variant = iota
	// SEIR inserts an Exposed (latent) compartment before Infectious.
	SEIR
	// SIRV adds a Vaccinated compartment fed from Susceptible.
	SIRV
	// SEIRV combines the Exposed and Vaccinated extensions.
	SEIRV
	// SEIRD replaces vaccination with disease-induced mortality.
	SEIRD
)

var variantNames = map[Variant]string{
	SIR:   "SIR",
	SEIR:  "SEIR",
	SIRV:  "SIRV",
	SEIRV: "SEIRV",
	SEIRD: "SEIRD",
}

// String returns the canonical tag for the variant ("SIR", "SEIR", ...).
func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return fmt.Sprintf("Variant(%d)", int(v))
}

// Valid reports whether v is one of the supported model tags.
func (v Variant) Valid() bool {
	_, ok := variantNames[v]
	return ok
}

// ParseVariant resolves a model tag (case-insensitive) to a Variant.
// Unknown tags fail with ErrUnsupportedVariant.
func ParseVariant(tag string) (Variant, error) {
	upper := strings.ToUpper(strings.TrimSpace(tag))
	for v, name := range variantNames {
		if name == upper {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedVariant, tag)
}

// Compartment labels. State maps are keyed by these single-letter labels;
// CompartmentName maps them to display names for plots and tables.
const (
	Susceptible = "S"
	Exposed     = "E"
	Infectious  = "I"
	Recovered   = "R"
	Vaccinated  = "V"
	Deceased    = "D"
)

var compartmentNames = map[string]string{
	Susceptible: "Susceptible",
	Exposed:     "Exposed",
	Infectious:  "Infectious",
	Recovered:   "Recovered",
	Vaccinated:  "Vaccinated",
	Deceased:    "Deceased",
}

// CompartmentName returns the display name for a compartment label,
// or the label itself if it is not a known compartment.
func CompartmentName(label string) string {
	if name, ok := compartmentNames[label]; ok {
		return name
	}
	return label
}

// Compartments returns the variant's compartment labels in plotting order.
// The slice is freshly allocated; callers may modify it.
func (v Variant) Compartments() []string {
	switch v {
	case SIR:
		return []string{Susceptible, Infectious, Recovered}
	case SEIR:
		return []string{Susceptible, Exposed, Infectious, Recovered}
	case SIRV:
		return []string{Susceptible, Infectious, Recovered, Vaccinated}
	case SEIRV:
		return []string{Susceptible, Exposed, Infectious, Recovered, Vaccinated}
	case SEIRD:
		return []string{Susceptible, Exposed, Infectious, Recovered, Deceased}
	default:
		return nil
	}
}

// HasCompartment reports whether the variant models the given label.
func (v Variant) HasCompartment(label string) bool {
	for _, c := range v.Compartments() {
		if c == label {
			return true
		}
	}
	return false
}

// Flow describes one transition between compartments. Hazard is the
// per-individual rate of leaving Source given the current state; the
// deterministic flux is hazard*Source and the stochastic event count is
// Binomial(Source, 1-exp(-hazard*dt)).
type Flow struct {
	Name   string
	Source string
	Target string
	Hazard func(p Parameters, u map[string]float64) float64
}

// Flows returns the variant's transitions in draw order. Order matters in
// stochastic mode: flows that share a source drain it sequentially, so
// infection is always drawn before vaccination and recovery before death.
func (v Variant) Flows() []Flow {
	infection := Flow{
		Name:   "infection",
		Source: Susceptible,
		Target: Infectious,
		Hazard: forceOfInfection,
	}
	exposure := Flow{
		Name:   "exposure",
		Source: Susceptible,
		Target: Exposed,
		Hazard: forceOfInfection,
	}
	incubation := Flow{
		Name:   "incubation",
		Source: Exposed,
		Target: Infectious,
		Hazard: func(p Parameters, _ map[string]float64) float64 { return p.Sigma },
	}
	recovery := Flow{
		Name:   "recovery",
		Source: Infectious,
		Target: Recovered,
		Hazard: func(p Parameters, _ map[string]float64) float64 { return p.Gamma },
	}
	vaccination := Flow{
		Name:   "vaccination",
		Source: Susceptible,
		Target: Vaccinated,
		Hazard: func(p Parameters, _ map[string]float64) float64 { return p.Nu },
	}
	death := Flow{
		Name:   "death",
		Source: Infectious,
		Target: Deceased,
		Hazard: func(p Parameters, _ map[string]float64) float64 { return p.Mu },
	}

	switch v {
	case SIR:
		return []Flow{infection, recovery}
	case SEIR:
		return []Flow{exposure, incubation, recovery}
	case SIRV:
		return []Flow{infection, vaccination, recovery}
	case SEIRV:
		return []Flow{exposure, vaccination, incubation, recovery}
	case SEIRD:
		return []Flow{exposure, incubation, recovery, death}
	default:
		return nil
	}
}

// forceOfInfection is the per-susceptible hazard beta*I/N.
func forceOfInfection(p Parameters, u map[string]float64) float64 {
	if p.Population <= 0 {
		return 0
	}
	return p.Beta * u[Infectious] / p.Population
}

// TerminalCompartment is the sink that absorbs conservation excess when
// step-size error pushes the compartment sum above N: V when vaccination
// is modeled, else R.
func (v Variant) TerminalCompartment() string {
	if v.HasCompartment(Vaccinated) {
		return Vaccinated
	}
	return Recovered
}
