package epidemic

// Parameters is a validated parameter set for one simulation run. Rates are
// per unit time (days); compartment counts are absolute individuals. The
// validate package produces these; the engine consumes them as-is.
type Parameters struct {
	Population float64 // total population N

	InitialExposed    float64 // E0 (SEIR, SEIRV, SEIRD)
	InitialInfected   float64 // I0
	InitialRecovered  float64 // R0 compartment, not the reproduction number
	InitialVaccinated float64 // V0 (SIRV, SEIRV)
	InitialDeceased   float64 // D0 (SEIRD)

	Beta  float64 // transmission rate
	Sigma float64 // incubation rate E->I
	Gamma float64 // recovery rate I->R
	Nu    float64 // vaccination rate S->V
	Mu    float64 // mortality rate I->D

	Days float64 // time horizon T
	Dt   float64 // step size
}

// Steps returns the number of integration steps n = T/dt. The produced
// time series has n+1 points, indexed 0..n.
func (p Parameters) Steps() int {
	if p.Dt <= 0 {
		return 0
	}
	return int(p.Days / p.Dt)
}

// InitialState builds the initial compartment map for a variant. The
// susceptible count is the remainder S = N - (E0+I0+R0+V0); the deceased
// compartment starts at D0 and is excluded from the remainder since deaths
// accumulate outside the living total.
func (p Parameters) InitialState(v Variant) map[string]float64 {
	u := make(map[string]float64, len(v.Compartments()))
	occupied := 0.0
	for _, c := range v.Compartments() {
		switch c {
		case Exposed:
			u[Exposed] = p.InitialExposed
			occupied += p.InitialExposed
		case Infectious:
			u[Infectious] = p.InitialInfected
			occupied += p.InitialInfected
		case Recovered:
			u[Recovered] = p.InitialRecovered
			occupied += p.InitialRecovered
		case Vaccinated:
			u[Vaccinated] = p.InitialVaccinated
			occupied += p.InitialVaccinated
		case Deceased:
			u[Deceased] = p.InitialDeceased
		}
	}
	s := p.Population - occupied
	if s < 0 {
		s = 0
	}
	u[Susceptible] = s
	return u
}

// R0 returns the basic reproduction number for the variant: beta/gamma,
// except SEIRD where infectious individuals also exit through death and
// R0 = beta/(gamma+mu). A zero denominator yields 0 rather than +Inf.
func (p Parameters) R0(v Variant) float64 {
	denom := p.Gamma
	if v == SEIRD {
		denom += p.Mu
	}
	if denom <= 0 {
		return 0
	}
	return p.Beta / denom
}
