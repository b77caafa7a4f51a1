package epidemic

// Rate parameter names, used as keys in rate maps and as column names in
// results and sweeps.
const (
	RateBeta  = "beta"
	RateSigma = "sigma"
	RateGamma = "gamma"
	RateNu    = "nu"
	RateMu    = "mu"
)

// RateNames returns the rate parameters that act on the variant, in a
// stable order.
func RateNames(v Variant) []string {
	names := []string{RateBeta}
	if v.HasCompartment(Exposed) {
		names = append(names, RateSigma)
	}
	names = append(names, RateGamma)
	if v.HasCompartment(Vaccinated) {
		names = append(names, RateNu)
	}
	if v.HasCompartment(Deceased) {
		names = append(names, RateMu)
	}
	return names
}

// Rates returns the parameter set's rates for the variant as a name map.
func (p Parameters) Rates(v Variant) map[string]float64 {
	rates := make(map[string]float64)
	for _, name := range RateNames(v) {
		switch name {
		case RateBeta:
			rates[RateBeta] = p.Beta
		case RateSigma:
			rates[RateSigma] = p.Sigma
		case RateGamma:
			rates[RateGamma] = p.Gamma
		case RateNu:
			rates[RateNu] = p.Nu
		case RateMu:
			rates[RateMu] = p.Mu
		}
	}
	return rates
}

// ApplyRates overwrites the rates named in the map. Unknown names are
// ignored.
func (p *Parameters) ApplyRates(rates map[string]float64) {
	for name, v := range rates {
		switch name {
		case RateBeta:
			p.Beta = v
		case RateSigma:
			p.Sigma = v
		case RateGamma:
			p.Gamma = v
		case RateNu:
			p.Nu = v
		case RateMu:
			p.Mu = v
		}
	}
}
