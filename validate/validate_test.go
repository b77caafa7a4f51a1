package validate

import (
	"errors"
	"math"
	"testing"

	"github.com/outbreaklab/go-outbreak/epidemic"
)

func validInput() Input {
	return Input{
		Model:           "SIR",
		Population:      1000,
		InitialInfected: 1,
		Beta:            0.3,
		Gamma:           0.1,
		Days:            100,
		Dt:              1,
	}
}

func TestValidateAccepts(t *testing.T) {
	v := New(nil)
	variant, params, err := v.Validate(validInput())
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if variant != epidemic.SIR {
		t.Errorf("Expected SIR, got %v", variant)
	}
	if params.Population != 1000 || params.InitialInfected != 1 {
		t.Errorf("Parameters not carried over: %+v", params)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Input)
	}{
		{"zero population", func(in *Input) { in.Population = 0 }},
		{"negative population", func(in *Input) { in.Population = -10 }},
		{"negative beta", func(in *Input) { in.Beta = -0.1 }},
		{"NaN gamma", func(in *Input) { in.Gamma = math.NaN() }},
		{"zero days", func(in *Input) { in.Days = 0 }},
		{"zero dt", func(in *Input) { in.Dt = 0 }},
		{"dt exceeds days", func(in *Input) { in.Dt = 200 }},
		{"NaN population", func(in *Input) { in.Population = math.NaN() }},
		{"NaN days", func(in *Input) { in.Days = math.NaN() }},
		{"NaN dt", func(in *Input) { in.Dt = math.NaN() }},
		{"infinite days", func(in *Input) { in.Days = math.Inf(1) }},
		{"infinite dt", func(in *Input) { in.Dt = math.Inf(1); in.Days = math.Inf(1) }},
	}
	v := New(nil)
	for _, c := range cases {
		in := validInput()
		c.mutate(&in)
		_, _, err := v.Validate(in)
		if err == nil {
			t.Errorf("%s: expected error", c.name)
			continue
		}
		var fe *FieldError
		if !errors.As(err, &fe) {
			t.Errorf("%s: expected FieldError, got %T (%v)", c.name, err, err)
		}
	}
}

func TestValidateUnknownModel(t *testing.T) {
	v := New(nil)
	in := validInput()
	in.Model = "SIRS"
	_, _, err := v.Validate(in)
	if !errors.Is(err, epidemic.ErrUnsupportedVariant) {
		t.Errorf("Expected ErrUnsupportedVariant, got %v", err)
	}
}

func TestValidateClampsInitials(t *testing.T) {
	v := New(nil)
	in := validInput()
	in.InitialInfected = -5
	_, params, err := v.Validate(in)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if params.InitialInfected != 0 {
		t.Errorf("Expected I0 clamped to 0, got %f", params.InitialInfected)
	}

	in = validInput()
	in.InitialInfected = 5000
	_, params, err = v.Validate(in)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if params.InitialInfected != in.Population {
		t.Errorf("Expected I0 clamped to N, got %f", params.InitialInfected)
	}
}

func TestValidateInitialsExceedPopulation(t *testing.T) {
	v := New(nil)
	in := validInput()
	in.Model = "SEIR"
	in.InitialExposed = 600
	in.InitialInfected = 600
	_, _, err := v.Validate(in)
	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Errorf("Expected FieldError for overfull initials, got %v", err)
	}
}

func TestInitialTableApplied(t *testing.T) {
	v := New(nil)
	in := validInput()
	in.Model = "SEIR"
	in.InitialTable = map[string]float64{
		epidemic.Susceptible: 990,
		epidemic.Exposed:     6,
		epidemic.Infectious:  3,
		epidemic.Recovered:   1,
	}
	variant, params, err := v.Validate(in)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if params.InitialExposed != 6 || params.InitialInfected != 3 || params.InitialRecovered != 1 {
		t.Errorf("Table not applied: %+v", params)
	}
	u := params.InitialState(variant)
	if u[epidemic.Susceptible] != 990 {
		t.Errorf("Expected S=990 from remainder, got %f", u[epidemic.Susceptible])
	}
}

func TestInitialTableInconsistentPopulation(t *testing.T) {
	v := New(nil)
	in := validInput()
	in.InitialTable = map[string]float64{
		epidemic.Susceptible: 1000,
		epidemic.Infectious:  5,
		epidemic.Recovered:   0,
	}
	_, _, err := v.Validate(in)
	if !errors.Is(err, ErrInconsistentPopulation) {
		t.Errorf("Expected ErrInconsistentPopulation, got %v", err)
	}
}

func TestInitialTableUnknownCompartment(t *testing.T) {
	v := New(nil)
	in := validInput()
	in.InitialTable = map[string]float64{
		epidemic.Susceptible: 995,
		epidemic.Infectious:  1,
		epidemic.Vaccinated:  4, // SIR has no V
	}
	_, _, err := v.Validate(in)
	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("Expected FieldError, got %v", err)
	}
}

func TestInitialTableDeceasedOutsideSum(t *testing.T) {
	v := New(nil)
	in := validInput()
	in.Model = "SEIRD"
	in.InitialTable = map[string]float64{
		epidemic.Susceptible: 990,
		epidemic.Exposed:     5,
		epidemic.Infectious:  5,
		epidemic.Recovered:   0,
		epidemic.Deceased:    25, // outside the living total
	}
	_, params, err := v.Validate(in)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if params.InitialDeceased != 25 {
		t.Errorf("Expected D0=25, got %f", params.InitialDeceased)
	}
}

func TestDefaultInput(t *testing.T) {
	v := New(nil)
	in := v.DefaultInput("SEIR")
	if in.Model != "SEIR" {
		t.Errorf("Expected model SEIR, got %s", in.Model)
	}
	if in.Population != 1000 || in.InitialInfected != 1 {
		t.Errorf("Expected built-in defaults, got %+v", in)
	}
	if _, _, err := v.Validate(in); err != nil {
		t.Errorf("Default input must validate, got %v", err)
	}
}
