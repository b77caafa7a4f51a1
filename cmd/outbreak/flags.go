package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/outbreaklab/go-outbreak/config"
	"github.com/outbreaklab/go-outbreak/dataset"
	"github.com/outbreaklab/go-outbreak/validate"
)

// paramFlags holds the shared simulation flags. Defaults come from the
// config file (if --config is given) or the built-in configuration.
type paramFlags struct {
	configPath *string
	model      *string

	population *float64
	exposed    *float64
	infected   *float64
	recovered  *float64
	vaccinated *float64
	deceased   *float64

	beta  *float64
	sigma *float64
	gamma *float64
	nu    *float64
	mu    *float64

	days *float64
	dt   *float64

	initialCSV *string
}

// registerParamFlags adds the shared simulation flags to a flag set.
func registerParamFlags(fs *flag.FlagSet) *paramFlags {
	d := config.Default().Defaults
	return &paramFlags{
		configPath: fs.String("config", "", "TOML config file with default parameters"),
		model:      fs.String("model", "SIR", "Model variant: SIR, SEIR, SIRV, SEIRV, SEIRD"),
		population: fs.Float64("population", d.Population, "Total population N"),
		exposed:    fs.Float64("e0", d.InitialExposed, "Initial exposed count"),
		infected:   fs.Float64("i0", d.InitialInfected, "Initial infected count"),
		recovered:  fs.Float64("r0", d.InitialRecovered, "Initial recovered count"),
		vaccinated: fs.Float64("v0", d.InitialVaccinated, "Initial vaccinated count"),
		deceased:   fs.Float64("d0", 0, "Initial deceased count"),
		beta:       fs.Float64("beta", d.Beta, "Transmission rate"),
		sigma:      fs.Float64("sigma", d.Sigma, "Incubation rate (E to I)"),
		gamma:      fs.Float64("gamma", d.Gamma, "Recovery rate"),
		nu:         fs.Float64("nu", d.Nu, "Vaccination rate"),
		mu:         fs.Float64("mu", d.Mu, "Mortality rate"),
		days:       fs.Float64("days", d.Days, "Time horizon in days"),
		dt:         fs.Float64("dt", d.Dt, "Step size in days"),
		initialCSV: fs.String("initial-csv", "", "CSV file with initial compartment counts"),
	}
}

// buildInput assembles a raw validator input from the parsed flags. Flags
// left at their defaults are overridden by a config file when one is
// given, so explicit flags always win.
func (p *paramFlags) buildInput(fs *flag.FlagSet) (validate.Input, *config.Config, error) {
	cfg := config.Default()
	if *p.configPath != "" {
		loaded, err := config.Load(*p.configPath)
		if err != nil {
			return validate.Input{}, nil, err
		}
		cfg = loaded
	}
	cfg.FromEnv()

	in := validate.New(cfg).DefaultInput(*p.model)

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	apply := func(name string, dst *float64, src *float64) {
		if set[name] {
			*dst = *src
		}
	}
	apply("population", &in.Population, p.population)
	apply("e0", &in.InitialExposed, p.exposed)
	apply("i0", &in.InitialInfected, p.infected)
	apply("r0", &in.InitialRecovered, p.recovered)
	apply("v0", &in.InitialVaccinated, p.vaccinated)
	apply("d0", &in.InitialDeceased, p.deceased)
	apply("beta", &in.Beta, p.beta)
	apply("sigma", &in.Sigma, p.sigma)
	apply("gamma", &in.Gamma, p.gamma)
	apply("nu", &in.Nu, p.nu)
	apply("mu", &in.Mu, p.mu)
	apply("days", &in.Days, p.days)
	apply("dt", &in.Dt, p.dt)

	if *p.initialCSV != "" {
		table, err := dataset.ReadInitialTable(*p.initialCSV)
		if err != nil {
			return validate.Input{}, nil, fmt.Errorf("read initial table: %w", err)
		}
		in.InitialTable = table
		fmt.Fprintf(os.Stderr, "Loaded initial compartments from %s\n", *p.initialCSV)
	}

	return in, cfg, nil
}
