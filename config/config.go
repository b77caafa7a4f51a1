// Package config holds app-wide default simulation parameters. Defaults
// are plain data passed to the validator at construction time, never
// ambient global state; a TOML file or environment can override them.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Defaults are the fallback values applied to unset simulation inputs.
type Defaults struct {
	Population        float64 `toml:"population"`
	InitialInfected   float64 `toml:"initial_infected"`
	InitialExposed    float64 `toml:"initial_exposed"`
	InitialRecovered  float64 `toml:"initial_recovered"`
	InitialVaccinated float64 `toml:"initial_vaccinated"`

	Beta  float64 `toml:"beta"`
	Sigma float64 `toml:"sigma"`
	Gamma float64 `toml:"gamma"`
	Nu    float64 `toml:"nu"`
	Mu    float64 `toml:"mu"`

	Days float64 `toml:"days"`
	Dt   float64 `toml:"dt"`
}

// Config is the full application configuration.
type Config struct {
	Title    string   `toml:"title"`
	Defaults Defaults `toml:"defaults"`
}

// Default returns the built-in configuration
// (N=1000, I0=1, beta=0.3, gamma=0.1, 100 days).
func Default() *Config {
	return &Config{
		Title: "OutbreakLab",
		Defaults: Defaults{
			Population:      1000,
			InitialInfected: 1,
			Beta:            0.3,
			Sigma:           0.2,
			Gamma:           0.1,
			Nu:              0.05,
			Mu:              0.01,
			Days:            100,
			Dt:              1.0,
		},
	}
}

// Load reads a TOML configuration file. Fields absent from the file keep
// their built-in defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse TOML: %w", err)
	}
	return cfg, nil
}

// FromEnv applies environment overrides of the form OUTBREAK_BETA=0.25.
// Unset or malformed variables leave the current value in place.
func (c *Config) FromEnv() *Config {
	overrideFloat := func(key string, dst *float64) {
		if raw := os.Getenv(key); raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				*dst = v
			}
		}
	}
	overrideFloat("OUTBREAK_POPULATION", &c.Defaults.Population)
	overrideFloat("OUTBREAK_INITIAL_INFECTED", &c.Defaults.InitialInfected)
	overrideFloat("OUTBREAK_BETA", &c.Defaults.Beta)
	overrideFloat("OUTBREAK_SIGMA", &c.Defaults.Sigma)
	overrideFloat("OUTBREAK_GAMMA", &c.Defaults.Gamma)
	overrideFloat("OUTBREAK_NU", &c.Defaults.Nu)
	overrideFloat("OUTBREAK_MU", &c.Defaults.Mu)
	overrideFloat("OUTBREAK_DAYS", &c.Defaults.Days)
	overrideFloat("OUTBREAK_DT", &c.Defaults.Dt)
	return c
}
