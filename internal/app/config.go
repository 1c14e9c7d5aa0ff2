package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ScenarioPath string // hcl files

	Simulations            int
	Confidence             string
	Workers                int
	Seed                   uint64
	LegacyProbabilityModel bool

	OutputFormat string
	LogFormat    string
	LogLevel     string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.ScenarioPath == "" {
		return nil, errors.New("ScenarioPath is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
