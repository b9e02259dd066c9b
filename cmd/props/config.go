package main

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"

	props "github.com/goliatone/go-props"
)

// cliConfig holds defaults read from the environment; flags override them.
type cliConfig struct {
	LogLevel  string `env:"PROPS_LOG_LEVEL" envDefault:"info"`
	Engine    string `env:"PROPS_ENGINE" envDefault:"expr"`
	Underflow string `env:"PROPS_UNDERFLOW" envDefault:"reject"`
}

func loadConfig() (cliConfig, error) {
	var cfg cliConfig
	if err := env.Parse(&cfg); err != nil {
		return cliConfig{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// newRegistry builds the registry every command works on.
func (o *rootOptions) newRegistry() (*props.Registry, error) {
	policy, err := props.ParseUnderflowPolicy(o.underflow)
	if err != nil {
		return nil, err
	}
	evaluator, err := props.NewEvaluatorByName(o.engine)
	if err != nil {
		return nil, err
	}
	opts := []props.Option{
		props.WithUnderflowPolicy(policy),
		props.WithEvaluator(evaluator),
		props.WithZerolog(log.Logger),
	}
	if o.from != "" {
		entries, err := readPropertiesFile(o.from)
		if err != nil {
			return nil, err
		}
		opts = append(opts, props.WithAnchorEntries(entries...))
	} else {
		opts = append(opts, props.WithEnvironAnchor())
	}
	return props.New(opts...), nil
}

func readPropertiesFile(path string) ([]props.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	entries, err := props.ParseProperties(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return entries, nil
}
