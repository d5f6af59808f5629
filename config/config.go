package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/bookworks/rebook/book"
	"github.com/bookworks/rebook/logging"
	"github.com/bookworks/rebook/metrics"
	"github.com/bookworks/rebook/processor"
)

// Config ties together all other application configuration types.
type Config struct {
	Logging   logging.Config   `group:"Logging" namespace:"logging"`
	Book      book.Config      `group:"Book" namespace:"book"`
	Processor processor.Config `group:"Processor" namespace:"processor"`
	Metrics   metrics.Config   `group:"Metrics" namespace:"metrics"`
}

// NewDefaultConfig returns the default configuration of every package.
func NewDefaultConfig() Config {
	return Config{
		Logging:   logging.NewDefaultConfig(),
		Book:      book.NewDefaultConfig(),
		Processor: processor.NewDefaultConfig(),
		Metrics:   metrics.NewDefaultConfig(),
	}
}

// Read loads a TOML configuration file over the defaults.
func Read(path string) (Config, error) {
	cfg := NewDefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, errors.Wrap(err, "cannot read configuration file")
	}
	return cfg, nil
}
