package swarm

import (
	"github.com/swarmlab/swarm/sandbox"
	"github.com/swarmlab/swarm/scheduler"
)

// Config aggregates the tunables of the embedded services.
type Config struct {
	Scheduler scheduler.Config `json:"scheduler" yaml:"scheduler"`
	Sandbox   sandbox.Config   `json:"sandbox" yaml:"sandbox"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Scheduler: scheduler.DefaultConfig(),
		Sandbox:   sandbox.DefaultConfig(),
	}
}

// Validate reports invalid settings.
func (c Config) Validate() error {
	if err := c.Scheduler.Validate(); err != nil {
		return err
	}
	return c.Sandbox.Validate()
}
