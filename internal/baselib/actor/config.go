package actor

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RuntimeConfig is the root configuration for a System. Programmatic
// construction via DefaultRuntimeConfig is the zero-config path; YAML
// loading through LoadRuntimeConfig is additive for deployments that prefer
// to externalize these knobs alongside the rest of their config files.
type RuntimeConfig struct {
	// MailboxCapacity is the default mailbox capacity for agents spawned
	// without an override in AgentConfig.
	MailboxCapacity int `yaml:"mailbox_capacity"`

	// ChildStopTimeout bounds how long terminate() waits for any one
	// child to report stopped before logging and proceeding anyway.
	ChildStopTimeout time.Duration `yaml:"child_stop_timeout"`

	// LogLevel is the btclog level name (e.g. "debug", "info", "warn")
	// applied to the package logger when UseLoggerFromConfig is called
	// with this config.
	LogLevel string `yaml:"log_level"`
}

// DefaultRuntimeConfig returns the configuration a System is built with
// when Launch is called with a zero-valued RuntimeConfig.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		MailboxCapacity:  DefaultMailboxCapacity,
		ChildStopTimeout: childStopTimeout,
		LogLevel:         "info",
	}
}

// LoadRuntimeConfig reads and parses a RuntimeConfig from a YAML file at
// path. Fields absent from the file fall back to DefaultRuntimeConfig's
// values.
func LoadRuntimeConfig(path string) (RuntimeConfig, error) {
	cfg := DefaultRuntimeConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading runtime config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing runtime config: %w", err)
	}

	if cfg.MailboxCapacity <= 0 {
		cfg.MailboxCapacity = DefaultMailboxCapacity
	}
	if cfg.ChildStopTimeout <= 0 {
		cfg.ChildStopTimeout = childStopTimeout
	}

	return cfg, nil
}
