package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ErrUnknownTarget is returned when a named target is not defined.
var ErrUnknownTarget = errors.New("unknown target")

// TargetConfig is a named probe target.
type TargetConfig struct {
	Kind    string `yaml:"kind"`
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout,omitempty"`
}

// ProjectConfig is the content of cxn.yaml. Pointer fields distinguish
// "unset" from the zero value so that unset keys fall through to defaults.
type ProjectConfig struct {
	Backoff     *bool                   `yaml:"backoff,omitempty"`
	Retries     *int                    `yaml:"retries,omitempty"`
	Terminate   *bool                   `yaml:"terminate,omitempty"`
	Timeout     string                  `yaml:"timeout,omitempty"`
	LogFormat   string                  `yaml:"log_format,omitempty"`
	MetricsFile string                  `yaml:"metrics_file,omitempty"`
	Targets     map[string]TargetConfig `yaml:"targets,omitempty"`
}

const ConfigFileName = "cxn.yaml"

// Load reads cxn.yaml from dir.
func Load(dir string) (*ProjectConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads and validates a config file.
func LoadFile(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks durations, retry counts and target definitions.
func (c *ProjectConfig) Validate() error {
	var errs []error

	if c.Retries != nil && *c.Retries < -1 {
		errs = append(errs, fmt.Errorf("retries must be -1 (unbounded) or greater, got %d", *c.Retries))
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			errs = append(errs, fmt.Errorf("timeout: %w", err))
		}
	}

	for _, name := range c.TargetNames() {
		t := c.Targets[name]
		if t.Kind == "" {
			errs = append(errs, fmt.Errorf("target %q: kind is required", name))
		}
		if t.URL == "" {
			errs = append(errs, fmt.Errorf("target %q: url is required", name))
		}
		if t.Timeout != "" {
			if _, err := time.ParseDuration(t.Timeout); err != nil {
				errs = append(errs, fmt.Errorf("target %q: timeout: %w", name, err))
			}
		}
	}

	return errors.Join(errs...)
}

// Settings returns the scalar settings that are present in the file, keyed
// by their command-line flag names.
func (c *ProjectConfig) Settings() map[string]any {
	out := make(map[string]any)
	if c.Backoff != nil {
		out["backoff"] = *c.Backoff
	}
	if c.Retries != nil {
		out["retries"] = *c.Retries
	}
	if c.Terminate != nil {
		out["terminate"] = *c.Terminate
	}
	if c.Timeout != "" {
		out["timeout"] = c.Timeout
	}
	if c.LogFormat != "" {
		out["log-format"] = c.LogFormat
	}
	if c.MetricsFile != "" {
		out["metrics-file"] = c.MetricsFile
	}
	return out
}

// TargetNames returns the defined target names in sorted order.
func (c *ProjectConfig) TargetNames() []string {
	names := make([]string, 0, len(c.Targets))
	for name := range c.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Target returns the named target with ${VAR} references in its URL
// expanded from the environment.
func (c *ProjectConfig) Target(name string) (*TargetConfig, error) {
	t, ok := c.Targets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, name)
	}
	t.URL = strings.TrimSpace(os.ExpandEnv(t.URL))
	return &t, nil
}
