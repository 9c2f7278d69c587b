// Package config loads flow configuration from YAML and fills in defaults
// for anything the file leaves out.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the corresponding field is absent.
const (
	DefaultIterations     = 3
	DefaultSeedCount      = 3
	DefaultThreshold      = 6.0
	DefaultTimeout        = 10 * time.Minute
	DefaultExecutionSlack = 10
)

// Duration is a time.Duration that unmarshals from YAML strings like "5m"
// or "90s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"5m\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// ModelConfig names one generation unit and its sampling temperatures. The
// high temperature drives the creative pass and the low one the refinement
// pass.
type ModelConfig struct {
	Name     string  `yaml:"name"`
	Model    string  `yaml:"model"`
	HighTemp float64 `yaml:"high_temp"`
	LowTemp  float64 `yaml:"low_temp"`
}

// JudgeConfig configures the evaluation model.
type JudgeConfig struct {
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	Threshold   float64 `yaml:"threshold"`
}

// FlowConfig is the top-level configuration for one run.
type FlowConfig struct {
	Iterations     int           `yaml:"iterations"`
	SeedCount      int           `yaml:"seed_count"`
	OutputDir      string        `yaml:"output_dir"`
	Timeout        Duration      `yaml:"timeout"`
	ExecutionSlack int           `yaml:"execution_slack"`
	Models         []ModelConfig `yaml:"models"`
	Judge          JudgeConfig   `yaml:"judge"`
}

// Default returns a configuration with a single generation unit, usable
// without any file at all.
func Default() *FlowConfig {
	cfg := &FlowConfig{
		Models: []ModelConfig{
			{Name: "default", Model: "gpt-4o-mini", HighTemp: 0.9, LowTemp: 0.3},
		},
		Judge: JudgeConfig{Model: "gpt-4o-mini", Temperature: 0.2},
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads a YAML file and validates the result.
func Load(path string) (*FlowConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes YAML bytes and validates the result.
func Parse(raw []byte) (*FlowConfig, error) {
	var cfg FlowConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *FlowConfig) applyDefaults() {
	if c.Iterations <= 0 {
		c.Iterations = DefaultIterations
	}
	if c.SeedCount <= 0 {
		c.SeedCount = DefaultSeedCount
	}
	if c.OutputDir == "" {
		c.OutputDir = "runs"
	}
	if c.Timeout <= 0 {
		c.Timeout = Duration(DefaultTimeout)
	}
	if c.ExecutionSlack <= 0 {
		c.ExecutionSlack = DefaultExecutionSlack
	}
	if c.Judge.Threshold <= 0 {
		c.Judge.Threshold = DefaultThreshold
	}
	for i := range c.Models {
		if c.Models[i].HighTemp <= 0 {
			c.Models[i].HighTemp = 0.9
		}
		if c.Models[i].LowTemp <= 0 {
			c.Models[i].LowTemp = 0.3
		}
	}
}

func (c *FlowConfig) validate() error {
	if len(c.Models) == 0 {
		return fmt.Errorf("config: at least one model is required")
	}
	seen := make(map[string]bool, len(c.Models))
	for _, m := range c.Models {
		if m.Name == "" {
			return fmt.Errorf("config: model entry missing name")
		}
		if m.Model == "" {
			return fmt.Errorf("config: model %q missing model id", m.Name)
		}
		if seen[m.Name] {
			return fmt.Errorf("config: duplicate model name %q", m.Name)
		}
		seen[m.Name] = true
	}
	if c.Judge.Model == "" {
		return fmt.Errorf("config: judge model is required")
	}
	return nil
}

// MaxNodeExecutions returns the schedule ceiling for a run with the given
// number of generation units: each iteration runs the controller, the seed
// stage and three passes per unit, plus slack for the research stage and
// retried edges.
func (c *FlowConfig) MaxNodeExecutions() int {
	return c.Iterations*(2+3*len(c.Models)) + c.ExecutionSlack
}
