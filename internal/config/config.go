package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/adaptsim/internal/sampling"
	"github.com/san-kum/adaptsim/internal/snapshot"
)

const (
	DefaultDt        = 0.01
	DefaultDuration  = 10.0
	DefaultLevels    = 3
	DefaultTolerance = 1e-3
	DefaultMaxRounds = 20
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("config: invalid study")

// Config describes one adaptive study: the model that produces snapshots,
// the parameter box it is sampled over and the stopping rule.
type Config struct {
	Model      string         `yaml:"model"`
	Integrator string         `yaml:"integrator"`
	Dt         float64        `yaml:"dt"`
	Duration   float64        `yaml:"duration"`
	InitState  []float64      `yaml:"init_state,omitempty"`
	Output     string         `yaml:"output"`
	Component  int            `yaml:"component"`
	Metric     string         `yaml:"metric,omitempty"`
	Params     []ParamConfig  `yaml:"params"`
	Sampling   SamplingConfig `yaml:"sampling"`
}

// ParamConfig is one swept model parameter and its range.
type ParamConfig struct {
	Name string  `yaml:"name"`
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
}

type SamplingConfig struct {
	// Levels is the number of grid levels per parameter in the initial design.
	Levels          int     `yaml:"levels"`
	Tolerance       float64 `yaml:"tolerance"`
	MaxRounds       int     `yaml:"max_rounds"`
	ZeroErrorPolicy string  `yaml:"zero_error_policy"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "pendulum",
		Integrator: "rk4",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Output:     "field",
		Params: []ParamConfig{
			{Name: "damping", Min: 0.05, Max: 0.5},
			{Name: "length", Min: 0.5, Max: 2.0},
		},
		Sampling: SamplingConfig{
			Levels:          DefaultLevels,
			Tolerance:       DefaultTolerance,
			MaxRounds:       DefaultMaxRounds,
			ZeroErrorPolicy: "centroid",
		},
	}
}

// Load reads a yaml study file over DefaultConfig. A params list in the
// file replaces the default one.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	cfg.Params = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Params == nil {
		cfg.Params = DefaultConfig().Params
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the study for values the sampler or the simulation
// would reject.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("%w: model is empty", ErrInvalid)
	}
	if !(c.Dt > 0) || !(c.Duration > 0) {
		return fmt.Errorf("%w: dt and duration must be positive", ErrInvalid)
	}
	if len(c.Params) == 0 {
		return fmt.Errorf("%w: no parameters to sample", ErrInvalid)
	}
	seen := make(map[string]bool, len(c.Params))
	for _, p := range c.Params {
		if p.Name == "" {
			return fmt.Errorf("%w: parameter without a name", ErrInvalid)
		}
		if seen[p.Name] {
			return fmt.Errorf("%w: parameter %s listed twice", ErrInvalid, p.Name)
		}
		seen[p.Name] = true
		if !(p.Min < p.Max) {
			return fmt.Errorf("%w: parameter %s needs min < max", ErrInvalid, p.Name)
		}
	}
	if c.Sampling.Levels < 2 {
		return fmt.Errorf("%w: levels must be at least 2", ErrInvalid)
	}
	if c.Sampling.Tolerance < 0 || c.Sampling.MaxRounds < 0 {
		return fmt.Errorf("%w: tolerance and max_rounds must not be negative", ErrInvalid)
	}
	if _, err := sampling.ParseZeroErrorPolicy(c.Sampling.ZeroErrorPolicy); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	out, err := snapshot.ParseOutput(c.Output)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if out == snapshot.OutputScalar && c.Metric == "" {
		return fmt.Errorf("%w: scalar output needs a metric", ErrInvalid)
	}
	if c.Component < 0 {
		return fmt.Errorf("%w: component must not be negative", ErrInvalid)
	}
	return nil
}

// ParamNames returns the swept parameter names in order.
func (c *Config) ParamNames() []string {
	names := make([]string, len(c.Params))
	for i, p := range c.Params {
		names[i] = p.Name
	}
	return names
}
