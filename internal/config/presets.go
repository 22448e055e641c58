package config

import "sort"

func sweep(levels, rounds int, tol float64) SamplingConfig {
	return SamplingConfig{Levels: levels, Tolerance: tol, MaxRounds: rounds, ZeroErrorPolicy: "centroid"}
}

var Presets = map[string]map[string]*Config{
	"pendulum": {
		"damping-length": {
			Model: "pendulum", Integrator: "rk4", Dt: 0.01, Duration: 10.0, Output: "field",
			Params:   []ParamConfig{{"damping", 0.05, 0.5}, {"length", 0.5, 2.0}},
			Sampling: sweep(3, 20, 1e-3),
		},
		"energy": {
			Model: "pendulum", Integrator: "rk4", Dt: 0.01, Duration: 20.0, Output: "scalar", Metric: "energy",
			InitState: []float64{1.0, 0.0},
			Params:    []ParamConfig{{"damping", 0.0, 0.4}, {"gravity", 1.62, 24.8}},
			Sampling:  sweep(3, 25, 1e-3),
		},
	},
	"duffing": {
		"forcing": {
			Model: "duffing", Integrator: "rk4", Dt: 0.01, Duration: 30.0, Output: "scalar", Metric: "peak",
			Params:   []ParamConfig{{"gamma", 0.2, 0.6}, {"omega", 0.8, 1.4}},
			Sampling: sweep(3, 30, 1e-2),
		},
		"stiffness": {
			Model: "duffing", Integrator: "rk4", Dt: 0.01, Duration: 15.0, Output: "field",
			Params:   []ParamConfig{{"alpha", -1.0, 1.0}, {"beta", 0.5, 2.0}},
			Sampling: sweep(3, 20, 1e-2),
		},
	},
	"vanderpol": {
		"mu": {
			Model: "vanderpol", Integrator: "rk4", Dt: 0.01, Duration: 20.0, Output: "field",
			Params:   []ParamConfig{{"mu", 0.5, 3.0}},
			Sampling: sweep(3, 15, 1e-3),
		},
		"period": {
			Model: "vanderpol", Integrator: "rk4", Dt: 0.01, Duration: 60.0, Output: "scalar", Metric: "frequency",
			Params:   []ParamConfig{{"mu", 0.2, 4.0}},
			Sampling: sweep(4, 15, 1e-3),
		},
	},
	"spring_mass": {
		"stiffness-damping": {
			Model: "spring_mass", Integrator: "rk4", Dt: 0.01, Duration: 10.0, Output: "field",
			Params:   []ParamConfig{{"stiffness", 2.0, 20.0}, {"damping", 0.1, 1.0}},
			Sampling: sweep(3, 20, 1e-3),
		},
	},
	"spring_chain": {
		"tail": {
			Model: "spring_chain", Integrator: "rk4", Dt: 0.01, Duration: 10.0, Output: "field", Component: 2,
			Params:   []ParamConfig{{"stiffness", 2.0, 20.0}, {"mass", 0.5, 2.0}, {"damping", 0.1, 0.5}},
			Sampling: sweep(2, 30, 1e-3),
		},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	c := *cfg
	c.Params = append([]ParamConfig(nil), cfg.Params...)
	c.InitState = append([]float64(nil), cfg.InitState...)
	return &c
}

// ListPresets returns the preset names of a model in sorted order.
func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
