// Package config loads the YAML configuration of the autograd command.
//
// Example file:
//
//	steps: 200
//	graph:
//	  strict: true
//	parallel:
//	  enabled: true
//	  workers: 4
//	  min_chunk: 4096
//	optimizer:
//	  name: sgd
//	  sgd:
//	    lr: 0.05
//	    momentum: 0.9
//	sink:
//	  log: true
//	  log_every: 20
//	  snapshot: run.safetensors
//	  metrics: autograd.prom
//
// Fields missing from the file keep their Default values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/autodiff"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/optim"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/parallel"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Optimizer names.
const (
	OptimizerSGD  = "sgd"
	OptimizerAdam = "adam"
)

// Config is the full configuration of a run.
type Config struct {
	Steps     int             `yaml:"steps"`
	Graph     autodiff.Config `yaml:"graph"`
	Parallel  parallel.Config `yaml:"parallel"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Sink      SinkConfig      `yaml:"sink"`
}

// OptimizerConfig selects and configures the optimizer used by fit.
type OptimizerConfig struct {
	Name string           `yaml:"name"` // "sgd" or "adam"
	SGD  optim.SGDConfig  `yaml:"sgd"`
	Adam optim.AdamConfig `yaml:"adam"`
}

// SinkConfig chooses where published arrays go. Empty paths disable the
// corresponding sink.
type SinkConfig struct {
	Log       bool   `yaml:"log"`       // Log a summary line per array
	LogEvery  int    `yaml:"log_every"` // Publish every N steps
	Snapshot  string `yaml:"snapshot"`  // SafeTensors output path
	Metrics   string `yaml:"metrics"`   // Prometheus textfile output path
	Namespace string `yaml:"namespace"` // Prometheus namespace
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Steps:    200,
		Graph:    autodiff.DefaultConfig(),
		Parallel: parallel.DefaultConfig(),
		Optimizer: OptimizerConfig{
			Name: OptimizerSGD,
			SGD:  optim.SGDConfig{LR: 0.05, Momentum: 0.9},
			Adam: optim.AdamConfig{LR: 0.05, Betas: [2]float64{0.9, 0.999}, Eps: 1e-8},
		},
		Sink: SinkConfig{
			Log:       true,
			LogEvery:  20,
			Namespace: "autograd",
		},
	}
}

// Load reads path on top of Default and validates the result.
func Load(path string) (Config, error) {
	//nolint:gosec // G304: config path is chosen by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	switch {
	case c.Steps <= 0:
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalid, c.Steps)
	case c.Graph.InitialCapacity < 0:
		return fmt.Errorf("%w: graph.initial_capacity must not be negative", ErrInvalid)
	case c.Parallel.NumWorkers < 0:
		return fmt.Errorf("%w: parallel.workers must not be negative", ErrInvalid)
	case c.Parallel.MinChunkSize < 0:
		return fmt.Errorf("%w: parallel.min_chunk must not be negative", ErrInvalid)
	case c.Sink.LogEvery < 0:
		return fmt.Errorf("%w: sink.log_every must not be negative", ErrInvalid)
	}

	switch c.Optimizer.Name {
	case OptimizerSGD:
		if c.Optimizer.SGD.LR < 0 {
			return fmt.Errorf("%w: optimizer.sgd.lr must not be negative", ErrInvalid)
		}
		if m := c.Optimizer.SGD.Momentum; m < 0 || m >= 1 {
			return fmt.Errorf("%w: optimizer.sgd.momentum must be in [0, 1), got %g", ErrInvalid, m)
		}
	case OptimizerAdam:
		if c.Optimizer.Adam.LR < 0 {
			return fmt.Errorf("%w: optimizer.adam.lr must not be negative", ErrInvalid)
		}
		for _, b := range c.Optimizer.Adam.Betas {
			if b < 0 || b >= 1 {
				return fmt.Errorf("%w: optimizer.adam.betas must be in [0, 1), got %g", ErrInvalid, b)
			}
		}
	default:
		return fmt.Errorf("%w: unknown optimizer %q", ErrInvalid, c.Optimizer.Name)
	}
	return nil
}

// NewOptimizer builds the configured optimizer over params.
func (c OptimizerConfig) NewOptimizer(params []*autodiff.Value) (optim.Optimizer, error) {
	switch c.Name {
	case OptimizerSGD:
		return optim.NewSGD(params, c.SGD), nil
	case OptimizerAdam:
		return optim.NewAdam(params, c.Adam), nil
	}
	return nil, fmt.Errorf("%w: unknown optimizer %q", ErrInvalid, c.Name)
}

// Dump renders the configuration as YAML.
func (c Config) Dump() ([]byte, error) {
	return yaml.Marshal(c)
}
