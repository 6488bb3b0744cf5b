package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/autodiff"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/config"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/optim"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 200, cfg.Steps)
	assert.Equal(t, config.OptimizerSGD, cfg.Optimizer.Name)
	assert.Equal(t, autodiff.DefaultConfig(), cfg.Graph)
}

func TestParse_OverridesDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte(`
steps: 50
graph:
  strict: true
optimizer:
  name: adam
  adam:
    lr: 0.1
sink:
  snapshot: out.safetensors
`))
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Steps)
	assert.True(t, cfg.Graph.Strict)
	assert.Equal(t, 64, cfg.Graph.InitialCapacity, "unset nested fields keep defaults")
	assert.Equal(t, config.OptimizerAdam, cfg.Optimizer.Name)
	assert.Equal(t, 0.1, cfg.Optimizer.Adam.LR)
	assert.Equal(t, 0.999, cfg.Optimizer.Adam.Betas[1])
	assert.Equal(t, "out.safetensors", cfg.Sink.Snapshot)
	assert.True(t, cfg.Sink.Log)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero steps", "steps: 0"},
		{"momentum out of range", "optimizer:\n  sgd:\n    momentum: 1.5"},
		{"unknown optimizer", "optimizer:\n  name: rmsprop"},
		{"negative workers", "parallel:\n  workers: -1"},
		{"bad beta", "optimizer:\n  name: adam\n  adam:\n    betas: [0.9, 1.0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Parse([]byte(tt.yaml))
			assert.ErrorIs(t, err, config.ErrInvalid)
		})
	}

	_, err := config.Parse([]byte("unknown_key: 1"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autograd.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps: 7\n"), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Steps)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDumpRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Steps = 3
	cfg.Optimizer.Name = config.OptimizerAdam

	data, err := cfg.Dump()
	require.NoError(t, err)
	back, err := config.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestNewOptimizer(t *testing.T) {
	g := autodiff.NewGraph(autodiff.DefaultConfig())
	w := g.Scalar(1, autodiff.RequiresGrad())

	cfg := config.Default().Optimizer
	opt, err := cfg.NewOptimizer([]*autodiff.Value{w})
	require.NoError(t, err)
	assert.IsType(t, &optim.SGD{}, opt)
	assert.Equal(t, 0.05, opt.LR())

	cfg.Name = config.OptimizerAdam
	opt, err = cfg.NewOptimizer([]*autodiff.Value{w})
	require.NoError(t, err)
	assert.IsType(t, &optim.Adam{}, opt)

	cfg.Name = "lbfgs"
	_, err = cfg.NewOptimizer(nil)
	assert.ErrorIs(t, err, config.ErrInvalid)
}
