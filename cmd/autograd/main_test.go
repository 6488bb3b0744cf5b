package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/config"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/sink"
)

func TestTour(t *testing.T) {
	var buf bytes.Buffer
	stats, err := runTour(&buf, config.Default())
	require.NoError(t, err)

	out := buf.String()
	for _, want := range []string{
		"x = tensor([[1, 1], [1, 1]], requires_grad=True)",
		"y = x + 2 = tensor([[3, 3], [3, 3]], grad_fn=<AddScalarBackward>)",
		"y.grad_fn = AddScalarBackward",
		"out = z.mean() = tensor(27, grad_fn=<MeanBackward>)",
		"└── MulScalarBackward #2",
		"x.grad = tensor([[4.5, 4.5], [4.5, 4.5]])",
		"a.requires_grad = false",
		"a.requires_grad_(True); a.requires_grad = true",
		"b.grad_fn = SumBackward",
		"with no_grad: (x ** 2).requires_grad = false",
		"y.requires_grad = false; x.eq(y).all() = true",
	} {
		assert.Contains(t, out, want)
	}
	assert.Equal(t, 2, stats.BackwardPasses)
}

func TestTour_StrictGraph(t *testing.T) {
	cfg := config.Default()
	cfg.Graph.Strict = true

	var buf bytes.Buffer
	_, err := runTour(&buf, cfg)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "with no_grad (strict graph):")
}

func TestFit(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Sink.Log = false
	cfg.Sink.Snapshot = filepath.Join(dir, "fit.safetensors")
	cfg.Sink.Metrics = filepath.Join(dir, "fit.prom")

	var buf bytes.Buffer
	res, err := runFit(context.Background(), &buf, cfg)
	require.NoError(t, err)

	assert.Less(t, res.Loss, 1e-6)
	assert.InDeltaSlice(t, []float64{2, -3}, res.Weights, 1e-3)
	assert.InDelta(t, 0.5, res.Bias, 1e-3)
	// 11 publishing steps of w, w.grad, b, b.grad and loss.
	assert.Equal(t, 55, res.Published)
	assert.Equal(t, 200, res.Stats.BackwardPasses)
	assert.Equal(t, 0, res.Stats.Records)
	assert.Contains(t, buf.String(), "fit: 200 steps with sgd")

	snap, err := sink.ReadSnapshot(cfg.Sink.Snapshot)
	require.NoError(t, err)
	w, ok := snap.Get("w", 199)
	require.True(t, ok)
	assert.InDeltaSlice(t, []float64{2, -3}, w.Data(), 1e-3)
	assert.Equal(t, "sgd", snap.Metadata["optimizer"])

	metrics, err := os.ReadFile(cfg.Sink.Metrics)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `autograd_array_step{name="loss"} 199`)
}

func TestFit_AdamWithLogging(t *testing.T) {
	cfg := config.Default()
	cfg.Steps = 5
	cfg.Sink.LogEvery = 2
	cfg.Optimizer.Name = config.OptimizerAdam

	var buf bytes.Buffer
	res, err := runFit(context.Background(), &buf, cfg)
	require.NoError(t, err)

	// Steps 0, 2 and 4.
	assert.Equal(t, 15, res.Published)
	assert.Equal(t, 3, strings.Count(buf.String(), " w.grad shape=(2, 1) "))
}

func TestRun(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, run(context.Background(), &buf, "version", config.Default(), false))
	assert.Equal(t, "autograd "+version+"\n", buf.String())

	buf.Reset()
	require.NoError(t, run(context.Background(), &buf, "info", config.Default(), false))
	assert.Contains(t, buf.String(), "Parallel kernels: enabled=")

	buf.Reset()
	cfg := config.Default()
	cfg.Steps = 2
	require.NoError(t, run(context.Background(), &buf, "fit", cfg, true))
	assert.Contains(t, buf.String(), "BackwardPasses: (int) 2")

	err := run(context.Background(), &buf, "train", config.Default(), false)
	assert.ErrorContains(t, err, `unknown command "train"`)
}
