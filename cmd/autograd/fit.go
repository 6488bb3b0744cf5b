package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/autodiff"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/config"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/sink"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"
)

// Synthetic regression problem: y = X @ [2, -3] + 0.5.
var (
	fitInputs = []float64{
		0, 0,
		1, 0,
		0, 1,
		1, 1,
		2, -1,
		-1, 2,
		0.5, 0.5,
		-1.5, -0.5,
	}
	fitWeights = []float64{2, -3}
	fitBias    = 0.5
)

type fitResult struct {
	Loss      float64
	Weights   []float64
	Bias      float64
	Published int
	Stats     autodiff.GraphStats
}

// runFit trains a linear model on the synthetic problem, publishing
// parameters, gradients and loss through the configured sinks.
func runFit(ctx context.Context, w io.Writer, cfg config.Config) (*fitResult, error) {
	g := autodiff.NewGraph(cfg.Graph)
	rows := len(fitInputs) / len(fitWeights)

	x, err := g.NewValue(fitInputs, tensor.Shape{rows, len(fitWeights)}, autodiff.Named("x"))
	if err != nil {
		return nil, err
	}
	target, err := targets(g, rows)
	if err != nil {
		return nil, err
	}

	weights, err := g.Zeros(tensor.Shape{len(fitWeights), 1}, autodiff.RequiresGrad(), autodiff.Named("w"))
	if err != nil {
		return nil, err
	}
	bias := g.Scalar(0, autodiff.RequiresGrad(), autodiff.Named("b"))

	opt, err := cfg.Optimizer.NewOptimizer([]*autodiff.Value{weights, bias})
	if err != nil {
		return nil, err
	}

	rec := sink.NewRecorder()
	sinks := []autodiff.Publisher{rec}
	if cfg.Sink.Log {
		sinks = append(sinks, sink.NewLogPublisher(log.New(w, "", 0)))
	}
	if cfg.Sink.Snapshot != "" {
		sinks = append(sinks, sink.NewSnapshotWriter(cfg.Sink.Snapshot, map[string]string{
			"optimizer": cfg.Optimizer.Name,
			"steps":     fmt.Sprint(cfg.Steps),
		}))
	}
	var prom *sink.PrometheusPublisher
	if cfg.Sink.Metrics != "" {
		prom = sink.NewPrometheusPublisher(prometheus.NewRegistry(), cfg.Sink.Namespace)
		sinks = append(sinks, prom)
	}
	out := sink.NewMulti(sinks...)

	res := &fitResult{}
	for step := range cfg.Steps {
		loss, err := lossFn(x, weights, bias, target)
		if err != nil {
			return nil, errors.Join(err, out.Close())
		}

		opt.ZeroGrad()
		if err := loss.Backward(); err != nil {
			return nil, errors.Join(err, out.Close())
		}

		last := step == cfg.Steps-1
		if last || (cfg.Sink.LogEvery > 0 && step%cfg.Sink.LogEvery == 0) {
			err := autodiff.PublishValues(ctx, out, int64(step), map[string]*autodiff.Value{
				"w":    weights,
				"b":    bias,
				"loss": loss,
			})
			if err != nil {
				return nil, errors.Join(err, out.Close())
			}
		}
		if last {
			if res.Loss, err = loss.Item(); err != nil {
				return nil, errors.Join(err, out.Close())
			}
		}

		if err := opt.Step(); err != nil {
			return nil, errors.Join(err, out.Close())
		}
		g.Reset()
	}

	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("failed to close sinks: %w", err)
	}
	if prom != nil {
		if err := prom.WriteTextfile(cfg.Sink.Metrics); err != nil {
			return nil, err
		}
	}

	res.Weights = append([]float64(nil), weights.Data().Data()...)
	if res.Bias, err = bias.Item(); err != nil {
		return nil, err
	}
	res.Published = rec.Len()
	res.Stats = g.Stats()

	fmt.Fprintf(w, "fit: %d steps with %s, loss=%.6g w=%.4f b=%.4f\n",
		cfg.Steps, cfg.Optimizer.Name, res.Loss, res.Weights, res.Bias)
	return res, nil
}

// targets evaluates the true model on the inputs.
func targets(g *autodiff.Graph, rows int) (*autodiff.Value, error) {
	y := make([]float64, rows)
	for i := range rows {
		y[i] = fitBias
		for j, wj := range fitWeights {
			y[i] += fitInputs[i*len(fitWeights)+j] * wj
		}
	}
	return g.NewValue(y, tensor.Shape{rows, 1}, autodiff.Named("y"))
}

// lossFn is the mean squared error of x @ w + b against y.
func lossFn(x, w, b, y *autodiff.Value) (*autodiff.Value, error) {
	pred, err := autodiff.MatMul(x, w)
	if err != nil {
		return nil, err
	}
	if pred, err = autodiff.Add(pred, b); err != nil {
		return nil, err
	}
	diff, err := autodiff.Sub(pred, y)
	if err != nil {
		return nil, err
	}
	sq, err := autodiff.Mul(diff, diff)
	if err != nil {
		return nil, err
	}
	return autodiff.Mean(sq)
}
