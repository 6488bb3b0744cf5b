// Copyright 2025 The DeepLearningWithPyTorch Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package sink provides destinations for arrays published by autodiff runs:
// an in-memory recorder, a log writer, SafeTensors snapshots, Prometheus
// gauges and a concurrent fan-out.
//
// Example:
//
//	snap := sink.NewSnapshotWriter("run.safetensors", nil)
//	out := sink.NewMulti(sink.NewLogPublisher(nil), snap)
//	if err := autodiff.PublishValues(ctx, out, step, values); err != nil {
//	    return err
//	}
//	return out.Close()
package sink

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/autodiff"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/sink"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"
)

// Sink types.
type (
	Recorder            = sink.Recorder
	Entry               = sink.Entry
	Summary             = sink.Summary
	LogPublisher        = sink.LogPublisher
	SnapshotWriter      = sink.SnapshotWriter
	Snapshot            = sink.Snapshot
	PrometheusPublisher = sink.PrometheusPublisher
	Multi               = sink.Multi
	ValidationError     = sink.ValidationError
)

// Sentinel errors.
var (
	ErrClosed           = sink.ErrClosed
	ErrChecksumMismatch = sink.ErrChecksumMismatch
	ErrInvalidSnapshot  = sink.ErrInvalidSnapshot
)

// NewRecorder creates an empty in-memory Recorder.
func NewRecorder() *Recorder {
	return sink.NewRecorder()
}

// NewLogPublisher creates a LogPublisher. A nil logger means log.Default().
func NewLogPublisher(logger *log.Logger) *LogPublisher {
	return sink.NewLogPublisher(logger)
}

// NewSnapshotWriter creates a writer that saves a SafeTensors file on Close.
func NewSnapshotWriter(path string, metadata map[string]string) *SnapshotWriter {
	return sink.NewSnapshotWriter(path, metadata)
}

// ReadSnapshot loads a snapshot file.
func ReadSnapshot(path string) (*Snapshot, error) {
	return sink.ReadSnapshot(path)
}

// NewPrometheusPublisher registers summary gauges on reg.
func NewPrometheusPublisher(reg *prometheus.Registry, namespace string) *PrometheusPublisher {
	return sink.NewPrometheusPublisher(reg, namespace)
}

// NewMulti creates a concurrent fan-out over sinks.
func NewMulti(sinks ...autodiff.Publisher) *Multi {
	return sink.NewMulti(sinks...)
}

// Summarize computes descriptive statistics over data.
func Summarize(data []float64) Summary {
	return sink.Summarize(data)
}

// SnapshotKey returns the file key for an array published at step.
func SnapshotKey(name string, step int64) string {
	return sink.SnapshotKey(name, step)
}

// WriteSnapshot writes arrays directly to a SafeTensors file.
func WriteSnapshot(path string, tensors map[string]*tensor.RawTensor, metadata map[string]string) error {
	return sink.WriteSnapshot(path, tensors, metadata)
}
