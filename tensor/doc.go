// Copyright 2025 The DeepLearningWithPyTorch Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense float64 arrays that autodiff Values carry.
//
// # Overview
//
// This package provides:
//   - RawTensor: row-major payload with shape and strides
//   - Shape: dimensions, with the empty shape meaning a scalar
//   - NumPy-style broadcasting for element-wise arithmetic
//   - ShapeError for operands that cannot be reconciled
//
// # Basic Usage
//
//	x, _ := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
//	b, _ := tensor.FromSlice([]float64{10, 20}, tensor.Shape{2})
//	y, _ := tensor.Add(x, b) // b is broadcast across rows
//	fmt.Println(y)           // tensor([[11, 22], [13, 24]])
//
// # Parallelism
//
// Large broadcasting kernels are split across goroutines. SetParallelism
// replaces the process-wide settings:
//
//	cfg := tensor.DefaultParallelConfig()
//	cfg.NumWorkers = 2
//	tensor.SetParallelism(cfg)
package tensor
