// Copyright 2025 The DeepLearningWithPyTorch Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/qpg93/DeepLearningWithPyTorch/internal/parallel"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3} is a 2×3 matrix; Shape{} is a scalar.
type Shape = tensor.Shape

// RawTensor is a dense row-major float64 array.
//
// Data() exposes the backing slice without copying; Clone() makes a deep copy.
type RawTensor = tensor.RawTensor

// ShapeError reports operand shapes that cannot be reconciled.
type ShapeError = tensor.ShapeError

// ErrShapeMismatch is matched by every ShapeError via errors.Is.
var ErrShapeMismatch = tensor.ErrShapeMismatch

// ParallelConfig controls how kernels split work across goroutines.
type ParallelConfig = parallel.Config

// NewRaw creates a zero-filled tensor.
func NewRaw(shape Shape) (*RawTensor, error) {
	return tensor.NewRaw(shape)
}

// FromSlice creates a tensor holding a copy of data.
func FromSlice(data []float64, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float64) (*RawTensor, error) {
	return tensor.Full(shape, value)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) (*RawTensor, error) {
	return tensor.Ones(shape)
}

// Scalar creates a zero-dimensional tensor.
func Scalar(v float64) *RawTensor {
	return tensor.Scalar(v)
}

// BroadcastShapes computes the broadcast shape of a and b. The boolean
// reports whether any broadcasting was needed.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}

// Add returns a + b with broadcasting.
func Add(a, b *RawTensor) (*RawTensor, error) {
	return tensor.Add(a, b)
}

// Sub returns a - b with broadcasting.
func Sub(a, b *RawTensor) (*RawTensor, error) {
	return tensor.Sub(a, b)
}

// Mul returns a * b element-wise with broadcasting.
func Mul(a, b *RawTensor) (*RawTensor, error) {
	return tensor.Mul(a, b)
}

// Div returns a / b element-wise with broadcasting.
func Div(a, b *RawTensor) (*RawTensor, error) {
	return tensor.Div(a, b)
}

// MatMul multiplies two 2-D tensors.
func MatMul(a, b *RawTensor) (*RawTensor, error) {
	return tensor.MatMul(a, b)
}

// DefaultParallelConfig returns settings derived from the host CPU.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// SetParallelism replaces the process-wide kernel parallelism settings.
func SetParallelism(cfg ParallelConfig) {
	tensor.SetParallelism(cfg)
}
