// Copyright 2025 The DeepLearningWithPyTorch Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides define-by-run reverse-mode automatic
// differentiation.
//
// Every Value belongs to a Graph. Operations run eagerly; when an input
// requires grad the output remembers how it was produced, and Backward
// accumulates gradients into the leaves.
//
// Example:
//
//	import (
//	    "github.com/qpg93/DeepLearningWithPyTorch/autodiff"
//	    "github.com/qpg93/DeepLearningWithPyTorch/tensor"
//	)
//
//	func main() {
//	    g := autodiff.NewGraph(autodiff.DefaultConfig())
//	    x, _ := g.Ones(tensor.Shape{2, 2}, autodiff.RequiresGrad())
//	    y, _ := autodiff.AddScalar(x, 2)
//	    z, _ := autodiff.Mul(y, y)
//	    out, _ := autodiff.Mean(z)
//
//	    _ = out.Backward()
//	    fmt.Println(x.Grad()) // tensor([[1.5, 1.5], [1.5, 1.5]])
//	}
package autodiff

import (
	"context"
	"io"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/autodiff"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"
)

// Graph owns the operation records of one computation.
type Graph = autodiff.Graph

// Config controls graph behaviour.
type Config = autodiff.Config

// GraphStats is a snapshot of graph bookkeeping.
type GraphStats = autodiff.GraphStats

// Value is a differentiable container.
type Value = autodiff.Value

// ValueOption configures a Value at construction.
type ValueOption = autodiff.ValueOption

// BackwardConfig controls a single backward pass.
type BackwardConfig = autodiff.BackwardConfig

// Publisher receives named arrays at a step.
type Publisher = autodiff.Publisher

// Error types.
type (
	ShapeError = autodiff.ShapeError
	GraphError = autodiff.GraphError
	FlagError  = autodiff.FlagError
)

// Sentinel errors.
var (
	ErrShapeMismatch = autodiff.ErrShapeMismatch
	ErrNoGradPath    = autodiff.ErrNoGradPath
	ErrGraphReleased = autodiff.ErrGraphReleased
	ErrForeignGraph  = autodiff.ErrForeignGraph
	ErrGradDisabled  = autodiff.ErrGradDisabled
)

// DefaultConfig returns the default graph configuration.
func DefaultConfig() Config {
	return autodiff.DefaultConfig()
}

// NewGraph creates a graph with recording enabled.
func NewGraph(cfg Config) *Graph {
	return autodiff.NewGraph(cfg)
}

// RequiresGrad marks a new Value as participating in differentiation.
func RequiresGrad() ValueOption {
	return autodiff.RequiresGrad()
}

// Named sets a display name.
func Named(name string) ValueOption {
	return autodiff.Named(name)
}

// Describe writes the grad_fn tree rooted at v.
func Describe(w io.Writer, v *Value) error {
	return autodiff.Describe(w, v)
}

// PublishValues publishes payloads and gradients of values to p.
func PublishValues(ctx context.Context, p Publisher, step int64, values map[string]*Value) error {
	return autodiff.PublishValues(ctx, p, step, values)
}

// Binary operations broadcast their operands.

// Add returns a + b.
func Add(a, b *Value) (*Value, error) { return autodiff.Add(a, b) }

// Sub returns a - b.
func Sub(a, b *Value) (*Value, error) { return autodiff.Sub(a, b) }

// Mul returns a * b element-wise.
func Mul(a, b *Value) (*Value, error) { return autodiff.Mul(a, b) }

// Div returns a / b element-wise.
func Div(a, b *Value) (*Value, error) { return autodiff.Div(a, b) }

// MatMul multiplies two 2-D Values.
func MatMul(a, b *Value) (*Value, error) { return autodiff.MatMul(a, b) }

// AddScalar returns x + c.
func AddScalar(x *Value, c float64) (*Value, error) { return autodiff.AddScalar(x, c) }

// MulScalar returns x * c.
func MulScalar(x *Value, c float64) (*Value, error) { return autodiff.MulScalar(x, c) }

// PowScalar returns x raised element-wise to p.
func PowScalar(x *Value, p float64) (*Value, error) { return autodiff.PowScalar(x, p) }

// Neg returns -x.
func Neg(x *Value) (*Value, error) { return autodiff.Neg(x) }

// Exp returns e^x element-wise.
func Exp(x *Value) (*Value, error) { return autodiff.Exp(x) }

// Log returns the natural logarithm element-wise.
func Log(x *Value) (*Value, error) { return autodiff.Log(x) }

// ReLU returns max(0, x) element-wise.
func ReLU(x *Value) (*Value, error) { return autodiff.ReLU(x) }

// Tanh returns tanh(x) element-wise.
func Tanh(x *Value) (*Value, error) { return autodiff.Tanh(x) }

// Sigmoid returns the logistic function element-wise.
func Sigmoid(x *Value) (*Value, error) { return autodiff.Sigmoid(x) }

// Sum reduces all elements to a scalar.
func Sum(x *Value) (*Value, error) { return autodiff.Sum(x) }

// Mean reduces all elements to their mean.
func Mean(x *Value) (*Value, error) { return autodiff.Mean(x) }

// Norm reduces all elements to their L2 norm.
func Norm(x *Value) (*Value, error) { return autodiff.Norm(x) }

// Seed builds an explicit seed for BackwardWith.
func Seed(data []float64, shape tensor.Shape) (*tensor.RawTensor, error) {
	return tensor.FromSlice(data, shape)
}
