// Package ops defines the backward rules recorded by the autodiff graph.
//
// Each primitive implements the Operation interface. The graph stores one
// Operation per forward call together with the call's inputs; an Operation
// only keeps the saved payloads its own rule needs.
//
// Supported operations:
//   - AddOp, SubOp: d(a±b)/da = 1, d(a±b)/db = ±1
//   - MulOp: d(a*b)/da = b, d(a*b)/db = a
//   - DivOp: d(a/b)/da = 1/b, d(a/b)/db = -a/b²
//   - NegOp, AddScalarOp, MulScalarOp, PowScalarOp
//   - ExpOp, LogOp, ReLUOp, TanhOp, SigmoidOp
//   - SumOp, MeanOp, NormOp: reductions over all elements
//   - MatMulOp: d(A@B)/dA = grad@Bᵀ, d(A@B)/dB = Aᵀ@grad
package ops

import "github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"

// Operation is the backward rule of one recorded primitive.
type Operation interface {
	// Name is the grad_fn label shown when narrating the graph, e.g. "MulBackward".
	Name() string

	// Backward computes gradients for inputs given the output gradient.
	// Returns one gradient per input, aligned positionally with the inputs
	// the operation was recorded with. Each gradient has its input's shape.
	//
	// Example for AddOp:
	//   outputGrad: dL/d(a+b)
	//   returns: [dL/d(a+b), dL/d(a+b)]
	Backward(outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error)
}
