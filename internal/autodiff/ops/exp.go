package ops

import "github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"

// ExpOp represents the exponential operation: y = exp(x).
//
// Backward pass:
//   - d(exp(x))/dx = exp(x) = y
//   - grad_input = grad_output * output
type ExpOp struct {
	output *tensor.RawTensor // exp(x)
}

// NewExpOp creates a new ExpOp.
func NewExpOp(output *tensor.RawTensor) *ExpOp {
	return &ExpOp{output: output}
}

// Name returns the grad_fn label.
func (op *ExpOp) Name() string { return "ExpBackward" }

// Backward computes input gradient for exp.
func (op *ExpOp) Backward(outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return unary(outputGrad, op.output)
}
