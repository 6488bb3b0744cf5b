package ops

import "github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"

// ReLUOp represents the rectified linear unit: y = max(0, x).
//
// Backward pass:
//   - grad_input = grad_output where x > 0, else 0
type ReLUOp struct {
	input *tensor.RawTensor
}

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(input *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{input: input}
}

// Name returns the grad_fn label.
func (op *ReLUOp) Name() string { return "ReluBackward" }

// Backward masks the gradient with x > 0.
func (op *ReLUOp) Backward(outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
	mask := tensor.Map(op.input, func(v float64) float64 {
		if v > 0 {
			return 1
		}
		return 0
	})
	return unary(outputGrad, mask)
}
