package ops

import "github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"

// SigmoidOp represents the logistic function: y = 1 / (1 + exp(-x)).
//
// Backward pass:
//   - grad_input = grad_output * y * (1 - y)
type SigmoidOp struct {
	output *tensor.RawTensor
}

// NewSigmoidOp creates a new SigmoidOp.
func NewSigmoidOp(output *tensor.RawTensor) *SigmoidOp {
	return &SigmoidOp{output: output}
}

// Name returns the grad_fn label.
func (op *SigmoidOp) Name() string { return "SigmoidBackward" }

// Backward computes input gradient for sigmoid.
func (op *SigmoidOp) Backward(outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
	local := tensor.Map(op.output, func(y float64) float64 { return y * (1 - y) })
	return unary(outputGrad, local)
}
