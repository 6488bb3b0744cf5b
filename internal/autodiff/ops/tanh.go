package ops

import "github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"

// TanhOp represents the hyperbolic tangent: y = tanh(x).
//
// Backward pass:
//   - grad_input = grad_output * (1 - y²)
type TanhOp struct {
	output *tensor.RawTensor
}

// NewTanhOp creates a new TanhOp.
func NewTanhOp(output *tensor.RawTensor) *TanhOp {
	return &TanhOp{output: output}
}

// Name returns the grad_fn label.
func (op *TanhOp) Name() string { return "TanhBackward" }

// Backward computes input gradient for tanh.
func (op *TanhOp) Backward(outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
	local := tensor.Map(op.output, func(y float64) float64 { return 1 - y*y })
	return unary(outputGrad, local)
}
