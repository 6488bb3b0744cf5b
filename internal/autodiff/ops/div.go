package ops

import "github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"

// DivOp represents an element-wise division operation: output = a / b.
//
// Backward pass:
//   - grad_a = outputGrad / b
//   - grad_b = -outputGrad * a / b²
type DivOp struct {
	a, b *tensor.RawTensor
}

// NewDivOp creates a new DivOp.
func NewDivOp(a, b *tensor.RawTensor) *DivOp {
	return &DivOp{a: a, b: b}
}

// Name returns the grad_fn label.
func (op *DivOp) Name() string { return "DivBackward" }

// Backward computes input gradients for division.
func (op *DivOp) Backward(outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
	ga, err := tensor.Div(outputGrad, op.b)
	if err != nil {
		return nil, err
	}

	// grad_b = -(outputGrad / b) * (a / b)
	ratio, err := tensor.Div(op.a, op.b)
	if err != nil {
		return nil, err
	}
	gb, err := tensor.Mul(ga, ratio)
	if err != nil {
		return nil, err
	}
	return reduceBoth(ga, tensor.Neg(gb), op.a.Shape(), op.b.Shape())
}
