package ops

import "github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"

// SubOp represents an element-wise subtraction operation: output = a - b.
//
// Backward pass:
//   - grad_a = outputGrad
//   - grad_b = -outputGrad
type SubOp struct {
	aShape tensor.Shape
	bShape tensor.Shape
}

// NewSubOp creates a new SubOp.
func NewSubOp(a, b *tensor.RawTensor) *SubOp {
	return &SubOp{aShape: a.Shape().Clone(), bShape: b.Shape().Clone()}
}

// Name returns the grad_fn label.
func (op *SubOp) Name() string { return "SubBackward" }

// Backward computes input gradients for subtraction.
func (op *SubOp) Backward(outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return reduceBoth(outputGrad, tensor.Neg(outputGrad), op.aShape, op.bShape)
}
