package ops

import "github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"

// MulOp represents an element-wise multiplication operation: output = a * b.
//
// Backward pass:
//   - d(a*b)/da = b, so grad_a = outputGrad * b
//   - d(a*b)/db = a, so grad_b = outputGrad * a
//
// Both operand payloads are saved at forward time.
type MulOp struct {
	a, b *tensor.RawTensor
}

// NewMulOp creates a new MulOp.
func NewMulOp(a, b *tensor.RawTensor) *MulOp {
	return &MulOp{a: a, b: b}
}

// Name returns the grad_fn label.
func (op *MulOp) Name() string { return "MulBackward" }

// Backward computes input gradients for multiplication.
func (op *MulOp) Backward(outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
	ga, err := tensor.Mul(outputGrad, op.b)
	if err != nil {
		return nil, err
	}
	gb, err := tensor.Mul(outputGrad, op.a)
	if err != nil {
		return nil, err
	}
	return reduceBoth(ga, gb, op.a.Shape(), op.b.Shape())
}
