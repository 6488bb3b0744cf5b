package ops

import "github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"

// MatMulOp represents matrix multiplication: output = a @ b.
//
// Backward pass:
//   - grad_a = outputGrad @ bᵀ
//   - grad_b = aᵀ @ outputGrad
type MatMulOp struct {
	a, b *tensor.RawTensor
}

// NewMatMulOp creates a new MatMulOp.
func NewMatMulOp(a, b *tensor.RawTensor) *MatMulOp {
	return &MatMulOp{a: a, b: b}
}

// Name returns the grad_fn label.
func (op *MatMulOp) Name() string { return "MmBackward" }

// Backward computes input gradients for matrix multiplication.
func (op *MatMulOp) Backward(outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
	bT, err := tensor.Transpose(op.b)
	if err != nil {
		return nil, err
	}
	gradA, err := tensor.MatMul(outputGrad, bT)
	if err != nil {
		return nil, err
	}

	aT, err := tensor.Transpose(op.a)
	if err != nil {
		return nil, err
	}
	gradB, err := tensor.MatMul(aT, outputGrad)
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{gradA, gradB}, nil
}
