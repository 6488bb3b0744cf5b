package ops

import (
	"math"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"
)

// AddScalarOp represents output = x + c for a constant c.
// The constant does not participate in differentiation: grad_x = outputGrad.
type AddScalarOp struct{}

// NewAddScalarOp creates a new AddScalarOp.
func NewAddScalarOp() *AddScalarOp { return &AddScalarOp{} }

// Name returns the grad_fn label.
func (op *AddScalarOp) Name() string { return "AddScalarBackward" }

// Backward passes the gradient through unchanged.
func (op *AddScalarOp) Backward(outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return []*tensor.RawTensor{outputGrad.Clone()}, nil
}

// MulScalarOp represents output = x * c for a constant c: grad_x = outputGrad * c.
type MulScalarOp struct {
	factor float64
}

// NewMulScalarOp creates a new MulScalarOp.
func NewMulScalarOp(factor float64) *MulScalarOp { return &MulScalarOp{factor: factor} }

// Name returns the grad_fn label.
func (op *MulScalarOp) Name() string { return "MulScalarBackward" }

// Backward scales the gradient by the constant.
func (op *MulScalarOp) Backward(outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return []*tensor.RawTensor{tensor.Scale(outputGrad, op.factor)}, nil
}

// NegOp represents output = -x: grad_x = -outputGrad.
type NegOp struct{}

// NewNegOp creates a new NegOp.
func NewNegOp() *NegOp { return &NegOp{} }

// Name returns the grad_fn label.
func (op *NegOp) Name() string { return "NegBackward" }

// Backward negates the gradient.
func (op *NegOp) Backward(outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return []*tensor.RawTensor{tensor.Neg(outputGrad)}, nil
}

// PowScalarOp represents output = x^p for a constant exponent p.
//
// Backward pass:
//   - grad_x = outputGrad * p * x^(p-1)
type PowScalarOp struct {
	input    *tensor.RawTensor
	exponent float64
}

// NewPowScalarOp creates a new PowScalarOp.
func NewPowScalarOp(input *tensor.RawTensor, exponent float64) *PowScalarOp {
	return &PowScalarOp{input: input, exponent: exponent}
}

// Name returns the grad_fn label.
func (op *PowScalarOp) Name() string { return "PowBackward" }

// Backward computes the input gradient for x^p.
func (op *PowScalarOp) Backward(outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
	p := op.exponent
	local := tensor.Map(op.input, func(v float64) float64 {
		if p == 0 {
			return 0
		}
		return p * math.Pow(v, p-1)
	})
	return unary(outputGrad, local)
}

// unary returns [outputGrad * local] for element-wise rules.
func unary(outputGrad, local *tensor.RawTensor) ([]*tensor.RawTensor, error) {
	g, err := tensor.Mul(outputGrad, local)
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{g}, nil
}
