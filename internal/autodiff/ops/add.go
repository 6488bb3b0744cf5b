package ops

import "github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"

// AddOp represents an element-wise addition operation: output = a + b.
//
// Backward pass:
//   - d(a+b)/da = 1, so grad_a = outputGrad
//   - d(a+b)/db = 1, so grad_b = outputGrad
//
// If broadcasting was used in the forward pass, each gradient is summed over
// the broadcast dimensions to match its operand's shape.
type AddOp struct {
	aShape tensor.Shape
	bShape tensor.Shape
}

// NewAddOp creates a new AddOp. Only the operand shapes are saved.
func NewAddOp(a, b *tensor.RawTensor) *AddOp {
	return &AddOp{aShape: a.Shape().Clone(), bShape: b.Shape().Clone()}
}

// Name returns the grad_fn label.
func (op *AddOp) Name() string { return "AddBackward" }

// Backward computes input gradients for addition.
func (op *AddOp) Backward(outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
	return reduceBoth(outputGrad, outputGrad, op.aShape, op.bShape)
}

// reduceBoth sums ga and gb down to their operands' shapes.
func reduceBoth(ga, gb *tensor.RawTensor, aShape, bShape tensor.Shape) ([]*tensor.RawTensor, error) {
	gradA, err := tensor.SumTo(ga, aShape)
	if err != nil {
		return nil, err
	}
	gradB, err := tensor.SumTo(gb, bShape)
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{gradA, gradB}, nil
}
