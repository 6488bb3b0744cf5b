package ops

import "github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"

// SumOp represents a reduction over all elements: y = Σx.
//
// Backward pass:
//   - grad_x = broadcast(grad_y, x.shape)
type SumOp struct {
	inputShape tensor.Shape
}

// NewSumOp creates a new SumOp.
func NewSumOp(input *tensor.RawTensor) *SumOp {
	return &SumOp{inputShape: input.Shape().Clone()}
}

// Name returns the grad_fn label.
func (op *SumOp) Name() string { return "SumBackward" }

// Backward broadcasts the scalar gradient to the input shape.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
	g, err := tensor.BroadcastTo(outputGrad, op.inputShape)
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{g}, nil
}

// MeanOp represents the mean over all elements: y = Σx / n.
//
// Backward pass:
//   - grad_x = broadcast(grad_y / n, x.shape)
type MeanOp struct {
	inputShape tensor.Shape
}

// NewMeanOp creates a new MeanOp.
func NewMeanOp(input *tensor.RawTensor) *MeanOp {
	return &MeanOp{inputShape: input.Shape().Clone()}
}

// Name returns the grad_fn label.
func (op *MeanOp) Name() string { return "MeanBackward" }

// Backward spreads the gradient evenly over every input element.
func (op *MeanOp) Backward(outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
	n := float64(op.inputShape.NumElements())
	g, err := tensor.BroadcastTo(tensor.Scale(outputGrad, 1/n), op.inputShape)
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{g}, nil
}

// NormOp represents the L2 norm over all elements: y = sqrt(Σx²).
//
// Backward pass:
//   - grad_x = grad_y * x / y   (zero when y == 0)
type NormOp struct {
	input *tensor.RawTensor
	norm  float64
}

// NewNormOp creates a new NormOp from the input and the computed norm.
func NewNormOp(input *tensor.RawTensor, norm float64) *NormOp {
	return &NormOp{input: input, norm: norm}
}

// Name returns the grad_fn label.
func (op *NormOp) Name() string { return "NormBackward" }

// Backward computes the input gradient for the L2 norm.
func (op *NormOp) Backward(outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
	if op.norm == 0 {
		g, err := tensor.NewRaw(op.input.Shape())
		if err != nil {
			return nil, err
		}
		return []*tensor.RawTensor{g}, nil
	}
	return unary(outputGrad, tensor.Scale(op.input, 1/op.norm))
}
