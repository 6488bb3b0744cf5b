package ops

import "github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"

// LogOp represents the natural logarithm: y = log(x).
//
// Backward pass:
//   - grad_input = grad_output / x
type LogOp struct {
	input *tensor.RawTensor
}

// NewLogOp creates a new LogOp.
func NewLogOp(input *tensor.RawTensor) *LogOp {
	return &LogOp{input: input}
}

// Name returns the grad_fn label.
func (op *LogOp) Name() string { return "LogBackward" }

// Backward computes input gradient for log.
func (op *LogOp) Backward(outputGrad *tensor.RawTensor) ([]*tensor.RawTensor, error) {
	g, err := tensor.Div(outputGrad, op.input)
	if err != nil {
		return nil, err
	}
	return []*tensor.RawTensor{g}, nil
}
