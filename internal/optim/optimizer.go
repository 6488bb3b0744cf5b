// Package optim implements optimization algorithms over autodiff leaves.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Optimizers read each parameter's accumulated Grad and update its payload
// in place. Payloads are shared with any record that saved them, so step
// only after the backward passes that need the old values.
//
// Example usage:
//
//	opt := optim.NewSGD([]*autodiff.Value{w, b}, optim.SGDConfig{LR: 0.1})
//
//	for step := range steps {
//	    loss := computeLoss(w, b)
//	    if err := loss.Backward(); err != nil {
//	        return err
//	    }
//	    if err := opt.Step(); err != nil {
//	        return err
//	    }
//	    opt.ZeroGrad()
//	}
package optim

import (
	"errors"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/autodiff"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"
)

// ErrNotLeaf is returned when a parameter was produced by an operation.
var ErrNotLeaf = errors.New("parameter is not a leaf")

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies one update to every parameter that has a gradient.
	Step() error

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float64

	// SetLR updates the learning rate.
	SetLR(lr float64)

	// StateDict exports the optimizer buffers.
	StateDict() map[string]*tensor.RawTensor
}

// checkParam returns the gradient to apply, nil when the parameter did not
// take part in the last backward pass.
func checkParam(op string, p *autodiff.Value) (*tensor.RawTensor, error) {
	if !p.IsLeaf() {
		name := p.Name()
		if name == "" {
			name = p.GradFn()
		}
		return nil, &autodiff.FlagError{Op: op, Value: name, Err: ErrNotLeaf}
	}
	return p.Grad(), nil
}

func zeroGrads(params []*autodiff.Value) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
