package optim

import (
	"fmt"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/autodiff"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD struct {
	params     []*autodiff.Value
	lr         float64
	momentum   float64
	velocities map[*autodiff.Value]*tensor.RawTensor
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 `yaml:"lr"`       // Learning rate (default: 0.01)
	Momentum float64 `yaml:"momentum"` // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
func NewSGD(params []*autodiff.Value, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		params:     append([]*autodiff.Value(nil), params...),
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*autodiff.Value]*tensor.RawTensor),
	}
}

// Step performs a single optimization step.
//
// Parameters with no gradient are skipped. A parameter that is not a leaf
// fails the whole step before anything is updated.
func (s *SGD) Step() error {
	grads := make([]*tensor.RawTensor, len(s.params))
	for i, p := range s.params {
		g, err := checkParam("sgd.step", p)
		if err != nil {
			return err
		}
		grads[i] = g
	}

	for i, p := range s.params {
		grad := grads[i]
		if grad == nil {
			continue
		}
		update := grad
		if s.momentum != 0 {
			velocity, ok := s.velocities[p]
			if !ok {
				velocity = grad.Clone()
				s.velocities[p] = velocity
			} else {
				tensor.ScaleInPlace(velocity, s.momentum)
				if err := tensor.AddInPlace(velocity, grad); err != nil {
					return err
				}
			}
			update = velocity
		}
		if err := tensor.AddScaledInPlace(p.Data(), -s.lr, update); err != nil {
			return err
		}
	}
	return nil
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	zeroGrads(s.params)
}

// LR returns the current learning rate.
func (s *SGD) LR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}

// StateDict returns the velocity buffers keyed "velocity.{param_index}".
// Without momentum, returns an empty map.
func (s *SGD) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for i, p := range s.params {
		if velocity, ok := s.velocities[p]; ok {
			stateDict[fmt.Sprintf("velocity.%d", i)] = velocity
		}
	}
	return stateDict
}

// LoadStateDict restores velocity buffers exported by StateDict.
func (s *SGD) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if s.momentum == 0 {
		return nil
	}

	velocities := make(map[*autodiff.Value]*tensor.RawTensor)
	for i, p := range s.params {
		v, ok := stateDict[fmt.Sprintf("velocity.%d", i)]
		if !ok {
			continue
		}
		if !v.Shape().Equal(p.Shape()) {
			return fmt.Errorf("velocity shape mismatch for parameter %d: expected %v, got %v",
				i, p.Shape(), v.Shape())
		}
		velocities[p] = v.Clone()
	}
	s.velocities = velocities
	return nil
}
