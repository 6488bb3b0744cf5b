package optim

import (
	"fmt"
	"math"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/autodiff"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	params []*autodiff.Value
	lr     float64
	beta1  float64
	beta2  float64
	eps    float64
	t      int                                   // Timestep for bias correction
	m      map[*autodiff.Value]*tensor.RawTensor // First moment estimates
	v      map[*autodiff.Value]*tensor.RawTensor // Second moment estimates
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float64    `yaml:"lr"`    // Learning rate (default: 0.001)
	Betas [2]float64 `yaml:"betas"` // Running average coefficients (default: [0.9, 0.999])
	Eps   float64    `yaml:"eps"`   // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer, filling unset hyperparameters with
// their defaults.
func NewAdam(params []*autodiff.Value, config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam{
		params: append([]*autodiff.Value(nil), params...),
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      make(map[*autodiff.Value]*tensor.RawTensor),
		v:      make(map[*autodiff.Value]*tensor.RawTensor),
	}
}

// Step performs a single optimization step. Parameters with no gradient are
// skipped; a non-leaf parameter fails the step before anything is updated.
func (a *Adam) Step() error {
	grads := make([]*tensor.RawTensor, len(a.params))
	for i, p := range a.params {
		g, err := checkParam("adam.step", p)
		if err != nil {
			return err
		}
		grads[i] = g
	}

	a.t++
	bc1 := 1 - math.Pow(a.beta1, float64(a.t))
	bc2 := 1 - math.Pow(a.beta2, float64(a.t))

	for i, p := range a.params {
		grad := grads[i]
		if grad == nil {
			continue
		}
		m, ok := a.m[p]
		if !ok {
			m, _ = tensor.NewRaw(p.Shape())
			a.m[p] = m
		}
		v, ok := a.v[p]
		if !ok {
			v, _ = tensor.NewRaw(p.Shape())
			a.v[p] = v
		}

		gData, mData, vData := grad.Data(), m.Data(), v.Data()
		pData := p.Data().Data()
		for j := range pData {
			g := gData[j]
			mData[j] = a.beta1*mData[j] + (1-a.beta1)*g
			vData[j] = a.beta2*vData[j] + (1-a.beta2)*g*g
			mHat := mData[j] / bc1
			vHat := vData[j] / bc2
			pData[j] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
		}
	}
	return nil
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam) ZeroGrad() {
	zeroGrads(a.params)
}

// LR returns the current learning rate.
func (a *Adam) LR() float64 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float64) {
	a.lr = lr
}

// Timestep returns the number of steps taken.
func (a *Adam) Timestep() int {
	return a.t
}

// StateDict returns the moment buffers keyed "m.{i}" and "v.{i}" plus the
// timestep as the scalar "step".
func (a *Adam) StateDict() map[string]*tensor.RawTensor {
	stateDict := map[string]*tensor.RawTensor{
		"step": tensor.Scalar(float64(a.t)),
	}
	for i, p := range a.params {
		if m, ok := a.m[p]; ok {
			stateDict[fmt.Sprintf("m.%d", i)] = m
		}
		if v, ok := a.v[p]; ok {
			stateDict[fmt.Sprintf("v.%d", i)] = v
		}
	}
	return stateDict
}
