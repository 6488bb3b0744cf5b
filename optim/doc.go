// Copyright 2025 The DeepLearningWithPyTorch Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms over autodiff leaves.
//
// # Overview
//
// This package contains:
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation with bias correction
//   - Optimizer interface for custom optimizers
//
// # Training Loop Pattern
//
//	opt := optim.NewSGD([]*autodiff.Value{w, b}, optim.SGDConfig{
//	    LR:       0.05,
//	    Momentum: 0.9,
//	})
//
//	for step := range steps {
//	    // 1. Zero gradients
//	    opt.ZeroGrad()
//
//	    // 2. Forward pass
//	    loss := lossFn(w, b)
//
//	    // 3. Backward pass
//	    if err := loss.Backward(); err != nil {
//	        return err
//	    }
//
//	    // 4. Update parameters
//	    if err := opt.Step(); err != nil {
//	        return err
//	    }
//
//	    // 5. Drop this step's records
//	    g.Reset()
//	}
package optim
