// Copyright 2025 The DeepLearningWithPyTorch Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package autodiff_test

import (
	"fmt"

	"github.com/qpg93/DeepLearningWithPyTorch/autodiff"
	"github.com/qpg93/DeepLearningWithPyTorch/tensor"
)

func Example() {
	g := autodiff.NewGraph(autodiff.DefaultConfig())
	x, _ := g.Ones(tensor.Shape{2, 2}, autodiff.RequiresGrad())
	y, _ := autodiff.AddScalar(x, 2)
	yy, _ := autodiff.Mul(y, y)
	z, _ := autodiff.MulScalar(yy, 3)
	out, _ := autodiff.Mean(z)

	fmt.Println(y)
	fmt.Println(out)
	if err := out.Backward(); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(x.Grad())
	// Output:
	// tensor([[3, 3], [3, 3]], grad_fn=<AddScalarBackward>)
	// tensor(27, grad_fn=<MeanBackward>)
	// tensor([[4.5, 4.5], [4.5, 4.5]])
}

func ExampleValue_BackwardWith() {
	g := autodiff.NewGraph(autodiff.DefaultConfig())
	x, _ := g.NewValue([]float64{1, 2, 3}, tensor.Shape{3}, autodiff.RequiresGrad())
	y, _ := autodiff.MulScalar(x, 4)

	seed, _ := autodiff.Seed([]float64{0.1, 1.0, 0.0001}, tensor.Shape{3})
	if err := y.BackwardWith(autodiff.BackwardConfig{Seed: seed}); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(x.Grad())
	// Output: tensor([0.4, 4, 0.0004])
}

func ExampleGraph_NoGrad() {
	g := autodiff.NewGraph(autodiff.DefaultConfig())
	x, _ := g.Ones(tensor.Shape{3}, autodiff.RequiresGrad())

	_ = g.NoGrad(func() error {
		y, err := autodiff.PowScalar(x, 2)
		if err != nil {
			return err
		}
		fmt.Println(y.RequiresGrad())
		return nil
	})
	fmt.Println(x.Detach().RequiresGrad())
	// Output:
	// false
	// false
}
