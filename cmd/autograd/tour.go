package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/autodiff"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/config"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"
)

// runTour walks through the define-by-run workflow on one graph and returns
// its statistics.
func runTour(w io.Writer, cfg config.Config) (autodiff.GraphStats, error) {
	g := autodiff.NewGraph(cfg.Graph)

	steps := []struct {
		title string
		run   func(io.Writer, *autodiff.Graph) error
	}{
		{"Recording operations", tourRecording},
		{"Changing requires_grad in place", tourSetRequiresGrad},
		{"Vector-Jacobian product", tourVJP},
		{"Stopping gradient tracking", tourStopTracking},
	}
	for _, s := range steps {
		fmt.Fprintf(w, "\n== %s ==\n", s.title)
		if err := s.run(w, g); err != nil {
			return g.Stats(), fmt.Errorf("%s: %w", s.title, err)
		}
	}
	return g.Stats(), nil
}

// tourRecording builds out = mean(3 * (x+2)²) and backpropagates.
func tourRecording(w io.Writer, g *autodiff.Graph) error {
	x, err := g.Ones(tensor.Shape{2, 2}, autodiff.RequiresGrad(), autodiff.Named("x"))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "x = %v\n", x)

	y, err := autodiff.AddScalar(x, 2)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "y = x + 2 = %v\n", y)
	fmt.Fprintf(w, "y.grad_fn = %s\n", y.GradFn())

	yy, err := autodiff.Mul(y, y)
	if err != nil {
		return err
	}
	z, err := autodiff.MulScalar(yy, 3)
	if err != nil {
		return err
	}
	out, err := autodiff.Mean(z)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "z = y * y * 3 = %v\n", z)
	fmt.Fprintf(w, "out = z.mean() = %v\n", out)

	fmt.Fprintln(w, "graph:")
	if err := autodiff.Describe(w, out); err != nil {
		return err
	}

	if err := out.Backward(); err != nil {
		return err
	}
	fmt.Fprintf(w, "after out.backward(): x.grad = %v\n", x.Grad())
	return nil
}

// tourSetRequiresGrad shows that the flag propagates from inputs and can be
// switched on an existing Value.
func tourSetRequiresGrad(w io.Writer, g *autodiff.Graph) error {
	a, err := g.NewValue([]float64{0.5, -1.5, 2, 3}, tensor.Shape{2, 2})
	if err != nil {
		return err
	}
	num, err := autodiff.MulScalar(a, 3)
	if err != nil {
		return err
	}
	den, err := autodiff.AddScalar(a, -1)
	if err != nil {
		return err
	}
	if a, err = autodiff.Div(num, den); err != nil {
		return err
	}
	fmt.Fprintf(w, "a = (a * 3) / (a - 1); a.requires_grad = %t\n", a.RequiresGrad())

	a.SetRequiresGrad(true)
	fmt.Fprintf(w, "a.requires_grad_(True); a.requires_grad = %t\n", a.RequiresGrad())

	sq, err := autodiff.Mul(a, a)
	if err != nil {
		return err
	}
	b, err := autodiff.Sum(sq)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "b = (a * a).sum(); b.grad_fn = %s\n", b.GradFn())
	return nil
}

// tourVJP doubles x until the norm passes 1000, then backpropagates an
// explicit seed.
func tourVJP(w io.Writer, g *autodiff.Graph) error {
	x, err := g.NewValue([]float64{0.3, -1.1, 0.8}, tensor.Shape{3}, autodiff.RequiresGrad(), autodiff.Named("x"))
	if err != nil {
		return err
	}
	y, err := autodiff.MulScalar(x, 2)
	if err != nil {
		return err
	}

	doublings := 1
	for {
		var norm float64
		err := g.NoGrad(func() error {
			n, err := autodiff.Norm(y.Detach())
			if err != nil {
				return err
			}
			norm, err = n.Item()
			return err
		})
		if err != nil {
			return err
		}
		if norm >= 1000 {
			break
		}
		if y, err = autodiff.MulScalar(y, 2); err != nil {
			return err
		}
		doublings++
	}
	fmt.Fprintf(w, "y = x * 2^%d = %v\n", doublings, y)

	seed, err := tensor.FromSlice([]float64{0.1, 1.0, 0.0001}, tensor.Shape{3})
	if err != nil {
		return err
	}
	if err := y.BackwardWith(autodiff.BackwardConfig{Seed: seed}); err != nil {
		return err
	}
	fmt.Fprintf(w, "y.backward(%v): x.grad = %v\n", seed, x.Grad())
	return nil
}

// tourStopTracking compares recording, NoGrad and Detach.
func tourStopTracking(w io.Writer, g *autodiff.Graph) error {
	x, err := g.NewValue([]float64{0.3, -1.1, 0.8}, tensor.Shape{3}, autodiff.RequiresGrad(), autodiff.Named("x"))
	if err != nil {
		return err
	}
	sq, err := autodiff.PowScalar(x, 2)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "x.requires_grad = %t; (x ** 2).requires_grad = %t\n", x.RequiresGrad(), sq.RequiresGrad())

	err = g.NoGrad(func() error {
		sq, err := autodiff.PowScalar(x, 2)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "with no_grad: (x ** 2).requires_grad = %t\n", sq.RequiresGrad())
		return nil
	})
	var flagErr *autodiff.FlagError
	switch {
	case errors.As(err, &flagErr):
		fmt.Fprintf(w, "with no_grad (strict graph): %v\n", flagErr)
	case err != nil:
		return err
	}

	d := x.Detach()
	fmt.Fprintf(w, "y = x.detach(); y.requires_grad = %t; x.eq(y).all() = %t\n",
		d.RequiresGrad(), d.Data().AllClose(x.Data(), 0))
	return nil
}
