// Package autodiff implements define-by-run reverse-mode automatic
// differentiation.
//
// Architecture:
//   - Graph: explicit context owning an arena of operation records
//   - Value: payload + gradient accumulator + requires-grad flag + grad_fn index
//   - ops.Operation: one backward rule per primitive (Add, Mul, Mean, ...)
//   - Backward engine: topological order, reverse walk, summed accumulation
//
// Operations execute eagerly. When an input requires grad and the graph is
// recording, the output carries a record of the call; Backward walks those
// records from a terminal Value down to the leaves.
//
// Usage:
//
//	g := autodiff.NewGraph(autodiff.DefaultConfig())
//	x, _ := g.Ones(tensor.Shape{2, 2}, autodiff.RequiresGrad())
//	y, _ := autodiff.AddScalar(x, 2)  // grad_fn=<AddScalarBackward>
//	z, _ := autodiff.Mul(y, y)
//	z, _ = autodiff.MulScalar(z, 3)
//	out, _ := autodiff.Mean(z)
//
//	_ = out.Backward()
//	fmt.Println(x.Grad()) // tensor([[4.5, 4.5], [4.5, 4.5]])
package autodiff
