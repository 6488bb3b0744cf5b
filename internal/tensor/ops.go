package tensor

import (
	"fmt"
	"math"
	"sync/atomic"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/parallel"
)

// Kernels never modify their inputs; every result is a fresh tensor unless
// the function name ends in InPlace.

var kernelParallel atomic.Pointer[parallel.Config]

func init() {
	cfg := parallel.DefaultConfig()
	kernelParallel.Store(&cfg)
}

// SetParallelism configures how broadcasting kernels split their work.
func SetParallelism(cfg parallel.Config) {
	kernelParallel.Store(&cfg)
}

// Parallelism returns the active kernel parallelism settings.
func Parallelism() parallel.Config {
	return *kernelParallel.Load()
}

// Add returns a + b with broadcasting.
func Add(a, b *RawTensor) (*RawTensor, error) {
	return binary("add", a, b, floats.AddTo, func(x, y float64) float64 { return x + y })
}

// Sub returns a - b with broadcasting.
func Sub(a, b *RawTensor) (*RawTensor, error) {
	return binary("sub", a, b, floats.SubTo, func(x, y float64) float64 { return x - y })
}

// Mul returns a * b (element-wise) with broadcasting.
func Mul(a, b *RawTensor) (*RawTensor, error) {
	return binary("mul", a, b, floats.MulTo, func(x, y float64) float64 { return x * y })
}

// Div returns a / b (element-wise) with broadcasting.
func Div(a, b *RawTensor) (*RawTensor, error) {
	return binary("div", a, b, floats.DivTo, func(x, y float64) float64 { return x / y })
}

func binary(
	op string,
	a, b *RawTensor,
	same func(dst, s, t []float64) []float64,
	elem func(x, y float64) float64,
) (*RawTensor, error) {
	if a.shape.Equal(b.shape) {
		out := make([]float64, len(a.data))
		same(out, a.data, b.data)
		return wrap(out, a.shape), nil
	}

	shape, _, err := BroadcastShapes(a.shape, b.shape)
	if err != nil {
		if se, ok := err.(*ShapeError); ok {
			se.Op = op
		}
		return nil, err
	}

	out := make([]float64, shape.NumElements())
	outStrides := shape.ComputeStrides()
	aStrides := broadcastStrides(a.shape, shape)
	bStrides := broadcastStrides(b.shape, shape)

	parallel.For(len(out), func(i int) {
		ai := sourceOffset(i, outStrides, aStrides)
		bi := sourceOffset(i, outStrides, bStrides)
		out[i] = elem(a.data[ai], b.data[bi])
	}, Parallelism())

	return wrap(out, shape), nil
}

// broadcastStrides returns, for every dimension of dst, the stride to use in
// src. Broadcast and missing dimensions get stride 0.
func broadcastStrides(src, dst Shape) []int {
	srcStrides := src.ComputeStrides()
	out := make([]int, len(dst))
	off := len(dst) - len(src)
	for i := range dst {
		j := i - off
		if j < 0 || src[j] == 1 {
			continue
		}
		out[i] = srcStrides[j]
	}
	return out
}

// sourceOffset maps a flat index in the broadcast result back to the flat
// index of the element it was read from.
func sourceOffset(i int, dstStrides, srcStrides []int) int {
	off := 0
	for d, st := range dstStrides {
		coord := i / st
		i %= st
		off += coord * srcStrides[d]
	}
	return off
}

// Map applies f to every element.
func Map(r *RawTensor, f func(float64) float64) *RawTensor {
	out := make([]float64, len(r.data))
	for i, v := range r.data {
		out[i] = f(v)
	}
	return wrap(out, r.shape)
}

// Scale returns s * r.
func Scale(r *RawTensor, s float64) *RawTensor {
	out := append([]float64(nil), r.data...)
	floats.Scale(s, out)
	return wrap(out, r.shape)
}

// AddConst returns r + c.
func AddConst(r *RawTensor, c float64) *RawTensor {
	out := append([]float64(nil), r.data...)
	floats.AddConst(c, out)
	return wrap(out, r.shape)
}

// Neg returns -r.
func Neg(r *RawTensor) *RawTensor {
	return Scale(r, -1)
}

// Pow returns r raised element-wise to p.
func Pow(r *RawTensor, p float64) *RawTensor {
	return Map(r, func(v float64) float64 { return math.Pow(v, p) })
}

// Sum returns the scalar sum of all elements.
func Sum(r *RawTensor) *RawTensor {
	return Scalar(floats.Sum(r.data))
}

// Mean returns the scalar mean of all elements.
func Mean(r *RawTensor) *RawTensor {
	return Scalar(floats.Sum(r.data) / float64(len(r.data)))
}

// Norm returns the scalar L2 norm of all elements.
func Norm(r *RawTensor) *RawTensor {
	return Scalar(floats.Norm(r.data, 2))
}

// BroadcastTo expands r to shape following broadcasting rules.
func BroadcastTo(r *RawTensor, shape Shape) (*RawTensor, error) {
	if r.shape.Equal(shape) {
		return r.Clone(), nil
	}
	if !broadcastable(r.shape, shape) {
		return nil, &ShapeError{Op: "broadcast_to", Shapes: []Shape{r.shape.Clone(), shape.Clone()}}
	}
	out := make([]float64, shape.NumElements())
	outStrides := shape.ComputeStrides()
	srcStrides := broadcastStrides(r.shape, shape)
	parallel.For(len(out), func(i int) {
		out[i] = r.data[sourceOffset(i, outStrides, srcStrides)]
	}, Parallelism())
	return wrap(out, shape), nil
}

// SumTo reduces r to shape by summing over the dimensions that broadcasting
// expanded. It is the adjoint of BroadcastTo.
//
// Example:
//
//	Forward: a(3,1) + b(3,4) -> c(3,4)  (a was broadcast along dim 1)
//	Backward: SumTo(grad_c, (3,1)) -> grad_a
func SumTo(r *RawTensor, shape Shape) (*RawTensor, error) {
	if r.shape.Equal(shape) {
		return r.Clone(), nil
	}
	if !broadcastable(shape, r.shape) {
		return nil, &ShapeError{Op: "sum_to", Shapes: []Shape{r.shape.Clone(), shape.Clone()}}
	}
	out := make([]float64, shape.NumElements())
	srcStrides := r.shape.ComputeStrides()
	dstStrides := broadcastStrides(shape, r.shape)
	// Sequential: several source elements land in the same output slot.
	for i, v := range r.data {
		out[sourceOffset(i, srcStrides, dstStrides)] += v
	}
	return wrap(out, shape), nil
}

// MatMul multiplies two 2-D tensors: (m,k) @ (k,n) -> (m,n).
func MatMul(a, b *RawTensor) (*RawTensor, error) {
	if len(a.shape) != 2 || len(b.shape) != 2 || a.shape[1] != b.shape[0] {
		return nil, &ShapeError{
			Op:      "matmul",
			Shapes:  []Shape{a.shape.Clone(), b.shape.Clone()},
			Details: "need (m,k) @ (k,n)",
		}
	}
	m, n := a.shape[0], b.shape[1]
	am := mat.NewDense(a.shape[0], a.shape[1], a.data)
	bm := mat.NewDense(b.shape[0], b.shape[1], b.data)
	out := mat.NewDense(m, n, nil)
	out.Mul(am, bm)
	return wrap(out.RawMatrix().Data, Shape{m, n}), nil
}

// Transpose swaps the two axes of a 2-D tensor.
func Transpose(r *RawTensor) (*RawTensor, error) {
	if len(r.shape) != 2 {
		return nil, &ShapeError{Op: "transpose", Shapes: []Shape{r.shape.Clone()}, Details: "need a 2-D tensor"}
	}
	rows, cols := r.shape[0], r.shape[1]
	src := mat.NewDense(rows, cols, r.data)
	out := mat.NewDense(cols, rows, nil)
	out.Copy(src.T())
	return wrap(out.RawMatrix().Data, Shape{cols, rows}), nil
}

// AddInPlace accumulates src into dst. Shapes must match exactly.
func AddInPlace(dst, src *RawTensor) error {
	return AddScaledInPlace(dst, 1, src)
}

// AddScaledInPlace computes dst += alpha * src. Shapes must match exactly.
func AddScaledInPlace(dst *RawTensor, alpha float64, src *RawTensor) error {
	if !dst.shape.Equal(src.shape) {
		return &ShapeError{
			Op:      "accumulate",
			Shapes:  []Shape{dst.shape.Clone(), src.shape.Clone()},
			Details: fmt.Sprintf("cannot accumulate %d elements into %d", len(src.data), len(dst.data)),
		}
	}
	floats.AddScaled(dst.data, alpha, src.data)
	return nil
}

// ScaleInPlace multiplies every element of r by s.
func ScaleInPlace(r *RawTensor, s float64) {
	floats.Scale(s, r.data)
}

// ZeroInPlace sets every element of r to zero.
func ZeroInPlace(r *RawTensor) {
	clear(r.data)
}
