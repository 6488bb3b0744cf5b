package ops_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/autodiff/ops"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"
)

func raw(t *testing.T, data []float64, shape ...int) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.FromSlice(data, tensor.Shape(shape))
	require.NoError(t, err)
	return r
}

func backward(t *testing.T, op ops.Operation, grad *tensor.RawTensor) []*tensor.RawTensor {
	t.Helper()
	grads, err := op.Backward(grad)
	require.NoError(t, err)
	return grads
}

func TestAddOp_Backward(t *testing.T) {
	a := raw(t, []float64{1, 2, 3}, 3)
	b := raw(t, []float64{4, 5, 6}, 3)
	grads := backward(t, ops.NewAddOp(a, b), raw(t, []float64{1, 1, 1}, 3))

	require.Len(t, grads, 2)
	assert.Equal(t, []float64{1, 1, 1}, grads[0].Data())
	assert.Equal(t, []float64{1, 1, 1}, grads[1].Data())
	assert.Equal(t, "AddBackward", ops.NewAddOp(a, b).Name())
}

func TestAddOp_BroadcastBackward(t *testing.T) {
	// a(2,1) + b(3,) -> (2,3)
	a := raw(t, []float64{1, 2}, 2, 1)
	b := raw(t, []float64{1, 2, 3}, 3)
	g := raw(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)
	grads := backward(t, ops.NewAddOp(a, b), g)

	assert.True(t, grads[0].Shape().Equal(tensor.Shape{2, 1}))
	assert.Equal(t, []float64{6, 15}, grads[0].Data())
	assert.True(t, grads[1].Shape().Equal(tensor.Shape{3}))
	assert.Equal(t, []float64{5, 7, 9}, grads[1].Data())
}

func TestAddOp_GradientsDoNotAlias(t *testing.T) {
	a := raw(t, []float64{1}, 1)
	g := raw(t, []float64{1}, 1)
	grads := backward(t, ops.NewAddOp(a, a), g)

	grads[0].Data()[0] = 42
	assert.Equal(t, 1.0, grads[1].Data()[0])
	assert.Equal(t, 1.0, g.Data()[0])
}

func TestSubOp_Backward(t *testing.T) {
	a := raw(t, []float64{1, 2}, 2)
	grads := backward(t, ops.NewSubOp(a, a), raw(t, []float64{1, 2}, 2))
	assert.Equal(t, []float64{1, 2}, grads[0].Data())
	assert.Equal(t, []float64{-1, -2}, grads[1].Data())
}

func TestMulOp_Backward(t *testing.T) {
	a := raw(t, []float64{2, 3}, 2)
	b := raw(t, []float64{4, 5}, 2)
	grads := backward(t, ops.NewMulOp(a, b), raw(t, []float64{1, 1}, 2))

	assert.Equal(t, []float64{4, 5}, grads[0].Data(), "grad_a = b")
	assert.Equal(t, []float64{2, 3}, grads[1].Data(), "grad_b = a")
}

func TestMulOp_ScalarOperandReduced(t *testing.T) {
	a := raw(t, []float64{1, 2, 3}, 3)
	s := tensor.Scalar(2)
	grads := backward(t, ops.NewMulOp(a, s), raw(t, []float64{1, 1, 1}, 3))

	assert.Equal(t, []float64{2, 2, 2}, grads[0].Data())
	assert.Len(t, grads[1].Shape(), 0)
	assert.Equal(t, []float64{6}, grads[1].Data())
}

func TestDivOp_Backward(t *testing.T) {
	a := raw(t, []float64{6}, 1)
	b := raw(t, []float64{2}, 1)
	grads := backward(t, ops.NewDivOp(a, b), raw(t, []float64{1}, 1))

	assert.InDelta(t, 0.5, grads[0].Data()[0], 1e-12)
	assert.InDelta(t, -1.5, grads[1].Data()[0], 1e-12)
}

func TestScalarOps_Backward(t *testing.T) {
	x := raw(t, []float64{1, 2}, 2)
	g := raw(t, []float64{1, 1}, 2)

	assert.Equal(t, []float64{1, 1}, backward(t, ops.NewAddScalarOp(), g)[0].Data())
	assert.Equal(t, []float64{3, 3}, backward(t, ops.NewMulScalarOp(3), g)[0].Data())
	assert.Equal(t, []float64{-1, -1}, backward(t, ops.NewNegOp(), g)[0].Data())
	assert.Equal(t, []float64{2, 4}, backward(t, ops.NewPowScalarOp(x, 2), g)[0].Data())
	assert.Equal(t, []float64{0, 0}, backward(t, ops.NewPowScalarOp(x, 0), g)[0].Data())
}

func TestElementwiseOps_Backward(t *testing.T) {
	x := raw(t, []float64{-1, 0.5}, 2)
	g := raw(t, []float64{1, 1}, 2)

	expOut := tensor.Map(x, math.Exp)
	assert.InDeltaSlice(t, expOut.Data(), backward(t, ops.NewExpOp(expOut), g)[0].Data(), 1e-12)

	pos := raw(t, []float64{2, 4}, 2)
	assert.InDeltaSlice(t, []float64{0.5, 0.25}, backward(t, ops.NewLogOp(pos), g)[0].Data(), 1e-12)

	assert.Equal(t, []float64{0, 1}, backward(t, ops.NewReLUOp(x), g)[0].Data())

	tanhOut := tensor.Map(x, math.Tanh)
	want := []float64{1 - math.Pow(math.Tanh(-1), 2), 1 - math.Pow(math.Tanh(0.5), 2)}
	assert.InDeltaSlice(t, want, backward(t, ops.NewTanhOp(tanhOut), g)[0].Data(), 1e-12)

	sig := tensor.Map(x, func(v float64) float64 { return 1 / (1 + math.Exp(-v)) })
	s0, s1 := sig.Data()[0], sig.Data()[1]
	assert.InDeltaSlice(t, []float64{s0 * (1 - s0), s1 * (1 - s1)}, backward(t, ops.NewSigmoidOp(sig), g)[0].Data(), 1e-12)
}

func TestReductions_Backward(t *testing.T) {
	x := raw(t, []float64{3, 4, 0, 0}, 2, 2)

	sum := backward(t, ops.NewSumOp(x), tensor.Scalar(2))[0]
	assert.True(t, sum.Shape().Equal(tensor.Shape{2, 2}))
	assert.Equal(t, []float64{2, 2, 2, 2}, sum.Data())

	mean := backward(t, ops.NewMeanOp(x), tensor.Scalar(1))[0]
	assert.Equal(t, []float64{0.25, 0.25, 0.25, 0.25}, mean.Data())

	norm := backward(t, ops.NewNormOp(x, 5), tensor.Scalar(1))[0]
	assert.InDeltaSlice(t, []float64{0.6, 0.8, 0, 0}, norm.Data(), 1e-12)

	zero := raw(t, []float64{0, 0}, 2)
	assert.Equal(t, []float64{0, 0}, backward(t, ops.NewNormOp(zero, 0), tensor.Scalar(1))[0].Data())
}

func TestMatMulOp_Backward(t *testing.T) {
	a := raw(t, []float64{1, 2, 3, 4}, 2, 2)
	b := raw(t, []float64{5, 6, 7, 8}, 2, 2)
	g := raw(t, []float64{1, 1, 1, 1}, 2, 2)
	grads := backward(t, ops.NewMatMulOp(a, b), g)

	// grad_a = g @ bᵀ, grad_b = aᵀ @ g
	assert.Equal(t, []float64{11, 15, 11, 15}, grads[0].Data())
	assert.Equal(t, []float64{4, 4, 6, 6}, grads[1].Data())
}
