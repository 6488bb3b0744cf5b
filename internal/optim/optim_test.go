package optim_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/autodiff"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/optim"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"
)

// param creates a leaf requiring grad and runs sum(param * coeff) backward so
// its gradient equals coeff.
func param(t *testing.T, g *autodiff.Graph, data, coeff []float64) *autodiff.Value {
	t.Helper()
	p, err := g.NewValue(data, tensor.Shape{len(data)}, autodiff.RequiresGrad())
	require.NoError(t, err)
	setGrad(t, p, coeff)
	return p
}

func setGrad(t *testing.T, p *autodiff.Value, coeff []float64) {
	t.Helper()
	c, err := p.Graph().NewValue(coeff, p.Shape())
	require.NoError(t, err)
	y, err := autodiff.Mul(p, c)
	require.NoError(t, err)
	out, err := autodiff.Sum(y)
	require.NoError(t, err)
	require.NoError(t, out.Backward())
}

func TestSGD_SimpleUpdate(t *testing.T) {
	g := autodiff.NewGraph(autodiff.DefaultConfig())
	x := param(t, g, []float64{2.0}, []float64{1.0})

	opt := optim.NewSGD([]*autodiff.Value{x}, optim.SGDConfig{LR: 0.1})
	require.NoError(t, opt.Step())

	// x_new = 2.0 - 0.1 * 1.0
	assert.InDelta(t, 1.9, x.Data().Data()[0], 1e-12)
	assert.Empty(t, opt.StateDict())
}

func TestSGD_WithMomentum(t *testing.T) {
	g := autodiff.NewGraph(autodiff.DefaultConfig())
	x := param(t, g, []float64{1.0}, []float64{1.0})

	opt := optim.NewSGD([]*autodiff.Value{x}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	// v = 1, x = 1 - 0.1
	require.NoError(t, opt.Step())
	assert.InDelta(t, 0.9, x.Data().Data()[0], 1e-12)

	// Gradient stays 1 (not zeroed): v = 0.9 + 1 = 1.9, x = 0.9 - 0.19
	require.NoError(t, opt.Step())
	assert.InDelta(t, 0.71, x.Data().Data()[0], 1e-12)

	state := opt.StateDict()
	require.Contains(t, state, "velocity.0")
	assert.InDelta(t, 1.9, state["velocity.0"].Data()[0], 1e-12)
}

func TestSGD_SkipsParametersWithoutGrad(t *testing.T) {
	g := autodiff.NewGraph(autodiff.DefaultConfig())
	used := param(t, g, []float64{1}, []float64{2})
	unused, err := g.NewValue([]float64{5}, tensor.Shape{1}, autodiff.RequiresGrad())
	require.NoError(t, err)

	opt := optim.NewSGD([]*autodiff.Value{used, unused}, optim.SGDConfig{LR: 0.5})
	require.NoError(t, opt.Step())
	assert.Equal(t, []float64{0}, used.Data().Data())
	assert.Equal(t, []float64{5}, unused.Data().Data())
}

func TestSGD_RejectsNonLeaf(t *testing.T) {
	g := autodiff.NewGraph(autodiff.DefaultConfig())
	x := param(t, g, []float64{1}, []float64{1})
	y, err := autodiff.MulScalar(x, 2)
	require.NoError(t, err)

	opt := optim.NewSGD([]*autodiff.Value{x, y}, optim.SGDConfig{LR: 0.1})
	err = opt.Step()
	var fe *autodiff.FlagError
	require.ErrorAs(t, err, &fe)
	assert.ErrorIs(t, err, optim.ErrNotLeaf)
	assert.Equal(t, []float64{1}, x.Data().Data(), "nothing is updated on error")
}

func TestSGD_ZeroGradAndLR(t *testing.T) {
	g := autodiff.NewGraph(autodiff.DefaultConfig())
	x := param(t, g, []float64{1, 2}, []float64{3, 4})

	opt := optim.NewSGD([]*autodiff.Value{x}, optim.SGDConfig{})
	assert.Equal(t, 0.01, opt.LR())
	opt.SetLR(0.2)
	assert.Equal(t, 0.2, opt.LR())

	opt.ZeroGrad()
	assert.Equal(t, []float64{0, 0}, x.Grad().Data())
	require.NoError(t, opt.Step())
	assert.Equal(t, []float64{1, 2}, x.Data().Data())
}

func TestSGD_LoadStateDict(t *testing.T) {
	g := autodiff.NewGraph(autodiff.DefaultConfig())
	x := param(t, g, []float64{0, 0}, []float64{1, 1})

	opt := optim.NewSGD([]*autodiff.Value{x}, optim.SGDConfig{LR: 1, Momentum: 0.5})
	v, err := tensor.FromSlice([]float64{2, 2}, tensor.Shape{2})
	require.NoError(t, err)
	require.NoError(t, opt.LoadStateDict(map[string]*tensor.RawTensor{"velocity.0": v}))

	// v = 0.5*2 + 1 = 2
	require.NoError(t, opt.Step())
	assert.Equal(t, []float64{-2, -2}, x.Data().Data())

	bad, err := tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{3})
	require.NoError(t, err)
	assert.Error(t, opt.LoadStateDict(map[string]*tensor.RawTensor{"velocity.0": bad}))
}

// fitLine minimizes mean((w*x + b - y)²) for y = 3x + 1.
func fitLine(t *testing.T, newOpt func(params []*autodiff.Value) optim.Optimizer, steps int) (w, b float64) {
	t.Helper()
	g := autodiff.NewGraph(autodiff.DefaultConfig())
	xs, err := g.NewValue([]float64{0, 1, 2, 3}, tensor.Shape{4})
	require.NoError(t, err)
	ys, err := g.NewValue([]float64{1, 4, 7, 10}, tensor.Shape{4})
	require.NoError(t, err)
	wv := g.Scalar(0, autodiff.RequiresGrad(), autodiff.Named("w"))
	bv := g.Scalar(0, autodiff.RequiresGrad(), autodiff.Named("b"))

	opt := newOpt([]*autodiff.Value{wv, bv})
	for range steps {
		pred, err := autodiff.Mul(xs, wv)
		require.NoError(t, err)
		pred, err = autodiff.Add(pred, bv)
		require.NoError(t, err)
		diff, err := autodiff.Sub(pred, ys)
		require.NoError(t, err)
		sq, err := autodiff.Mul(diff, diff)
		require.NoError(t, err)
		loss, err := autodiff.Mean(sq)
		require.NoError(t, err)

		opt.ZeroGrad()
		require.NoError(t, loss.Backward())
		require.NoError(t, opt.Step())
		g.Reset()
	}

	w, err = wv.Item()
	require.NoError(t, err)
	b, err = bv.Item()
	require.NoError(t, err)
	return w, b
}

func TestSGD_ConvergesOnLeastSquares(t *testing.T) {
	w, b := fitLine(t, func(params []*autodiff.Value) optim.Optimizer {
		return optim.NewSGD(params, optim.SGDConfig{LR: 0.02, Momentum: 0.9})
	}, 500)
	assert.InDelta(t, 3.0, w, 1e-4)
	assert.InDelta(t, 1.0, b, 1e-4)
}

func TestAdam_FirstStep(t *testing.T) {
	g := autodiff.NewGraph(autodiff.DefaultConfig())
	x := param(t, g, []float64{1, 1}, []float64{0.5, -4})

	opt := optim.NewAdam([]*autodiff.Value{x}, optim.AdamConfig{LR: 0.1})
	require.NoError(t, opt.Step())
	assert.Equal(t, 1, opt.Timestep())

	// Bias-corrected first step moves each coordinate by lr * sign(grad).
	assert.InDelta(t, 0.9, x.Data().Data()[0], 1e-6)
	assert.InDelta(t, 1.1, x.Data().Data()[1], 1e-6)

	state := opt.StateDict()
	assert.Equal(t, []float64{1}, state["step"].Data())
	assert.Contains(t, state, "m.0")
	assert.Contains(t, state, "v.0")
}

func TestAdam_ConvergesOnLeastSquares(t *testing.T) {
	w, b := fitLine(t, func(params []*autodiff.Value) optim.Optimizer {
		return optim.NewAdam(params, optim.AdamConfig{LR: 0.05})
	}, 3000)
	assert.InDelta(t, 3.0, w, 5e-2)
	assert.InDelta(t, 1.0, b, 5e-2)
	assert.False(t, math.IsNaN(w))
}
