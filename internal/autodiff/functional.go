package autodiff

import (
	"math"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/autodiff/ops"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"
)

// Every operation here runs its forward computation immediately. The output
// requires grad when the graph is recording and any input requires grad; only
// then is a record attached.

// Add returns a + b with broadcasting.
func Add(a, b *Value) (*Value, error) {
	return apply("add", []*Value{a, b},
		func() (*tensor.RawTensor, error) { return tensor.Add(a.data, b.data) },
		func(*tensor.RawTensor) ops.Operation { return ops.NewAddOp(a.data, b.data) })
}

// Sub returns a - b with broadcasting.
func Sub(a, b *Value) (*Value, error) {
	return apply("sub", []*Value{a, b},
		func() (*tensor.RawTensor, error) { return tensor.Sub(a.data, b.data) },
		func(*tensor.RawTensor) ops.Operation { return ops.NewSubOp(a.data, b.data) })
}

// Mul returns a * b element-wise with broadcasting.
func Mul(a, b *Value) (*Value, error) {
	return apply("mul", []*Value{a, b},
		func() (*tensor.RawTensor, error) { return tensor.Mul(a.data, b.data) },
		func(*tensor.RawTensor) ops.Operation { return ops.NewMulOp(a.data, b.data) })
}

// Div returns a / b element-wise with broadcasting.
func Div(a, b *Value) (*Value, error) {
	return apply("div", []*Value{a, b},
		func() (*tensor.RawTensor, error) { return tensor.Div(a.data, b.data) },
		func(*tensor.RawTensor) ops.Operation { return ops.NewDivOp(a.data, b.data) })
}

// MatMul multiplies two 2-D Values.
func MatMul(a, b *Value) (*Value, error) {
	return apply("matmul", []*Value{a, b},
		func() (*tensor.RawTensor, error) { return tensor.MatMul(a.data, b.data) },
		func(*tensor.RawTensor) ops.Operation { return ops.NewMatMulOp(a.data, b.data) })
}

// AddScalar returns x + c.
func AddScalar(x *Value, c float64) (*Value, error) {
	return apply("add_scalar", []*Value{x},
		func() (*tensor.RawTensor, error) { return tensor.AddConst(x.data, c), nil },
		func(*tensor.RawTensor) ops.Operation { return ops.NewAddScalarOp() })
}

// MulScalar returns x * c.
func MulScalar(x *Value, c float64) (*Value, error) {
	return apply("mul_scalar", []*Value{x},
		func() (*tensor.RawTensor, error) { return tensor.Scale(x.data, c), nil },
		func(*tensor.RawTensor) ops.Operation { return ops.NewMulScalarOp(c) })
}

// PowScalar returns x raised element-wise to p.
func PowScalar(x *Value, p float64) (*Value, error) {
	return apply("pow", []*Value{x},
		func() (*tensor.RawTensor, error) { return tensor.Pow(x.data, p), nil },
		func(*tensor.RawTensor) ops.Operation { return ops.NewPowScalarOp(x.data, p) })
}

// Neg returns -x.
func Neg(x *Value) (*Value, error) {
	return apply("neg", []*Value{x},
		func() (*tensor.RawTensor, error) { return tensor.Neg(x.data), nil },
		func(*tensor.RawTensor) ops.Operation { return ops.NewNegOp() })
}

// Exp returns e^x element-wise.
func Exp(x *Value) (*Value, error) {
	return apply("exp", []*Value{x},
		func() (*tensor.RawTensor, error) { return tensor.Map(x.data, math.Exp), nil },
		func(out *tensor.RawTensor) ops.Operation { return ops.NewExpOp(out) })
}

// Log returns the natural logarithm element-wise.
func Log(x *Value) (*Value, error) {
	return apply("log", []*Value{x},
		func() (*tensor.RawTensor, error) { return tensor.Map(x.data, math.Log), nil },
		func(*tensor.RawTensor) ops.Operation { return ops.NewLogOp(x.data) })
}

// ReLU returns max(0, x) element-wise.
func ReLU(x *Value) (*Value, error) {
	return apply("relu", []*Value{x},
		func() (*tensor.RawTensor, error) { return tensor.Map(x.data, func(v float64) float64 { return max(v, 0) }), nil },
		func(*tensor.RawTensor) ops.Operation { return ops.NewReLUOp(x.data) })
}

// Tanh returns tanh(x) element-wise.
func Tanh(x *Value) (*Value, error) {
	return apply("tanh", []*Value{x},
		func() (*tensor.RawTensor, error) { return tensor.Map(x.data, math.Tanh), nil },
		func(out *tensor.RawTensor) ops.Operation { return ops.NewTanhOp(out) })
}

// Sigmoid returns 1 / (1 + e^-x) element-wise.
func Sigmoid(x *Value) (*Value, error) {
	return apply("sigmoid", []*Value{x},
		func() (*tensor.RawTensor, error) {
			return tensor.Map(x.data, func(v float64) float64 { return 1 / (1 + math.Exp(-v)) }), nil
		},
		func(out *tensor.RawTensor) ops.Operation { return ops.NewSigmoidOp(out) })
}

// Sum reduces all elements to a scalar.
func Sum(x *Value) (*Value, error) {
	return apply("sum", []*Value{x},
		func() (*tensor.RawTensor, error) { return tensor.Sum(x.data), nil },
		func(*tensor.RawTensor) ops.Operation { return ops.NewSumOp(x.data) })
}

// Mean reduces all elements to their scalar mean.
func Mean(x *Value) (*Value, error) {
	return apply("mean", []*Value{x},
		func() (*tensor.RawTensor, error) { return tensor.Mean(x.data), nil },
		func(*tensor.RawTensor) ops.Operation { return ops.NewMeanOp(x.data) })
}

// Norm reduces all elements to their scalar L2 norm.
func Norm(x *Value) (*Value, error) {
	return apply("norm", []*Value{x},
		func() (*tensor.RawTensor, error) { return tensor.Norm(x.data), nil },
		func(out *tensor.RawTensor) ops.Operation { return ops.NewNormOp(x.data, out.Data()[0]) })
}

// apply runs one forward call and records it when the output requires grad.
func apply(
	name string,
	inputs []*Value,
	forward func() (*tensor.RawTensor, error),
	rule func(out *tensor.RawTensor) ops.Operation,
) (*Value, error) {
	g := inputs[0].graph
	wantsGrad := false
	for _, in := range inputs {
		if in.graph != g {
			return nil, &GraphError{Op: name, Graph: g.id, Err: ErrForeignGraph}
		}
		wantsGrad = wantsGrad || in.requiresGrad
	}

	if wantsGrad && !g.recording && g.cfg.Strict {
		return nil, &FlagError{Op: name, Err: ErrGradDisabled}
	}

	data, err := forward()
	if err != nil {
		return nil, err
	}

	out := &Value{graph: g, data: data, nodeID: -1}
	if wantsGrad && g.recording {
		out.requiresGrad = true
		g.record(rule(data), inputs, out)
	}
	return out, nil
}
