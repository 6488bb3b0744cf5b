package autodiff

import (
	"fmt"
	"strings"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"
)

// Value is a differentiable container: a numeric payload, an optional
// gradient accumulator of the same shape, a differentiation flag and an
// optional reference to the record that produced it.
//
// Values created by the caller are leaves. Values returned by operations on
// grad-requiring inputs carry a grad_fn and are interior nodes of the graph.
type Value struct {
	graph        *Graph
	data         *tensor.RawTensor // Payload, possibly shared with detached Values
	grad         *tensor.RawTensor // Accumulator, nil until the first backward pass reaches it
	requiresGrad bool
	retainGrad   bool   // Keep gradients on an interior Value
	nodeID       int    // Producing record, -1 for leaves
	epoch        int    // Graph epoch nodeID refers to
	name         string // Optional display name
}

// ValueOption configures a Value at construction.
type ValueOption func(*Value)

// RequiresGrad marks the new Value as participating in differentiation.
func RequiresGrad() ValueOption {
	return func(v *Value) { v.requiresGrad = true }
}

// Named sets a display name used by Describe and published metrics.
func Named(name string) ValueOption {
	return func(v *Value) { v.name = name }
}

// NewValue creates a leaf holding a copy of data.
// Differentiation is off unless RequiresGrad is passed.
func (g *Graph) NewValue(data []float64, shape tensor.Shape, opts ...ValueOption) (*Value, error) {
	raw, err := tensor.FromSlice(data, shape)
	if err != nil {
		return nil, err
	}
	return g.FromRaw(raw, opts...), nil
}

// FromRaw creates a leaf around an existing payload without copying it.
func (g *Graph) FromRaw(raw *tensor.RawTensor, opts ...ValueOption) *Value {
	v := &Value{graph: g, data: raw, nodeID: -1}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Scalar creates a zero-dimensional leaf.
func (g *Graph) Scalar(x float64, opts ...ValueOption) *Value {
	return g.FromRaw(tensor.Scalar(x), opts...)
}

// Full creates a leaf filled with x.
func (g *Graph) Full(shape tensor.Shape, x float64, opts ...ValueOption) (*Value, error) {
	raw, err := tensor.Full(shape, x)
	if err != nil {
		return nil, err
	}
	return g.FromRaw(raw, opts...), nil
}

// Ones creates a leaf filled with ones.
func (g *Graph) Ones(shape tensor.Shape, opts ...ValueOption) (*Value, error) {
	return g.Full(shape, 1, opts...)
}

// Zeros creates a leaf filled with zeros.
func (g *Graph) Zeros(shape tensor.Shape, opts ...ValueOption) (*Value, error) {
	return g.Full(shape, 0, opts...)
}

// Graph returns the graph the Value belongs to.
func (v *Value) Graph() *Graph { return v.graph }

// Data returns the payload. It may be shared with detached Values.
func (v *Value) Data() *tensor.RawTensor { return v.data }

// Shape returns the payload's shape.
func (v *Value) Shape() tensor.Shape { return v.data.Shape() }

// Name returns the display name, empty if none was set.
func (v *Value) Name() string { return v.name }

// SetName sets the display name and returns v.
func (v *Value) SetName(name string) *Value {
	v.name = name
	return v
}

// Grad returns the gradient accumulator, or nil if no gradient has reached
// this Value yet.
func (v *Value) Grad() *tensor.RawTensor { return v.grad }

// RequiresGrad reports the differentiation flag.
func (v *Value) RequiresGrad() bool { return v.requiresGrad }

// SetRequiresGrad changes the differentiation flag in place and returns v.
//
// The change is not retroactive: records that already consumed v keep the
// flag they saw at forward time, and only later operations observe the new
// value. For leaves the flag is also checked when a backward pass commits.
func (v *Value) SetRequiresGrad(flag bool) *Value {
	v.requiresGrad = flag
	return v
}

// IsLeaf reports whether v has no producing record.
func (v *Value) IsLeaf() bool { return v.nodeID < 0 }

// GradFn returns the label of the record that produced v
// (e.g. "MulBackward"), or "" for leaves.
func (v *Value) GradFn() string {
	if v.IsLeaf() || v.epoch != v.graph.epoch || v.nodeID >= len(v.graph.nodes) {
		return ""
	}
	return v.graph.nodes[v.nodeID].name
}

// RetainGrad asks backward passes to populate Grad on this interior Value.
// Leaves always receive gradients, so this is a no-op for them.
func (v *Value) RetainGrad() error {
	if !v.requiresGrad {
		return &FlagError{Op: "retain_grad", Value: v.describe(), Err: ErrGradDisabled}
	}
	v.retainGrad = true
	return nil
}

// ZeroGrad resets the gradient accumulator to zeros, keeping its allocation.
func (v *Value) ZeroGrad() {
	if v.grad != nil {
		tensor.ZeroInPlace(v.grad)
	}
}

// Detach returns a new leaf sharing v's payload without copying it. The
// result does not require grad, so nothing computed from it contributes to
// gradients of v's ancestors.
func (v *Value) Detach() *Value {
	return &Value{graph: v.graph, data: v.data, nodeID: -1, name: v.name}
}

// Item returns the payload of a single-element Value.
func (v *Value) Item() (float64, error) {
	return v.data.Item()
}

// String renders v like the REPL walkthrough:
// tensor([[3, 3], [3, 3]], grad_fn=<AddScalarBackward>).
func (v *Value) String() string {
	s := strings.TrimSuffix(v.data.String(), ")")
	switch {
	case !v.IsLeaf() && v.GradFn() != "":
		s += fmt.Sprintf(", grad_fn=<%s>", v.GradFn())
	case v.requiresGrad:
		s += ", requires_grad=True"
	}
	return s + ")"
}

// accumulateGrad sums g into the accumulator, allocating it on first use.
func (v *Value) accumulateGrad(g *tensor.RawTensor) error {
	if v.grad == nil {
		v.grad = g
		return nil
	}
	return tensor.AddInPlace(v.grad, g)
}

func (v *Value) describe() string {
	if v.name != "" {
		return v.name
	}
	return "value" + v.Shape().String()
}
