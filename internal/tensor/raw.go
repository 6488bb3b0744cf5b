package tensor

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// RawTensor is the numeric payload behind every Value: a dense, row-major
// float64 array with a shape.
//
// RawTensor does not track gradients; it is plain storage plus the arithmetic
// kernels in ops.go. Several holders may share one RawTensor (Detach does),
// so kernels never write to their inputs.
type RawTensor struct {
	data   []float64 // Row-major elements
	shape  Shape     // Tensor dimensions
	stride []int     // Memory strides (row-major)
}

// NewRaw creates a zero-filled RawTensor with the given shape.
func NewRaw(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	return wrap(make([]float64, shape.NumElements()), shape), nil
}

// FromSlice creates a RawTensor holding a copy of data.
// len(data) must equal shape.NumElements().
func FromSlice(data []float64, shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if len(data) != shape.NumElements() {
		return nil, &ShapeError{
			Op:      "from_slice",
			Shapes:  []Shape{shape.Clone()},
			Details: fmt.Sprintf("got %d elements, shape needs %d", len(data), shape.NumElements()),
		}
	}
	return wrap(append([]float64(nil), data...), shape), nil
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float64) (*RawTensor, error) {
	t, err := NewRaw(shape)
	if err != nil {
		return nil, err
	}
	if value != 0 {
		floats.AddConst(value, t.data)
	}
	return t, nil
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) (*RawTensor, error) {
	return Full(shape, 1)
}

// Scalar creates a zero-dimensional tensor holding v.
func Scalar(v float64) *RawTensor {
	return wrap([]float64{v}, Shape{})
}

// wrap builds a tensor around data without copying or validating.
func wrap(data []float64, shape Shape) *RawTensor {
	return &RawTensor{
		data:   data,
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
	}
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return len(r.data)
}

// Data returns the underlying row-major slice.
// WARNING: Direct access to shared memory. Writes are visible to every holder.
func (r *RawTensor) Data() []float64 {
	return r.data
}

// At returns the element at the given multi-dimensional index.
// Panics if the index is out of range.
func (r *RawTensor) At(idx ...int) float64 {
	if len(idx) != len(r.shape) {
		panic(fmt.Sprintf("tensor: index %v has %d dims, tensor has %d", idx, len(idx), len(r.shape)))
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= r.shape[i] {
			panic(fmt.Sprintf("tensor: index %v out of range for shape %v", idx, r.shape))
		}
		off += v * r.stride[i]
	}
	return r.data[off]
}

// Item returns the only element of a single-element tensor.
func (r *RawTensor) Item() (float64, error) {
	if len(r.data) != 1 {
		return 0, &ShapeError{
			Op:      "item",
			Shapes:  []Shape{r.shape.Clone()},
			Details: fmt.Sprintf("tensor has %d elements", len(r.data)),
		}
	}
	return r.data[0], nil
}

// Clone returns a deep copy.
func (r *RawTensor) Clone() *RawTensor {
	return wrap(append([]float64(nil), r.data...), r.shape)
}

// AllClose reports whether both tensors have the same shape and every pair of
// elements differs by at most tol.
func (r *RawTensor) AllClose(other *RawTensor, tol float64) bool {
	if !r.shape.Equal(other.shape) {
		return false
	}
	return floats.EqualApprox(r.data, other.data, tol)
}

// String renders the tensor the way the REPL walkthrough prints it:
// tensor([[1, 1], [1, 1]]).
func (r *RawTensor) String() string {
	var sb strings.Builder
	sb.WriteString("tensor(")
	r.format(&sb, 0, 0)
	sb.WriteString(")")
	return sb.String()
}

func (r *RawTensor) format(sb *strings.Builder, dim, off int) {
	if dim == len(r.shape) {
		sb.WriteString(strconv.FormatFloat(r.data[off], 'g', 5, 64))
		return
	}
	sb.WriteByte('[')
	for i := 0; i < r.shape[dim]; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		r.format(sb, dim+1, off+i*r.stride[dim])
	}
	sb.WriteByte(']')
}
