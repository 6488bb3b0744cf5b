// Copyright 2025 The DeepLearningWithPyTorch Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/qpg93/DeepLearningWithPyTorch/tensor"
)

// TestRawTensorAPI verifies the RawTensor alias exposes the expected API.
func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3})
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}
	if !raw.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("Shape() = %v, want (2, 3)", raw.Shape())
	}
	if raw.NumElements() != 6 {
		t.Errorf("NumElements() = %d, want 6", raw.NumElements())
	}

	clone := raw.Clone()
	clone.Data()[0] = 1
	if raw.Data()[0] != 0 {
		t.Error("Clone() shares storage with the original")
	}
}

// TestShapeErrorMatches verifies the re-exported sentinel.
func TestShapeErrorMatches(t *testing.T) {
	a, _ := tensor.Ones(tensor.Shape{2, 3})
	b, _ := tensor.Ones(tensor.Shape{4})
	_, err := tensor.Add(a, b)
	if !errors.Is(err, tensor.ErrShapeMismatch) {
		t.Fatalf("Add error = %v, want ErrShapeMismatch", err)
	}
	var se *tensor.ShapeError
	if !errors.As(err, &se) {
		t.Fatalf("Add error %T is not a *ShapeError", err)
	}
}

func ExampleAdd() {
	x, _ := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2})
	b, _ := tensor.FromSlice([]float64{10, 20}, tensor.Shape{2})
	y, _ := tensor.Add(x, b)
	fmt.Println(y)
	// Output: tensor([[11, 22], [13, 24]])
}
