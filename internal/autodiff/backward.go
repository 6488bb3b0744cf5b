package autodiff

import (
	"fmt"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"
)

// BackwardConfig controls a single backward pass.
type BackwardConfig struct {
	// Seed is the gradient of the terminal Value. It may be nil only when the
	// terminal holds a single element, in which case ones are used.
	Seed *tensor.RawTensor

	// RetainGraph keeps the traversed records alive so another backward pass
	// can run through them. Without it, the records are released.
	RetainGraph bool
}

// Backward runs a backward pass from v with an implicit ones seed.
// v must hold a single element.
func (v *Value) Backward() error {
	return v.BackwardWith(BackwardConfig{})
}

// BackwardWith computes gradients of v with respect to every grad-requiring
// leaf it depends on, accumulating (summing) them into the leaves' Grad.
//
// Algorithm:
//  1. Order the records reachable from v so each appears after the records
//     that produced its inputs
//  2. Seed v, walk the order in reverse and apply each record's rule to the
//     gradient accumulated at its output
//  3. Sum the returned gradients into the inputs that required grad at
//     forward time
//  4. Commit the totals to leaves (and interior Values with RetainGrad)
//
// Nothing is committed if any step fails.
func (v *Value) BackwardWith(cfg BackwardConfig) error {
	g := v.graph
	if !v.requiresGrad {
		return &GraphError{Op: "backward", Graph: g.id, Err: ErrNoGradPath}
	}

	seed, err := v.seed(cfg.Seed)
	if err != nil {
		return err
	}

	order, err := g.topoSort(v)
	if err != nil {
		return err
	}

	grads := map[*Value]*tensor.RawTensor{v: seed}
	for i := len(order) - 1; i >= 0; i-- {
		if err := propagate(order[i], grads); err != nil {
			return err
		}
	}

	for val, grad := range grads {
		if val.IsLeaf() && !val.requiresGrad {
			continue
		}
		if !val.IsLeaf() && !val.retainGrad {
			continue
		}
		if err := val.accumulateGrad(grad); err != nil {
			return err
		}
	}
	g.passes++

	if !cfg.RetainGraph {
		for _, n := range order {
			g.release(n)
		}
	}
	return nil
}

// seed validates or builds the terminal gradient. The result is owned by the
// backward pass.
func (v *Value) seed(seed *tensor.RawTensor) (*tensor.RawTensor, error) {
	shape := v.Shape()
	if seed == nil {
		if !shape.IsScalar() {
			return nil, &ShapeError{
				Op:      "backward",
				Shapes:  []tensor.Shape{shape.Clone()},
				Details: "grad can be implicitly created only for single-element outputs; pass a seed",
			}
		}
		return tensor.Ones(shape)
	}
	if !seed.Shape().Equal(shape) {
		return nil, &ShapeError{
			Op:      "backward",
			Shapes:  []tensor.Shape{shape.Clone(), seed.Shape().Clone()},
			Details: "seed must match the output shape",
		}
	}
	return seed.Clone(), nil
}

// propagate applies one record's rule and sums the results into grads.
func propagate(n *node, grads map[*Value]*tensor.RawTensor) error {
	outGrad, ok := grads[n.output]
	if !ok {
		return nil
	}

	inGrads, err := n.op.Backward(outGrad)
	if err != nil {
		return fmt.Errorf("%s: %w", n.name, err)
	}
	if len(inGrads) != len(n.inputs) {
		return fmt.Errorf("%s: rule returned %d gradients for %d inputs", n.name, len(inGrads), len(n.inputs))
	}

	for j, in := range n.inputs {
		gi := inGrads[j]
		if !n.needsGrad[j] || gi == nil {
			continue
		}
		if !gi.Shape().Equal(in.Shape()) {
			return &ShapeError{
				Op:      n.name,
				Shapes:  []tensor.Shape{in.Shape().Clone(), gi.Shape().Clone()},
				Details: fmt.Sprintf("gradient for input %d does not match its payload", j),
			}
		}
		if existing, ok := grads[in]; ok {
			if err := tensor.AddInPlace(existing, gi); err != nil {
				return err
			}
			continue
		}
		grads[in] = gi
	}
	return nil
}

// topoSort returns the live records reachable from root, each after every
// record that produced one of its differentiable inputs. Leaves yield an
// empty order.
func (g *Graph) topoSort(root *Value) ([]*node, error) {
	if root.IsLeaf() {
		return nil, nil
	}
	start, err := g.lookup(root)
	if err != nil {
		return nil, err
	}

	type frame struct {
		n    *node
		done bool // Children already pushed; emit on pop
	}

	var order []*node
	visited := make(map[int]bool)
	stack := []frame{{n: start}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.done {
			order = append(order, f.n)
			continue
		}
		if visited[f.n.id] {
			continue
		}
		visited[f.n.id] = true
		stack = append(stack, frame{n: f.n, done: true})

		for j, in := range f.n.inputs {
			if !f.n.needsGrad[j] || in.IsLeaf() {
				continue
			}
			child, err := g.lookup(in)
			if err != nil {
				return nil, err
			}
			if !visited[child.id] {
				stack = append(stack, frame{n: child})
			}
		}
	}
	return order, nil
}
