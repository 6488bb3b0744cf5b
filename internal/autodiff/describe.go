package autodiff

import (
	"fmt"
	"io"
)

// Describe writes the grad_fn tree rooted at v, one record per line:
//
//	MeanBackward #3
//	└── MulScalarBackward #2
//	    └── MulBackward #1
//	        ├── AddScalarBackward #0
//	        │   └── AccumulateGrad x (2, 2)
//	        └── AddScalarBackward #0 (seen)
//
// Inputs that did not require grad at forward time are omitted. Released
// records are printed but not expanded.
func Describe(w io.Writer, v *Value) error {
	d := describer{w: w, seen: make(map[int]bool)}
	if v.IsLeaf() {
		return d.leaf(v, "")
	}
	return d.value(v, "", "")
}

type describer struct {
	w    io.Writer
	seen map[int]bool
}

func (d *describer) value(v *Value, prefix, childPrefix string) error {
	if v.IsLeaf() {
		return d.leaf(v, prefix)
	}

	n, err := v.graph.lookup(v)
	if err != nil {
		_, werr := fmt.Fprintf(d.w, "%s%s #%d (released)\n", prefix, v.GradFn(), v.nodeID)
		return werr
	}
	if d.seen[n.id] {
		_, err := fmt.Fprintf(d.w, "%s%s #%d (seen)\n", prefix, n.name, n.id)
		return err
	}
	d.seen[n.id] = true
	if _, err := fmt.Fprintf(d.w, "%s%s #%d\n", prefix, n.name, n.id); err != nil {
		return err
	}

	var children []*Value
	for j, in := range n.inputs {
		if n.needsGrad[j] {
			children = append(children, in)
		}
	}
	for i, in := range children {
		branch, next := "├── ", "│   "
		if i == len(children)-1 {
			branch, next = "└── ", "    "
		}
		if err := d.value(in, childPrefix+branch, childPrefix+next); err != nil {
			return err
		}
	}
	return nil
}

func (d *describer) leaf(v *Value, prefix string) error {
	name := v.name
	if name == "" {
		name = "leaf"
	}
	label := "AccumulateGrad"
	if !v.requiresGrad {
		label = "Constant"
	}
	_, err := fmt.Fprintf(d.w, "%s%s %s %s\n", prefix, label, name, v.Shape())
	return err
}
