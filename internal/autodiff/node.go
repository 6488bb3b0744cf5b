package autodiff

import "github.com/qpg93/DeepLearningWithPyTorch/internal/autodiff/ops"

// node is one operation record: a primitive applied during the forward pass,
// the inputs it consumed and the Value it produced.
type node struct {
	id        int           // Position in the graph arena
	name      string        // grad_fn label, kept after release
	op        ops.Operation // Backward rule with its saved payloads
	inputs    []*Value      // Operands in call order
	needsGrad []bool        // Input flags snapshotted at forward time
	output    *Value        // Value this record produced
	released  bool
}

// release drops everything the rule saved so payloads can be collected.
func (n *node) release() {
	n.released = true
	n.op = nil
	n.inputs = nil
	n.needsGrad = nil
	n.output = nil
}
