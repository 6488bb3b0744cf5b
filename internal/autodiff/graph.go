package autodiff

import (
	"github.com/google/uuid"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/autodiff/ops"
)

// Config controls graph behaviour.
type Config struct {
	// Strict turns operations on grad-requiring inputs while recording is off
	// into FlagErrors instead of silently producing untracked outputs.
	Strict bool `yaml:"strict"`

	// InitialCapacity presizes the record arena.
	InitialCapacity int `yaml:"initial_capacity"`
}

// DefaultConfig returns the default graph configuration.
func DefaultConfig() Config {
	return Config{
		Strict:          false,
		InitialCapacity: 64,
	}
}

// Graph is the explicit context every Value belongs to. It owns an arena of
// operation records indexed by creation sequence; Values refer to their
// producing record by index.
//
// Usage:
//
//	g := autodiff.NewGraph(autodiff.DefaultConfig())
//	x, _ := g.Ones(tensor.Shape{2, 2}, autodiff.RequiresGrad())
//	y, _ := autodiff.AddScalar(x, 2)
//	out, _ := autodiff.Mean(y)
//	_ = out.Backward()
//
// A Graph is not safe for concurrent use.
type Graph struct {
	id        uuid.UUID
	cfg       Config
	nodes     []*node // Records in creation order
	epoch     int     // Bumped by Reset; stale Values carry an older epoch
	recording bool    // Whether operations are recorded
	live      int     // Records not yet released
	passes    int     // Completed backward passes
}

// GraphStats is a snapshot of graph bookkeeping.
type GraphStats struct {
	ID             string
	Recording      bool
	Records        int
	Live           int
	Epoch          int
	BackwardPasses int
}

// NewGraph creates a new graph. Recording starts enabled.
func NewGraph(cfg Config) *Graph {
	if cfg.InitialCapacity <= 0 {
		cfg.InitialCapacity = DefaultConfig().InitialCapacity
	}
	return &Graph{
		id:        uuid.New(),
		cfg:       cfg,
		nodes:     make([]*node, 0, cfg.InitialCapacity),
		recording: true,
	}
}

// ID returns the graph's unique identifier.
func (g *Graph) ID() uuid.UUID {
	return g.id
}

// Config returns the configuration the graph was created with.
func (g *Graph) Config() Config {
	return g.cfg
}

// StartRecording enables operation recording.
func (g *Graph) StartRecording() {
	g.recording = true
}

// StopRecording disables operation recording. Outputs produced while
// recording is off never require grad.
func (g *Graph) StopRecording() {
	g.recording = false
}

// IsRecording returns true if the graph is currently recording operations.
func (g *Graph) IsRecording() bool {
	return g.recording
}

// NoGrad runs fn with recording disabled and restores the previous state.
func (g *Graph) NoGrad(fn func() error) error {
	was := g.recording
	g.recording = false
	defer func() {
		g.recording = was
	}()
	return fn()
}

// NumOps returns the number of records created since the last Reset.
func (g *Graph) NumOps() int {
	return len(g.nodes)
}

// NumLive returns the number of records that have not been released.
func (g *Graph) NumLive() int {
	return g.live
}

// Stats returns a snapshot of graph bookkeeping.
func (g *Graph) Stats() GraphStats {
	return GraphStats{
		ID:             g.id.String(),
		Recording:      g.recording,
		Records:        len(g.nodes),
		Live:           g.live,
		Epoch:          g.epoch,
		BackwardPasses: g.passes,
	}
}

// Reset releases every record and empties the arena. Values produced before
// the reset keep their payloads but can no longer be differentiated through.
// Recording state is preserved.
func (g *Graph) Reset() {
	for _, n := range g.nodes {
		n.release()
	}
	clear(g.nodes)
	g.nodes = g.nodes[:0]
	g.live = 0
	g.epoch++
}

// record appends a record for op and attaches it to out.
func (g *Graph) record(op ops.Operation, inputs []*Value, out *Value) {
	needs := make([]bool, len(inputs))
	for i, in := range inputs {
		needs[i] = in.requiresGrad
	}
	n := &node{
		id:        len(g.nodes),
		name:      op.Name(),
		op:        op,
		inputs:    append([]*Value(nil), inputs...),
		needsGrad: needs,
		output:    out,
	}
	g.nodes = append(g.nodes, n)
	g.live++
	out.nodeID = n.id
	out.epoch = g.epoch
}

// lookup returns the live record that produced v.
func (g *Graph) lookup(v *Value) (*node, error) {
	if v.nodeID < 0 || v.epoch != g.epoch || v.nodeID >= len(g.nodes) {
		return nil, &GraphError{Op: "backward", Graph: g.id, Err: ErrGraphReleased}
	}
	n := g.nodes[v.nodeID]
	if n.released {
		return nil, &GraphError{Op: "backward", Graph: g.id, Err: ErrGraphReleased}
	}
	return n, nil
}

// release frees the saved state of a record.
func (g *Graph) release(n *node) {
	if n.released {
		return
	}
	n.release()
	g.live--
}
