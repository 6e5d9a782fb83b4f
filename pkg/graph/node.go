package graph

import (
	"fmt"

	"github.com/just-work/fffw-sub000/pkg/meta"
)

// Caps declares a filter's connection capabilities: the stream kind it
// operates on and the hardware context required on its input edges (empty for
// software frames). The connection protocol checks these by plain field
// access.
type Caps struct {
	Kind meta.StreamType
	// Hardware names the accelerator kind input frames must live on;
	// empty requires software frames.
	Hardware string
}

// Filter is one transformation attached to a graph node: a name and argument
// serialization for the filter clause, a pure metadata transform, and an
// explicit clone of its own configuration fields.
type Filter interface {
	// Name returns the ffmpeg filter name, already specific to the stream
	// kind (e.g. "asplit" for an audio split).
	Name() string
	// Args serializes filter parameters, empty when defaults suffice.
	Args() string
	// Caps declares stream kind and hardware requirements.
	Caps() Caps
	// InputCount and OutputCount fix the node arity.
	InputCount() int
	OutputCount() int
	// Transform computes output metadata from input metadata, producing a
	// fresh value and never mutating inputs.
	Transform(inputs ...meta.Meta) (meta.Meta, error)
	// Clone copies the filter's configuration fields, never edges.
	Clone() Filter
}

// Node is a graph vertex applying one filter, with fixed input and output
// arity. A node may be disabled, which requires (1, 1) arity and makes it a
// transparent pass-through for rendering and naming.
type Node struct {
	filter  Filter
	inputs  []*Edge
	outputs []*Edge
	enabled bool
}

// NewNode wraps a filter into an enabled node with empty edge slots.
func NewNode(f Filter) *Node {
	return &Node{
		filter:  f,
		inputs:  make([]*Edge, f.InputCount()),
		outputs: make([]*Edge, f.OutputCount()),
		enabled: true,
	}
}

// Filter returns the node's filter.
func (n *Node) Filter() Filter { return n.filter }

// Kind returns the node's stream kind.
func (n *Node) Kind() meta.StreamType { return n.filter.Caps().Kind }

// Enabled reports whether the node renders a filter clause.
func (n *Node) Enabled() bool { return n.enabled }

// SetEnabled toggles the node. Disabling requires exactly one input and one
// output slot.
func (n *Node) SetEnabled(enabled bool) error {
	if !enabled && (len(n.inputs) != 1 || len(n.outputs) != 1) {
		return fmt.Errorf("%w: cannot disable %s node with %d inputs, %d outputs",
			ErrArity, n.filter.Name(), len(n.inputs), len(n.outputs))
	}
	n.enabled = enabled
	return nil
}

// Input returns the input edge bound at slot i, nil while unconnected.
func (n *Node) Input(i int) *Edge { return n.inputs[i] }

// Output returns the output edge bound at slot i, nil while unconnected.
func (n *Node) Output(i int) *Edge { return n.outputs[i] }

// Inputs returns all input slots in order.
func (n *Node) Inputs() []*Edge { return n.inputs }

// Outputs returns all output slots in order.
func (n *Node) Outputs() []*Edge { return n.outputs }

// Meta computes the node's output metadata lazily by collecting input edge
// metadata in slot order and applying the filter transform. It is nil while
// any input is unconnected or has unknown metadata. Disabled nodes pass their
// input metadata through.
func (n *Node) Meta() (meta.Meta, error) {
	if !n.enabled {
		if n.inputs[0] == nil {
			return nil, nil
		}
		return n.inputs[0].Meta()
	}

	inputs := make([]meta.Meta, 0, len(n.inputs))
	for _, e := range n.inputs {
		if e == nil {
			return nil, nil
		}
		m, err := e.Meta()
		if err != nil {
			return nil, err
		}
		if m == nil {
			return nil, nil
		}
		inputs = append(inputs, m)
	}
	return n.filter.Transform(inputs...)
}

// Connect creates an edge from the node's first free output slot and binds it
// into the consumer's first free input slot.
func (n *Node) Connect(c Consumer) (*Edge, error) {
	if c.Kind() != n.Kind() {
		return nil, fmt.Errorf("%w: %s node %s to %s consumer", ErrKindMismatch,
			n.Kind(), n.filter.Name(), c.Kind())
	}

	slot := -1
	for i, e := range n.outputs {
		if e == nil {
			slot = i
			break
		}
	}
	if slot < 0 {
		return nil, fmt.Errorf("%w: all %d outputs of %s connected",
			ErrNoFreeSlot, len(n.outputs), n.filter.Name())
	}

	e := &Edge{input: n}
	if err := c.ConnectEdge(e); err != nil {
		return nil, err
	}
	e.output = c
	n.outputs[slot] = e
	return e, nil
}

// ConnectEdge binds an incoming edge into the node's first free input slot,
// validating stream kind and hardware context against the edge metadata.
func (n *Node) ConnectEdge(e *Edge) error {
	if e.Kind() != n.Kind() {
		return fmt.Errorf("%w: %s edge to %s node %s", ErrKindMismatch,
			e.Kind(), n.Kind(), n.filter.Name())
	}
	if err := n.checkDevice(e); err != nil {
		return err
	}

	for i, bound := range n.inputs {
		if bound == nil {
			n.inputs[i] = e
			return nil
		}
	}
	return fmt.Errorf("%w: all %d inputs of %s connected",
		ErrNoFreeSlot, len(n.inputs), n.filter.Name())
}

// DisconnectEdge releases a bound input edge for reconnection elsewhere.
func (n *Node) DisconnectEdge(e *Edge) error {
	for i, bound := range n.inputs {
		if bound == e {
			n.inputs[i] = nil
			return nil
		}
	}
	return fmt.Errorf("%w: edge not bound to node %s", ErrNotConnected,
		n.filter.Name())
}

// Clone creates a new node with a clone of the filter configuration and the
// same enabled state. Producers of already bound input edges are reconnected
// to the clone at the same slot positions; output slots start empty.
func (n *Node) Clone() (*Node, error) {
	clone := NewNode(n.filter.Clone())
	clone.enabled = n.enabled

	for i, bound := range n.inputs {
		if bound == nil {
			continue
		}
		e := &Edge{output: clone}
		switch p := bound.input.(type) {
		case *Source:
			e.input = p
			p.edges = append(p.edges, e)
		case *Node:
			slot := -1
			for j, out := range p.outputs {
				if out == nil {
					slot = j
					break
				}
			}
			if slot < 0 {
				return nil, fmt.Errorf("%w: all %d outputs of %s connected",
					ErrNoFreeSlot, len(p.outputs), p.filter.Name())
			}
			e.input = p
			p.outputs[slot] = e
		default:
			return nil, fmt.Errorf("clone of %s: unsupported producer %T",
				n.filter.Name(), bound.input)
		}
		clone.inputs[i] = e
	}
	return clone, nil
}

// checkDevice rejects hardware frames flowing into software filters and vice
// versa. Unknown metadata passes; the mismatch then surfaces when metadata
// becomes available downstream.
func (n *Node) checkDevice(e *Edge) error {
	m, err := e.Meta()
	if err != nil {
		return err
	}
	vm, ok := m.(meta.VideoMeta)
	if !ok {
		return nil
	}

	var hardware string
	if vm.Device != nil {
		hardware = vm.Device.Hardware
	}
	if required := n.filter.Caps().Hardware; hardware != required {
		return fmt.Errorf("%w: %s edge frames on %q, filter %s requires %q",
			ErrDeviceMismatch, e.Kind(), hardware, n.filter.Name(), required)
	}
	return nil
}
