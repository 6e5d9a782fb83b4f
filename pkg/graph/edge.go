package graph

import (
	"fmt"

	"github.com/just-work/fffw-sub000/pkg/meta"
)

// Edge is a single directed connection between one producer (Source or Node
// output slot) and one consumer (Node input slot or destination). Edges are
// created at connection time; the output side may be rebound exactly once via
// Reconnect, which supports inserting Split nodes after the fact.
type Edge struct {
	input       Producer
	output      Consumer
	reconnected bool
}

// Input returns the producing endpoint.
func (e *Edge) Input() Producer { return e.input }

// Output returns the consuming endpoint, nil while unbound.
func (e *Edge) Output() Consumer { return e.output }

// Kind returns the stream kind flowing over the edge.
func (e *Edge) Kind() meta.StreamType { return e.input.Kind() }

// Meta returns the metadata of the stream flowing over the edge, computed by
// the producing side. It is nil when the producer's metadata is unknown.
func (e *Edge) Meta() (meta.Meta, error) { return e.input.Meta() }

// Resolve follows consecutive disabled pass-through nodes upstream and
// returns the effective edge carrying the actual signal.
func (e *Edge) Resolve() (*Edge, error) {
	for {
		node, ok := e.input.(*Node)
		if !ok || node.enabled {
			return e, nil
		}
		prev := node.inputs[0]
		if prev == nil {
			return nil, fmt.Errorf("%w: disabled %s node has no input",
				ErrNotConnected, node.filter.Name())
		}
		e = prev
	}
}

// Reconnect detaches the edge from its current consumer and rebinds it to
// another one. An edge may be reconnected at most once.
func (e *Edge) Reconnect(c Consumer) error {
	if e.reconnected {
		return fmt.Errorf("%w: %s edge", ErrReconnected, e.Kind())
	}
	if c.Kind() != e.Kind() {
		return fmt.Errorf("%w: %s edge to %s consumer", ErrKindMismatch,
			e.Kind(), c.Kind())
	}
	if e.output != nil {
		if err := e.output.DisconnectEdge(e); err != nil {
			return err
		}
		e.output = nil
	}
	if err := c.ConnectEdge(e); err != nil {
		return err
	}
	e.output = c
	e.reconnected = true
	return nil
}
