package graph

import (
	"fmt"

	"github.com/just-work/fffw-sub000/pkg/meta"
)

// Source is a graph vertex representing one decoded input stream. It has no
// incoming edges and owns zero or more outgoing ones; each Connect call
// creates a new edge.
type Source struct {
	name  string
	kind  meta.StreamType
	meta  meta.Meta
	edges []*Edge
}

// NewSource creates a source with a stable identifier (typically file index
// plus stream specifier, like "0:v") and a stream kind.
func NewSource(name string, kind meta.StreamType) *Source {
	return &Source{name: name, kind: kind}
}

// Name returns the source's stable identifier.
func (s *Source) Name() string { return s.name }

// SetName updates the source identifier, used by input containers once file
// indexes are assigned. Must happen before the first render.
func (s *Source) SetName(name string) { s.name = name }

// Kind returns the source's stream kind.
func (s *Source) Kind() meta.StreamType { return s.kind }

// Meta returns the source stream metadata, nil when not set.
func (s *Source) Meta() (meta.Meta, error) { return s.meta, nil }

// SetMeta attaches stream metadata to the source.
func (s *Source) SetMeta(m meta.Meta) error {
	if m != nil && m.Kind() != s.kind {
		return fmt.Errorf("%w: %s metadata on %s source %s", ErrKindMismatch,
			m.Kind(), s.kind, s.name)
	}
	s.meta = m
	return nil
}

// Edges returns the source's outgoing edges in connection order.
func (s *Source) Edges() []*Edge { return s.edges }

// Connect creates a new outgoing edge and binds it into the consumer's first
// free input slot.
func (s *Source) Connect(c Consumer) (*Edge, error) {
	if c.Kind() != s.kind {
		return nil, fmt.Errorf("%w: %s source %s to %s consumer",
			ErrKindMismatch, s.kind, s.name, c.Kind())
	}
	e := &Edge{input: s}
	if err := c.ConnectEdge(e); err != nil {
		return nil, err
	}
	e.output = c
	s.edges = append(s.edges, e)
	return e, nil
}

// Dest is a graph vertex representing one terminal sink with exactly one
// incoming edge, bound at most once. Codecs, which accept several incoming
// edges, implement Consumer separately.
type Dest struct {
	name string
	kind meta.StreamType
	edge *Edge
}

// NewDest creates a named sink for the given stream kind.
func NewDest(name string, kind meta.StreamType) *Dest {
	return &Dest{name: name, kind: kind}
}

// Name returns the sink name.
func (d *Dest) Name() string { return d.name }

// Kind returns the sink's stream kind.
func (d *Dest) Kind() meta.StreamType { return d.kind }

// Edge returns the bound incoming edge, nil while unconnected.
func (d *Dest) Edge() *Edge { return d.edge }

// ConnectEdge binds the single incoming edge, failing if one is already set.
func (d *Dest) ConnectEdge(e *Edge) error {
	if e.Kind() != d.kind {
		return fmt.Errorf("%w: %s edge to %s dest %s", ErrKindMismatch,
			e.Kind(), d.kind, d.name)
	}
	if d.edge != nil {
		return fmt.Errorf("%w: dest %s", ErrSlotTaken, d.name)
	}
	d.edge = e
	return nil
}

// DisconnectEdge releases the bound edge for reconnection elsewhere.
func (d *Dest) DisconnectEdge(e *Edge) error {
	if d.edge != e {
		return fmt.Errorf("%w: edge not bound to dest %s", ErrNotConnected, d.name)
	}
	d.edge = nil
	return nil
}
