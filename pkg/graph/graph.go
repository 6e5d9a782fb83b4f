// Package graph implements the filter graph model: sources, destinations,
// nodes and the edges connecting them, plus unique edge naming and rendering
// of the graph into an ffmpeg -filter_complex description.
//
// A graph is built once by connecting producers to consumers, then rendered
// possibly many times. All errors are immediate configuration errors; nothing
// inside the package retries or logs.
package graph

import (
	"errors"

	"github.com/just-work/fffw-sub000/pkg/meta"
)

// Error classes for graph configuration failures. Concrete errors wrap one of
// these so callers can classify with errors.Is.
var (
	// ErrSlotTaken is returned when connecting to an already bound slot.
	ErrSlotTaken = errors.New("slot already connected")
	// ErrNoFreeSlot is returned when a node has no unbound slot left.
	ErrNoFreeSlot = errors.New("no free slot")
	// ErrNotConnected is returned when a required slot is unbound outside
	// partial render mode.
	ErrNotConnected = errors.New("slot not connected")
	// ErrKindMismatch is returned when audio and video endpoints are mixed.
	ErrKindMismatch = errors.New("stream kind mismatch")
	// ErrDeviceMismatch is returned when hardware and software filters are
	// mixed on one edge.
	ErrDeviceMismatch = errors.New("hardware device mismatch")
	// ErrArity is returned for operations invalid for a node's slot counts,
	// like disabling a node that is not (1, 1).
	ErrArity = errors.New("invalid node arity")
	// ErrReconnected is returned when an edge is reconnected a second time.
	ErrReconnected = errors.New("edge already reconnected")
)

// Producer originates edges: a Source or a Node output side.
type Producer interface {
	// Kind identifies the stream kind produced.
	Kind() meta.StreamType
	// Meta returns the produced stream metadata, or nil when unknown.
	Meta() (meta.Meta, error)
	// Connect creates a new edge from the producer and binds it into the
	// consumer's first free input slot.
	Connect(c Consumer) (*Edge, error)
}

// Consumer terminates edges: a Node input side or a destination (an output
// slot or codec).
type Consumer interface {
	// Kind identifies the stream kind consumed.
	Kind() meta.StreamType
	// ConnectEdge binds an incoming edge into the first free input slot.
	ConnectEdge(e *Edge) error
	// DisconnectEdge releases a previously bound edge, used when the edge is
	// reconnected elsewhere.
	DisconnectEdge(e *Edge) error
}
