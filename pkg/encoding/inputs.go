// Package encoding wires the filter graph into a complete transcoder
// invocation: input files with their decoded streams, output files with
// codecs, the argument vector assembly and the vector combinators for
// multi-output transcodes.
package encoding

import (
	"fmt"

	"github.com/just-work/fffw-sub000/pkg/graph"
	"github.com/just-work/fffw-sub000/pkg/meta"
	"github.com/just-work/fffw-sub000/pkg/wrapper"
)

// Stream is one decoded stream of an input file, backed by a graph source.
// Its stable identifier ("0:v", "1:a") is assigned when the owning input is
// added to an FFMPEG instance.
type Stream struct {
	source *graph.Source
}

// NewStream creates a stream of the given kind with optional metadata.
func NewStream(kind meta.StreamType, m meta.Meta) (*Stream, error) {
	source := graph.NewSource("", kind)
	if err := source.SetMeta(m); err != nil {
		return nil, err
	}
	return &Stream{source: source}, nil
}

// Kind returns the stream kind.
func (s *Stream) Kind() meta.StreamType { return s.source.Kind() }

// Meta returns the stream metadata, nil when unknown.
func (s *Stream) Meta() meta.Meta {
	m, _ := s.source.Meta()
	return m
}

// Name returns the stream identifier, empty until indexed.
func (s *Stream) Name() string { return s.source.Name() }

// Source returns the backing graph source.
func (s *Stream) Source() *graph.Source { return s.source }

// Connect wires the stream into a filter node or codec.
func (s *Stream) Connect(c graph.Consumer) (*graph.Edge, error) {
	return s.source.Connect(c)
}

// Input is one input file with its decoded streams and decoder-side options.
type Input struct {
	Path string
	// Start seeks the demuxer before decoding (-ss).
	Start meta.TS `arg:"-ss,omitempty"`
	// Duration limits decoded data (-t).
	Duration meta.TS `arg:"-t,omitempty"`

	streams []*Stream
	index   int
}

// NewInput creates an input file owning the given streams.
func NewInput(path string, streams ...*Stream) *Input {
	return &Input{Path: path, index: -1, streams: streams}
}

// Streams returns the input's streams in declaration order.
func (in *Input) Streams() []*Stream { return in.streams }

// Stream returns the first stream of the given kind, nil when absent.
func (in *Input) Stream(kind meta.StreamType) *Stream {
	for _, s := range in.streams {
		if s.Kind() == kind {
			return s
		}
	}
	return nil
}

// Args renders the input's argument list: decoder options followed by -i.
func (in *Input) Args() ([]string, error) {
	args, err := wrapper.Args(in)
	if err != nil {
		return nil, err
	}
	return append(args, "-i", in.Path), nil
}

// setIndex assigns the file index and derives stream identifiers: the first
// stream of a kind is named "<index>:<kind>", further streams of the same
// kind get an extra per-kind position suffix.
func (in *Input) setIndex(index int) {
	in.index = index
	perKind := make(map[meta.StreamType]int)
	for _, s := range in.streams {
		position := perKind[s.Kind()]
		perKind[s.Kind()]++

		name := fmt.Sprintf("%d:%s", index, s.Kind())
		if position > 0 {
			name = fmt.Sprintf("%s:%d", name, position)
		}
		s.source.SetName(name)
	}
}
