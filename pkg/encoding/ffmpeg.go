package encoding

import (
	"fmt"

	"github.com/just-work/fffw-sub000/pkg/graph"
	"github.com/just-work/fffw-sub000/pkg/wrapper"
)

// FFMPEG assembles the complete argument vector for one transcoder
// invocation: global flags, indexed inputs, the rendered -filter_complex
// payload and per-output codec groups.
type FFMPEG struct {
	// BinPath is the transcoder binary, "ffmpeg" by default.
	BinPath string

	Overwrite bool   `arg:"-y"`
	LogLevel  string `arg:"-loglevel,omitempty"`

	inputs  []*Input
	outputs []*Output
}

// New creates an FFMPEG command shell with default binary and overwrite
// enabled.
func New() *FFMPEG {
	return &FFMPEG{BinPath: "ffmpeg", Overwrite: true}
}

// AddInput registers an input file, assigns its file index and derives its
// stream identifiers. It returns the input for chaining.
func (ff *FFMPEG) AddInput(in *Input) *Input {
	in.setIndex(len(ff.inputs))
	ff.inputs = append(ff.inputs, in)
	return in
}

// AddOutput registers an output file.
func (ff *FFMPEG) AddOutput(o *Output) *Output {
	ff.outputs = append(ff.outputs, o)
	return o
}

// Inputs returns registered inputs in index order.
func (ff *FFMPEG) Inputs() []*Input { return ff.inputs }

// Outputs returns registered outputs in declaration order.
func (ff *FFMPEG) Outputs() []*Output { return ff.outputs }

// sources collects every connected graph source across all input streams.
func (ff *FFMPEG) sources() []*graph.Source {
	var sources []*graph.Source
	for _, in := range ff.inputs {
		for _, s := range in.streams {
			if len(s.source.Edges()) > 0 {
				sources = append(sources, s.source)
			}
		}
	}
	return sources
}

// FilterComplex renders the filter graph description under the given Namer.
// In partial mode unconnected slots render as placeholders.
func (ff *FFMPEG) FilterComplex(namer *graph.Namer, partial bool) (string, error) {
	return graph.FilterComplex(namer, partial, ff.sources()...)
}

// Args assembles the full argument vector, starting with the binary path.
// Rendering happens under a fresh Namer, so repeated calls on an unchanged
// graph produce identical output.
func (ff *FFMPEG) Args() ([]string, error) {
	if len(ff.outputs) == 0 {
		return nil, fmt.Errorf("ffmpeg: no outputs configured")
	}

	args := []string{ff.BinPath}
	global, err := wrapper.Args(ff)
	if err != nil {
		return nil, err
	}
	args = append(args, global...)

	for _, in := range ff.inputs {
		inputArgs, err := in.Args()
		if err != nil {
			return nil, err
		}
		args = append(args, inputArgs...)
	}

	// The filter graph renders before output maps so the shared Namer
	// assigns labels in traversal order.
	namer := graph.NewNamer()
	filterComplex, err := ff.FilterComplex(namer, false)
	if err != nil {
		return nil, err
	}
	if filterComplex != "" {
		args = append(args, "-filter_complex", filterComplex)
	}

	for _, o := range ff.outputs {
		outputArgs, err := o.Args(namer)
		if err != nil {
			return nil, err
		}
		args = append(args, outputArgs...)
	}
	return args, nil
}
