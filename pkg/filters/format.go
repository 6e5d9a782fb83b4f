package filters

import (
	"github.com/just-work/fffw-sub000/pkg/graph"
	"github.com/just-work/fffw-sub000/pkg/meta"
)

// Format converts a video stream to a pixel format. Metadata is unchanged.
type Format struct {
	Format string
}

// NewFormat creates a pixel format conversion node.
func NewFormat(format string) *graph.Node {
	return graph.NewNode(Format{Format: format})
}

func (f Format) Name() string { return "format" }

func (f Format) Args() string { return f.Format }

func (f Format) Caps() graph.Caps { return graph.Caps{Kind: meta.StreamVideo} }

func (f Format) InputCount() int  { return 1 }
func (f Format) OutputCount() int { return 1 }

// Transform is the identity: pixel format is not tracked in metadata.
func (f Format) Transform(inputs ...meta.Meta) (meta.Meta, error) {
	if _, err := videoMeta(inputs[0], f.Name()); err != nil {
		return nil, err
	}
	return inputs[0], nil
}

func (f Format) Clone() graph.Filter { return f }
