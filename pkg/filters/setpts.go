package filters

import (
	"fmt"
	"strings"

	"github.com/just-work/fffw-sub000/pkg/graph"
	"github.com/just-work/fffw-sub000/pkg/meta"
)

// ResetPTS is the only presentation timestamp expression with defined
// metadata semantics: shifting the stream to start at zero.
const ResetPTS = "PTS-STARTPTS"

// SetPTS rewrites presentation timestamps. Only the ResetPTS expression is
// supported by the metadata transform.
type SetPTS struct {
	Kind meta.StreamType
	Expr string
}

// NewSetPTS creates a setpts node for the given stream kind.
func NewSetPTS(kind meta.StreamType, expr string) *graph.Node {
	return graph.NewNode(SetPTS{Kind: kind, Expr: expr})
}

func (f SetPTS) Name() string { return kindName(f.Kind, "setpts", "asetpts") }

func (f SetPTS) Args() string { return f.Expr }

func (f SetPTS) Caps() graph.Caps { return graph.Caps{Kind: f.Kind} }

func (f SetPTS) InputCount() int  { return 1 }
func (f SetPTS) OutputCount() int { return 1 }

// Transform resets the stream start to zero, shortening duration by the old
// start. Any expression other than ResetPTS (whitespace-insensitive) has no
// computable metadata and fails.
func (f SetPTS) Transform(inputs ...meta.Meta) (meta.Meta, error) {
	if strings.ReplaceAll(f.Expr, " ", "") != ResetPTS {
		return nil, fmt.Errorf("%s: metadata for expression %q not implemented",
			f.Name(), f.Expr)
	}

	m := inputs[0]
	common := m.Common()
	common.Duration = common.Duration.Sub(common.Start)
	common.Start = 0

	switch m := m.(type) {
	case meta.VideoMeta:
		out := m
		out.CommonMeta = common
		return out, nil
	case meta.AudioMeta:
		out := m
		out.CommonMeta = common
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s got %T", ErrMetadataType, f.Name(), m)
	}
}

func (f SetPTS) Clone() graph.Filter { return f }
