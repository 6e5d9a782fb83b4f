package filters

import (
	"strconv"

	"github.com/just-work/fffw-sub000/pkg/graph"
	"github.com/just-work/fffw-sub000/pkg/meta"
)

// Split duplicates one stream into several identical outputs.
type Split struct {
	Kind    meta.StreamType
	Outputs int
}

// NewSplit creates a split node. With a single output the node is disabled
// and behaves as a transparent pass-through.
func NewSplit(kind meta.StreamType, outputs int) *graph.Node {
	node := graph.NewNode(Split{Kind: kind, Outputs: outputs})
	if outputs == 1 {
		// (1, 1) arity, cannot fail.
		_ = node.SetEnabled(false)
	}
	return node
}

func (f Split) Name() string { return kindName(f.Kind, "split", "asplit") }

// Args is empty for the default two-way split.
func (f Split) Args() string {
	if f.Outputs == 2 {
		return ""
	}
	return strconv.Itoa(f.Outputs)
}

func (f Split) Caps() graph.Caps { return graph.Caps{Kind: f.Kind} }

func (f Split) InputCount() int  { return 1 }
func (f Split) OutputCount() int { return f.Outputs }

// Transform is the identity: every output carries the input stream unchanged.
func (f Split) Transform(inputs ...meta.Meta) (meta.Meta, error) {
	return inputs[0], nil
}

func (f Split) Clone() graph.Filter { return f }
