package filters

import (
	"fmt"

	"github.com/just-work/fffw-sub000/pkg/graph"
	"github.com/just-work/fffw-sub000/pkg/meta"
)

// Volume adjusts audio gain. Timing metadata is unchanged.
type Volume struct {
	Level float64
}

// NewVolume creates a volume node.
func NewVolume(level float64) *graph.Node {
	return graph.NewNode(Volume{Level: level})
}

func (f Volume) Name() string { return "volume" }

func (f Volume) Args() string {
	return fmt.Sprintf("%.2f", f.Level)
}

func (f Volume) Caps() graph.Caps { return graph.Caps{Kind: meta.StreamAudio} }

func (f Volume) InputCount() int  { return 1 }
func (f Volume) OutputCount() int { return 1 }

// Transform is the identity: gain does not affect stream timing.
func (f Volume) Transform(inputs ...meta.Meta) (meta.Meta, error) {
	if _, err := audioMeta(inputs[0], f.Name()); err != nil {
		return nil, err
	}
	return inputs[0], nil
}

func (f Volume) Clone() graph.Filter { return f }
