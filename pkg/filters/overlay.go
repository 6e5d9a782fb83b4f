package filters

import (
	"fmt"

	"github.com/just-work/fffw-sub000/pkg/graph"
	"github.com/just-work/fffw-sub000/pkg/meta"
)

// Overlay places a top video layer over a bottom one at a fixed offset.
// Input slot 0 is the bottom layer, slot 1 the top.
type Overlay struct {
	X int
	Y int
}

// NewOverlay creates an overlay node.
func NewOverlay(x, y int) *graph.Node {
	return graph.NewNode(Overlay{X: x, Y: y})
}

func (f Overlay) Name() string { return "overlay" }

func (f Overlay) Args() string {
	return fmt.Sprintf("x=%d:y=%d", f.X, f.Y)
}

func (f Overlay) Caps() graph.Caps { return graph.Caps{Kind: meta.StreamVideo} }

func (f Overlay) InputCount() int  { return 2 }
func (f Overlay) OutputCount() int { return 1 }

// Transform passes the bottom layer metadata through untouched. The top layer
// is intentionally not merged or validated against it.
func (f Overlay) Transform(inputs ...meta.Meta) (meta.Meta, error) {
	if _, err := videoMeta(inputs[0], f.Name()); err != nil {
		return nil, err
	}
	return inputs[0], nil
}

func (f Overlay) Clone() graph.Filter { return f }
