package filters

import (
	"fmt"

	"github.com/just-work/fffw-sub000/pkg/graph"
	"github.com/just-work/fffw-sub000/pkg/meta"
)

// Scale resizes a video stream to a fixed resolution, keeping the display
// aspect ratio and recomputing the pixel aspect ratio.
type Scale struct {
	Width  int
	Height int
}

// NewScale creates a scale node.
func NewScale(width, height int) *graph.Node {
	return graph.NewNode(Scale{Width: width, Height: height})
}

func (f Scale) Name() string { return "scale" }

func (f Scale) Args() string {
	return fmt.Sprintf("%dx%d", f.Width, f.Height)
}

func (f Scale) Caps() graph.Caps { return graph.Caps{Kind: meta.StreamVideo} }

func (f Scale) InputCount() int  { return 1 }
func (f Scale) OutputCount() int { return 1 }

// Transform replaces width and height, keeps the display aspect ratio fixed
// and derives the new pixel aspect ratio from it.
func (f Scale) Transform(inputs ...meta.Meta) (meta.Meta, error) {
	vm, err := videoMeta(inputs[0], f.Name())
	if err != nil {
		return nil, err
	}

	out := vm
	out.CommonMeta = vm.Common()
	out.PixelAspectRatio = vm.DisplayAspectRatio / (float64(f.Width) / float64(f.Height))
	out.Width = f.Width
	out.Height = f.Height
	return out, nil
}

func (f Scale) Clone() graph.Filter { return f }
