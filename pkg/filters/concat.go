package filters

import (
	"fmt"
	"math"

	"github.com/just-work/fffw-sub000/pkg/graph"
	"github.com/just-work/fffw-sub000/pkg/meta"
)

// Concat joins several streams of one kind back to back.
type Concat struct {
	Kind   meta.StreamType
	Inputs int
}

// NewConcat creates a concat node. With a single input the node is disabled
// and behaves as a transparent pass-through.
func NewConcat(kind meta.StreamType, inputs int) *graph.Node {
	node := graph.NewNode(Concat{Kind: kind, Inputs: inputs})
	if inputs == 1 {
		// (1, 1) arity, cannot fail.
		_ = node.SetEnabled(false)
	}
	return node
}

func (f Concat) Name() string { return "concat" }

func (f Concat) Args() string {
	if f.Kind == meta.StreamAudio {
		return fmt.Sprintf("v=0:a=1:n=%d", f.Inputs)
	}
	return fmt.Sprintf("v=1:a=0:n=%d", f.Inputs)
}

func (f Concat) Caps() graph.Caps { return graph.Caps{Kind: f.Kind} }

func (f Concat) InputCount() int  { return f.Inputs }
func (f Concat) OutputCount() int { return 1 }

// Transform sums input durations, renumbers scene positions by cumulative
// offset and joins stream lists deduplicating only adjacent repeats.
//
// For audio, the sample count is recomputed from the total duration and the
// first input's sampling rate. With differing input rates this is a known
// approximation kept for compatibility, not corrected here.
func (f Concat) Transform(inputs ...meta.Meta) (meta.Meta, error) {
	first := inputs[0]

	var duration meta.TS
	var scenes []meta.Scene
	var streams []string
	var frames int64
	for _, m := range inputs {
		if m.Kind() != first.Kind() {
			return nil, fmt.Errorf("%w: concat of %s and %s inputs",
				ErrMetadataType, first.Kind(), m.Kind())
		}
		common := m.Common()
		for _, scene := range common.Scenes {
			scene.Position = scene.Position.Add(duration)
			scenes = append(scenes, scene)
		}
		for _, stream := range common.Streams {
			if len(streams) == 0 || streams[len(streams)-1] != stream {
				streams = append(streams, stream)
			}
		}
		duration = duration.Add(common.Duration)
		if vm, ok := m.(meta.VideoMeta); ok {
			frames += vm.Frames
		}
	}

	common := first.Common()
	common.Duration = duration
	common.Scenes = scenes
	common.Streams = streams

	switch first := first.(type) {
	case meta.VideoMeta:
		out := first
		out.CommonMeta = common
		out.Frames = frames
		return out, nil
	case meta.AudioMeta:
		out := first
		out.CommonMeta = common
		out.Samples = int64(math.Round(duration.Seconds() * float64(first.SamplingRate)))
		return out, nil
	default:
		return nil, fmt.Errorf("%w: concat got %T", ErrMetadataType, first)
	}
}

func (f Concat) Clone() graph.Filter { return f }
