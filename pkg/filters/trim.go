package filters

import (
	"fmt"
	"math"

	"github.com/just-work/fffw-sub000/pkg/graph"
	"github.com/just-work/fffw-sub000/pkg/meta"
)

// Trim clips a stream to the [Start, End) window of its current timeline.
type Trim struct {
	Kind  meta.StreamType
	Start meta.TS
	End   meta.TS
}

// NewTrim creates a trim node for the given stream kind.
func NewTrim(kind meta.StreamType, start, end meta.TS) *graph.Node {
	return graph.NewNode(Trim{Kind: kind, Start: start, End: end})
}

func (f Trim) Name() string { return kindName(f.Kind, "trim", "atrim") }

func (f Trim) Args() string {
	return fmt.Sprintf("start=%s:end=%s", f.Start, f.End)
}

func (f Trim) Caps() graph.Caps { return graph.Caps{Kind: f.Kind} }

func (f Trim) InputCount() int  { return 1 }
func (f Trim) OutputCount() int { return 1 }

// Transform intersects each input scene with the trim window, dropping empty
// intersections, and recomputes start, duration and the frame or sample count
// from the window bounds. Keeping per-scene source offsets allows detecting
// buffering when scenes from one file are reordered, like input[3:4] followed
// by input[1:2].
func (f Trim) Transform(inputs ...meta.Meta) (meta.Meta, error) {
	m := inputs[0]
	common := m.Common()

	var scenes []meta.Scene
	for _, scene := range common.Scenes {
		start := maxTS(f.Start, scene.Position)
		end := minTS(f.End, scene.Position.Add(scene.Duration))
		if start >= end {
			continue
		}
		offset := start.Sub(scene.Position)
		scenes = append(scenes, meta.Scene{
			Stream:   scene.Stream,
			Start:    scene.Start.Add(offset),
			Position: scene.Position.Add(offset),
			Duration: end.Sub(start),
		})
	}

	common.Start = f.Start
	common.Duration = f.End
	common.Scenes = scenes
	common.Streams = meta.ContiguousStreams(scenes)

	interval := f.End.Sub(f.Start).Seconds()
	switch m := m.(type) {
	case meta.VideoMeta:
		out := m
		out.CommonMeta = common
		out.Frames = int64(math.Round(interval * m.FrameRate))
		return out, nil
	case meta.AudioMeta:
		out := m
		out.CommonMeta = common
		out.Samples = int64(math.Round(interval * float64(m.SamplingRate)))
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s got %T", ErrMetadataType, f.Name(), m)
	}
}

func (f Trim) Clone() graph.Filter { return f }

func maxTS(a, b meta.TS) meta.TS {
	if a > b {
		return a
	}
	return b
}

func minTS(a, b meta.TS) meta.TS {
	if a < b {
		return a
	}
	return b
}
