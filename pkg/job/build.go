package job

import (
	"fmt"
	"math"

	"github.com/just-work/fffw-sub000/pkg/encoding"
	"github.com/just-work/fffw-sub000/pkg/filters"
	"github.com/just-work/fffw-sub000/pkg/graph"
	"github.com/just-work/fffw-sub000/pkg/meta"
)

// Build compiles a job specification into a fully wired FFMPEG invocation:
// inputs of each kind concatenate back to back, the result fans out into the
// per-output filter chains and codecs.
func Build(spec *Spec) (*encoding.FFMPEG, error) {
	ff := encoding.New()

	var videoStreams, audioStreams []*encoding.Stream
	for i, in := range spec.Inputs {
		input, err := buildInput(i, in)
		if err != nil {
			return nil, err
		}
		ff.AddInput(input)
		if s := input.Stream(meta.StreamVideo); s != nil {
			videoStreams = append(videoStreams, s)
		}
		if s := input.Stream(meta.StreamAudio); s != nil {
			audioStreams = append(audioStreams, s)
		}
	}

	videoCursor, err := joinStreams(meta.StreamVideo, videoStreams, countCodecs(spec, meta.StreamVideo))
	if err != nil {
		return nil, err
	}
	audioCursor, err := joinStreams(meta.StreamAudio, audioStreams, countCodecs(spec, meta.StreamAudio))
	if err != nil {
		return nil, err
	}

	for i, out := range spec.Outputs {
		var codecs []encoding.OutputCodec
		if out.VideoCodec != nil {
			if videoCursor == nil {
				return nil, fmt.Errorf("output %d: video codec without video inputs", i)
			}
			codec := encoding.NewVideoCodec(out.VideoCodec.Codec)
			codec.Bitrate = out.VideoCodec.Bitrate
			codec.FrameRate = out.VideoCodec.FrameRate
			codec.PixelFormat = out.VideoCodec.PixelFormat
			codec.Preset = out.VideoCodec.Preset
			if err := chain(videoCursor, meta.StreamVideo, out.VideoFilters, codec); err != nil {
				return nil, fmt.Errorf("output %d: %w", i, err)
			}
			codecs = append(codecs, codec)
		}
		if out.AudioCodec != nil {
			if audioCursor == nil {
				return nil, fmt.Errorf("output %d: audio codec without audio inputs", i)
			}
			codec := encoding.NewAudioCodec(out.AudioCodec.Codec)
			codec.Bitrate = out.AudioCodec.Bitrate
			codec.SampleRate = out.AudioCodec.SampleRate
			codec.Channels = out.AudioCodec.Channels
			if err := chain(audioCursor, meta.StreamAudio, out.AudioFilters, codec); err != nil {
				return nil, fmt.Errorf("output %d: %w", i, err)
			}
			codecs = append(codecs, codec)
		}
		ff.AddOutput(encoding.NewOutput(out.Path, out.Format, codecs...))
	}
	return ff, nil
}

// buildInput translates one input declaration into an indexed input file
// with validated stream metadata.
func buildInput(index int, in InputSpec) (*encoding.Input, error) {
	var streams []*encoding.Stream

	if in.Video != nil {
		vm, err := videoMeta(in.Path, index, *in.Video)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", index, err)
		}
		s, err := encoding.NewStream(meta.StreamVideo, vm)
		if err != nil {
			return nil, err
		}
		streams = append(streams, s)
	}
	if in.Audio != nil {
		am, err := audioMeta(in.Path, index, *in.Audio)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", index, err)
		}
		s, err := encoding.NewStream(meta.StreamAudio, am)
		if err != nil {
			return nil, err
		}
		streams = append(streams, s)
	}

	input := encoding.NewInput(in.Path, streams...)
	if in.Start != "" {
		start, err := meta.ParseTS(in.Start)
		if err != nil {
			return nil, fmt.Errorf("input %d: %w", index, err)
		}
		input.Start = start
	}
	return input, nil
}

// joinStreams concatenates all streams of one kind and fans the result out
// to the outputs consuming it. Single-input concats and single-output splits
// stay disabled and render as transparent pass-throughs.
func joinStreams(kind meta.StreamType, streams []*encoding.Stream, consumers int) (graph.Producer, error) {
	if len(streams) == 0 || consumers == 0 {
		return nil, nil
	}

	concat := filters.NewConcat(kind, len(streams))
	for _, s := range streams {
		if _, err := s.Connect(concat); err != nil {
			return nil, err
		}
	}

	split := filters.NewSplit(kind, consumers)
	if _, err := concat.Connect(split); err != nil {
		return nil, err
	}
	return split, nil
}

// chain wires one output's filter chain from the shared cursor into a codec.
func chain(cursor graph.Producer, kind meta.StreamType, specs []FilterSpec, codec graph.Consumer) error {
	for _, fs := range specs {
		node, err := makeFilter(kind, fs)
		if err != nil {
			return err
		}
		if _, err := cursor.Connect(node); err != nil {
			return err
		}
		cursor = node
	}
	_, err := cursor.Connect(codec)
	return err
}

// makeFilter instantiates one filter node from its declaration.
func makeFilter(kind meta.StreamType, fs FilterSpec) (*graph.Node, error) {
	switch fs.Name {
	case "scale":
		if kind != meta.StreamVideo {
			return nil, fmt.Errorf("filter scale: %w", graph.ErrKindMismatch)
		}
		return filters.NewScale(fs.Width, fs.Height), nil
	case "trim":
		start, err := parseTS(fs.Start)
		if err != nil {
			return nil, fmt.Errorf("filter trim: %w", err)
		}
		end, err := parseTS(fs.End)
		if err != nil {
			return nil, fmt.Errorf("filter trim: %w", err)
		}
		return filters.NewTrim(kind, start, end), nil
	case "setpts":
		expr := fs.Expr
		if expr == "" {
			expr = filters.ResetPTS
		}
		return filters.NewSetPTS(kind, expr), nil
	case "format":
		if kind != meta.StreamVideo {
			return nil, fmt.Errorf("filter format: %w", graph.ErrKindMismatch)
		}
		return filters.NewFormat(fs.Format), nil
	case "volume":
		if kind != meta.StreamAudio {
			return nil, fmt.Errorf("filter volume: %w", graph.ErrKindMismatch)
		}
		return filters.NewVolume(fs.Level), nil
	default:
		return nil, fmt.Errorf("unknown filter %q", fs.Name)
	}
}

// countCodecs counts outputs consuming the given stream kind.
func countCodecs(spec *Spec, kind meta.StreamType) int {
	count := 0
	for _, out := range spec.Outputs {
		if kind == meta.StreamVideo && out.VideoCodec != nil {
			count++
		}
		if kind == meta.StreamAudio && out.AudioCodec != nil {
			count++
		}
	}
	return count
}

func videoMeta(path string, index int, spec VideoStreamSpec) (meta.VideoMeta, error) {
	duration, err := parseTS(spec.Duration)
	if err != nil {
		return meta.VideoMeta{}, err
	}
	par := spec.PixelAspectRatio
	if par == 0 {
		par = 1
	}
	dar := math.NaN()
	if spec.Height != 0 {
		dar = float64(spec.Width) / float64(spec.Height) * par
	}

	streamID := fmt.Sprintf("%s#%d:v", path, index)
	vm := meta.VideoMeta{
		CommonMeta:         commonMeta(streamID, duration),
		Width:              spec.Width,
		Height:             spec.Height,
		PixelAspectRatio:   par,
		DisplayAspectRatio: dar,
		FrameRate:          spec.FrameRate,
		Frames:             int64(math.Round(duration.Seconds() * spec.FrameRate)),
	}
	if err := vm.Validate(); err != nil {
		return meta.VideoMeta{}, err
	}
	return vm, nil
}

func audioMeta(path string, index int, spec AudioStreamSpec) (meta.AudioMeta, error) {
	duration, err := parseTS(spec.Duration)
	if err != nil {
		return meta.AudioMeta{}, err
	}

	streamID := fmt.Sprintf("%s#%d:a", path, index)
	am := meta.AudioMeta{
		CommonMeta:   commonMeta(streamID, duration),
		SamplingRate: spec.SampleRate,
		Channels:     spec.Channels,
		Samples:      int64(math.Round(duration.Seconds() * float64(spec.SampleRate))),
	}
	if err := am.Validate(); err != nil {
		return meta.AudioMeta{}, err
	}
	return am, nil
}

func commonMeta(streamID string, duration meta.TS) meta.CommonMeta {
	return meta.CommonMeta{
		Duration: duration,
		Scenes: []meta.Scene{{
			Stream:   streamID,
			Duration: duration,
		}},
		Streams: []string{streamID},
	}
}

func parseTS(s string) (meta.TS, error) {
	if s == "" {
		return 0, nil
	}
	return meta.ParseTS(s)
}
