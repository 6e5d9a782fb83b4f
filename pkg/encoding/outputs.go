package encoding

import (
	"errors"
	"fmt"

	"github.com/just-work/fffw-sub000/pkg/graph"
	"github.com/just-work/fffw-sub000/pkg/meta"
	"github.com/just-work/fffw-sub000/pkg/wrapper"
)

// ErrBuffering is returned when a codec's incoming stream interleaves scenes
// of one source stream out of timestamp order, which would force the player
// to buffer.
var ErrBuffering = errors.New("buffering detected")

// Codec is the shared terminal-sink behavior of audio and video codecs.
// Unlike a plain graph destination it accepts several incoming edges over its
// lifetime, each one becoming an additional -map argument.
type Codec struct {
	kind  meta.StreamType
	edges []*graph.Edge
}

// Kind returns the codec's stream kind.
func (c *Codec) Kind() meta.StreamType { return c.kind }

// StreamSuffix returns the ":v"/":a" flag suffix for suffix-tagged params.
func (c *Codec) StreamSuffix() string { return ":" + c.kind.String() }

// Edges returns the bound incoming edges in connection order.
func (c *Codec) Edges() []*graph.Edge { return c.edges }

// ConnectEdge accepts one more incoming edge.
func (c *Codec) ConnectEdge(e *graph.Edge) error {
	if e.Kind() != c.kind {
		return fmt.Errorf("%w: %s edge to %s codec", graph.ErrKindMismatch,
			e.Kind(), c.kind)
	}
	c.edges = append(c.edges, e)
	return nil
}

// DisconnectEdge releases a bound edge for reconnection elsewhere.
func (c *Codec) DisconnectEdge(e *graph.Edge) error {
	for i, bound := range c.edges {
		if bound == e {
			c.edges = append(c.edges[:i], c.edges[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: edge not bound to %s codec", graph.ErrNotConnected, c.kind)
}

// MapArgs renders one -map argument per bound edge: the bare source
// identifier for unfiltered streams, the bracketed edge label otherwise.
func (c *Codec) MapArgs(namer *graph.Namer) ([]string, error) {
	if len(c.edges) == 0 {
		return nil, fmt.Errorf("%w: %s codec has no incoming edge",
			graph.ErrNotConnected, c.kind)
	}

	var args []string
	for _, e := range c.edges {
		resolved, err := e.Resolve()
		if err != nil {
			return nil, err
		}
		if src, ok := resolved.Input().(*graph.Source); ok {
			args = append(args, "-map", src.Name())
			continue
		}
		name, err := namer.Name(e)
		if err != nil {
			return nil, err
		}
		args = append(args, "-map", "["+name+"]")
	}
	return args, nil
}

// CheckBuffering validates scene ordering on every incoming edge: scenes
// sharing one source stream must keep non-decreasing source timestamps in
// output order. Runs before the external process is invoked.
func (c *Codec) CheckBuffering() error {
	for _, e := range c.edges {
		m, err := e.Meta()
		if err != nil {
			return err
		}
		if m == nil {
			continue
		}

		last := make(map[string]meta.TS)
		for _, scene := range m.Common().Scenes {
			if scene.Stream == "" {
				continue
			}
			if prev, ok := last[scene.Stream]; ok && scene.Start < prev {
				return fmt.Errorf("%w: stream %s scene at %s precedes %s",
					ErrBuffering, scene.Stream, scene.Start, prev)
			}
			last[scene.Stream] = scene.Start
		}
	}
	return nil
}

// VideoCodec encodes one video stream of an output file.
type VideoCodec struct {
	Codec
	Name        string  `arg:"-c,suffix"`
	Bitrate     int64   `arg:"-b,suffix,omitempty"`
	FrameRate   float64 `arg:"-r,suffix,omitempty"`
	PixelFormat string  `arg:"-pix_fmt,omitempty"`
	Preset      string  `arg:"-preset,omitempty"`
}

// NewVideoCodec creates a video codec by encoder name (e.g. "libx264").
func NewVideoCodec(name string) *VideoCodec {
	return &VideoCodec{Codec: Codec{kind: meta.StreamVideo}, Name: name}
}

// CodecArgs renders the codec parameter flags.
func (c *VideoCodec) CodecArgs() ([]string, error) { return wrapper.Args(c) }

// AudioCodec encodes one audio stream of an output file.
type AudioCodec struct {
	Codec
	Name       string `arg:"-c,suffix"`
	Bitrate    int64  `arg:"-b,suffix,omitempty"`
	SampleRate int    `arg:"-ar,omitempty"`
	Channels   int    `arg:"-ac,omitempty"`
}

// NewAudioCodec creates an audio codec by encoder name (e.g. "aac").
func NewAudioCodec(name string) *AudioCodec {
	return &AudioCodec{Codec: Codec{kind: meta.StreamAudio}, Name: name}
}

// CodecArgs renders the codec parameter flags.
func (c *AudioCodec) CodecArgs() ([]string, error) { return wrapper.Args(c) }

// OutputCodec is one encoder slot of an output file.
type OutputCodec interface {
	graph.Consumer
	MapArgs(namer *graph.Namer) ([]string, error)
	CodecArgs() ([]string, error)
	CheckBuffering() error
}

// Output is one output file: a muxer format, codecs and a destination path.
type Output struct {
	Path   string
	Format string `arg:"-f,omitempty"`

	codecs []OutputCodec
}

// NewOutput creates an output file with its codecs.
func NewOutput(path, format string, codecs ...OutputCodec) *Output {
	return &Output{Path: path, Format: format, codecs: codecs}
}

// Codecs returns the output's codecs in declaration order.
func (o *Output) Codecs() []OutputCodec { return o.codecs }

// Args renders the output group: per-codec maps and parameters, muxer format
// and destination path. Buffering validation runs here, before any process
// is spawned.
func (o *Output) Args(namer *graph.Namer) ([]string, error) {
	var args []string
	for _, codec := range o.codecs {
		if err := codec.CheckBuffering(); err != nil {
			return nil, err
		}
		maps, err := codec.MapArgs(namer)
		if err != nil {
			return nil, err
		}
		params, err := codec.CodecArgs()
		if err != nil {
			return nil, err
		}
		args = append(args, maps...)
		args = append(args, params...)
	}

	formatArgs, err := wrapper.Args(o)
	if err != nil {
		return nil, err
	}
	args = append(args, formatArgs...)
	return append(args, o.Path), nil
}
