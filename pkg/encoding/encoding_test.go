package encoding

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/just-work/fffw-sub000/pkg/filters"
	"github.com/just-work/fffw-sub000/pkg/graph"
	"github.com/just-work/fffw-sub000/pkg/meta"
)

func testVideoMeta() meta.VideoMeta {
	return meta.VideoMeta{
		CommonMeta: meta.CommonMeta{
			Duration: meta.Seconds(60),
			Scenes:   []meta.Scene{{Stream: "input.mp4:0", Duration: meta.Seconds(60)}},
			Streams:  []string{"input.mp4:0"},
		},
		Width:              1920,
		Height:             1080,
		PixelAspectRatio:   1.0,
		DisplayAspectRatio: 16.0 / 9.0,
		FrameRate:          30,
		Frames:             1800,
	}
}

func testAudioMeta() meta.AudioMeta {
	return meta.AudioMeta{
		CommonMeta: meta.CommonMeta{
			Duration: meta.Seconds(60),
			Scenes:   []meta.Scene{{Stream: "input.mp4:1", Duration: meta.Seconds(60)}},
			Streams:  []string{"input.mp4:1"},
		},
		SamplingRate: 48000,
		Channels:     2,
		Samples:      2880000,
	}
}

func TestInputStreamNaming(t *testing.T) {
	video, err := NewStream(meta.StreamVideo, nil)
	require.NoError(t, err)
	first, err := NewStream(meta.StreamAudio, nil)
	require.NoError(t, err)
	second, err := NewStream(meta.StreamAudio, nil)
	require.NoError(t, err)

	ff := New()
	ff.AddInput(NewInput("silence.mp4"))
	ff.AddInput(NewInput("input.mp4", video, first, second))

	assert.Equal(t, "1:v", video.Name())
	assert.Equal(t, "1:a", first.Name())
	assert.Equal(t, "1:a:1", second.Name())
}

func TestInputArgs(t *testing.T) {
	in := NewInput("input.mp4")
	in.Start = meta.Seconds(10)

	args, err := in.Args()
	require.NoError(t, err)
	assert.Equal(t, []string{"-ss", "0:00:10", "-i", "input.mp4"}, args)
}

func TestFFMPEGArgs(t *testing.T) {
	video, err := NewStream(meta.StreamVideo, testVideoMeta())
	require.NoError(t, err)
	audio, err := NewStream(meta.StreamAudio, testAudioMeta())
	require.NoError(t, err)

	ff := New()
	ff.AddInput(NewInput("input.mp4", video, audio))

	scale := filters.NewScale(640, 360)
	_, err = video.Connect(scale)
	require.NoError(t, err)

	vc := NewVideoCodec("libx264")
	_, err = scale.Connect(vc)
	require.NoError(t, err)

	ac := NewAudioCodec("aac")
	_, err = audio.Connect(ac)
	require.NoError(t, err)

	ff.AddOutput(NewOutput("out.mp4", "", vc, ac))

	args, err := ff.Args()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ffmpeg", "-y",
		"-i", "input.mp4",
		"-filter_complex", "[0:v]scale=640x360[vout0]",
		"-map", "[vout0]", "-c:v", "libx264",
		"-map", "0:a", "-c:a", "aac",
		"out.mp4",
	}, args)
}

func TestFFMPEGArgsDeterministic(t *testing.T) {
	video, err := NewStream(meta.StreamVideo, testVideoMeta())
	require.NoError(t, err)
	ff := New()
	ff.AddInput(NewInput("input.mp4", video))

	scale := filters.NewScale(1280, 720)
	_, err = video.Connect(scale)
	require.NoError(t, err)
	vc := NewVideoCodec("libx264")
	_, err = scale.Connect(vc)
	require.NoError(t, err)
	ff.AddOutput(NewOutput("out.mp4", "", vc))

	first, err := ff.Args()
	require.NoError(t, err)
	second, err := ff.Args()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFFMPEGArgsNoOutputs(t *testing.T) {
	_, err := New().Args()
	require.Error(t, err)
}

func TestVectorVolumeSplit(t *testing.T) {
	audio, err := NewStream(meta.StreamAudio, testAudioMeta())
	require.NoError(t, err)

	ff := New()
	ff.AddInput(NewInput("input.mp4", audio))

	v := NewVector(audio.Source())
	v, err = v.Connect(filters.NewVolume(30))
	require.NoError(t, err)

	first := NewAudioCodec("aac")
	second := NewAudioCodec("libmp3lame")
	_, err = v.ConnectSinks([]graph.Consumer{first, second})
	require.NoError(t, err)

	got, err := graph.FilterComplex(graph.NewNamer(), false, audio.Source())
	require.NoError(t, err)
	assert.Equal(t, "[0:a]volume=30.00[a:volume0];[a:volume0]asplit[aout0][aout1]", got)
}

func TestVectorMaskedLane(t *testing.T) {
	// Two lanes into one shared filter: the masked lane bypasses the filter
	// and carries its own source.
	left := graph.NewSource("0:a", meta.StreamAudio)
	right := graph.NewSource("1:a", meta.StreamAudio)

	v := NewVector(left, right)
	out, err := v.Connect(filters.NewVolume(0.5), true, false)
	require.NoError(t, err)
	require.Len(t, out, 2)

	node, ok := out[0].(*graph.Node)
	require.True(t, ok)
	assert.Equal(t, "volume", node.Filter().Name())
	assert.Same(t, right, out[1], "masked lane must carry its bare source")
}

func TestVectorConnectEachShares(t *testing.T) {
	src := graph.NewSource("0:a", meta.StreamAudio)
	factory := func(param any) *graph.Node {
		return filters.NewVolume(param.(float64))
	}

	// Equal parameters collapse to one node, so no split is needed.
	out, err := NewVector(src).ConnectEach(factory, []any{30.0, 30.0})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Same(t, out[0], out[1])
	assert.Len(t, src.Edges(), 1, "shared node must consume the source once")
}

func TestVectorConnectEachDistinct(t *testing.T) {
	src := graph.NewSource("0:a", meta.StreamAudio)
	factory := func(param any) *graph.Node {
		return filters.NewVolume(param.(float64))
	}

	out, err := NewVector(src).ConnectEach(factory, []any{30.0, 60.0})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.NotSame(t, out[0], out[1])

	// A split sits between the source and the two filters.
	require.Len(t, src.Edges(), 1)
	split, ok := src.Edges()[0].Output().(*graph.Node)
	require.True(t, ok)
	assert.Equal(t, "asplit", split.Filter().Name())
}

func TestVectorArityMismatch(t *testing.T) {
	left := graph.NewSource("0:a", meta.StreamAudio)
	right := graph.NewSource("1:a", meta.StreamAudio)
	factory := func(param any) *graph.Node {
		return filters.NewVolume(param.(float64))
	}

	_, err := NewVector(left, right).ConnectEach(factory, []any{1.0, 2.0, 3.0})
	require.ErrorIs(t, err, graph.ErrArity)

	_, err = NewVector().Connect(filters.NewVolume(1))
	require.ErrorIs(t, err, graph.ErrArity)
}

func TestCodecCheckBuffering(t *testing.T) {
	ordered := testAudioMeta()
	ordered.Scenes = []meta.Scene{
		{Stream: "s", Start: meta.Seconds(0), Duration: meta.Seconds(30)},
		{Stream: "s", Start: meta.Seconds(30), Duration: meta.Seconds(30), Position: meta.Seconds(30)},
	}

	src := graph.NewSource("0:a", meta.StreamAudio)
	require.NoError(t, src.SetMeta(ordered))
	codec := NewAudioCodec("aac")
	_, err := src.Connect(codec)
	require.NoError(t, err)
	assert.NoError(t, codec.CheckBuffering())

	reordered := ordered
	reordered.Scenes = []meta.Scene{
		{Stream: "s", Start: meta.Seconds(30), Duration: meta.Seconds(30)},
		{Stream: "s", Start: meta.Seconds(0), Duration: meta.Seconds(30), Position: meta.Seconds(30)},
	}
	src2 := graph.NewSource("0:a", meta.StreamAudio)
	require.NoError(t, src2.SetMeta(reordered))
	codec2 := NewAudioCodec("aac")
	_, err = src2.Connect(codec2)
	require.NoError(t, err)
	assert.ErrorIs(t, codec2.CheckBuffering(), ErrBuffering)
}

func TestCodecMapArgsUnconnected(t *testing.T) {
	codec := NewVideoCodec("libx264")
	_, err := codec.MapArgs(graph.NewNamer())
	require.ErrorIs(t, err, graph.ErrNotConnected)
}

func TestCodecKindMismatch(t *testing.T) {
	src := graph.NewSource("0:v", meta.StreamVideo)
	_, err := src.Connect(NewAudioCodec("aac"))
	require.True(t, errors.Is(err, graph.ErrKindMismatch))
}

func TestOutputFormatArgs(t *testing.T) {
	audio, err := NewStream(meta.StreamAudio, testAudioMeta())
	require.NoError(t, err)
	ff := New()
	ff.AddInput(NewInput("input.mp4", audio))

	ac := NewAudioCodec("aac")
	ac.Bitrate = 128000
	_, err = audio.Connect(ac)
	require.NoError(t, err)
	ff.AddOutput(NewOutput("out.mp4", "mp4", ac))

	args, err := ff.Args()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"ffmpeg", "-y",
		"-i", "input.mp4",
		"-map", "0:a", "-c:a", "aac", "-b:a", "128000",
		"-f", "mp4",
		"out.mp4",
	}, args)
}
