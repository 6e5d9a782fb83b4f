// Package meta describes materialized stream characteristics: timestamps,
// scene composition and per-kind attributes for video and audio streams.
//
// Meta values are cheap copy-on-write records: every transformation produces a
// fresh value and never mutates its inputs in place.
package meta

import (
	"fmt"
	"math"
)

// StreamType identifies the kind of a stream or graph edge. Its string form is
// the single-letter prefix used in filter graph labels ("v"/"a").
type StreamType string

const (
	StreamVideo StreamType = "v"
	StreamAudio StreamType = "a"
)

// String returns the label prefix for the stream kind.
func (st StreamType) String() string { return string(st) }

// Device describes a hardware accelerator a stream is materialized on.
// It is attached to VideoMeta to reject mixing hardware and software filters.
type Device struct {
	Hardware string // accelerator kind, e.g. "cuda", "vaapi"
	Name     string // concrete device name or index
}

// Scene is a contiguous sub-interval of an original input stream that is
// actually consumed to produce output.
type Scene struct {
	// Stream is an opaque source stream identifier, empty if unknown.
	Stream string
	// Duration is the length of the interval.
	Duration TS
	// Start is the offset of the interval within the original stream.
	Start TS
	// Position is the offset of the interval within the resulting stream.
	Position TS
}

// End returns Start + Duration.
func (s Scene) End() TS { return s.Start.Add(s.Duration) }

// CommonMeta holds the fields shared by audio and video metadata.
type CommonMeta struct {
	Duration TS
	Start    TS
	Bitrate  int64
	// Scenes lists consumed source intervals in output order.
	Scenes []Scene
	// Streams lists contributing source stream ids, deduplicated for
	// contiguous repeats.
	Streams []string
}

// Common returns a copy of the shared fields with scene and stream lists
// duplicated, safe to modify.
func (m CommonMeta) Common() CommonMeta {
	clone := m
	clone.Scenes = append([]Scene(nil), m.Scenes...)
	clone.Streams = append([]string(nil), m.Streams...)
	return clone
}

// Meta describes a decoded stream's materialized characteristics.
// Concrete implementations are VideoMeta and AudioMeta.
type Meta interface {
	Kind() StreamType
	Common() CommonMeta
}

// VideoMeta describes a video stream.
type VideoMeta struct {
	CommonMeta
	Width              int
	Height             int
	PixelAspectRatio   float64
	DisplayAspectRatio float64
	FrameRate          float64
	Frames             int64
	// Device marks the stream as materialized on a hardware accelerator.
	Device *Device
}

// Kind returns StreamVideo.
func (m VideoMeta) Kind() StreamType { return StreamVideo }

// Validate checks cross-field invariants: display aspect ratio must agree with
// width/height and the pixel aspect ratio within 0.001 (and be NaN for zero
// height), and the frame count must match duration and frame rate within one
// frame.
func (m VideoMeta) Validate() error {
	if m.Height == 0 {
		if !math.IsNaN(m.DisplayAspectRatio) {
			return fmt.Errorf("video meta: dar must be NaN for zero height, got %v",
				m.DisplayAspectRatio)
		}
	} else {
		expected := float64(m.Width) / float64(m.Height) * m.PixelAspectRatio
		if math.Abs(m.DisplayAspectRatio-expected) > 0.001 {
			return fmt.Errorf("video meta: dar %v inconsistent with %dx%d par %v",
				m.DisplayAspectRatio, m.Width, m.Height, m.PixelAspectRatio)
		}
	}

	interval := m.Duration.Sub(m.Start).Seconds()
	if math.Abs(float64(m.Frames)-interval*m.FrameRate) > 1 {
		return fmt.Errorf("video meta: %d frames inconsistent with %.3fs at %v fps",
			m.Frames, interval, m.FrameRate)
	}
	return nil
}

// AudioMeta describes an audio stream.
type AudioMeta struct {
	CommonMeta
	SamplingRate int
	Channels     int
	Samples      int64
}

// Kind returns StreamAudio.
func (m AudioMeta) Kind() StreamType { return StreamAudio }

// Validate checks that the sample count matches duration and sampling rate
// within one sample.
func (m AudioMeta) Validate() error {
	interval := m.Duration.Sub(m.Start).Seconds()
	if math.Abs(float64(m.Samples)-interval*float64(m.SamplingRate)) > 1 {
		return fmt.Errorf("audio meta: %d samples inconsistent with %.3fs at %d Hz",
			m.Samples, interval, m.SamplingRate)
	}
	return nil
}

// ContiguousStreams collects scene stream ids in order, collapsing contiguous
// repeats and skipping scenes without a known source stream.
func ContiguousStreams(scenes []Scene) []string {
	var streams []string
	for _, scene := range scenes {
		if scene.Stream == "" {
			continue
		}
		if len(streams) == 0 || streams[len(streams)-1] != scene.Stream {
			streams = append(streams, scene.Stream)
		}
	}
	return streams
}
