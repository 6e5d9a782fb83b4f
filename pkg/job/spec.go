// Package job defines the YAML job specification and compiles it into a
// ready-to-run transcoder invocation.
package job

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Spec is the user-submitted transcode description: input files with their
// declared streams and output files with codecs and filter chains.
type Spec struct {
	Inputs  []InputSpec  `yaml:"inputs"`
	Outputs []OutputSpec `yaml:"outputs"`
}

// InputSpec declares one input file. Streams are declared by the presence of
// their metadata sections; several inputs concatenate back to back.
type InputSpec struct {
	Path  string           `yaml:"path"`
	Start string           `yaml:"start,omitempty"`
	Video *VideoStreamSpec `yaml:"video,omitempty"`
	Audio *AudioStreamSpec `yaml:"audio,omitempty"`
}

// VideoStreamSpec declares a decoded video stream.
type VideoStreamSpec struct {
	Width            int     `yaml:"width"`
	Height           int     `yaml:"height"`
	FrameRate        float64 `yaml:"frame_rate"`
	PixelAspectRatio float64 `yaml:"par,omitempty"`
	Duration         string  `yaml:"duration"`
}

// AudioStreamSpec declares a decoded audio stream.
type AudioStreamSpec struct {
	SampleRate int    `yaml:"sample_rate"`
	Channels   int    `yaml:"channels"`
	Duration   string `yaml:"duration"`
}

// OutputSpec declares one output file with codecs and per-kind filter
// chains.
type OutputSpec struct {
	Path         string          `yaml:"path"`
	Format       string          `yaml:"format,omitempty"`
	VideoCodec   *VideoCodecSpec `yaml:"video_codec,omitempty"`
	AudioCodec   *AudioCodecSpec `yaml:"audio_codec,omitempty"`
	VideoFilters []FilterSpec    `yaml:"video_filters,omitempty"`
	AudioFilters []FilterSpec    `yaml:"audio_filters,omitempty"`
}

// VideoCodecSpec declares video encoder settings.
type VideoCodecSpec struct {
	Codec       string  `yaml:"codec"`
	Bitrate     int64   `yaml:"bitrate,omitempty"`
	FrameRate   float64 `yaml:"frame_rate,omitempty"`
	PixelFormat string  `yaml:"pixel_format,omitempty"`
	Preset      string  `yaml:"preset,omitempty"`
}

// AudioCodecSpec declares audio encoder settings.
type AudioCodecSpec struct {
	Codec      string `yaml:"codec"`
	Bitrate    int64  `yaml:"bitrate,omitempty"`
	SampleRate int    `yaml:"sample_rate,omitempty"`
	Channels   int    `yaml:"channels,omitempty"`
}

// FilterSpec declares one filter in a chain. Name selects the filter;
// remaining fields apply per filter kind.
type FilterSpec struct {
	Name string `yaml:"name"`

	// scale
	Width  int `yaml:"width,omitempty"`
	Height int `yaml:"height,omitempty"`

	// trim
	Start string `yaml:"start,omitempty"`
	End   string `yaml:"end,omitempty"`

	// setpts
	Expr string `yaml:"expr,omitempty"`

	// format
	Format string `yaml:"format,omitempty"`

	// volume
	Level float64 `yaml:"level,omitempty"`
}

// Load reads and validates a job specification from a YAML file.
func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("job spec: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML job specification.
func Parse(data []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("job spec: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate checks the spec shape before compilation.
func (s *Spec) Validate() error {
	if len(s.Inputs) == 0 {
		return fmt.Errorf("job spec: no inputs")
	}
	if len(s.Outputs) == 0 {
		return fmt.Errorf("job spec: no outputs")
	}
	for i, in := range s.Inputs {
		if in.Path == "" {
			return fmt.Errorf("job spec: input %d has no path", i)
		}
		if in.Video == nil && in.Audio == nil {
			return fmt.Errorf("job spec: input %d declares no streams", i)
		}
	}
	for i, out := range s.Outputs {
		if out.Path == "" {
			return fmt.Errorf("job spec: output %d has no path", i)
		}
		if out.VideoCodec == nil && out.AudioCodec == nil {
			return fmt.Errorf("job spec: output %d declares no codecs", i)
		}
	}
	return nil
}
