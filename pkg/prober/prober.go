// Package prober probes media files with ffprobe and normalizes the reported
// per-stream records into stream metadata.
package prober

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"github.com/just-work/fffw-sub000/pkg/meta"
	"github.com/just-work/fffw-sub000/pkg/wrapper"
)

// Prober probes media URIs using ffprobe.
type Prober struct {
	ffprobePath string
}

// Option is a functional option for Prober.
type Option func(*Prober)

// WithFFprobePath sets a custom ffprobe binary path.
func WithFFprobePath(path string) Option {
	return func(p *Prober) {
		p.ffprobePath = path
	}
}

// NewProber creates a Prober, locating ffprobe in PATH by default.
func NewProber(opts ...Option) *Prober {
	p := &Prober{ffprobePath: findFFprobe()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe returns the raw per-stream records ffprobe reports for a media URI.
func (p *Prober) Probe(ctx context.Context, uri string) (*Report, error) {
	if p.ffprobePath == "" {
		return nil, fmt.Errorf("ffprobe not found in PATH")
	}

	args := []string{
		p.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		uri,
	}
	result, err := wrapper.Run(ctx, args, &wrapper.RunOptions{CaptureStdout: true})
	if err != nil {
		return nil, fmt.Errorf("ffprobe: %w", err)
	}
	if result.ExitCode != 0 {
		return nil, fmt.Errorf("ffprobe exited %d: %s", result.ExitCode,
			strings.Join(result.ErrorLines, "; "))
	}
	return ParseReport([]byte(result.Stdout))
}

// Analyze probes a media URI and maps every stream record into metadata,
// validated against the cross-field invariants.
func (p *Prober) Analyze(ctx context.Context, uri string) ([]meta.Meta, error) {
	report, err := p.Probe(ctx, uri)
	if err != nil {
		return nil, err
	}
	return report.Metadata()
}

// findFFprobe locates ffprobe in PATH.
func findFFprobe() string {
	if path, err := exec.LookPath("ffprobe"); err == nil {
		return path
	}
	return ""
}

// Report is the decoded ffprobe output.
type Report struct {
	Format  FormatRecord   `json:"format"`
	Streams []StreamRecord `json:"streams"`
}

// FormatRecord holds container-level fields.
type FormatRecord struct {
	Filename   string `json:"filename"`
	FormatName string `json:"format_name"`
	Duration   string `json:"duration"`
	BitRate    string `json:"bit_rate"`
	StartTime  string `json:"start_time"`
}

// StreamRecord holds the container-format-specific per-stream fields.
type StreamRecord struct {
	Index     int    `json:"index"`
	CodecType string `json:"codec_type"`
	CodecName string `json:"codec_name"`

	// Video fields
	Width              int    `json:"width"`
	Height             int    `json:"height"`
	RFrameRate         string `json:"r_frame_rate"`
	SampleAspectRatio  string `json:"sample_aspect_ratio"`
	DisplayAspectRatio string `json:"display_aspect_ratio"`
	NbFrames           string `json:"nb_frames"`

	// Audio fields
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`

	// Common fields
	BitRate   string `json:"bit_rate"`
	Duration  string `json:"duration"`
	StartTime string `json:"start_time"`
}

// ParseReport decodes raw ffprobe JSON output.
func ParseReport(data []byte) (*Report, error) {
	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return &report, nil
}

// Metadata maps every video and audio stream record into a validated Meta
// value. Each stream starts with a single scene covering its whole interval.
func (r *Report) Metadata() ([]meta.Meta, error) {
	var result []meta.Meta
	for _, stream := range r.Streams {
		switch stream.CodecType {
		case "video":
			vm, err := r.videoMeta(stream)
			if err != nil {
				return nil, err
			}
			result = append(result, vm)
		case "audio":
			am, err := r.audioMeta(stream)
			if err != nil {
				return nil, err
			}
			result = append(result, am)
		}
	}
	return result, nil
}

func (r *Report) videoMeta(stream StreamRecord) (meta.VideoMeta, error) {
	duration := r.streamDuration(stream)
	start := meta.Seconds(parseFloat(stream.StartTime))
	rate := parseFrameRate(stream.RFrameRate)
	par := parseRatio(stream.SampleAspectRatio, 1.0)

	// DAR is derived rather than taken from the rounded ffprobe string so
	// the cross-field invariant holds exactly.
	dar := math.NaN()
	if stream.Height != 0 {
		dar = float64(stream.Width) / float64(stream.Height) * par
	}

	frames := parseInt64(stream.NbFrames)
	if frames == 0 {
		frames = int64(math.Round(duration.Sub(start).Seconds() * rate))
	}

	vm := meta.VideoMeta{
		CommonMeta:         r.commonMeta(stream, duration, start),
		Width:              stream.Width,
		Height:             stream.Height,
		PixelAspectRatio:   par,
		DisplayAspectRatio: dar,
		FrameRate:          rate,
		Frames:             frames,
	}
	if err := vm.Validate(); err != nil {
		return meta.VideoMeta{}, fmt.Errorf("stream %d: %w", stream.Index, err)
	}
	return vm, nil
}

func (r *Report) audioMeta(stream StreamRecord) (meta.AudioMeta, error) {
	duration := r.streamDuration(stream)
	start := meta.Seconds(parseFloat(stream.StartTime))
	rate := int(parseInt64(stream.SampleRate))

	am := meta.AudioMeta{
		CommonMeta:   r.commonMeta(stream, duration, start),
		SamplingRate: rate,
		Channels:     stream.Channels,
		Samples:      int64(math.Round(duration.Sub(start).Seconds() * float64(rate))),
	}
	if err := am.Validate(); err != nil {
		return meta.AudioMeta{}, fmt.Errorf("stream %d: %w", stream.Index, err)
	}
	return am, nil
}

// commonMeta fills the shared fields with one scene spanning the stream.
func (r *Report) commonMeta(stream StreamRecord, duration, start meta.TS) meta.CommonMeta {
	streamID := fmt.Sprintf("%s:%d", r.Format.Filename, stream.Index)
	return meta.CommonMeta{
		Duration: duration,
		Start:    start,
		Bitrate:  parseInt64(stream.BitRate),
		Scenes: []meta.Scene{{
			Stream:   streamID,
			Duration: duration.Sub(start),
			Start:    start,
			Position: start,
		}},
		Streams: []string{streamID},
	}
}

// streamDuration prefers the per-stream duration and falls back to the
// container one.
func (r *Report) streamDuration(stream StreamRecord) meta.TS {
	if stream.Duration != "" {
		return meta.Seconds(parseFloat(stream.Duration))
	}
	return meta.Seconds(parseFloat(r.Format.Duration))
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt64(s string) int64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseRatio parses "num:den" aspect ratio notation.
func parseRatio(s string, fallback float64) float64 {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return fallback
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return fallback
	}
	return num / den
}

// parseFrameRate parses the ffprobe rational frame rate ("30000/1001").
func parseFrameRate(s string) float64 {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		rate, _ := strconv.ParseFloat(s, 64)
		return rate
	}
	num, err1 := strconv.ParseFloat(parts[0], 64)
	den, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}
