// Package filters provides the concrete filter catalog: node constructors
// wrapping each filter's metadata transform and argument serialization.
//
// Transforms are pure: they compute fresh output metadata from input metadata
// and never mutate their arguments.
package filters

import (
	"errors"
	"fmt"

	"github.com/just-work/fffw-sub000/pkg/meta"
)

// ErrMetadataType is returned when a transform receives metadata of the wrong
// concrete kind, like audio metadata in a video-only transform.
var ErrMetadataType = errors.New("unexpected metadata kind")

// kindName picks the ffmpeg filter name matching the stream kind.
func kindName(kind meta.StreamType, video, audio string) string {
	if kind == meta.StreamAudio {
		return audio
	}
	return video
}

// videoMeta narrows metadata to VideoMeta or fails with ErrMetadataType.
func videoMeta(m meta.Meta, filter string) (meta.VideoMeta, error) {
	vm, ok := m.(meta.VideoMeta)
	if !ok {
		return meta.VideoMeta{}, fmt.Errorf("%w: %s requires video metadata, got %s",
			ErrMetadataType, filter, m.Kind())
	}
	return vm, nil
}

// audioMeta narrows metadata to AudioMeta or fails with ErrMetadataType.
func audioMeta(m meta.Meta, filter string) (meta.AudioMeta, error) {
	am, ok := m.(meta.AudioMeta)
	if !ok {
		return meta.AudioMeta{}, fmt.Errorf("%w: %s requires audio metadata, got %s",
			ErrMetadataType, filter, m.Kind())
	}
	return am, nil
}
