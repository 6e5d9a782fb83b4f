package wrapper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flagSet struct {
	Overwrite bool   `arg:"-y"`
	LogLevel  string `arg:"-loglevel,omitempty"`
	Bitrate   int64  `arg:"-b,omitempty"`
	Preset    string `arg:"-preset,default=medium"`
	Inputs    []string
	Skipped   string `arg:"-"`
	untagged  string
}

func TestArgsBasic(t *testing.T) {
	args, err := Args(flagSet{
		Overwrite: true,
		LogLevel:  "info",
		Bitrate:   4000000,
		Preset:    "slow",
		Skipped:   "never",
		untagged:  "never",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"-y", "-loglevel", "info", "-b", "4000000", "-preset", "slow",
	}, args)
}

func TestArgsOmitEmpty(t *testing.T) {
	args, err := Args(flagSet{Preset: "fast"})
	require.NoError(t, err)
	// False bool and zero values vanish; -loglevel and -b are omitempty.
	assert.Equal(t, []string{"-preset", "fast"}, args)
}

func TestArgsDefault(t *testing.T) {
	args, err := Args(flagSet{Preset: "medium"})
	require.NoError(t, err)
	assert.Empty(t, args, "default value must not render")
}

func TestArgsSlice(t *testing.T) {
	type mapped struct {
		Maps []string `arg:"-map"`
	}
	args, err := Args(mapped{Maps: []string{"[vout0]", "0:a"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"-map", "[vout0]", "-map", "0:a"}, args)
}

type suffixed struct {
	Name    string `arg:"-c,suffix"`
	Bitrate int64  `arg:"-b,suffix,omitempty"`
}

func (s suffixed) StreamSuffix() string { return ":v" }

func TestArgsSuffix(t *testing.T) {
	args, err := Args(suffixed{Name: "libx264", Bitrate: 4000000})
	require.NoError(t, err)
	assert.Equal(t, []string{"-c:v", "libx264", "-b:v", "4000000"}, args)
}

func TestArgsDeferred(t *testing.T) {
	type deferred struct {
		Filter func() string `arg:"-filter_complex,omitempty"`
	}
	args, err := Args(deferred{Filter: func() string { return "[0:v]null[vout0]" }})
	require.NoError(t, err)
	assert.Equal(t, []string{"-filter_complex", "[0:v]null[vout0]"}, args)

	args, err = Args(deferred{Filter: func() string { return "" }})
	require.NoError(t, err)
	assert.Empty(t, args, "empty deferred value with omitempty must vanish")

	args, err = Args(deferred{})
	require.NoError(t, err)
	assert.Empty(t, args, "nil deferred func must vanish")
}

type GlobalFlags struct {
	Level string `arg:"-loglevel,omitempty"`
}

func TestArgsEmbedded(t *testing.T) {
	type outer struct {
		GlobalFlags
		Overwrite bool `arg:"-y"`
	}
	args, err := Args(outer{GlobalFlags: GlobalFlags{Level: "error"}, Overwrite: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"-loglevel", "error", "-y"}, args)
}

func TestArgsPointerAndErrors(t *testing.T) {
	args, err := Args((*flagSet)(nil))
	require.NoError(t, err)
	assert.Empty(t, args)

	v := flagSet{Overwrite: true, Preset: "fast"}
	args, err = Args(&v)
	require.NoError(t, err)
	assert.Equal(t, []string{"-y", "-preset", "fast"}, args)

	_, err = Args("not a struct")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "expected struct"))
}
