package avtranscode

import (
	"github.com/user/avtranscoder/pkg/config"
)

// Preset names a starting set of options.
type Preset string

const (
	PresetDefault   Preset = "default"
	PresetAudioOnly Preset = "audio"
	PresetVideoOnly Preset = "video"
	PresetWeb       Preset = "web"
)

// Presets returns the known preset names.
func Presets() []Preset {
	return []Preset{PresetDefault, PresetAudioOnly, PresetVideoOnly, PresetWeb}
}

// presetOptions returns the options for preset. Unknown presets are the
// default preset, which leaves every field to the normalizer.
func presetOptions(preset Preset) config.Options {
	switch preset {
	case PresetAudioOnly:
		return config.Options{
			OutputVideoIgnore: ptr(true),
			OutputFormatName:  ptr("wav"),
		}
	case PresetVideoOnly:
		return config.Options{
			OutputAudioIgnore: ptr(true),
		}
	case PresetWeb:
		return config.Options{
			OutputFormatName:      ptr("mp4"),
			OutputAudioCodec:      ptr("aac"),
			OutputAudioSampleRate: ptr(48000),
			OutputVideoCodec:      ptr("h264"),
			OutputVideoFrameSize:  ptr("720p"),
		}
	default:
		return config.Options{}
	}
}

// OptionsBuilder provides a fluent interface for building Options.
type OptionsBuilder struct {
	options config.Options
}

// NewOptionsBuilder creates a new OptionsBuilder with no fields set.
func NewOptionsBuilder() *OptionsBuilder {
	return &OptionsBuilder{}
}

// NewPresetOptionsBuilder creates a new OptionsBuilder starting from preset.
func NewPresetOptionsBuilder(preset Preset) *OptionsBuilder {
	return &OptionsBuilder{
		options: presetOptions(preset),
	}
}

// Build returns a copy of the options. Absent fields are defaulted by the
// transcoder, so Build never fails.
func (b *OptionsBuilder) Build() *config.Options {
	opts := config.Options{}.Merge(b.options)
	return &opts
}

// WithOptions overlays the set fields of o, e.g. options loaded from a file.
func (b *OptionsBuilder) WithOptions(o config.Options) *OptionsBuilder {
	b.options = b.options.Merge(o)
	return b
}

// WithFormat sets the output container format name.
func (b *OptionsBuilder) WithFormat(name string) *OptionsBuilder {
	b.options.OutputFormatName = ptr(name)
	return b
}

// WithFormatHints sets the optional filename and MIME hints.
func (b *OptionsBuilder) WithFormatHints(filename, mime string) *OptionsBuilder {
	b.options.OutputFormatFilename = ptr(filename)
	b.options.OutputFormatMime = ptr(mime)
	return b
}

// WithoutAudio drops the audio stream.
func (b *OptionsBuilder) WithoutAudio() *OptionsBuilder {
	b.options.OutputAudioIgnore = ptr(true)
	return b
}

// WithAudioCodec sets the audio codec.
func (b *OptionsBuilder) WithAudioCodec(codec string) *OptionsBuilder {
	b.options.OutputAudioIgnore = ptr(false)
	b.options.OutputAudioCodec = ptr(codec)
	return b
}

// WithSampleRate sets the audio sample rate in Hz.
func (b *OptionsBuilder) WithSampleRate(hz int) *OptionsBuilder {
	b.options.OutputAudioSampleRate = ptr(hz)
	return b
}

// WithChannelLayout sets the audio channel layout, e.g. "STEREO".
func (b *OptionsBuilder) WithChannelLayout(layout string) *OptionsBuilder {
	b.options.OutputAudioChannelLayout = ptr(layout)
	return b
}

// WithVolume sets the audio gain; 256 is unity.
func (b *OptionsBuilder) WithVolume(volume int) *OptionsBuilder {
	b.options.OutputAudioVolume = ptr(volume)
	return b
}

// WithoutVideo drops the video stream.
func (b *OptionsBuilder) WithoutVideo() *OptionsBuilder {
	b.options.OutputVideoIgnore = ptr(true)
	return b
}

// WithVideoCodec sets the video codec.
func (b *OptionsBuilder) WithVideoCodec(codec string) *OptionsBuilder {
	b.options.OutputVideoIgnore = ptr(false)
	b.options.OutputVideoCodec = ptr(codec)
	return b
}

// WithFrameRate sets the video frame rate.
func (b *OptionsBuilder) WithFrameRate(fps float64) *OptionsBuilder {
	b.options.OutputVideoFrameRate = ptr(fps)
	return b
}

// WithFrameSize sets the video frame size, e.g. "720p" or "640x360".
func (b *OptionsBuilder) WithFrameSize(size string) *OptionsBuilder {
	b.options.OutputVideoFrameSize = ptr(size)
	return b
}

// WithAspect sets the display aspect ratio, e.g. "16:9".
func (b *OptionsBuilder) WithAspect(aspect string) *OptionsBuilder {
	b.options.OutputVideoAspect = ptr(aspect)
	return b
}

// WithHighWaterMark sets how many output bytes may be buffered ahead of the
// reader.
func (b *OptionsBuilder) WithHighWaterMark(bytes int) *OptionsBuilder {
	b.options.HighWaterMark = ptr(bytes)
	return b
}

func ptr[T any](v T) *T {
	return &v
}
