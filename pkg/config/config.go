// Package config normalizes caller-supplied transcoding options into a
// complete, immutable configuration record.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/user/avtranscoder/pkg/averror"
	"gopkg.in/yaml.v3"
)

// Default values applied to absent options.
const (
	DefaultOutputFormat       = "mp4"
	DefaultAudioCodec         = "pcm_s16le"
	DefaultAudioSampleRate    = 44100
	DefaultAudioChannelLayout = ChannelLayout("STEREO")
	DefaultAudioVolume        = 256
	DefaultVideoCodec         = "mp4"
	DefaultVideoFrameRate     = 30.0
	DefaultVideoFrameSize     = "1080p"
	DefaultVideoAspect        = "16:9"
	DefaultHighWaterMark      = 16 * 1024
)

// Options are the flattened caller options. Every field is optional;
// nil means "use the default".
type Options struct {
	OutputFormatName     *string `yaml:"outputFormatName"`
	OutputFormatFilename *string `yaml:"outputFormatFilename"`
	OutputFormatMime     *string `yaml:"outputFormatMime"`

	OutputAudioIgnore        *bool   `yaml:"outputAudioIgnore"`
	OutputAudioCodec         *string `yaml:"outputAudioCodec"`
	OutputAudioSampleRate    *int    `yaml:"outputAudioSampleRate"`
	OutputAudioChannelLayout *string `yaml:"outputAudioChannelLayout"`
	OutputAudioVolume        *int    `yaml:"outputAudioVolume"`

	OutputVideoIgnore    *bool    `yaml:"outputVideoIgnore"`
	OutputVideoCodec     *string  `yaml:"outputVideoCodec"`
	OutputVideoFrameRate *float64 `yaml:"outputVideoFrameRate"`
	OutputVideoFrameSize *string  `yaml:"outputVideoFrameSize"`
	OutputVideoAspect    *string  `yaml:"outputVideoAspect"`

	// HighWaterMark bounds the output bytes buffered ahead of the reader.
	HighWaterMark *int `yaml:"highWaterMark"`
}

// Config is the normalized configuration. It is created once per
// transcoding session and passed by value.
type Config struct {
	Format        FormatConfig
	Audio         AudioConfig
	Video         VideoConfig
	HighWaterMark int
}

// FormatConfig describes the output container.
type FormatConfig struct {
	Name     string
	Filename string // optional hint, may be empty
	Mime     string // optional hint, may be empty
}

// AudioConfig describes the output audio stream.
type AudioConfig struct {
	Ignore        bool
	Codec         string
	SampleRate    int
	ChannelLayout ChannelLayout
	Volume        int // 256 is unity gain
}

// VideoConfig describes the output video stream.
type VideoConfig struct {
	Ignore    bool
	Codec     string
	FrameRate float64
	FrameSize string
	Aspect    string
}

// Normalize validates opts and fills absent fields with defaults.
// A nil opts fails with BadArguments; individual absent fields never do.
func Normalize(opts *Options) (Config, error) {
	if opts == nil {
		return Config{}, averror.Must(averror.BadArguments,
			averror.WithArguments(opts))
	}

	cfg := Config{
		Format: FormatConfig{
			Name:     stringOr(opts.OutputFormatName, DefaultOutputFormat),
			Filename: stringOr(opts.OutputFormatFilename, ""),
			Mime:     stringOr(opts.OutputFormatMime, ""),
		},
		Audio: AudioConfig{
			Ignore:        boolOr(opts.OutputAudioIgnore, false),
			Codec:         stringOr(opts.OutputAudioCodec, DefaultAudioCodec),
			SampleRate:    intOr(opts.OutputAudioSampleRate, DefaultAudioSampleRate),
			ChannelLayout: ChannelLayout(strings.ToUpper(stringOr(opts.OutputAudioChannelLayout, string(DefaultAudioChannelLayout)))),
			Volume:        intOr(opts.OutputAudioVolume, DefaultAudioVolume),
		},
		Video: VideoConfig{
			Ignore:    boolOr(opts.OutputVideoIgnore, false),
			Codec:     stringOr(opts.OutputVideoCodec, DefaultVideoCodec),
			FrameRate: floatOr(opts.OutputVideoFrameRate, DefaultVideoFrameRate),
			FrameSize: stringOr(opts.OutputVideoFrameSize, DefaultVideoFrameSize),
			Aspect:    stringOr(opts.OutputVideoAspect, DefaultVideoAspect),
		},
		HighWaterMark: intOr(opts.HighWaterMark, DefaultHighWaterMark),
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch {
	case c.Format.Name == "":
		return invalid("outputFormatName", c.Format.Name, "must not be empty")
	case c.Audio.Codec == "":
		return invalid("outputAudioCodec", c.Audio.Codec, "must not be empty")
	case c.Audio.SampleRate <= 0:
		return invalid("outputAudioSampleRate", c.Audio.SampleRate, "must be positive")
	case c.Audio.Volume < 0:
		return invalid("outputAudioVolume", c.Audio.Volume, "must not be negative")
	case c.Video.Codec == "":
		return invalid("outputVideoCodec", c.Video.Codec, "must not be empty")
	case c.Video.FrameRate <= 0:
		return invalid("outputVideoFrameRate", c.Video.FrameRate, "must be positive")
	case c.HighWaterMark <= 0:
		return invalid("highWaterMark", c.HighWaterMark, "must be positive")
	}

	if _, ok := LookupChannelLayout(c.Audio.ChannelLayout); !ok {
		return invalid("outputAudioChannelLayout", c.Audio.ChannelLayout, "unknown channel layout")
	}
	if _, _, err := ParseFrameSize(c.Video.FrameSize); err != nil {
		return invalid("outputVideoFrameSize", c.Video.FrameSize, err.Error())
	}
	if _, _, err := ParseAspect(c.Video.Aspect); err != nil {
		return invalid("outputVideoAspect", c.Video.Aspect, err.Error())
	}
	return nil
}

func invalid(option string, value any, reason string) error {
	return averror.Must(averror.BadArguments,
		averror.WithMessage(fmt.Sprintf("invalid %s: %s", option, reason)),
		averror.WithContext("option", option),
		averror.WithArguments(value),
	)
}

// ParseAspect parses a "W:H" aspect ratio with positive integer terms.
func ParseAspect(s string) (int, int, error) {
	w, h, ok := strings.Cut(s, ":")
	if !ok {
		return 0, 0, fmt.Errorf("aspect %q is not W:H", s)
	}
	num, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil || num <= 0 {
		return 0, 0, fmt.Errorf("aspect %q has an invalid width term", s)
	}
	den, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || den <= 0 {
		return 0, 0, fmt.Errorf("aspect %q has an invalid height term", s)
	}
	return num, den, nil
}

// FromMap decodes a raw option mapping into Options.
// Values of the wrong type fail with BadArguments; unknown keys are ignored.
func FromMap(m map[string]any) (*Options, error) {
	if m == nil {
		return nil, averror.Must(averror.BadArguments, averror.WithArguments(m))
	}

	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, averror.Must(averror.BadArguments,
			averror.WithArguments(m), averror.WithCause(err))
	}

	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, averror.Must(averror.BadArguments,
			averror.WithMessage("option has the wrong type"),
			averror.WithArguments(m), averror.WithCause(err))
	}
	return &opts, nil
}

// LoadFromFile reads Options from a YAML file.
func LoadFromFile(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &opts, nil
}

// Merge returns a copy of base with every field set in override applied.
func (o Options) Merge(override Options) Options {
	merged := o
	setIf(&merged.OutputFormatName, override.OutputFormatName)
	setIf(&merged.OutputFormatFilename, override.OutputFormatFilename)
	setIf(&merged.OutputFormatMime, override.OutputFormatMime)
	setIf(&merged.OutputAudioIgnore, override.OutputAudioIgnore)
	setIf(&merged.OutputAudioCodec, override.OutputAudioCodec)
	setIf(&merged.OutputAudioSampleRate, override.OutputAudioSampleRate)
	setIf(&merged.OutputAudioChannelLayout, override.OutputAudioChannelLayout)
	setIf(&merged.OutputAudioVolume, override.OutputAudioVolume)
	setIf(&merged.OutputVideoIgnore, override.OutputVideoIgnore)
	setIf(&merged.OutputVideoCodec, override.OutputVideoCodec)
	setIf(&merged.OutputVideoFrameRate, override.OutputVideoFrameRate)
	setIf(&merged.OutputVideoFrameSize, override.OutputVideoFrameSize)
	setIf(&merged.OutputVideoAspect, override.OutputVideoAspect)
	setIf(&merged.HighWaterMark, override.HighWaterMark)
	return merged
}

func setIf[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func stringOr(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

func floatOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
