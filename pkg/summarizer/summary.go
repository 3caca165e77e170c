// Package summarizer provides summary generation for transcoding jobs.
package summarizer

import (
	"time"

	"github.com/user/avtranscoder/pkg/config"
)

// Summary contains all data collected during a transcoding job.
type Summary struct {
	// Metadata
	GeneratedAt time.Time `yaml:"generatedAt"`

	Input    FileInfo `yaml:"input"`
	Output   FileInfo `yaml:"output"`
	Settings Settings `yaml:"settings"`
	Stats    Stats    `yaml:"stats"`

	// Error is the terminal error message, empty on success.
	Error string `yaml:"error,omitempty"`
}

// FileInfo describes one side of the job.
type FileInfo struct {
	Path  string `yaml:"path"`
	Bytes int64  `yaml:"bytes"`
}

// Settings contains the normalized transcoding configuration.
type Settings struct {
	Format        string  `yaml:"format"`
	AudioCodec    string  `yaml:"audioCodec,omitempty"`
	SampleRate    int     `yaml:"sampleRate,omitempty"`
	ChannelLayout string  `yaml:"channelLayout,omitempty"`
	Volume        int     `yaml:"volume,omitempty"`
	VideoCodec    string  `yaml:"videoCodec,omitempty"`
	FrameRate     float64 `yaml:"frameRate,omitempty"`
	FrameSize     string  `yaml:"frameSize,omitempty"`
	Aspect        string  `yaml:"aspect,omitempty"`
}

// Stats contains session counters.
type Stats struct {
	ChunksSubmitted int64         `yaml:"chunksSubmitted"`
	ChunksReceived  int64         `yaml:"chunksReceived"`
	ProgressUnits   int64         `yaml:"progressUnits"`
	Duration        time.Duration `yaml:"duration"`
}

// SettingsFromConfig flattens a normalized configuration. Ignored streams
// leave their fields empty.
func SettingsFromConfig(cfg config.Config) Settings {
	s := Settings{Format: cfg.Format.Name}
	if !cfg.Audio.Ignore {
		s.AudioCodec = cfg.Audio.Codec
		s.SampleRate = cfg.Audio.SampleRate
		s.ChannelLayout = string(cfg.Audio.ChannelLayout)
		s.Volume = cfg.Audio.Volume
	}
	if !cfg.Video.Ignore {
		s.VideoCodec = cfg.Video.Codec
		s.FrameRate = cfg.Video.FrameRate
		s.FrameSize = cfg.Video.FrameSize
		s.Aspect = cfg.Video.Aspect
	}
	return s
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithInput sets input information.
func (b *Builder) WithInput(path string, bytes int64) *Builder {
	b.summary.Input = FileInfo{Path: path, Bytes: bytes}
	return b
}

// WithOutput sets output information.
func (b *Builder) WithOutput(path string, bytes int64) *Builder {
	b.summary.Output = FileInfo{Path: path, Bytes: bytes}
	return b
}

// WithConfig sets the transcoding settings.
func (b *Builder) WithConfig(cfg config.Config) *Builder {
	b.summary.Settings = SettingsFromConfig(cfg)
	return b
}

// WithStats sets session counters.
func (b *Builder) WithStats(stats Stats) *Builder {
	b.summary.Stats = stats
	return b
}

// WithError records a failed job.
func (b *Builder) WithError(err error) *Builder {
	if err != nil {
		b.summary.Error = err.Error()
	}
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
