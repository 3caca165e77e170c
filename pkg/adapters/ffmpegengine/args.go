package ffmpegengine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/user/avtranscoder/pkg/config"
)

// fragmentedFormats are the ISO BMFF muxers that need fragmenting to write
// to a pipe.
var fragmentedFormats = map[string]bool{
	"mp4":  true,
	"mov":  true,
	"ismv": true,
	"ipod": true,
	"3gp":  true,
	"3g2":  true,
	"f4v":  true,
}

// videoCodecs maps codec names accepted in options to ffmpeg encoder names.
var videoCodecs = map[string]string{
	"mp4":  "mpeg4",
	"h264": "libx264",
	"av1":  "libaom-av1",
}

// IsFragmented reports whether output in the named format is written as
// fragmented MP4.
func IsFragmented(format string) bool {
	return fragmentedFormats[strings.ToLower(format)]
}

// BuildArgs converts a normalized configuration to ffmpeg arguments that
// read from stdin and write to stdout.
func BuildArgs(cfg config.Config) ([]string, error) {
	args := []string{
		"-hide_banner",
		"-loglevel", "warning",
		"-i", "pipe:0",
	}

	if cfg.Audio.Ignore {
		args = append(args, "-an")
	} else {
		layout, ok := config.LookupChannelLayout(cfg.Audio.ChannelLayout)
		if !ok {
			return nil, fmt.Errorf("unknown channel layout %q", cfg.Audio.ChannelLayout)
		}

		filter := "aformat=channel_layouts=" + layout.FFmpegName
		if cfg.Audio.Volume != config.DefaultAudioVolume {
			gain := float64(cfg.Audio.Volume) / float64(config.DefaultAudioVolume)
			filter += ",volume=" + strconv.FormatFloat(gain, 'f', -1, 64)
		}

		args = append(args,
			"-c:a", cfg.Audio.Codec,
			"-ar", strconv.Itoa(cfg.Audio.SampleRate),
			"-af", filter,
		)
	}

	if cfg.Video.Ignore {
		args = append(args, "-vn")
	} else {
		width, height, err := config.ParseFrameSize(cfg.Video.FrameSize)
		if err != nil {
			return nil, err
		}

		codec := cfg.Video.Codec
		if mapped, ok := videoCodecs[strings.ToLower(codec)]; ok {
			codec = mapped
		}

		args = append(args,
			"-c:v", codec,
			"-r", strconv.FormatFloat(cfg.Video.FrameRate, 'f', -1, 64),
			"-s", fmt.Sprintf("%dx%d", width, height),
			"-aspect", cfg.Video.Aspect,
		)
	}

	args = append(args, "-f", cfg.Format.Name)
	if IsFragmented(cfg.Format.Name) {
		args = append(args, "-movflags", "frag_keyframe+empty_moov+default_base_moof")
	}

	return append(args, "pipe:1"), nil
}
