// Package main provides the CLI entry point for avtranscode.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/avtranscoder/pkg/adapters/ffmpegengine"
	"github.com/user/avtranscoder/pkg/adapters/filesink"
	"github.com/user/avtranscoder/pkg/adapters/logger"
	"github.com/user/avtranscoder/pkg/adapters/nullsink"
	"github.com/user/avtranscoder/pkg/adapters/osfilesystem"
	"github.com/user/avtranscoder/pkg/avtranscode"
	"github.com/user/avtranscoder/pkg/config"
	"github.com/user/avtranscoder/pkg/orchestrator"
	"github.com/user/avtranscoder/pkg/ports"
	"github.com/user/avtranscoder/pkg/stages/transcode"
	"github.com/user/avtranscoder/pkg/summarizer"
)

var version = "dev"

// Flag categories
const (
	catOutput  = "Output"
	catAudio   = "Audio"
	catVideo   = "Video"
	catSession = "Session"
	catDebug   = "Debug"
	catLogging = "Logging"
)

func main() {
	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, l10n.F("Error: %s", err))
		os.Exit(1)
	}
}

// newApp builds the CLI. Media flows through stdin and stdout when a path
// is "-", so all messages go to stderr.
func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "avtranscode",
		Usage:     l10n.T("Transcode audio and video streams with ffmpeg"),
		UsageText: "avtranscode [flags] <input|-> <output|->",
		Version:   version,
		Reader:    stdin,
		Writer:    stderr,
		ErrWriter: stderr,
		Flags:     flags(),
		Action: func(c *cli.Context) error {
			return runTranscode(c, osfilesystem.NewWithStdio(stdin, stdout), stderr)
		},
	}
}

func flags() []cli.Flag {
	return []cli.Flag{
		// Output
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Category: l10n.T(catOutput),
			Usage: l10n.T("Output container format (default: mp4)")},
		&cli.StringFlag{Name: "format-filename", Category: l10n.T(catOutput),
			Usage: l10n.T("Output filename hint")},
		&cli.StringFlag{Name: "format-mime", Category: l10n.T(catOutput),
			Usage: l10n.T("Output MIME type hint")},

		// Audio
		&cli.BoolFlag{Name: "no-audio", Category: l10n.T(catAudio),
			Usage: l10n.T("Drop the audio stream")},
		&cli.StringFlag{Name: "audio-codec", Category: l10n.T(catAudio),
			Usage: l10n.T("Audio codec (default: pcm_s16le)")},
		&cli.IntFlag{Name: "sample-rate", Category: l10n.T(catAudio),
			Usage: l10n.T("Audio sample rate in Hz (default: 44100)")},
		&cli.StringFlag{Name: "channel-layout", Category: l10n.T(catAudio),
			Usage: l10n.T("Audio channel layout (default: STEREO)")},
		&cli.IntFlag{Name: "volume", Category: l10n.T(catAudio),
			Usage: l10n.T("Audio volume, 256 is unity gain")},

		// Video
		&cli.BoolFlag{Name: "no-video", Category: l10n.T(catVideo),
			Usage: l10n.T("Drop the video stream")},
		&cli.StringFlag{Name: "video-codec", Category: l10n.T(catVideo),
			Usage: l10n.T("Video codec (default: mp4)")},
		&cli.Float64Flag{Name: "frame-rate", Category: l10n.T(catVideo),
			Usage: l10n.T("Video frame rate (default: 30)")},
		&cli.StringFlag{Name: "frame-size", Category: l10n.T(catVideo),
			Usage: l10n.T("Video frame size, e.g. 720p or 1280x720 (default: 1080p)")},
		&cli.StringFlag{Name: "aspect", Category: l10n.T(catVideo),
			Usage: l10n.T("Display aspect ratio (default: 16:9)")},

		// Session
		&cli.StringFlag{Name: "preset", Aliases: []string{"p"}, Value: string(avtranscode.PresetDefault), Category: l10n.T(catSession),
			Usage: l10n.T("Option preset (default, audio, video, web)")},
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Category: l10n.T(catSession),
			Usage: l10n.T("YAML options file, applied over the preset")},
		&cli.IntFlag{Name: "high-water-mark", Category: l10n.T(catSession),
			Usage: l10n.T("Output bytes buffered ahead of the writer")},
		&cli.IntFlag{Name: "chunk-size", Value: 0, Category: l10n.T(catSession),
			Usage: l10n.T("Input read size in bytes")},
		&cli.StringFlag{Name: "ffmpeg", EnvVars: []string{"AVTRANSCODE_FFMPEG"}, Category: l10n.T(catSession),
			Usage: l10n.T("Path to the ffmpeg binary")},
		&cli.BoolFlag{Name: "keep-partial", Category: l10n.T(catSession),
			Usage: l10n.T("Keep the output file when transcoding fails")},
		&cli.StringFlag{Name: "summary", Category: l10n.T(catSession),
			Usage: l10n.T("Write a job summary (.md or .yaml)")},

		// Debug
		&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Category: l10n.T(catDebug),
			Usage: l10n.T("Save every chunk crossing the engine boundary")},
		&cli.StringFlag{Name: "debug-dir", Value: "./debug", Category: l10n.T(catDebug),
			Usage: l10n.T("Directory for debug output")},

		// Logging
		&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Value: "info", Category: l10n.T(catLogging),
			Usage: l10n.T("Log level (debug, info, warn, error)")},
		&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Category: l10n.T(catLogging),
			Usage: l10n.T("Suppress all log output and progress")},
	}
}

func runTranscode(c *cli.Context, fs ports.FileSystem, stderr io.Writer) error {
	if c.NArg() != 2 {
		return errors.New(l10n.T("Expected an input and an output path"))
	}
	inputPath, outputPath := c.Args().Get(0), c.Args().Get(1)

	var log ports.Logger
	if c.Bool("quiet") {
		log = logger.NewNoop()
	} else {
		level, err := ports.ParseLogLevel(c.String("log-level"))
		if err != nil {
			return err
		}
		log = logger.NewConsoleWriter(level, stderr, stderr)
	}

	opts, err := buildOptions(c)
	if err != nil {
		return err
	}

	ffmpegPath, err := ffmpegengine.FindFFmpeg(c.String("ffmpeg"))
	if err != nil {
		return err
	}
	log.Info("Using ffmpeg at %s", ffmpegPath)

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Interrupted, shutting down...")
			cancel()
		case <-ctx.Done():
		}
	}()

	var sink ports.DebugSink
	if c.Bool("debug") {
		if err := fs.MkdirAll(c.String("debug-dir")); err != nil {
			return fmt.Errorf("create debug directory: %w", err)
		}
		sink = filesink.New(c.String("debug-dir"), fs)
	} else {
		sink = nullsink.New()
	}

	var progress *dotPrinter
	var observer ports.Observer
	if !c.Bool("quiet") {
		progress = &dotPrinter{w: stderr}
		observer = progress
	}

	engine := ffmpegengine.NewFactory(ffmpegengine.Options{
		FFmpegPath: ffmpegPath,
		Logger:     log,
	})
	stage := transcode.NewStage(engine, log, observer, sink)
	orch := orchestrator.New(stage, fs, log)

	result, runErr := orch.Run(ctx, orchestrator.Config{
		InputPath:   inputPath,
		OutputPath:  outputPath,
		Options:     opts,
		ChunkSize:   c.Int("chunk-size"),
		KeepPartial: c.Bool("keep-partial"),
	})
	progress.finish()

	if path := c.String("summary"); path != "" {
		if err := writeSummary(fs, path, result, runErr); err != nil {
			log.Warn("Failed to write summary: %s", err)
		}
	}

	return runErr
}

// buildOptions layers the preset, the options file and explicit flags.
func buildOptions(c *cli.Context) (*config.Options, error) {
	builder := avtranscode.NewPresetOptionsBuilder(avtranscode.Preset(c.String("preset")))

	if path := c.String("config"); path != "" {
		fileOpts, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		builder.WithOptions(*fileOpts)
	}

	if c.IsSet("format") {
		builder.WithFormat(c.String("format"))
	}
	if c.IsSet("format-filename") || c.IsSet("format-mime") {
		builder.WithFormatHints(c.String("format-filename"), c.String("format-mime"))
	}

	if c.IsSet("audio-codec") {
		builder.WithAudioCodec(c.String("audio-codec"))
	}
	if c.Bool("no-audio") {
		builder.WithoutAudio()
	}
	if c.IsSet("sample-rate") {
		builder.WithSampleRate(c.Int("sample-rate"))
	}
	if c.IsSet("channel-layout") {
		builder.WithChannelLayout(c.String("channel-layout"))
	}
	if c.IsSet("volume") {
		builder.WithVolume(c.Int("volume"))
	}

	if c.IsSet("video-codec") {
		builder.WithVideoCodec(c.String("video-codec"))
	}
	if c.Bool("no-video") {
		builder.WithoutVideo()
	}
	if c.IsSet("frame-rate") {
		builder.WithFrameRate(c.Float64("frame-rate"))
	}
	if c.IsSet("frame-size") {
		builder.WithFrameSize(c.String("frame-size"))
	}
	if c.IsSet("aspect") {
		builder.WithAspect(c.String("aspect"))
	}

	if c.IsSet("high-water-mark") {
		builder.WithHighWaterMark(c.Int("high-water-mark"))
	}

	return builder.Build(), nil
}

func writeSummary(fs ports.FileSystem, path string, result orchestrator.RunResult, runErr error) error {
	t := result.Transcode
	summary := summarizer.NewBuilder().
		WithInput(result.InputPath, t.BytesIn).
		WithOutput(result.OutputPath, t.BytesOut).
		WithConfig(t.Config).
		WithStats(summarizer.Stats{
			ChunksSubmitted: t.ChunksSubmitted,
			ChunksReceived:  t.ChunksReceived,
			ProgressUnits:   t.ProgressUnits,
			Duration:        t.Duration,
		}).
		WithError(runErr).
		Build()

	return summarizer.NewWriter(summarizer.FormatterForPath(path), fs).Write(path, summary)
}
