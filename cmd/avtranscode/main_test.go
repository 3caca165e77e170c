package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/user/avtranscoder/pkg/config"
	"github.com/user/avtranscoder/pkg/ports"
)

func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeInput(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.bin")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// parseOptions runs the flag set through buildOptions without transcoding.
func parseOptions(t *testing.T, args ...string) *config.Options {
	t.Helper()

	var opts *config.Options
	app := &cli.App{
		Name:  "avtranscode",
		Flags: flags(),
		Action: func(c *cli.Context) error {
			var err error
			opts, err = buildOptions(c)
			return err
		},
	}
	if err := app.Run(append([]string{"avtranscode"}, args...)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return opts
}

func TestBuildOptions_Defaults(t *testing.T) {
	opts := parseOptions(t)

	cfg, err := config.Normalize(opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Format.Name != config.DefaultOutputFormat {
		t.Errorf("format = %q, want %q", cfg.Format.Name, config.DefaultOutputFormat)
	}
	if opts.OutputAudioSampleRate != nil {
		t.Error("sample rate should be left to the normalizer")
	}
}

func TestBuildOptions_Layering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "options.yaml")
	content := "outputFormatName: webm\noutputAudioSampleRate: 48000\noutputVideoFrameSize: 720p\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	opts := parseOptions(t,
		"--preset", "web",
		"--config", path,
		"--sample-rate", "22050",
		"--no-video",
	)

	if got := *opts.OutputFormatName; got != "webm" {
		t.Errorf("format = %q, want webm from the options file", got)
	}
	if got := *opts.OutputAudioSampleRate; got != 22050 {
		t.Errorf("sample rate = %d, want 22050 from the flag", got)
	}
	if got := *opts.OutputAudioCodec; got != "aac" {
		t.Errorf("audio codec = %q, want aac from the preset", got)
	}
	if opts.OutputVideoIgnore == nil || !*opts.OutputVideoIgnore {
		t.Error("video should be ignored")
	}
}

func TestBuildOptions_MissingConfigFile(t *testing.T) {
	app := &cli.App{
		Name:  "avtranscode",
		Flags: flags(),
		Action: func(c *cli.Context) error {
			_, err := buildOptions(c)
			return err
		},
	}
	err := app.Run([]string{"avtranscode", "--config", filepath.Join(t.TempDir(), "missing.yaml")})
	if err == nil {
		t.Fatal("expected error for a missing options file")
	}
}

func TestApp_RequiresTwoPaths(t *testing.T) {
	var stderr bytes.Buffer
	app := newApp(strings.NewReader(""), &bytes.Buffer{}, &stderr)

	if err := app.Run([]string{"avtranscode", "only-input"}); err == nil {
		t.Fatal("expected error with a single path")
	}
}

func TestApp_TranscodeFiles(t *testing.T) {
	ffmpeg := fakeFFmpeg(t, "exec cat")
	payload := bytes.Repeat([]byte("avtranscode"), 20000)
	input := writeInput(t, payload)
	dir := t.TempDir()
	output := filepath.Join(dir, "out", "result.mp4")
	summary := filepath.Join(dir, "summary.yaml")

	var stderr bytes.Buffer
	app := newApp(strings.NewReader(""), &bytes.Buffer{}, &stderr)
	err := app.Run([]string{
		"avtranscode",
		"--quiet",
		"--ffmpeg", ffmpeg,
		"--chunk-size", "4096",
		"--summary", summary,
		input, output,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v (stderr: %s)", err, stderr.String())
	}

	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("output has %d bytes, want %d", len(got), len(payload))
	}

	report, err := os.ReadFile(summary)
	if err != nil {
		t.Fatalf("summary not written: %v", err)
	}
	for _, want := range []string{"format: mp4", "chunksSubmitted:", "bytes: 220000"} {
		if !strings.Contains(string(report), want) {
			t.Errorf("summary missing %q:\n%s", want, report)
		}
	}
}

func TestApp_TranscodeStdio(t *testing.T) {
	ffmpeg := fakeFFmpeg(t, "exec cat")
	payload := []byte("streamed through standard input")

	var stdout, stderr bytes.Buffer
	app := newApp(bytes.NewReader(payload), &stdout, &stderr)
	if err := app.Run([]string{"avtranscode", "--ffmpeg", ffmpeg, "-", "-"}); err != nil {
		t.Fatalf("unexpected error: %v (stderr: %s)", err, stderr.String())
	}

	if !bytes.Equal(stdout.Bytes(), payload) {
		t.Errorf("stdout = %q, want %q", stdout.Bytes(), payload)
	}
	if !strings.Contains(stderr.String(), ffmpeg) {
		t.Errorf("expected the ffmpeg path logged on stderr, got %q", stderr.String())
	}
}

func TestApp_FailureRemovesPartialOutput(t *testing.T) {
	ffmpeg := fakeFFmpeg(t, "cat >/dev/null\necho 'Invalid data found when processing input' >&2\nexit 1")
	input := writeInput(t, []byte("not really media"))
	output := filepath.Join(t.TempDir(), "result.mp4")

	app := newApp(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	err := app.Run([]string{"avtranscode", "-Q", "--ffmpeg", ffmpeg, input, output})
	if err == nil {
		t.Fatal("expected error from failing engine")
	}
	if _, statErr := os.Stat(output); !os.IsNotExist(statErr) {
		t.Errorf("partial output should be removed, stat error: %v", statErr)
	}
}

func TestApp_KeepPartial(t *testing.T) {
	ffmpeg := fakeFFmpeg(t, "cat >/dev/null\nexit 1")
	input := writeInput(t, []byte("not really media"))
	output := filepath.Join(t.TempDir(), "result.mp4")

	app := newApp(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	err := app.Run([]string{"avtranscode", "-Q", "--keep-partial", "--ffmpeg", ffmpeg, input, output})
	if err == nil {
		t.Fatal("expected error from failing engine")
	}
	if _, statErr := os.Stat(output); statErr != nil {
		t.Errorf("partial output should be kept: %v", statErr)
	}
}

func TestApp_DebugChunks(t *testing.T) {
	ffmpeg := fakeFFmpeg(t, "exec cat")
	input := writeInput(t, bytes.Repeat([]byte{1}, 10000))
	dir := t.TempDir()
	debugDir := filepath.Join(dir, "debug")

	app := newApp(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	err := app.Run([]string{
		"avtranscode", "-Q", "-d",
		"--debug-dir", debugDir,
		"--chunk-size", "4096",
		"--ffmpeg", ffmpeg,
		input, filepath.Join(dir, "out.bin"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chunks, err := filepath.Glob(filepath.Join(debugDir, "input", "chunk-*.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 3 {
		t.Errorf("saved %d input chunks, want 3", len(chunks))
	}
}

func TestDotPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := &dotPrinter{w: &buf}
	p.OnProgress(ports.Progress{})
	p.OnProgress(ports.Progress{})
	p.finish()
	p.finish()

	if buf.String() != "..\n" {
		t.Errorf("output = %q, want %q", buf.String(), "..\n")
	}

	var nilPrinter *dotPrinter
	nilPrinter.finish()
}

func TestApp_RejectsUnknownLogLevel(t *testing.T) {
	app := newApp(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{})
	if err := app.Run([]string{"avtranscode", "-l", "chatty", "in", "out"}); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}
