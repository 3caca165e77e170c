package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/user/avtranscoder/pkg/ports"
)

func TestConsoleLogger_Levels(t *testing.T) {
	var out, errOut bytes.Buffer
	log := NewConsoleWriter(ports.LevelInfo, &out, &errOut)

	log.Debug("hidden %d", 1)
	log.Info("visible %d", 2)
	log.Warn("careful")
	log.Error("broken")

	if strings.Contains(out.String(), "hidden") {
		t.Error("debug message should be filtered at info level")
	}
	if !strings.Contains(out.String(), "visible 2") {
		t.Errorf("expected info message on out, got %q", out.String())
	}
	if !strings.Contains(errOut.String(), "careful") || !strings.Contains(errOut.String(), "broken") {
		t.Errorf("expected warn and error on errOut, got %q", errOut.String())
	}
	if strings.Contains(out.String(), "\033[") {
		t.Error("expected no color codes for non-terminal writers")
	}
}

func TestConsoleLogger_WithComponent(t *testing.T) {
	var out bytes.Buffer
	log := NewConsoleWriter(ports.LevelDebug, &out, &out).WithComponent("transcoder")

	log.Debug("chunk %d", 7)

	if got := strings.TrimSpace(out.String()); got != "[transcoder] chunk 7" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestConsoleLogger_Quiet(t *testing.T) {
	var out bytes.Buffer
	log := NewConsoleWriter(ports.LevelQuiet, &out, &out)

	log.Error("nothing")
	if out.Len() != 0 {
		t.Errorf("expected no output at quiet level, got %q", out.String())
	}
}

func TestNoopLogger(t *testing.T) {
	log := NewNoop()
	log.Info("ignored")
	if log.WithComponent("x") != log {
		t.Error("expected WithComponent to return the same no-op logger")
	}
}

func TestConsoleLogger_NestedComponent(t *testing.T) {
	var out bytes.Buffer
	log := NewConsoleWriter(ports.LevelDebug, &out, &out).
		WithComponent("transcoder").
		WithComponent("ffmpeg")

	log.Debug("exited")

	if got := strings.TrimSpace(out.String()); got != "[transcoder/ffmpeg] exited" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestConsoleLogger_TranslatesKeys(t *testing.T) {
	var out bytes.Buffer
	log := NewConsoleWriter(ports.LevelInfo, &out, &out)

	log.Info("Transcoding %s to %s", "in.wav", "out.mp4")

	if !strings.Contains(out.String(), "in.wav") || !strings.Contains(out.String(), "out.mp4") {
		t.Errorf("expected formatted arguments, got %q", out.String())
	}
}
