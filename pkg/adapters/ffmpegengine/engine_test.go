package ffmpegengine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/avtranscoder/pkg/averror"
	"github.com/user/avtranscoder/pkg/config"
	"github.com/user/avtranscoder/pkg/mocks"
	"github.com/user/avtranscoder/pkg/ports"
	"github.com/user/avtranscoder/pkg/transcoder"
)

// fakeFFmpeg writes a shell script standing in for ffmpeg.
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

const (
	echoScript = "exec cat"
	failScript = "cat >/dev/null\necho 'pipe:0: Invalid data found when processing input' >&2\nexit 1"
	oomScript  = "cat >/dev/null\necho 'Cannot allocate memory' >&2\nexit 1"
)

type result struct {
	data     []byte
	progress []ports.Progress
	errEvent *ports.Event
	ended    bool
}

// drive submits chunks one at a time, waiting for each drain, then finishes
// and collects events until the engine reports an end or an error.
func drive(t *testing.T, e *Engine, chunks [][]byte) result {
	t.Helper()

	var res result
	timeout := time.After(10 * time.Second)

	next := func() ports.Event {
		select {
		case ev := <-e.Events():
			return ev
		case <-timeout:
			t.Fatal("timed out waiting for engine events")
			return ports.Event{}
		}
	}

	record := func(ev ports.Event) bool {
		switch ev.Kind {
		case ports.EventData:
			res.data = append(res.data, ev.Data...)
		case ports.EventProgress:
			res.progress = append(res.progress, ev.Progress)
		case ports.EventError:
			res.errEvent = &ev
			return true
		case ports.EventEnd:
			res.ended = true
			return true
		}
		return false
	}

	for _, chunk := range chunks {
		if err := e.Submit(chunk); err != nil {
			t.Fatalf("Submit: %v", err)
		}
		for {
			ev := next()
			if ev.Kind == ports.EventDrain {
				break
			}
			if record(ev) {
				return res
			}
		}
	}

	if err := e.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	for !record(next()) {
	}
	return res
}

func split(data []byte, size int) [][]byte {
	var chunks [][]byte
	for len(data) > 0 {
		n := size
		if n > len(data) {
			n = len(data)
		}
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	return chunks
}

func mpegtsConfig(t *testing.T) config.Config {
	return normalize(t, config.Options{OutputFormatName: ptr("mpegts")})
}

func TestEngine_Echo(t *testing.T) {
	path := fakeFFmpeg(t, echoScript)

	e, err := Start(mpegtsConfig(t), Options{FFmpegPath: path})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Close()

	input := bytes.Repeat([]byte("0123456789"), 1000)
	res := drive(t, e, split(input, 1500))

	if !res.ended {
		t.Fatalf("engine did not end, error event: %+v", res.errEvent)
	}
	if !bytes.Equal(res.data, input) {
		t.Errorf("output mismatch: got %d bytes, want %d", len(res.data), len(input))
	}
	if len(res.progress) == 0 {
		t.Fatal("expected progress events")
	}
	last := res.progress[len(res.progress)-1]
	if last.Bytes != int64(len(input)) {
		t.Errorf("last progress bytes = %d, want %d", last.Bytes, len(input))
	}
}

func TestEngine_FragmentProgress(t *testing.T) {
	path := fakeFFmpeg(t, echoScript)

	stream := buildFragmentedStream(t, 4)
	e, err := Start(normalize(t, config.Options{}), Options{FFmpegPath: path})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Close()

	res := drive(t, e, split(stream, 333))
	if !res.ended {
		t.Fatalf("engine did not end, error event: %+v", res.errEvent)
	}
	if !bytes.Equal(res.data, stream) {
		t.Errorf("output mismatch: got %d bytes, want %d", len(res.data), len(stream))
	}
	if len(res.progress) != 4 {
		t.Fatalf("got %d progress events, want 4", len(res.progress))
	}
	for i, p := range res.progress {
		if p.Units != int64(i+1) {
			t.Errorf("progress %d units = %d", i, p.Units)
		}
	}
	if last := res.progress[3]; last.Bytes != int64(len(stream)) {
		t.Errorf("last fragment ends at %d, want %d", last.Bytes, len(stream))
	}
}

func TestEngine_Failure(t *testing.T) {
	path := fakeFFmpeg(t, failScript)

	e, err := Start(mpegtsConfig(t), Options{FFmpegPath: path})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Close()

	res := drive(t, e, [][]byte{[]byte("garbage")})
	if res.errEvent == nil {
		t.Fatal("expected an error event")
	}
	if res.errEvent.Code != string(averror.NativeError) {
		t.Errorf("code = %s, want NativeError", res.errEvent.Code)
	}
	if !strings.Contains(res.errEvent.Detail, "Invalid data found") {
		t.Errorf("detail %q does not include stderr", res.errEvent.Detail)
	}
}

func TestEngine_OutOfMemory(t *testing.T) {
	path := fakeFFmpeg(t, oomScript)

	e, err := Start(mpegtsConfig(t), Options{FFmpegPath: path})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Close()

	res := drive(t, e, [][]byte{[]byte("x")})
	if res.errEvent == nil || res.errEvent.Code != string(averror.OutOfMemory) {
		t.Errorf("got %+v, want OutOfMemory error event", res.errEvent)
	}
}

func TestEngine_SubmitBusy(t *testing.T) {
	path := fakeFFmpeg(t, "exec sleep 5")

	e, err := Start(mpegtsConfig(t), Options{FFmpegPath: path})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer e.Close()

	// The first chunk may already be taken by the writer; at most two fit.
	var busy bool
	for i := 0; i < 3; i++ {
		if err := e.Submit([]byte("x")); errors.Is(err, ErrBusy) {
			busy = true
			break
		}
	}
	if !busy {
		t.Error("expected ErrBusy while a chunk is pending")
	}
}

func TestEngine_CloseStopsProcess(t *testing.T) {
	path := fakeFFmpeg(t, "exec sleep 30")

	e, err := Start(mpegtsConfig(t), Options{FFmpegPath: path})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	done := make(chan struct{})
	go func() {
		e.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}

	if err := e.Submit([]byte("x")); !errors.Is(err, ErrEngineClosed) {
		t.Errorf("Submit after Close = %v, want ErrEngineClosed", err)
	}
}

func TestStart_FFmpegMissing(t *testing.T) {
	_, err := Start(mpegtsConfig(t), Options{FFmpegPath: filepath.Join(t.TempDir(), "missing")})
	if !errors.Is(err, ErrFFmpegNotFound) {
		t.Errorf("got %v, want ErrFFmpegNotFound", err)
	}
}

func TestTranscoder_WithFFmpegEngine(t *testing.T) {
	path := fakeFFmpeg(t, echoScript)
	observer := &mocks.Observer{}

	tr, err := transcoder.New(context.Background(), &config.Options{OutputFormatName: ptr("mpegts")}, transcoder.Deps{
		Engine:   NewFactory(Options{FFmpegPath: path}),
		Observer: observer,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	input := bytes.Repeat([]byte("abcdefgh"), 4096)
	go func() {
		w := tr.Input()
		for _, chunk := range split(input, 4000) {
			if _, err := w.Write(chunk); err != nil {
				return
			}
		}
		w.Close()
	}()

	got, err := io.ReadAll(tr.Output())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, input) {
		t.Errorf("output mismatch: got %d bytes, want %d", len(got), len(input))
	}
	if err := tr.Wait(); err != nil {
		t.Errorf("Wait: %v", err)
	}
	if len(observer.Progress()) == 0 {
		t.Error("expected progress notifications")
	}
}

func TestTranscoder_FFmpegFailure(t *testing.T) {
	path := fakeFFmpeg(t, failScript)

	tr, err := transcoder.New(context.Background(), &config.Options{OutputFormatName: ptr("mpegts")}, transcoder.Deps{
		Engine: NewFactory(Options{FFmpegPath: path}),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	go func() {
		w := tr.Input()
		if _, err := w.Write([]byte("not media")); err != nil {
			return
		}
		w.Close()
	}()

	_, err = io.ReadAll(tr.Output())
	if !averror.IsKind(err, averror.NativeError) {
		t.Errorf("got %v, want NativeError", err)
	}
}

func buildFragmentedStream(t *testing.T, n int) []byte {
	t.Helper()

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(48000, "audio", "en")
	init.Moov.Trak.Mdia.Minf.Stbl.Stsd.AddChild(
		mp4.CreateAudioSampleEntryBox("mp4a", 2, 16, 48000, nil))

	var buf bytes.Buffer
	if err := init.Encode(&buf); err != nil {
		t.Fatalf("encode init: %v", err)
	}

	for i := 0; i < n; i++ {
		frag, err := mp4.CreateFragment(uint32(i+1), 1)
		if err != nil {
			t.Fatalf("create fragment: %v", err)
		}
		data := bytes.Repeat([]byte{byte(i)}, 500)
		frag.AddFullSample(mp4.FullSample{
			Sample:     mp4.Sample{Flags: mp4.SyncSampleFlags, Size: uint32(len(data)), Dur: 1024},
			DecodeTime: uint64(i) * 1024,
			Data:       data,
		})
		if err := frag.Encode(&buf); err != nil {
			t.Fatalf("encode fragment: %v", err)
		}
	}
	return buf.Bytes()
}
