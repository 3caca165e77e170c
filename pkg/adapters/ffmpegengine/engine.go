// Package ffmpegengine implements ports.Engine by piping chunks through an
// ffmpeg process.
//
// Each submitted chunk is written to ffmpeg's stdin by a writer goroutine,
// which acknowledges it with EventDrain once the pipe accepted it. A reader
// goroutine turns stdout into EventData and EventProgress, then reports the
// process exit as EventEnd or EventError.
package ffmpegengine

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/user/avtranscoder/pkg/adapters/fmp4scan"
	"github.com/user/avtranscoder/pkg/adapters/logger"
	"github.com/user/avtranscoder/pkg/averror"
	"github.com/user/avtranscoder/pkg/config"
	"github.com/user/avtranscoder/pkg/ports"
)

const (
	readBufferSize = 32 * 1024
	stderrLines    = 20
)

// Options configures the engine.
type Options struct {
	// FFmpegPath overrides binary discovery.
	FFmpegPath string

	// Logger receives engine logs. Defaults to a no-op logger.
	Logger ports.Logger
}

// NewFactory returns an EngineFactory that starts one ffmpeg process per
// session.
func NewFactory(opts Options) ports.EngineFactory {
	return func(cfg config.Config) (ports.Engine, error) {
		return Start(cfg, opts)
	}
}

// Engine drives a single ffmpeg process.
type Engine struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr *tailWriter
	logger ports.Logger

	fragmented bool

	events  chan ports.Event
	chunks  chan []byte
	finish  chan struct{}
	closing chan struct{}

	finishOnce sync.Once
	closeOnce  sync.Once
	wg         sync.WaitGroup

	finished atomic.Bool
	aborted  atomic.Bool
	closed   atomic.Bool

	writeErrMu sync.Mutex
	writeErr   error
}

// Start launches ffmpeg for cfg.
func Start(cfg config.Config, opts Options) (*Engine, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoop()
	}
	log = log.WithComponent("ffmpeg")

	path, err := FindFFmpeg(opts.FFmpegPath)
	if err != nil {
		return nil, err
	}

	args, err := BuildArgs(cfg)
	if err != nil {
		return nil, averror.Must(averror.BadArguments,
			averror.WithMessage(err.Error()),
			averror.WithCause(err))
	}

	e := &Engine{
		cmd:        exec.Command(path, args...),
		stderr:     newTailWriter(stderrLines),
		logger:     log,
		fragmented: IsFragmented(cfg.Format.Name),
		events:     make(chan ports.Event),
		chunks:     make(chan []byte, 1),
		finish:     make(chan struct{}),
		closing:    make(chan struct{}),
	}
	e.cmd.Stderr = e.stderr

	e.stdin, err = e.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	e.stdout, err = e.cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdout pipe: %w", err)
	}

	log.Debug("Starting ffmpeg: %s", strings.Join(append([]string{path}, args...), " "))
	if err := e.cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	e.wg.Add(2)
	go e.writeLoop()
	go e.readLoop()

	return e, nil
}

// Submit queues chunk for the writer goroutine.
func (e *Engine) Submit(chunk []byte) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	select {
	case e.chunks <- chunk:
		return nil
	default:
		return ErrBusy
	}
}

// Finish closes ffmpeg's stdin once pending chunks are written.
func (e *Engine) Finish() error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	e.finishOnce.Do(func() {
		e.finished.Store(true)
		close(e.finish)
	})
	return nil
}

// Events returns the notification channel.
func (e *Engine) Events() <-chan ports.Event {
	return e.events
}

// Abort kills the process. No terminal event is reported for it.
func (e *Engine) Abort() {
	e.aborted.Store(true)
	e.kill()
}

// Close kills the process if it is still running and waits for the
// goroutines to exit.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.closed.Store(true)
		close(e.closing)
		e.kill()
		e.wg.Wait()
	})
	return nil
}

func (e *Engine) kill() {
	if e.cmd.Process == nil {
		return
	}
	if err := e.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		e.logger.Debug("ffmpeg exited: %s", err)
	}
}

// emit delivers ev unless the engine is closing.
func (e *Engine) emit(ev ports.Event) bool {
	select {
	case e.events <- ev:
		return true
	case <-e.closing:
		return false
	}
}

func (e *Engine) writeLoop() {
	defer e.wg.Done()

	for {
		select {
		case chunk := <-e.chunks:
			if _, err := e.stdin.Write(chunk); err != nil {
				// ffmpeg stopped reading; the exit status explains why.
				e.writeErrMu.Lock()
				e.writeErr = err
				e.writeErrMu.Unlock()
				e.stdin.Close()
				return
			}
			if !e.emit(ports.Event{Kind: ports.EventDrain}) {
				return
			}

		case <-e.finish:
			e.stdin.Close()
			return

		case <-e.closing:
			e.stdin.Close()
			return
		}
	}
}

func (e *Engine) readLoop() {
	defer e.wg.Done()

	var (
		units int64
		total int64
		scan  *fmp4scan.Scanner
	)
	if e.fragmented {
		scan = fmp4scan.New(fmp4scan.Handler{
			OnTracks: func(tracks []fmp4scan.Track) {
				e.logger.Debug("Output tracks: %s", describeTracks(tracks))
			},
			OnFragment: func(f fmp4scan.Fragment) {
				units++
				e.logger.Debug("Fragment %d complete", f.Sequence)
				e.emit(ports.Event{Kind: ports.EventProgress, Progress: ports.Progress{
					Units: units,
					Bytes: int64(f.Offset),
					Label: fmt.Sprintf("fragment %d", f.Sequence),
				}})
			},
		})
	}

	buf := make([]byte, readBufferSize)
	for {
		n, err := e.stdout.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			total += int64(n)

			if !e.emit(ports.Event{Kind: ports.EventData, Data: chunk}) {
				e.drainStdout()
				break
			}

			if scan != nil {
				if _, serr := scan.Write(chunk); serr != nil {
					e.logger.Warn("Output scanner stopped: %s", serr)
					scan = nil
				}
			} else if !e.fragmented {
				units++
				e.emit(ports.Event{Kind: ports.EventProgress, Progress: ports.Progress{
					Units: units,
					Bytes: total,
				}})
			}
		}
		if err != nil {
			break
		}
	}

	e.wait()
}

// drainStdout discards output so the process is not blocked on a full pipe
// while it is being killed.
func (e *Engine) drainStdout() {
	_, _ = io.Copy(io.Discard, e.stdout)
}

// wait reaps the process and reports how it ended. It must run after stdout
// has been fully read.
func (e *Engine) wait() {
	err := e.cmd.Wait()
	if e.aborted.Load() || e.closed.Load() {
		return
	}

	if err != nil {
		e.logger.Debug("ffmpeg exited: %s", err)
		e.emit(ports.Event{
			Kind:   ports.EventError,
			Code:   classify(e.stderr.String()),
			Detail: exitDetail(err, e.stderr.String()),
		})
		return
	}

	e.writeErrMu.Lock()
	werr := e.writeErr
	e.writeErrMu.Unlock()
	if werr != nil {
		e.emit(ports.Event{
			Kind:   ports.EventError,
			Code:   string(averror.NativeError),
			Detail: fmt.Sprintf("write to ffmpeg: %v", werr),
		})
		return
	}

	e.emit(ports.Event{Kind: ports.EventEnd})
}

// classify maps ffmpeg diagnostics to an error code.
func classify(stderr string) string {
	if strings.Contains(stderr, "Cannot allocate memory") {
		return string(averror.OutOfMemory)
	}
	return string(averror.NativeError)
}

func exitDetail(err error, stderr string) string {
	if stderr == "" {
		return err.Error()
	}
	return fmt.Sprintf("%v: %s", err, stderr)
}

func describeTracks(tracks []fmp4scan.Track) string {
	parts := make([]string, 0, len(tracks))
	for _, t := range tracks {
		parts = append(parts, fmt.Sprintf("#%d %s/%s", t.ID, t.Handler, t.Codec))
	}
	return strings.Join(parts, ", ")
}

var _ ports.Engine = (*Engine)(nil)
