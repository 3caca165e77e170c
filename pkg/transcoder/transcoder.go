// Package transcoder bridges a pull-based byte stream to a push-based native
// codec engine.
//
// A Transcoder is a duplex stage: bytes written to its input are forwarded to
// the engine one chunk at a time, and chunks the engine emits are read from
// its output. All state is owned by a single event loop goroutine that
// consumes the engine's event channel, so engine notifications are never
// handled concurrently.
package transcoder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/user/avtranscoder/pkg/adapters/logger"
	"github.com/user/avtranscoder/pkg/averror"
	"github.com/user/avtranscoder/pkg/config"
	"github.com/user/avtranscoder/pkg/ports"
)

var (
	// ErrClosed is returned by Write after the session terminated cleanly.
	ErrClosed = errors.New("transcoder: closed")

	// ErrInputClosed is returned by Write and CloseInput after CloseInput.
	ErrInputClosed = errors.New("transcoder: input already closed")
)

// Deps are the collaborators of a Transcoder.
type Deps struct {
	// Engine creates the native engine. Required.
	Engine ports.EngineFactory

	// Logger receives component logs. Defaults to a no-op logger.
	Logger ports.Logger

	// Observer receives progress and the terminal error. Optional.
	Observer ports.Observer

	// Sink receives copies of the chunks crossing the engine boundary. Optional.
	Sink ports.DebugSink
}

// Transcoder is a single transcoding session.
type Transcoder struct {
	cfg      config.Config
	engine   ports.Engine
	logger   ports.Logger
	observer ports.Observer
	sink     ports.DebugSink

	writeCh chan writeRequest
	endCh   chan chan error
	done    chan struct{}
	cancel  context.CancelFunc
	out     *outputQueue

	inputClosed atomic.Bool

	errMu sync.Mutex
	err   error

	bytesSubmitted  atomic.Int64
	chunksSubmitted atomic.Int64
	bytesReceived   atomic.Int64
	chunksReceived  atomic.Int64
	corked          atomic.Bool
	errorOccurred   atomic.Bool
}

type writeRequest struct {
	chunk []byte
	reply chan error
}

// New normalizes opts, creates the engine and starts the session.
//
// A nil opts fails with BadArguments. If the engine rejects the
// configuration the error is returned here rather than on the first write.
// Cancelling ctx aborts the session.
func New(ctx context.Context, opts *config.Options, deps Deps) (*Transcoder, error) {
	cfg, err := config.Normalize(opts)
	if err != nil {
		return nil, err
	}
	if deps.Engine == nil {
		return nil, averror.Must(averror.BadArguments,
			averror.WithMessage("no engine factory configured"))
	}

	log := deps.Logger
	if log == nil {
		log = logger.NewNoop()
	}
	log = log.WithComponent("transcoder")

	engine, err := deps.Engine(cfg)
	if err != nil {
		return nil, nativeFailure(err)
	}

	ctx, cancel := context.WithCancel(ctx)
	t := &Transcoder{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		observer: deps.Observer,
		sink:     deps.Sink,
		writeCh:  make(chan writeRequest),
		endCh:    make(chan chan error),
		done:     make(chan struct{}),
		cancel:   cancel,
		out:      newOutputQueue(cfg.HighWaterMark),
	}

	log.Debug("Session started: format %s, audio %s, video %s",
		cfg.Format.Name, cfg.Audio.Codec, cfg.Video.Codec)

	go t.run(ctx)
	return t, nil
}

// Config returns the normalized configuration of the session.
func (t *Transcoder) Config() config.Config {
	return t.cfg
}

// Write forwards p to the engine as one chunk. It blocks until the engine
// acknowledged the previous chunk, then returns once p is submitted. After
// the session terminated every write, including an empty one, returns the
// terminal error.
func (t *Transcoder) Write(p []byte) (int, error) {
	if t.inputClosed.Load() {
		return 0, ErrInputClosed
	}
	select {
	case <-t.done:
		return 0, t.terminalErr()
	default:
	}
	if len(p) == 0 {
		return 0, nil
	}

	chunk := make([]byte, len(p))
	copy(chunk, p)
	req := writeRequest{chunk: chunk, reply: make(chan error, 1)}

	select {
	case t.writeCh <- req:
	case <-t.done:
		return 0, t.terminalErr()
	}

	if err := <-req.reply; err != nil {
		return 0, err
	}
	return len(p), nil
}

// CloseInput signals upstream completion. The engine is told to finish
// once the last chunk has been acknowledged.
func (t *Transcoder) CloseInput() error {
	if !t.inputClosed.CompareAndSwap(false, true) {
		return ErrInputClosed
	}

	reply := make(chan error, 1)
	select {
	case t.endCh <- reply:
	case <-t.done:
		return t.terminalErr()
	}
	return <-reply
}

// Read reads transcoded bytes. It returns io.EOF after the engine finished,
// or the terminal error after a failure. Bytes emitted before a failure are
// still returned first.
func (t *Transcoder) Read(p []byte) (int, error) {
	return t.out.read(p)
}

// Input returns the write side of the stage. Closing it calls CloseInput.
func (t *Transcoder) Input() io.WriteCloser {
	return inputSide{t}
}

// Output returns the read side of the stage.
func (t *Transcoder) Output() io.Reader {
	return outputSide{t}
}

// Cancel aborts the session without waiting for the engine to finish.
func (t *Transcoder) Cancel() {
	t.cancel()
}

// Done is closed once the session has terminated and the engine is released.
func (t *Transcoder) Done() <-chan struct{} {
	return t.done
}

// Err returns the terminal error, or nil if the session has not failed.
func (t *Transcoder) Err() error {
	t.errMu.Lock()
	defer t.errMu.Unlock()
	return t.err
}

// Wait blocks until the session terminates and returns its terminal error.
func (t *Transcoder) Wait() error {
	<-t.done
	return t.Err()
}

// Stats returns a snapshot of the session counters.
func (t *Transcoder) Stats() Stats {
	return Stats{
		BytesSubmitted:  t.bytesSubmitted.Load(),
		ChunksSubmitted: t.chunksSubmitted.Load(),
		BytesReceived:   t.bytesReceived.Load(),
		ChunksReceived:  t.chunksReceived.Load(),
		Buffered:        t.out.buffered(),
		Corked:          t.corked.Load(),
		ErrorOccurred:   t.errorOccurred.Load(),
	}
}

func (t *Transcoder) terminalErr() error {
	if err := t.Err(); err != nil {
		return err
	}
	return ErrClosed
}

// run is the event loop. It is the only goroutine that touches the engine
// and the flow controller.
func (t *Transcoder) run(ctx context.Context) {
	var (
		flow       flowControl
		inputEnded bool
		events     = t.engine.Events()
	)

	for {
		var (
			writeCh <-chan writeRequest
			endCh   <-chan chan error
		)
		if flow.ready() && !inputEnded {
			writeCh = t.writeCh
			endCh = t.endCh
		}

		eventCh := events
		if t.out.full() {
			eventCh = nil
		}

		select {
		case <-ctx.Done():
			t.logger.Debug("Session cancelled, aborting engine")
			t.engine.Abort()
			t.fail(averror.Must(averror.Aborted, averror.WithCause(ctx.Err())))
			return

		case req := <-writeCh:
			if err := t.submit(&flow, req.chunk); err != nil {
				req.reply <- err
				t.fail(err)
				return
			}
			req.reply <- nil

		case reply := <-endCh:
			inputEnded = true
			t.logger.Debug("Input complete after %d chunks", t.chunksSubmitted.Load())
			if err := t.engine.Finish(); err != nil {
				err = nativeFailure(err)
				reply <- err
				t.fail(err)
				return
			}
			reply <- nil

		case <-t.out.space:

		case ev, ok := <-eventCh:
			if !ok {
				t.fail(averror.Must(averror.NativeError,
					averror.WithContext("detail", "engine closed its event stream")))
				return
			}
			if t.handle(ev, &flow, inputEnded) {
				return
			}
		}
	}
}

// handle processes one engine event and reports whether the session ended.
func (t *Transcoder) handle(ev ports.Event, flow *flowControl, inputEnded bool) bool {
	switch ev.Kind {
	case ports.EventData:
		index := t.chunksReceived.Add(1) - 1
		t.bytesReceived.Add(int64(len(ev.Data)))
		t.save(t.sinkOutput, int(index), ev.Data)
		t.out.push(ev.Data)

	case ports.EventDrain:
		if !flow.uncork() {
			t.logger.Debug("Ignoring drain without a pending chunk")
		}
		t.corked.Store(false)

	case ports.EventProgress:
		if t.observer != nil {
			t.observer.OnProgress(ev.Progress)
		}

	case ports.EventError:
		t.fail(averror.FromCode(ev.Code, ev.Detail))
		return true

	case ports.EventEnd:
		if !inputEnded {
			t.fail(averror.Must(averror.NativeError,
				averror.WithContext("detail", "engine ended before input was complete")))
			return true
		}
		t.logger.Debug("Engine finished: %d bytes in, %d bytes out",
			t.bytesSubmitted.Load(), t.bytesReceived.Load())
		t.terminate(nil)
		return true

	default:
		t.logger.Warn("Ignoring unknown engine event %s", ev.Kind)
	}
	return false
}

// submit forwards one chunk and corks. A panic inside the engine is
// converted to a NativeError like any other synchronous failure.
func (t *Transcoder) submit(flow *flowControl, chunk []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = averror.Must(averror.NativeError,
				averror.WithContext("panic", fmt.Sprint(r)))
		}
	}()

	index := t.chunksSubmitted.Load()
	t.save(t.sinkInput, int(index), chunk)

	if err := t.engine.Submit(chunk); err != nil {
		return nativeFailure(err)
	}

	flow.cork()
	t.corked.Store(true)
	t.chunksSubmitted.Add(1)
	t.bytesSubmitted.Add(int64(len(chunk)))
	return nil
}

// fail records the terminal error, notifies the observer once and terminates.
func (t *Transcoder) fail(err error) {
	t.errorOccurred.Store(true)
	t.errMu.Lock()
	t.err = err
	t.errMu.Unlock()

	t.logger.Error("Transcoding failed: %s", err)
	if t.observer != nil {
		t.observer.OnError(err)
	}
	t.terminate(err)
}

// terminate releases the engine, ends the output and closes done.
// The loop returns right after, so this runs exactly once.
func (t *Transcoder) terminate(err error) {
	if cerr := t.engine.Close(); cerr != nil {
		t.logger.Warn("Failed to release engine: %s", cerr)
	}
	t.out.finish(err)
	close(t.done)
	t.cancel()
}

func (t *Transcoder) sinkInput(index int, data []byte) error {
	return t.sink.SaveInputChunk(index, data)
}

func (t *Transcoder) sinkOutput(index int, data []byte) error {
	return t.sink.SaveOutputChunk(index, data)
}

func (t *Transcoder) save(fn func(int, []byte) error, index int, data []byte) {
	if t.sink == nil || !t.sink.Enabled() {
		return
	}
	if err := fn(index, data); err != nil {
		t.logger.Warn("Failed to save debug chunk %d: %s", index, err)
	}
}

// nativeFailure keeps typed engine errors and wraps anything else as a
// NativeError.
func nativeFailure(err error) error {
	var e *averror.Error
	if errors.As(err, &e) {
		return err
	}
	return averror.Must(averror.NativeError, averror.WithCause(err))
}

type inputSide struct {
	t *Transcoder
}

func (in inputSide) Write(p []byte) (int, error) {
	return in.t.Write(p)
}

func (in inputSide) Close() error {
	return in.t.CloseInput()
}

type outputSide struct {
	t *Transcoder
}

func (out outputSide) Read(p []byte) (int, error) {
	return out.t.Read(p)
}
