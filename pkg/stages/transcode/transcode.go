// Package transcode implements the transcoding stage.
package transcode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/user/avtranscoder/pkg/pipeline"
	"github.com/user/avtranscoder/pkg/ports"
	"github.com/user/avtranscoder/pkg/transcoder"
)

// Stage streams a source through a Transcoder into a target.
type Stage struct {
	engine   ports.EngineFactory
	logger   ports.Logger
	observer ports.Observer
	sink     ports.DebugSink
}

// NewStage creates a new transcode stage. observer and sink may be nil.
func NewStage(engine ports.EngineFactory, logger ports.Logger, observer ports.Observer, sink ports.DebugSink) *Stage {
	return &Stage{
		engine:   engine,
		logger:   logger,
		observer: observer,
		sink:     sink,
	}
}

// Execute pumps input.Source into the transcoder while copying its output to
// input.Target. It returns after the output is fully written or the session
// failed, even if the source is still open and idle.
func (s *Stage) Execute(ctx context.Context, input pipeline.TranscodeInput) (pipeline.TranscodeResult, error) {
	result := pipeline.TranscodeResult{}
	start := time.Now()

	if input.Source == nil || input.Target == nil {
		return result, fmt.Errorf("source and target are required")
	}

	chunkSize := input.ChunkSize
	if chunkSize <= 0 {
		chunkSize = pipeline.DefaultChunkSize
	}

	progress := &progressTracker{next: s.observer}
	t, err := transcoder.New(ctx, input.Options, transcoder.Deps{
		Engine:   s.engine,
		Logger:   s.logger,
		Observer: progress,
		Sink:     s.sink,
	})
	if err != nil {
		return result, err
	}
	result.Config = t.Config()

	pumpDone := make(chan error, 1)
	go func() {
		err := pump(input.Source, t.Input(), chunkSize)
		pumpDone <- err
		if err != nil {
			t.Cancel()
		}
	}()

	written, copyErr := io.Copy(input.Target, t.Output())
	if copyErr != nil {
		// The target failed; stop the session so the pump returns.
		t.Cancel()
	}
	sessionErr := t.Wait()
	writeErr := s.awaitPump(pumpDone, input.Source, sessionErr)

	stats := t.Stats()
	result.BytesIn = stats.BytesSubmitted
	result.BytesOut = written
	result.ChunksSubmitted = stats.ChunksSubmitted
	result.ChunksReceived = stats.ChunksReceived
	result.ProgressUnits = progress.units.Load()
	result.Duration = time.Since(start)

	switch {
	case copyErr != nil && !isSessionErr(copyErr, sessionErr):
		return result, fmt.Errorf("write output: %w", copyErr)
	case writeErr != nil && !isSessionErr(writeErr, sessionErr):
		return result, fmt.Errorf("read input: %w", writeErr)
	case sessionErr != nil:
		return result, sessionErr
	}
	return result, nil
}

// awaitPump collects the pump result. A clean end implies the pump already
// closed the input, so it is waited for. After a failure the source is
// closed when possible and a pump parked in Read on an idle source is
// abandoned.
func (s *Stage) awaitPump(pumpDone <-chan error, src io.Reader, sessionErr error) error {
	if sessionErr == nil {
		return <-pumpDone
	}
	if c, ok := src.(io.Closer); ok {
		if err := c.Close(); err != nil && s.logger != nil {
			s.logger.Debug("Failed to close input after session end: %s", err)
		}
	}
	select {
	case err := <-pumpDone:
		return err
	default:
		return nil
	}
}

// pump copies src to dst one chunk per read, closing dst at EOF.
func pump(src io.Reader, dst io.WriteCloser, chunkSize int) error {
	buf := make([]byte, chunkSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if errors.Is(err, io.EOF) {
			return dst.Close()
		}
		if err != nil {
			return err
		}
	}
}

// isSessionErr reports whether err is the session's own failure surfacing on
// one of the streams rather than an independent stream error.
func isSessionErr(err, sessionErr error) bool {
	if sessionErr != nil && errors.Is(err, sessionErr) {
		return true
	}
	return errors.Is(err, transcoder.ErrClosed)
}

// progressTracker records the last progress unit count and forwards
// notifications.
type progressTracker struct {
	next  ports.Observer
	units atomic.Int64
}

func (p *progressTracker) OnProgress(pr ports.Progress) {
	p.units.Store(pr.Units)
	if p.next != nil {
		p.next.OnProgress(pr)
	}
}

func (p *progressTracker) OnError(err error) {
	if p.next != nil {
		p.next.OnError(err)
	}
}
