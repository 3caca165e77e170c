// Package avtranscode provides a high-level API for transcoding media streams.
//
// Transcode is the streaming entry point: it pipes an encoded source through
// a new transcoding session and returns the transcoded stream.
package avtranscode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/user/avtranscoder/pkg/averror"
	"github.com/user/avtranscoder/pkg/config"
	"github.com/user/avtranscoder/pkg/pipeline"
	"github.com/user/avtranscoder/pkg/ports"
	"github.com/user/avtranscoder/pkg/transcoder"
)

// Deps are the collaborators of a session. Engine is required.
type Deps struct {
	Engine    ports.EngineFactory
	Logger    ports.Logger
	Observer  ports.Observer
	Sink      ports.DebugSink
	ChunkSize int // Source read size (default: pipeline.DefaultChunkSize)
}

// Stream is the read side of a running session.
type Stream struct {
	t *transcoder.Transcoder

	mu        sync.Mutex
	sourceErr error
}

// Transcode starts a session that reads src and returns its output.
// A nil opts fails with BadArguments carrying the call's arguments.
// The caller must read the stream to EOF or Close it.
func Transcode(ctx context.Context, src io.Reader, opts *config.Options, deps Deps) (*Stream, error) {
	if opts == nil {
		return nil, averror.Must(averror.BadArguments,
			averror.WithArguments([]any{src, opts}))
	}
	if src == nil {
		return nil, averror.Must(averror.BadArguments,
			averror.WithMessage("no source stream"),
			averror.WithArguments([]any{src, opts}))
	}

	t, err := transcoder.New(ctx, opts, transcoder.Deps{
		Engine:   deps.Engine,
		Logger:   deps.Logger,
		Observer: deps.Observer,
		Sink:     deps.Sink,
	})
	if err != nil {
		return nil, err
	}

	chunkSize := deps.ChunkSize
	if chunkSize <= 0 {
		chunkSize = pipeline.DefaultChunkSize
	}

	s := &Stream{t: t}
	go s.pump(src, chunkSize)
	return s, nil
}

// Read reads transcoded bytes. A source failure is reported in place of the
// abort it caused.
func (s *Stream) Read(p []byte) (int, error) {
	n, err := s.t.Read(p)
	if err != nil && err != io.EOF {
		if serr := s.err(); serr != nil {
			return n, fmt.Errorf("read input: %w", serr)
		}
	}
	return n, err
}

// Close cancels the session if it is still running and waits for it to end.
func (s *Stream) Close() error {
	s.t.Cancel()
	<-s.t.Done()
	return nil
}

// Config returns the normalized configuration of the session.
func (s *Stream) Config() config.Config {
	return s.t.Config()
}

// Stats returns a snapshot of the session counters.
func (s *Stream) Stats() transcoder.Stats {
	return s.t.Stats()
}

func (s *Stream) pump(src io.Reader, chunkSize int) {
	in := s.t.Input()
	buf := make([]byte, chunkSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := in.Write(buf[:n]); werr != nil {
				return
			}
		}
		if errors.Is(err, io.EOF) {
			in.Close()
			return
		}
		if err != nil {
			s.mu.Lock()
			s.sourceErr = err
			s.mu.Unlock()
			s.t.Cancel()
			return
		}
	}
}

func (s *Stream) err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sourceErr
}
