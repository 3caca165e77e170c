// Package nullsink provides a no-op debug sink implementation.
package nullsink

import "github.com/user/avtranscoder/pkg/ports"

// Sink is a no-op implementation of ports.DebugSink.
// It discards all debug output.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false so callers skip copying chunks.
func (s *Sink) Enabled() bool {
	return false
}

// SaveInputChunk does nothing.
func (s *Sink) SaveInputChunk(index int, data []byte) error {
	return nil
}

// SaveOutputChunk does nothing.
func (s *Sink) SaveOutputChunk(index int, data []byte) error {
	return nil
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
