// Package filesink provides a file-based debug sink implementation.
//
// Chunks are written as individual files so a failing session can be
// replayed chunk by chunk:
//
//	<baseDir>/input/chunk-000000.bin
//	<baseDir>/output/chunk-000000.bin
package filesink

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/user/avtranscoder/pkg/ports"
)

// Sink saves the chunks crossing the engine boundary to files.
type Sink struct {
	baseDir string
	fs      ports.FileSystem

	mu      sync.Mutex
	created map[string]bool
}

// New creates a new FileSink rooted at baseDir.
func New(baseDir string, fs ports.FileSystem) *Sink {
	return &Sink{
		baseDir: baseDir,
		fs:      fs,
		created: make(map[string]bool),
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveInputChunk saves a chunk submitted to the engine.
func (s *Sink) SaveInputChunk(index int, data []byte) error {
	return s.save("input", index, data)
}

// SaveOutputChunk saves a chunk emitted by the engine.
func (s *Sink) SaveOutputChunk(index int, data []byte) error {
	return s.save("output", index, data)
}

// ChunkPath returns the path a chunk is saved under.
func (s *Sink) ChunkPath(direction string, index int) string {
	return filepath.Join(s.baseDir, direction, fmt.Sprintf("chunk-%06d.bin", index))
}

func (s *Sink) save(direction string, index int, data []byte) error {
	if err := s.ensureDir(filepath.Join(s.baseDir, direction)); err != nil {
		return fmt.Errorf("create %s chunk directory: %w", direction, err)
	}
	return s.fs.WriteFile(s.ChunkPath(direction, index), data)
}

func (s *Sink) ensureDir(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.created[dir] {
		return nil
	}
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	s.created[dir] = true
	return nil
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
