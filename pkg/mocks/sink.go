package mocks

import (
	"sync"

	"github.com/user/avtranscoder/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	InputChunks  map[int][]byte
	OutputChunks map[int][]byte
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:      enabled,
		InputChunks:  make(map[int][]byte),
		OutputChunks: make(map[int][]byte),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveInputChunk(index int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InputChunks[index] = append([]byte(nil), data...)
	return nil
}

func (m *DebugSink) SaveOutputChunk(index int, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OutputChunks[index] = append([]byte(nil), data...)
	return nil
}

// Counts returns the number of saved input and output chunks.
func (m *DebugSink) Counts() (int, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.InputChunks), len(m.OutputChunks)
}

var _ ports.DebugSink = (*DebugSink)(nil)
