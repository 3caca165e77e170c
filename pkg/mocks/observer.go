package mocks

import (
	"sync"

	"github.com/user/avtranscoder/pkg/ports"
)

// Observer is a mock implementation of ports.Observer.
type Observer struct {
	mu       sync.Mutex
	progress []ports.Progress
	errors   []error
}

func (m *Observer) OnProgress(p ports.Progress) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.progress = append(m.progress, p)
}

func (m *Observer) OnError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, err)
}

// Progress returns the recorded progress events.
func (m *Observer) Progress() []ports.Progress {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.Progress(nil), m.progress...)
}

// Errors returns the recorded errors.
func (m *Observer) Errors() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]error(nil), m.errors...)
}

var _ ports.Observer = (*Observer)(nil)
