package mocks

import (
	"sync"

	"github.com/user/avtranscoder/pkg/config"
	"github.com/user/avtranscoder/pkg/ports"
)

// Engine is a mock implementation of ports.Engine.
//
// Events passed to Emit are delivered asynchronously, in order, by a pump
// goroutine, so handlers may emit from inside Submit without blocking the
// caller.
type Engine struct {
	// OnSubmit is called after a chunk is recorded. A returned error is
	// returned from Submit.
	OnSubmit func(m *Engine, chunk []byte) error
	// OnFinish is called by Finish.
	OnFinish func(m *Engine) error

	mu            sync.Mutex
	cond          *sync.Cond
	pending       []ports.Event
	events        chan ports.Event
	closeCh       chan struct{}
	awaitingDrain bool

	// Recorded calls for verification
	Config       config.Config
	Submitted    [][]byte
	Overlaps     int // submissions made while a drain was outstanding
	FinishCalled bool
	AbortCalled  bool
	CloseCalls   int
}

// NewEngine creates a mock engine that never emits anything on its own.
func NewEngine() *Engine {
	m := &Engine{
		events:  make(chan ports.Event),
		closeCh: make(chan struct{}),
	}
	m.cond = sync.NewCond(&m.mu)
	go m.pump()
	return m
}

// NewEchoEngine creates a mock engine that emits every submitted chunk back
// unchanged, acknowledges it, and ends after Finish.
func NewEchoEngine() *Engine {
	m := NewEngine()
	m.OnSubmit = func(m *Engine, chunk []byte) error {
		out := make([]byte, len(chunk))
		copy(out, chunk)
		m.Emit(ports.Event{Kind: ports.EventData, Data: out})
		m.Drain()
		return nil
	}
	m.OnFinish = func(m *Engine) error {
		m.Emit(ports.Event{Kind: ports.EventEnd})
		return nil
	}
	return m
}

// Factory returns an EngineFactory that records the config and returns m.
func (m *Engine) Factory() ports.EngineFactory {
	return func(cfg config.Config) (ports.Engine, error) {
		m.mu.Lock()
		m.Config = cfg
		m.mu.Unlock()
		return m, nil
	}
}

func (m *Engine) Submit(chunk []byte) error {
	m.mu.Lock()
	if m.awaitingDrain {
		m.Overlaps++
	}
	m.awaitingDrain = true
	recorded := make([]byte, len(chunk))
	copy(recorded, chunk)
	m.Submitted = append(m.Submitted, recorded)
	onSubmit := m.OnSubmit
	m.mu.Unlock()

	if onSubmit != nil {
		return onSubmit(m, chunk)
	}
	return nil
}

func (m *Engine) Finish() error {
	m.mu.Lock()
	m.FinishCalled = true
	onFinish := m.OnFinish
	m.mu.Unlock()

	if onFinish != nil {
		return onFinish(m)
	}
	return nil
}

func (m *Engine) Events() <-chan ports.Event {
	return m.events
}

func (m *Engine) Abort() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AbortCalled = true
}

func (m *Engine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalls++
	if m.CloseCalls == 1 {
		close(m.closeCh)
		m.cond.Broadcast()
	}
	return nil
}

// Emit queues an event for delivery.
func (m *Engine) Emit(ev ports.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, ev)
	m.cond.Broadcast()
}

// Drain emits EventDrain and clears the outstanding submission.
func (m *Engine) Drain() {
	m.mu.Lock()
	m.awaitingDrain = false
	m.mu.Unlock()
	m.Emit(ports.Event{Kind: ports.EventDrain})
}

// Fail emits EventError with the given code.
func (m *Engine) Fail(code, detail string) {
	m.Emit(ports.Event{Kind: ports.EventError, Code: code, Detail: detail})
}

// SubmittedCount returns the number of submitted chunks.
func (m *Engine) SubmittedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Submitted)
}

// Snapshot returns copies of the recorded state safe to inspect while the
// engine is running.
func (m *Engine) Snapshot() EngineSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return EngineSnapshot{
		Submitted:    append([][]byte(nil), m.Submitted...),
		Overlaps:     m.Overlaps,
		FinishCalled: m.FinishCalled,
		AbortCalled:  m.AbortCalled,
		CloseCalls:   m.CloseCalls,
	}
}

// EngineSnapshot is a point-in-time copy of an Engine's recorded calls.
type EngineSnapshot struct {
	Submitted    [][]byte
	Overlaps     int
	FinishCalled bool
	AbortCalled  bool
	CloseCalls   int
}

func (m *Engine) pump() {
	for {
		m.mu.Lock()
		for len(m.pending) == 0 && m.CloseCalls == 0 {
			m.cond.Wait()
		}
		if m.CloseCalls > 0 {
			m.mu.Unlock()
			return
		}
		ev := m.pending[0]
		m.pending = m.pending[1:]
		m.mu.Unlock()

		select {
		case m.events <- ev:
		case <-m.closeCh:
			return
		}
	}
}

var _ ports.Engine = (*Engine)(nil)
