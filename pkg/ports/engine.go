// Package ports defines interfaces for external dependencies.
package ports

import (
	"github.com/user/avtranscoder/pkg/config"
)

// EventKind identifies a native engine notification.
type EventKind int

const (
	// EventData carries an output chunk in encode order.
	EventData EventKind = iota
	// EventDrain acknowledges a submission; the engine can take another chunk.
	EventDrain
	// EventProgress reports one internally processed unit.
	EventProgress
	// EventError terminates the session with Code and an optional Detail.
	EventError
	// EventEnd reports that all submitted input has been processed.
	EventEnd
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventData:
		return "data"
	case EventDrain:
		return "drain"
	case EventProgress:
		return "progress"
	case EventError:
		return "error"
	case EventEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Event is a single notification from the native engine.
type Event struct {
	Kind     EventKind
	Data     []byte   // EventData
	Code     string   // EventError
	Detail   string   // EventError
	Progress Progress // EventProgress
}

// Progress describes one unit of work completed by the engine.
type Progress struct {
	Units int64  // Units processed so far (fragments, chunks)
	Bytes int64  // Output bytes produced so far
	Label string // Engine-specific description, may be empty
}

// Engine abstracts the native codec engine.
//
// Events are delivered on a single channel and are never processed
// concurrently with each other. The engine owns the channel and must stop
// sending on it once Close returns.
type Engine interface {
	// Submit hands one input chunk to the engine. A returned error is a fatal
	// native-layer condition. The engine answers with exactly one EventDrain
	// when it can accept the next chunk.
	Submit(chunk []byte) error

	// Finish signals that no more input will be submitted.
	// The engine emits EventEnd once all submitted input is processed.
	Finish() error

	// Events returns the engine's notification channel.
	Events() <-chan Event

	// Abort asks the engine to discard in-flight work.
	Abort()

	// Close releases the engine. It is called exactly once.
	Close() error
}

// EngineFactory creates an engine for a normalized configuration.
// It fails synchronously if the engine rejects the configuration.
type EngineFactory func(cfg config.Config) (Engine, error)
