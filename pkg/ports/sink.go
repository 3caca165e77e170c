package ports

// DebugSink abstracts debug output for chunks crossing the engine boundary.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveInputChunk saves a chunk submitted to the engine.
	SaveInputChunk(index int, data []byte) error

	// SaveOutputChunk saves a chunk emitted by the engine.
	SaveOutputChunk(index int, data []byte) error
}
