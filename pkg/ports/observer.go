package ports

// Observer receives the adapter's notifications.
// Callbacks run on the adapter's event loop and must not block.
type Observer interface {
	// OnProgress is called for each progress event reported by the engine.
	OnProgress(p Progress)

	// OnError is called at most once, with the terminal error.
	OnError(err error)
}
