package transcoder

// Stats is a snapshot of a session's counters.
type Stats struct {
	BytesSubmitted  int64 // bytes accepted from upstream and submitted
	ChunksSubmitted int64
	BytesReceived   int64 // bytes emitted by the engine
	ChunksReceived  int64
	Buffered        int // output bytes waiting for the reader
	Corked          bool
	ErrorOccurred   bool
}
