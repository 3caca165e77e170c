package transcoder

// flowState is the adapter's input-side flow control state.
type flowState int

const (
	// stateReady accepts the next chunk from upstream.
	stateReady flowState = iota
	// stateAwaitingDrain holds upstream until the engine acknowledges
	// the last submission.
	stateAwaitingDrain
)

func (s flowState) String() string {
	switch s {
	case stateReady:
		return "ready"
	case stateAwaitingDrain:
		return "awaiting-drain"
	default:
		return "unknown"
	}
}

// flowControl tracks cork/uncork. It is owned by the event loop and never
// touched from any other goroutine.
type flowControl struct {
	state flowState
}

func (f *flowControl) ready() bool {
	return f.state == stateReady
}

// cork records a submission. At most one submission is outstanding.
func (f *flowControl) cork() {
	f.state = stateAwaitingDrain
}

// uncork handles a drain and reports whether a submission was outstanding.
func (f *flowControl) uncork() bool {
	was := f.state == stateAwaitingDrain
	f.state = stateReady
	return was
}
