package pipeline

import (
	"io"
	"time"

	"github.com/user/avtranscoder/pkg/config"
)

// DefaultChunkSize is the size of the reads taken from the source.
// Each read becomes one chunk submitted to the engine.
const DefaultChunkSize = 64 * 1024

// TranscodeInput contains the streams and options for one session.
type TranscodeInput struct {
	Source    io.Reader       // Encoded input, read until EOF
	Target    io.Writer       // Receives the transcoded output
	Options   *config.Options // Nil fails with BadArguments
	ChunkSize int             // Read size (default: DefaultChunkSize)
}

// TranscodeResult describes a finished session.
type TranscodeResult struct {
	Config          config.Config // Normalized configuration used
	BytesIn         int64
	BytesOut        int64
	ChunksSubmitted int64
	ChunksReceived  int64
	ProgressUnits   int64 // Last progress unit count reported by the engine
	Duration        time.Duration
}
