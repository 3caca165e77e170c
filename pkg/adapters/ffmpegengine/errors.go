package ffmpegengine

import "errors"

var (
	// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
	ErrFFmpegNotFound = errors.New("ffmpegengine: ffmpeg not found")

	// ErrBusy is returned by Submit while the previous chunk is still being written.
	ErrBusy = errors.New("ffmpegengine: previous chunk not drained")

	// ErrEngineClosed is returned by Submit and Finish after Close.
	ErrEngineClosed = errors.New("ffmpegengine: engine closed")
)
