package ffmpegengine

import (
	"bytes"
	"strings"
	"sync"
)

// tailWriter keeps the last lines written to it.
type tailWriter struct {
	mu      sync.Mutex
	max     int
	lines   []string
	partial []byte
}

func newTailWriter(max int) *tailWriter {
	return &tailWriter{max: max}
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	data := append(w.partial, p...)
	for {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		w.add(string(bytes.TrimRight(data[:i], "\r")))
		data = data[i+1:]
	}
	w.partial = append([]byte(nil), data...)
	return len(p), nil
}

func (w *tailWriter) add(line string) {
	if strings.TrimSpace(line) == "" {
		return
	}
	w.lines = append(w.lines, line)
	if len(w.lines) > w.max {
		w.lines = w.lines[len(w.lines)-w.max:]
	}
}

// String returns the kept lines, including an unterminated last line.
func (w *tailWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	lines := w.lines
	if len(bytes.TrimSpace(w.partial)) > 0 {
		lines = append(append([]string(nil), lines...), string(w.partial))
	}
	return strings.Join(lines, "\n")
}
