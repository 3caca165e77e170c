package transcoder

import (
	"io"
	"sync"
)

// outputQueue buffers engine output until the downstream reader takes it.
// The event loop stops consuming engine events while the queue holds limit
// bytes or more, and space is signalled whenever a read brings it below.
type outputQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	chunks [][]byte
	size   int
	limit  int
	done   bool
	err    error

	space chan struct{}
}

func newOutputQueue(limit int) *outputQueue {
	q := &outputQueue{
		limit: limit,
		space: make(chan struct{}, 1),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *outputQueue) push(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.done {
		return
	}
	q.chunks = append(q.chunks, chunk)
	q.size += len(chunk)
	q.cond.Broadcast()
}

func (q *outputQueue) full() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size >= q.limit
}

func (q *outputQueue) buffered() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// finish ends the output. Buffered chunks stay readable; after them Read
// returns err, or io.EOF when err is nil.
func (q *outputQueue) finish(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.done {
		return
	}
	if err == nil {
		err = io.EOF
	}
	q.done = true
	q.err = err
	q.cond.Broadcast()
}

func (q *outputQueue) read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.chunks) == 0 && !q.done {
		q.cond.Wait()
	}
	if len(q.chunks) == 0 {
		return 0, q.err
	}

	n := 0
	for n < len(p) && len(q.chunks) > 0 {
		c := copy(p[n:], q.chunks[0])
		n += c
		if c == len(q.chunks[0]) {
			q.chunks[0] = nil
			q.chunks = q.chunks[1:]
		} else {
			q.chunks[0] = q.chunks[0][c:]
		}
	}
	q.size -= n

	if q.size < q.limit {
		select {
		case q.space <- struct{}{}:
		default:
		}
	}
	return n, nil
}
