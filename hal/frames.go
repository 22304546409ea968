package hal

import "sync"

// frameQueue collects callbacks for the next refresh.
type frameQueue struct {
	mu      sync.Mutex
	pending []func()
	spare   []func()
}

func (q *frameQueue) RequestFrame(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// run invokes the callbacks requested before this call and returns how many
// ran. Callbacks requested from inside a callback wait for the next run.
func (q *frameQueue) run() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = q.spare[:0]
	q.mu.Unlock()

	for _, fn := range batch {
		fn()
	}

	for i := range batch {
		batch[i] = nil
	}
	q.mu.Lock()
	q.spare = batch[:0]
	q.mu.Unlock()
	return len(batch)
}

func (q *frameQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
