package captureagent

import "sync"

// pendingCounter counts down the completion events a bulk capture job still
// expects. The done channel closes exactly when the count reaches zero; the
// count never goes negative.
type pendingCounter struct {
	mu        sync.Mutex
	remaining int
	done      chan struct{}
}

func newPendingCounter(n int) *pendingCounter {
	c := &pendingCounter{remaining: n, done: make(chan struct{})}
	if n <= 0 {
		close(c.done)
	}
	return c
}

func (c *pendingCounter) countDown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.remaining == 0 {
		return
	}
	c.remaining--
	if c.remaining == 0 {
		close(c.done)
	}
}

func (c *pendingCounter) Done() <-chan struct{} { return c.done }

func (c *pendingCounter) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}
