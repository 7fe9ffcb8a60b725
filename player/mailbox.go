package player

import "sync"

// mailbox is an unbounded FIFO of funcs run by a single owner goroutine.
// Posting never blocks, so a func may post further funcs.
type mailbox struct {
	mu     sync.Mutex
	queue  []func()
	signal chan struct{}
	closed bool
}

func newMailbox() *mailbox {
	return &mailbox{signal: make(chan struct{}, 1)}
}

// post appends fn. It reports false once the mailbox is closed.
func (m *mailbox) post(fn func()) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, fn)
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
	return true
}

// next blocks until a func is available. It returns false when the mailbox
// is closed and drained.
func (m *mailbox) next() (func(), bool) {
	for {
		m.mu.Lock()
		if len(m.queue) > 0 {
			fn := m.queue[0]
			m.queue[0] = nil
			m.queue = m.queue[1:]
			m.mu.Unlock()
			return fn, true
		}
		closed := m.closed
		m.mu.Unlock()

		if closed {
			return nil, false
		}
		<-m.signal
	}
}

// close stops accepting funcs; queued ones still run.
func (m *mailbox) close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	select {
	case m.signal <- struct{}{}:
	default:
	}
}
