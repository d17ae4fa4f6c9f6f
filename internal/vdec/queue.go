package vdec

import (
	"log/slog"
	"sync"
)

// queue is the FIFO of pending commands. Its mutex also guards the
// instance slot table (see slots.go).
type queue struct {
	mu      sync.Mutex
	items   []*Command
	pending uint64 // commands ever accepted
	started bool
	stopped bool
	slots   []slot

	// wake is a one-deep doorbell: a signal sent while the dispatcher is busy
	// is still seen on its next wait.
	wake chan struct{}

	log *slog.Logger
}

func newQueue(instances int, log *slog.Logger) *queue {
	q := &queue{
		slots: make([]slot, instances),
		wake:  make(chan struct{}, 1),
		log:   log,
	}
	for i := range q.slots {
		q.slots[i].closed = true
	}
	return q
}

func (q *queue) add(c *Command) error {
	if c == nil {
		q.log.Error("queue add: nil command")
		return errNilCommand
	}

	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return ErrStopped
	}
	if !q.started {
		q.mu.Unlock()
		return ErrNotStarted
	}
	if !c.state.CompareAndSwap(cmdNew, cmdQueued) {
		q.mu.Unlock()
		return ErrCommandReused
	}
	q.items = append(q.items, c)
	q.pending++
	q.mu.Unlock()

	q.signal()
	return nil
}

func (q *queue) remove(c *Command) bool {
	if c == nil {
		q.log.Error("queue remove: nil command")
		return false
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	for i, it := range q.items {
		if it == c {
			copy(q.items[i:], q.items[i+1:])
			q.items[len(q.items)-1] = nil
			q.items = q.items[:len(q.items)-1]
			return true
		}
	}
	return false
}

func (q *queue) isEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0
}

func (q *queue) peekFirst() *Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

func (q *queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *queue) start() {
	q.mu.Lock()
	q.started = true
	q.mu.Unlock()
}

// stop refuses further adds.
func (q *queue) stop() {
	q.mu.Lock()
	q.stopped = true
	q.mu.Unlock()
}

func (q *queue) isStopped() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stopped
}

// takeAll empties the queue and returns what was left.
func (q *queue) takeAll() []*Command {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	return out
}

func (q *queue) counts() (queued int, pending uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items), q.pending
}
