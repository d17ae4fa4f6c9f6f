package vdec

import "github.com/tamzrod/vdec-manager/internal/codec"

// slot is one logical decoder instance. Guarded by queue.mu.
// handle != 0 exactly when !closed.
type slot struct {
	closed    bool
	handle    codec.Handle
	lastOp    codec.Op
	lastInput int
	commands  uint64
}

// SlotState is a copy of one slot for observers.
type SlotState struct {
	Instance  int          `json:"instance"`
	Open      bool         `json:"open"`
	Handle    codec.Handle `json:"handle"`
	LastOp    string       `json:"last_op"`
	LastInput int          `json:"last_input"`
	Commands  uint64       `json:"commands"`
}

func (q *queue) inRange(inst int) bool {
	return inst >= 0 && inst < len(q.slots)
}

func (q *queue) slot(inst int) (slot, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.inRange(inst) {
		return slot{}, false
	}
	return q.slots[inst], true
}

func (q *queue) openSlot(inst int, h codec.Handle) {
	q.mu.Lock()
	defer q.mu.Unlock()
	s := &q.slots[inst]
	s.closed = false
	s.handle = h
}

// closeSlot reports whether the slot was open.
func (q *queue) closeSlot(inst int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.inRange(inst) {
		return false
	}
	s := &q.slots[inst]
	was := !s.closed
	s.closed = true
	s.handle = 0
	return was
}

func (q *queue) note(inst int, op codec.Op) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.inRange(inst) {
		return
	}
	q.slots[inst].lastOp = op
	q.slots[inst].commands++
}

func (q *queue) noteInput(inst int, size int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.inRange(inst) {
		q.slots[inst].lastInput = size
	}
}

func (q *queue) openSlots() []int {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []int
	for i := range q.slots {
		if !q.slots[i].closed {
			out = append(out, i)
		}
	}
	return out
}

func (q *queue) snapshot() []SlotState {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]SlotState, len(q.slots))
	for i, s := range q.slots {
		out[i] = SlotState{
			Instance:  i,
			Open:      !s.closed,
			Handle:    s.handle,
			LastInput: s.lastInput,
			Commands:  s.commands,
		}
		if s.commands > 0 {
			out[i].LastOp = s.lastOp.String()
		}
	}
	return out
}
