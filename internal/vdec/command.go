package vdec

import (
	"sync/atomic"
	"time"

	"github.com/rs/xid"

	"github.com/tamzrod/vdec-manager/internal/codec"
)

const (
	cmdNew int32 = iota
	cmdQueued
	cmdDone
)

// Command is one queued request for the decode core.
//
// The caller owns Result and may read it (and Handle, for INIT) once Done is
// closed. A Command is executed at most once; enqueueing it again fails.
type Command struct {
	ID       xid.ID
	Instance int
	Op       codec.Op
	Handle   codec.Handle
	Param1   any
	Param2   any
	Result   *codec.Result

	done  chan struct{}
	state atomic.Int32

	// set only for force-close sweeps
	sweep    bool
	deadline time.Time

	enqueued    time.Time
	resubmitted bool
}

// NewCommand builds a routable command writing its result into res.
func NewCommand(inst int, op codec.Op, h codec.Handle, p1, p2 any, res *codec.Result) *Command {
	return &Command{
		ID:       xid.New(),
		Instance: inst,
		Op:       op,
		Handle:   h,
		Param1:   p1,
		Param2:   p2,
		Result:   res,
		done:     make(chan struct{}),
	}
}

// Done is closed once the dispatcher has finished with c.
// It is nil (blocks forever) for commands not built by NewCommand.
func (c *Command) Done() <-chan struct{} { return c.done }

func (c *Command) finish() {
	c.state.Store(cmdDone)
	if c.done != nil {
		close(c.done)
	}
}

func (c *Command) expired(now time.Time) bool {
	return !c.deadline.IsZero() && !now.Before(c.deadline)
}
