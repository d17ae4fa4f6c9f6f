package vdec

import "errors"

var (
	// ErrStopped is returned once the dispatcher has been stopped.
	ErrStopped = errors.New("vdec: manager stopped")

	// ErrNotStarted is returned for commands enqueued before Start.
	ErrNotStarted = errors.New("vdec: dispatcher not started")

	// ErrCommandReused is returned when a command is enqueued a second time.
	ErrCommandReused = errors.New("vdec: command already submitted")

	// ErrInstanceRange is returned by helpers given an instance outside the table.
	ErrInstanceRange = errors.New("vdec: instance out of range")

	errNilCommand = errors.New("vdec: nil command")
)
