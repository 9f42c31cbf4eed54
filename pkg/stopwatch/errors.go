package stopwatch

import "errors"

// Lifecycle errors. Failed calls never mutate the Timer.
var (
	ErrAlreadyStarted  = errors.New("stopwatch already started")
	ErrNotStarted      = errors.New("stopwatch not started")
	ErrAlreadyStopped  = errors.New("stopwatch already stopped")
	ErrNotStopped      = errors.New("stopwatch not stopped")
	ErrUnknownEvent    = errors.New("unknown event")
	ErrNilHandler      = errors.New("nil event handler")
	ErrInvalidInterval = errors.New("invalid interval")
)
