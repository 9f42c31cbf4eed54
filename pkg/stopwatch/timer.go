// Package stopwatch tracks a start time, a stop time and the named laps
// recorded in between, and notifies observers of each transition.
//
// A lap is itself a Timer: a closed interval whose start is the previous
// lap's stop (or the parent's start for the first lap) and whose stop is the
// moment Split was called.
//
// Timers are not safe for concurrent use.
package stopwatch

import (
	"fmt"
	"time"

	"github.com/samber/lo"
)

// State is the lifecycle position of a Timer.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Timer records one interval and the laps split off while it runs.
type Timer struct {
	name      string
	startedAt time.Time
	stoppedAt time.Time
	laps      []*Timer
	hooks     hooks
	clock     Clock
}

// Option configures a Timer at construction.
type Option func(*Timer)

// StartedAt seeds the start timestamp. A seeded Timer can no longer Start.
func StartedAt(t time.Time) Option {
	return func(tm *Timer) {
		tm.startedAt = t
	}
}

// StoppedAt seeds the stop timestamp. Requires StartedAt.
func StoppedAt(t time.Time) Option {
	return func(tm *Timer) {
		tm.stoppedAt = t
	}
}

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(tm *Timer) {
		if c != nil {
			tm.clock = c
		}
	}
}

// New creates a Timer. Without seeded timestamps it starts out idle.
func New(name string, opts ...Option) (*Timer, error) {
	t := &Timer{
		name:  name,
		hooks: newHooks(),
		clock: SystemClock,
	}
	for _, opt := range opts {
		opt(t)
	}

	if !t.stoppedAt.IsZero() {
		if t.startedAt.IsZero() {
			return nil, fmt.Errorf("%w: stop seeded without start", ErrInvalidInterval)
		}
		if t.stoppedAt.Before(t.startedAt) {
			return nil, fmt.Errorf("%w: stop %s precedes start %s",
				ErrInvalidInterval, t.stoppedAt.Format(time.RFC3339Nano), t.startedAt.Format(time.RFC3339Nano))
		}
	}

	return t, nil
}

// Name returns the label given at construction.
func (t *Timer) Name() string {
	return t.name
}

// StartedAt returns the start timestamp and whether it is set.
func (t *Timer) StartedAt() (time.Time, bool) {
	return t.startedAt, !t.startedAt.IsZero()
}

// StoppedAt returns the stop timestamp and whether it is set.
func (t *Timer) StoppedAt() (time.Time, bool) {
	return t.stoppedAt, !t.stoppedAt.IsZero()
}

// State derives the lifecycle state from the recorded timestamps.
func (t *Timer) State() State {
	switch {
	case t.startedAt.IsZero():
		return StateIdle
	case t.stoppedAt.IsZero():
		return StateRunning
	default:
		return StateStopped
	}
}

// Start records the start time and fires EventStart.
func (t *Timer) Start() error {
	if !t.startedAt.IsZero() {
		return ErrAlreadyStarted
	}

	t.startedAt = t.clock.Now()
	t.hooks.emit(Payload{Event: EventStart, At: t.startedAt})
	return nil
}

// Stop records the stop time and fires EventStop.
func (t *Timer) Stop() error {
	if err := t.checkRunning(); err != nil {
		return err
	}

	t.stoppedAt = t.clock.Now()
	t.hooks.emit(Payload{Event: EventStop, At: t.stoppedAt})
	return nil
}

// Split closes a lap ending now, appends it and fires EventSplit.
// The parent's own timestamps are left alone.
func (t *Timer) Split(name string) (*Timer, error) {
	if err := t.checkRunning(); err != nil {
		return nil, err
	}

	from := t.startedAt
	if prev := t.Last(); prev != nil {
		from = prev.stoppedAt
	}

	lap := &Timer{
		name:      name,
		startedAt: from,
		stoppedAt: t.clock.Now(),
		hooks:     newHooks(),
		clock:     t.clock,
	}
	t.laps = append(t.laps, lap)

	t.hooks.emit(Payload{Event: EventSplit, At: lap.stoppedAt, Lap: lap})
	return lap, nil
}

func (t *Timer) checkRunning() error {
	if t.startedAt.IsZero() {
		return ErrNotStarted
	}
	if !t.stoppedAt.IsZero() {
		return ErrAlreadyStopped
	}
	return nil
}

// Measure returns stop minus start. It fails until the Timer is stopped.
func (t *Timer) Measure() (time.Duration, error) {
	switch t.State() {
	case StateIdle:
		return 0, ErrNotStarted
	case StateRunning:
		return 0, ErrNotStopped
	}
	return t.stoppedAt.Sub(t.startedAt), nil
}

// Elapsed is like Measure but reads the clock while running and returns 0
// when idle.
func (t *Timer) Elapsed() time.Duration {
	switch t.State() {
	case StateIdle:
		return 0
	case StateRunning:
		return t.clock.Now().Sub(t.startedAt)
	}
	return t.stoppedAt.Sub(t.startedAt)
}

// Laps returns the laps in creation order. The slice is a copy.
func (t *Timer) Laps() []*Timer {
	out := make([]*Timer, len(t.laps))
	copy(out, t.laps)
	return out
}

// Last returns the most recent lap, or nil.
func (t *Timer) Last() *Timer {
	if len(t.laps) == 0 {
		return nil
	}
	return t.laps[len(t.laps)-1]
}

// Lap returns the first lap with the given name, or nil.
func (t *Timer) Lap(name string) *Timer {
	lap, ok := lo.Find(t.laps, func(l *Timer) bool {
		return l.name == name
	})
	if !ok {
		return nil
	}
	return lap
}

// On registers h for future occurrences of e. Handlers run synchronously in
// registration order before the triggering call returns.
func (t *Timer) On(e Event, h Handler) error {
	return t.hooks.add(e, h)
}

// OnStart registers fn for EventStart.
func (t *Timer) OnStart(fn func(at time.Time)) {
	if fn == nil {
		return
	}
	t.hooks[EventStart] = append(t.hooks[EventStart], func(p Payload) { fn(p.At) })
}

// OnStop registers fn for EventStop.
func (t *Timer) OnStop(fn func(at time.Time)) {
	if fn == nil {
		return
	}
	t.hooks[EventStop] = append(t.hooks[EventStop], func(p Payload) { fn(p.At) })
}

// OnSplit registers fn for EventSplit.
func (t *Timer) OnSplit(fn func(lap *Timer)) {
	if fn == nil {
		return
	}
	t.hooks[EventSplit] = append(t.hooks[EventSplit], func(p Payload) { fn(p.Lap) })
}
