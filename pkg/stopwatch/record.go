package stopwatch

import (
	"time"

	"github.com/samber/lo"
)

// Record is an immutable snapshot of a Timer and its laps.
// Unset timestamps are left nil; Duration is Elapsed at snapshot time.
type Record struct {
	Name      string        `json:"name,omitempty" yaml:"name,omitempty"`
	State     string        `json:"state" yaml:"state"`
	StartedAt *time.Time    `json:"started_at,omitempty" yaml:"started_at,omitempty"`
	StoppedAt *time.Time    `json:"stopped_at,omitempty" yaml:"stopped_at,omitempty"`
	Duration  time.Duration `json:"duration_ns" yaml:"duration"`
	Laps      []Record      `json:"laps,omitempty" yaml:"laps,omitempty"`
}

// Record snapshots the Timer.
func (t *Timer) Record() Record {
	rec := Record{
		Name:     t.name,
		State:    t.State().String(),
		Duration: t.Elapsed(),
	}
	if at, ok := t.StartedAt(); ok {
		rec.StartedAt = &at
	}
	if at, ok := t.StoppedAt(); ok {
		rec.StoppedAt = &at
	}
	if len(t.laps) > 0 {
		rec.Laps = lo.Map(t.laps, func(l *Timer, _ int) Record {
			return l.Record()
		})
	}
	return rec
}
