package report

import (
	"sync"
	"time"
)

// SlowLap is a lap that ran longer than its budget.
type SlowLap struct {
	Index    int           `json:"index" yaml:"index"`
	Name     string        `json:"name" yaml:"name"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Budget   time.Duration `json:"budget" yaml:"budget"`
}

// SlowLog keeps the most recent over-budget laps in a fixed-size ring.
// A zero budget disables it.
type SlowLog struct {
	mu      sync.RWMutex
	budget  time.Duration
	samples []SlowLap
	maxSize int
}

// NewSlowLog creates a log holding at most maxSize samples.
func NewSlowLog(budget time.Duration, maxSize int) *SlowLog {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &SlowLog{
		budget:  budget,
		samples: make([]SlowLap, 0, maxSize),
		maxSize: maxSize,
	}
}

// Check records the lap if it exceeds the budget and reports whether it did.
func (l *SlowLog) Check(index int, name string, d time.Duration) bool {
	if l.budget <= 0 || d <= l.budget {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.samples) >= l.maxSize {
		l.samples = l.samples[1:]
	}
	l.samples = append(l.samples, SlowLap{Index: index, Name: name, Duration: d, Budget: l.budget})
	return true
}

// Recent returns up to n samples, oldest first.
func (l *SlowLog) Recent(n int) []SlowLap {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || n > len(l.samples) {
		n = len(l.samples)
	}
	out := make([]SlowLap, n)
	copy(out, l.samples[len(l.samples)-n:])
	return out
}

// Budget returns the configured threshold.
func (l *SlowLog) Budget() time.Duration {
	return l.budget
}
