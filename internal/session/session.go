package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/psantana5/stopper/internal/observe"
	"github.com/psantana5/stopper/internal/report"
	"github.com/psantana5/stopper/pkg/stopwatch"
)

// StopCommand is the input line that stops the timer instead of splitting.
const StopCommand = "stop"

const slowLogSize = 50

// Options configures a Session.
type Options struct {
	Name       string
	Namespace  string
	SlowBudget time.Duration // 0 disables over-budget tracking
	Clock      stopwatch.Clock
}

// Session drives one Timer from line input and exposes it over HTTP.
// The mutex serializes the input loop and HTTP handlers around the Timer.
type Session struct {
	ID string

	mu       sync.Mutex
	timer    *stopwatch.Timer
	stopped  chan struct{}
	registry *prometheus.Registry
	slow     *report.SlowLog
	log      *logrus.Entry
}

// New creates a session with its own metrics registry.
func New(opts Options, log logrus.FieldLogger) (*Session, error) {
	timer, err := stopwatch.New(opts.Name, stopwatch.WithClock(opts.Clock))
	if err != nil {
		return nil, fmt.Errorf("failed to create timer: %w", err)
	}

	s := &Session{
		ID:       uuid.New().String(),
		timer:    timer,
		stopped:  make(chan struct{}),
		registry: prometheus.NewRegistry(),
		slow:     report.NewSlowLog(opts.SlowBudget, slowLogSize),
	}
	s.log = log.WithField("session_id", s.ID)

	recorder, err := report.NewRecorder(opts.Namespace, s.registry)
	if err != nil {
		return nil, err
	}
	if err := recorder.Attach(timer); err != nil {
		return nil, fmt.Errorf("failed to attach metrics: %w", err)
	}
	if err := observe.Watch(timer, s.log); err != nil {
		return nil, fmt.Errorf("failed to attach observer: %w", err)
	}

	laps := 0
	timer.OnSplit(func(lap *stopwatch.Timer) {
		laps++
		d, _ := lap.Measure()
		if s.slow.Check(laps, lap.Name(), d) {
			s.log.WithFields(logrus.Fields{
				"lap":      lap.Name(),
				"lap_time": d.String(),
				"budget":   s.slow.Budget().String(),
			}).Warn("Lap over budget")
		}
	})
	timer.OnStop(func(time.Time) {
		close(s.stopped)
	})

	return s, nil
}

// Registry returns the session's metrics registry.
func (s *Session) Registry() *prometheus.Registry {
	return s.registry
}

// Slow returns the over-budget laps seen so far.
func (s *Session) Slow() []report.SlowLap {
	return s.slow.Recent(0)
}

// Record snapshots the timer.
func (s *Session) Record() stopwatch.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer.Record()
}

// Start starts the timer.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer.Start()
}

// Split records a lap and returns its snapshot.
func (s *Session) Split(name string) (stopwatch.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lap, err := s.timer.Split(name)
	if err != nil {
		return stopwatch.Record{}, err
	}
	return lap.Record(), nil
}

// Stop stops the timer.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer.Stop()
}

// Lap returns the first lap named name.
func (s *Session) Lap(name string) (stopwatch.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lap := s.timer.Lap(name)
	if lap == nil {
		return stopwatch.Record{}, false
	}
	return lap.Record(), true
}

// Stopped is closed once the timer stops, whoever stopped it.
func (s *Session) Stopped() <-chan struct{} {
	return s.stopped
}

// Run starts the timer and splits once per input line until the input ends,
// the StopCommand line arrives, the timer is stopped elsewhere, or ctx is
// done. The timer is stopped on the way out.
func (s *Session) Run(ctx context.Context, r io.Reader) (stopwatch.Record, error) {
	if err := s.Start(); err != nil {
		return stopwatch.Record{}, err
	}

	done := make(chan struct{})
	defer close(done)
	lines, scanErr := scan(r, done)

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			s.log.Debug("Context done, stopping")
			break loop
		case <-s.stopped:
			break loop
		case line, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					runErr = fmt.Errorf("failed to read input: %w", err)
				}
				break loop
			}
			if strings.TrimSpace(line) == StopCommand {
				break loop
			}
			if _, err := s.Split(strings.TrimSpace(line)); err != nil {
				if errors.Is(err, stopwatch.ErrAlreadyStopped) {
					break loop
				}
				return s.Record(), err
			}
		}
	}

	if err := s.Stop(); err != nil && !errors.Is(err, stopwatch.ErrAlreadyStopped) {
		return s.Record(), err
	}
	return s.Record(), runErr
}

// scan feeds lines from r until EOF or done is closed. The error channel
// receives exactly one value after lines is closed.
func scan(r io.Reader, done <-chan struct{}) (<-chan string, <-chan error) {
	lines := make(chan string)
	errc := make(chan error, 1)

	go func() {
		defer close(errc)
		defer close(lines)

		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				errc <- nil
				return
			}
		}
		errc <- scanner.Err()
	}()

	return lines, errc
}
