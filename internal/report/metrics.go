package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/psantana5/stopper/pkg/stopwatch"
)

// Recorder turns Timer events into Prometheus series.
type Recorder struct {
	events       *prometheus.CounterVec
	lapDuration  *prometheus.HistogramVec
	running      *prometheus.GaugeVec
	lastDuration *prometheus.GaugeVec
}

// NewRecorder creates the collectors under namespace and registers them.
func NewRecorder(namespace string, reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Timer lifecycle events by kind",
			},
			[]string{"timer", "event"},
		),
		lapDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "lap_duration_seconds",
				Help:      "Duration of recorded laps",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
			},
			[]string{"timer"},
		),
		running: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "running",
				Help:      "1 while the timer is running, 0 otherwise",
			},
			[]string{"timer"},
		),
		lastDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_duration_seconds",
				Help:      "Total duration of the timer once stopped",
			},
			[]string{"timer"},
		),
	}

	for _, c := range []prometheus.Collector{r.events, r.lapDuration, r.running, r.lastDuration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return r, nil
}

// Attach subscribes the recorder to every event of t.
func (r *Recorder) Attach(t *stopwatch.Timer) error {
	name := t.Name()
	r.running.WithLabelValues(name).Set(0)

	return attachAll(t, func(p stopwatch.Payload) {
		r.events.WithLabelValues(name, string(p.Event)).Inc()

		switch p.Event {
		case stopwatch.EventStart:
			r.running.WithLabelValues(name).Set(1)
		case stopwatch.EventStop:
			r.running.WithLabelValues(name).Set(0)
			if d, err := t.Measure(); err == nil {
				r.lastDuration.WithLabelValues(name).Set(d.Seconds())
			}
		case stopwatch.EventSplit:
			if d, err := p.Lap.Measure(); err == nil {
				r.lapDuration.WithLabelValues(name).Observe(d.Seconds())
			}
		}
	})
}

func attachAll(t *stopwatch.Timer, h stopwatch.Handler) error {
	for _, e := range stopwatch.Events() {
		if err := t.On(e, h); err != nil {
			return err
		}
	}
	return nil
}
