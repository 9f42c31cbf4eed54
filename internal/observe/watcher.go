package observe

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/psantana5/stopper/pkg/stopwatch"
)

// Watch logs every lifecycle transition of t. It observes, nothing else.
func Watch(t *stopwatch.Timer, log logrus.FieldLogger) error {
	log = log.WithField("timer", t.Name())
	laps := 0

	for _, e := range stopwatch.Events() {
		err := t.On(e, func(p stopwatch.Payload) {
			entry := log.WithFields(logrus.Fields{
				"event": string(p.Event),
				"at":    p.At.Format(time.RFC3339Nano),
			})

			switch p.Event {
			case stopwatch.EventStart:
				entry.Info("Timer started")
			case stopwatch.EventStop:
				if d, err := t.Measure(); err == nil {
					entry = entry.WithField("duration", d.String())
				}
				entry.WithField("laps", laps).Info("Timer stopped")
			case stopwatch.EventSplit:
				laps++
				d, _ := p.Lap.Measure()
				start, _ := t.StartedAt()
				entry.WithFields(logrus.Fields{
					"lap":       p.Lap.Name(),
					"lap_index": laps,
					"lap_time":  d.String(),
					"elapsed":   p.At.Sub(start).String(),
				}).Debug("Lap recorded")
			}
		})
		if err != nil {
			return err
		}
	}
	return nil
}
