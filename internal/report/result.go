package report

import (
	"time"

	"github.com/psantana5/stopper/pkg/stopwatch"
)

// Row is one lap flattened for display. Offset is measured from the
// parent's start; Share is the lap's fraction of the parent's duration.
type Row struct {
	Index    int           `json:"index" yaml:"index"`
	Name     string        `json:"name" yaml:"name"`
	Offset   time.Duration `json:"offset" yaml:"offset"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Share    float64       `json:"share" yaml:"share"`
}

// Rows flattens the laps of rec in creation order.
func Rows(rec stopwatch.Record) []Row {
	rows := make([]Row, 0, len(rec.Laps))
	for i, lap := range rec.Laps {
		row := Row{
			Index:    i + 1,
			Name:     lap.Name,
			Duration: lap.Duration,
		}
		if rec.StartedAt != nil && lap.StartedAt != nil {
			row.Offset = lap.StartedAt.Sub(*rec.StartedAt)
		}
		if rec.Duration > 0 {
			row.Share = float64(lap.Duration) / float64(rec.Duration)
		}
		rows = append(rows, row)
	}
	return rows
}

// Summary is the one-line digest logged when a run finishes.
type Summary struct {
	Name    string
	State   string
	Total   time.Duration
	Laps    int
	Slowest string
	Longest time.Duration
}

// Summarize builds a Summary from rec. Slowest is empty without laps.
func Summarize(rec stopwatch.Record) Summary {
	s := Summary{
		Name:  rec.Name,
		State: rec.State,
		Total: rec.Duration,
		Laps:  len(rec.Laps),
	}
	for i, lap := range rec.Laps {
		if i == 0 || lap.Duration > s.Longest {
			s.Longest = lap.Duration
			s.Slowest = displayName(lap.Name)
		}
	}
	return s
}

func displayName(name string) string {
	if name == "" {
		return "-"
	}
	return name
}
