package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"gopkg.in/yaml.v3"

	"github.com/psantana5/stopper/pkg/stopwatch"
)

// Output formats accepted by Render.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Render writes rec to w in the given format.
func Render(w io.Writer, rec stopwatch.Record, format string) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rec)

	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(rec); err != nil {
			return err
		}
		return encoder.Close()

	case FormatTable, "":
		return renderTable(w, rec)

	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderTable(w io.Writer, rec stopwatch.Record) error {
	title := rec.Name
	if title == "" {
		title = "stopwatch"
	}
	fmt.Fprintf(w, "%s (%s)\n", title, rec.State)

	table := tablewriter.NewWriter(w)
	table.Header("#", "Lap", "Start", "Duration", "Share")

	for _, row := range Rows(rec) {
		err := table.Append(
			fmt.Sprintf("%d", row.Index),
			displayName(row.Name),
			"+"+formatDuration(row.Offset),
			formatDuration(row.Duration),
			fmt.Sprintf("%.1f%%", row.Share*100),
		)
		if err != nil {
			return fmt.Errorf("failed to append lap row: %w", err)
		}
	}
	if err := table.Append("", "TOTAL", "", formatDuration(rec.Duration), ""); err != nil {
		return fmt.Errorf("failed to append total row: %w", err)
	}

	return table.Render()
}

// RenderSlow writes over-budget laps as a table. Nothing is written when
// the list is empty.
func RenderSlow(w io.Writer, slow []SlowLap) error {
	if len(slow) == 0 {
		return nil
	}

	fmt.Fprintf(w, "\n%d lap(s) over budget\n", len(slow))
	table := tablewriter.NewWriter(w)
	table.Header("#", "Lap", "Duration", "Budget")
	for _, s := range slow {
		err := table.Append(fmt.Sprintf("%d", s.Index), displayName(s.Name),
			formatDuration(s.Duration), formatDuration(s.Budget))
		if err != nil {
			return fmt.Errorf("failed to append slow lap row: %w", err)
		}
	}
	return table.Render()
}

// PrometheusExport renders everything g gathers in the text exposition format.
func PrometheusExport(g prometheus.Gatherer) (string, error) {
	families, err := g.Gather()
	if err != nil {
		return "", fmt.Errorf("failed to gather metrics: %w", err)
	}

	var b strings.Builder
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&b, mf); err != nil {
			return "", fmt.Errorf("failed to encode %s: %w", mf.GetName(), err)
		}
	}
	return b.String(), nil
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
