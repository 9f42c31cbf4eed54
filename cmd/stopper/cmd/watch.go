package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/psantana5/stopper/internal/report"
	"github.com/psantana5/stopper/internal/session"
	"github.com/psantana5/stopper/internal/shutdown"
)

var (
	printMetrics bool
	lapBudget    time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch [name]",
	Short: "Run an interactive stopwatch",
	Long: `Starts a stopwatch and records a lap for every line read from stdin.
The line text names the lap; an empty line records an unnamed lap.
Type "stop", press Ctrl+D or Ctrl+C to stop the timer and print the report.

With --metrics-addr the running timer is also exposed over HTTP:
  GET  /laps, /laps/{name}, /metrics, /healthz
  POST /split?name=<lap>, /stop

Example:
  stopper watch deploy
  stopper watch build --output json --budget 30s
  stopper watch --metrics-addr :9102`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("metrics-addr", "", "address to serve the session API on (empty disables it)")
	watchCmd.Flags().BoolVar(&printMetrics, "print-metrics", false, "print Prometheus metrics after the report")
	watchCmd.Flags().DurationVar(&lapBudget, "budget", 0, "flag laps longer than this duration (0 disables)")

	_ = v.BindPFlag("metrics_addr", watchCmd.Flags().Lookup("metrics-addr"))
}

func runWatch(cmd *cobra.Command, args []string) error {
	c, err := mustConfig()
	if err != nil {
		return err
	}

	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	s, err := session.New(session.Options{
		Name:       name,
		Namespace:  c.Namespace,
		SlowBudget: lapBudget,
	}, logger)
	if err != nil {
		return err
	}

	mgr := shutdown.New(c.ShutdownTimeout, logger)
	defer func() {
		if err := mgr.Shutdown(); err != nil {
			logger.WithError(err).Warn("Shutdown incomplete")
		}
	}()

	if c.MetricsAddr != "" {
		if _, err := s.Listen(c.MetricsAddr, mgr); err != nil {
			return fmt.Errorf("failed to listen on %s: %w", c.MetricsAddr, err)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(cmd.ErrOrStderr(), `Timer running. Enter a lap name to split, "stop" or Ctrl+D to finish.`)

	rec, err := s.Run(ctx, cmd.InOrStdin())
	if err != nil {
		return err
	}

	summary := report.Summarize(rec)
	logger.WithFields(logrus.Fields{
		"session_id": s.ID,
		"total":      summary.Total.String(),
		"laps":       summary.Laps,
		"slowest":    summary.Slowest,
	}).Info("Session finished")

	out := cmd.OutOrStdout()
	if err := report.Render(out, rec, c.Output); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	if c.Output == report.FormatTable {
		if err := report.RenderSlow(out, s.Slow()); err != nil {
			return fmt.Errorf("failed to render slow laps: %w", err)
		}
	}

	if printMetrics {
		text, err := report.PrometheusExport(s.Registry())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%s", text)
	}

	return nil
}
