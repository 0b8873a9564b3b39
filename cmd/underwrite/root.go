package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/eventlog"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/projectconfig"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/telemetry"
	"github.com/spf13/cobra"
)

var version = "dev"

// app carries state shared by every subcommand of one invocation.
type app struct {
	cfg     *projectconfig.ProjectConfig
	metrics *telemetry.Metrics

	configDir  string
	traceOut   string
	metricsOut string
	eventsOut  string
	events     eventlog.Logger

	traceFile     io.Closer
	stopTracing   func(context.Context) error
	metricsActive bool
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "underwrite",
		Short: "A/B test auto-insurance underwriting rules and prompts",
		Long: `underwrite runs applicants through two underwriting variants and reports how
their decisions differ.

A variant is a rule set plus a prompt template. Built-in variants are the
standard, conservative and liberal rule sets and one prompt_<name> variant per
prompt template. Comparisons produce agreement metrics, significance tests and
a projected business impact.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "Directory to search for .underwrite.yaml (default: working directory)")
	cmd.PersistentFlags().StringVar(&a.traceOut, "trace-out", "", "Write OpenTelemetry spans as JSON to this file")
	cmd.PersistentFlags().StringVar(&a.metricsOut, "metrics-out", "", "Write Prometheus metrics in text format to this file on exit")
	cmd.PersistentFlags().StringVar(&a.eventsOut, "events-out", "", "Append run progress as JSON lines to this file")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
		return a.init()
	}

	cmd.AddCommand(newCompareCommand(a))
	cmd.AddCommand(newSuiteCommand(a))
	cmd.AddCommand(newAnalyzeCommand(a))
	cmd.AddCommand(newEvaluateCommand(a))
	cmd.AddCommand(newConfigsCommand(a))
	cmd.AddCommand(newPowerCommand(a))
	cmd.AddCommand(newReportCommand(a))
	cmd.AddCommand(newEventsCommand(a))

	return cmd
}

// init loads project configuration and starts telemetry.
func (a *app) init() error {
	dir := a.configDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving working directory: %w", err)
		}
		dir = wd
	}

	cfg, err := projectconfig.Load(dir)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.metrics = telemetry.NewMetrics()
	a.metricsActive = a.metricsOut != ""

	a.events = eventlog.NopLogger{}
	if a.eventsOut != "" {
		events, err := eventlog.NewJSONLogger(a.eventsOut)
		if err != nil {
			return err
		}
		a.events = events
	}

	if a.traceOut != "" {
		f, err := os.Create(a.traceOut)
		if err != nil {
			return fmt.Errorf("creating trace file: %w", err)
		}
		stop, err := telemetry.InitTracing(f, version)
		if err != nil {
			f.Close() //nolint:errcheck
			return fmt.Errorf("init tracing: %w", err)
		}
		a.traceFile = f
		a.stopTracing = stop
	}
	return nil
}

// close flushes telemetry. It runs even when the command failed, so
// partial runs still leave their metrics and spans behind.
func (a *app) close() error {
	var errs []error
	if a.stopTracing != nil {
		if err := a.stopTracing(context.Background()); err != nil {
			errs = append(errs, fmt.Errorf("flushing traces: %w", err))
		}
	}
	if a.traceFile != nil {
		if err := a.traceFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing trace file: %w", err))
		}
	}
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing event log: %w", err))
		}
	}
	if a.metricsActive && a.metrics != nil {
		if err := a.metrics.WriteToTextfile(a.metricsOut); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{}
	err := newRootCommand(a).ExecuteContext(ctx)
	return errors.Join(err, a.close())
}
