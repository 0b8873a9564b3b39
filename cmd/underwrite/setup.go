package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/cache"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/dataset"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/eventlog"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/execution"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/impact"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/orchestration"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/registry"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/reporting"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/spinner"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/statistics"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/underwriting"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// runOptions are the flags shared by every command that evaluates
// applicants. Zero values defer to .underwrite.yaml.
type runOptions struct {
	engine       string
	model        string
	rulesDir     string
	variantsFile string
	timeout      int
	parallel     bool
	workers      int
	rps          float64
	enableCache  bool
	disableCache bool
	cacheDir     string

	applicants string
	only       []string
	start      int
	end        int

	verbose bool
}

func (o *runOptions) addFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&o.engine, "engine", "", "Engine: mock, openai or copilot-sdk")
	f.StringVar(&o.model, "model", "", "Model to request from the engine")
	f.StringVar(&o.rulesDir, "rules-dir", "", "Directory holding the rule files")
	f.StringVar(&o.variantsFile, "variants", "", "YAML file with additional variants")
	f.IntVar(&o.timeout, "timeout", 0, "Per-evaluation timeout in seconds")
	f.BoolVar(&o.parallel, "parallel", false, "Evaluate applicants concurrently")
	f.IntVar(&o.workers, "workers", 0, "Number of concurrent workers (requires --parallel)")
	f.Float64Var(&o.rps, "requests-per-second", 0, "Limit engine calls per second (0 = unlimited)")
	f.BoolVar(&o.enableCache, "cache", false, "Cache engine responses")
	f.BoolVar(&o.disableCache, "no-cache", false, "Disable response caching")
	f.StringVar(&o.cacheDir, "cache-dir", "", "Directory for cached responses")
	f.StringVarP(&o.applicants, "applicants", "a", "", "Applicant file (JSON, YAML or CSV); default: built-in samples")
	f.StringArrayVar(&o.only, "only", nil, "Only evaluate applicants whose ID matches this glob (can be repeated)")
	f.IntVar(&o.start, "start", 0, "First applicant to evaluate (1-based)")
	f.IntVar(&o.end, "end", 0, "Last applicant to evaluate (1-based, inclusive)")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "Print every decision as it is made")
}

// settings is runOptions merged over project configuration.
type settings struct {
	engine            string
	model             string
	rulesDir          string
	variantsFile      string
	timeout           time.Duration
	workers           int
	requestsPerSecond float64
	cacheEnabled      bool
	cacheDir          string
	memoryEntries     int
}

// resolve applies flags over a's configuration. CLI flags override config.
func (o *runOptions) resolve(a *app) settings {
	cfg := a.cfg
	s := settings{
		engine:            cfg.Defaults.Engine,
		model:             cfg.Defaults.Model,
		rulesDir:          cfg.Paths.Rules,
		variantsFile:      cfg.Paths.Variants,
		timeout:           time.Duration(cfg.Defaults.Timeout) * time.Second,
		requestsPerSecond: cfg.Defaults.RequestsPerSecond,
		cacheEnabled:      cfg.Cache.Enabled != nil && *cfg.Cache.Enabled,
		cacheDir:          cfg.Cache.Dir,
		memoryEntries:     cfg.Cache.MemoryEntries,
	}

	if o.engine != "" {
		s.engine = o.engine
	}
	if o.model != "" {
		s.model = o.model
	}
	if o.rulesDir != "" {
		s.rulesDir = o.rulesDir
	}
	if o.variantsFile != "" {
		s.variantsFile = o.variantsFile
	}
	if o.timeout > 0 {
		s.timeout = time.Duration(o.timeout) * time.Second
	}
	if o.rps > 0 {
		s.requestsPerSecond = o.rps
	}
	if o.cacheDir != "" {
		s.cacheDir = o.cacheDir
	}
	if o.enableCache {
		s.cacheEnabled = true
	}
	if o.disableCache {
		s.cacheEnabled = false
	}

	parallel := o.parallel || (cfg.Defaults.Parallel != nil && *cfg.Defaults.Parallel)
	if parallel {
		s.workers = cfg.Defaults.Workers
		if o.workers > 0 {
			s.workers = o.workers
		}
	}
	return s
}

// buildEngine creates the backend named in s, wrapped with rate limiting
// and caching when configured.
func buildEngine(ctx context.Context, s settings) (execution.Engine, error) {
	var engine execution.Engine
	switch s.engine {
	case "mock":
		engine = execution.NewMockEngine(s.model)
	case "openai":
		e, err := execution.NewOpenAIEngine(execution.OpenAIOptions{Model: s.model})
		if err != nil {
			return nil, err
		}
		engine = e
	case "copilot-sdk":
		engine = execution.NewCopilotEngine(s.model, nil)
	default:
		return nil, fmt.Errorf("unknown engine type: %s", s.engine)
	}

	if s.requestsPerSecond > 0 {
		engine = execution.NewRateLimitedEngine(engine, s.requestsPerSecond, 1)
	}

	if s.cacheEnabled {
		absCacheDir, err := filepath.Abs(s.cacheDir)
		if err != nil {
			return nil, fmt.Errorf("resolving cache directory: %w", err)
		}
		cached, err := cache.NewEngine(engine, s.engine+"/"+s.model, s.memoryEntries, cache.New(absCacheDir))
		if err != nil {
			return nil, err
		}
		slog.Debug("response cache enabled", "dir", absCacheDir)
		engine = cached
	}

	if err := engine.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("initializing %s engine: %w", s.engine, err)
	}
	return engine, nil
}

// buildRegistry registers the built-in catalog plus any variants file.
func buildRegistry(s settings, engine execution.Engine) (*registry.Registry, error) {
	reg := registry.New(s.rulesDir, engine, underwriting.WithTimeout(s.timeout))
	if err := reg.RegisterAll(registry.DefaultConfigurations()); err != nil {
		return nil, fmt.Errorf("registering built-in variants: %w", err)
	}
	if s.variantsFile != "" {
		cfgs, err := registry.LoadVariantsFile(s.variantsFile)
		if err != nil {
			return nil, err
		}
		if err := reg.RegisterAll(cfgs); err != nil {
			return nil, fmt.Errorf("registering %s: %w", s.variantsFile, err)
		}
	}
	return reg, nil
}

// loadApplicants reads the applicant file, or the built-in samples, and
// applies the range and ID filters.
func (o *runOptions) loadApplicants() ([]*models.Applicant, error) {
	var (
		applicants []*models.Applicant
		err        error
	)
	if o.applicants == "" {
		applicants = dataset.SampleApplicants()
	} else if applicants, err = dataset.LoadApplicants(o.applicants); err != nil {
		return nil, err
	}

	if o.start > 0 || o.end > 0 {
		start, end := max(o.start, 1), o.end
		if end == 0 {
			end = len(applicants)
		}
		if applicants, err = dataset.Select(applicants, start, end); err != nil {
			return nil, err
		}
	}

	if applicants, err = orchestration.FilterApplicants(applicants, o.only); err != nil {
		return nil, err
	}
	if len(applicants) == 0 {
		return nil, errors.New("no applicants selected")
	}
	return applicants, nil
}

// countingRecorder tallies results for the run summary and forwards them.
type countingRecorder struct {
	next        orchestration.Recorder
	evaluations atomic.Int64
	failed      atomic.Int64
}

func (c *countingRecorder) Observe(res *models.EvaluationResult) {
	c.evaluations.Add(1)
	if res.Failed() {
		c.failed.Add(1)
	}
	c.next.Observe(res)
}

// session is everything a command needs to evaluate applicants.
type session struct {
	started    time.Time
	events     eventlog.Logger
	recorder   *countingRecorder
	settings   settings
	engine     execution.Engine
	registry   *registry.Registry
	runner     *orchestration.Runner
	applicants []*models.Applicant
	analyzer   *statistics.Analyzer
	calculator *impact.Calculator
}

func (o *runOptions) open(cmd *cobra.Command, a *app) (*session, error) {
	ctx, out := cmd.Context(), cmd.OutOrStdout()
	s := o.resolve(a)

	applicants, err := o.loadApplicants()
	if err != nil {
		return nil, err
	}

	engine, err := buildEngine(ctx, s)
	if err != nil {
		return nil, err
	}

	reg, err := buildRegistry(s, engine)
	if err != nil {
		engine.Shutdown(ctx) //nolint:errcheck
		return nil, err
	}

	rec := &countingRecorder{next: a.metrics}
	runner := orchestration.NewRunner(reg, nil,
		orchestration.WithParallel(s.workers),
		orchestration.WithRecorder(rec),
	)
	runner.OnProgress(eventlog.Listener(a.events))
	if o.verbose {
		runner.OnProgress(verboseProgressListener(out))
	} else if isTerminal(os.Stderr) {
		runner.OnProgress(spinnerProgressListener(os.Stderr))
	}

	logEvent(a.events, eventlog.NewEvent(eventlog.EventRunStart,
		eventlog.RunStartData(cmd.Name(), s.engine, s.model, len(applicants))))

	return &session{
		started:    time.Now(),
		events:     a.events,
		recorder:   rec,
		settings:   s,
		engine:     engine,
		registry:   reg,
		runner:     runner,
		applicants: applicants,
		analyzer:   statistics.NewAnalyzer(a.cfg.Analysis.ConfidenceLevel),
		calculator: impact.NewCalculator(a.cfg.Analysis.MonthlyApplications),
	}, nil
}

// close shuts the engine down and records the end of the run.
func (s *session) close(ctx context.Context) {
	if err := s.engine.Shutdown(ctx); err != nil {
		slog.Warn("engine shutdown failed", "error", err)
	}
	logEvent(s.events, eventlog.NewEvent(eventlog.EventRunComplete, eventlog.RunCompleteData(
		int(s.recorder.evaluations.Load()), int(s.recorder.failed.Load()), time.Since(s.started).Milliseconds())))
}

func logEvent(l eventlog.Logger, ev eventlog.Event) {
	if err := l.Log(ev); err != nil {
		slog.Warn("writing event log failed", "error", err)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// verboseProgressListener prints one line per applicant.
func verboseProgressListener(w io.Writer) orchestration.ProgressListener {
	var mu sync.Mutex
	return func(event orchestration.ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		switch event.EventType {
		case orchestration.EventBatchStart:
			if event.VariantB == "" {
				fmt.Fprintf(w, "Evaluating %d applicant(s) with %s...\n\n", event.Total, event.VariantA) //nolint:errcheck
			} else {
				fmt.Fprintf(w, "Comparing %s vs %s on %d applicant(s)...\n\n", event.VariantA, event.VariantB, event.Total) //nolint:errcheck
			}
		case orchestration.EventApplicantComplete:
			fmt.Fprintf(w, "[%d/%d] %s\n", event.Num, event.Total, describeOutcome(event)) //nolint:errcheck
		case orchestration.EventBatchStopped:
			fmt.Fprintf(w, "Stopped after %d/%d: %v\n", event.Num, event.Total, event.Details["reason"]) //nolint:errcheck
		case orchestration.EventBatchComplete:
			if ms, ok := event.Details["duration_ms"].(int64); ok {
				fmt.Fprintf(w, "\nCompleted in %v\n\n", time.Duration(ms)*time.Millisecond) //nolint:errcheck
			}
		}
	}
}

func describeOutcome(event orchestration.ProgressEvent) string {
	decisionA := event.Details["decision_a"]
	failed, _ := event.Details["failed"].(bool)
	mark := ""
	if failed {
		mark = " " + failMark("[error]")
	}

	if decisionB, ok := event.Details["decision_b"]; ok {
		icon := passMark("=")
		if agree, _ := event.Details["agree"].(bool); !agree {
			icon = failMark("≠")
		}
		return fmt.Sprintf("%s  %v %s %v%s", event.ApplicantID, decisionA, icon, decisionB, mark)
	}
	return fmt.Sprintf("%s  %v%s", event.ApplicantID, decisionA, mark)
}

// spinnerProgressListener animates progress on a terminal.
func spinnerProgressListener(w io.Writer) orchestration.ProgressListener {
	var sp *spinner.Spinner
	return func(event orchestration.ProgressEvent) {
		label := event.VariantA
		if event.VariantB != "" {
			label += " vs " + event.VariantB
		}
		switch event.EventType {
		case orchestration.EventBatchStart:
			sp = spinner.Start(w, fmt.Sprintf("%s: 0/%d", label, event.Total))
		case orchestration.EventApplicantComplete:
			if sp != nil {
				sp.Update(fmt.Sprintf("%s: %d/%d %s", label, event.Num, event.Total, event.ApplicantID))
			}
		case orchestration.EventBatchComplete, orchestration.EventBatchStopped:
			if sp != nil {
				sp.Stop()
				sp = nil
			}
		}
	}
}

func (s *session) newBuilder() *reporting.Builder {
	return reporting.NewBuilder(s.analyzer, s.calculator, len(s.applicants))
}
