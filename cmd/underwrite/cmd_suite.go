package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/orchestration"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/reporting"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// promptConfirm is a test hook for replacing the confirmation prompt in tests.
// Takes reader, writer, and question string. Returns true for yes.
var promptConfirm = defaultPromptConfirm

func defaultPromptConfirm(in io.Reader, out io.Writer, question string) bool {
	var confirmed bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Affirmative("Yes").
				Negative("No").
				Value(&confirmed),
		),
	).WithInput(in).WithOutput(out).Run()

	if err != nil {
		return false
	}
	return confirmed
}

// stdinIsTerminal is a test hook.
var stdinIsTerminal = func(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

var errSuiteCancelled = errors.New("suite cancelled")

func newSuiteCommand(a *app) *cobra.Command {
	var (
		opts        runOptions
		yes         bool
		outputDir   string
		compress    bool
		junitOut    string
		comparisons []string
	)

	cmd := &cobra.Command{
		Use:   "suite",
		Short: "Run the standard set of rule and prompt comparisons",
		Long: `Run every comparison of the standard suite over the same applicants:

  rules:   standard vs conservative, standard vs liberal, conservative vs liberal
  prompts: conservative vs liberal, balanced vs detailed, detailed vs concise

The report and the raw results are written to the results directory as
ab_test_report_<timestamp>.json and ab_test_results_<timestamp>.json.

Against a live engine the suite makes many model calls and asks for
confirmation first; pass --yes to skip the prompt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			suite, err := selectSuite(orchestration.DefaultSuite(), comparisons)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			sess, err := opts.open(cmd, a)
			if err != nil {
				return err
			}
			defer sess.close(ctx)

			if !yes && sess.settings.engine != "mock" && stdinIsTerminal(cmd.InOrStdin()) {
				question := fmt.Sprintf("Run %d comparisons over %d applicants with %s (about %d model calls)?",
					len(suite), len(sess.applicants), sess.settings.engine, 2*len(suite)*len(sess.applicants))
				if !promptConfirm(cmd.InOrStdin(), cmd.ErrOrStderr(), question) {
					return errSuiteCancelled
				}
			}

			builder := sess.newBuilder()
			var all []*models.EvaluationResult
			failed := 0
			err = sess.runner.RunSuite(ctx, sess.applicants, suite, func(c orchestration.SuiteComparison) error {
				results := sess.runner.Log().All()
				for _, r := range results {
					if r.Failed() {
						failed++
					}
				}
				all = append(all, results...)
				_, err := builder.Add(c.Key, sess.runner.Log(), c.A, c.B)
				return err
			})
			if err != nil {
				return err
			}

			if outputDir == "" {
				outputDir = a.cfg.Paths.Results
			}
			report := builder.Report()
			reportPath, resultsPath := suiteOutputPaths(outputDir, report.TestSuiteTimestamp, compress)
			if err := reporting.Export(reportPath, report); err != nil {
				return err
			}
			if err := reporting.ExportResultLog(resultsPath, sess.registry.List(), all, time.Now()); err != nil {
				return err
			}
			if junitOut != "" {
				if err := reporting.WriteJUnitXML(report, junitOut); err != nil {
					return err
				}
			}

			for _, key := range report.Keys() {
				printComparison(out, key, report.TestResults[key])
			}
			fmt.Fprintln(out, reporting.FormatSummaryReport(report))                  //nolint:errcheck
			fmt.Fprintf(out, "\nReport:  %s\nResults: %s\n", reportPath, resultsPath) //nolint:errcheck

			return adapterErrors(failed, len(all))
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for the exported files (default: paths.results)")
	cmd.Flags().BoolVar(&compress, "gzip", false, "Gzip the exported files")
	cmd.Flags().StringVar(&junitOut, "junit", "", "Also write a JUnit XML report to this file")
	cmd.Flags().StringArrayVar(&comparisons, "comparison", nil, "Run only this comparison key (can be repeated)")

	return cmd
}

// selectSuite keeps the comparisons named in keys, in suite order.
func selectSuite(suite []orchestration.SuiteComparison, keys []string) ([]orchestration.SuiteComparison, error) {
	if len(keys) == 0 {
		return suite, nil
	}
	var selected []orchestration.SuiteComparison
	for _, c := range suite {
		if slices.Contains(keys, c.Key) {
			selected = append(selected, c)
		}
	}
	for _, k := range keys {
		if !slices.ContainsFunc(suite, func(c orchestration.SuiteComparison) bool { return c.Key == k }) {
			return nil, fmt.Errorf("unknown comparison %q", k)
		}
	}
	return selected, nil
}

func suiteOutputPaths(dir string, ts time.Time, compress bool) (string, string) {
	stamp := ts.Format("20060102_150405")
	ext := ".json"
	if compress {
		ext += reporting.GzipSuffix
	}
	return filepath.Join(dir, "ab_test_report_"+stamp+ext), filepath.Join(dir, "ab_test_results_"+stamp+ext)
}
