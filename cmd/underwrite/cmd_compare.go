package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/models"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/registry"
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/reporting"
	"github.com/spf13/cobra"
)

var reportFormats = []string{"table", "json", "markdown", "html"}

func newCompareCommand(a *app) *cobra.Command {
	var (
		opts       runOptions
		prompts    bool
		format     string
		output     string
		resultsOut string
		interpret  bool
	)

	cmd := &cobra.Command{
		Use:   "compare <variant-a> <variant-b>",
		Short: "Compare two underwriting variants on a batch of applicants",
		Long: `Run every selected applicant through both variants and report agreement,
decision rates, significance tests and projected business impact.

Variants are ids from 'underwrite configs'. With --prompts the arguments are
prompt template names, so 'compare --prompts conservative liberal' compares
prompt_conservative with prompt_liberal.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validFormat(format, reportFormats) {
				return fmt.Errorf("unsupported format %q: must be one of %v", format, reportFormats)
			}

			variantA, variantB := args[0], args[1]
			if prompts {
				variantA, variantB = registry.PromptVariantID(variantA), registry.PromptVariantID(variantB)
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			sess, err := opts.open(cmd, a)
			if err != nil {
				return err
			}
			defer sess.close(ctx)

			key, err := comparisonKey(sess.registry, variantA, variantB, args, prompts)
			if err != nil {
				return err
			}

			pairs, err := sess.runner.CompareBatch(ctx, sess.applicants, variantA, variantB)
			if err != nil {
				return err
			}

			builder := sess.newBuilder()
			cr, err := builder.Add(key, sess.runner.Log(), variantA, variantB)
			if err != nil {
				return err
			}
			report := builder.Report()

			if output != "" {
				if err := reporting.Export(output, report); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", output) //nolint:errcheck
			}
			if resultsOut != "" {
				if err := reporting.ExportResultLog(resultsOut, sess.registry.List(), sess.runner.Log().All(), time.Now()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Results written to %s\n", resultsOut) //nolint:errcheck
			}

			switch format {
			case "table":
				printComparison(out, key, cr)
			default:
				if err := writeReport(out, report, format); err != nil {
					return err
				}
			}
			if interpret {
				fmt.Fprintln(out, reporting.FormatSummaryReport(report)) //nolint:errcheck
			}

			return failedEvaluations(pairs)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().BoolVar(&prompts, "prompts", false, "Treat arguments as prompt template names")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json, markdown or html")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Export the report as JSON (gzip when the name ends in .gz)")
	cmd.Flags().StringVar(&resultsOut, "results", "", "Export every raw evaluation result as JSON")
	cmd.Flags().BoolVar(&interpret, "interpret", false, "Append a plain-language interpretation")

	return cmd
}

// comparisonKey names the comparison the way the suite does: rule
// variants get a rules_ key, prompt variants a prompts_ key.
func comparisonKey(reg *registry.Registry, a, b string, args []string, prompts bool) (string, error) {
	if prompts {
		return reporting.PromptsKey(args[0], args[1]), nil
	}
	cfgA, err := reg.Configuration(a)
	if err != nil {
		return "", fmt.Errorf("variant A: %w", err)
	}
	cfgB, err := reg.Configuration(b)
	if err != nil {
		return "", fmt.Errorf("variant B: %w", err)
	}
	if cfgA.PromptTemplate == "" && cfgB.PromptTemplate == "" {
		return reporting.RulesKey(a, b), nil
	}
	return reporting.ComparisonKey(a, b), nil
}

// writeReport renders a whole report in a non-table format.
func writeReport(w io.Writer, r *reporting.Report, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "markdown":
		_, err := io.WriteString(w, reporting.Markdown(r))
		return err
	case "html":
		html, err := reporting.HTML(r)
		if err != nil {
			return err
		}
		_, err = w.Write(html)
		return err
	case "summary":
		_, err := fmt.Fprintln(w, reporting.FormatSummaryReport(r))
		return err
	}
	return fmt.Errorf("unsupported format %q", format)
}

func validFormat(format string, allowed []string) bool {
	for _, f := range allowed {
		if f == format {
			return true
		}
	}
	return false
}

// failedEvaluations returns an AdapterErrorsError when any result in
// pairs recorded an error.
func failedEvaluations(pairs []models.ComparisonPair) error {
	failed := 0
	for _, p := range pairs {
		if p.A.Failed() {
			failed++
		}
		if p.B.Failed() {
			failed++
		}
	}
	return adapterErrors(failed, 2*len(pairs))
}

func adapterErrors(failed, total int) error {
	if failed == 0 {
		return nil
	}
	return &AdapterErrorsError{Failed: failed, Total: total}
}
