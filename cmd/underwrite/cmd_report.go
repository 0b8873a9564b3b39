package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/reporting"
	"github.com/spf13/cobra"
)

var renderFormats = []string{"table", "json", "markdown", "html", "summary", "junit"}

func newReportCommand(_ *app) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "report <report.json>",
		Short: "Render an exported report",
		Long: `Load a report written by 'compare --output' or 'suite' and render it as a
terminal table, JSON, Markdown, HTML, a plain-language summary or JUnit XML.
Gzipped reports (.json.gz) are read transparently.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if !validFormat(format, renderFormats) {
				return fmt.Errorf("unsupported format %q: must be one of %v", format, renderFormats)
			}
			report, err := reporting.Load(args[0])
			if err != nil {
				return err
			}

			if format == "junit" {
				if output == "" {
					return errors.New("--output is required for junit")
				}
				return reporting.WriteJUnitXML(report, output)
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer func() {
					if cerr := f.Close(); cerr != nil && err == nil {
						err = cerr
					}
				}()
				w = f
			}

			if format == "table" {
				for _, key := range report.Keys() {
					printComparison(w, key, report.TestResults[key])
				}
				return nil
			}
			return writeReport(w, report, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json, markdown, html, summary or junit")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")

	return cmd
}
