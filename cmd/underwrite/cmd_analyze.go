package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newAnalyzeCommand(a *app) *cobra.Command {
	var (
		opts   runOptions
		format string
	)

	cmd := &cobra.Command{
		Use:   "analyze <variant>",
		Short: "Run applicants through a single variant",
		Long: `Evaluate every selected applicant with one variant and summarize its
decisions, with a confidence interval for each decision rate.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("unsupported format %q: must be table or json", format)
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			sess, err := opts.open(cmd, a)
			if err != nil {
				return err
			}
			defer sess.close(ctx)

			summary, err := sess.runner.AnalyzeVariant(ctx, sess.applicants, args[0])
			if err != nil {
				return err
			}

			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(summary); err != nil {
					return err
				}
			} else {
				printVariantSummary(out, summary, sess.analyzer)
			}
			return adapterErrors(summary.ErrorCount, summary.TotalTests)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")

	return cmd
}
