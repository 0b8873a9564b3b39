package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newEvaluateCommand(a *app) *cobra.Command {
	var (
		opts    runOptions
		variant string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "evaluate [applicant-id...]",
		Short: "Show the full decision for individual applicants",
		Long: `Evaluate applicants with one variant and print each decision with its
reason, triggered rules and risk factors.

Arguments are applicant IDs or glob patterns such as 'APP00*'; with none,
every selected applicant is evaluated.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("unsupported format %q: must be table or json", format)
			}
			opts.only = append(opts.only, args...)

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			sess, err := opts.open(cmd, a)
			if err != nil {
				return err
			}
			defer sess.close(ctx)

			summary, err := sess.runner.AnalyzeVariant(ctx, sess.applicants, variant)
			if err != nil {
				return err
			}

			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(summary.Results); err != nil {
					return err
				}
			} else {
				for _, r := range summary.Results {
					printEvaluation(out, r)
				}
			}
			return adapterErrors(summary.ErrorCount, summary.TotalTests)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&variant, "variant", "standard", "Variant to evaluate with")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")

	return cmd
}
