package main

import (
	"errors"
	"fmt"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/statistics"
	"github.com/spf13/cobra"
)

func newPowerCommand(a *app) *cobra.Command {
	var (
		effect   float64
		fromRate float64
		toRate   float64
		alpha    float64
		power    float64
	)

	cmd := &cobra.Command{
		Use:   "power",
		Short: "Estimate how many applicants a comparison needs",
		Long: `Compute the number of applicants per variant needed to detect a change in a
decision rate.

Give the effect size directly as Cohen's h with --effect, or as the expected
rates in percent with --from and --to:

  underwrite power --from 60 --to 65`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rateFlags := cmd.Flags().Changed("from") || cmd.Flags().Changed("to")
			switch {
			case rateFlags && effect != 0:
				return errors.New("use either --effect or --from/--to, not both")
			case rateFlags:
				h, err := statistics.CohensHFromRates(fromRate/100, toRate/100)
				if err != nil {
					return err
				}
				effect = h
			case effect == 0:
				return errors.New("an effect size is required: pass --effect or --from and --to")
			}

			if power == 0 {
				power = a.cfg.Analysis.Power
			}
			analyzer := statistics.NewAnalyzer(a.cfg.Analysis.ConfidenceLevel)
			if alpha == 0 {
				alpha = analyzer.Alpha()
			}

			n, err := analyzer.PowerAnalysis(effect, alpha, power)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Effect size (Cohen's h): %.3f\n", effect)   //nolint:errcheck
			fmt.Fprintf(out, "Alpha: %.3f   Power: %.2f\n", alpha, power) //nolint:errcheck
			fmt.Fprintf(out, "Applicants per variant: %d\n", n)           //nolint:errcheck
			fmt.Fprintf(out, "Evaluations for one comparison: %d\n", 2*n) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().Float64Var(&effect, "effect", 0, "Effect size as Cohen's h")
	cmd.Flags().Float64Var(&fromRate, "from", 0, "Current decision rate in percent")
	cmd.Flags().Float64Var(&toRate, "to", 0, "Expected decision rate in percent")
	cmd.Flags().Float64Var(&alpha, "alpha", 0, "Significance level (default: 1 - analysis.confidence_level)")
	cmd.Flags().Float64Var(&power, "power", 0, "Target power (default: analysis.power)")

	return cmd
}
