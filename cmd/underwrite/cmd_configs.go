package main

import (
	"encoding/json"
	"fmt"

	"github.com/jconnelly/underwriting-ai-agent-demos/internal/execution"
	"github.com/spf13/cobra"
)

func newConfigsCommand(a *app) *cobra.Command {
	var (
		rulesDir     string
		variantsFile string
		format       string
	)

	cmd := &cobra.Command{
		Use:   "configs",
		Short: "List the registered variants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "table" && format != "json" {
				return fmt.Errorf("unsupported format %q: must be table or json", format)
			}

			opts := runOptions{rulesDir: rulesDir, variantsFile: variantsFile}
			s := opts.resolve(a)
			// Listing never calls the engine.
			reg, err := buildRegistry(s, execution.NewMockEngine(s.model))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == "json" {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(reg.List())
			}
			printConfigurations(out, reg.List())
			return nil
		},
	}

	cmd.Flags().StringVar(&rulesDir, "rules-dir", "", "Directory holding the rule files")
	cmd.Flags().StringVar(&variantsFile, "variants", "", "YAML file with additional variants")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table or json")

	return cmd
}
