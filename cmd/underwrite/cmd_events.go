package main

import (
	"github.com/jconnelly/underwriting-ai-agent-demos/internal/eventlog"
	"github.com/spf13/cobra"
)

func newEventsCommand(_ *app) *cobra.Command {
	var disagreementsOnly bool

	cmd := &cobra.Command{
		Use:   "events <events.jsonl>",
		Short: "Show the timeline of a run recorded with --events-out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := eventlog.ReadEvents(args[0])
			if err != nil {
				return err
			}
			eventlog.RenderTimeline(cmd.OutOrStdout(), events, disagreementsOnly)
			return nil
		},
	}

	cmd.Flags().BoolVar(&disagreementsOnly, "disagreements", false, "Only list applicants the variants decided differently")

	return cmd
}
