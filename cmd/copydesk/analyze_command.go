package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"copydesk/internal/api"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var types []string

	cmd := &cobra.Command{
		Use:   "analyze <transcript-id>",
		Short: "Generate analyses for a transcript in the background",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var job api.JobResponse
			if err := ctx.post("/api/transcript/"+args[0]+"/analyze", api.AnalyzeRequest{Types: types}, &job); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Analysis started (job %s)\n", job.JobID)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "Analysis types to run (all user-facing types when omitted)")
	return cmd
}
