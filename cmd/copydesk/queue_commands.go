package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"copydesk/internal/api"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "queue",
		Short: "List actions awaiting review",
		RunE: func(cmd *cobra.Command, args []string) error {
			var queue api.QueueResponse
			if err := ctx.get("/api/queue", &queue); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, queue)
			}

			out := cmd.OutOrStdout()
			if len(queue.Items) == 0 {
				fmt.Fprintln(out, "Queue is empty")
				return nil
			}
			rows := make([][]string, 0, len(queue.Items))
			for _, item := range queue.Items {
				rows = append(rows, []string{
					item.ActionID,
					item.AnalysisType,
					item.Destination,
					formatTimestamp(item.CreatedAt),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Action", "Type", "Destination", "Created"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newReviewCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "review",
		Short: "List staged and ready actions with iteration state",
		RunE: func(cmd *cobra.Command, args []string) error {
			var review api.ReviewResponse
			if err := ctx.get("/api/posting-queue-v2", &review); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, review)
			}

			out := cmd.OutOrStdout()
			if len(review.Items) == 0 {
				fmt.Fprintln(out, "Nothing staged for review")
				return nil
			}
			rows := make([][]string, 0, len(review.Items))
			for _, item := range review.Items {
				score := "-"
				if item.LatestScore != nil {
					score = strconv.FormatFloat(*item.LatestScore, 'f', 1, 64)
				}
				status := string(item.Status)
				if item.Iterating {
					status += " (iterating)"
				}
				rows = append(rows, []string{
					item.ActionID,
					status,
					strconv.Itoa(item.IterationCount),
					score,
					strconv.Itoa(item.EditCount),
					formatTimestampPtr(item.StagedAt),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Action", "Status", "Rounds", "Score", "Edits", "Staged"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func formatTimestampPtr(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatTimestamp(*t)
}
