package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"copydesk/internal/api"
)

func newVerbCommands(ctx *commandContext) []*cobra.Command {
	verbs := []struct {
		use   string
		verb  string
		short string
	}{
		{"stage <action-id>", "stage", "Stage an action for review"},
		{"ready <action-id>", "ready", "Mark a staged action ready to post"},
		{"post <action-id>", "posted", "Mark a reviewed action as posted"},
		{"done <action-id>", "done", "Complete a simple action without review"},
		{"skip <action-id>", "skip", "Skip an action permanently"},
		{"approve <action-id>", "approve", "Approve a simple action and export its content"},
	}

	commands := make([]*cobra.Command, 0, len(verbs))
	for _, entry := range verbs {
		verb := entry.verb
		commands = append(commands, &cobra.Command{
			Use:   entry.use,
			Short: entry.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runActionVerb(ctx, cmd, args[0], verb)
			},
		})
	}
	return commands
}

func runActionVerb(ctx *commandContext, cmd *cobra.Command, actionID, verb string) error {
	var action api.ActionResponse
	if err := ctx.post("/api/action/"+actionID+"/"+verb, nil, &action); err != nil {
		return err
	}
	printAction(cmd.OutOrStdout(), action)
	return nil
}

func printAction(out io.Writer, action api.ActionResponse) {
	fmt.Fprintf(out, "%s: %s", action.ActionID, action.Status)
	if action.VisualStatus != "" {
		fmt.Fprintf(out, " (visuals %s)", action.VisualStatus)
	}
	fmt.Fprintln(out)
}

func newEditCommand(ctx *commandContext) *cobra.Command {
	var text string
	var fromFile string

	cmd := &cobra.Command{
		Use:   "edit <action-id>",
		Short: "Save a manual edit of the current draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := resolveEditContent(cmd, text, fromFile)
			if err != nil {
				return err
			}
			var action api.ActionResponse
			if err := ctx.post("/api/action/"+args[0]+"/save-edit", api.SaveEditRequest{Text: content}, &action); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: edit %d saved (status %s)\n",
				action.ActionID, action.EditCount, action.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "Edited content")
	cmd.Flags().StringVarP(&fromFile, "file", "f", "", "Read edited content from a file (- for stdin)")
	return cmd
}

func resolveEditContent(cmd *cobra.Command, text, fromFile string) (string, error) {
	switch {
	case text != "" && fromFile != "":
		return "", fmt.Errorf("use either --text or --file, not both")
	case text != "":
		return text, nil
	case fromFile == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	case fromFile != "":
		data, err := os.ReadFile(fromFile)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", fromFile, err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("edited content required; pass --text or --file")
	}
}

func newIterateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "iterate <action-id>",
		Short: "Run a judge-and-rewrite round in the background",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var job api.JobResponse
			if err := ctx.post("/api/action/"+args[0]+"/iterate", nil, &job); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Iteration started (job %s)\n", job.JobID)
			return nil
		},
	}
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var template string

	cmd := &cobra.Command{
		Use:   "render <action-id>",
		Short: "Generate visuals for a staged action in the background",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var job api.JobResponse
			var err error
			if strings.TrimSpace(template) == "" {
				err = ctx.post("/api/action/"+args[0]+"/generate-visuals", nil, &job)
			} else {
				err = ctx.post("/api/action/"+args[0]+"/render", api.RenderRequest{Template: template}, &job)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Render started (job %s)\n", job.JobID)
			return nil
		},
	}

	cmd.Flags().StringVar(&template, "template", "", "Slide template (default template when omitted)")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <action-id>",
		Short: "Show the draft and judge history of an action",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var iterations api.IterationsResponse
			if err := ctx.get("/api/action/"+args[0]+"/iterations", &iterations); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, iterations)
			}

			out := cmd.OutOrStdout()
			for _, round := range iterations.Rounds {
				fmt.Fprintf(out, "--- round %d ---\n", round.Round)
				fmt.Fprintln(out, round.Draft)
				if round.Judge != nil {
					fmt.Fprintf(out, "judge: %.1f", round.Judge.Overall)
					if round.Judge.RewrittenHook != "" {
						fmt.Fprintf(out, " | suggested hook: %s", round.Judge.RewrittenHook)
					}
					fmt.Fprintln(out)
					for _, improvement := range round.Judge.Improvements {
						fmt.Fprintf(out, "  - %s\n", improvement)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of formatted rounds")
	return cmd
}

func newEditHistoryCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "edits <action-id>",
		Short: "Show the manual edit chain for the staged round",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var history api.EditHistoryResponse
			if err := ctx.get("/api/action/"+args[0]+"/edit-history", &history); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, history)
			}

			out := cmd.OutOrStdout()
			if len(history.Edits) == 0 {
				fmt.Fprintln(out, "No edits recorded")
				return nil
			}
			for _, edit := range history.Edits {
				fmt.Fprintf(out, "--- edit %d", edit.Edit)
				if edit.Source != "" {
					fmt.Fprintf(out, " (from %s)", edit.Source)
				}
				fmt.Fprintln(out, " ---")
				fmt.Fprintln(out, edit.Content)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of formatted edits")
	return cmd
}

func newSlidesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "slides <action-id>",
		Short: "Preview the slide split for the current content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var slides api.SlidesResponse
			if err := ctx.get("/api/action/"+args[0]+"/slides", &slides); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, slide := range slides.Slides {
				if slide.Title != "" {
					fmt.Fprintf(out, "[%d] %s\n", slide.Index, slide.Title)
				} else {
					fmt.Fprintf(out, "[%d]\n", slide.Index)
				}
				fmt.Fprintln(out, slide.Body)
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}
