package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"copydesk/internal/api"
)

func newTypesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the configured analysis types",
		RunE: func(cmd *cobra.Command, args []string) error {
			var types api.AnalysisTypesResponse
			if err := ctx.get("/api/analysis-types", &types); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, types)
			}

			rows := make([][]string, 0, len(types.Types))
			for _, entry := range types.Types {
				rows = append(rows, []string{entry.Name, entry.DisplayName, yesNo(entry.AutoJudge)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Name", "Display Name", "Auto-Judge"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newTemplatesCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the registered slide templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			var templates api.TemplatesResponse
			if err := ctx.get("/api/templates", &templates); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, templates)
			}

			rows := make([][]string, 0, len(templates.Templates))
			for _, tpl := range templates.Templates {
				rows = append(rows, []string{tpl.Name, tpl.Description})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Name", "Description"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
