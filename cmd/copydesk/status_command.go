package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"copydesk/internal/api"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
)

const (
	ansiReset  = "\x1b[0m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 16
	statusIndent     = "  "
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and in-flight work",
		RunE: func(cmd *cobra.Command, args []string) error {
			var status api.DaemonStatus
			if err := ctx.get("/api/status", &status); err != nil {
				return err
			}
			var processing api.ProcessingResponse
			if err := ctx.get("/api/processing", &processing); err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, map[string]any{
					"status":     status,
					"processing": processing.Processing,
				})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			runningKind := statusWarn
			runningText := "stopped"
			if status.Running {
				runningKind = statusOK
				runningText = "pid " + strconv.Itoa(status.PID)
			}
			fmt.Fprintln(out, renderStatusLine("Daemon", runningKind, runningText, colorize))
			fmt.Fprintln(out, renderStatusLine("State file", statusInfo, status.StateFilePath, colorize))
			fmt.Fprintln(out, renderStatusLine("Records DB", statusInfo, status.RecordsDBPath, colorize))
			fmt.Fprintln(out, renderStatusLine("Live jobs", statusInfo, strconv.Itoa(status.LiveJobs), colorize))

			if len(processing.Processing) > 0 {
				transcripts := make([]string, 0, len(processing.Processing))
				for transcriptID := range processing.Processing {
					transcripts = append(transcripts, transcriptID)
				}
				sort.Strings(transcripts)
				for _, transcriptID := range transcripts {
					entry := processing.Processing[transcriptID]
					fmt.Fprintln(out, renderStatusLine("Analyzing", statusWarn,
						transcriptID+" ("+strings.Join(entry.Types, ", ")+")", colorize))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of formatted status")
	return cmd
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := "[" + statusKindLabel(kind) + "]"
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
