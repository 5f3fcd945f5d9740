package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/squint-lang/squint/internal/state"
	"github.com/squint-lang/squint/pkg/core"
)

var statusStyles = map[core.RunStatus]lipgloss.Style{
	core.RunStatusRunning:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	core.RunStatusCompleted: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
	core.RunStatusFailed:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
}

// RunsOptions holds options for the runs command.
type RunsOptions struct {
	Limit int
}

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	opts := &RunsOptions{}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show compile run history",
		Long:  `List recent compile runs recorded in the run-history database.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRuns(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Maximum number of runs to show")

	return cmd
}

func runRuns(cmd *cobra.Command, opts *RunsOptions) error {
	cfg := getConfig()

	if _, err := os.Stat(cfg.StatePath); err != nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No run history found.")
		return nil
	}

	store := state.NewSQLiteStore()
	if err := store.Open(cfg.StatePath); err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(); err != nil {
		return err
	}

	runs, err := store.ListRuns(opts.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No run history found.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Run", "Source", "Kernel", "Strict", "Status", "Instr", "Started", "Duration"})

	for _, run := range runs {
		status := string(run.Status)
		if style, ok := statusStyles[run.Status]; ok {
			status = style.Render(status)
		}
		t.AppendRow(table.Row{
			shortID(run.ID),
			run.Source,
			run.Kernel,
			run.Strict,
			status,
			run.Instructions,
			run.StartedAt.Local().Format(time.DateTime),
			formatDuration(run),
		})
	}
	t.Render()

	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDuration(run *core.Run) string {
	if run.CompletedAt == nil {
		return "-"
	}
	return run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
}
