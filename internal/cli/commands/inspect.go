package commands

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/squint-lang/squint/pkg/core"
	"github.com/squint-lang/squint/pkg/overlay"
	"github.com/squint-lang/squint/pkg/parser"
)

var (
	kindStyles = map[core.OpKind]lipgloss.Style{
		core.KindQuantum:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		core.KindSemantic: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		core.KindBraid:    lipgloss.NewStyle().Foreground(lipgloss.Color("13")),
	}
	violatedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

// InspectOptions holds options for the inspect command.
type InspectOptions struct {
	Overlays bool
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the parsed structure of a source file",
		Long: `Parse a SQUINT source file and display its workspace header and the
classified kernel operations. With --overlays, each operation's overlay
constraints are checked against the workspace and the diagnostics shown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Overlays, "overlays", false, "Check and display overlay diagnostics")

	return cmd
}

func runInspect(cmd *cobra.Command, path string, opts *InspectOptions) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	prog, err := parser.Parse(string(data))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "workspace %s: qubits=%d lattice=%s\n", prog.Workspace.Name, prog.Workspace.Qubits, prog.Workspace.Lattice)
	for _, name := range sortedFieldNames(prog.Workspace.SemanticFields) {
		fmt.Fprintf(w, "  semantic_field %s: %s\n", name, prog.Workspace.SemanticFields[name])
	}
	for _, name := range prog.Workspace.DefectFields {
		fmt.Fprintf(w, "  defect_field %s\n", name)
	}
	fmt.Fprintf(w, "kernel %s: %d operations\n\n", prog.Kernel.Name, len(prog.Kernel.Operations))

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Line", "Kind", "Op", "Detail", "Overlay"})

	for _, op := range prog.Kernel.Operations {
		kind := string(op.Kind)
		if style, ok := kindStyles[op.Kind]; ok {
			kind = style.Render(kind)
		}
		t.AppendRow(table.Row{op.Line, kind, op.Op, opDetail(op), formatOverlay(op.Overlay)})
	}
	t.Render()

	if opts.Overlays {
		fmt.Fprintln(w)
		printOverlayDiagnostics(cmd, prog)
	}

	return nil
}

func printOverlayDiagnostics(cmd *cobra.Command, prog *core.Program) {
	w := cmd.OutOrStdout()
	for _, op := range prog.Kernel.Operations {
		if len(op.Overlay) == 0 {
			continue
		}
		ok, diags := overlay.Check(op, prog.Workspace)
		status := "satisfied"
		if !ok {
			status = violatedStyle.Render("violated")
		}
		fmt.Fprintf(w, "line %d %s: %s\n", op.Line, op.Op, status)
		for _, d := range diags {
			marker := " "
			if !d.Satisfied {
				marker = "!"
			}
			fmt.Fprintf(w, "  %s %s\n", marker, d.Message)
		}
	}
}

func opDetail(op *core.Operation) string {
	if targets := op.Targets(); len(targets) > 0 {
		return strings.Join(targets, ", ")
	}
	keys := make([]string, 0, len(op.Args))
	for k := range op.Args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, op.Args[k]))
	}
	return strings.Join(parts, " ")
}

func formatOverlay(items map[string]string) string {
	if len(items) == 0 {
		return ""
	}
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, parser.FormatOverlayItem(k, items[k]))
	}
	return strings.Join(parts, ", ")
}

func sortedFieldNames(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
