package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/squint-lang/squint/pkg/codegen"
	"github.com/squint-lang/squint/pkg/overlay"
	"github.com/squint-lang/squint/pkg/parser"
)

// replSession holds the scratch workspace a REPL wraps statements in.
type replSession struct {
	qubits int
	cols   int
	rows   int
}

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive statement checker",
		Long: `Start an interactive session that parses single SQUINT statements,
classifies them, checks overlay constraints against a scratch workspace,
and shows the instructions they would emit.`,
		Args: cobra.NoArgs,
		RunE: runREPL,
	}
}

func runREPL(cmd *cobra.Command, _ []string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "squint> ",
		HistoryFile:     ".squint/repl_history",
		AutoComplete:    newStatementCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	sess := &replSession{qubits: 4, cols: 2, rows: 2}

	fmt.Fprintln(cmd.OutOrStdout(), "SQUINT statement checker")
	fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")
	fmt.Fprintln(cmd.OutOrStdout())

	var buffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buffer.Reset()
			rl.SetPrompt("squint> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ".") {
			if quit := handleREPLCommand(cmd, sess, line); quit {
				break
			}
			continue
		}

		// Accumulate until the statement terminator
		buffer.WriteString(line)
		if !strings.HasSuffix(line, ";") && !strings.HasSuffix(line, "}") {
			buffer.WriteString(" ")
			rl.SetPrompt("   ...> ")
			continue
		}
		rl.SetPrompt("squint> ")

		stmt := buffer.String()
		buffer.Reset()

		if err := checkStatement(cmd, sess, stmt); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}

	return nil
}

// checkStatement wraps one statement in a scratch program and compiles it.
func checkStatement(cmd *cobra.Command, sess *replSession, stmt string) error {
	source := fmt.Sprintf(`workspace repl {
  qubits q[%d];
  lattice grid(%d, %d) attach q;
}
kernel scratch on repl { %s }
`, sess.qubits, sess.cols, sess.rows, stmt)

	prog, err := parser.Parse(source)
	if err != nil {
		return err
	}
	if len(prog.Kernel.Operations) == 0 {
		return fmt.Errorf("no statement recognized")
	}

	w := cmd.OutOrStdout()
	for _, op := range prog.Kernel.Operations {
		fmt.Fprintf(w, "%s:%s %s\n", op.Kind, op.Op, opDetail(op))
		if len(op.Overlay) > 0 {
			ok, diags := overlay.Check(op, prog.Workspace)
			for _, d := range diags {
				marker := " "
				if !d.Satisfied {
					marker = "!"
				}
				fmt.Fprintf(w, "  %s %s\n", marker, d.Message)
			}
			if !ok {
				fmt.Fprintln(w, "  overlay not satisfied")
			}
		}
	}

	res, err := codegen.Generate(prog, codegen.Options{Logger: getLogger(cmd)})
	if err != nil {
		return err
	}
	for _, entry := range res.Timeline {
		fmt.Fprintf(w, "  t=%dns %s\n", entry.Time, entry.Op)
	}
	return nil
}

func handleREPLCommand(cmd *cobra.Command, sess *replSession, line string) bool {
	parts := strings.Fields(line)
	w := cmd.OutOrStdout()

	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(w)

	case ".workspace":
		fmt.Fprintf(w, "qubits=%d lattice=(%d, %d)\n", sess.qubits, sess.cols, sess.rows)

	case ".qubits":
		if len(parts) != 2 {
			fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .qubits <n>")
			return false
		}
		if _, err := fmt.Sscanf(parts[1], "%d", &sess.qubits); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}

	case ".lattice":
		if len(parts) != 3 {
			fmt.Fprintln(cmd.ErrOrStderr(), "Usage: .lattice <cols> <rows>")
			return false
		}
		var cols, rows int
		if _, err := fmt.Sscanf(parts[1]+" "+parts[2], "%d %d", &cols, &rows); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			return false
		}
		sess.cols, sess.rows = cols, rows

	case ".clear":
		fmt.Print("\033[H\033[2J")

	default:
		fmt.Fprintf(cmd.ErrOrStderr(), "Unknown command: %s (type .help for commands)\n", parts[0])
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help                 Show this help message
  .workspace            Show the scratch workspace
  .qubits <n>           Set the scratch qubit count
  .lattice <cols> <rows>  Set the scratch lattice shape
  .clear                Clear the screen
  .quit / .exit         Exit the REPL

Tips:
  - Statements end with a semicolon (;)
  - Use arrow keys to navigate history
`
	fmt.Fprintln(w, help)
}

func newStatementCompleter() *readline.PrefixCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("ctrl"),
		readline.PcItem("measure"),
		readline.PcItem("transport"),
		readline.PcItem("initialize"),
		readline.PcItem("quench"),
		readline.PcItem("observe"),
		readline.PcItem("hysteresis_trace"),
		readline.PcItem("relax"),
		readline.PcItem("nucleate"),
		readline.PcItem("pin"),
		readline.PcItem("anneal"),
		readline.PcItem("evolve"),
		readline.PcItem("return"),
		readline.PcItem(".help"),
		readline.PcItem(".workspace"),
		readline.PcItem(".qubits"),
		readline.PcItem(".lattice"),
		readline.PcItem(".clear"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}
