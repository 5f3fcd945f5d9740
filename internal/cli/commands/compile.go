package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/squint-lang/squint/internal/engine"
)

// CompileOptions holds options for the compile command.
type CompileOptions struct {
	Simulate bool
	Stdout   bool
	Output   string
}

// NewCompileCommand creates the compile command.
func NewCompileCommand() *cobra.Command {
	opts := &CompileOptions{}

	cmd := &cobra.Command{
		Use:   "compile <file>...",
		Short: "Compile SQUINT sources to pulse instruction streams",
		Long: `Compile one or more SQUINT source files.

For each source file, compilation writes the instruction stream as
<name>.qua.txt along with a structured compile log, next to the source
or under the --output directory. With --simulate, a semantic-field
simulation trace is written as well.`,
		Example: `  # Compile a single kernel
  squint compile anneal.squint

  # Compile with strict overlay checking
  squint compile --strict-overlays anneal.squint

  # Compile and simulate several files
  squint compile --simulate kernels/*.squint`,
		Aliases: []string{"build"},
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Simulate, "simulate", false, "Run the simulator after compiling")
	cmd.Flags().BoolVar(&opts.Stdout, "stdout", false, "Print instructions to stdout instead of writing artifacts")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Directory to write artifacts to (default: next to each source)")

	return cmd
}

func runCompile(cmd *cobra.Command, args []string, opts *CompileOptions) error {
	cfg := getConfig()

	eng, err := createEngine(cmd, cfg, opts.Simulate, opts.Output)
	if err != nil {
		return err
	}
	defer eng.Close()

	if opts.Stdout {
		for _, path := range args {
			if err := compileToStdout(cmd, eng, path); err != nil {
				return err
			}
		}
		return nil
	}

	results, err := eng.CompileAll(cmd.Context(), args)
	for _, fr := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "compiled %s (%d timeline entries)\n", fr.Path, len(fr.Result.Timeline))
		for _, artifact := range fr.Artifacts {
			fmt.Fprintf(cmd.OutOrStdout(), "  wrote %s\n", artifact)
		}
	}
	return err
}

func compileToStdout(cmd *cobra.Command, eng *engine.Engine, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	cr, err := eng.CompileSource(string(data))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), cr.Instructions)
	return nil
}
