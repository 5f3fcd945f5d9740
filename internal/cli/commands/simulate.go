package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/squint-lang/squint/internal/sim"
	"github.com/squint-lang/squint/pkg/parser"
)

// SimulateOptions holds options for the simulate command.
type SimulateOptions struct {
	JSONOutput bool
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand() *cobra.Command {
	opts := &SimulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate <file>",
		Short: "Run the semantic-field simulator on a source file",
		Long: `Parse a SQUINT source file and run the illustrative semantic-field
simulator without generating instructions. Prints a plain-text summary,
or the full simulation state with --json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSONOutput, "json", false, "Output the full simulation state as JSON")

	return cmd
}

func runSimulate(cmd *cobra.Command, path string, opts *SimulateOptions) error {
	cfg := getConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	prog, err := parser.Parse(string(data))
	if err != nil {
		return err
	}

	st := sim.Simulate(prog, cfg.Seed)

	if opts.JSONOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	fmt.Fprint(cmd.OutOrStdout(), sim.Report(st))
	return nil
}
