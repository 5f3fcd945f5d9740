// Package engine orchestrates SQUINT compilation. It ties the parser,
// overlay checks, code generator, simulator, and run-history store
// together behind a single entry point used by the CLI.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/squint-lang/squint/internal/runlog"
	"github.com/squint-lang/squint/internal/sim"
	"github.com/squint-lang/squint/internal/state"
	"github.com/squint-lang/squint/pkg/codegen"
	"github.com/squint-lang/squint/pkg/core"
	"github.com/squint-lang/squint/pkg/parser"
)

// Engine compiles SQUINT sources and records run history.
type Engine struct {
	logger    *slog.Logger
	store     core.Store
	strict    bool
	simulate  bool
	seed      int64
	logFormat runlog.Format
	outDir    string
}

// Config holds engine configuration.
type Config struct {
	// StatePath is the path to the SQLite run-history database.
	// Empty disables history recording.
	StatePath string
	// Strict aborts code generation on unsatisfied overlays.
	Strict bool
	// Simulate runs the semantic-field simulator after compiling.
	Simulate bool
	// Seed pins the simulator's stochastic behavior.
	Seed int64
	// LogFormat selects the compile log serialization (json or yaml).
	LogFormat runlog.Format
	// OutDir is where artifacts are written. Empty writes them next to
	// each source file.
	OutDir string
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// New creates an engine. The run-history store is opened and migrated
// up front when a state path is configured.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	e := &Engine{
		logger:    logger,
		strict:    cfg.Strict,
		simulate:  cfg.Simulate,
		seed:      cfg.Seed,
		logFormat: cfg.LogFormat,
		outDir:    cfg.OutDir,
	}

	if cfg.StatePath != "" {
		store := state.NewSQLiteStore()
		if err := store.Open(cfg.StatePath); err != nil {
			return nil, fmt.Errorf("failed to open state store: %w", err)
		}
		if err := store.Migrate(); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to migrate state store: %w", err)
		}
		e.store = store
	}

	return e, nil
}

// Close releases the run-history store.
func (e *Engine) Close() error {
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}

// Store exposes the run-history store, or nil when history is disabled.
func (e *Engine) Store() core.Store {
	return e.store
}

// CompileResult bundles everything one compilation produces.
type CompileResult struct {
	Program      *core.Program
	Instructions string
	Timeline     []core.TimelineEntry
	Log          *runlog.Log
	Sim          *sim.State
}

// CompileSource parses and compiles a single source text. Parse and
// overlay failures come back as *parser.ParseError and
// *codegen.OverlayError respectively.
func (e *Engine) CompileSource(source string) (*CompileResult, error) {
	prog, err := parser.Parse(source)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("parsed program",
		"workspace", prog.Workspace.Name,
		"kernel", prog.Kernel.Name,
		"operations", len(prog.Kernel.Operations))

	res, err := codegen.Generate(prog, codegen.Options{
		Strict: e.strict,
		Logger: e.logger,
	})
	if err != nil {
		return nil, err
	}

	cr := &CompileResult{
		Program:      prog,
		Instructions: res.Instructions,
		Timeline:     res.Timeline,
		Log:          runlog.Build(prog, res.Timeline),
	}

	if e.simulate {
		cr.Sim = sim.Simulate(prog, e.seed)
	}

	return cr, nil
}
