package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/squint-lang/squint/internal/runlog"
	"github.com/squint-lang/squint/internal/sim"
	"github.com/squint-lang/squint/pkg/core"
)

// FileResult is the outcome of compiling one source file.
type FileResult struct {
	Path      string
	RunID     string
	Result    *CompileResult
	Artifacts []string
}

// CompileFile compiles one source file and writes its artifacts: the
// instruction stream, the compile log, and the simulation trace when
// simulation is enabled. Artifacts land in the configured output
// directory, or next to the source when none is set. The run is
// recorded in the history store when one is configured.
func (e *Engine) CompileFile(ctx context.Context, path string) (*FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cr, compileErr := e.CompileSource(string(data))

	var run *core.Run
	if e.store != nil {
		kernel := ""
		if cr != nil && cr.Program != nil {
			kernel = cr.Program.Kernel.Name
		}
		run, err = e.store.CreateRun(path, kernel, e.strict)
		if err != nil {
			e.logger.Warn("failed to record run", "path", path, "error", err)
		}
	}

	if compileErr != nil {
		e.completeRun(run, core.RunStatusFailed, 0, compileErr.Error())
		return nil, compileErr
	}

	fr := &FileResult{Path: path, Result: cr}
	if run != nil {
		fr.RunID = run.ID
	}

	if err := e.writeArtifacts(path, cr, fr); err != nil {
		e.completeRun(run, core.RunStatusFailed, 0, err.Error())
		return nil, err
	}

	e.completeRun(run, core.RunStatusCompleted, countLines(cr.Instructions), "")

	e.logger.Info("compiled",
		"path", path,
		"kernel", cr.Program.Kernel.Name,
		"timeline", len(cr.Timeline),
		"artifacts", len(fr.Artifacts))

	return fr, nil
}

// CompileAll compiles the given files concurrently. The first failure
// cancels the remaining work and is returned; results for files that
// finished are still reported.
func (e *Engine) CompileAll(ctx context.Context, paths []string) ([]*FileResult, error) {
	results := make([]*FileResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, path := range paths {
		g.Go(func() error {
			fr, err := e.CompileFile(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = fr
			return nil
		})
	}

	err := g.Wait()

	kept := results[:0]
	for _, fr := range results {
		if fr != nil {
			kept = append(kept, fr)
		}
	}
	return kept, err
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}

func (e *Engine) completeRun(run *core.Run, status core.RunStatus, instructions int, errMsg string) {
	if run == nil || e.store == nil {
		return
	}
	if err := e.store.CompleteRun(run.ID, status, instructions, errMsg); err != nil {
		e.logger.Warn("failed to complete run", "run_id", run.ID, "error", err)
	}
}

func (e *Engine) writeArtifacts(path string, cr *CompileResult, fr *FileResult) error {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	if e.outDir != "" {
		if err := os.MkdirAll(e.outDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		base = filepath.Join(e.outDir, filepath.Base(base))
	}

	quaPath := base + ".qua.txt"
	if err := os.WriteFile(quaPath, []byte(cr.Instructions+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write instructions: %w", err)
	}
	fr.Artifacts = append(fr.Artifacts, quaPath)

	logExt := ".log.json"
	if e.logFormat == runlog.FormatYAML {
		logExt = ".log.yaml"
	}
	logData, err := cr.Log.Encode(e.logFormat)
	if err != nil {
		return fmt.Errorf("failed to encode compile log: %w", err)
	}
	logPath := base + logExt
	if err := os.WriteFile(logPath, logData, 0o644); err != nil {
		return fmt.Errorf("failed to write compile log: %w", err)
	}
	fr.Artifacts = append(fr.Artifacts, logPath)

	if cr.Sim != nil {
		simData, err := json.MarshalIndent(cr.Sim, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode simulation state: %w", err)
		}
		simPath := base + ".sim.json"
		if err := os.WriteFile(simPath, simData, 0o644); err != nil {
			return fmt.Errorf("failed to write simulation state: %w", err)
		}
		fr.Artifacts = append(fr.Artifacts, simPath)

		reportPath := base + ".sim.txt"
		if err := os.WriteFile(reportPath, []byte(sim.Report(cr.Sim)), 0o644); err != nil {
			return fmt.Errorf("failed to write simulation report: %w", err)
		}
		fr.Artifacts = append(fr.Artifacts, reportPath)
	}

	return nil
}
