package engine_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squint-lang/squint/internal/engine"
	"github.com/squint-lang/squint/internal/runlog"
	"github.com/squint-lang/squint/internal/testutil"
	"github.com/squint-lang/squint/pkg/codegen"
	"github.com/squint-lang/squint/pkg/core"
	"github.com/squint-lang/squint/pkg/parser"
)

const validSource = `workspace lab {
  qubits q[4];
  lattice grid(2, 2) attach q;
  semantic_field Phi: scalar on grid;
  defect_field D: defects on grid;
}
kernel main on lab {
  initialize Phi = constant(2.5);
  ctrl rx q[0] angle=0.5 with overlay { coherence_len>=120ns };
  measure q[0] -> m0;
}
`

const violatingSource = `workspace lab {
  qubits q[4];
  lattice grid(2, 2) attach q;
}
kernel main on lab {
  ctrl cx q[0], q[3] with overlay { path_len<=1 };
}
`

func newEngine(t *testing.T, cfg engine.Config) *engine.Engine {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = testutil.NewTestLogger(t)
	}
	eng, err := engine.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })
	return eng
}

func writeSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCompileSource(t *testing.T) {
	eng := newEngine(t, engine.Config{})

	cr, err := eng.CompileSource(validSource)
	require.NoError(t, err)

	assert.Equal(t, "main", cr.Program.Kernel.Name)
	assert.Contains(t, cr.Instructions, "play('rx', q[0], angle=0.5)")
	assert.Contains(t, cr.Instructions, "wait(120)")
	assert.NotEmpty(t, cr.Timeline)
	require.NotNil(t, cr.Log)
	assert.Equal(t, "main", cr.Log.Kernel)
	assert.Nil(t, cr.Sim, "simulation is off by default")
}

func TestCompileSourceSimulate(t *testing.T) {
	eng := newEngine(t, engine.Config{Simulate: true, Seed: 42})

	cr, err := eng.CompileSource(validSource)
	require.NoError(t, err)
	require.NotNil(t, cr.Sim)
	assert.Equal(t, int64(42), cr.Sim.Seed)
	assert.Equal(t, 2.5, cr.Sim.Fields["Phi"]["base"])
}

func TestCompileSourceParseError(t *testing.T) {
	eng := newEngine(t, engine.Config{})

	_, err := eng.CompileSource("kernel k on w { }")
	require.Error(t, err)
	var pe *parser.ParseError
	assert.ErrorAs(t, err, &pe)
}

func TestCompileSourceStrictOverlay(t *testing.T) {
	eng := newEngine(t, engine.Config{Strict: true})

	_, err := eng.CompileSource(violatingSource)
	require.Error(t, err)
	var ovErr *codegen.OverlayError
	require.ErrorAs(t, err, &ovErr)
	assert.Equal(t, 2, ovErr.Line)
}

func TestCompileSourceLenientOverlay(t *testing.T) {
	eng := newEngine(t, engine.Config{})

	cr, err := eng.CompileSource(violatingSource)
	require.NoError(t, err)
	assert.Contains(t, cr.Instructions, "play('cnot'")
}

func TestCompileFileArtifacts(t *testing.T) {
	eng := newEngine(t, engine.Config{Simulate: true, Seed: 7})
	path := writeSource(t, "bench.squint", validSource)

	fr, err := eng.CompileFile(context.Background(), path)
	require.NoError(t, err)

	base := filepath.Join(filepath.Dir(path), "bench")
	assert.Equal(t, []string{
		base + ".qua.txt",
		base + ".log.json",
		base + ".sim.json",
		base + ".sim.txt",
	}, fr.Artifacts)

	instructions, err := os.ReadFile(base + ".qua.txt")
	require.NoError(t, err)
	assert.Contains(t, string(instructions), "program = QUAProgram()")

	var logPayload runlog.Log
	logData, err := os.ReadFile(base + ".log.json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(logData, &logPayload))
	assert.Equal(t, "main", logPayload.Kernel)
	assert.Len(t, logPayload.Events, 3)

	simData, err := os.ReadFile(base + ".sim.json")
	require.NoError(t, err)
	assert.Contains(t, string(simData), `"seed": 7`)
}

func TestCompileFileOutputDir(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "build")
	eng := newEngine(t, engine.Config{OutDir: outDir})
	path := writeSource(t, "bench.squint", validSource)

	fr, err := eng.CompileFile(context.Background(), path)
	require.NoError(t, err)

	base := filepath.Join(outDir, "bench")
	assert.Equal(t, []string{
		base + ".qua.txt",
		base + ".log.json",
	}, fr.Artifacts)

	_, err = os.Stat(base + ".qua.txt")
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(filepath.Dir(path), "bench.qua.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestCompileFileYAMLLog(t *testing.T) {
	eng := newEngine(t, engine.Config{LogFormat: runlog.FormatYAML})
	path := writeSource(t, "bench.squint", validSource)

	fr, err := eng.CompileFile(context.Background(), path)
	require.NoError(t, err)

	base := filepath.Join(filepath.Dir(path), "bench")
	assert.Contains(t, fr.Artifacts, base+".log.yaml")
	data, err := os.ReadFile(base + ".log.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "kernel: main")
}

func TestCompileFileRecordsHistory(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "runs.db")
	eng := newEngine(t, engine.Config{StatePath: statePath})
	path := writeSource(t, "bench.squint", validSource)

	fr, err := eng.CompileFile(context.Background(), path)
	require.NoError(t, err)
	require.NotEmpty(t, fr.RunID)

	run, err := eng.Store().GetRun(fr.RunID)
	require.NoError(t, err)
	assert.Equal(t, core.RunStatusCompleted, run.Status)
	assert.Equal(t, path, run.Source)
	assert.Equal(t, "main", run.Kernel)
	assert.Equal(t, 8, run.Instructions)
	assert.NotNil(t, run.CompletedAt)
}

func TestCompileFileRecordsFailure(t *testing.T) {
	statePath := filepath.Join(t.TempDir(), "runs.db")
	eng := newEngine(t, engine.Config{StatePath: statePath, Strict: true})
	path := writeSource(t, "bad.squint", violatingSource)

	_, err := eng.CompileFile(context.Background(), path)
	require.Error(t, err)

	runs, err := eng.Store().ListRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, core.RunStatusFailed, runs[0].Status)
	assert.Contains(t, runs[0].Error, "overlay unsatisfied on line 2")
}

func TestCompileFileMissing(t *testing.T) {
	eng := newEngine(t, engine.Config{})

	_, err := eng.CompileFile(context.Background(), filepath.Join(t.TempDir(), "nope.squint"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestCompileFileCancelledContext(t *testing.T) {
	eng := newEngine(t, engine.Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.CompileFile(ctx, "ignored.squint")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCompileAll(t *testing.T) {
	eng := newEngine(t, engine.Config{})
	dir := t.TempDir()

	var paths []string
	for _, name := range []string{"a.squint", "b.squint", "c.squint"} {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, []byte(validSource), 0o644))
		paths = append(paths, p)
	}

	results, err := eng.CompileAll(context.Background(), paths)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestCompileAllReportsFirstFailure(t *testing.T) {
	eng := newEngine(t, engine.Config{Strict: true})
	dir := t.TempDir()

	good := filepath.Join(dir, "good.squint")
	bad := filepath.Join(dir, "bad.squint")
	require.NoError(t, os.WriteFile(good, []byte(validSource), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte(violatingSource), 0o644))

	results, err := eng.CompileAll(context.Background(), []string{good, bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.squint")
	assert.LessOrEqual(t, len(results), 1, "failed file produces no result")
}
