// Package codegen walks a kernel's operations in order and emits the
// linear pulse-instruction listing plus its timeline.
//
// Generation maintains one logical-time counter per call, starting at
// zero and advanced only by emitted wait durations; gate emission is
// treated as instantaneous. The generator never mutates the program.
package codegen

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/squint-lang/squint/pkg/core"
	"github.com/squint-lang/squint/pkg/overlay"
)

// Options configures one generation pass. Strict turns overlay-rule
// violations into fatal OverlayErrors; the zero value is lenient.
type Options struct {
	Strict bool
	Logger *slog.Logger
}

// Result is the output of one generation pass.
type Result struct {
	Instructions string
	Timeline     []core.TimelineEntry
}

// generator holds the per-call emission state. It lives for exactly one
// Generate call, so independent callers never share state.
type generator struct {
	strict bool
	logger *slog.Logger

	lines    []string
	timeline []core.TimelineEntry
	timeNS   int
}

// Generate compiles the program's kernel into the instruction listing
// and timeline. In strict mode it fails with an *OverlayError at the
// first ctrl operation whose overlay validation fails; in lenient mode
// diagnostics are logged and generation always completes.
func Generate(prog *core.Program, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	g := &generator{strict: opts.Strict, logger: logger}

	ws := prog.Workspace
	g.emit("program = QUAProgram()")
	g.emit(fmt.Sprintf("# workspace %s qubits=%d lattice=%s", ws.Name, ws.Qubits, ws.Lattice))
	g.emit("with program:")

	for _, op := range prog.Kernel.Operations {
		switch {
		case op.Kind == core.KindQuantum && op.Op == "ctrl":
			if err := g.generateCtrl(op, ws); err != nil {
				return nil, err
			}
		case op.Kind == core.KindQuantum && op.Op == "measure":
			g.generateMeasure(op)
		case op.Kind == core.KindSemantic:
			g.emit(fmt.Sprintf("    # semantic:%s %s", op.Op, formatArgs(op.Args)))
		case op.Kind == core.KindBraid:
			g.emit(fmt.Sprintf("    # braid:%s %s", op.Op, formatArgs(op.Args)))
		}
	}

	g.emit("end_program()")
	return &Result{
		Instructions: strings.Join(g.lines, "\n"),
		Timeline:     g.timeline,
	}, nil
}

func (g *generator) emit(line string) {
	g.lines = append(g.lines, line)
}

// generateCtrl validates the overlay, applies the coherence wait, and
// emits either a Floquet pulse train or a single gate instruction.
func (g *generator) generateCtrl(op *core.Operation, ws *core.Workspace) error {
	gate := strings.ToLower(op.StringArg("gate"))
	targets := op.Targets()
	angle := op.StringArg("angle")

	ok, diags := overlay.Check(op, ws)
	for _, d := range diags {
		g.logger.Info("overlay", "line", op.Line, "diag", d.Message)
	}
	if !ok && g.strict {
		return &OverlayError{Line: op.Line, Diagnostics: core.DiagnosticMessages(diags)}
	}

	// coherence_len inserts a wait before the gate.
	if waitNS, wellFormed := overlay.RequiredWaitNS(op.Overlay); wellFormed {
		if waitNS > 0 {
			g.emitWait(op.Line, waitNS, 0)
		}
	} else if v, present := op.Overlay[overlay.KeyCoherenceLen]; present {
		g.logger.Warn("coherence_len not understood", "line", op.Line, "value", v)
	}

	if overlay.HasFloquet(op.Overlay) {
		params, wellFormed := overlay.ParseFloquet(op.Overlay)
		if !wellFormed {
			g.logger.Warn("floquet parameters malformed, emitting single pulse",
				"line", op.Line,
				"period", op.Overlay[overlay.KeyFloquetPeriod],
				"cycles", op.Overlay[overlay.KeyCycles],
				"duty", op.Overlay[overlay.KeyDuty])
			g.emitGate(op.Line, gate, targets, angle, 0)
			return nil
		}
		g.expandFloquet(op.Line, gate, targets, angle, params)
		return nil
	}

	g.emitGate(op.Line, gate, targets, angle, 0)
	return nil
}

// expandFloquet replaces one periodic-drive-annotated gate with a
// repeated on/off pulse train. The on window is instantaneous in this
// model; only the inter-cycle off wait advances the time counter, and
// the last off window is included.
func (g *generator) expandFloquet(line int, gate string, targets []string, angle string, p overlay.FloquetParams) {
	onNS := int(math.Round(float64(p.PeriodNS) * p.Duty))
	offNS := p.PeriodNS - onNS
	if offNS < 0 {
		offNS = 0
	}
	g.emit(fmt.Sprintf("    # floquet: period=%dns, cycles=%d, duty=%v, phase_step=%s",
		p.PeriodNS, p.Cycles, p.Duty, p.PhaseStep))

	for c := 1; c <= p.Cycles; c++ {
		g.emitGate(line, gate, targets, angle, c)
		if offNS > 0 {
			g.emitWait(line, offNS, c)
		}
	}
}

// emitGate emits one gate instruction and its timeline entry at the
// current time. cycle > 0 marks a Floquet-expanded emission.
func (g *generator) emitGate(line int, gate string, targets []string, angle string, cycle int) {
	g.emit("    " + gateInstruction(gate, targets, angle))

	op := gate
	if cycle > 0 {
		op = gate + "@floquet"
	}
	g.timeline = append(g.timeline, core.TimelineEntry{
		Line:    line,
		Time:    g.timeNS,
		Op:      op,
		Cycle:   cycle,
		Targets: targets,
	})
}

// emitWait emits one wait instruction, records it, and advances the
// time counter.
func (g *generator) emitWait(line, ns, cycle int) {
	g.emit(fmt.Sprintf("    wait(%d)", ns))
	g.timeline = append(g.timeline, core.TimelineEntry{
		Line:  line,
		Time:  g.timeNS,
		Op:    "wait",
		NS:    ns,
		Cycle: cycle,
	})
	g.timeNS += ns
}

// generateMeasure pairs targets with outputs positionally, truncating
// to the shorter list. Measurement does not advance time.
func (g *generator) generateMeasure(op *core.Operation) {
	targets := op.Targets()
	outputs, _ := op.Args["outputs"].([]string)

	n := len(targets)
	if len(outputs) < n {
		n = len(outputs)
	}
	for i := 0; i < n; i++ {
		g.emit(fmt.Sprintf("    measure(%s) -> %s", targets[i], outputs[i]))
		g.timeline = append(g.timeline, core.TimelineEntry{
			Line:   op.Line,
			Time:   g.timeNS,
			Op:     "measure",
			Target: targets[i],
			Out:    outputs[i],
		})
	}
}

// gateInstruction maps a gate name onto its target instruction.
// Unrecognized names (and recognized names with too few targets) emit a
// placeholder comment rather than failing; gate-name validation is
// deliberately permissive, unlike statement parsing.
func gateInstruction(gate string, targets []string, angle string) string {
	switch gate {
	case "rx":
		if len(targets) >= 1 {
			return fmt.Sprintf("play('rx', %s, angle=%s)", targets[0], angle)
		}
	case "x", "h":
		if len(targets) >= 1 {
			return fmt.Sprintf("play('%s', %s)", gate, targets[0])
		}
	case "cx":
		if len(targets) >= 2 {
			return fmt.Sprintf("play('cnot', %s, control=%s)", targets[0], targets[1])
		}
	case "cz":
		if len(targets) >= 2 {
			return fmt.Sprintf("play('cz', %s, control=%s)", targets[0], targets[1])
		}
	}
	return fmt.Sprintf("# unsupported gate '%s' on [%s]", gate, strings.Join(targets, ", "))
}

// formatArgs renders an args map deterministically, sorted by key.
func formatArgs(args map[string]any) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
