package overlay_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squint-lang/squint/pkg/core"
	"github.com/squint-lang/squint/pkg/overlay"
)

func testWorkspace() *core.Workspace {
	return &core.Workspace{
		Name:           "lab",
		Qubits:         4,
		Lattice:        core.Lattice{Cols: 2, Rows: 2},
		SemanticFields: map[string]string{"Phi": "scalar"},
		DefectFields:   []string{"D"},
	}
}

func ctrlOp(targets []string, ov map[string]string) *core.Operation {
	return &core.Operation{
		Kind:    core.KindQuantum,
		Op:      "ctrl",
		Args:    map[string]any{"gate": "rx", "targets": targets},
		Overlay: ov,
		Line:    1,
	}
}

func TestCheckEmptyOverlay(t *testing.T) {
	ok, diags := overlay.Check(ctrlOp([]string{"q[0]"}, nil), testWorkspace())
	assert.True(t, ok)
	assert.Empty(t, diags)
}

func TestCheckCoherenceLen(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantOK  bool
		wantMsg string
	}{
		{"well formed", ">=120ns", true, "coherence_len satisfied by wait(120) insertion"},
		{"missing prefix", "120ns", false, `coherence_len malformed (got "120ns", expect >=###ns)`},
		{"missing unit", ">=120", false, `coherence_len malformed (got ">=120", expect >=###ns)`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := ctrlOp([]string{"q[0]"}, map[string]string{"coherence_len": tt.value})
			ok, diags := overlay.Check(op, testWorkspace())
			assert.Equal(t, tt.wantOK, ok)
			require.Len(t, diags, 1)
			assert.Equal(t, tt.wantOK, diags[0].Satisfied)
			assert.Equal(t, tt.wantMsg, diags[0].Message)
		})
	}
}

func TestCheckDamping(t *testing.T) {
	ws := testWorkspace()

	for _, spelling := range []string{"eta(Phi=Phi)", "η(Φ=Phi)", "η(Phi=Phi)"} {
		op := ctrlOp([]string{"q[0]"}, map[string]string{"damping": spelling})
		ok, diags := overlay.Check(op, ws)
		assert.True(t, ok, spelling)
		require.Len(t, diags, 1)
		assert.Equal(t, `damping bound to semantic field "Phi"`, diags[0].Message)
	}

	op := ctrlOp([]string{"q[0]"}, map[string]string{"damping": "eta(Phi=Missing)"})
	ok, diags := overlay.Check(op, ws)
	assert.False(t, ok)
	assert.Equal(t, `damping references missing semantic field "Missing"`, diags[0].Message)

	op = ctrlOp([]string{"q[0]"}, map[string]string{"damping": "gamma(Phi)"})
	ok, _ = overlay.Check(op, ws)
	assert.False(t, ok)
}

func TestCheckBraidHandle(t *testing.T) {
	ws := testWorkspace()

	ok, diags := overlay.Check(ctrlOp([]string{"q[0]"}, map[string]string{"braid": "D"}), ws)
	assert.True(t, ok)
	assert.Equal(t, `braid handle "D" resolved`, diags[0].Message)

	ok, diags = overlay.Check(ctrlOp([]string{"q[0]"}, map[string]string{"braid": "X"}), ws)
	assert.False(t, ok)
	assert.Equal(t, `braid handle "X" not declared in defect fields [D]`, diags[0].Message)
}

func TestCheckPathLen(t *testing.T) {
	ws := testWorkspace()

	tests := []struct {
		name    string
		targets []string
		value   string
		wantOK  bool
		wantMsg string
	}{
		{
			name:    "adjacent pair satisfied",
			targets: []string{"q[0]", "q[1]"},
			value:   "<=1",
			wantOK:  true,
			wantMsg: "path_len satisfied (distance=1 <= 1)",
		},
		{
			name:    "diagonal pair violated",
			targets: []string{"q[0]", "q[3]"},
			value:   "<=1",
			wantOK:  false,
			wantMsg: "path_len <= 1 violated (distance=2)",
		},
		{
			name:    "single target malformed",
			targets: []string{"q[0]"},
			value:   "<=1",
			wantOK:  false,
			wantMsg: `path_len malformed (got "<=1", expect <=k on 2-qubit op)`,
		},
		{
			name:    "bad bound malformed",
			targets: []string{"q[0]", "q[1]"},
			value:   "one",
			wantOK:  false,
			wantMsg: `path_len malformed (got "one", expect <=k on 2-qubit op)`,
		},
		{
			name:    "unmappable target skipped",
			targets: []string{"q", "q[1]"},
			value:   "<=1",
			wantOK:  true,
			wantMsg: "path_len check skipped (couldn't map targets to lattice)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := ctrlOp(tt.targets, map[string]string{"path_len": tt.value})
			ok, diags := overlay.Check(op, ws)
			assert.Equal(t, tt.wantOK, ok)
			require.Len(t, diags, 1)
			assert.Equal(t, tt.wantMsg, diags[0].Message)
		})
	}
}

func TestCheckFloquetKeys(t *testing.T) {
	ws := testWorkspace()

	op := ctrlOp([]string{"q[0]"}, map[string]string{
		"floquet_period": "50ns",
		"cycles":         "3",
		"duty":           "0.4",
		"phase_step":     "15deg",
	})
	ok, diags := overlay.Check(op, ws)
	assert.True(t, ok)
	assert.Len(t, diags, 4)
	for _, d := range diags {
		assert.True(t, d.Satisfied, d.Message)
	}

	for name, ov := range map[string]map[string]string{
		"zero period":   {"floquet_period": "0ns"},
		"bad cycles":    {"cycles": "-1"},
		"duty above 1":  {"duty": "1.5"},
		"bad phase":     {"phase_step": "fast"},
		"period letter": {"floquet_period": "soon"},
	} {
		t.Run(name, func(t *testing.T) {
			ok, diags := overlay.Check(ctrlOp([]string{"q[0]"}, ov), ws)
			assert.False(t, ok)
			require.Len(t, diags, 1)
			assert.False(t, diags[0].Satisfied)
		})
	}
}

func TestCheckUnenforcedKeys(t *testing.T) {
	op := ctrlOp([]string{"q[0]"}, map[string]string{"span": "true", "coherence_budget": "3"})
	ok, diags := overlay.Check(op, testWorkspace())
	assert.True(t, ok, "unenforced keys never affect satisfaction")
	require.Len(t, diags, 2)
	assert.Equal(t, "span overlay recognized but not enforced", diags[0].Message)
	assert.Equal(t, "coherence_budget overlay recognized but not enforced", diags[1].Message)
}

func TestRequiredWaitNS(t *testing.T) {
	ns, ok := overlay.RequiredWaitNS(map[string]string{"coherence_len": ">=120ns"})
	assert.True(t, ok)
	assert.Equal(t, 120, ns)

	_, ok = overlay.RequiredWaitNS(map[string]string{"coherence_len": "120ns"})
	assert.False(t, ok)

	_, ok = overlay.RequiredWaitNS(map[string]string{})
	assert.False(t, ok)
}

func TestHasFloquet(t *testing.T) {
	assert.False(t, overlay.HasFloquet(map[string]string{"coherence_len": ">=1ns"}))
	assert.True(t, overlay.HasFloquet(map[string]string{"floquet_period": "50ns"}))
	assert.True(t, overlay.HasFloquet(map[string]string{"cycles": "2"}))
	assert.True(t, overlay.HasFloquet(map[string]string{"duty": "0.5"}))
}

func TestParseFloquet(t *testing.T) {
	p, ok := overlay.ParseFloquet(map[string]string{"floquet_period": "50ns"})
	require.True(t, ok)
	assert.Equal(t, overlay.FloquetParams{PeriodNS: 50, Cycles: 1, Duty: 0.5, PhaseStep: "0deg"}, p)

	p, ok = overlay.ParseFloquet(map[string]string{
		"floquet_period": "50ns",
		"cycles":         "3",
		"duty":           "0.4",
		"phase_step":     "15deg",
	})
	require.True(t, ok)
	assert.Equal(t, overlay.FloquetParams{PeriodNS: 50, Cycles: 3, Duty: 0.4, PhaseStep: "15deg"}, p)

	for name, ov := range map[string]map[string]string{
		"missing period": {"cycles": "3"},
		"zero period":    {"floquet_period": "0"},
		"zero cycles":    {"floquet_period": "50ns", "cycles": "0"},
		"duty above 1":   {"floquet_period": "50ns", "duty": "2"},
		"duty not a num": {"floquet_period": "50ns", "duty": "heavy"},
	} {
		t.Run(name, func(t *testing.T) {
			_, ok := overlay.ParseFloquet(ov)
			assert.False(t, ok)
		})
	}
}

func TestQubitCoord(t *testing.T) {
	ws := testWorkspace()

	tests := []struct {
		ref    string
		x, y   int
		mapped bool
	}{
		{"q[0]", 0, 0, true},
		{"q[1]", 1, 0, true},
		{"q[2]", 0, 1, true},
		{"q[3]", 1, 1, true},
		{"q", 0, 0, false},
		{"m0", 0, 0, false},
	}
	for _, tt := range tests {
		x, y, ok := overlay.QubitCoord(tt.ref, ws)
		assert.Equal(t, tt.mapped, ok, tt.ref)
		if tt.mapped {
			assert.Equal(t, tt.x, x, tt.ref)
			assert.Equal(t, tt.y, y, tt.ref)
		}
	}

	_, _, ok := overlay.QubitCoord("q[0]", &core.Workspace{Lattice: core.Lattice{}})
	assert.False(t, ok, "zero-column lattice maps nothing")
}

func TestManhattan(t *testing.T) {
	ws := testWorkspace()

	d, ok := overlay.Manhattan("q[0]", "q[3]", ws)
	require.True(t, ok)
	assert.Equal(t, 2, d)

	d, ok = overlay.Manhattan("q[1]", "q[2]", ws)
	require.True(t, ok)
	assert.Equal(t, 2, d)

	d, ok = overlay.Manhattan("q[0]", "q[0]", ws)
	require.True(t, ok)
	assert.Equal(t, 0, d)

	_, ok = overlay.Manhattan("q", "q[0]", ws)
	assert.False(t, ok)
}
