package core

import "fmt"

// OpKind classifies an operation into one of the three SQUINT families.
type OpKind string

const (
	KindQuantum  OpKind = "quantum"
	KindSemantic OpKind = "semantic"
	KindBraid    OpKind = "braid"
)

// Lattice describes the qubit lattice topology declared by a workspace.
// Qubit indices map onto it row-major: x = i % Cols, y = i / Cols.
type Lattice struct {
	Cols int `json:"cols"`
	Rows int `json:"rows"`
}

func (l Lattice) String() string {
	return fmt.Sprintf("(%d, %d)", l.Cols, l.Rows)
}

// Workspace declares the qubit count, lattice topology, and the named
// semantic/defect fields available to a kernel. Immutable after parsing.
type Workspace struct {
	Name           string            `json:"name"`
	Qubits         int               `json:"qubits"`
	Lattice        Lattice           `json:"lattice"`
	SemanticFields map[string]string `json:"semantic_fields"` // field name -> scalar|vector|tensor[N]
	DefectFields   []string          `json:"defect_fields"`
}

// HasSemanticField reports whether the workspace declares the named
// semantic field.
func (w *Workspace) HasSemanticField(name string) bool {
	_, ok := w.SemanticFields[name]
	return ok
}

// HasDefectField reports whether the workspace declares the named
// defect field.
func (w *Workspace) HasDefectField(name string) bool {
	for _, f := range w.DefectFields {
		if f == name {
			return true
		}
	}
	return false
}

// Operation is one kernel statement. Args hold the per-op arguments
// (arity and value types vary per op); Overlay holds the raw textual
// constraint annotations, meaningful only for ctrl. Operations are
// immutable once parsed and appear strictly in source order.
type Operation struct {
	Kind    OpKind            `json:"kind"`
	Op      string            `json:"op"`
	Args    map[string]any    `json:"args"`
	Overlay map[string]string `json:"overlay,omitempty"`
	Line    int               `json:"line"` // 1-based line within the kernel body
}

// Targets returns the operation's qubit target list, or nil when the
// operation carries none.
func (o *Operation) Targets() []string {
	ts, _ := o.Args["targets"].([]string)
	return ts
}

// StringArg returns the named argument as a string, or "" when absent.
func (o *Operation) StringArg(name string) string {
	s, _ := o.Args[name].(string)
	return s
}

// Kernel is an ordered sequence of operations targeting one workspace.
// Order is semantically significant: it defines execution order.
type Kernel struct {
	Name       string       `json:"name"`
	Operations []*Operation `json:"operations"`
}

// Program is the result of parsing one SQUINT source: exactly one
// workspace plus exactly one kernel. The kernel's declared target
// workspace is checked against the workspace name at parse time.
type Program struct {
	Workspace *Workspace `json:"workspace"`
	Kernel    *Kernel    `json:"kernel"`
}

// Diagnostic is one rule-check outcome for one operation: satisfied or
// violated plus a free-text explanation. Diagnostics never mutate the
// operation they describe.
type Diagnostic struct {
	Satisfied bool
	Message   string
}

func (d Diagnostic) String() string {
	return d.Message
}

// DiagnosticMessages flattens diagnostics into their messages.
func DiagnosticMessages(diags []Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = d.Message
	}
	return out
}
