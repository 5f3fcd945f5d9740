// Package runlog builds the structured compile log emitted next to the
// generated instruction stream. The log captures every kernel operation
// as parsed plus the emission timeline, so downstream tooling can replay
// or audit a compile without re-parsing the source.
package runlog

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/squint-lang/squint/pkg/core"
)

// Event is one kernel operation as it appeared after parsing.
type Event struct {
	Kind    string            `json:"kind" yaml:"kind"`
	Op      string            `json:"op" yaml:"op"`
	Line    int               `json:"line" yaml:"line"`
	Args    map[string]any    `json:"args,omitempty" yaml:"args,omitempty"`
	Overlay map[string]string `json:"overlay,omitempty" yaml:"overlay,omitempty"`
}

// Log is the full compile log payload.
type Log struct {
	RunID     string               `json:"run_id" yaml:"run_id"`
	Workspace WorkspaceInfo        `json:"workspace" yaml:"workspace"`
	Kernel    string               `json:"kernel" yaml:"kernel"`
	Events    []Event              `json:"events" yaml:"events"`
	Timeline  []core.TimelineEntry `json:"timeline" yaml:"timeline"`
}

// WorkspaceInfo is the workspace header carried in the log.
type WorkspaceInfo struct {
	Name           string            `json:"name" yaml:"name"`
	Qubits         int               `json:"qubits" yaml:"qubits"`
	Lattice        string            `json:"lattice" yaml:"lattice"`
	SemanticFields map[string]string `json:"semantic_fields,omitempty" yaml:"semantic_fields,omitempty"`
	DefectFields   []string          `json:"defect_fields,omitempty" yaml:"defect_fields,omitempty"`
}

// Build assembles a log from a parsed program and the timeline produced
// by code generation. Each call mints a fresh run ID.
func Build(prog *core.Program, timeline []core.TimelineEntry) *Log {
	events := make([]Event, 0, len(prog.Kernel.Operations))
	for _, op := range prog.Kernel.Operations {
		events = append(events, Event{
			Kind:    string(op.Kind),
			Op:      op.Op,
			Line:    op.Line,
			Args:    op.Args,
			Overlay: op.Overlay,
		})
	}
	return &Log{
		RunID: uuid.NewString(),
		Workspace: WorkspaceInfo{
			Name:           prog.Workspace.Name,
			Qubits:         prog.Workspace.Qubits,
			Lattice:        prog.Workspace.Lattice.String(),
			SemanticFields: prog.Workspace.SemanticFields,
			DefectFields:   prog.Workspace.DefectFields,
		},
		Kernel:   prog.Kernel.Name,
		Events:   events,
		Timeline: timeline,
	}
}

// Format selects the serialization used by Encode.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Encode serializes the log in the requested format. JSON output is
// indented for readability.
func (l *Log) Encode(f Format) ([]byte, error) {
	switch f {
	case FormatJSON, "":
		return json.MarshalIndent(l, "", "  ")
	case FormatYAML:
		return yaml.Marshal(l)
	default:
		return nil, fmt.Errorf("unknown log format %q", f)
	}
}
