package parser

import "fmt"

// ParseError represents a parsing error with position information.
// For kernel statement failures, Line is relative to the kernel body
// (matching operation line numbering) and LineText carries the raw
// offending statement.
type ParseError struct {
	Pos      Position
	Message  string
	LineText string
}

func (e *ParseError) Error() string {
	if e.LineText != "" {
		return fmt.Sprintf("parse error at line %d: %s: %s", e.Pos.Line, e.Message, e.LineText)
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("parse error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// Common error messages.
const (
	errWorkspaceNotFound = "workspace block not found"
	errQubitsNotFound    = "qubits decl not found (expect: qubits q[N];)"
	errLatticeNotFound   = "lattice decl not found (expect: lattice L(x,y) attach q;)"
	errKernelNotFound    = "kernel block not found"
)
