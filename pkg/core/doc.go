// Package core defines the shared language of the SQUINT compiler.
//
// This package contains:
//   - The IR model (Workspace, Kernel, Operation, Program)
//   - Validation and generation result types (Diagnostic, TimelineEntry)
//   - Service interfaces (Store)
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
