package codegen

import (
	"fmt"
	"strings"
)

// OverlayError is raised in strict mode at the first gate operation
// whose overlay validation fails. It carries the kernel line number and
// the failing diagnostics; no partial output is produced for the run.
type OverlayError struct {
	Line        int
	Diagnostics []string
}

func (e *OverlayError) Error() string {
	return fmt.Sprintf("overlay unsatisfied on line %d: %s", e.Line, strings.Join(e.Diagnostics, "; "))
}
