package core

// TimelineEntry is one record per emitted instruction: the source line,
// the logical time at emission, the instruction kind, and kind-specific
// fields. The timeline is append-only for the duration of one generation
// pass and is returned to the caller, never retained as process state.
type TimelineEntry struct {
	Line int    `json:"line"`
	Time int    `json:"t"`
	Op   string `json:"op"`

	// Wait instructions
	NS int `json:"ns,omitempty"`

	// Gate instructions
	Targets []string `json:"targets,omitempty"`

	// Floquet-expanded instructions (1-based cycle index)
	Cycle int `json:"cycle,omitempty"`

	// Measurement instructions
	Target string `json:"target,omitempty"`
	Out    string `json:"out,omitempty"`
}
