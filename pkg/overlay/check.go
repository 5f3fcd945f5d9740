// Package overlay validates the physical/scheduling constraint
// annotations attached to ctrl operations.
//
// Check is a pure function of the operation and its workspace: it never
// fails on malformed overlay content — malformed content is itself
// reported as a diagnostic and marks the overall result unsatisfied.
// Absence of a key skips that rule entirely; an operation with no
// overlay keys is trivially satisfied.
package overlay

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/squint-lang/squint/pkg/core"
)

// Overlay constraint keys.
const (
	KeyCoherenceLen  = "coherence_len"
	KeyDamping       = "damping"
	KeyBraid         = "braid"
	KeyPathLen       = "path_len"
	KeyFloquetPeriod = "floquet_period"
	KeyCycles        = "cycles"
	KeyDuty          = "duty"
	KeyPhaseStep     = "phase_step"
)

// Recognized but unenforced keys; they produce informational
// diagnostics only and never affect satisfaction.
var unenforcedKeys = []string{"span", "coherence_budget"}

var (
	nsValueRe = regexp.MustCompile(`(\d+)\s*[nN][sS]\b`)
	etaPhiRes = []*regexp.Regexp{
		regexp.MustCompile(`^η\(Φ=(\w+)\)$`),
		regexp.MustCompile(`^eta\(Phi=(\w+)\)$`),
		regexp.MustCompile(`^η\(Phi=(\w+)\)$`),
	}
)

// Check validates the overlay of one operation against the owning
// workspace. It returns overall satisfaction (the logical AND of every
// rule actually evaluated) and the ordered rule diagnostics.
func Check(op *core.Operation, ws *core.Workspace) (bool, []core.Diagnostic) {
	ov := op.Overlay
	targets := op.Targets()

	ok := true
	var diags []core.Diagnostic

	fail := func(format string, args ...any) {
		ok = false
		diags = append(diags, core.Diagnostic{Satisfied: false, Message: fmt.Sprintf(format, args...)})
	}
	info := func(format string, args ...any) {
		diags = append(diags, core.Diagnostic{Satisfied: true, Message: fmt.Sprintf(format, args...)})
	}

	if v, present := ov[KeyCoherenceLen]; present {
		ns, wellFormed := parseRequiredNS(v)
		if !wellFormed {
			fail("coherence_len malformed (got %q, expect >=###ns)", v)
		} else {
			info("coherence_len satisfied by wait(%d) insertion", ns)
		}
	}

	if v, present := ov[KeyDamping]; present {
		field := parseEtaPhi(v)
		switch {
		case field == "":
			fail("damping malformed (got %q, expect η(Φ=Phi) or eta(Phi=Phi))", v)
		case !ws.HasSemanticField(field):
			fail("damping references missing semantic field %q", field)
		default:
			info("damping bound to semantic field %q", field)
		}
	}

	if v, present := ov[KeyBraid]; present {
		if !ws.HasDefectField(v) {
			fail("braid handle %q not declared in defect fields %v", v, ws.DefectFields)
		} else {
			info("braid handle %q resolved", v)
		}
	}

	if v, present := ov[KeyPathLen]; present {
		bound, wellFormed := parseUpperBound(v)
		if !wellFormed || len(targets) != 2 {
			fail("path_len malformed (got %q, expect <=k on 2-qubit op)", v)
		} else if d, mapped := Manhattan(targets[0], targets[1], ws); !mapped {
			info("path_len check skipped (couldn't map targets to lattice)")
		} else if d > bound {
			fail("path_len <= %d violated (distance=%d)", bound, d)
		} else {
			info("path_len satisfied (distance=%d <= %d)", d, bound)
		}
	}

	if v, present := ov[KeyFloquetPeriod]; present {
		if ns, wellFormed := parseNSUnit(v); !wellFormed || ns <= 0 {
			fail("floquet_period malformed (got %q, expect e.g. 50ns)", v)
		} else {
			info("floquet_period accepted: %d ns", ns)
		}
	}

	if v, present := ov[KeyCycles]; present {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err != nil || n <= 0 {
			fail("cycles malformed (got %q, expect positive integer)", v)
		} else {
			info("cycles accepted: %d", n)
		}
	}

	if v, present := ov[KeyDuty]; present {
		if d, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil || d <= 0 || d > 1 {
			fail("duty malformed (got %q, expect 0<duty<=1)", v)
		} else {
			info("duty accepted: %v", d)
		}
	}

	if v, present := ov[KeyPhaseStep]; present {
		if _, wellFormed := parseDegUnit(v); !wellFormed {
			fail("phase_step malformed (got %q, expect e.g. 15deg)", v)
		} else {
			info("phase_step accepted: %s", v)
		}
	}

	for _, k := range unenforcedKeys {
		if _, present := ov[k]; present {
			info("%s overlay recognized but not enforced", k)
		}
	}

	return ok, diags
}

// RequiredWaitNS extracts the wait duration a well-formed coherence_len
// constraint demands. The second return is false when the key is absent
// or malformed; acting on the duration is the caller's responsibility.
func RequiredWaitNS(ov map[string]string) (int, bool) {
	v, present := ov[KeyCoherenceLen]
	if !present {
		return 0, false
	}
	return parseRequiredNS(v)
}

// FloquetParams holds the parsed periodic-drive parameters of one
// overlay.
type FloquetParams struct {
	PeriodNS  int
	Cycles    int
	Duty      float64
	PhaseStep string
}

// HasFloquet reports whether any of the three periodic-drive keys is
// present.
func HasFloquet(ov map[string]string) bool {
	for _, k := range []string{KeyFloquetPeriod, KeyCycles, KeyDuty} {
		if _, present := ov[k]; present {
			return true
		}
	}
	return false
}

// ParseFloquet extracts the periodic-drive parameters, applying the
// defaults cycles=1 and duty=0.5 for absent keys. ok is false when the
// period is missing/unparsable, cycles is not positive, or duty falls
// outside (0,1] — the caller must then fall back to a single unexpanded
// emission, never a partial expansion.
func ParseFloquet(ov map[string]string) (FloquetParams, bool) {
	p := FloquetParams{Cycles: 1, Duty: 0.5, PhaseStep: "0deg"}

	period, wellFormed := parseNSUnit(ov[KeyFloquetPeriod])
	if !wellFormed {
		return p, false
	}
	p.PeriodNS = period

	if v, present := ov[KeyCycles]; present {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return p, false
		}
		p.Cycles = int(f)
	}
	if v, present := ov[KeyDuty]; present {
		d, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return p, false
		}
		p.Duty = d
	}
	if v, present := ov[KeyPhaseStep]; present {
		p.PhaseStep = v
	}

	if p.PeriodNS <= 0 || p.Cycles <= 0 || p.Duty <= 0 || p.Duty > 1 {
		return p, false
	}
	return p, true
}

// parseRequiredNS parses a coherence_len value: `>=<integer>ns`.
func parseRequiredNS(v string) (int, bool) {
	if !strings.HasPrefix(v, ">=") {
		return 0, false
	}
	m := nsValueRe.FindStringSubmatch(v)
	if m == nil {
		return 0, false
	}
	ns, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return ns, true
}

// parseUpperBound parses a path_len value: `<=<integer>`.
func parseUpperBound(v string) (int, bool) {
	if !strings.HasPrefix(v, "<=") {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v[2:]))
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseNSUnit parses an integer nanosecond count with an optional "ns"
// suffix: "50ns", "50".
func parseNSUnit(v string) (int, bool) {
	s := strings.TrimSpace(strings.ToLower(v))
	s = strings.TrimSuffix(s, "ns")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return int(f), true
}

// parseDegUnit parses a real number with an optional "deg" suffix.
func parseDegUnit(v string) (float64, bool) {
	s := strings.TrimSpace(strings.ToLower(v))
	s = strings.TrimSuffix(s, "deg")
	s = strings.TrimSpace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseEtaPhi extracts the field name from η(Φ=field), eta(Phi=field),
// or η(Phi=field). Whitespace inside the expression is ignored.
func parseEtaPhi(v string) string {
	s := strings.ReplaceAll(v, " ", "")
	for _, re := range etaPhiRes {
		if m := re.FindStringSubmatch(s); m != nil {
			return m[1]
		}
	}
	return ""
}
