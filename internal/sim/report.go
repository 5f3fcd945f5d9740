package sim

import (
	"fmt"
	"sort"
	"strings"
)

// Report renders a plain-text summary of a simulation state, suitable
// for terminal output or a .sim.txt artifact.
func Report(st *State) string {
	var b strings.Builder

	fmt.Fprintf(&b, "simulation summary (seed=%d)\n", st.Seed)
	fmt.Fprintf(&b, "events: %d\n", len(st.Events))

	if base, present := st.Fields["Phi"]; present {
		fmt.Fprintf(&b, "field Phi: base=%v\n", base["base"])
	}
	for _, name := range sortedDefectNames(st.Defects) {
		d := st.Defects[name]
		fmt.Fprintf(&b, "defect %s: density=%v phase=%v coords=%d\n", name, d.Density, d.Phase, len(d.Coords))
	}
	if st.LatestObs != nil {
		fmt.Fprintf(&b, "observation %s: T_eff=%v (base=%v defects=%v field=%v)\n",
			st.LatestObs.Into, st.LatestObs.TEff, st.LatestObs.Base, st.LatestObs.DefectsTerm, st.LatestObs.FieldTerm)
	}
	if len(st.Measurements) > 0 {
		keys := make([]string, 0, len(st.Measurements))
		for k := range st.Measurements {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%d", k, st.Measurements[k]))
		}
		fmt.Fprintf(&b, "measurements: %s\n", strings.Join(parts, " "))
	}

	return b.String()
}

func sortedDefectNames(m map[string]*Defect) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
