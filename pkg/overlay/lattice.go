package overlay

import (
	"regexp"
	"strconv"

	"github.com/squint-lang/squint/pkg/core"
)

var qubitRefRe = regexp.MustCompile(`^(\w+)\[(\d+)\]$`)

// QubitCoord maps a qubit reference of the form name[i] to lattice
// coordinates, row-major on the workspace lattice: x = i % cols,
// y = i / cols. Returns ok=false for references that carry no index or
// when the lattice has no columns.
func QubitCoord(ref string, ws *core.Workspace) (x, y int, ok bool) {
	m := qubitRefRe.FindStringSubmatch(ref)
	if m == nil {
		return 0, 0, false
	}
	cols := ws.Lattice.Cols
	if cols <= 0 {
		return 0, 0, false
	}
	idx, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return idx % cols, idx / cols, true
}

// Manhattan computes the Manhattan distance between two qubit
// references on the workspace lattice. Returns ok=false when either
// reference cannot be mapped.
func Manhattan(a, b string, ws *core.Workspace) (int, bool) {
	ax, ay, ok := QubitCoord(a, ws)
	if !ok {
		return 0, false
	}
	bx, by, ok := QubitCoord(b, ws)
	if !ok {
		return 0, false
	}
	return abs(ax-bx) + abs(ay-by), true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
