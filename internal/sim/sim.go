// Package sim is the illustrative semantic-field/defect simulator. It
// consumes a parsed program independently of the compiler core and
// produces a simplified numeric trace; it makes no claim of physical
// accuracy.
package sim

import (
	"math"
	"regexp"
	"strconv"

	"github.com/squint-lang/squint/pkg/core"
)

const initialDefectDensity = 0.0100

var (
	constantRe  = regexp.MustCompile(`constant\(([^)]+)\)`)
	coordPairRe = regexp.MustCompile(`\((-?\d+)\s*,\s*(-?\d+)\)`)
)

// Coord is one lattice coordinate pair from a defect spec string.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Defect tracks one nucleated defect field.
type Defect struct {
	Coords  []Coord `json:"coords"`
	Density float64 `json:"density"`
	Phase   float64 `json:"phase"`
}

// Observation is the most recent effective-temperature readout.
type Observation struct {
	TEff        float64 `json:"T_eff"`
	Into        string  `json:"into"`
	Base        float64 `json:"base"`
	DefectsTerm float64 `json:"defects_term"`
	FieldTerm   float64 `json:"field_term"`
}

// Event is one simulation event, keyed by an "op" marker plus
// op-specific fields.
type Event map[string]any

// State is the full simulation outcome for one program.
type State struct {
	Seed         int64                         `json:"seed"`
	Fields       map[string]map[string]float64 `json:"fields"`
	Defects      map[string]*Defect            `json:"defects"`
	Measurements map[string]int                `json:"measurements"`
	LatestObs    *Observation                  `json:"latest_obs"`
	Events       []Event                       `json:"events"`
}

// Simulate walks the kernel operations in order and evolves the toy
// field/defect model. The seed parameter pins any stochastic behavior;
// the current model is fully deterministic, and the seed is recorded in
// the state so traces stay comparable if noise is added later.
func Simulate(prog *core.Program, seed int64) *State {
	st := &State{
		Seed:         seed,
		Fields:       map[string]map[string]float64{},
		Defects:      map[string]*Defect{},
		Measurements: map[string]int{},
	}

	phiBase := 0.0
	density := 0.0
	phase := 0.0

	for _, op := range prog.Kernel.Operations {
		switch {
		case op.Kind == core.KindSemantic && op.Op == "initialize":
			if op.StringArg("name") != "Phi" {
				continue
			}
			if m := constantRe.FindStringSubmatch(op.StringArg("expr")); m != nil {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					phiBase = v
				}
			}
			st.Fields["Phi"] = map[string]float64{"base": phiBase}
			st.Events = append(st.Events, Event{"op": "init_phi", "value": phiBase})

		case op.Kind == core.KindBraid && op.Op == "nucleate":
			coords := coordsFromSpec(op.StringArg("spec"))
			density = initialDefectDensity
			st.Defects["D"] = &Defect{Coords: coords, Density: density, Phase: phase}
			st.Events = append(st.Events, Event{"op": "nucleate", "coords": coords, "density": density})

		case op.Kind == core.KindBraid && op.Op == "evolve":
			density = round4(density * 1.05)
			phase = 0.55
			if d, present := st.Defects["D"]; present {
				d.Density = density
				d.Phase = phase
			}
			st.Events = append(st.Events, Event{"op": "evolve", "density": density, "phase": phase})

		case op.Kind == core.KindBraid && op.Op == "quench":
			amt, _ := op.Args["amount"].(float64)
			if amt >= 0.02 {
				density = 0.001
			} else {
				density = math.Max(0, density-amt)
			}
			if d, present := st.Defects["D"]; present {
				d.Density = density
			}
			st.Events = append(st.Events, Event{"op": "quench", "amount": amt, "new_density": density})

		case op.Kind == core.KindSemantic && op.Op == "observe":
			defectsTerm := 0.0
			if _, present := st.Defects["D"]; present {
				defectsTerm = 0.0002
			}
			fieldTerm := round4(0.01 * phiBase)
			te := round4(phiBase + defectsTerm + fieldTerm)
			into := op.StringArg("into")
			if into == "" {
				into = "obs"
			}
			st.LatestObs = &Observation{
				TEff:        te,
				Into:        into,
				Base:        phiBase,
				DefectsTerm: defectsTerm,
				FieldTerm:   fieldTerm,
			}
			st.Events = append(st.Events, Event{"op": "observe", "Te": te})

		case op.Kind == core.KindSemantic && op.Op == "hysteresis_trace":
			w := 3
			if v, present := op.Args["window"].(int); present {
				w = v
			}
			trace := make([]float64, w)
			for i := 0; i < w; i++ {
				span := w - 1
				if span < 1 {
					span = 1
				}
				trace[i] = round4(density * (0.9 + 0.1*float64(i)/float64(span)))
			}
			st.Events = append(st.Events, Event{"op": "hysteresis", "window": w, "trace": trace})

		case op.Kind == core.KindQuantum && op.Op == "measure":
			outs, _ := op.Args["outputs"].([]string)
			for i, o := range outs {
				if i > 1 {
					break
				}
				st.Measurements[o] = i
			}
			st.Events = append(st.Events, Event{"op": "measure", "values": copyMeasurements(st.Measurements)})

		case op.Kind == core.KindSemantic && op.Op == "return":
			st.Events = append(st.Events, Event{"op": "return", "spec": op.StringArg("spec")})
		}
	}

	return st
}

func coordsFromSpec(spec string) []Coord {
	var coords []Coord
	for _, m := range coordPairRe.FindAllStringSubmatch(spec, -1) {
		x, _ := strconv.Atoi(m[1])
		y, _ := strconv.Atoi(m[2])
		coords = append(coords, Coord{X: x, Y: y})
	}
	return coords
}

func round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}

func copyMeasurements(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
