// Package report produces optional per-call diagnostics: how many agents
// were active, the largest squared normal force among recorded contacts
// (a proxy for the worst indentation), and the system's kinetic energy.
// None of this feeds back into the mechanics; it exists purely so an
// operator running granular-step in a loop can watch a simulation's
// health without re-deriving it from the Dynamics/AgentInteractions
// output files by hand.
package report

import (
	"fmt"
	"io"

	"github.com/odufour7/granular/granular"
	"github.com/odufour7/granular/vec2"
)

// Summary is one outer call's diagnostics.
type Summary struct {
	ActiveAgents   int
	MaxIndentation float64
	KineticEnergy  float64
}

// Summarize computes a Summary from the world's current state and the
// history's output buffer (the indentations/forces standing after the
// call that just completed).
func Summarize(world *granular.World, hist *granular.History, activeCount int) Summary {
	s := Summary{ActiveAgents: activeCount}

	for _, a := range world.Agents {
		s.KineticEnergy += 0.5*a.Mass*(a.Vel.X*a.Vel.X+a.Vel.Y*a.Vel.Y) + 0.5*a.Inertia*a.Omega*a.Omega
	}

	for _, e := range hist.PairOutput(world) {
		if h := indentationFromForce(e.Fn); h > s.MaxIndentation {
			s.MaxIndentation = h
		}
	}
	for _, e := range hist.WallOutput(world) {
		if h := indentationFromForce(e.Fn); h > s.MaxIndentation {
			s.MaxIndentation = h
		}
	}
	return s
}

// indentationFromForce returns the squared normal-force magnitude as a
// rough proxy for indentation depth; the report package never has direct access to
// k_n, so it reports force, not displacement, when a reader wants depth
// they should cross-reference the Materials file.
func indentationFromForce(fn vec2.V) float64 {
	return fn.X*fn.X + fn.Y*fn.Y
}

// Write prints a one-line human-readable summary.
func Write(w io.Writer, s Summary) {
	fmt.Fprintf(w, "active=%d max_fn_sqr=%.6g ke=%.6g\n", s.ActiveAgents, s.MaxIndentation, s.KineticEnergy)
}
