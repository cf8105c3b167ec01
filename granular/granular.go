package granular

import (
	"maps"
	"math"

	"github.com/odufour7/granular/vec2"
)

// StepParams tunes one outer call (spec.md §3, §8). DtMech must evenly
// divide Dt; VMax is the travel-bound constant the neighbourhood layer
// uses to size its candidate search.
type StepParams struct {
	Dt         float64
	DtMech     float64
	VMax       float64
	Activation ActivationParams
}

// agentSnapshot captures one agent's mutable state so a NumericAnomaly can
// roll the whole world back to exactly its pre-call state (spec.md §7:
// "domain state is left unmodified").
type agentSnapshot struct {
	pos     vec2.V
	theta   float64
	vel     vec2.V
	omega   float64
	offsets []vec2.V
}

func snapshot(world *World) []agentSnapshot {
	out := make([]agentSnapshot, len(world.Agents))
	for i, a := range world.Agents {
		offs := make([]vec2.V, len(a.Shapes))
		for j := range a.Shapes {
			offs[j] = a.Shapes[j].Offset
		}
		out[i] = agentSnapshot{pos: a.Pos, theta: a.Theta, vel: a.Vel, omega: a.Omega, offsets: offs}
	}
	return out
}

func restore(world *World, snap []agentSnapshot) {
	for i, a := range world.Agents {
		s := snap[i]
		a.Pos, a.Theta, a.Vel, a.Omega = s.pos, s.theta, s.vel, s.omega
		for j := range a.Shapes {
			a.Shapes[j].Offset = s.offsets[j]
		}
	}
}

func agentFinite(a *Agent) bool {
	return vec2.IsFinite(a.Pos) && vec2.IsFinite(a.Vel) &&
		!math.IsNaN(a.Theta) && !math.IsInf(a.Theta, 0) &&
		!math.IsNaN(a.Omega) && !math.IsInf(a.Omega, 0)
}

// Step advances the whole world by one outer Dt: it rebuilds the
// neighbourhood graph (C3), runs the activation gate (C4), drives every
// active agent through Dt/DtMech mechanical sub-steps of contact
// resolution and integration (C5, C6), analytically relaxes every
// non-active agent over the full Dt (C8), and refreshes the persisted
// tangential-slip history and its output buffer (C7). On NumericAnomaly
// the world and the history are both left exactly as they were on entry. It returns the number of agents the activation gate judged
// active this call, for callers that want to report it.
func Step(world *World, hist *History, neigh *Neighbourhood, p StepParams) (int, error) {
	for _, a := range world.Agents {
		a.DeriveDesired()
	}

	snap := snapshot(world)
	pairSlip, wallSlip := maps.Clone(hist.pairSlip), maps.Clone(hist.wallSlip)
	pairOut, wallOut := maps.Clone(hist.pairOut), maps.Clone(hist.wallOut)

	neigh.Rebuild(world, p.Dt, p.VMax)
	active := activation_gate(world, neigh, p.Dt, p.Activation)

	hist.resetOutputBuffers()

	nSub := int(math.Round(p.Dt / p.DtMech))
	if nSub < 1 {
		nSub = 1
	}
	if len(active) > 0 {
		for i := 0; i < nSub; i++ {
			subStep(world, hist, neigh, active, p.DtMech)
		}
	}

	activeSet := make(map[int]bool, len(active))
	for _, id := range active {
		activeSet[id] = true
	}
	for _, a := range world.Agents {
		if !activeSet[a.ID] {
			relax(a, p.Dt)
		}
	}

	for _, a := range world.Agents {
		if !agentFinite(a) {
			restore(world, snap)
			hist.pairSlip, hist.wallSlip = pairSlip, wallSlip
			hist.pairOut, hist.wallOut = pairOut, wallOut
			return 0, newStepError(NumericAnomaly, "agent %d produced a non-finite position, velocity or orientation", a.ID)
		}
	}

	return len(active), nil
}
