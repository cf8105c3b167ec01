package granular

import (
	"github.com/odufour7/granular/vec2"
)

// activeShapeIndices returns the global shape indices owned by the given
// active agent IDs, in ascending-agent-ID then ascending-local-shape order
// — the deterministic iteration order the contact resolver and integrator
// use throughout a sub-step (spec.md §5). activeIDs is already sorted by
// the activation gate; this walks it in place rather than re-sorting by
// global index, which would reorder by registration order instead.
func activeShapeIndices(world *World, activeIDs []int) []int {
	out := make([]int, 0)
	for _, id := range activeIDs {
		idx, ok := world.AgentIndex(id)
		if !ok {
			continue
		}
		a := world.Agents[idx]
		for local := range a.Shapes {
			gi, ok := world.GlobalShape(a.ID, local)
			if ok {
				out = append(out, gi)
			}
		}
	}
	return out
}

// drivingAccel is the fixed translational driving acceleration for the
// whole outer step: F_p/m, equal to v_des·ζ_t (spec.md §4.6 glossary).
func drivingAccel(a *Agent) vec2.V { return vec2.Scale(a.Fp, 1/a.Mass) }

// drivingAngAccel is the fixed rotational driving acceleration: M_p/I.
func drivingAngAccel(a *Agent) float64 { return a.Mp / a.Inertia }

// subStep advances every active agent by one mechanical sub-step of
// velocity-Verlet integration with sub-stepped contact resolution (C6,
// spec.md §4.6): pass A at the committed state, explicit position/
// orientation drift, pass B at the predicted trial state, then a velocity
// kick that commits the new state. Per-agent per-sub-step accumulators are
// reset and filled by the two resolver passes; shape offsets are rotated
// in place to track the committed orientation.
func subStep(world *World, hist *History, neigh *Neighbourhood, activeIDs []int, dtMech float64) {
	shapeIdx := activeShapeIndices(world, activeIDs)

	for _, id := range activeIDs {
		idx, _ := world.AgentIndex(id)
		a := world.Agents[idx]
		a.accFn, a.accFt, a.accTau = vec2.Zero, vec2.Zero, 0
	}

	// Pass A: resolve every active shape at the committed state.
	for _, gi := range shapeIdx {
		s := world.Shapes()[gi]
		a := world.Agents[s.AgentIdx]
		fn, ft, tau := resolveShape(world, hist, neigh, gi, true, dtMech)
		a.accFn = vec2.Add(a.accFn, vec2.Scale(fn, 1/a.Mass))
		a.accFt = vec2.Add(a.accFt, vec2.Scale(ft, 1/a.Mass))
		a.accTau += tau / a.Inertia
	}

	// Position/orientation drift, then the predicted trial state pass B
	// needs to read from.
	for _, id := range activeIDs {
		idx, _ := world.AgentIndex(id)
		a := world.Agents[idx]

		accel := vec2.Add(drivingAccel(a), vec2.Add(a.accFn, a.accFt))
		a.trialPos = vec2.Add(a.Pos, vec2.Add(
			vec2.Scale(a.Vel, dtMech*(1-0.5*dtMech*a.DampT)),
			vec2.Scale(accel, 0.5*dtMech*dtMech),
		))

		tauDrift := a.accTau + (a.OmegaDes-a.Omega)*a.DampR
		a.trialTheta = a.Theta + dtMech*a.Omega + 0.5*dtMech*dtMech*tauDrift

		a.trialVel = vec2.Add(
			vec2.Scale(a.Vel, 1-dtMech*a.DampT),
			vec2.Scale(vec2.Add(drivingAccel(a), vec2.Add(a.accFn, a.accFt)), dtMech),
		)
		a.trialOmega = a.Omega*(1-dtMech*a.DampR) + dtMech*(drivingAngAccel(a)+a.accTau)
	}

	// Pass B: resolve every active shape again at the trial state.
	fn2 := make(map[int]vec2.V, len(shapeIdx))
	ft2 := make(map[int]vec2.V, len(shapeIdx))
	tau2 := make(map[int]float64, len(shapeIdx))
	for _, gi := range shapeIdx {
		fn, ft, tau := resolveShape(world, hist, neigh, gi, false, dtMech)
		fn2[gi], ft2[gi], tau2[gi] = fn, ft, tau
	}

	passB := make(map[int]struct {
		fn, ft vec2.V
		tau    float64
	}, len(activeIDs))
	for _, gi := range shapeIdx {
		s := world.Shapes()[gi]
		agentID := world.Agents[s.AgentIdx].ID
		acc := passB[agentID]
		acc.fn = vec2.Add(acc.fn, fn2[gi])
		acc.ft = vec2.Add(acc.ft, ft2[gi])
		acc.tau += tau2[gi]
		passB[agentID] = acc
	}

	// Velocity kick: commit final v, ω, θ, position and shape offsets.
	for _, id := range activeIDs {
		idx, _ := world.AgentIndex(id)
		a := world.Agents[idx]
		pb := passB[id]
		fnPrime := vec2.Scale(pb.fn, 1/a.Mass)
		ftPrime := vec2.Scale(pb.ft, 1/a.Mass)
		tauPrime := pb.tau/a.Inertia + (a.OmegaDes-a.trialOmega)*a.DampR

		denom := 1 + 0.5*dtMech*a.DampT
		numer := vec2.Add(
			vec2.Scale(a.Vel, 1-0.5*dtMech*a.DampT),
			vec2.Scale(vec2.Add(vec2.Scale(drivingAccel(a), 2), vec2.Add(vec2.Add(a.accFn, a.accFt), vec2.Add(fnPrime, ftPrime))), 0.5*dtMech),
		)
		a.Vel = vec2.Scale(numer, 1/denom)
		a.Omega += 0.5 * dtMech * (a.accTau + tauPrime)

		a.Pos = a.trialPos
		dtheta := a.trialTheta - a.Theta
		a.Theta = a.trialTheta
		for i := range a.Shapes {
			a.Shapes[i].Offset = vec2.Rotate(a.Shapes[i].Offset, dtheta)
		}
	}
}
