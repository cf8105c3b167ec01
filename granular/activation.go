package granular

import (
	"sort"

	"github.com/odufour7/granular/vec2"
)

// ActivationParams tunes the activation gate (C4). Defaults match the
// reference values in spec.md §4.4/§8.
type ActivationParams struct {
	Epsilon          float64 // provisional-contact tolerance, reference 0.1
	VelThresholdSqr  float64 // squared (v,ω) gap that forces activation, reference 1e-4
}

// DefaultActivationParams returns the reference tolerances from spec.md.
func DefaultActivationParams() ActivationParams {
	return ActivationParams{Epsilon: 0.1, VelThresholdSqr: 1e-4}
}

// activation_gate decides which agents enter the mechanical sub-loop this
// outer step (C4, spec.md §4.4). It provisionally advances every agent by
// its desired velocity over dt, flags agents that would plausibly contact
// something, adds agents still shedding previous-step contact force, and
// finally closes the active set under one hop of the current neighbour
// graph so force accounting never splits across the active/passive
// boundary. The returned slice is sorted by agent ID.
func activation_gate(world *World, neigh *Neighbourhood, dt float64, p ActivationParams) []int {
	active := make(map[int]bool, len(world.Agents))

	for _, a := range world.Agents {
		provisional := vec2.Add(a.Pos, vec2.Scale(a.VDes, dt))

		for _, nb := range neigh.WallNeighbours(a.ID) {
			o := &world.Obstacles[nb.Obstacle]
			p0, p1 := o.Segment(nb.Segment)
			mid := vec2.Scale(vec2.Add(p0, p1), 0.5)
			if vec2.Len(vec2.Sub(mid, provisional)) < a.BoundingRadius+p.Epsilon {
				active[a.ID] = true
				break
			}
		}
		if active[a.ID] {
			continue
		}
		for _, otherID := range neigh.AgentNeighbours(a.ID) {
			idx, ok := world.AgentIndex(otherID)
			if !ok {
				continue
			}
			other := world.Agents[idx]
			if vec2.Len(vec2.Sub(provisional, other.Pos)) < a.BoundingRadius+other.BoundingRadius+p.Epsilon {
				active[a.ID] = true
				break
			}
		}
	}

	for _, a := range world.Agents {
		dv := vec2.Sub(a.Vel, a.VDes)
		domega := a.Omega - a.OmegaDes
		if vec2.LenSqr(dv)+domega*domega > p.VelThresholdSqr {
			active[a.ID] = true
		}
	}

	// Transitive closure of one hop: pull in every current neighbour of
	// an already-active agent, so a contact is never force-accounted
	// from only one side of it.
	hop := make(map[int]bool, len(active))
	for id := range active {
		for _, nbID := range neigh.AgentNeighbours(id) {
			hop[nbID] = true
		}
	}
	for id := range hop {
		active[id] = true
	}

	out := make([]int, 0, len(active))
	for id := range active {
		out = append(out, id)
	}
	sort.Ints(out)

	for i := range world.Agents {
		world.Agents[i].active = false
	}
	for _, id := range out {
		if idx, ok := world.AgentIndex(id); ok {
			world.Agents[idx].active = true
		}
	}
	return out
}
