package granular

import (
	"testing"

	"github.com/odufour7/granular/vec2"
)

func TestActivationGateWallProximity(t *testing.T) {
	w := NewWorld()
	w.AddMaterial(Material{ID: 1, E: 1e7, G: 1e6})
	shapes := []ShapeSpec{{MaterialID: 1, Radius: 0.2}}
	offsets := []vec2.V{{}}
	w.AddAgent(1, 80, 4, 0, 2, 3, shapes, offsets)
	w.Finalize()
	w.Agents[0].Pos = vec2.V{X: 0, Y: 0.25}
	w.Agents[0].DeriveDesired()
	w.AddObstacle(Obstacle{ID: 0, Vertices: []vec2.V{{X: -1}, {X: 1}}, MaterialID: 1})

	n := NewNeighbourhood()
	n.Rebuild(w, 0.2, 2.0) // wallBound = dt*vmax = 0.4, comfortably past the 0.25 gap
	active := activation_gate(w, n, 0.2, DefaultActivationParams())
	if len(active) != 1 || active[0] != 1 {
		t.Errorf("activation_gate = %v, want [1] (agent sits 0.05 from a 0.2-radius disc against the wall)", active)
	}
}

func TestActivationGateVelocityGapForcesActivation(t *testing.T) {
	w := NewWorld()
	w.AddMaterial(Material{ID: 1, E: 1e7, G: 1e6})
	shapes := []ShapeSpec{{MaterialID: 1, Radius: 0.1}}
	offsets := []vec2.V{{}}
	w.AddAgent(1, 80, 4, 0, 2, 3, shapes, offsets)
	w.Finalize()
	a := w.Agents[0]
	a.Pos = vec2.V{X: 1000, Y: 1000} // far from everything
	a.Vel = vec2.V{X: 5, Y: 0}       // nowhere near v_des = 0
	a.DeriveDesired()

	n := NewNeighbourhood()
	n.Rebuild(w, 0.1, 2.0)
	active := activation_gate(w, n, 0.1, DefaultActivationParams())
	if len(active) != 1 {
		t.Errorf("expected activation from velocity gap alone, got %v", active)
	}
}

func TestActivationGateTransitiveClosure(t *testing.T) {
	w := NewWorld()
	w.AddMaterial(Material{ID: 1, E: 1e7, G: 1e6})
	shapes := []ShapeSpec{{MaterialID: 1, Radius: 0.1}}
	offsets := []vec2.V{{}}
	// Chain of three agents: 1 near 2, 2 near 3, 1 far from 3.
	w.AddAgent(1, 80, 4, 0, 2, 3, shapes, offsets)
	w.AddAgent(2, 80, 4, 0, 2, 3, shapes, offsets)
	w.AddAgent(3, 80, 4, 0, 2, 3, shapes, offsets)
	w.Finalize()
	w.Agents[0].Pos = vec2.V{X: 0}
	w.Agents[1].Pos = vec2.V{X: 0.35}
	w.Agents[2].Pos = vec2.V{X: 0.7}
	for _, a := range w.Agents {
		a.DeriveDesired()
	}
	// Only agent 1 has a velocity gap; closure should pull in 2 (its
	// neighbour) but not 3 (two hops away). The neighbour bound
	// 2*dt*vmax = 0.4 links only adjacent agents (0.35 apart), not the
	// 0.7-apart ends of the chain, and 0.35 is beyond the proximity
	// tolerance 0.1+0.1+0.1, so no agent activates by proximity.
	w.Agents[0].Vel = vec2.V{X: 10}

	n := NewNeighbourhood()
	n.Rebuild(w, 0.1, 2.0)
	active := activation_gate(w, n, 0.1, DefaultActivationParams())
	got := map[int]bool{}
	for _, id := range active {
		got[id] = true
	}
	if !got[1] || !got[2] {
		t.Errorf("expected 1 and 2 active, got %v", active)
	}
	if got[3] {
		t.Errorf("agent 3 is two hops from the only velocity-gap agent and should stay passive, got %v", active)
	}
}
