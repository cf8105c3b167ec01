package granular

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/lvlath/core"
	"github.com/odufour7/granular/vec2"
)

// WallRef identifies one wall segment a shape may contact.
type WallRef struct {
	Obstacle int
	Segment  int
}

// Neighbourhood is the neighbourhood layer (C3): per-agent candidate lists
// for agent-agent and agent-wall contacts, rebuilt from scratch every
// outer call by an O(N²) scan of agent pairs and an O(N·W) scan over
// walls (spec.md §4.3). The per-agent sets are backed by a thread-safe
// undirected adjacency-list graph rather than a hand-rolled map of
// slices — agents and wall segments are both vertices, and "is a
// candidate for" is exactly a graph edge.
type Neighbourhood struct {
	graph *core.Graph
}

// NewNeighbourhood constructs an empty neighbourhood layer.
func NewNeighbourhood() *Neighbourhood {
	return &Neighbourhood{graph: core.NewGraph()}
}

func agentVertex(agentID int) string { return fmt.Sprintf("a%d", agentID) }
func wallVertex(obstacle, segment int) string { return fmt.Sprintf("w%d_%d", obstacle, segment) }

// Rebuild recomputes every neighbour/neighbour-wall edge from the current
// agent positions. vmax is the model's maximum-speed constant; an
// agent-agent edge exists when centre-to-centre distance is below
// 2·dt·vmax, and an agent-wall edge exists when the point-segment
// distance from the agent's centre to the wall segment is below dt·vmax
// (spec.md §3's travel-bound justification).
func (n *Neighbourhood) Rebuild(world *World, dt, vmax float64) {
	n.graph = core.NewGraph()
	for _, a := range world.Agents {
		n.graph.AddVertex(agentVertex(a.ID))
	}

	agentBound := 2 * dt * vmax
	for i := 0; i < len(world.Agents); i++ {
		ai := world.Agents[i]
		for j := i + 1; j < len(world.Agents); j++ {
			aj := world.Agents[j]
			if vec2.Len(vec2.Sub(ai.Pos, aj.Pos)) < agentBound {
				n.graph.AddEdge(agentVertex(ai.ID), agentVertex(aj.ID), 0)
			}
		}
	}

	wallBound := dt * vmax
	for _, a := range world.Agents {
		av := agentVertex(a.ID)
		for oi := range world.Obstacles {
			o := &world.Obstacles[oi]
			for seg := 0; seg < o.SegmentCount(); seg++ {
				p0, p1 := o.Segment(seg)
				dist, _ := vec2.PointSegmentDistance(a.Pos, p0, p1)
				if dist < wallBound {
					wv := wallVertex(oi, seg)
					n.graph.AddVertex(wv)
					n.graph.AddEdge(av, wv, 0)
				}
			}
		}
	}
}

// AgentNeighbours returns the agent IDs currently adjacent to agentID, in
// ascending numeric order (spec.md §5's deterministic-iteration rule — the
// graph library's own NeighborIDs order is lexical over vertex strings,
// which is not the same thing once IDs reach two digits).
func (n *Neighbourhood) AgentNeighbours(agentID int) []int {
	ids, err := n.graph.NeighborIDs(agentVertex(agentID))
	if err != nil {
		return nil
	}
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id[0] != 'a' {
			continue
		}
		var aid int
		fmt.Sscanf(id, "a%d", &aid)
		out = append(out, aid)
	}
	sort.Ints(out)
	return out
}

// WallNeighbours returns the wall segments currently adjacent to agentID, in
// ascending (obstacle, segment) order.
func (n *Neighbourhood) WallNeighbours(agentID int) []WallRef {
	ids, err := n.graph.NeighborIDs(agentVertex(agentID))
	if err != nil {
		return nil
	}
	out := make([]WallRef, 0, len(ids))
	for _, id := range ids {
		if id[0] != 'w' {
			continue
		}
		var o, s int
		fmt.Sscanf(id, "w%d_%d", &o, &s)
		out = append(out, WallRef{Obstacle: o, Segment: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Obstacle != out[j].Obstacle {
			return out[i].Obstacle < out[j].Obstacle
		}
		return out[i].Segment < out[j].Segment
	})
	return out
}
