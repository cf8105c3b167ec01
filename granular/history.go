package granular

import (
	"log/slog"
	"sort"

	"github.com/odufour7/granular/vec2"
)

// pair_key identifies a persisted agent-agent tangential slip entry by the
// two GLOBAL shape indices involved, stored canonically with the smaller
// index first (spec.md §9: "an implementation may unify by storing only
// one canonical (smaller-first) direction and negating on read").
type pair_key struct{ lo, hi int }

// wall_key identifies a persisted agent-wall slip entry.
type wall_key struct {
	shape    int
	obstacle int
	segment  int
}

// Interaction is one output-worthy contact: its tangential slip plus the
// last computed normal/tangential force, as required by the
// AgentInteractions wire format (spec.md §6).
type Interaction struct {
	Slip vec2.V
	Fn   vec2.V
	Ft   vec2.V
}

// History is the persistent tangential-slip store (C7): two keyed
// mappings from (ordered shape pair) and (shape, obstacle, segment) to the
// accumulated tangential relative displacement at that contact, plus the
// matching output-interaction buffer. For an unordered pair {a,b},
// slip[a,b] = -slip[b,a]; any entry whose contact is absent in the
// current sub-step is evicted from both maps.
type History struct {
	pairSlip map[pair_key]vec2.V
	wallSlip map[wall_key]vec2.V

	pairOut map[pair_key]Interaction
	wallOut map[wall_key]Interaction
}

// NewHistory returns an empty slip store, the state used when no
// AgentInteractions file is present on first call (spec.md §3).
func NewHistory() *History {
	return &History{
		pairSlip: map[pair_key]vec2.V{},
		wallSlip: map[wall_key]vec2.V{},
		pairOut:  map[pair_key]Interaction{},
		wallOut:  map[wall_key]Interaction{},
	}
}

func canon(a, b int) (pair_key, bool) {
	if a == b {
		return pair_key{}, false
	}
	if a < b {
		return pair_key{a, b}, true
	}
	return pair_key{b, a}, false
}

// PairSlip returns the tangential slip for the ordered pair (a,b) — i.e.
// "how far a has slid relative to b" from a's point of view — reading
// through the canonical (smaller-first) entry and negating as needed.
func (h *History) PairSlip(a, b int) (vec2.V, bool) {
	key, straight := canon(a, b)
	v, ok := h.pairSlip[key]
	if !ok {
		return vec2.Zero, false
	}
	if straight {
		return v, true
	}
	return vec2.Neg(v), true
}

// SetPairSlip stores the tangential slip for the ordered pair (a,b).
func (h *History) SetPairSlip(a, b int, v vec2.V) {
	key, straight := canon(a, b)
	if straight {
		h.pairSlip[key] = v
	} else {
		h.pairSlip[key] = vec2.Neg(v)
	}
}

// EvictPair removes the slip entry (and any recorded output interaction)
// for the unordered pair {a,b}.
func (h *History) EvictPair(a, b int) {
	key, _ := canon(a, b)
	delete(h.pairSlip, key)
	delete(h.pairOut, key)
}

// WallSlip returns the tangential slip for shape s against obstacle o,
// segment seg.
func (h *History) WallSlip(s, o, seg int) (vec2.V, bool) {
	v, ok := h.wallSlip[wall_key{s, o, seg}]
	return v, ok
}

// SetWallSlip stores the tangential slip for shape s against obstacle o,
// segment seg.
func (h *History) SetWallSlip(s, o, seg int, v vec2.V) {
	h.wallSlip[wall_key{s, o, seg}] = v
}

// EvictWall removes the slip entry (and any recorded output interaction)
// for shape s against obstacle o, segment seg.
func (h *History) EvictWall(s, o, seg int) {
	key := wall_key{s, o, seg}
	delete(h.wallSlip, key)
	delete(h.wallOut, key)
}

// RecordPair stores the interaction to report for the unordered pair
// {a,b}, oriented so Fn/Ft/Slip read "a's contribution against b" when a
// is the smaller shape index (the spec's "ParentShape"). Only the
// smaller-first orientation is ever written to the output buffer; calls
// where a > b are ignored; the transitive-closure rule in the activation
// gate guarantees the smaller-indexed shape is active whenever its
// partner is, so the write always happens from the right side.
func (h *History) RecordPair(a, b int, inter Interaction) {
	if a >= b {
		return
	}
	h.pairOut[pair_key{a, b}] = inter
}

// RecordWall stores the interaction to report for shape s against
// obstacle o, segment seg.
func (h *History) RecordWall(s, o, seg int, inter Interaction) {
	h.wallOut[wall_key{s, o, seg}] = inter
}

// PairEntry is one sparse (agent_i, agent_j, shape_i, shape_j, slip)
// tuple from the AgentInteractions input file.
type PairEntry struct {
	AgentI, AgentJ int
	ShapeI, ShapeJ int // local shape indices within their agent
	Slip           vec2.V
}

// WallEntry is one sparse (agent_i, shape, obstacle, segment, slip) tuple
// from the AgentInteractions input file.
type WallEntry struct {
	Agent    int
	Shape    int // local shape index within the agent
	Obstacle int
	Segment  int
	Slip     vec2.V
}

// Load populates the history from sparse input tuples, resolving
// (agent,local-shape) references into global shape indices via world.
// Malformed references are logged and discarded — the caller is expected
// to have already separated schema-invalid input (ContactInputCorrupt,
// handled upstream by the xmlio loader) from merely stale references.
func (h *History) Load(world *World, pairs []PairEntry, walls []WallEntry) {
	for _, p := range pairs {
		gi, ok := world.GlobalShape(p.AgentI, p.ShapeI)
		if !ok {
			slog.Warn("granular: history load: unknown agent/shape reference, discarding entry",
				"agent", p.AgentI, "shape", p.ShapeI)
			continue
		}
		gj, ok := world.GlobalShape(p.AgentJ, p.ShapeJ)
		if !ok {
			slog.Warn("granular: history load: unknown agent/shape reference, discarding entry",
				"agent", p.AgentJ, "shape", p.ShapeJ)
			continue
		}
		h.SetPairSlip(gi, gj, p.Slip)
	}
	for _, wEntry := range walls {
		gs, ok := world.GlobalShape(wEntry.Agent, wEntry.Shape)
		if !ok {
			slog.Warn("granular: history load: unknown agent/shape reference, discarding entry",
				"agent", wEntry.Agent, "shape", wEntry.Shape)
			continue
		}
		if wEntry.Obstacle < 0 || wEntry.Obstacle >= len(world.Obstacles) {
			slog.Warn("granular: history load: unknown obstacle reference, discarding entry",
				"obstacle", wEntry.Obstacle)
			continue
		}
		h.SetWallSlip(gs, wEntry.Obstacle, wEntry.Segment, wEntry.Slip)
	}
}

// PairOutput walks the current output buffer and returns the unordered
// pair representatives in deterministic (agent, then shape) order, ready
// for XML serialization.
func (h *History) PairOutput(world *World) []PairOutputEntry {
	out := make([]PairOutputEntry, 0, len(h.pairOut))
	for key, inter := range h.pairOut {
		sa := world.Shapes()[key.lo]
		sb := world.Shapes()[key.hi]
		out = append(out, PairOutputEntry{
			AgentI: world.Agents[sa.AgentIdx].ID,
			AgentJ: world.Agents[sb.AgentIdx].ID,
			ShapeI: sa.Local,
			ShapeJ: sb.Local,
			Interaction: inter,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AgentI != out[j].AgentI {
			return out[i].AgentI < out[j].AgentI
		}
		if out[i].AgentJ != out[j].AgentJ {
			return out[i].AgentJ < out[j].AgentJ
		}
		if out[i].ShapeI != out[j].ShapeI {
			return out[i].ShapeI < out[j].ShapeI
		}
		return out[i].ShapeJ < out[j].ShapeJ
	})
	return out
}

// WallOutput walks the current wall-output buffer in deterministic order.
func (h *History) WallOutput(world *World) []WallOutputEntry {
	out := make([]WallOutputEntry, 0, len(h.wallOut))
	for key, inter := range h.wallOut {
		s := world.Shapes()[key.shape]
		out = append(out, WallOutputEntry{
			Agent:       world.Agents[s.AgentIdx].ID,
			Shape:       s.Local,
			Obstacle:    key.obstacle,
			Segment:     key.segment,
			Interaction: inter,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Agent != out[j].Agent {
			return out[i].Agent < out[j].Agent
		}
		if out[i].Shape != out[j].Shape {
			return out[i].Shape < out[j].Shape
		}
		if out[i].Obstacle != out[j].Obstacle {
			return out[i].Obstacle < out[j].Obstacle
		}
		return out[i].Segment < out[j].Segment
	})
	return out
}

// PairOutputEntry is one agent-agent row of the AgentInteractions output.
type PairOutputEntry struct {
	AgentI, AgentJ int
	ShapeI, ShapeJ int
	Interaction
}

// WallOutputEntry is one agent-wall row of the AgentInteractions output.
type WallOutputEntry struct {
	Agent          int
	Shape          int
	Obstacle       int
	Segment        int
	Interaction
}

// HasOutput reports whether any contact survived into this call's output
// buffer. Callers writing the AgentInteractions file use this to honour
// spec.md §6/§8: a call with no contacts at all writes no file (S1, S6).
func (h *History) HasOutput() bool {
	return len(h.pairOut) > 0 || len(h.wallOut) > 0
}

// resetOutputBuffers clears the output buffer at the start of an outer
// call; it is rebuilt fresh from whatever contacts the sub-loop visits
// this call, so a pair that separates does not linger in a stale output.
func (h *History) resetOutputBuffers() {
	h.pairOut = map[pair_key]Interaction{}
	h.wallOut = map[wall_key]Interaction{}
}
