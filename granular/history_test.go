package granular

import (
	"testing"

	"github.com/odufour7/granular/vec2"
)

func TestPairSlipCanonicalSignFlip(t *testing.T) {
	h := NewHistory()
	h.SetPairSlip(5, 2, vec2.V{X: 1, Y: 2})

	got, ok := h.PairSlip(5, 2)
	if !ok || !veq(got, vec2.V{X: 1, Y: 2}) {
		t.Fatalf("PairSlip(5,2) = %v,%v, want {1 2},true", got, ok)
	}
	got, ok = h.PairSlip(2, 5)
	if !ok || !veq(got, vec2.V{X: -1, Y: -2}) {
		t.Fatalf("PairSlip(2,5) = %v,%v, want {-1 -2},true", got, ok)
	}
}

func veq(a, b vec2.V) bool { return aeq(a.X, b.X) && aeq(a.Y, b.Y) }

func TestPairSlipUnknownIsZero(t *testing.T) {
	h := NewHistory()
	v, ok := h.PairSlip(1, 2)
	if ok {
		t.Fatalf("expected no entry, got %v", v)
	}
	if v != vec2.Zero {
		t.Fatalf("expected Zero for missing entry, got %v", v)
	}
}

func TestEvictPairRemovesBothSlipAndOutput(t *testing.T) {
	h := NewHistory()
	h.SetPairSlip(1, 2, vec2.V{X: 1})
	h.RecordPair(1, 2, Interaction{Slip: vec2.V{X: 1}})
	h.EvictPair(2, 1)
	if _, ok := h.PairSlip(1, 2); ok {
		t.Errorf("slip entry should be gone after EvictPair")
	}
	if len(h.pairOut) != 0 {
		t.Errorf("output entry should be gone after EvictPair")
	}
}

func TestRecordPairOnlyWritesFromSmallerSide(t *testing.T) {
	h := NewHistory()
	h.RecordPair(5, 2, Interaction{Slip: vec2.V{X: 1}})
	if len(h.pairOut) != 0 {
		t.Errorf("RecordPair(5,2) should be a no-op since 5 > 2")
	}
	h.RecordPair(2, 5, Interaction{Slip: vec2.V{X: 1}})
	if len(h.pairOut) != 1 {
		t.Errorf("RecordPair(2,5) should record since 2 < 5")
	}
}

func TestWallSlipRoundtrip(t *testing.T) {
	h := NewHistory()
	h.SetWallSlip(3, 0, 1, vec2.V{X: 0.5, Y: -0.2})
	got, ok := h.WallSlip(3, 0, 1)
	if !ok || !veq(got, vec2.V{X: 0.5, Y: -0.2}) {
		t.Fatalf("WallSlip = %v,%v, want {0.5 -0.2},true", got, ok)
	}
	h.EvictWall(3, 0, 1)
	if _, ok := h.WallSlip(3, 0, 1); ok {
		t.Errorf("slip entry should be gone after EvictWall")
	}
}

func TestLoadDiscardsUnknownReferences(t *testing.T) {
	w := NewWorld()
	w.AddMaterial(Material{ID: 1, E: 1e7, G: 1e6})
	shapes := []ShapeSpec{{MaterialID: 1, Radius: 0.2}}
	offsets := []vec2.V{{}}
	w.AddAgent(1, 80, 4, 0, 2, 3, shapes, offsets)
	w.Finalize()

	h := NewHistory()
	h.Load(w, []PairEntry{{AgentI: 1, ShapeI: 0, AgentJ: 99, ShapeJ: 0, Slip: vec2.V{X: 1}}}, nil)
	if len(h.pairSlip) != 0 {
		t.Errorf("entry referencing unknown agent 99 should be discarded")
	}
}

func TestPairOutputDeterministicOrder(t *testing.T) {
	w := NewWorld()
	w.AddMaterial(Material{ID: 1, E: 1e7, G: 1e6})
	shapes := []ShapeSpec{{MaterialID: 1, Radius: 0.2}}
	offsets := []vec2.V{{}}
	for id := 3; id >= 1; id-- {
		w.AddAgent(id, 80, 4, 0, 2, 3, shapes, offsets)
	}
	w.Finalize()

	h := NewHistory()
	g1, _ := w.GlobalShape(1, 0)
	g2, _ := w.GlobalShape(2, 0)
	g3, _ := w.GlobalShape(3, 0)
	h.RecordPair(min(g2, g3), max(g2, g3), Interaction{})
	h.RecordPair(min(g1, g2), max(g1, g2), Interaction{})

	out := h.PairOutput(w)
	if len(out) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(out))
	}
	// Agents were registered 3,2,1, so agent 3 owns global shape 0 and
	// the parent of each pair (the smaller global shape index) is the
	// agent with the larger ID.
	if out[0].AgentI != 2 || out[0].AgentJ != 1 {
		t.Errorf("expected (2,1) first, got (%d,%d)", out[0].AgentI, out[0].AgentJ)
	}
	if out[1].AgentI != 3 || out[1].AgentJ != 2 {
		t.Errorf("expected (3,2) second, got (%d,%d)", out[1].AgentI, out[1].AgentJ)
	}
}
