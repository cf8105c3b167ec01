package granular

import (
	"math"
	"testing"

	"github.com/odufour7/granular/vec2"
)

func aeq(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestStiffnessFormulas(t *testing.T) {
	a := Material{ID: 1, E: 2e7, G: 8e6}
	b := Material{ID: 2, E: 3e7, G: 1e7}
	kn := normalStiffness(a, b)
	kt := tangentialStiffness(a, b)
	if kn <= 0 || kt <= 0 {
		t.Fatalf("expected positive stiffnesses, got kn=%v kt=%v", kn, kt)
	}
	// Symmetric in its arguments.
	if got := normalStiffness(b, a); !aeq(got, kn) {
		t.Errorf("normalStiffness not symmetric: %v vs %v", got, kn)
	}
	if got := tangentialStiffness(b, a); !aeq(got, kt) {
		t.Errorf("tangentialStiffness not symmetric: %v vs %v", got, kt)
	}
}

func TestDeriveDesired(t *testing.T) {
	a := &Agent{Mass: 80, Inertia: 4, DampT: 2, DampR: 3}
	a.Fp = vec2.V{X: 160, Y: 0} // drives toward +x
	a.Mp = 6
	a.DeriveDesired()

	wantV := 1.0 // Fp*tauT/m = 160*(0.5)/80
	if !aeq(a.VDes.X, wantV) || !aeq(a.VDes.Y, 0) {
		t.Errorf("VDes = %v, want {%v 0}", a.VDes, wantV)
	}
	wantOmega := a.Mp * (1 / a.DampR) / a.Inertia
	if !aeq(a.OmegaDes, wantOmega) {
		t.Errorf("OmegaDes = %v, want %v", a.OmegaDes, wantOmega)
	}
	if !aeq(a.ThetaDes, 0) {
		t.Errorf("ThetaDes = %v, want 0 (VDes along +x)", a.ThetaDes)
	}
}

func TestAddAgentBoundingRadius(t *testing.T) {
	w := NewWorld()
	w.AddMaterial(Material{ID: 1, E: 1e7, G: 1e6})
	shapes := []ShapeSpec{{MaterialID: 1, Radius: 0.2}, {MaterialID: 1, Radius: 0.25}}
	offsets := []vec2.V{{X: 0.1, Y: 0}, {X: -0.1, Y: 0}}
	w.AddAgent(1, 80, 4, 0, 2, 3, shapes, offsets)
	a := w.Agents[0]
	want := 0.35 // |(-0.1,0)| + 0.25
	if !aeq(a.BoundingRadius, want) {
		t.Errorf("BoundingRadius = %v, want %v", a.BoundingRadius, want)
	}
}

func TestFinalizeGlobalShapeIndices(t *testing.T) {
	w := NewWorld()
	w.AddMaterial(Material{ID: 1, E: 1e7, G: 1e6})
	shapes := []ShapeSpec{{MaterialID: 1, Radius: 0.2}}
	offsets := []vec2.V{{}}
	w.AddAgent(1, 80, 4, 0, 2, 3, shapes, offsets)
	w.AddAgent(2, 80, 4, 0, 2, 3, shapes, offsets)
	w.Finalize()

	g0, ok := w.GlobalShape(1, 0)
	if !ok || g0 != 0 {
		t.Errorf("GlobalShape(1,0) = (%v,%v), want (0,true)", g0, ok)
	}
	g1, ok := w.GlobalShape(2, 0)
	if !ok || g1 != 1 {
		t.Errorf("GlobalShape(2,0) = (%v,%v), want (1,true)", g1, ok)
	}
	if _, ok := w.GlobalShape(99, 0); ok {
		t.Errorf("GlobalShape for unknown agent should fail")
	}
	if len(w.Shapes()) != 2 {
		t.Errorf("Shapes() len = %d, want 2", len(w.Shapes()))
	}
}

func TestBinKeyOrderIndependent(t *testing.T) {
	if binKey(1, 2) != binKey(2, 1) {
		t.Errorf("binKey should be order-independent")
	}
}
