package vec2

import (
	"math"
	"testing"
)

func aeq(a, b float64) bool { return math.Abs(a-b) < 1e-9 }
func veq(a, b V) bool       { return aeq(a.X, b.X) && aeq(a.Y, b.Y) }

func TestAddSub(t *testing.T) {
	a, b := V{1, 2}, V{3, -1}
	if want := (V{4, 1}); !veq(Add(a, b), want) {
		t.Errorf("Add(%v,%v) = %v, want %v", a, b, Add(a, b), want)
	}
	if want := (V{-2, 3}); !veq(Sub(a, b), want) {
		t.Errorf("Sub(%v,%v) = %v, want %v", a, b, Sub(a, b), want)
	}
}

func TestDotCross(t *testing.T) {
	a, b := V{1, 0}, V{0, 1}
	if got := Dot(a, b); !aeq(got, 0) {
		t.Errorf("Dot = %v, want 0", got)
	}
	if got := Cross(a, b); !aeq(got, 1) {
		t.Errorf("Cross = %v, want 1", got)
	}
}

func TestPerp(t *testing.T) {
	a := V{1, 0}
	if want := (V{0, 1}); !veq(Perp(a), want) {
		t.Errorf("Perp(%v) = %v, want %v", a, Perp(a), want)
	}
}

func TestRotateQuarterTurn(t *testing.T) {
	a := V{1, 0}
	got := Rotate(a, math.Pi/2)
	if want := (V{0, 1}); !veq(got, want) {
		t.Errorf("Rotate(%v, pi/2) = %v, want %v", a, got, want)
	}
}

func TestOmegaCrossMatchesPointVelocity(t *testing.T) {
	// v_cm + ω⊗d must equal d/dt of a rigid rotation about the origin for d.
	d := V{2, 0}
	omega := 1.5
	got := OmegaCross(omega, d)
	want := V{0, omega * 2}
	if !veq(got, want) {
		t.Errorf("OmegaCross(%v,%v) = %v, want %v", omega, d, got, want)
	}
}

func TestPointSegmentDistanceInterior(t *testing.T) {
	a, b := V{0, 0}, V{10, 0}
	p := V{5, 3}
	dist, closest := PointSegmentDistance(p, a, b)
	if !aeq(dist, 3) {
		t.Errorf("dist = %v, want 3", dist)
	}
	if want := (V{5, 0}); !veq(closest, want) {
		t.Errorf("closest = %v, want %v", closest, want)
	}
}

func TestPointSegmentDistanceClampsToEndpoint(t *testing.T) {
	a, b := V{0, 0}, V{10, 0}
	p := V{-4, 3}
	dist, closest := PointSegmentDistance(p, a, b)
	if !aeq(dist, 5) {
		t.Errorf("dist = %v, want 5", dist)
	}
	if !veq(closest, a) {
		t.Errorf("closest = %v, want %v", closest, a)
	}
}

func TestPointSegmentDistanceDegenerateSegment(t *testing.T) {
	a := V{1, 1}
	dist, closest := PointSegmentDistance(V{4, 5}, a, a)
	if !aeq(dist, 5) {
		t.Errorf("dist = %v, want 5", dist)
	}
	if !veq(closest, a) {
		t.Errorf("closest = %v, want %v", closest, a)
	}
}

func TestUnitOfZeroIsZero(t *testing.T) {
	if got := Unit(Zero); !veq(got, Zero) {
		t.Errorf("Unit(Zero) = %v, want Zero", got)
	}
}

func TestAtan2ZeroVectorIsZero(t *testing.T) {
	if got := Atan2(Zero); got != 0 {
		t.Errorf("Atan2(Zero) = %v, want 0", got)
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(V{1, 2}) {
		t.Errorf("expected finite")
	}
	if IsFinite(V{math.NaN(), 0}) {
		t.Errorf("expected non-finite for NaN")
	}
	if IsFinite(V{math.Inf(1), 0}) {
		t.Errorf("expected non-finite for +Inf")
	}
}
