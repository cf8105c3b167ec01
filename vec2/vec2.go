// Package vec2 provides 2-D vector algebra and geometric predicates needed
// by the granular contact engine: addition, scaling, dot and 2-D cross
// products, rotation, the scalar-cross-vector operator used for rigid-body
// point velocities, and point-to-segment distance.
//
// Package vec2 plays the same role for the granular engine that
// github.com/gazed/vu/math/lin plays for the vu 3D engine: a small,
// dependency-free math layer other packages build on.
package vec2

import "math"

// Epsilon is used to distinguish when a float is close enough to a number.
const Epsilon float64 = 1e-9

// V is a 2 element vector. It is also used as a point.
type V struct {
	X float64
	Y float64
}

// Zero is the additive identity.
var Zero = V{}

// Add returns a+b.
func Add(a, b V) V { return V{a.X + b.X, a.Y + b.Y} }

// Sub returns a-b.
func Sub(a, b V) V { return V{a.X - b.X, a.Y - b.Y} }

// Scale returns a scaled by s.
func Scale(a V, s float64) V { return V{a.X * s, a.Y * s} }

// Neg returns -a.
func Neg(a V) V { return V{-a.X, -a.Y} }

// Dot returns a·b.
func Dot(a, b V) float64 { return a.X*b.X + a.Y*b.Y }

// Cross returns the scalar 2-D cross product a×b = a_x*b_y − a_y*b_x.
func Cross(a, b V) float64 { return a.X*b.Y - a.Y*b.X }

// Len returns the L2 norm of a.
func Len(a V) float64 { return math.Sqrt(Dot(a, a)) }

// LenSqr returns the squared L2 norm of a, avoiding the sqrt.
func LenSqr(a V) float64 { return Dot(a, a) }

// Perp returns a⊥ = (−a_y, a_x), a 90° counter-clockwise rotation of a.
func Perp(a V) V { return V{-a.Y, a.X} }

// Unit returns a scaled to unit length, or Zero if a is (numerically) the
// zero vector.
func Unit(a V) V {
	l := Len(a)
	if l < Epsilon {
		return Zero
	}
	return Scale(a, 1/l)
}

// Rotate returns a rotated counter-clockwise by theta radians.
func Rotate(a V, theta float64) V {
	s, c := math.Sin(theta), math.Cos(theta)
	return V{
		X: c*a.X - s*a.Y,
		Y: s*a.X + c*a.Y,
	}
}

// OmegaCross returns ω⊗v = (−ω·v_y, ω·v_x), the velocity contribution of an
// angular rate ω acting at an offset v from a rotation center — used for
// rigid-body point velocity v_cm + ω⊗d.
func OmegaCross(omega float64, v V) V {
	return V{-omega * v.Y, omega * v.X}
}

// PointSegmentDistance returns the distance from point p to the closest
// point on the segment [a,b], and that closest point. When the projection
// of p onto the line through a,b falls outside [0,1] the closest segment
// endpoint is returned instead.
func PointSegmentDistance(p, a, b V) (dist float64, closest V) {
	ab := Sub(b, a)
	l2 := LenSqr(ab)
	if l2 < Epsilon*Epsilon {
		// degenerate segment: both endpoints coincide.
		return Len(Sub(p, a)), a
	}
	t := Dot(Sub(p, a), ab) / l2
	switch {
	case t < 0:
		t = 0
	case t > 1:
		t = 1
	}
	closest = Add(a, Scale(ab, t))
	return Len(Sub(p, closest)), closest
}

// Atan2 returns atan2(y,x), or 0 if both components are (numerically) zero.
func Atan2(v V) float64 {
	if math.Abs(v.X) < Epsilon && math.Abs(v.Y) < Epsilon {
		return 0
	}
	return math.Atan2(v.Y, v.X)
}

// IsFinite reports whether both components of a are finite (not NaN, not
// ±Inf). The integrator treats any non-finite accumulator as a fatal
// NumericAnomaly.
func IsFinite(a V) bool {
	return !math.IsNaN(a.X) && !math.IsNaN(a.Y) && !math.IsInf(a.X, 0) && !math.IsInf(a.Y, 0)
}
