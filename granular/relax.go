package granular

import (
	"math"

	"github.com/odufour7/granular/vec2"
)

// relax advances one non-active agent over the full outer step dt by the
// closed-form solution of dv/dt = ζ_t·(v_des − v) (and the rotational
// analogue), rather than the sub-stepped contact integrator (C8,
// spec.md §4.8): an agent with nothing nearby just exponentially relaxes
// toward its driving velocity, no force accumulation or neighbour lookups
// needed.
func relax(a *Agent, dt float64) {
	zt, zr := a.DampT, a.DampR

	decayT := math.Exp(-dt * zt)
	dv := vec2.Sub(a.Vel, a.VDes)
	a.Pos = vec2.Add(a.Pos, vec2.Add(
		vec2.Scale(a.VDes, dt),
		vec2.Scale(dv, (1-decayT)/zt),
	))
	a.Vel = vec2.Add(a.VDes, vec2.Scale(dv, decayT))

	decayR := math.Exp(-dt * zr)
	domega := a.Omega - a.OmegaDes
	dtheta := a.OmegaDes*dt + domega*(1-decayR)/zr
	a.Theta += dtheta
	a.Omega = a.OmegaDes + domega*decayR

	for i := range a.Shapes {
		a.Shapes[i].Offset = vec2.Rotate(a.Shapes[i].Offset, dtheta)
	}
}
