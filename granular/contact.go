package granular

import "github.com/odufour7/granular/vec2"

// agentGeom is the state a shape's owning agent contributes to a contact
// evaluation: its contact-point reference frame and kinematics, either at
// the committed time n (atN) or at the sub-step's trial time (pass B).
type agentGeom struct {
	center vec2.V
	offset vec2.V // agent-COM-to-shape-centre arm, at the evaluated time
	vel    vec2.V
	omega  float64
}

func selfGeom(a *Agent, s *Shape, atN bool) agentGeom {
	if atN {
		return agentGeom{
			center: vec2.Add(a.Pos, s.Offset),
			offset: s.Offset,
			vel:    a.Vel,
			omega:  a.Omega,
		}
	}
	rot := vec2.Rotate(s.Offset, a.trialTheta-a.Theta)
	return agentGeom{
		center: vec2.Add(a.trialPos, rot),
		offset: rot,
		vel:    a.trialVel,
		omega:  a.trialOmega,
	}
}

// resolveShape computes the total contact force/torque contribution on one
// shape from every candidate agent-agent and agent-wall contact currently
// in its neighbourhood (C5, spec.md §4.5). atN selects which of the two
// resolver calls within one mechanical sub-step this is: true for the
// pass-A call at the committed state, false for the pass-B call against
// the trial state computed by the integrator. Returns contributions in
// raw force/torque units; the integrator scales by 1/m, 1/I before summing
// into an agent's accumulators.
func resolveShape(world *World, hist *History, neigh *Neighbourhood, gi int, atN bool, dtMech float64) (fn, ft vec2.V, tau float64) {
	shapes := world.Shapes()
	self := shapes[gi]
	selfAgent := world.Agents[self.AgentIdx]
	sg := selfGeom(selfAgent, self, atN)

	for _, otherID := range neigh.AgentNeighbours(selfAgent.ID) {
		oi, ok := world.AgentIndex(otherID)
		if !ok {
			continue
		}
		other := world.Agents[oi]
		for li := range other.Shapes {
			s2 := &other.Shapes[li]
			gj, ok := world.GlobalShape(other.ID, li)
			if !ok {
				continue
			}
			og := selfGeom(other, s2, atN)
			dfn, dft, dtau := resolvePair(world, hist, gi, gj, self, s2, sg, og, dtMech)
			fn = vec2.Add(fn, dfn)
			ft = vec2.Add(ft, dft)
			tau += dtau
		}
	}

	for _, w := range neigh.WallNeighbours(selfAgent.ID) {
		dfn, dft, dtau := resolveWall(world, hist, gi, self, sg, w, dtMech)
		fn = vec2.Add(fn, dfn)
		ft = vec2.Add(ft, dft)
		tau += dtau
	}

	return fn, ft, tau
}

// resolvePair resolves the single shape-pair contact (gi,gj) and, when the
// pair indents, records it to the output buffer from the smaller-indexed
// side (spec.md §4.5, §9).
func resolvePair(world *World, hist *History, gi, gj int, self, other *Shape, sg, og agentGeom, dtMech float64) (fn, ft vec2.V, tau float64) {
	d := vec2.Sub(sg.center, og.center)
	dist := vec2.Len(d)
	h := self.Radius + other.Radius - dist
	if h <= 0 {
		hist.EvictPair(gi, gj)
		return vec2.Zero, vec2.Zero, 0
	}
	n := vec2.Unit(d)

	dcSelf := vec2.Add(sg.offset, vec2.Scale(n, h/2-self.Radius))
	dcOther := vec2.Add(og.offset, vec2.Scale(n, -(h/2 - other.Radius)))

	vSelf := vec2.Add(sg.vel, vec2.OmegaCross(sg.omega, dcSelf))
	vOther := vec2.Add(og.vel, vec2.OmegaCross(og.omega, dcOther))
	vRel := vec2.Sub(vSelf, vOther)
	vn := vec2.Scale(n, vec2.Dot(vRel, n))
	vt := vec2.Sub(vRel, vn)

	bin, ok := world.BinaryFor(self.MaterialID, other.MaterialID)
	if !ok {
		return vec2.Zero, vec2.Zero, 0
	}
	kn, kt, ok := world.StiffnessFor(self.MaterialID, other.MaterialID)
	if !ok {
		return vec2.Zero, vec2.Zero, 0
	}

	prev, _ := hist.PairSlip(gi, gj)
	slip := advanceSlip(prev, n, vt, dtMech)

	fN := vec2.Sub(vec2.Scale(n, kn*h), vec2.Scale(vn, bin.GammaN))
	fT, clamped := coulombTangent(slip, vt, kt, bin.GammaT, bin.Mu, vec2.Len(fN))
	if clamped != nil {
		slip = *clamped
	}
	hist.SetPairSlip(gi, gj, slip)
	hist.RecordPair(gi, gj, Interaction{Slip: slip, Fn: fN, Ft: fT})

	total := vec2.Add(fN, fT)
	tau = vec2.Cross(dcSelf, total)
	return fN, fT, tau
}

// resolveWall resolves the single shape-wall-segment contact.
func resolveWall(world *World, hist *History, gi int, self *Shape, sg agentGeom, w WallRef, dtMech float64) (fn, ft vec2.V, tau float64) {
	o := &world.Obstacles[w.Obstacle]
	p0, p1 := o.Segment(w.Segment)
	dist, closest := vec2.PointSegmentDistance(sg.center, p0, p1)
	h := self.Radius - dist
	if h <= 0 {
		hist.EvictWall(gi, w.Obstacle, w.Segment)
		return vec2.Zero, vec2.Zero, 0
	}
	n := vec2.Unit(vec2.Sub(sg.center, closest))

	dcSelf := vec2.Add(sg.offset, vec2.Scale(n, h/2-self.Radius))
	vSelf := vec2.Add(sg.vel, vec2.OmegaCross(sg.omega, dcSelf))
	vt := vec2.Sub(vSelf, vec2.Scale(n, vec2.Dot(vSelf, n)))

	bin, ok := world.BinaryFor(self.MaterialID, o.MaterialID)
	if !ok {
		return vec2.Zero, vec2.Zero, 0
	}
	kn, kt, ok := world.StiffnessFor(self.MaterialID, o.MaterialID)
	if !ok {
		return vec2.Zero, vec2.Zero, 0
	}

	prev, _ := hist.WallSlip(gi, w.Obstacle, w.Segment)
	slip := advanceSlip(prev, n, vt, dtMech)

	fN := vec2.Sub(vec2.Scale(n, kn*h), vec2.Scale(vec2.Scale(n, vec2.Dot(vSelf, n)), bin.GammaN))
	fT, clamped := coulombTangent(slip, vt, kt, bin.GammaT, bin.Mu, vec2.Len(fN))
	if clamped != nil {
		slip = *clamped
	}
	hist.SetWallSlip(gi, w.Obstacle, w.Segment, slip)
	hist.RecordWall(gi, w.Obstacle, w.Segment, Interaction{Slip: slip, Fn: fN, Ft: fT})

	total := vec2.Add(fN, fT)
	tau = vec2.Cross(dcSelf, total)
	return fN, fT, tau
}

// advanceSlip rotates the previous tangential slip onto the current
// tangential plane and advances it by one sub-step of relative tangential
// velocity (spec.md §4.5's slip-rotation rule).
func advanceSlip(prev, n, vt vec2.V, dt float64) vec2.V {
	perp := vec2.Sub(prev, vec2.Scale(n, vec2.Dot(prev, n)))
	rotated := perp
	if pl, ol := vec2.Len(perp), vec2.Len(prev); pl > vec2.Epsilon && ol > vec2.Epsilon {
		rotated = vec2.Scale(perp, ol/pl)
	}
	return vec2.Add(rotated, vec2.Scale(vt, dt))
}

// coulombTangent applies the spring-dashpot tangential law with a Coulomb
// cap. It returns the force to use and, when the cap engaged, the slip
// value consistent with that capped force (nil otherwise, meaning the
// uncapped slip already passed in by the caller stands).
func coulombTangent(slip, vt vec2.V, kt, gammaT, mu, fnMag float64) (vec2.V, *vec2.V) {
	stick := vec2.Sub(vec2.Scale(slip, -kt), vec2.Scale(vt, gammaT))
	limit := mu * fnMag
	mag := vec2.Len(stick)
	if mag <= limit || mag < vec2.Epsilon {
		return stick, nil
	}
	dir := vec2.Unit(stick)
	capped := vec2.Scale(dir, limit)
	clampedSlip := vec2.Scale(vec2.Add(vec2.Scale(dir, limit), vec2.Scale(vt, gammaT)), -1/kt)
	return capped, &clampedSlip
}
