// Package granular is a real-time simulation of pedestrian contact
// mechanics. It advances a population of rigid, multi-disc agents under
// driving forces, mutual contacts, and contacts with polyline obstacles.
//
// Package granular was distilled from a C++ crowd-dynamics engine
// (odufour7/Shape). Its internal functions keep the spec's component
// labels (C1–C8) in their doc comments so the mapping back to the
// numerical model stays traceable, the same way github.com/gazed/vu's
// physics package keeps the file/function names of the C++ engine it was
// ported from:
//
//	vec2              : C1, vector primitives
//	domain.go         : C2, agents / shapes / obstacles / materials
//	neighbours.go     : C3, neighbourhood layer
//	activation.go     : C4, activation gate
//	contact.go        : C5, contact resolver
//	integrator.go     : C6, velocity-Verlet integrator
//	history.go        : C7, tangential-slip history store
//	relax.go          : C8, non-active (analytic relaxation) path
package granular

import "github.com/odufour7/granular/vec2"

// Material holds the intrinsic scalars of one material.
type Material struct {
	ID int
	E  float64 // Young's modulus
	G  float64 // shear modulus
}

// BinaryMaterial holds the pairwise scalars between two materials.
type BinaryMaterial struct {
	GammaN float64 // normal damping
	GammaT float64 // tangential damping
	Mu     float64 // sliding (Coulomb) friction coefficient
}

// normalStiffness computes k_n(i,j) per spec.md §3.
func normalStiffness(a, b Material) float64 {
	return 1 / ((4*a.G-a.E)/(4*a.G*a.G) + (4*b.G-b.E)/(4*b.G*b.G))
}

// tangentialStiffness computes k_t(i,j) per spec.md §3.
func tangentialStiffness(a, b Material) float64 {
	return 1 / ((6*a.G-a.E)/(8*a.G*a.G) + (6*b.G-b.E)/(8*b.G*b.G))
}

// ShapeSpec is the immutable per-shape identity welded to one agent: its
// material and radius. The local offset is mutable — see Shape.
type ShapeSpec struct {
	MaterialID int
	Radius     float64
}

// Shape is a disc rigidly attached to one agent. World holds shapes in a
// flat, owning slice; AgentIdx/Local are indices, never pointers, per the
// "owning storage indexed by identifier" design note.
type Shape struct {
	AgentIdx int // index into World.Agents
	Local    int // index into the owning agent's Shapes slice

	MaterialID int
	Radius     float64

	// Offset is the shape's current offset from its agent's centre of
	// mass, rotated from the agent's reference layout. It starts as
	// R(θ0−θ0)·δ = δ and is advanced in place once per mechanical
	// sub-step (integrator.go), not recomputed from θ0 each time.
	Offset vec2.V

	// InitialOffset is δ_i, the offset at the agent's initial θ0, the
	// reference RotatedOffset rotates from; never mutated after
	// construction.
	InitialOffset vec2.V
}

// Agent is a rigid 2-D body made of one or more welded discs.
type Agent struct {
	ID int

	Shapes []Shape // this agent's shapes, local index == slice index

	Mass           float64
	Inertia        float64
	Theta0         float64 // initial body orientation
	DampT          float64 // ζ_t = 1/τ_t, translational damping rate
	DampR          float64 // ζ_r = 1/τ_r, rotational damping rate
	BoundingRadius float64 // max_i |δ_i| + r_argmax

	// Mutable kinematics, overwritten every call from the Dynamics file.
	Pos   vec2.V
	Theta float64
	Vel   vec2.V
	Omega float64

	// Per-step driving input, fixed for the whole outer step.
	Fp vec2.V
	Mp float64

	// Desired kinematics, derived from Fp/Mp on load (spec.md §3, §9):
	// v_des = Fp·τ_t/m, ω_des = Mp·τ_r/I, θ_des = atan2(v_des) or 0.
	VDes     vec2.V
	OmegaDes float64
	ThetaDes float64

	// active is set by the activation gate (C4) each outer call.
	active bool

	// trial* hold the predicted state during a mechanical sub-step
	// (integrator.go pass B); committed back into Pos/Vel/Theta/Omega
	// once the sub-step's kick completes.
	trialPos   vec2.V
	trialTheta float64
	trialVel   vec2.V
	trialOmega float64

	// accumulators for one mechanical sub-step's forces/torque, reset at
	// the start of each sub-step (integrator.go step 1).
	accFn, accFt vec2.V
	accTau       float64
}

// DeriveDesired recomputes VDes/OmegaDes/ThetaDes from Fp/Mp. Called once
// per outer step after the Dynamics file is loaded — the Dynamics file's
// Fp is the authoritative input; any stored v_des is derived (spec.md §9).
func (a *Agent) DeriveDesired() {
	tauT := 1 / a.DampT
	tauR := 1 / a.DampR
	a.VDes = vec2.Scale(a.Fp, tauT/a.Mass)
	a.OmegaDes = a.Mp * tauR / a.Inertia
	a.ThetaDes = vec2.Atan2(a.VDes)
}

// ShapeCenter returns the shape's current world-space centre.
func (w *World) ShapeCenter(s *Shape) vec2.V {
	return vec2.Add(w.Agents[s.AgentIdx].Pos, s.Offset)
}

// Obstacle is a polyline: a sequence of wall segments between consecutive
// vertices, all sharing one material.
type Obstacle struct {
	ID         int
	Vertices   []vec2.V
	MaterialID int
}

// Segment returns the i'th wall segment's endpoints. Valid for
// i in [0, len(Vertices)-2].
func (o *Obstacle) Segment(i int) (a, b vec2.V) {
	return o.Vertices[i], o.Vertices[i+1]
}

// SegmentCount returns the number of wall segments in the obstacle.
func (o *Obstacle) SegmentCount() int {
	if len(o.Vertices) < 2 {
		return 0
	}
	return len(o.Vertices) - 1
}

// World owns all static and mutable domain state for one simulation.
// Agents and shapes are created once from the static inputs and persist
// for the process lifetime; per-call dynamics overwrite their mutable
// fields (spec.md §3 "Lifecycle").
type World struct {
	Agents    []*Agent
	Obstacles []Obstacle

	// Lx, Ly are the domain's nominal bounding dimensions, carried over
	// from the Geometry file's <Dimensions> element (spec.md §6). The
	// mechanics core never consults them; they exist so a caller that
	// round-trips or inspects a World has the full static picture.
	Lx, Ly float64

	Materials map[int]Material
	Binary    map[binaryKey]BinaryMaterial

	agentIndex  map[int]int   // agent ID -> index into Agents
	shapeGlobal []*Shape      // flat view across all agents, built by Finalize
	globalOf    map[int][]int // agent ID -> local shape index -> global shape index
}

type binaryKey struct{ a, b int }

// binKey builds an order-independent key for a pair of material IDs.
func binKey(a, b int) binaryKey {
	if a > b {
		a, b = b, a
	}
	return binaryKey{a, b}
}

// NewWorld builds an (initially empty) domain from static inputs.
func NewWorld() *World {
	return &World{
		Materials:  map[int]Material{},
		Binary:     map[binaryKey]BinaryMaterial{},
		agentIndex: map[int]int{},
	}
}

// AddMaterial registers an intrinsic material.
func (w *World) AddMaterial(m Material) { w.Materials[m.ID] = m }

// SetBinary registers the pairwise scalars for materials a,b. The table
// must be symmetric; SetBinary stores it order-independently so a single
// call covers both (a,b) and (b,a) lookups.
func (w *World) SetBinary(a, b int, bm BinaryMaterial) {
	w.Binary[binKey(a, b)] = bm
}

// BinaryFor looks up the pairwise scalars for materials a,b.
func (w *World) BinaryFor(a, b int) (BinaryMaterial, bool) {
	bm, ok := w.Binary[binKey(a, b)]
	return bm, ok
}

// StiffnessFor returns (k_n, k_t) for a contact between materials a, b.
func (w *World) StiffnessFor(a, b int) (kn, kt float64, ok bool) {
	ma, aok := w.Materials[a]
	mb, bok := w.Materials[b]
	if !aok || !bok {
		return 0, 0, false
	}
	return normalStiffness(ma, mb), tangentialStiffness(ma, mb), true
}

// AddAgent registers a new agent from static inputs: mass, inertia,
// damping rates, and shapes with their offsets at the agent's initial
// orientation theta0. BoundingRadius and per-shape Offset/InitialOffset
// are derived here.
func (w *World) AddAgent(id int, mass, inertia, theta0, dampT, dampR float64, shapes []ShapeSpec, offsets []vec2.V) int {
	idx := len(w.Agents)
	a := &Agent{
		ID:      id,
		Mass:    mass,
		Inertia: inertia,
		Theta0:  theta0,
		DampT:   dampT,
		DampR:   dampR,
	}
	bound := 0.0
	a.Shapes = make([]Shape, len(shapes))
	for i, sp := range shapes {
		a.Shapes[i] = Shape{
			AgentIdx:      idx,
			Local:         i,
			MaterialID:    sp.MaterialID,
			Radius:        sp.Radius,
			Offset:        offsets[i],
			InitialOffset: offsets[i],
		}
		if r := vec2.Len(offsets[i]) + sp.Radius; r > bound {
			bound = r
		}
	}
	a.BoundingRadius = bound
	w.Agents = append(w.Agents, a)
	w.agentIndex[id] = idx
	return idx
}

// Finalize must be called once all agents have been registered with
// AddAgent, before the first Step. It builds the flat global shape index
// that the contact resolver, history store and neighbourhood layer
// address shapes by. Calling AddAgent again after Finalize invalidates
// the shape pointers it handed out.
func (w *World) Finalize() {
	w.shapeGlobal = w.shapeGlobal[:0]
	w.globalOf = map[int][]int{}
	for _, a := range w.Agents {
		locals := make([]int, len(a.Shapes))
		for i := range a.Shapes {
			locals[i] = len(w.shapeGlobal)
			w.shapeGlobal = append(w.shapeGlobal, &a.Shapes[i])
		}
		w.globalOf[a.ID] = locals
	}
}

// Shapes returns the flat, global view of every shape in the world, valid
// after Finalize.
func (w *World) Shapes() []*Shape { return w.shapeGlobal }

// GlobalShape resolves an (agent ID, local shape index) reference — the
// form used by the Agents/Dynamics/AgentInteractions XML files — into a
// global shape index, valid after Finalize.
func (w *World) GlobalShape(agentID, local int) (int, bool) {
	locals, ok := w.globalOf[agentID]
	if !ok || local < 0 || local >= len(locals) {
		return 0, false
	}
	return locals[local], true
}

// AgentIndex returns the slice index of the agent with the given stable
// identifier, and whether it was found.
func (w *World) AgentIndex(id int) (int, bool) {
	idx, ok := w.agentIndex[id]
	return idx, ok
}

// AddObstacle registers a polyline obstacle.
func (w *World) AddObstacle(o Obstacle) { w.Obstacles = append(w.Obstacles, o) }

// RotatedOffset returns R(theta-theta0)·delta_i for shape local index i
// of agent a, using the agent's current Theta. This is a read-only query
// computed from InitialOffset; the stepping code does not call it and
// reads Shape.Offset, which is updated incrementally, instead.
func (a *Agent) RotatedOffset(i int) vec2.V {
	return vec2.Rotate(a.Shapes[i].InitialOffset, a.Theta-a.Theta0)
}
