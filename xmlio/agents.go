package xmlio

import (
	"encoding/xml"
	"os"

	"github.com/odufour7/granular/granular"
	"github.com/odufour7/granular/vec2"
)

// AgentsFile is the static per-agent identity (spec.md §6):
//
//	<Agents>
//	  <Agent Id=".." Mass=".." MomentOfInertia=".." FloorDamping="ζ_t" AngularDamping="ζ_r">
//	    <Shape MaterialId=".." Radius=".." Position="x,y"/>
//	    ...
//	  </Agent>
//	  ...
//	</Agents>
type AgentsFile struct {
	XMLName xml.Name   `xml:"Agents"`
	Agent   []agentXML `xml:"Agent"`
}

type agentXML struct {
	ID      int        `xml:"Id,attr"`
	Mass    float64    `xml:"Mass,attr"`
	Inertia float64    `xml:"MomentOfInertia,attr"`
	DampT   float64    `xml:"FloorDamping,attr"`
	DampR   float64    `xml:"AngularDamping,attr"`
	Shape   []shapeXML `xml:"Shape"`
}

type shapeXML struct {
	MaterialID int     `xml:"MaterialId,attr"`
	Radius     float64 `xml:"Radius,attr"`
	Position   string  `xml:"Position,attr"`
}

// LoadAgents reads an Agents file and registers every agent's static
// identity into world.
//
// Each Shape's Position is the disc's absolute world-space centre at the
// moment the layout was captured, not a body-frame offset: spec.md §3
// says an agent's per-shape local offsets are measured "from the body
// centre of mass at θ₀", and that θ₀ itself is "derived from the shapes'
// initial layout". Neither the centre of mass nor θ₀ is handed over
// directly on the wire, so both are derived here: the centre of mass is
// the arithmetic mean of the shapes' positions (no per-shape mass is
// given to weight it, only one mass per agent), and θ₀ is fixed at 0 —
// the captured layout itself defines the zero-rotation reference frame,
// so every per-shape offset is simply positionᵢ − centreOfMass (see
// DESIGN.md for the rationale).
//
// world.Finalize must be called once after every LoadAgents call before
// the world can be stepped.
func LoadAgents(world *granular.World, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return malformed("agents: read %s: %w", path, err)
	}
	var af AgentsFile
	if err := xml.Unmarshal(data, &af); err != nil {
		return malformed("agents: parse %s: %w", path, err)
	}
	for _, a := range af.Agent {
		if a.Mass <= 0 || a.Inertia <= 0 {
			return malformed("agents: agent %d must have positive mass and inertia", a.ID)
		}
		if a.DampT <= 0 || a.DampR <= 0 {
			return malformed("agents: agent %d must have positive damping rates", a.ID)
		}
		if len(a.Shape) == 0 {
			return malformed("agents: agent %d has no shapes", a.ID)
		}

		specs := make([]granular.ShapeSpec, len(a.Shape))
		positions := make([]vec2.V, len(a.Shape))
		for i, s := range a.Shape {
			if s.Radius <= 0 {
				return malformed("agents: agent %d shape %d has non-positive radius", a.ID, i)
			}
			pos, err := parseVec2(s.Position)
			if err != nil {
				return err
			}
			specs[i] = granular.ShapeSpec{MaterialID: s.MaterialID, Radius: s.Radius}
			positions[i] = pos
		}

		com := vec2.Zero
		for _, p := range positions {
			com = vec2.Add(com, p)
		}
		com = vec2.Scale(com, 1/float64(len(positions)))

		offsets := make([]vec2.V, len(positions))
		for i, p := range positions {
			offsets[i] = vec2.Sub(p, com)
		}

		const theta0 = 0
		world.AddAgent(a.ID, a.Mass, a.Inertia, theta0, a.DampT, a.DampR, specs, offsets)
	}
	return nil
}
