package xmlio

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/odufour7/granular/granular"
	"github.com/odufour7/granular/vec2"
)

// DynamicsFile is the per-call mutable kinematic state (spec.md §6):
//
//	<Agents>
//	  <Agent Id="..">
//	    <Kinematics Position="x,y" Velocity="vx,vy" theta="θ" omega="ω"/>
//	    <Dynamics Fp="fx,fy" Mp="m"/>
//	  </Agent>
//	  ...
//	</Agents>
//
// The root element name duplicates the static Agents file's, but the two
// are never read within the same call. On output the <Dynamics> child is
// omitted (spec.md §6): Dynamics is a pointer so WriteDynamics can leave
// it nil and have encoding/xml drop it entirely.
type DynamicsFile struct {
	XMLName xml.Name           `xml:"Agents"`
	Agent   []dynamicsAgentXML `xml:"Agent"`
}

type dynamicsAgentXML struct {
	ID         int `xml:"Id,attr"`
	Kinematics struct {
		Position string  `xml:"Position,attr"`
		Velocity string  `xml:"Velocity,attr"`
		Theta    float64 `xml:"theta,attr"`
		Omega    float64 `xml:"omega,attr"`
	} `xml:"Kinematics"`
	Dynamics *dynamicsInputXML `xml:"Dynamics"`
}

type dynamicsInputXML struct {
	Fp string  `xml:"Fp,attr"`
	Mp float64 `xml:"Mp,attr"`
}

// LoadDynamics reads a Dynamics file and writes each agent's mutable
// kinematics and this step's driving input into world. Every agent
// declared in the Agents file must appear exactly once here, and vice
// versa — a mismatch is CountMismatch, not UnknownReference (spec.md §7
// distinguishes "extra/missing declaration" from "dangling reference").
func LoadDynamics(world *granular.World, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return malformed("dynamics: read %s: %w", path, err)
	}
	var df DynamicsFile
	if err := xml.Unmarshal(data, &df); err != nil {
		return malformed("dynamics: parse %s: %w", path, err)
	}
	if len(df.Agent) != len(world.Agents) {
		return countMismatch("dynamics: %d agents declared, %d known to the world", len(df.Agent), len(world.Agents))
	}
	touched := make(map[int]bool, len(df.Agent))
	for _, da := range df.Agent {
		idx, ok := world.AgentIndex(da.ID)
		if !ok {
			return unknownRef("dynamics: agent %d is not declared in the Agents file", da.ID)
		}
		if touched[da.ID] {
			return countMismatch("dynamics: agent %d appears more than once", da.ID)
		}
		touched[da.ID] = true
		if da.Dynamics == nil {
			return malformed("dynamics: agent %d is missing its <Dynamics> driving input", da.ID)
		}

		pos, err := parseVec2(da.Kinematics.Position)
		if err != nil {
			return err
		}
		vel, err := parseVec2(da.Kinematics.Velocity)
		if err != nil {
			return err
		}
		fp, err := parseVec2(da.Dynamics.Fp)
		if err != nil {
			return err
		}
		a := world.Agents[idx]
		a.Pos, a.Theta, a.Vel, a.Omega = pos, da.Kinematics.Theta, vel, da.Kinematics.Omega
		a.Fp, a.Mp = fp, da.Dynamics.Mp
	}
	return nil
}

// WriteDynamics serializes the world's post-step kinematic state, ready
// for the next call to read back. Per spec.md §6 the <Dynamics> child is
// omitted on output — only the committed Kinematics are written.
func WriteDynamics(world *granular.World, path string) error {
	df := DynamicsFile{Agent: make([]dynamicsAgentXML, len(world.Agents))}
	for i, a := range world.Agents {
		df.Agent[i].ID = a.ID
		df.Agent[i].Kinematics.Position = formatVec2(a.Pos)
		df.Agent[i].Kinematics.Velocity = formatVec2(a.Vel)
		df.Agent[i].Kinematics.Theta = a.Theta
		df.Agent[i].Kinematics.Omega = a.Omega
	}
	data, err := xml.MarshalIndent(df, "", "  ")
	if err != nil {
		return fmt.Errorf("dynamics: marshal: %w", err)
	}
	return os.WriteFile(path, append([]byte(xml.Header), data...), 0644)
}

func formatVec2(v vec2.V) string {
	return fmt.Sprintf("%.17g,%.17g", v.X, v.Y)
}
