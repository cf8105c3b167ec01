package xmlio

import (
	"encoding/xml"
	"fmt"
	"os"
	"sort"

	"github.com/odufour7/granular/granular"
	"github.com/odufour7/granular/vec2"
)

// InteractionsFile is the sparse, persisted tangential-contact history
// (spec.md §6):
//
//	<Interactions>
//	  <Agent Id="a">
//	    <Agent Id="b">
//	      <Interaction ParentShape="i" ChildShape="j"
//	                   TangentialRelativeDisplacement="ξx,ξy" Fn="fx,fy" Ft="fx,fy"/>
//	      ...
//	    </Agent>
//	    ...
//	    <Wall ShapeId="i" WallId="o" CornerId="s"
//	          TangentialRelativeDisplacement="ξx,ξy" Fn="fx,fy" Ft="fx,fy"/>
//	    ...
//	  </Agent>
//	  ...
//	</Interactions>
//
// The outer Agent is always the smaller-indexed shape of a contact
// (spec.md §9's canonical orientation); a contact absent from this file
// has no history — it is treated as freshly touching with zero slip.
// Zero-valued Fn/Ft/displacement attributes are omitted on write.
type InteractionsFile struct {
	XMLName xml.Name                `xml:"Interactions"`
	Agent   []interactionsAgentXML `xml:"Agent"`
}

type interactionsAgentXML struct {
	ID    int                         `xml:"Id,attr"`
	Agent []interactionsChildAgentXML `xml:"Agent"`
	Wall  []interactionsWallXML       `xml:"Wall"`
}

type interactionsChildAgentXML struct {
	ID          int                   `xml:"Id,attr"`
	Interaction []interactionsPairXML `xml:"Interaction"`
}

type interactionsPairXML struct {
	ParentShape int    `xml:"ParentShape,attr"`
	ChildShape  int    `xml:"ChildShape,attr"`
	Slip        string `xml:"TangentialRelativeDisplacement,attr,omitempty"`
	Fn          string `xml:"Fn,attr,omitempty"`
	Ft          string `xml:"Ft,attr,omitempty"`
}

type interactionsWallXML struct {
	ShapeID  int    `xml:"ShapeId,attr"`
	WallID   int    `xml:"WallId,attr"`
	CornerID int    `xml:"CornerId,attr"`
	Slip     string `xml:"TangentialRelativeDisplacement,attr,omitempty"`
	Fn       string `xml:"Fn,attr,omitempty"`
	Ft       string `xml:"Ft,attr,omitempty"`
}

// parseVec2OrZero parses the "x,y" coordinate form, treating an omitted
// (empty) attribute as the zero vector — spec.md §6's "zero-valued
// fields are omitted" applies on both read and write.
func parseVec2OrZero(s string) (vec2.V, error) {
	if s == "" {
		return vec2.Zero, nil
	}
	return parseVec2(s)
}

func formatVec2OrEmpty(v vec2.V) string {
	if v == vec2.Zero {
		return ""
	}
	return formatVec2(v)
}

// LoadInteractions reads an AgentInteractions file into hist. A missing
// file is not an error — it is the expected state on an agent's first-ever
// call (spec.md §3) — it simply leaves hist empty. A file that parses as
// XML but fails schema checks is ContactInputCorrupt: the caller is
// expected to log it and proceed with an empty history rather than fail
// the whole call, per spec.md §7.
func LoadInteractions(world *granular.World, hist *granular.History, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return granular.NewStepError(granular.ContactInputCorrupt, "interactions: read %s: %w", path, err)
	}
	var inf InteractionsFile
	if err := xml.Unmarshal(data, &inf); err != nil {
		return granular.NewStepError(granular.ContactInputCorrupt, "interactions: parse %s: %w", path, err)
	}

	var pairs []granular.PairEntry
	var walls []granular.WallEntry
	for _, pa := range inf.Agent {
		for _, ca := range pa.Agent {
			for _, it := range ca.Interaction {
				slip, err := parseVec2OrZero(it.Slip)
				if err != nil {
					return granular.NewStepError(granular.ContactInputCorrupt, "interactions: %w", err)
				}
				pairs = append(pairs, granular.PairEntry{
					AgentI: pa.ID, ShapeI: it.ParentShape,
					AgentJ: ca.ID, ShapeJ: it.ChildShape,
					Slip: slip,
				})
			}
		}
		for _, w := range pa.Wall {
			slip, err := parseVec2OrZero(w.Slip)
			if err != nil {
				return granular.NewStepError(granular.ContactInputCorrupt, "interactions: %w", err)
			}
			walls = append(walls, granular.WallEntry{
				Agent: pa.ID, Shape: w.ShapeID, Obstacle: w.WallID, Segment: w.CornerID, Slip: slip,
			})
		}
	}
	hist.Load(world, pairs, walls)
	return nil
}

// WriteInteractions serializes hist's current output buffer — the
// contacts standing at the end of the call that just completed — nesting
// agent-agent rows under their parent/child agent pair and agent-wall
// rows directly under the parent agent, per spec.md §6.
func WriteInteractions(world *granular.World, hist *granular.History, path string) error {
	byAgent := map[int]*interactionsAgentXML{}
	var order []int
	agentNode := func(id int) *interactionsAgentXML {
		if a, ok := byAgent[id]; ok {
			return a
		}
		a := &interactionsAgentXML{ID: id}
		byAgent[id] = a
		order = append(order, id)
		return a
	}

	for _, e := range hist.PairOutput(world) {
		parent := agentNode(e.AgentI)
		var child *interactionsChildAgentXML
		for i := range parent.Agent {
			if parent.Agent[i].ID == e.AgentJ {
				child = &parent.Agent[i]
				break
			}
		}
		if child == nil {
			parent.Agent = append(parent.Agent, interactionsChildAgentXML{ID: e.AgentJ})
			child = &parent.Agent[len(parent.Agent)-1]
		}
		child.Interaction = append(child.Interaction, interactionsPairXML{
			ParentShape: e.ShapeI, ChildShape: e.ShapeJ,
			Slip: formatVec2OrEmpty(e.Slip), Fn: formatVec2OrEmpty(e.Fn), Ft: formatVec2OrEmpty(e.Ft),
		})
	}
	for _, e := range hist.WallOutput(world) {
		parent := agentNode(e.Agent)
		parent.Wall = append(parent.Wall, interactionsWallXML{
			ShapeID: e.Shape, WallID: e.Obstacle, CornerID: e.Segment,
			Slip: formatVec2OrEmpty(e.Slip), Fn: formatVec2OrEmpty(e.Fn), Ft: formatVec2OrEmpty(e.Ft),
		})
	}

	sort.Ints(order)
	inf := InteractionsFile{Agent: make([]interactionsAgentXML, 0, len(order))}
	for _, id := range order {
		inf.Agent = append(inf.Agent, *byAgent[id])
	}

	data, err := xml.MarshalIndent(inf, "", "  ")
	if err != nil {
		return fmt.Errorf("interactions: marshal: %w", err)
	}
	return os.WriteFile(path, append([]byte(xml.Header), data...), 0644)
}

// WithInteractionsLock holds an exclusive advisory lock on path for the
// duration of fn, so a read-modify-write cycle against the
// AgentInteractions file never interleaves with a concurrent invocation
// against the same file.
func WithInteractionsLock(path string, fn func() error) error {
	lock, err := lockInteractions(path)
	if err != nil {
		return fmt.Errorf("xmlio: %w", err)
	}
	defer lock.unlock()
	return fn()
}
