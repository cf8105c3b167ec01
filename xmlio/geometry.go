package xmlio

import (
	"encoding/xml"
	"os"
	"strconv"
	"strings"

	"github.com/odufour7/granular/granular"
	"github.com/odufour7/granular/vec2"
)

// parseVec2 parses the "x,y" coordinate form used throughout these files.
func parseVec2(s string) (vec2.V, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return vec2.Zero, malformed("xmlio: %q is not a comma-separated x,y pair", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return vec2.Zero, malformed("xmlio: %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return vec2.Zero, malformed("xmlio: %q: %w", s, err)
	}
	return vec2.V{X: x, Y: y}, nil
}

// GeometryFile is the set of static polyline wall obstacles (spec.md §6):
//
//	<Geometry>
//	  <Dimensions Lx=".." Ly=".."/>
//	  <Wall MaterialId="..">
//	    <Corner Coordinates="x,y"/>
//	    ...
//	  </Wall>
//	  ...
//	</Geometry>
type GeometryFile struct {
	XMLName    xml.Name `xml:"Geometry"`
	Dimensions struct {
		Lx float64 `xml:"Lx,attr"`
		Ly float64 `xml:"Ly,attr"`
	} `xml:"Dimensions"`
	Wall []wallXML `xml:"Wall"`
}

type wallXML struct {
	MaterialID int         `xml:"MaterialId,attr"`
	Corner     []cornerXML `xml:"Corner"`
}

type cornerXML struct {
	Coordinates string `xml:"Coordinates,attr"`
}

// LoadGeometry reads a Geometry file and registers every wall obstacle.
// The wire format gives walls no identifier of their own; each Wall's
// obstacle ID is its position in document order.
func LoadGeometry(world *granular.World, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return malformed("geometry: read %s: %w", path, err)
	}
	var gf GeometryFile
	if err := xml.Unmarshal(data, &gf); err != nil {
		return malformed("geometry: parse %s: %w", path, err)
	}
	world.Lx, world.Ly = gf.Dimensions.Lx, gf.Dimensions.Ly
	for wi, w := range gf.Wall {
		if len(w.Corner) < 2 {
			return malformed("geometry: wall %d needs at least 2 corners, has %d", wi, len(w.Corner))
		}
		verts := make([]vec2.V, len(w.Corner))
		for i, c := range w.Corner {
			v, err := parseVec2(c.Coordinates)
			if err != nil {
				return err
			}
			verts[i] = v
		}
		world.AddObstacle(granular.Obstacle{ID: wi, Vertices: verts, MaterialID: w.MaterialID})
	}
	return nil
}
