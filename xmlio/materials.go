package xmlio

import (
	"encoding/xml"
	"os"

	"github.com/odufour7/granular/granular"
)

// MaterialsFile is the intrinsic and pairwise material table (spec.md §6):
//
//	<Materials>
//	  <Intrinsic>
//	    <Material Id=".." YoungModulus="E" ShearModulus="G"/>
//	    ...
//	  </Intrinsic>
//	  <Binary>
//	    <Contact Id1=".." Id2=".." GammaNormal=".." GammaTangential=".." KineticFriction=".."/>
//	    ...
//	  </Binary>
//	</Materials>
type MaterialsFile struct {
	XMLName   xml.Name `xml:"Materials"`
	Intrinsic struct {
		Material []materialXML `xml:"Material"`
	} `xml:"Intrinsic"`
	Binary struct {
		Contact []contactXML `xml:"Contact"`
	} `xml:"Binary"`
}

type materialXML struct {
	ID int     `xml:"Id,attr"`
	E  float64 `xml:"YoungModulus,attr"`
	G  float64 `xml:"ShearModulus,attr"`
}

type contactXML struct {
	ID1    int     `xml:"Id1,attr"`
	ID2    int     `xml:"Id2,attr"`
	GammaN float64 `xml:"GammaNormal,attr"`
	GammaT float64 `xml:"GammaTangential,attr"`
	Mu     float64 `xml:"KineticFriction,attr"`
}

// LoadMaterials reads a Materials file and registers every intrinsic
// material and binary contact pair into world.
func LoadMaterials(world *granular.World, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return malformed("materials: read %s: %w", path, err)
	}
	var mf MaterialsFile
	if err := xml.Unmarshal(data, &mf); err != nil {
		return malformed("materials: parse %s: %w", path, err)
	}
	seen := map[int]bool{}
	for _, m := range mf.Intrinsic.Material {
		if m.G == 0 {
			return malformed("materials: material %d has zero shear modulus", m.ID)
		}
		world.AddMaterial(granular.Material{ID: m.ID, E: m.E, G: m.G})
		seen[m.ID] = true
	}
	for _, c := range mf.Binary.Contact {
		if !seen[c.ID1] {
			return unknownRef("materials: binary contact references undeclared material %d", c.ID1)
		}
		if !seen[c.ID2] {
			return unknownRef("materials: binary contact references undeclared material %d", c.ID2)
		}
		world.SetBinary(c.ID1, c.ID2, granular.BinaryMaterial{GammaN: c.GammaN, GammaT: c.GammaT, Mu: c.Mu})
	}
	return nil
}
