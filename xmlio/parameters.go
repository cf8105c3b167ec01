// Package xmlio reads and writes the XML files a granular-step
// invocation is built from: the five inputs Parameters, Materials,
// Geometry, Agents and Dynamics, plus the AgentInteractions history. Every loader returns a granular
// package error (via the granular.StepError kinds) rather than a bare
// encoding/xml error, so a caller can tell MalformedInput apart from
// UnknownReference without string-matching.
package xmlio

import (
	"encoding/xml"
	"os"

	"github.com/odufour7/granular/granular"
)

// ParametersFile is the top-level per-run wiring (spec.md §6):
//
//	<Parameters>
//	  <Times TimeStep="dt" TimeStepMechanical="dt_mech"/>
//	  <Directories Static="..." Dynamic="..."/>
//	</Parameters>
//
// VMax and the activation gate's tolerances are model constants (spec.md
// §3/§4.4), not Parameters wire fields — those come from the optional
// internal/config tuning file instead.
type ParametersFile struct {
	XMLName xml.Name `xml:"Parameters"`
	Times   struct {
		TimeStep           float64 `xml:"TimeStep,attr"`
		TimeStepMechanical float64 `xml:"TimeStepMechanical,attr"`
	} `xml:"Times"`
	Directories struct {
		Static  string `xml:"Static,attr"`
		Dynamic string `xml:"Dynamic,attr"`
	} `xml:"Directories"`
}

// Parameters is the decoded form of a Parameters file.
type Parameters struct {
	Dt, DtMech float64
	StaticDir  string
	DynamicDir string
}

// LoadParameters reads a Parameters file.
func LoadParameters(path string) (Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Parameters{}, malformed("parameters: read %s: %w", path, err)
	}
	var pf ParametersFile
	if err := xml.Unmarshal(data, &pf); err != nil {
		return Parameters{}, malformed("parameters: parse %s: %w", path, err)
	}
	if pf.Times.TimeStep <= 0 || pf.Times.TimeStepMechanical <= 0 {
		return Parameters{}, malformed("parameters: Times/TimeStep and Times/TimeStepMechanical must both be positive")
	}
	return Parameters{
		Dt:         pf.Times.TimeStep,
		DtMech:     pf.Times.TimeStepMechanical,
		StaticDir:  pf.Directories.Static,
		DynamicDir: pf.Directories.Dynamic,
	}, nil
}

func malformed(format string, args ...any) error {
	return granular.NewStepError(granular.MalformedInput, format, args...)
}

func unknownRef(format string, args ...any) error {
	return granular.NewStepError(granular.UnknownReference, format, args...)
}

func countMismatch(format string, args ...any) error {
	return granular.NewStepError(granular.CountMismatch, format, args...)
}
