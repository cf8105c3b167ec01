package granular

import "fmt"

// ErrorKind classifies a failed call per spec.md §7.
type ErrorKind int

const (
	// MalformedInput: an XML file is missing a required tag/attribute, or
	// a coordinate string does not parse as two comma-separated floats.
	MalformedInput ErrorKind = iota
	// UnknownReference: a material or agent identifier referenced from
	// another file is not declared.
	UnknownReference
	// CountMismatch: the Dynamics file does not name the same agent set
	// as the Agents file.
	CountMismatch
	// NumericAnomaly: a NaN or non-finite value was produced while
	// stepping.
	NumericAnomaly
	// ContactInputCorrupt: the AgentInteractions file is syntactically
	// XML but fails schema checks. Recoverable — callers that catch this
	// kind should discard it and proceed with an empty history; Step
	// itself never returns this kind (it never reads the history file;
	// xmlio.LoadInteractions returns it to the caller).
	ContactInputCorrupt
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedInput:
		return "MalformedInput"
	case UnknownReference:
		return "UnknownReference"
	case CountMismatch:
		return "CountMismatch"
	case NumericAnomaly:
		return "NumericAnomaly"
	case ContactInputCorrupt:
		return "ContactInputCorrupt"
	default:
		return "Unknown"
	}
}

// StepError reports why an outer call failed. Input-file errors and
// NumericAnomaly are fatal: domain state is left unmodified and no
// Dynamics/AgentInteractions file is written. ContactInputCorrupt is
// handled internally and never escapes a successful call.
type StepError struct {
	Kind ErrorKind
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("granular: %s: %v", e.Kind, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

func newStepError(kind ErrorKind, format string, args ...any) *StepError {
	return &StepError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// NewStepError builds a StepError of the given kind. Exported for callers
// outside this package — xmlio in particular — that must classify their
// own parse/reference failures the same way Step does.
func NewStepError(kind ErrorKind, format string, args ...any) *StepError {
	return newStepError(kind, format, args...)
}
