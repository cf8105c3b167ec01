// Package config loads the optional engine-tuning file: a small yaml
// document overriding the default contact-model constants (travel-bound
// speed, activation tolerance, activation velocity-gap threshold). Most
// deployments never need one and run on Defaults(). The mechanical and
// outer time steps are not tuning knobs — they are Parameters wire
// fields (spec.md §6) loaded by xmlio, not this package.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/odufour7/granular/granular"
)

// Tuning holds the model constants an operator may want to override per
// deployment without touching the per-call XML inputs.
type Tuning struct {
	VMax              float64 `yaml:"v_max"`
	ActivationEpsilon float64 `yaml:"activation_epsilon"`
	VelThreshold      float64 `yaml:"velocity_threshold"`
}

// Defaults returns the reference tuning from spec.md §3/§4.4/§8.
func Defaults() Tuning {
	ap := granular.DefaultActivationParams()
	return Tuning{
		VMax:              7.0,
		ActivationEpsilon: ap.Epsilon,
		VelThreshold:      ap.VelThresholdSqr,
	}
}

// Load reads a yaml tuning file, falling back to Defaults() for any field
// the file leaves at zero. A missing file is not an error: Load returns
// Defaults() unchanged.
func Load(path string) (Tuning, error) {
	t := Defaults()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return t, nil
	}
	if err != nil {
		return t, fmt.Errorf("config: read %s: %w", path, err)
	}
	var override Tuning
	if err := yaml.Unmarshal(data, &override); err != nil {
		return t, fmt.Errorf("config: yaml %s: %w", path, err)
	}
	if override.VMax != 0 {
		t.VMax = override.VMax
	}
	if override.ActivationEpsilon != 0 {
		t.ActivationEpsilon = override.ActivationEpsilon
	}
	if override.VelThreshold != 0 {
		t.VelThreshold = override.VelThreshold
	}
	return t, nil
}

// ActivationParams converts the tuning's activation fields to the type
// the granular package's activation gate expects.
func (t Tuning) ActivationParams() granular.ActivationParams {
	return granular.ActivationParams{Epsilon: t.ActivationEpsilon, VelThresholdSqr: t.VelThreshold}
}
