package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
)

// Procedure is an ordered, immutable sequence of steps.
type Procedure struct {
	ID    string `json:"id,omitempty" yaml:"id,omitempty" mapstructure:"id"`
	Steps []Step `json:"steps" yaml:"steps" mapstructure:"steps"`
}

// Validate returns a joined error of every ConfigurationError found in the procedure.
func (p Procedure) Validate() error {
	if len(p.Steps) == 0 {
		return &ConfigurationError{Field: "steps", Reason: "procedure has no steps"}
	}
	var errs []error
	for i, s := range p.Steps {
		if err := s.Validate(i); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Fingerprint returns a stable digest of the steps.
// Two procedures with the same steps share a fingerprint regardless of ID.
func (p Procedure) Fingerprint() string {
	return FingerprintSteps(p.Steps)
}

// FingerprintSteps hashes the canonical JSON encoding of steps.
func FingerprintSteps(steps []Step) string {
	// encoding/json sorts map keys, so the encoding is canonical.
	data, err := json.Marshal(steps)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
