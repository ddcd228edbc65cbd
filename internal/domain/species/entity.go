// Package species models the molecular species consumed by the reaction
// aggregate: an identity label, surface attributes (charge, spin
// multiplicity), and optional structural data (SMILES, Cartesian geometry).
// The reaction core only reads these attributes; geometry generation and
// electronic-structure computation happen elsewhere.
package species

import (
	"strings"

	"github.com/turtacn/ChemRxn-Core/pkg/errors"
	rxntypes "github.com/turtacn/ChemRxn-Core/pkg/types/reaction"
)

// ─────────────────────────────────────────────────────────────────────────────
// Species — the species reference entity
// ─────────────────────────────────────────────────────────────────────────────

// Species is a reference to one molecular species taking part in a reaction.
//
// Geometry and SMILES are optional: a species without geometry simply makes
// well construction and atom mapping "not yet determinable" rather than
// failing them.  GraphComposition carries the per-element counts derived from
// a structural graph when one exists independently of the 3-D geometry.
type Species struct {
	// Label uniquely identifies the species within a project.  Non-empty.
	Label string

	// Charge is the net charge.
	Charge int

	// Multiplicity is the spin multiplicity (2S+1), always >= 1.
	Multiplicity int

	// SMILES is the optional structural line notation.
	SMILES string

	// Geometry is the optional Cartesian structure.
	Geometry *XYZ

	// GraphComposition is the optional per-element count derived from the
	// species' structural graph, independent of Geometry.
	GraphComposition Composition
}

// New constructs a species with the given identity and surface attributes.
// Multiplicity defaults to 1 when zero is passed.
func New(label string, charge, multiplicity int) (*Species, error) {
	if multiplicity == 0 {
		multiplicity = 1
	}
	s := &Species{Label: label, Charge: charge, Multiplicity: multiplicity}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the species' structural invariants.
func (s *Species) Validate() error {
	if strings.TrimSpace(s.Label) == "" {
		return errors.New(errors.ErrCodeSpeciesInvalid, "species label must not be empty")
	}
	if strings.Contains(s.Label, " + ") || strings.Contains(s.Label, " <=> ") {
		return errors.New(errors.ErrCodeSpeciesInvalid,
			"species label must not contain reaction delimiters").
			WithDetailf("label=%q", s.Label)
	}
	if s.Multiplicity < 1 {
		return errors.New(errors.ErrCodeSpeciesInvalid,
			"species multiplicity must be >= 1").
			WithDetailf("label=%q multiplicity=%d", s.Label, s.Multiplicity)
	}
	return nil
}

// HasGeometry reports whether a non-empty Cartesian structure is attached.
func (s *Species) HasGeometry() bool {
	return s != nil && s.Geometry != nil && len(s.Geometry.Atoms) > 0
}

// Composition returns the species' per-element atom counts and whether they
// are determinable.  Geometry wins when present; the structural-graph counts
// are the fallback.
func (s *Species) Composition() (Composition, bool) {
	if s.HasGeometry() {
		return s.Geometry.Composition(), true
	}
	if len(s.GraphComposition) > 0 {
		return s.GraphComposition, true
	}
	return nil, false
}

// SetGeometryFromBlock parses block and attaches it as the species' geometry.
func (s *Species) SetGeometryFromBlock(block string) error {
	xyz, err := ParseXYZ(block)
	if err != nil {
		return errors.Wrap(err, errors.CodeUnknown, "species "+s.Label)
	}
	s.Geometry = xyz
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Persistence projection
// ─────────────────────────────────────────────────────────────────────────────

// ToRecord projects the species onto its persisted shape.
func (s *Species) ToRecord() rxntypes.SpeciesRecord {
	rec := rxntypes.SpeciesRecord{
		Label:        s.Label,
		Charge:       s.Charge,
		Multiplicity: s.Multiplicity,
		SMILES:       s.SMILES,
	}
	if s.HasGeometry() {
		rec.XYZ = s.Geometry.String()
	}
	return rec
}

// FromRecord rehydrates a species from its persisted shape, failing fast on a
// record that violates the entity invariants.
func FromRecord(rec rxntypes.SpeciesRecord) (*Species, error) {
	s := &Species{
		Label:        rec.Label,
		Charge:       rec.Charge,
		Multiplicity: rec.Multiplicity,
		SMILES:       rec.SMILES,
	}
	if s.Multiplicity == 0 {
		s.Multiplicity = 1
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(rec.XYZ) != "" {
		if err := s.SetGeometryFromBlock(rec.XYZ); err != nil {
			return nil, err
		}
	}
	return s, nil
}
