package reaction

import (
	"context"
	"strings"

	"github.com/turtacn/ChemRxn-Core/internal/domain/species"
	"github.com/turtacn/ChemRxn-Core/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Stub — structural projection of a reaction for external classification
// ─────────────────────────────────────────────────────────────────────────────

// SpeciesStub is the minimal structural identity of one species inside a
// reaction stub: its label and its SMILES line notation.
type SpeciesStub struct {
	Label  string `json:"label"`
	SMILES string `json:"smiles"`
}

// Stub is a structural projection of a reaction, used to talk to external
// family classifiers that reason over connectivity rather than geometry.
// It is always derived, never authoritative: synthesizing a stub does not
// mutate the reaction or its species.
type Stub struct {
	Reactants []SpeciesStub `json:"reactants"`
	Products  []SpeciesStub `json:"products"`
}

// String serializes the stub as "<smiles> + ... <=> <smiles> + ...".
func (s *Stub) String() string {
	r := make([]string, len(s.Reactants))
	for i, spc := range s.Reactants {
		r[i] = spc.SMILES
	}
	p := make([]string, len(s.Products))
	for i, spc := range s.Products {
		p[i] = spc.SMILES
	}
	return strings.Join(r, Plus) + Arrow + strings.Join(p, Plus)
}

// ParseStub is the inverse of Stub.String.  The resulting stubs carry their
// SMILES as both structure and label, since the string form holds no labels.
func ParseStub(s string) (*Stub, error) {
	reactants, products, err := ParseLabel(s)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeUnknown, "parse reaction stub")
	}
	stub := &Stub{
		Reactants: make([]SpeciesStub, len(reactants)),
		Products:  make([]SpeciesStub, len(products)),
	}
	for i, smiles := range reactants {
		stub.Reactants[i] = SpeciesStub{Label: smiles, SMILES: smiles}
	}
	for i, smiles := range products {
		stub.Products[i] = SpeciesStub{Label: smiles, SMILES: smiles}
	}
	return stub, nil
}

// speciesFromStubs synthesizes species entities from stub entries, copying
// labels through.  Used when a reaction is built from a stub alone.
func speciesFromStubs(stubs []SpeciesStub) ([]*species.Species, error) {
	out := make([]*species.Species, 0, len(stubs))
	for _, st := range stubs {
		spc, err := species.New(st.Label, 0, 0)
		if err != nil {
			return nil, err
		}
		spc.SMILES = st.SMILES
		out = append(out, spc)
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// FamilyClassifier — external classification capability
// ─────────────────────────────────────────────────────────────────────────────

// FamilyClassifier assigns a mechanistic family tag (e.g. "H_Abstraction")
// to a reaction stub, and reports whether that family is its own reverse.
// Implementations wrap an external reaction-family database.
type FamilyClassifier interface {
	Classify(ctx context.Context, stub *Stub) (family string, ownReverse bool, err error)
}
