package reaction

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/turtacn/ChemRxn-Core/internal/domain/species"
)

// Geometry fixtures shared across the package tests.
const (
	methaneXYZ = `C -0.00000000  0.00000000  0.00000000
H -0.63003260  0.63003260  0.63003260
H  0.63003260 -0.63003260  0.63003260
H -0.63003260 -0.63003260 -0.63003260
H  0.63003260  0.63003260 -0.63003260`

	methylXYZ = `C  0.00000000  0.00000000  0.00000000
H  0.00000000  1.07900000  0.00000000
H  0.93444000 -0.53950000  0.00000000
H -0.93444000 -0.53950000  0.00000000`

	hAtomXYZ = `H 0.00000000 0.00000000 0.00000000`

	waterXYZ = `O  0.00000000  0.00000000  0.11779700
H  0.00000000  0.75545000 -0.47118800
H  0.00000000 -0.75545000 -0.47118800`

	hydrogenXYZ = `H 0.00000000 0.00000000 0.37000000
H 0.00000000 0.00000000 -0.37000000`
)

type speciesOption func(*species.Species)

func withSMILES(smiles string) speciesOption {
	return func(s *species.Species) { s.SMILES = smiles }
}

func withMultiplicity(m int) speciesOption {
	return func(s *species.Species) { s.Multiplicity = m }
}

func withCharge(c int) speciesOption {
	return func(s *species.Species) { s.Charge = c }
}

func withGeometry(t *testing.T, block string) speciesOption {
	return func(s *species.Species) {
		require.NoError(t, s.SetGeometryFromBlock(block))
	}
}

func testSpecies(t *testing.T, label string, opts ...speciesOption) *species.Species {
	t.Helper()
	s, err := species.New(label, 0, 1)
	require.NoError(t, err)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func speciesList(spcs ...*species.Species) []*species.Species {
	return spcs
}

func mustReaction(t *testing.T, in NewReactionInput) *Reaction {
	t.Helper()
	rxn, err := NewReaction(in)
	require.NoError(t, err)
	return rxn
}

// ch4ToCH3H builds the fully resolved "CH4 <=> CH3 + H" reaction with
// geometries on every species.
func ch4ToCH3H(t *testing.T) *Reaction {
	t.Helper()
	return mustReaction(t, NewReactionInput{
		RSpecies: speciesList(
			testSpecies(t, "CH4", withSMILES("C"), withGeometry(t, methaneXYZ)),
		),
		PSpecies: speciesList(
			testSpecies(t, "CH3", withSMILES("[CH3]"), withMultiplicity(2), withGeometry(t, methylXYZ)),
			testSpecies(t, "H", withSMILES("[H]"), withMultiplicity(2), withGeometry(t, hAtomXYZ)),
		),
	})
}

func intPtr(v int) *int { return &v }
