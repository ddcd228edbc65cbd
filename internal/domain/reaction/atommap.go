package reaction

import (
	"context"

	"github.com/turtacn/ChemRxn-Core/internal/domain/species"
	"github.com/turtacn/ChemRxn-Core/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// Atom Mapper — alignment request assembly and caching
// ─────────────────────────────────────────────────────────────────────────────

// Fragment is one species' geometry inside a fragmented structure, carrying
// the fragment's own charge and spin multiplicity.
type Fragment struct {
	XYZ          *species.XYZ
	Charge       int
	Multiplicity int
}

// FragmentedStructure is one side of an alignment request: the side's species
// as ordered fragments plus the overall surface charge and multiplicity.
// Structures are submitted unoriented; atom order within each fragment is
// significant and preserved.
type FragmentedStructure struct {
	Fragments    []Fragment
	Charge       int
	Multiplicity int
}

// AtomCount returns the total atom count across all fragments.
func (fs FragmentedStructure) AtomCount() int {
	total := 0
	for _, f := range fs.Fragments {
		total += f.XYZ.AtomCount()
	}
	return total
}

// AlignmentService exhaustively aligns two non-oriented, non-ordered 3-D
// structures and returns the atom permutation mapping ref atom i to target
// atom result[i].  A structurally invalid request fails with
// ErrCodeAlignmentValidation; transport-level failures use other codes.
type AlignmentService interface {
	Align(ctx context.Context, ref, target FragmentedStructure) ([]int, error)
}

// fragmentedStructure assembles one side of the alignment request, or reports
// that a species without geometry makes the side unavailable.
func (r *Reaction) fragmentedStructure(spcs []*species.Species) (FragmentedStructure, bool) {
	fs := FragmentedStructure{Charge: r.Charge, Fragments: make([]Fragment, 0, len(spcs))}
	if r.Multiplicity != nil {
		fs.Multiplicity = *r.Multiplicity
	}
	for _, spc := range spcs {
		if !spc.HasGeometry() {
			return FragmentedStructure{}, false
		}
		fs.Fragments = append(fs.Fragments, Fragment{
			XYZ:          spc.Geometry,
			Charge:       spc.Charge,
			Multiplicity: spc.Multiplicity,
		})
	}
	return fs, len(fs.Fragments) > 0
}

// ComputeAtomMap returns the reactant→product atom map, computing and caching
// it on first use.  An atom map of [0, 2, 1] means reactant atom 0 matches
// product atom 0, reactant atom 1 matches product atom 2, and reactant atom 2
// matches product atom 1.
//
// The map is an optional enrichment: a species without geometry, or a
// structural-validation rejection from the alignment service, yields
// (nil, nil) rather than an error.  Transport failures propagate.
func (r *Reaction) ComputeAtomMap(ctx context.Context, aligner AlignmentService) ([]int, error) {
	if r.atomMap != nil {
		return r.atomMap, nil
	}
	ref, ok := r.fragmentedStructure(r.RSpecies)
	if !ok {
		return nil, nil
	}
	target, ok := r.fragmentedStructure(r.PSpecies)
	if !ok {
		return nil, nil
	}

	m, err := aligner.Align(ctx, ref, target)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeAlignmentValidation) {
			// Recoverable: the map is withheld, the reaction stays usable.
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.CodeUnknown,
			"alignment service failed for reaction "+r.Label())
	}
	if err := r.SetAtomMap(m); err != nil {
		return nil, err
	}
	r.addEvent(AtomMapComputedEvent{ReactionID: r.ID, Label: r.Label(), AtomCount: len(m)})
	return r.atomMap, nil
}
