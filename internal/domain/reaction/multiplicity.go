package reaction

import (
	"fmt"
	"sort"

	"github.com/turtacn/ChemRxn-Core/pkg/errors"
	rxntypes "github.com/turtacn/ChemRxn-Core/pkg/types/reaction"
)

// ─────────────────────────────────────────────────────────────────────────────
// Multiplicity Resolver
// ─────────────────────────────────────────────────────────────────────────────

// Resolution is the outcome of a surface-multiplicity resolution.  Status is
// Assumed when an ambiguous spin combination fell back to its default because
// the product pattern selected no candidate; callers decide how loudly to
// surface that.
type Resolution struct {
	Value  int
	Status rxntypes.ResolutionStatus
}

// spinRule is one row of the spin-combination table: a sorted reactant
// multiplicity key mapping either to a single outcome or to a candidate set
// disambiguated by the product spin pattern.
type spinRule struct {
	key        []int
	outcome    int   // set when the combination is unambiguous
	candidates []int // set when disambiguation by products is needed
	fallback   int   // default candidate when products match no pattern
}

// spinRules reproduces the physically motivated spin-combination outcomes:
// two singlets stay on the singlet surface, a doublet pair couples to a
// singlet or triplet, a doublet-triplet pair to a doublet or quartet, and so
// on, with three-body combinations treated analogously.
var spinRules = []spinRule{
	{key: []int{1, 1}, outcome: 1},
	{key: []int{1, 2}, outcome: 2},
	{key: []int{1, 3}, outcome: 3},
	{key: []int{2, 2}, candidates: []int{1, 3}, fallback: 1},
	{key: []int{2, 3}, candidates: []int{2, 4}, fallback: 2},
	{key: []int{3, 3}, candidates: []int{1, 3, 5}, fallback: 3},
	{key: []int{1, 1, 1}, outcome: 1},
	{key: []int{1, 1, 2}, outcome: 2},
	{key: []int{1, 1, 3}, outcome: 3},
	{key: []int{1, 2, 2}, candidates: []int{1, 3}, fallback: 1},
	{key: []int{2, 2, 2}, candidates: []int{2, 4}, fallback: 2},
	{key: []int{1, 2, 3}, candidates: []int{2, 4}, fallback: 2},
}

// sortedCopy returns an ascending copy of mults.
func sortedCopy(mults []int) []int {
	out := make([]int, len(mults))
	copy(out, mults)
	sort.Ints(out)
	return out
}

func keysEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// productsMatch reports whether the sorted product multiplicities fit the
// candidate surface multiplicity m: a well of one species with multiplicity m
// plus one or two singlet partners, i.e. [1,m] or [1,1,m].
func productsMatch(sortedProducts []int, m int) bool {
	return keysEqual(sortedProducts, sortedCopy([]int{1, m})) ||
		keysEqual(sortedProducts, sortedCopy([]int{1, 1, m}))
}

// ResolveMultiplicity maps reactant spin multiplicities (and, for the
// ambiguous combinations, product spin multiplicities) to the most probable
// reaction-surface multiplicity.  It is pure and deterministic.
//
// A single reactant fixes the surface multiplicity directly.  Otherwise the
// sorted reactant key is looked up in the combination table; combinations not
// in the table fail with ErrCodeMultiplicityUndetermined.
func ResolveMultiplicity(reactantMults, productMults []int) (Resolution, error) {
	if len(reactantMults) == 0 {
		return Resolution{}, errors.New(errors.ErrCodeMultiplicityUndetermined,
			"no reactant multiplicities given")
	}
	for _, m := range reactantMults {
		if m < 1 {
			return Resolution{}, errors.New(errors.ErrCodeMultiplicityUndetermined,
				"spin multiplicities must be >= 1").
				WithDetailf("reactant multiplicities: %v", reactantMults)
		}
	}
	if len(reactantMults) == 1 {
		return Resolution{Value: reactantMults[0], Status: rxntypes.ResolutionConfident}, nil
	}

	key := sortedCopy(reactantMults)
	sortedProducts := sortedCopy(productMults)
	for _, rule := range spinRules {
		if !keysEqual(rule.key, key) {
			continue
		}
		if rule.outcome != 0 {
			return Resolution{Value: rule.outcome, Status: rxntypes.ResolutionConfident}, nil
		}
		for _, cand := range rule.candidates {
			if productsMatch(sortedProducts, cand) {
				return Resolution{Value: cand, Status: rxntypes.ResolutionConfident}, nil
			}
		}
		return Resolution{Value: rule.fallback, Status: rxntypes.ResolutionAssumed}, nil
	}
	return Resolution{}, errors.New(errors.ErrCodeMultiplicityUndetermined,
		fmt.Sprintf("no spin-combination rule for reactant multiplicities %v", key))
}
