// Package reaction defines all reaction-domain Data Transfer Objects,
// enumerations, and request/response structures used across every layer of
// ChemRxn-Core.  No domain logic lives here — only plain data types that are
// safe to import from any layer without creating circular dependencies.
package reaction

import (
	"fmt"
	"strings"
)

// ─────────────────────────────────────────────────────────────────────────────
// ResolutionStatus — confidence tag for a resolved surface multiplicity
// ─────────────────────────────────────────────────────────────────────────────

// ResolutionStatus distinguishes a multiplicity read directly from the
// combination table from one that fell back to the table's default because the
// product spin pattern matched no listed candidate.
type ResolutionStatus string

const (
	// ResolutionConfident means the combination table produced a single answer,
	// or the product pattern selected one of the ambiguous candidates.
	ResolutionConfident ResolutionStatus = "confident"

	// ResolutionAssumed means the default candidate was taken because the
	// product pattern matched none of the listed outcomes.  Callers should
	// surface this to users; it is a warning, not an error.
	ResolutionAssumed ResolutionStatus = "assumed"
)

// ─────────────────────────────────────────────────────────────────────────────
// SpeciesRecord — persisted shape of a species reference
// ─────────────────────────────────────────────────────────────────────────────

// SpeciesRecord is the persisted projection of a species consumed by a
// reaction: identity, surface attributes, and optional structural data.
type SpeciesRecord struct {
	// Label is the unique, non-empty species identifier.
	Label string `json:"label"`

	// Charge is the species' net charge.
	Charge int `json:"charge"`

	// Multiplicity is the species' spin multiplicity (2S+1, >= 1).
	Multiplicity int `json:"multiplicity"`

	// SMILES is the optional structural line notation.
	SMILES string `json:"smiles,omitempty"`

	// XYZ is the optional Cartesian geometry block, one "El x y z" line per atom.
	XYZ string `json:"xyz,omitempty"`
}

// Validate checks the required fields of a species record.
func (s SpeciesRecord) Validate() error {
	if strings.TrimSpace(s.Label) == "" {
		return fmt.Errorf("species record: label is required")
	}
	if s.Multiplicity < 1 {
		return fmt.Errorf("species record %q: multiplicity must be >= 1, got %d", s.Label, s.Multiplicity)
	}
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// ScanPair — a preserved dihedral parameter
// ─────────────────────────────────────────────────────────────────────────────

// ScanPair is a pair of atom indices whose internal coordinate must be
// preserved during a rotor scan of the reaction's transition state.
type ScanPair [2]int

// ─────────────────────────────────────────────────────────────────────────────
// ReactionRecord — persisted shape of a reaction
// ─────────────────────────────────────────────────────────────────────────────

// ReactionRecord is the explicit, nullable persistence schema for a reaction.
// Optional values are pointers or nil-able slices with defined zero defaults;
// Label is the only required field and its absence fails Validate at the
// deserialization boundary.
type ReactionRecord struct {
	// Label is the canonical reaction label, "r1 + r2 <=> p1 + p2".  Required.
	Label string `json:"label"`

	// Index is the reaction's ordinal within its project, when assigned.
	Index *int `json:"index,omitempty"`

	// Multiplicity is the reaction-surface spin multiplicity, when known.
	Multiplicity *int `json:"multiplicity,omitempty"`

	// Charge is the reaction-surface net charge.  Defaults to 0.
	Charge int `json:"charge"`

	// Reactants and Products are the ordered label lists, 1–3 entries each.
	Reactants []string `json:"reactants,omitempty"`
	Products  []string `json:"products,omitempty"`

	// RSpecies and PSpecies are the resolved species records, index-aligned
	// with Reactants/Products when both are populated.
	RSpecies []SpeciesRecord `json:"r_species,omitempty"`
	PSpecies []SpeciesRecord `json:"p_species,omitempty"`

	// TSSpecies is the transition-state species, once committed.
	TSSpecies *SpeciesRecord `json:"ts_species,omitempty"`

	// AtomMap maps reactant atom index i to product atom index AtomMap[i].
	AtomMap []int `json:"atom_map,omitempty"`

	// Family is the mechanistic family tag assigned by an external classifier,
	// and FamilyOwnReverse whether that family is its own reverse.
	Family           *string `json:"family,omitempty"`
	FamilyOwnReverse bool    `json:"family_own_reverse"`

	// LongKineticDescription is a free-text annotation for reports.
	LongKineticDescription string `json:"long_kinetic_description,omitempty"`

	// TSMethods lists the TS-search method names, always lower-cased.
	TSMethods []string `json:"ts_methods,omitempty"`

	// TSXYZGuess holds caller-supplied TS geometry candidates as xyz blocks.
	TSXYZGuess []string `json:"ts_xyz_guess,omitempty"`

	// TSLabel is the label of the associated TS species (e.g. "TS3").
	TSLabel *string `json:"ts_label,omitempty"`

	// PreserveParamInScan lists atom-index pairs to preserve in rotor scans.
	PreserveParamInScan []ScanPair `json:"preserve_param_in_scan,omitempty"`
}

// Validate fails fast on a record that cannot rehydrate a reaction: a missing
// label, a non-positive multiplicity, an over-long side, or a malformed
// species record.
func (r ReactionRecord) Validate() error {
	if strings.TrimSpace(r.Label) == "" {
		return fmt.Errorf("reaction record: label is required")
	}
	if r.Multiplicity != nil && *r.Multiplicity < 1 {
		return fmt.Errorf("reaction record %q: multiplicity must be >= 1, got %d", r.Label, *r.Multiplicity)
	}
	if len(r.Reactants) > 3 {
		return fmt.Errorf("reaction record %q: at most 3 reactants, got %d", r.Label, len(r.Reactants))
	}
	if len(r.Products) > 3 {
		return fmt.Errorf("reaction record %q: at most 3 products, got %d", r.Label, len(r.Products))
	}
	for _, sr := range r.RSpecies {
		if err := sr.Validate(); err != nil {
			return fmt.Errorf("reaction record %q: %w", r.Label, err)
		}
	}
	for _, sr := range r.PSpecies {
		if err := sr.Validate(); err != nil {
			return fmt.Errorf("reaction record %q: %w", r.Label, err)
		}
	}
	if r.TSSpecies != nil {
		if err := r.TSSpecies.Validate(); err != nil {
			return fmt.Errorf("reaction record %q: %w", r.Label, err)
		}
	}
	return nil
}

// Normalize lower-cases TSMethods in place.  It is applied on both the write
// and read sides of persistence so the stored and rehydrated forms agree.
func (r *ReactionRecord) Normalize() {
	for i, m := range r.TSMethods {
		r.TSMethods[i] = strings.ToLower(m)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// API request / response structures
// ─────────────────────────────────────────────────────────────────────────────

// CreateReactionRequest is the HTTP payload for creating a reaction.  Any of
// the three identity sources may be supplied; the service derives the rest.
type CreateReactionRequest struct {
	Label     string          `json:"label,omitempty"`
	Reactants []string        `json:"reactants,omitempty"`
	Products  []string        `json:"products,omitempty"`
	RSpecies  []SpeciesRecord `json:"r_species,omitempty"`
	PSpecies  []SpeciesRecord `json:"p_species,omitempty"`

	Charge       *int `json:"charge,omitempty"`
	Multiplicity *int `json:"multiplicity,omitempty"`

	TSMethods  []string `json:"ts_methods,omitempty"`
	TSXYZGuess []string `json:"ts_xyz_guess,omitempty"`
}

// MultiplicityRequest asks for a surface-multiplicity resolution from raw
// reactant/product spin multiplicities.
type MultiplicityRequest struct {
	ReactantMultiplicities []int `json:"reactant_multiplicities"`
	ProductMultiplicities  []int `json:"product_multiplicities,omitempty"`
}

// MultiplicityResponse carries the resolved value and its confidence.
type MultiplicityResponse struct {
	Multiplicity int              `json:"multiplicity"`
	Status       ResolutionStatus `json:"status"`
}

// BalanceCheckResult reports a single atom-balance comparison.
type BalanceCheckResult struct {
	// Name identifies the comparison, e.g. "product well", "ts guess 0".
	Name string `json:"name"`

	// Determinable is false when a missing geometry made the check impossible.
	Determinable bool `json:"determinable"`

	// Balanced is meaningful only when Determinable is true.
	Balanced bool `json:"balanced"`

	// Detail describes the composition mismatch for a failed check.
	Detail string `json:"detail,omitempty"`
}

// BalanceResponse aggregates all comparisons performed for one reaction.
type BalanceResponse struct {
	Balanced bool                 `json:"balanced"`
	Checks   []BalanceCheckResult `json:"checks"`
}

// ValidateReactionResponse reports the attribute consistency verdict.
type ValidateReactionResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// AtomMapResponse carries a computed atom map, or Available=false when the
// reaction lacks the geometries needed to compute one.
type AtomMapResponse struct {
	Available bool  `json:"available"`
	AtomMap   []int `json:"atom_map,omitempty"`
}

// ReactionResponse is the HTTP shape of a stored reaction: its identifier
// plus the full explicit record.
type ReactionResponse struct {
	ID string `json:"id"`
	ReactionRecord
}

// ListReactionsResponse is one page of stored reactions.
type ListReactionsResponse struct {
	Items    []ReactionResponse `json:"items"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

// ValidateLabelRequest asks for a grammar check of a reaction label.
type ValidateLabelRequest struct {
	Label string `json:"label"`
}

// ValidateLabelResponse reports the parse outcome and, when valid, the two
// sides of the label.
type ValidateLabelResponse struct {
	Valid     bool     `json:"valid"`
	Reactants []string `json:"reactants,omitempty"`
	Products  []string `json:"products,omitempty"`
	Reason    string   `json:"reason,omitempty"`
}

// BalanceCheckRequest optionally supplies an alternate TS geometry to check
// against the reactant well.
type BalanceCheckRequest struct {
	AltTSXYZ string `json:"alt_ts_xyz,omitempty"`
}

// FamilyResponse carries the classification outcome.  Family is empty when
// no family matched.
type FamilyResponse struct {
	Family     string `json:"family,omitempty"`
	OwnReverse bool   `json:"own_reverse,omitempty"`
}
