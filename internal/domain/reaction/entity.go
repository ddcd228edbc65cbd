// Package reaction provides the core domain model for ChemRxn-Core: the
// Reaction aggregate root linking reactant and product species to an optional
// transition-state species, together with the invariant logic that keeps the
// triple chemically self-consistent — surface spin-multiplicity inference,
// net-charge inference, atom-count balance across wells, and the reactant→
// product atom correspondence map.
package reaction

import (
	"fmt"
	"strings"

	"github.com/turtacn/ChemRxn-Core/internal/domain/species"
	"github.com/turtacn/ChemRxn-Core/pkg/errors"
	"github.com/turtacn/ChemRxn-Core/pkg/types/common"
	rxntypes "github.com/turtacn/ChemRxn-Core/pkg/types/reaction"
)

// DefaultTSMethods is the method list used when a reaction is constructed
// without an explicit one.  Entries are matched case-insensitively and stored
// lower-case.
var DefaultTSMethods = []string{"qst2", "degsm", "neb", "kinbot", "autotst"}

// maxSpeciesPerSide is the hard cap on reactants or products in one reaction.
const maxSpeciesPerSide = 3

// ─────────────────────────────────────────────────────────────────────────────
// Reaction Aggregate Root
// ─────────────────────────────────────────────────────────────────────────────

// Reaction is the aggregate root for one chemical reaction.
//
// Reactants and Products are the single source of truth for the reaction's
// identity; the label is a pure derived projection (see Label), so the two
// representations cannot diverge.  RSpecies/PSpecies hold the resolved
// species, index-aligned with the label lists when both are populated.
//
// A Reaction is exclusively owned by its caller and is not safe for
// concurrent mutation.
type Reaction struct {
	ID common.ID

	// Index is the reaction's ordinal within a project, used to derive the
	// associated TS label ("TS<index>").
	Index *int

	// Reactants and Products are ordered species-label lists, 1–3 entries each.
	Reactants []string
	Products  []string

	// RSpecies and PSpecies are the resolved species entities.
	RSpecies []*species.Species
	PSpecies []*species.Species

	// TSSpecies is the transition-state species, once committed, and TSLabel
	// the label of that species.
	TSSpecies *species.Species
	TSLabel   *string

	// Charge is the reaction-surface net charge.
	Charge int

	// Multiplicity is the reaction-surface spin multiplicity.  Nil until set
	// by the caller or inferred; immutable once set.
	Multiplicity *int

	// Family is the mechanistic family tag assigned by an external
	// classifier, and FamilyOwnReverse whether that family is its own reverse.
	Family           string
	FamilyOwnReverse bool

	// LongKineticDescription is a free-text annotation for kinetics reports.
	LongKineticDescription string

	// TSMethods lists TS-guess generation methods to try, lower-cased.
	TSMethods []string

	// TSXYZGuesses holds caller-supplied TS geometry candidates as raw xyz
	// blocks.  They participate in atom-balance checking only; guess
	// selection happens elsewhere.
	TSXYZGuesses []string

	// PreserveParamInScan lists atom-index pairs whose internal coordinates
	// must be preserved during rotor scans of the TS.
	PreserveParamInScan []rxntypes.ScanPair

	// atomMap caches the lazily computed reactant→product atom permutation.
	atomMap []int

	// events collects unpublished domain events.
	events []DomainEvent
}

// NewReactionInput carries every construction source for a Reaction.  Any one
// of Label, Reactants+Products, RSpecies+PSpecies, or Stub suffices.
type NewReactionInput struct {
	Label     string
	Reactants []string
	Products  []string
	RSpecies  []*species.Species
	PSpecies  []*species.Species
	Stub      *Stub

	Charge       int
	Multiplicity *int

	TSLabel             string
	TSMethods           []string
	TSXYZGuesses        []string
	PreserveParamInScan []rxntypes.ScanPair
}

// NewReaction constructs a Reaction, deriving whichever identity
// representation was not supplied:
//
//  1. Missing reactant/product lists come from the label, the resolved
//     species, or the stub, in that order.
//  2. Species entities come from the stub when none were given.
//
// It fails with ErrCodeReactionConstruction when a side remains undetermined
// or exceeds three entries, when a supplied label disagrees with supplied
// lists, or when the multiplicity is not positive.
func NewReaction(in NewReactionInput) (*Reaction, error) {
	reactants, products, err := deriveSides(in)
	if err != nil {
		return nil, err
	}
	if len(reactants) > maxSpeciesPerSide || len(products) > maxSpeciesPerSide {
		return nil, errors.New(errors.ErrCodeReactionConstruction,
			fmt.Sprintf("a reaction can have up to %d reactants / products", maxSpeciesPerSide)).
			WithDetailf("got %d reactants and %d products for reaction %s",
				len(reactants), len(products), ComposeLabel(reactants, products))
	}
	if in.Multiplicity != nil && *in.Multiplicity < 1 {
		return nil, errors.New(errors.ErrCodeReactionConstruction,
			"reaction multiplicity must be a positive integer").
			WithDetailf("got %d", *in.Multiplicity)
	}

	r := &Reaction{
		ID:                  common.NewID(),
		Reactants:           reactants,
		Products:            products,
		RSpecies:            in.RSpecies,
		PSpecies:            in.PSpecies,
		Charge:              in.Charge,
		Multiplicity:        in.Multiplicity,
		TSXYZGuesses:        in.TSXYZGuesses,
		PreserveParamInScan: in.PreserveParamInScan,
	}
	if in.TSLabel != "" {
		ts := in.TSLabel
		r.TSLabel = &ts
	}

	methods := in.TSMethods
	if methods == nil {
		methods = DefaultTSMethods
	}
	r.TSMethods = make([]string, len(methods))
	for i, m := range methods {
		r.TSMethods[i] = strings.ToLower(m)
	}

	if len(r.RSpecies) == 0 && len(r.PSpecies) == 0 && in.Stub != nil {
		if r.RSpecies, err = speciesFromStubs(in.Stub.Reactants); err != nil {
			return nil, err
		}
		if r.PSpecies, err = speciesFromStubs(in.Stub.Products); err != nil {
			return nil, err
		}
	}

	if err := r.CheckAttributes(); err != nil {
		return nil, err
	}
	r.addEvent(ReactionCreatedEvent{ReactionID: r.ID, Label: r.Label()})
	return r, nil
}

// deriveSides resolves the reactant and product label lists from the
// available construction sources and cross-checks redundant ones.
func deriveSides(in NewReactionInput) (reactants, products []string, err error) {
	reactants, products = in.Reactants, in.Products

	if reactants == nil || products == nil {
		switch {
		case in.Label != "":
			r, p, err := ParseLabel(in.Label)
			if err != nil {
				return nil, nil, err
			}
			if reactants == nil {
				reactants = r
			}
			if products == nil {
				products = p
			}
		case len(in.RSpecies) > 0 && len(in.PSpecies) > 0:
			if reactants == nil {
				reactants = speciesLabels(in.RSpecies)
			}
			if products == nil {
				products = speciesLabels(in.PSpecies)
			}
		case in.Stub != nil:
			if reactants == nil {
				reactants = stubLabels(in.Stub.Reactants)
			}
			if products == nil {
				products = stubLabels(in.Stub.Products)
			}
		}
	}
	if len(reactants) == 0 || len(products) == 0 {
		return nil, nil, errors.New(errors.ErrCodeReactionConstruction,
			"cannot determine reactant and/or product labels").
			WithDetailf("label=%q", in.Label)
	}

	// A label supplied alongside explicit lists must agree with them.
	if in.Label != "" && (in.Reactants != nil || in.Products != nil) {
		if in.Label != ComposeLabel(reactants, products) {
			return nil, nil, errors.New(errors.ErrCodeReactionConstruction,
				"supplied label disagrees with supplied reactant/product lists").
				WithDetailf("label=%q lists=%q", in.Label, ComposeLabel(reactants, products))
		}
	}
	return reactants, products, nil
}

func speciesLabels(spcs []*species.Species) []string {
	out := make([]string, len(spcs))
	for i, s := range spcs {
		out[i] = s.Label
	}
	return out
}

func stubLabels(stubs []SpeciesStub) []string {
	out := make([]string, len(stubs))
	for i, s := range stubs {
		out[i] = s.Label
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Derived projections
// ─────────────────────────────────────────────────────────────────────────────

// Label returns the canonical reaction label,
// "{reactants joined by ' + '} <=> {products joined by ' + '}".
// It is computed from the lists on every call and therefore can never
// diverge from them.
func (r *Reaction) Label() string {
	return ComposeLabel(r.Reactants, r.Products)
}

// String implements fmt.Stringer.
func (r *Reaction) String() string {
	mult := "nil"
	if r.Multiplicity != nil {
		mult = fmt.Sprintf("%d", *r.Multiplicity)
	}
	return fmt.Sprintf("Reaction(label=%q, multiplicity=%s, charge=%d)", r.Label(), mult, r.Charge)
}

// Stub synthesizes a structural projection of the reaction for external
// classification.  It returns nil when any species lacks a SMILES; the
// projection never mutates the reaction or its species.
func (r *Reaction) Stub() *Stub {
	if len(r.RSpecies) == 0 || len(r.PSpecies) == 0 {
		return nil
	}
	stub := &Stub{
		Reactants: make([]SpeciesStub, len(r.RSpecies)),
		Products:  make([]SpeciesStub, len(r.PSpecies)),
	}
	for i, spc := range r.RSpecies {
		if spc.SMILES == "" {
			return nil
		}
		stub.Reactants[i] = SpeciesStub{Label: spc.Label, SMILES: spc.SMILES}
	}
	for i, spc := range r.PSpecies {
		if spc.SMILES == "" {
			return nil
		}
		stub.Products[i] = SpeciesStub{Label: spc.Label, SMILES: spc.SMILES}
	}
	return stub
}

// SpeciesCount returns the number of times the species with the given label
// participates in the reactant (well 0) or product (well 1) well, per the
// label's stoichiometry.
func (r *Reaction) SpeciesCount(label string, well int) int {
	segment := sideSegment(r.Label(), well)
	count := strings.Count(segment, " "+label+" ")
	if strings.HasPrefix(segment, label+" ") {
		count++
	}
	if strings.HasSuffix(segment, " "+label) {
		count++
	}
	if segment == label {
		count++
	}
	return count
}

// ─────────────────────────────────────────────────────────────────────────────
// Surface attribute inference
// ─────────────────────────────────────────────────────────────────────────────

// DetermineCharge sets the surface charge to the sum of the reactant species'
// charges.  Reactant and product charges are assumed balanced; the product
// side is not independently re-checked.  No-op when no reactant species are
// resolved.
func (r *Reaction) DetermineCharge() {
	if len(r.RSpecies) == 0 {
		return
	}
	sum := 0
	for _, spc := range r.RSpecies {
		sum += spc.Charge
	}
	r.Charge = sum
}

// DetermineMultiplicity infers the reaction-surface spin multiplicity and
// caches it on the record.  An already-set multiplicity is returned as-is
// (set-once semantics).  A sole product species fixes the surface
// multiplicity outright, then a sole reactant species, then the combination
// table over the reactant (and, for ambiguous rows, product) multiplicities.
func (r *Reaction) DetermineMultiplicity() (Resolution, error) {
	if r.Multiplicity != nil {
		return Resolution{Value: *r.Multiplicity, Status: rxntypes.ResolutionConfident}, nil
	}
	if len(r.RSpecies) == 0 {
		return Resolution{}, errors.New(errors.ErrCodeMultiplicityUndetermined,
			"cannot determine multiplicity without resolved reactant species").
			WithDetailf("reaction %s", r.Label())
	}

	var res Resolution
	var err error
	switch {
	case len(r.PSpecies) == 1:
		res = Resolution{Value: r.PSpecies[0].Multiplicity, Status: rxntypes.ResolutionConfident}
	case len(r.RSpecies) == 1:
		res = Resolution{Value: r.RSpecies[0].Multiplicity, Status: rxntypes.ResolutionConfident}
	default:
		res, err = ResolveMultiplicity(speciesMultiplicities(r.RSpecies), speciesMultiplicities(r.PSpecies))
		if err != nil {
			return Resolution{}, errors.Wrap(err, errors.CodeUnknown,
				"could not determine multiplicity for reaction "+r.Label())
		}
	}
	r.Multiplicity = &res.Value
	if res.Status == rxntypes.ResolutionAssumed {
		r.addEvent(MultiplicityAssumedEvent{ReactionID: r.ID, Label: r.Label(), Multiplicity: res.Value})
	}
	return res, nil
}

func speciesMultiplicities(spcs []*species.Species) []int {
	out := make([]int, len(spcs))
	for i, s := range spcs {
		out[i] = s.Multiplicity
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Mutations
// ─────────────────────────────────────────────────────────────────────────────

// SetIndex assigns the reaction's project ordinal and, when no TS label has
// been chosen yet, derives the conventional "TS<index>" label.
func (r *Reaction) SetIndex(index int) {
	r.Index = &index
	if r.TSLabel == nil {
		label := fmt.Sprintf("TS%d", index)
		r.TSLabel = &label
	}
}

// AttachTS commits a transition-state species to the reaction.
func (r *Reaction) AttachTS(ts *species.Species) error {
	if ts == nil {
		return errors.InvalidParam("cannot attach a nil TS species")
	}
	if err := ts.Validate(); err != nil {
		return err
	}
	r.TSSpecies = ts
	r.TSLabel = &ts.Label
	return nil
}

// AtomMap returns the cached reactant→product atom permutation, or nil when
// none has been computed or assigned yet.
func (r *Reaction) AtomMap() []int {
	return r.atomMap
}

// SetAtomMap caches an atom map after validating its shape: its length must
// equal the reactant well's atom count (when determinable) and it must be a
// permutation of [0, N).  Explicit reassignment is the only invalidation.
func (r *Reaction) SetAtomMap(m []int) error {
	if m == nil {
		r.atomMap = nil
		return nil
	}
	if n, ok := r.reactantWellAtomCount(); ok && n != len(m) {
		return errors.New(errors.ErrCodeAtomMapShape,
			"atom map length does not match the reactant well atom count").
			WithDetailf("len=%d well=%d reaction=%s", len(m), n, r.Label())
	}
	seen := make([]bool, len(m))
	for _, j := range m {
		if j < 0 || j >= len(m) || seen[j] {
			return errors.New(errors.ErrCodeAtomMapShape,
				"atom map is not a permutation of [0, N)").
				WithDetailf("map=%v reaction=%s", m, r.Label())
		}
		seen[j] = true
	}
	r.atomMap = m
	return nil
}

// reactantWellAtomCount sums atom counts over the reactant well, respecting
// stoichiometric counts.  The count is not determinable when any reactant
// lacks geometry.
func (r *Reaction) reactantWellAtomCount() (int, bool) {
	if len(r.RSpecies) == 0 {
		return 0, false
	}
	total := 0
	for _, spc := range r.RSpecies {
		if !spc.HasGeometry() {
			return 0, false
		}
		total += spc.Geometry.AtomCount() * r.SpeciesCount(spc.Label, 0)
	}
	return total, true
}

// ─────────────────────────────────────────────────────────────────────────────
// Attribute consistency
// ─────────────────────────────────────────────────────────────────────────────

// CheckAttributes validates the reaction's identity invariants: a parsable
// non-empty label, 1–3 species per side, and four-way agreement between the
// label tokens, the Reactants/Products lists, and the resolved species'
// labels.  It performs no mutation.
func (r *Reaction) CheckAttributes() error {
	label := r.Label()
	if label == Arrow || strings.TrimSpace(label) == "" {
		return errors.New(errors.ErrCodeReactionInvalid, "reaction is not defined: empty label")
	}
	labelReactants, labelProducts, err := ParseLabel(label)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeReactionInvalid,
			"reaction label violates the label grammar")
	}
	if len(r.Reactants) == 0 || len(r.Products) == 0 {
		return errors.New(errors.ErrCodeReactionInvalid,
			"reaction must have at least one reactant and one product").
			WithDetailf("reaction %s", label)
	}
	if len(r.Reactants) > maxSpeciesPerSide || len(r.Products) > maxSpeciesPerSide {
		return errors.New(errors.ErrCodeReactionInvalid,
			fmt.Sprintf("a reaction can have up to %d reactants / products", maxSpeciesPerSide)).
			WithDetailf("reaction %s", label)
	}

	if err := crossCheck("reactant", labelReactants, r.Reactants, r.RSpecies, label); err != nil {
		return err
	}
	return crossCheck("product", labelProducts, r.Products, r.PSpecies, label)
}

// crossCheck verifies that the label tokens, the stored label list, and the
// resolved species labels of one side all describe the same multiset.
func crossCheck(side string, labelTokens, list []string, spcs []*species.Species, label string) error {
	for _, tok := range labelTokens {
		if !containsLabel(list, tok) {
			return errors.New(errors.ErrCodeReactionInvalid,
				fmt.Sprintf("%s %q from the reaction label is missing from the %s list", side, tok, side)).
				WithDetailf("reaction %s", label)
		}
	}
	for _, entry := range list {
		if !containsLabel(labelTokens, entry) {
			return errors.New(errors.ErrCodeReactionInvalid,
				fmt.Sprintf("%s %q is missing from the reaction label", side, entry)).
				WithDetailf("reaction %s", label)
		}
	}
	if len(spcs) > 0 {
		spcLabels := speciesLabels(spcs)
		for _, spc := range spcs {
			if !containsLabel(list, spc.Label) {
				return errors.New(errors.ErrCodeReactionInvalid,
					fmt.Sprintf("%s species %q is missing from the %s list", side, spc.Label, side)).
					WithDetailf("reaction %s", label)
			}
		}
		for _, entry := range list {
			if !containsLabel(spcLabels, entry) {
				return errors.New(errors.ErrCodeReactionInvalid,
					fmt.Sprintf("%s %q has no resolved species", side, entry)).
					WithDetailf("reaction %s", label)
			}
		}
	}
	return nil
}

func containsLabel(list []string, label string) bool {
	for _, entry := range list {
		if entry == label {
			return true
		}
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Persistence projection
// ─────────────────────────────────────────────────────────────────────────────

// ToRecord projects the reaction onto its persisted shape.  TSMethods are
// lower-cased on the way out (they already are in the entity, but the record
// normalizes regardless so hand-built records agree).
func (r *Reaction) ToRecord() rxntypes.ReactionRecord {
	rec := rxntypes.ReactionRecord{
		Label:                  r.Label(),
		Index:                  r.Index,
		Multiplicity:           r.Multiplicity,
		Charge:                 r.Charge,
		Reactants:              r.Reactants,
		Products:               r.Products,
		FamilyOwnReverse:       r.FamilyOwnReverse,
		LongKineticDescription: r.LongKineticDescription,
		TSMethods:              append([]string(nil), r.TSMethods...),
		TSXYZGuess:             r.TSXYZGuesses,
		TSLabel:                r.TSLabel,
		AtomMap:                r.atomMap,
		PreserveParamInScan:    r.PreserveParamInScan,
	}
	if r.Family != "" {
		fam := r.Family
		rec.Family = &fam
	}
	for _, spc := range r.RSpecies {
		rec.RSpecies = append(rec.RSpecies, spc.ToRecord())
	}
	for _, spc := range r.PSpecies {
		rec.PSpecies = append(rec.PSpecies, spc.ToRecord())
	}
	if r.TSSpecies != nil {
		ts := r.TSSpecies.ToRecord()
		rec.TSSpecies = &ts
	}
	rec.Normalize()
	return rec
}

// FromRecord rehydrates a reaction from its persisted shape.  The record is
// validated first, so a missing label or a malformed species fails fast.
func FromRecord(rec rxntypes.ReactionRecord) (*Reaction, error) {
	if err := rec.Validate(); err != nil {
		return nil, errors.New(errors.ErrCodeReactionRecordInvalid, err.Error())
	}
	rec.Normalize()

	rSpecies, err := speciesFromRecords(rec.RSpecies)
	if err != nil {
		return nil, err
	}
	pSpecies, err := speciesFromRecords(rec.PSpecies)
	if err != nil {
		return nil, err
	}

	in := NewReactionInput{
		Label:               rec.Label,
		Reactants:           rec.Reactants,
		Products:            rec.Products,
		RSpecies:            rSpecies,
		PSpecies:            pSpecies,
		Charge:              rec.Charge,
		Multiplicity:        rec.Multiplicity,
		TSMethods:           rec.TSMethods,
		TSXYZGuesses:        rec.TSXYZGuess,
		PreserveParamInScan: rec.PreserveParamInScan,
	}
	if rec.TSLabel != nil {
		in.TSLabel = *rec.TSLabel
	}
	r, err := NewReaction(in)
	if err != nil {
		return nil, err
	}
	r.ClearEvents()

	r.Index = rec.Index
	if rec.Family != nil {
		r.Family = *rec.Family
	}
	r.FamilyOwnReverse = rec.FamilyOwnReverse
	r.LongKineticDescription = rec.LongKineticDescription
	if rec.TSSpecies != nil {
		ts, err := species.FromRecord(*rec.TSSpecies)
		if err != nil {
			return nil, err
		}
		if err := r.AttachTS(ts); err != nil {
			return nil, err
		}
	}
	if rec.TSLabel != nil {
		ts := *rec.TSLabel
		r.TSLabel = &ts
	}
	if rec.AtomMap != nil {
		if err := r.SetAtomMap(rec.AtomMap); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func speciesFromRecords(recs []rxntypes.SpeciesRecord) ([]*species.Species, error) {
	if len(recs) == 0 {
		return nil, nil
	}
	out := make([]*species.Species, 0, len(recs))
	for _, rec := range recs {
		spc, err := species.FromRecord(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, spc)
	}
	return out, nil
}
