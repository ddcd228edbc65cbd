package reaction

import (
	"fmt"
	"strings"

	"github.com/turtacn/ChemRxn-Core/internal/domain/species"
	"github.com/turtacn/ChemRxn-Core/pkg/errors"
	rxntypes "github.com/turtacn/ChemRxn-Core/pkg/types/reaction"
)

// Names of the individual atom-balance comparisons.  Every comparison is made
// against the reactant well.
const (
	CheckWells      = "product well"
	CheckAltTS      = "alternate ts geometry"
	CheckTSGraph    = "ts structural graph"
	CheckTSGeometry = "ts geometry"
)

// ─────────────────────────────────────────────────────────────────────────────
// BalanceReport — per-check atom-balance verdicts
// ─────────────────────────────────────────────────────────────────────────────

// BalanceReport aggregates the outcome of every atom-balance comparison
// performed for one reaction.  A comparison is indeterminable (rather than
// failed) when a missing geometry left one side's composition unknown.
type BalanceReport struct {
	Checks []rxntypes.BalanceCheckResult
}

// Balanced reports whether every determinable check passed.  It is vacuously
// true when nothing was determinable.
func (rep BalanceReport) Balanced() bool {
	for _, c := range rep.Checks {
		if c.Determinable && !c.Balanced {
			return false
		}
	}
	return true
}

// FailedChecks returns the names of the determinable checks that failed.
func (rep BalanceReport) FailedChecks() []string {
	var failed []string
	for _, c := range rep.Checks {
		if c.Determinable && !c.Balanced {
			failed = append(failed, c.Name)
		}
	}
	return failed
}

func (rep *BalanceReport) add(name string, determinable, balanced bool, detail string) {
	rep.Checks = append(rep.Checks, rxntypes.BalanceCheckResult{
		Name:         name,
		Determinable: determinable,
		Balanced:     balanced,
		Detail:       detail,
	})
}

// compare records one composition comparison against the reactant well.
func (rep *BalanceReport) compare(name string, candidate, rWell species.Composition) {
	if candidate.Equal(rWell) {
		rep.add(name, true, true, "")
		return
	}
	rep.add(name, true, false,
		fmt.Sprintf("composition %s does not match reactant well %s", candidate, rWell))
}

// ─────────────────────────────────────────────────────────────────────────────
// Well construction and balance checking
// ─────────────────────────────────────────────────────────────────────────────

// buildWell constructs the elemental composition of one side's well: each
// species' composition replicated by its stoichiometric count in the label.
// The well is indeterminable when any species' composition is unknown.
func (r *Reaction) buildWell(spcs []*species.Species, well int) (species.Composition, bool) {
	if len(spcs) == 0 {
		return nil, false
	}
	total := make(species.Composition, 4)
	for _, spc := range spcs {
		comp, ok := spc.Composition()
		if !ok {
			return nil, false
		}
		total.Add(comp, r.SpeciesCount(spc.Label, well))
	}
	return total, true
}

// AtomBalanceReport performs every applicable atom-balance comparison for the
// reaction: product well, each TS guess, an optional alternate TS geometry,
// and the attached TS species' structural graph and geometry — all against
// the reactant well.  When the reactant well itself is indeterminable every
// comparison degrades to indeterminable.
func (r *Reaction) AtomBalanceReport(altTS *species.XYZ) BalanceReport {
	var rep BalanceReport

	rWell, rOK := r.buildWell(r.RSpecies, 0)
	if !rOK {
		rep.add(CheckWells, false, false, "reactant well is not determinable")
		return rep
	}

	if pWell, ok := r.buildWell(r.PSpecies, 1); ok {
		rep.compare(CheckWells, pWell, rWell)
	} else {
		rep.add(CheckWells, false, false, "product well is not determinable")
	}

	for i, guess := range r.TSXYZGuesses {
		name := fmt.Sprintf("ts guess %d", i)
		xyz, err := species.ParseXYZ(guess)
		if err != nil {
			rep.add(name, true, false, "unparsable ts guess: "+err.Error())
			continue
		}
		rep.compare(name, xyz.Composition(), rWell)
	}

	if altTS != nil {
		rep.compare(CheckAltTS, altTS.Composition(), rWell)
	}

	if r.TSSpecies != nil {
		if len(r.TSSpecies.GraphComposition) > 0 {
			rep.compare(CheckTSGraph, r.TSSpecies.GraphComposition, rWell)
		}
		if r.TSSpecies.HasGeometry() {
			rep.compare(CheckTSGeometry, r.TSSpecies.Geometry.Composition(), rWell)
		}
	}
	return rep
}

// CheckAtomBalance validates the reaction's stoichiometric consistency.
// When raiseOnFail is true a failure surfaces as ErrCodeReactionImbalance
// naming the failed checks; otherwise the failure is demoted to a false
// return.  A BalanceFailedEvent is recorded either way.
func (r *Reaction) CheckAtomBalance(altTS *species.XYZ, raiseOnFail bool) (bool, error) {
	return r.EvaluateBalanceReport(r.AtomBalanceReport(altTS), raiseOnFail)
}

// EvaluateBalanceReport applies CheckAtomBalance's verdict to an already
// computed report, letting callers that need the per-check results avoid
// rebuilding the wells.
func (r *Reaction) EvaluateBalanceReport(rep BalanceReport, raiseOnFail bool) (bool, error) {
	if rep.Balanced() {
		return true, nil
	}
	failed := rep.FailedChecks()
	r.addEvent(BalanceFailedEvent{ReactionID: r.ID, Label: r.Label(), FailedChecks: failed})
	if raiseOnFail {
		return false, errors.New(errors.ErrCodeReactionImbalance,
			fmt.Sprintf("reaction %s is not atom balanced", r.Label())).
			WithDetail("failed checks: " + strings.Join(failed, ", "))
	}
	return false, nil
}
